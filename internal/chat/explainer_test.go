package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finsight-ai/finsight/internal/store"
)

type countingCompleter struct {
	response string
	err      error
	calls    int
}

func (c *countingCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	c.calls++
	return c.response, c.err
}

func TestExplainEmptyResult(t *testing.T) {
	completer := &countingCompleter{}
	e := NewExplainer(completer)

	assert.Equal(t, noDataMessage, e.Explain(context.Background(), "anything", nil))
	assert.Equal(t, noDataMessage, e.Explain(context.Background(), "anything", &store.QueryResult{Columns: []string{"amount"}}))
	assert.Zero(t, completer.calls, "empty results never reach the model")
}

func TestExplainSingleValue(t *testing.T) {
	completer := &countingCompleter{}
	e := NewExplainer(completer)

	tests := []struct {
		question string
		column   string
		value    any
		want     string
	}{
		{"How many Zelle payments did I get?", "count", int64(4), "You received 4 Zelle payments in the period covered by your statements."},
		{"how many transactions last month?", "count", int64(12), "I found 12 matching transactions for that question."},
		{"count of statements", "count", int64(3), "The answer to your question is 3 items."},
		{"How much did I receive via Zelle?", "sum", "1600.00", "You received a total of 1600.00 in Zelle payments."},
		{"what is my total spending?", "sum", "842.17", "Your total for this question is 842.17."},
		{"what is my payment due date?", "amount", "12/13/2024", "amount: 12/13/2024"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			result := &store.QueryResult{Columns: []string{tt.column}, Rows: [][]any{{tt.value}}}
			assert.Equal(t, tt.want, e.Explain(context.Background(), tt.question, result))
		})
	}
	assert.Zero(t, completer.calls, "single values never reach the model")
}

func TestExplainCategorySummary(t *testing.T) {
	completer := &countingCompleter{}
	e := NewExplainer(completer)

	result := &store.QueryResult{
		Columns: []string{"category", "total_spent"},
		Rows: [][]any{
			{"Groceries", "412.50"},
			{"Restaurants & Cafes", "188.20"},
		},
	}
	got := e.Explain(context.Background(), "top spending categories", result)
	assert.Contains(t, got, "Top spending categories:")
	assert.Contains(t, got, "1. Groceries – 412.50")
	assert.Contains(t, got, "2. Restaurants & Cafes – 188.20")
	assert.Contains(t, got, `"Go deeper into Food"`)
	assert.Zero(t, completer.calls)
}

func TestExplainCategoryResultWithDatesGoesToModel(t *testing.T) {
	// A transaction list that happens to include a category column must
	// not be rendered as a ranked summary.
	completer := &countingCompleter{response: "Here is what I found."}
	e := NewExplainer(completer)

	result := &store.QueryResult{
		Columns: []string{"txn_date", "category", "amount"},
		Rows: [][]any{
			{"2025-08-02", "Groceries", "41.25"},
			{"2025-08-04", "Groceries", "18.80"},
		},
	}
	got := e.Explain(context.Background(), "show my grocery transactions", result)
	assert.Equal(t, "Here is what I found.", got)
	assert.Equal(t, 1, completer.calls)
}

func TestExplainModelFailureFallsBack(t *testing.T) {
	completer := &countingCompleter{err: errors.New("quota exceeded")}
	e := NewExplainer(completer)

	result := &store.QueryResult{
		Columns: []string{"txn_date", "vendor", "amount"},
		Rows:    [][]any{{"2025-08-02", "Starbucks", "6.45"}, {"2025-08-03", "Uber", "14.20"}},
	}
	got := e.Explain(context.Background(), "show my transactions", result)
	assert.Contains(t, got, "I found 2 matching rows")
}

func TestFormatValueKeepsNumericText(t *testing.T) {
	assert.Equal(t, "1600.00", formatValue("1600.00"), "NUMERIC scale from the database is preserved")
	assert.Equal(t, "412.50", formatValue([]byte("412.50")))
	assert.Equal(t, "2024-12-13", formatValue(time.Date(2024, 12, 13, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", formatValue(nil))
}

func TestExecutorSurfacesStoreErrors(t *testing.T) {
	e := NewExecutor(store.NewMemoryStore())
	_, err := e.Execute(context.Background(), "SELECT 1", 1)
	assert.ErrorIs(t, err, store.ErrQueryUnsupported)
}
