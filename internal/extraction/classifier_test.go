package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight/internal/statement"
)

type fakeCompleter struct {
	response string
	err      error
	calls    []string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls = append(f.calls, user)
	return f.response, f.err
}

func TestClassify(t *testing.T) {
	completer := &fakeCompleter{response: `{
		"statement_type": "credit",
		"sections": {
			"account_summary": {
				"columns": ["Description", "Amount"],
				"rows": [["Payment Due Date", "09/05/2025"], ["New Balance Total", "432.10"]]
			},
			"purchases_and_adjustments": {
				"columns": ["Date", "Description", "Amount"],
				"rows": [["08/02/2025", "STARBUCKS 1234 BALTIMORE MD", "-6.45"]]
			}
		}
	}`}

	got, err := NewClassifier(completer).Classify(context.Background(), "statement text")
	require.NoError(t, err)

	assert.Equal(t, statement.KindCredit, got.Kind)
	require.Len(t, got.Sections, 2)
	assert.Equal(t, "account_summary", got.Sections[0].Key)
	assert.Equal(t, "purchases_and_adjustments", got.Sections[1].Key)
	assert.Equal(t, []string{"Date", "Description", "Amount"}, got.Sections[1].Table.Columns)
	assert.Equal(t, [][]string{{"08/02/2025", "STARBUCKS 1234 BALTIMORE MD", "-6.45"}}, got.Sections[1].Table.Rows)
}

func TestClassifyRepairsRows(t *testing.T) {
	completer := &fakeCompleter{response: `{
		"statement_type": "debit",
		"sections": {
			"other_subtractions": {
				"columns": ["Date", "Description", "Amount"],
				"rows": [
					["08/11/2025", "Rent"],
					["08/12/2025", "Gym", "-45.00", "extra cell"],
					["08/13/2025", 12.50, "-12.50"],
					"not a row"
				]
			}
		}
	}`}

	got, err := NewClassifier(completer).Classify(context.Background(), "text")
	require.NoError(t, err)
	require.Len(t, got.Sections, 1)

	rows := got.Sections[0].Table.Rows
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"08/11/2025", "Rent", ""}, rows[0], "short rows are padded")
	assert.Equal(t, []string{"08/12/2025", "Gym", "-45.00"}, rows[1], "long rows are truncated")
	assert.Equal(t, []string{"08/13/2025", "12.50", "-12.50"}, rows[2], "numeric cells keep their textual form")
}

func TestClassifySkipsSectionsWithoutColumns(t *testing.T) {
	completer := &fakeCompleter{response: `{
		"statement_type": "debit",
		"sections": {
			"fees": {"columns": [], "rows": [["08/01/2025", "Fee", "-5.00"]]},
			"account_summary": {"columns": ["Description", "Amount"], "rows": []}
		}
	}`}

	got, err := NewClassifier(completer).Classify(context.Background(), "text")
	require.NoError(t, err)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, "account_summary", got.Sections[0].Key)
}

func TestClassifyDefaultsToDebit(t *testing.T) {
	completer := &fakeCompleter{response: `{"statement_type": "mystery", "sections": {}}`}
	got, err := NewClassifier(completer).Classify(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, statement.KindDebit, got.Kind)
}

func TestClassifyMalformedJSON(t *testing.T) {
	completer := &fakeCompleter{response: "Sure! Here is the JSON you asked for: {"}
	_, err := NewClassifier(completer).Classify(context.Background(), "text")

	var extErr *Error
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, ErrMalformedOutput, extErr.Code)
	assert.False(t, extErr.IsRetryable())
}

func TestClassifyCompleterError(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("boom")}
	_, err := NewClassifier(completer).Classify(context.Background(), "text")
	require.Error(t, err)
}
