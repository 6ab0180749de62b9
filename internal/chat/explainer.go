package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/finsight-ai/finsight/internal/llm"
	"github.com/finsight-ai/finsight/internal/logger"
	"github.com/finsight-ai/finsight/internal/store"
)

const noDataMessage = "I couldn't find any matching data for that question in the statements you've uploaded so far."

const explainSampleLimit = 30

// explainerSystemPrompt sets the persona for free-form result
// explanations.
const explainerSystemPrompt = `
You are the Finance Insights Assistant inside a personal finance chatbot.

You receive:
- The user's natural-language questions.
- (Optionally) A brief summary of the SQL result or a sample of the rows.

Your job:
- Explain the answer in clear, friendly plain English.
- Offer helpful follow-up options.
- Do NOT show SQL, JSON, or Python objects.

GENERAL RULES
-------------
- Use short paragraphs and bullet points.
- Start with a brief summary (e.g., "I found 4 matching transactions, all from Zelle.").
- You may then show a compact table-style description in text
  (dates, merchant, amount), but keep it concise.
- End with a couple of follow-up suggestions (e.g., "Do you want to see only this month?").
- If many rows have placeholder values like "Unknown" vendor or "Uncategorised"
  category, do NOT highlight that as an insight. You can ignore those placeholders
  or just say that all transactions share the same category/vendor, without
  calling out the specific words "Unknown" or "Uncategorised"

TONE
----
- Neutral, non-judgmental, and supportive about spending.
- If data is missing or unclear, say so honestly and suggest what the user can try next.
`

// Explainer renders a query result as a friendly answer. Small results
// are templated locally; larger tables go to the model.
type Explainer struct {
	completer llm.Completer
}

func NewExplainer(completer llm.Completer) *Explainer {
	return &Explainer{completer: completer}
}

// Explain turns the result into plain English. Empty and single-value
// results never reach the model.
func (e *Explainer) Explain(ctx context.Context, question string, result *store.QueryResult) string {
	if result == nil || len(result.Rows) == 0 {
		return noDataMessage
	}

	lowerQ := strings.ToLower(strings.TrimSpace(question))

	if len(result.Rows) == 1 && len(result.Columns) == 1 {
		return explainSingleValue(lowerQ, result.Columns[0], result.Rows[0][0])
	}

	if answer, ok := explainCategorySummary(result); ok {
		return answer
	}

	return e.explainWithModel(ctx, question, result)
}

func explainSingleValue(lowerQ, col string, val any) string {
	v := formatValue(val)

	if strings.Contains(lowerQ, "how many") || strings.Contains(lowerQ, "count") || strings.Contains(lowerQ, "number of") {
		switch {
		case strings.Contains(lowerQ, "zelle"):
			return fmt.Sprintf("You received %s Zelle payments in the period covered by your statements.", v)
		case strings.Contains(lowerQ, "transaction"):
			return fmt.Sprintf("I found %s matching transactions for that question.", v)
		default:
			return fmt.Sprintf("The answer to your question is %s items.", v)
		}
	}

	if strings.Contains(lowerQ, "how much") || strings.Contains(lowerQ, "total") || strings.Contains(lowerQ, "sum") {
		if strings.Contains(lowerQ, "zelle") {
			return fmt.Sprintf("You received a total of %s in Zelle payments.", v)
		}
		return fmt.Sprintf("Your total for this question is %s.", v)
	}

	return fmt.Sprintf("%s: %s", col, v)
}

// totalColumns are the column names that mark a result as an aggregated
// category summary rather than a raw transaction list.
var totalColumns = []string{"total_spent", "total", "sum", "amount", "amount_num", "signed_amount"}

// explainCategorySummary renders "top spending categories" style
// results as a ranked list with drill-down suggestions. It only fires
// when the shape looks aggregated: a category column, at most three
// columns, a numeric total and no txn_date.
func explainCategorySummary(result *store.QueryResult) (string, bool) {
	if len(result.Columns) > 3 {
		return "", false
	}

	catIdx, totalIdx := -1, -1
	for i, col := range result.Columns {
		low := strings.ToLower(col)
		if low == "txn_date" {
			return "", false
		}
		if low == "category" {
			catIdx = i
		}
	}
	if catIdx < 0 {
		return "", false
	}
	for _, name := range totalColumns {
		for i, col := range result.Columns {
			if strings.ToLower(col) == name {
				totalIdx = i
				break
			}
		}
		if totalIdx >= 0 {
			break
		}
	}
	if totalIdx < 0 {
		return "", false
	}

	lines := []string{"Top spending categories:"}
	for i, row := range result.Rows {
		lines = append(lines, fmt.Sprintf("%d. %s – %s", i+1, formatValue(row[catIdx]), formatValue(row[totalIdx])))
	}
	lines = append(lines,
		"",
		"You can ask things like:",
		`- "Go deeper into Food"`,
		`- "Show details for Shopping"`,
		`- "Only Amazon inside Shopping"`,
	)
	return strings.Join(lines, "\n"), true
}

func (e *Explainer) explainWithModel(ctx context.Context, question string, result *store.QueryResult) string {
	log := logger.FromContext(ctx)

	sample := result.Rows
	if len(sample) > explainSampleLimit {
		sample = sample[:explainSampleLimit]
	}
	rows := make([]map[string]any, 0, len(sample))
	for _, r := range sample {
		m := make(map[string]any, len(result.Columns))
		for i, col := range result.Columns {
			m[col] = formatValue(r[i])
		}
		rows = append(rows, m)
	}

	payload, err := json.Marshal(map[string]any{
		"question": question,
		"rows":     rows,
	})
	if err != nil {
		return summarizeRowCount(result)
	}

	answer, err := e.completer.Complete(ctx, explainerSystemPrompt, string(payload))
	if err != nil {
		log.Warn().Err(err).Msg("explanation call failed, falling back to row count")
		return summarizeRowCount(result)
	}
	return strings.TrimSpace(answer)
}

func summarizeRowCount(result *store.QueryResult) string {
	return fmt.Sprintf("I found %d matching rows for your question, but couldn't generate a summary right now. Please try again.", len(result.Rows))
}

// formatValue renders a scanned SQL value the way a human would read
// it. Numeric strings keep the database's rendering so trailing zeros
// from NUMERIC columns stay intact.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
