package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight/internal/extraction"
	"github.com/finsight-ai/finsight/internal/statement"
	"github.com/finsight-ai/finsight/internal/store"
)

type fakeExtractor struct {
	markdown string
	err      error
	calls    int
}

func (f *fakeExtractor) ExtractMarkdown(_ context.Context, _ []byte, _ string) (string, error) {
	f.calls++
	return f.markdown, f.err
}

// routingCompleter answers the classification prompt with a canned
// statement and labels every enrichment batch by echoing descriptions.
type routingCompleter struct {
	classification string
}

func (rc *routingCompleter) Complete(_ context.Context, system, user string) (string, error) {
	if strings.Contains(system, "financial statement parser") {
		return rc.classification, nil
	}
	var batch []string
	if err := json.Unmarshal([]byte(user), &batch); err != nil {
		return "", err
	}
	labels := make([]extraction.VendorCategory, len(batch))
	for i, desc := range batch {
		labels[i] = extraction.VendorCategory{Vendor: "V:" + desc, Category: "Groceries"}
	}
	out, err := json.Marshal(labels)
	return string(out), err
}

func newTestIngester(s store.Store, extractor TextExtractor, classification string) *Ingester {
	completer := &routingCompleter{classification: classification}
	return NewIngester(s, extractor, extraction.NewClassifier(completer), extraction.NewEnricher(completer))
}

func rowsBySection(rows []statement.Row, section string) []statement.Row {
	var out []statement.Row
	for _, r := range rows {
		if r.SectionName == section {
			out = append(out, r)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const debitClassification = `{
	"statement_type": "debit",
	"sections": {
		"account_summary": {
			"columns": ["Description", "Amount"],
			"rows": [["Beginning balance on August 1, 2025", "2500.00"]]
		},
		"deposits_and_other_additions": {
			"columns": ["Date", "Description", "Amount"],
			"rows": [["08/01/2025", "Zelle payment from NIKHIL AKULA", "$1,600.00"]]
		},
		"other_subtractions": {
			"columns": ["Date", "Description", "Amount"],
			"rows": [["08/11/2025", "SAFEWAY #1234 BALTIMORE", "(73.68)"]]
		}
	}
}`

func TestIngestDebitStatement(t *testing.T) {
	mem := store.NewMemoryStore()
	ing := newTestIngester(mem, &fakeExtractor{markdown: "statement text"}, debitClassification)

	result, err := ing.Ingest(context.Background(), 1, "august.pdf", []byte("%PDF debit bytes"))
	require.NoError(t, err)

	assert.Equal(t, statement.KindDebit, result.Kind)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, 3, result.SectionsSaved)
	assert.Equal(t, 3, result.RowsSaved)

	rows := mem.RowsForStatement(result.StatementID)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, int64(1), r.UserID)
		assert.Equal(t, "august", r.StatementName, "statement name drops the file extension")
		assert.Equal(t, statement.KindDebit, r.StatementKind)
	}

	summary := rowsBySection(rows, "Account Summary")
	require.Len(t, summary, 1)
	assert.Equal(t, "2500.00", deref(summary[0].Amount))
	assert.Nil(t, summary[0].Vendor, "summary sections are not enriched")

	deposits := rowsBySection(rows, "Deposits and other additions")
	require.Len(t, deposits, 1)
	assert.Equal(t, "1600.00", deref(deposits[0].Amount), "currency symbols and commas stripped")
	assert.Nil(t, deposits[0].Vendor, "deposit section is not enriched")

	subtractions := rowsBySection(rows, "Other subtractions")
	require.Len(t, subtractions, 1)
	assert.Equal(t, "-73.68", deref(subtractions[0].Amount), "parenthesized amounts become negative")
	assert.Equal(t, "V:SAFEWAY #1234 BALTIMORE", deref(subtractions[0].Vendor))
	assert.Equal(t, "Groceries", deref(subtractions[0].Category))
}

const creditClassificationNoDueDate = `{
	"statement_type": "credit",
	"sections": {
		"account_summary": {
			"columns": ["Description", "Amount"],
			"rows": [["New Balance Total", "432.10"]]
		},
		"purchases_and_adjustments": {
			"columns": ["Transaction Date", "Description", "Amount"],
			"rows": [["08/02/2025", "STARBUCKS 1234 BALTIMORE MD", "6.45"]]
		}
	}
}`

const creditMarkdown = `BANK OF AMERICA credit card statement
Payment Due Date: 09/05/2025
New Balance Total: $432.10
Total Minimum Payment Due: $25.00
Total Credit Line: $5,000.00
`

func TestIngestCreditStatementBackfillsSummary(t *testing.T) {
	mem := store.NewMemoryStore()
	ing := newTestIngester(mem, &fakeExtractor{markdown: creditMarkdown}, creditClassificationNoDueDate)

	result, err := ing.Ingest(context.Background(), 1, "card.pdf", []byte("%PDF credit bytes"))
	require.NoError(t, err)
	assert.Equal(t, statement.KindCredit, result.Kind)

	rows := mem.RowsForStatement(result.StatementID)

	summary := rowsBySection(rows, statement.CreditAccountSummary)
	descriptions := make([]string, 0, len(summary))
	for _, r := range summary {
		descriptions = append(descriptions, deref(r.Description))
	}
	assert.Contains(t, descriptions, "New Balance Total", "model rows kept")
	assert.Contains(t, descriptions, "Payment Due Date", "missing due date recovered from raw text")
	assert.Contains(t, descriptions, "Total Credit Line")

	for _, r := range summary {
		if deref(r.Description) == "Payment Due Date" {
			assert.Equal(t, "09/05/2025", deref(r.Amount))
		}
	}

	purchases := rowsBySection(rows, "Purchases and Adjustments")
	require.Len(t, purchases, 1)
	assert.Equal(t, "08/02/2025", deref(purchases[0].TransactionDate))
	assert.Nil(t, purchases[0].Date)
	assert.Equal(t, "V:STARBUCKS 1234 BALTIMORE MD", deref(purchases[0].Vendor))
}

func TestIngestDeduplicatesByHash(t *testing.T) {
	mem := store.NewMemoryStore()
	extractor := &fakeExtractor{markdown: "statement text"}
	ing := newTestIngester(mem, extractor, debitClassification)

	data := []byte("%PDF same bytes")
	first, err := ing.Ingest(context.Background(), 1, "august.pdf", data)
	require.NoError(t, err)
	require.False(t, first.AlreadyProcessed)

	second, err := ing.Ingest(context.Background(), 1, "renamed.pdf", data)
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, first.StatementID, second.StatementID)
	assert.Equal(t, first.RowsSaved, second.RowsSaved)
	assert.Equal(t, 1, extractor.calls, "duplicate upload never reaches extraction")

	// Another user uploading the same bytes is not a duplicate.
	third, err := ing.Ingest(context.Background(), 2, "august.pdf", data)
	require.NoError(t, err)
	assert.False(t, third.AlreadyProcessed)
	assert.NotEqual(t, first.StatementID, third.StatementID)
}

func TestIngestNoRowsIsAnError(t *testing.T) {
	mem := store.NewMemoryStore()
	ing := newTestIngester(mem, &fakeExtractor{markdown: "text"}, `{"statement_type": "debit", "sections": {}}`)

	_, err := ing.Ingest(context.Background(), 1, "empty.pdf", []byte("%PDF"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rows")

	// The statement record exists but has no rows, so the same upload
	// is processed again rather than short-circuited.
	extractor := &fakeExtractor{markdown: "text"}
	retry := newTestIngester(mem, extractor, debitClassification)
	result, err := retry.Ingest(context.Background(), 1, "empty.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, 1, extractor.calls)
}

func TestIngestKeepsSectionsWithoutDescription(t *testing.T) {
	mem := store.NewMemoryStore()
	classification := `{
		"statement_type": "credit",
		"sections": {
			"purchases_and_adjustments": {
				"columns": ["Transaction Date", "Description", "Amount"],
				"rows": [["08/02/2025", "STARBUCKS 1234", "6.45"]]
			},
			"fees": {
				"columns": ["Date", "Amount"],
				"rows": [["08/15/2025", "10.00"]]
			}
		}
	}`
	ing := newTestIngester(mem, &fakeExtractor{markdown: "text"}, classification)

	result, err := ing.Ingest(context.Background(), 1, "card.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.SectionsSaved)

	fees := rowsBySection(mem.RowsForStatement(result.StatementID), "Fees")
	require.Len(t, fees, 1)
	assert.Nil(t, fees[0].Description, "absent columns persist as NULL")
	assert.Equal(t, "08/15/2025", deref(fees[0].Date))
	assert.Equal(t, "10.00", deref(fees[0].Amount))
}

func TestIngestPreservesSectionOrder(t *testing.T) {
	mem := store.NewMemoryStore()
	ing := newTestIngester(mem, &fakeExtractor{markdown: "text"}, debitClassification)

	result, err := ing.Ingest(context.Background(), 1, "august.pdf", []byte("%PDF"))
	require.NoError(t, err)

	rows := mem.RowsForStatement(result.StatementID)
	require.Len(t, rows, 3)
	sections := make([]string, len(rows))
	for i, r := range rows {
		sections[i] = r.SectionName
	}
	assert.Equal(t, []string{
		"Account Summary",
		"Deposits and other additions",
		"Other subtractions",
	}, sections, "rows land in the order the sections were emitted")
}

func TestStatementDisplayName(t *testing.T) {
	assert.Equal(t, "august", statementDisplayName("august.pdf"))
	assert.Equal(t, "eStmt_2025-08-13", statementDisplayName("uploads/eStmt_2025-08-13.pdf"))
	assert.Equal(t, "statement", statementDisplayName("statement"))
}

func TestIngestExtractionFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	ing := newTestIngester(mem, &fakeExtractor{err: context.DeadlineExceeded}, debitClassification)

	_, err := ing.Ingest(context.Background(), 1, "a.pdf", []byte("%PDF"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract statement text")
}
