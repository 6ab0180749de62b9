package statement

import (
	"regexp"
	"strings"

	"github.com/finsight-ai/finsight/internal/money"
)

// SummaryField is one recovered (label, value) pair from the raw extracted
// text of a credit statement.
type SummaryField struct {
	Label string
	Value string
}

type summaryPattern struct {
	label    string
	re       *regexp.Regexp
	isAmount bool
}

// The structured extraction step sometimes omits these fields even when the
// text plainly contains them, so they are re-located by pattern search. The
// due date stays text; the rest pass through the raw-amount cleaner.
var summaryPatterns = []summaryPattern{
	{
		label:    "Payment Due Date",
		re:       regexp.MustCompile(`(?i)Payment\s+Due\s+Date\s*[:\-]?\s*([0-9/]{4,10}|[A-Za-z]+\s+\d{1,2},\s*\d{4})`),
		isAmount: false,
	},
	{
		label:    "New Balance Total",
		re:       regexp.MustCompile(`(?i)New\s+Balance\s*Total\s*[:\-]?\s*\$?\s*([0-9,.()]+)`),
		isAmount: true,
	},
	{
		label:    "Minimum Payment Due",
		re:       regexp.MustCompile(`(?i)Minimum\s+Payment\s+Due\s*[:\-]?\s*\$?\s*([0-9,.()]+)`),
		isAmount: true,
	},
	{
		label:    "Total Credit Line",
		re:       regexp.MustCompile(`(?i)Total\s+Credit\s+Line\s*[:\-]?\s*\$?\s*([0-9,.()]+)`),
		isAmount: true,
	},
	{
		label:    "Total Credit Available",
		re:       regexp.MustCompile(`(?i)Total\s+Credit\s+Available\s*[:\-]?\s*\$?\s*([0-9,.()]+)`),
		isAmount: true,
	},
}

// FallbackCreditSummary recovers key account-summary fields directly from
// the raw extracted text. It is a deterministic safety net, not a second
// model pass; it only ever supplements structured rows.
func FallbackCreditSummary(text string) []SummaryField {
	var fields []SummaryField
	for _, p := range summaryPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		val := strings.TrimSpace(m[1])
		if p.isAmount {
			val = money.NormalizeRaw(val)
		}
		fields = append(fields, SummaryField{Label: p.label, Value: val})
	}
	return fields
}

// MergeFallbackSummary appends to tbl any recovered fields whose label is
// not already present as a Description, matched case-insensitively on
// trimmed text. The table must have Description and Amount columns.
func MergeFallbackSummary(tbl *Table, fields []SummaryField) {
	descIdx := tbl.ColumnIndex("Description")
	amtIdx := tbl.ColumnIndex("Amount")
	if descIdx < 0 || amtIdx < 0 {
		return
	}
	existing := map[string]bool{}
	for _, row := range tbl.Rows {
		existing[strings.ToLower(strings.TrimSpace(row[descIdx]))] = true
	}
	for _, f := range fields {
		if existing[strings.ToLower(strings.TrimSpace(f.Label))] {
			continue
		}
		row := make([]string, len(tbl.Columns))
		row[descIdx] = f.Label
		row[amtIdx] = f.Value
		tbl.Rows = append(tbl.Rows, row)
	}
}

// HasDescription reports whether any Description cell contains needle,
// case-insensitively.
func (t *Table) HasDescription(needle string) bool {
	idx := t.ColumnIndex("Description")
	if idx < 0 {
		return false
	}
	n := strings.ToLower(needle)
	for _, row := range t.Rows {
		if strings.Contains(strings.ToLower(row[idx]), n) {
			return true
		}
	}
	return false
}
