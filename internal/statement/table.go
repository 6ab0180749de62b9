package statement

import (
	"strings"

	"github.com/finsight-ai/finsight/internal/money"
)

// Table is a section's tabular data after structural repair: every row has
// exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// canonicalHeaders maps lowercase incoming column names to their canonical
// spelling. Statements vary their date column names between layouts.
var canonicalHeaders = map[string]string{
	"date":             "Date",
	"transaction date": "Transaction Date",
	"posting date":     "Posting Date",
	"description":      "Description",
	"amount":           "Amount",
}

// NormalizeHeader rewrites recognized column names to canonical spelling in
// place. Unrecognized columns are left alone.
func (t *Table) NormalizeHeader() {
	for i, c := range t.Columns {
		if canon, ok := canonicalHeaders[strings.ToLower(strings.TrimSpace(c))]; ok {
			t.Columns[i] = canon
		}
	}
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// NormalizeAmounts runs the amount normalizer over the Amount column, if
// present.
func (t *Table) NormalizeAmounts() {
	idx := t.ColumnIndex("Amount")
	if idx < 0 {
		return
	}
	for _, row := range t.Rows {
		row[idx] = money.Normalize(row[idx])
	}
}

// Column returns all values of the named column, or nil if absent.
func (t *Table) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	vals := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		vals[i] = row[idx]
	}
	return vals
}

// AppendColumn adds a column with one value per existing row.
func (t *Table) AppendColumn(name string, values []string) {
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		t.Rows[i] = append(t.Rows[i], v)
	}
}

// DropColumn removes the named column if present. Enrichment replaces any
// Vendor/Category columns the extraction model happened to emit.
func (t *Table) DropColumn(name string) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return
	}
	t.Columns = append(t.Columns[:idx], t.Columns[idx+1:]...)
	for i, row := range t.Rows {
		t.Rows[i] = append(row[:idx], row[idx+1:]...)
	}
}

// ToRows converts the table into persistable rows, filling canonical
// columns that are absent from the table with nil.
func (t *Table) ToRows() []Row {
	idx := map[string]int{}
	for _, name := range CanonicalColumns {
		idx[name] = t.ColumnIndex(name)
	}
	cell := func(row []string, name string) *string {
		i := idx[name]
		if i < 0 {
			return nil
		}
		v := row[i]
		return &v
	}
	out := make([]Row, 0, len(t.Rows))
	for _, raw := range t.Rows {
		out = append(out, Row{
			Date:            cell(raw, "Date"),
			TransactionDate: cell(raw, "Transaction Date"),
			PostingDate:     cell(raw, "Posting Date"),
			Description:     cell(raw, "Description"),
			Amount:          cell(raw, "Amount"),
			Vendor:          cell(raw, "Vendor"),
			Category:        cell(raw, "Category"),
		})
	}
	return out
}
