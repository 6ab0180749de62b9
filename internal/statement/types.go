// Package statement holds the canonical vocabulary and row model for parsed
// bank statements. The layouts are tuned to one bank's debit (checking) and
// credit card statements.
package statement

import (
	"strings"
	"time"
)

// Kind distinguishes checking statements from credit card statements. It
// determines which canonical section vocabulary applies.
type Kind string

const (
	KindDebit  Kind = "debit"
	KindCredit Kind = "credit"
)

// ParseKind maps a loosely-typed statement type to a Kind. Matching is
// case-insensitive; anything unrecognized collapses to debit.
func ParseKind(s string) Kind {
	if Kind(strings.ToLower(strings.TrimSpace(s))) == KindCredit {
		return KindCredit
	}
	return KindDebit
}

// Statement is one uploaded document, identified per user by the SHA-256 of
// its raw bytes.
type Statement struct {
	ID               int64
	SHA256           string
	OriginalFilename string
	Kind             Kind
	UploadedAt       time.Time
	UserID           int64
}

// Row is one parsed line from a statement section. The three date fields and
// the amount keep the statement's original text (raw capture); Amount is the
// normalized signed numeric string; Vendor and Category are enrichment
// output. Nil pointers persist as NULL.
type Row struct {
	ID              int64
	Date            *string
	TransactionDate *string
	PostingDate     *string
	Description     *string
	Amount          *string
	Vendor          *string
	Category        *string
	StatementName   string
	StatementKind   Kind
	SectionName     string
	StatementID     int64
	UserID          int64
}

// Canonical column names every persisted row carries regardless of the
// source section's layout.
var CanonicalColumns = []string{
	"Date", "Transaction Date", "Posting Date",
	"Description", "Amount", "Vendor", "Category",
}
