// Package money normalizes raw currency tokens lifted from bank statements.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	parenRe       = regexp.MustCompile(`^\(.*\)$`)
	leadingPlusRe = regexp.MustCompile(`^\+?\s*`)
)

// Normalize converts a raw amount token into a canonical signed numeric
// string: "$1,234.56" → "1234.56", "(73.68)" → "-73.68", "+50" → "50".
// Normalizing an already-normalized value is a no-op.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if parenRe.MatchString(s) {
		s = "-" + strings.Trim(s, "()")
	}
	return leadingPlusRe.ReplaceAllString(s, "")
}

// NormalizeRaw is the variant used by the summary fallback: same symbol and
// parenthesis handling, but a leading plus sign is preserved. Summary values
// are sometimes dates, which must pass through untouched.
func NormalizeRaw(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if parenRe.MatchString(s) {
		s = "-" + strings.Trim(s, "()")
	}
	return s
}

// ParseDecimal normalizes raw and parses it as an exact decimal.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(Normalize(raw))
}

// IsNumeric reports whether raw normalizes to a parseable signed decimal.
func IsNumeric(raw string) bool {
	_, err := ParseDecimal(raw)
	return err == nil
}
