package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"currency symbol and commas", "$1,234.56", "1234.56"},
		{"parentheses negative", "(73.68)", "-73.68"},
		{"parentheses with symbol", "($1,600.00)", "-1600.00"},
		{"leading plus", "+50", "50"},
		{"plus with space", "+ 50.25", "50.25"},
		{"already negative", "-73.68", "-73.68"},
		{"surrounding whitespace", "  12.00 ", "12.00"},
		{"plain integer", "1600", "1600"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"$1,234.56", "(73.68)", "+50", "-4.50", "0.00"} {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalizing %q twice", in)
	}
}

func TestNormalizeRawKeepsPlusAndDates(t *testing.T) {
	assert.Equal(t, "+50", NormalizeRaw("+50"))
	assert.Equal(t, "-120.00", NormalizeRaw("($120.00)"))
	assert.Equal(t, "12/13/2024", NormalizeRaw("12/13/2024"))
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal("($1,600.00)")
	assert.NoError(t, err)
	assert.Equal(t, "-1600", d.String())

	_, err = ParseDecimal("Payment Due Date")
	assert.Error(t, err)
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("$1,234.56"))
	assert.True(t, IsNumeric("(4.50)"))
	assert.False(t, IsNumeric("11/21/2025"))
	assert.False(t, IsNumeric(""))
}
