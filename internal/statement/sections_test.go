package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapSectionNameDebit(t *testing.T) {
	tests := map[string]string{
		"account_summary":                 "Account Summary",
		"deposits_and_other_additions":    "Deposits and other additions",
		"atm_and_debit_card_subtractions": "ATM and debit card subtractions",
		"other_subtractions":              "Other subtractions",
	}
	for key, want := range tests {
		assert.Equal(t, want, MapSectionName(key, KindDebit), key)
	}
}

func TestMapSectionNameCredit(t *testing.T) {
	tests := map[string]string{
		"account_summary":            "Account Summary/Payment Information",
		"payments_and_other_credits": "Payments and Other Credits",
		"purchases_and_adjustments":  "Purchases and Adjustments",
		"fees":                       "Fees",
		"interest_charged":           "Interest Charged",
	}
	for key, want := range tests {
		assert.Equal(t, want, MapSectionName(key, KindCredit), key)
	}
}

func TestMapSectionNameLooseCasing(t *testing.T) {
	assert.Equal(t, "Deposits and other additions",
		MapSectionName("  Deposits_And_Other_Additions ", KindDebit))
}

func TestMapSectionNameUnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "Mystery_Section", MapSectionName("Mystery_Section", KindDebit))
	assert.Equal(t, "Mystery_Section", MapSectionName("Mystery_Section", KindCredit))
	// A credit-only key is unknown under the debit vocabulary.
	assert.Equal(t, "interest_charged", MapSectionName("interest_charged", KindDebit))
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindCredit, ParseKind("credit"))
	assert.Equal(t, KindCredit, ParseKind("Credit"))
	assert.Equal(t, KindCredit, ParseKind(" CREDIT "))
	assert.Equal(t, KindDebit, ParseKind("debit"))
	assert.Equal(t, KindDebit, ParseKind("checking"))
	assert.Equal(t, KindDebit, ParseKind(""))
}

func TestShouldEnrich(t *testing.T) {
	assert.True(t, ShouldEnrich("Purchases and Adjustments"))
	assert.True(t, ShouldEnrich("ATM and debit card subtractions"))
	assert.False(t, ShouldEnrich("Account Summary"))
	assert.False(t, ShouldEnrich("Account Summary/Payment Information"))
	assert.False(t, ShouldEnrich("Interest Charged"))
}
