package statement

import "strings"

// Canonical display names per statement kind.
var (
	DebitSections = []string{
		"Account Summary",
		"Deposits and other additions",
		"ATM and debit card subtractions",
		"Other subtractions",
	}

	CreditSections = []string{
		"Account Summary",
		"Payment Information",
		"Account Summary/Payment Information",
		"Payments and Other Credits",
		"Purchases and Adjustments",
		"Fees",
		"Interest Charged",
	}
)

// CreditAccountSummary is the unified credit-card summary section that the
// regex fallback backfills.
const CreditAccountSummary = "Account Summary/Payment Information"

var debitSectionKeys = map[string]string{
	"account_summary":                 "Account Summary",
	"deposits_and_other_additions":    "Deposits and other additions",
	"atm_and_debit_card_subtractions": "ATM and debit card subtractions",
	"other_subtractions":              "Other subtractions",
}

var creditSectionKeys = map[string]string{
	"account_summary":            CreditAccountSummary,
	"payments_and_other_credits": "Payments and Other Credits",
	"purchases_and_adjustments":  "Purchases and Adjustments",
	"fees":                       "Fees",
	"interest_charged":           "Interest Charged",
}

// enrichedSections are the detail sections whose rows get vendor/category
// labels. Static account-summary sections are never enriched.
var enrichedSections = map[string]bool{
	"Payments and Other Credits":      true,
	"Purchases and Adjustments":       true,
	"ATM and debit card subtractions": true,
	"Other subtractions":              true,
}

// MapSectionName translates an extraction-model section key into the
// canonical display name for the given statement kind. Unknown keys pass
// through unchanged so extraction noise is preserved rather than dropped.
func MapSectionName(key string, kind Kind) string {
	k := strings.ToLower(strings.TrimSpace(key))
	table := creditSectionKeys
	if kind == KindDebit {
		table = debitSectionKeys
	}
	if name, ok := table[k]; ok {
		return name
	}
	return key
}

// ShouldEnrich reports whether rows in the named canonical section carry
// individual line-item detail worth labeling.
func ShouldEnrich(sectionName string) bool {
	return enrichedSections[sectionName]
}
