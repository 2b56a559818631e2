package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// KnownVATRateKeys are the rate buckets that always appear in a declaration,
// even when no line item used them in the period.
var KnownVATRateKeys = []string{"0", "5.5", "10", "20"}

// NormalizeRateKey renders a VAT rate as its canonical decimal string, so that
// "20", "20.0" and "20.00" land in the same bucket.
func NormalizeRateKey(rate decimal.Decimal) string {
	s := rate.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "" || s == "-0" {
		return "0"
	}
	return s
}

// TaxBucketAmounts accumulates tax-exclusive base and tax amounts for one rate.
type TaxBucketAmounts struct {
	Rate decimal.Decimal `json:"rate"`
	Base decimal.Decimal `json:"base"` // Tax-exclusive
	Tax  decimal.Decimal `json:"tax"`
}

// VATPeriodLine is the declaration for a single period.
type VATPeriodLine struct {
	Period          Period                      `json:"period"`
	Buckets         map[string]TaxBucketAmounts `json:"buckets"` // Keyed by normalized rate
	TotalCollected  decimal.Decimal             `json:"totalCollected"`
	TotalDeductible decimal.Decimal             `json:"totalDeductible"`
	NetDue          decimal.Decimal             `json:"netDue"`
	IsCredit        bool                        `json:"isCredit"` // NetDue < 0
}

// VATReport aggregates collected and deductible VAT per period for one year.
type VATReport struct {
	AccountID       string          `json:"accountID"`
	Year            int             `json:"year"`
	PeriodType      PeriodType      `json:"periodType"`
	Periods         []VATPeriodLine `json:"periods"`  // Always PeriodsPerYear() entries, in order
	RateKeys        []string        `json:"rateKeys"` // Known buckets plus extras seen in the data
	TotalCollected  decimal.Decimal `json:"totalCollected"`
	TotalDeductible decimal.Decimal `json:"totalDeductible"`
	NetDue          decimal.Decimal `json:"netDue"`
	IsCredit        bool            `json:"isCredit"`
}
