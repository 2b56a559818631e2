package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the conversion rate between two currencies for a specific date.
// Rows are immutable once recorded; a new fetch for the same (base, target, rate_date)
// upserts the row, so FetchedAt identifies the latest fetch of a given day.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`   // Primary Key (e.g., UUID)
	BaseCurrencyCode string          `json:"baseCurrencyCode"` // FK -> Currency.currencyCode
	TargetCurrency   string          `json:"targetCurrency"`   // FK -> Currency.currencyCode
	Rate             decimal.Decimal `json:"rate"`             // Rounded to 6 fractional digits on storage
	RateDate         time.Time       `json:"rateDate"`         // Calendar day the rate is effective for
	FetchedAt        time.Time       `json:"fetchedAt"`        // When the provider was queried
	Source           string          `json:"source"`           // Provider identifier
	AuditFields
}
