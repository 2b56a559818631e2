package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the database row for a stored conversion rate.
// One row per (base_currency_code, target_currency_code, rate_date); a repeat
// fetch the same day updates rate and fetched_at in place.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`
	BaseCurrencyCode string          `json:"baseCurrencyCode"`
	TargetCurrency   string          `json:"targetCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	RateDate         time.Time       `json:"rateDate"`
	FetchedAt        time.Time       `json:"fetchedAt"`
	Source           string          `json:"source"`
	AuditFields
}

// AuditFields holds standard audit columns shared by row models.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}
