package repositories

import (
	"context"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/core/domain"
)

// ExchangeRateRepository persists and resolves historical daily rates.
type ExchangeRateRepository interface {
	// UpsertExchangeRate inserts the rate or, when a row already exists for
	// (base, target, rate_date), replaces its rate/fetched_at/source. Concurrent
	// fetches are idempotent and never produce duplicate rows for one day.
	UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error

	// FindRateAsOf returns the effective rate for the pair on asOf: the row with
	// rate_date <= asOf ordered by rate_date desc then fetched_at desc.
	// Returns apperrors.ErrRateNotFound (via errors.Is) when no row qualifies.
	FindRateAsOf(ctx context.Context, base, target string, asOf time.Time) (*domain.ExchangeRate, error)

	// ListExchangeRates returns rates filtered by optional pair and effective
	// date, newest first, with offset pagination. Also returns the total count.
	ListExchangeRates(ctx context.Context, base, target *string, asOf *time.Time, page, pageSize int) ([]domain.ExchangeRate, int, error)
}

// CurrencyRepository exposes the currency registry consulted by the fetch job.
type CurrencyRepository interface {
	// ListActiveCurrencies returns the currencies rates should be stored for.
	ListActiveCurrencies(ctx context.Context) ([]domain.Currency, error)
	// FindCurrencyByCode returns a currency or apperrors.ErrNotFound.
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)
}
