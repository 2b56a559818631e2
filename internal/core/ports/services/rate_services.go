package services

import (
	"context"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateProvider is the outbound port to an external exchange-rate feed
// (central-bank feed or commercial API). Implementations are pluggable.
type RateProvider interface {
	// LatestRates returns today's rates from the given base currency to every
	// currency the provider quotes, keyed by target code.
	LatestRates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
	// Name identifies the provider in stored rate rows.
	Name() string
}

// RateSvcFacade resolves and refreshes historical currency conversion rates.
type RateSvcFacade interface {
	// Resolve returns the conversion rate between base and target as of a date.
	// base == target yields exactly 1. When no stored rate qualifies the error
	// satisfies errors.Is(err, apperrors.ErrRateNotFound); the resolver never
	// substitutes a guess.
	Resolve(ctx context.Context, base, target string, asOf time.Time) (decimal.Decimal, error)

	// Convert multiplies the amount by the resolved rate at full precision.
	// Rounding to 2 decimals is the caller's concern, at the output boundary.
	Convert(ctx context.Context, amount domain.MonetaryAmount, target string, asOf time.Time) (decimal.Decimal, error)

	// FetchAndStore pulls today's rates for the base currency from the provider
	// and upserts one row per active target currency. Provider failure is
	// logged and yields 0 stored rates; it never propagates.
	FetchAndStore(ctx context.Context, base string) int

	// ListRates exposes the stored rate history for the API layer.
	ListRates(ctx context.Context, base, target *string, asOf *time.Time, page, pageSize int) ([]domain.ExchangeRate, int, error)
}
