package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	portsrepo "github.com/facturio/fiscal_engine_app/internal/core/ports/repositories"
	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// storedRatePrecision is the number of fractional digits kept on stored rates.
const storedRatePrecision = 6

// rateService resolves historical conversion rates and refreshes them from a
// pluggable provider.
type rateService struct {
	BaseService
	rateRepo     portsrepo.ExchangeRateRepository
	currencyRepo portsrepo.CurrencyRepository
	provider     portssvc.RateProvider
}

// NewRateService creates a new rate service.
func NewRateService(rateRepo portsrepo.ExchangeRateRepository, currencyRepo portsrepo.CurrencyRepository, provider portssvc.RateProvider) portssvc.RateSvcFacade {
	return &rateService{
		rateRepo:     rateRepo,
		currencyRepo: currencyRepo,
		provider:     provider,
	}
}

var _ portssvc.RateSvcFacade = (*rateService)(nil)

// Resolve returns the conversion rate between base and target as of a date.
func (s *rateService) Resolve(ctx context.Context, base, target string, asOf time.Time) (decimal.Decimal, error) {
	base = strings.ToUpper(base)
	target = strings.ToUpper(target)
	if len(base) != 3 || len(target) != 3 {
		return decimal.Zero, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	if base == target {
		return decimal.NewFromInt(1), nil
	}

	rate, err := s.rateRepo.FindRateAsOf(ctx, base, target, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve rate %s->%s as of %s: %w", base, target, asOf.Format("2006-01-02"), err)
	}
	return rate.Rate, nil
}

// Convert multiplies the amount by the resolved rate at full precision.
func (s *rateService) Convert(ctx context.Context, amount domain.MonetaryAmount, target string, asOf time.Time) (decimal.Decimal, error) {
	rate, err := s.Resolve(ctx, amount.CurrencyCode, target, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Amount.Mul(rate), nil
}

// FetchAndStore pulls today's rates from the provider and upserts one row per
// active target currency. Failures are logged and yield 0 so a scheduled
// refresh degrades gracefully instead of crashing the job.
func (s *rateService) FetchAndStore(ctx context.Context, base string) int {
	base = strings.ToUpper(base)
	quotes, err := s.provider.LatestRates(ctx, base)
	if err != nil {
		s.LogError(ctx, err, "Exchange rate provider fetch failed",
			slog.String("base", base),
			slog.String("provider", s.provider.Name()))
		return 0
	}

	active, err := s.currencyRepo.ListActiveCurrencies(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list active currencies for rate refresh", slog.String("base", base))
		return 0
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	stored := 0
	for _, currency := range active {
		code := currency.CurrencyCode
		if code == base {
			continue
		}
		quote, ok := quotes[code]
		if !ok {
			continue
		}
		if quote.LessThanOrEqual(decimal.Zero) {
			s.LogWarn(ctx, "Skipping non-positive rate from provider",
				slog.String("base", base),
				slog.String("target", code),
				slog.String("rate", quote.String()))
			continue
		}

		rate := domain.ExchangeRate{
			ExchangeRateID:   uuid.NewString(),
			BaseCurrencyCode: base,
			TargetCurrency:   code,
			Rate:             quote.Round(storedRatePrecision),
			RateDate:         today,
			FetchedAt:        now,
			Source:           s.provider.Name(),
		}
		if err := s.rateRepo.UpsertExchangeRate(ctx, rate); err != nil {
			s.LogError(ctx, err, "Failed to store exchange rate",
				slog.String("base", base),
				slog.String("target", code))
			continue
		}
		stored++
	}

	s.LogInfo(ctx, "Exchange rate refresh completed",
		slog.String("base", base),
		slog.Int("stored", stored),
		slog.String("provider", s.provider.Name()))
	return stored
}

// ListRates exposes the stored rate history for the API layer.
func (s *rateService) ListRates(ctx context.Context, base, target *string, asOf *time.Time, page, pageSize int) ([]domain.ExchangeRate, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	return s.rateRepo.ListExchangeRates(ctx, base, target, asOf, page, pageSize)
}
