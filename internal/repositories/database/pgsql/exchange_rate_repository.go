package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	portsrepo "github.com/facturio/fiscal_engine_app/internal/core/ports/repositories"
	"github.com/facturio/fiscal_engine_app/internal/models"
	"github.com/facturio/fiscal_engine_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const exchangeRateColumns = `
	exchange_rate_id, base_currency_code, target_currency_code, rate, rate_date,
	fetched_at, source, created_at, created_by, last_updated_at, last_updated_by`

// PgxExchangeRateRepository implements ExchangeRateRepository using pgxpool.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// NewPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func NewPgxExchangeRateRepository(db *pgxpool.Pool) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ExchangeRateRepository = (*PgxExchangeRateRepository)(nil)

// UpsertExchangeRate inserts the rate or replaces rate/fetched_at/source for
// the (base, target, rate_date) key. The unique constraint makes concurrent
// fetches idempotent: one effective row per pair per calendar day.
func (r *PgxExchangeRateRepository) UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	base := strings.ToUpper(rate.BaseCurrencyCode)
	target := strings.ToUpper(rate.TargetCurrency)
	if base == target {
		return apperrors.NewValidationError("base and target currencies cannot be the same")
	}

	modelRate := mapping.ToModelExchangeRate(rate)
	modelRate.BaseCurrencyCode = base
	modelRate.TargetCurrency = target

	_, err := r.Pool.Exec(ctx, `
		INSERT INTO exchange_rates (
			exchange_rate_id, base_currency_code, target_currency_code, rate, rate_date,
			fetched_at, source, created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (base_currency_code, target_currency_code, rate_date)
		DO UPDATE SET rate = EXCLUDED.rate, fetched_at = EXCLUDED.fetched_at,
			source = EXCLUDED.source, last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by`,
		modelRate.ExchangeRateID, modelRate.BaseCurrencyCode, modelRate.TargetCurrency,
		modelRate.Rate, modelRate.RateDate, modelRate.FetchedAt, modelRate.Source,
		modelRate.CreatedAt, modelRate.CreatedBy, modelRate.LastUpdatedAt, modelRate.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to upsert exchange rate", err)
	}
	return nil
}

// FindRateAsOf returns the effective rate on asOf: latest rate_date <= asOf,
// breaking same-day ties by the most recent fetch.
func (r *PgxExchangeRateRepository) FindRateAsOf(ctx context.Context, base, target string, asOf time.Time) (*domain.ExchangeRate, error) {
	base = strings.ToUpper(base)
	target = strings.ToUpper(target)

	query := `
		SELECT` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE base_currency_code = $1 AND target_currency_code = $2 AND rate_date <= $3
		ORDER BY rate_date DESC, fetched_at DESC
		LIMIT 1;
	`

	var modelRate models.ExchangeRate
	err := r.Pool.QueryRow(ctx, query, base, target, asOf).Scan(
		&modelRate.ExchangeRateID, &modelRate.BaseCurrencyCode, &modelRate.TargetCurrency,
		&modelRate.Rate, &modelRate.RateDate, &modelRate.FetchedAt, &modelRate.Source,
		&modelRate.CreatedAt, &modelRate.CreatedBy, &modelRate.LastUpdatedAt, &modelRate.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s->%s as of %s", apperrors.ErrRateNotFound, base, target, asOf.Format("2006-01-02"))
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}

	domainRate := mapping.ToDomainExchangeRate(modelRate)
	return &domainRate, nil
}

// ListExchangeRates retrieves rates with optional filtering and pagination.
func (r *PgxExchangeRateRepository) ListExchangeRates(
	ctx context.Context,
	base, target *string,
	asOf *time.Time,
	page, pageSize int,
) ([]domain.ExchangeRate, int, error) {
	baseQuery := `FROM exchange_rates WHERE 1=1`
	args := []interface{}{}
	argNum := 1

	if base != nil {
		baseQuery += fmt.Sprintf(" AND base_currency_code = $%d", argNum)
		args = append(args, strings.ToUpper(*base))
		argNum++
	}
	if target != nil {
		baseQuery += fmt.Sprintf(" AND target_currency_code = $%d", argNum)
		args = append(args, strings.ToUpper(*target))
		argNum++
	}
	if asOf != nil {
		baseQuery += fmt.Sprintf(" AND rate_date <= $%d", argNum)
		args = append(args, asOf.Truncate(24*time.Hour))
		argNum++
	}

	var total int
	countQuery := "SELECT COUNT(*) " + baseQuery
	err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count exchange rates", err)
	}
	if total == 0 {
		return []domain.ExchangeRate{}, 0, nil
	}

	baseQuery += " ORDER BY base_currency_code, target_currency_code, rate_date DESC, fetched_at DESC"
	if pageSize > 0 {
		offset := (page - 1) * pageSize
		baseQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
		args = append(args, pageSize, offset)
	}

	rows, err := r.Pool.Query(ctx, "SELECT"+exchangeRateColumns+" "+baseQuery, args...)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to list exchange rates", err)
	}
	defer rows.Close()

	var rates []domain.ExchangeRate
	for rows.Next() {
		var modelRate models.ExchangeRate
		err := rows.Scan(
			&modelRate.ExchangeRateID, &modelRate.BaseCurrencyCode, &modelRate.TargetCurrency,
			&modelRate.Rate, &modelRate.RateDate, &modelRate.FetchedAt, &modelRate.Source,
			&modelRate.CreatedAt, &modelRate.CreatedBy, &modelRate.LastUpdatedAt, &modelRate.LastUpdatedBy,
		)
		if err != nil {
			return nil, 0, apperrors.NewAppError(500, "failed to scan exchange rate", err)
		}
		rates = append(rates, mapping.ToDomainExchangeRate(modelRate))
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewAppError(500, "error iterating exchange rates", err)
	}

	return rates, total, nil
}

// PgxCurrencyRepository implements CurrencyRepository using pgxpool.
type PgxCurrencyRepository struct {
	BaseRepository
}

// NewPgxCurrencyRepository creates a new PgxCurrencyRepository.
func NewPgxCurrencyRepository(db *pgxpool.Pool) *PgxCurrencyRepository {
	return &PgxCurrencyRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.CurrencyRepository = (*PgxCurrencyRepository)(nil)

const currencyColumns = `
	currency_code, symbol, name, precision, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

// ListActiveCurrencies returns the currencies the rate fetch job stores rates for.
func (r *PgxCurrencyRepository) ListActiveCurrencies(ctx context.Context) ([]domain.Currency, error) {
	rows, err := r.Pool.Query(ctx, `SELECT`+currencyColumns+` FROM currencies WHERE is_active ORDER BY currency_code`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list active currencies", err)
	}
	defer rows.Close()

	var currencies []domain.Currency
	for rows.Next() {
		var model models.Currency
		err := rows.Scan(
			&model.CurrencyCode, &model.Symbol, &model.Name, &model.Precision, &model.IsActive,
			&model.CreatedAt, &model.CreatedBy, &model.LastUpdatedAt, &model.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan currency", err)
		}
		currencies = append(currencies, mapping.ToDomainCurrency(model))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating currencies", err)
	}
	return currencies, nil
}

// FindCurrencyByCode retrieves a currency by its code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	var model models.Currency
	err := r.Pool.QueryRow(ctx, `SELECT`+currencyColumns+` FROM currencies WHERE currency_code = $1`, strings.ToUpper(code)).Scan(
		&model.CurrencyCode, &model.Symbol, &model.Name, &model.Precision, &model.IsActive,
		&model.CreatedAt, &model.CreatedBy, &model.LastUpdatedAt, &model.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("currency " + code + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find currency", err)
	}
	currency := mapping.ToDomainCurrency(model)
	return &currency, nil
}
