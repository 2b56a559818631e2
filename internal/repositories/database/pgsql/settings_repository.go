package pgsql

import (
	"context"
	"errors"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	portsrepo "github.com/facturio/fiscal_engine_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSettingsRepository implements SettingsRepository using pgxpool.
type PgxSettingsRepository struct {
	BaseRepository
}

// NewPgxSettingsRepository creates a new PgxSettingsRepository.
func NewPgxSettingsRepository(db *pgxpool.Pool) *PgxSettingsRepository {
	return &PgxSettingsRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.SettingsRepository = (*PgxSettingsRepository)(nil)

// GetAccountSettings returns the account's settings row or apperrors.ErrNotFound.
func (r *PgxSettingsRepository) GetAccountSettings(ctx context.Context, accountID string) (*domain.AccountSettings, error) {
	var s domain.AccountSettings
	err := r.Pool.QueryRow(ctx, `
		SELECT account_id, base_currency_code, fiscal_year_start_month,
			sales_journal_code, sales_journal_label,
			purchases_journal_code, purchases_journal_label,
			bank_journal_code, bank_journal_label,
			sales_account_code, bank_account_code, client_account_code,
			supplier_account_code, expense_account_code,
			vat_collected_account, vat_deductible_account,
			aux_account_prefix, export_separator, decimal_comma
		FROM account_settings
		WHERE account_id = $1`, accountID).Scan(
		&s.AccountID, &s.BaseCurrencyCode, &s.FiscalYearStartMonth,
		&s.SalesJournalCode, &s.SalesJournalLabel,
		&s.PurchasesJournalCode, &s.PurchasesJournalLbl,
		&s.BankJournalCode, &s.BankJournalLabel,
		&s.SalesAccountCode, &s.BankAccountCode, &s.ClientAccountCode,
		&s.SupplierAccountCode, &s.ExpenseAccountCode,
		&s.VATCollectedAccount, &s.VATDeductibleAccount,
		&s.AuxAccountPrefix, &s.ExportSeparator, &s.DecimalComma,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("settings for account " + accountID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to get account settings", err)
	}
	return &s, nil
}
