package repositories

import (
	"context"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/core/domain"
)

// RecordFilter narrows record queries for the aggregator.
type RecordFilter struct {
	DateFrom  time.Time
	DateTo    time.Time
	ClientID  string // Optional
	ProjectID string // Optional
}

// RecordRepository fetches already-validated domain records for one account.
// The engine never writes these; they are owned by the invoicing layer.
type RecordRepository interface {
	// ListRecordsForExport returns records dated within [from, to] in the
	// deterministic export order (date asc, creation order asc), in batches of
	// at most limit, using a keyset pagination token. A nil next token means
	// the sequence is exhausted.
	ListRecordsForExport(ctx context.Context, accountID string, from, to time.Time, nextToken *string, limit int) ([]domain.AccountingRecord, *string, error)

	// ListInvoices returns invoices matching the filter, issue date ascending.
	ListInvoices(ctx context.Context, accountID string, filter RecordFilter) ([]domain.Invoice, error)

	// ListCreditNotes returns credit notes matching the filter, issue date ascending.
	ListCreditNotes(ctx context.Context, accountID string, filter RecordFilter) ([]domain.CreditNote, error)

	// ListExpenses returns expenses matching the filter, date ascending.
	ListExpenses(ctx context.Context, accountID string, filter RecordFilter) ([]domain.Expense, error)

	// ListOpenInvoices returns invoices that are neither fully paid nor
	// cancelled, for receivables aging.
	ListOpenInvoices(ctx context.Context, accountID string, asOf time.Time) ([]domain.Invoice, error)

	// ListTimeEntries returns tracked time within the range, for time cost.
	ListTimeEntries(ctx context.Context, accountID string, from, to time.Time) ([]domain.TimeEntry, error)

	// ListProjects returns the account's projects with billing configuration.
	ListProjects(ctx context.Context, accountID string) ([]domain.Project, error)
}

// SettingsRepository reads the per-tenant accounting configuration.
type SettingsRepository interface {
	// GetAccountSettings returns the settings row or apperrors.ErrNotFound.
	GetAccountSettings(ctx context.Context, accountID string) (*domain.AccountSettings, error)
}
