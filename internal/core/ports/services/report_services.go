package services

import (
	"context"
	"io"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/core/domain"
)

// VATSvcFacade builds periodic VAT declarations.
type VATSvcFacade interface {
	// Build aggregates collected and deductible VAT per calendar period of the
	// year. VAT periods are always calendar-based, regardless of the account's
	// fiscal year start.
	Build(ctx context.Context, accountID string, year int, periodType domain.PeriodType) (*domain.VATReport, error)

	// WriteCSV renders one row per period plus a totals row. Known rate
	// buckets appear even when zero.
	WriteCSV(report *domain.VATReport, w io.Writer) error
}

// SummaryFilters narrows an aggregate report request. Year is mutually
// exclusive with an explicit DateFrom/DateTo range.
type SummaryFilters struct {
	DateFrom  time.Time
	DateTo    time.Time
	Year      int    // When set, the window derives from the fiscal year start month
	ClientID  string // Optional
	ProjectID string // Optional
}

// AggregateSvcFacade builds revenue/expense summaries and profitability reports.
type AggregateSvcFacade interface {
	// BuildSummary aggregates revenue, expenses, VAT position, profitability
	// and receivables over the requested window, converting foreign-currency
	// amounts into the account base currency. Records without a resolvable
	// rate are excluded from converted totals and surfaced in Warnings.
	BuildSummary(ctx context.Context, accountID string, filters SummaryFilters) (*domain.AggregateReport, error)
}
