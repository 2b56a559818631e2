package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	portsrepo "github.com/facturio/fiscal_engine_app/internal/core/ports/repositories"
	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/facturio/fiscal_engine_app/internal/utils"
	"github.com/shopspring/decimal"
)

// vatService aggregates tax amounts per rate bucket per calendar period.
// VAT is computed in the invoice currency; no conversion is involved.
type vatService struct {
	BaseService
	recordRepo portsrepo.RecordRepository
}

// NewVATService creates a new VAT declaration builder.
func NewVATService(recordRepo portsrepo.RecordRepository) portssvc.VATSvcFacade {
	return &vatService{recordRepo: recordRepo}
}

var _ portssvc.VATSvcFacade = (*vatService)(nil)

// Build aggregates collected and deductible VAT per period of the year.
// Periods are always calendar months or quarters, regardless of the account's
// fiscal year start.
func (s *vatService) Build(ctx context.Context, accountID string, year int, periodType domain.PeriodType) (*domain.VATReport, error) {
	if year < 2000 || year > 2100 {
		return nil, fmt.Errorf("%w: year must be between 2000 and 2100", apperrors.ErrValidation)
	}
	if !periodType.Valid() {
		return nil, fmt.Errorf("%w: period type must be monthly or quarterly", apperrors.ErrValidation)
	}

	filter := portsrepo.RecordFilter{
		DateFrom: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}

	invoices, err := s.recordRepo.ListInvoices(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices for VAT declaration: %w", err)
	}
	creditNotes, err := s.recordRepo.ListCreditNotes(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load credit notes for VAT declaration: %w", err)
	}
	expenses, err := s.recordRepo.ListExpenses(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses for VAT declaration: %w", err)
	}

	report := &domain.VATReport{
		AccountID:  accountID,
		Year:       year,
		PeriodType: periodType,
		Periods:    make([]domain.VATPeriodLine, periodType.PeriodsPerYear()),
	}
	for i := range report.Periods {
		report.Periods[i] = domain.VATPeriodLine{
			Period:  domain.Period{Year: year, Index: i + 1},
			Buckets: make(map[string]domain.TaxBucketAmounts),
		}
	}

	extraKeys := make(map[string]struct{})
	addBuckets := func(periodIdx int, buckets map[string]domain.TaxBucketAmounts, negate bool) {
		line := &report.Periods[periodIdx-1]
		for key, b := range buckets {
			if !isKnownRateKey(key) {
				extraKeys[key] = struct{}{}
			}
			acc := line.Buckets[key]
			acc.Rate = b.Rate
			if negate {
				acc.Base = acc.Base.Sub(b.Base)
				acc.Tax = acc.Tax.Sub(b.Tax)
			} else {
				acc.Base = acc.Base.Add(b.Base)
				acc.Tax = acc.Tax.Add(b.Tax)
			}
			line.Buckets[key] = acc
		}
	}

	for _, inv := range invoices {
		if inv.Status == domain.StatusCancelled || inv.Status == domain.StatusDraft {
			continue
		}
		addBuckets(periodType.PeriodIndex(inv.IssueDate.Month()), inv.VATBreakdown(), false)
	}
	for _, cn := range creditNotes {
		addBuckets(periodType.PeriodIndex(cn.IssueDate.Month()), cn.VATBreakdown(), true)
	}
	for _, e := range expenses {
		if !e.VATDeductible {
			continue
		}
		idx := periodType.PeriodIndex(e.Date.Month())
		line := &report.Periods[idx-1]
		line.TotalDeductible = line.TotalDeductible.Add(e.VATAmount())
	}

	// Rate key column set: the known buckets always appear, extras follow.
	report.RateKeys = append(report.RateKeys, domain.KnownVATRateKeys...)
	extras := make([]string, 0, len(extraKeys))
	for key := range extraKeys {
		extras = append(extras, key)
	}
	sort.Strings(extras)
	report.RateKeys = append(report.RateKeys, extras...)

	for i := range report.Periods {
		line := &report.Periods[i]
		for _, b := range line.Buckets {
			line.TotalCollected = line.TotalCollected.Add(b.Tax)
		}
		line.NetDue = line.TotalCollected.Sub(line.TotalDeductible)
		line.IsCredit = line.NetDue.IsNegative()

		report.TotalCollected = report.TotalCollected.Add(line.TotalCollected)
		report.TotalDeductible = report.TotalDeductible.Add(line.TotalDeductible)
	}
	report.NetDue = report.TotalCollected.Sub(report.TotalDeductible)
	report.IsCredit = report.NetDue.IsNegative()

	s.LogInfo(ctx, "VAT declaration built",
		slog.String("account_id", accountID),
		slog.Int("year", year),
		slog.String("period_type", string(periodType)),
		slog.Int("periods", len(report.Periods)))
	return report, nil
}

// WriteCSV renders one row per period plus a totals row. Buckets not present
// in the data still appear as zero columns.
func (s *vatService) WriteCSV(report *domain.VATReport, w io.Writer) error {
	header := []string{"Period"}
	for _, key := range report.RateKeys {
		header = append(header, fmt.Sprintf("Base %s%%", key), fmt.Sprintf("VAT %s%%", key))
	}
	header = append(header, "Collected", "Deductible", "Net due", "Credit")
	if _, err := fmt.Fprintf(w, "%s\n", strings.Join(header, ";")); err != nil {
		return fmt.Errorf("failed to write VAT CSV header: %w", err)
	}

	writeRow := func(label string, buckets map[string]domain.TaxBucketAmounts, collected, deductible, netDue decimal.Decimal, isCredit bool) error {
		fields := []string{label}
		for _, key := range report.RateKeys {
			b := buckets[key]
			fields = append(fields, utils.FormatMonetary(b.Base, false), utils.FormatMonetary(b.Tax, false))
		}
		credit := ""
		if isCredit {
			credit = "yes"
		}
		fields = append(fields,
			utils.FormatMonetary(collected, false),
			utils.FormatMonetary(deductible, false),
			utils.FormatMonetary(netDue, false),
			credit)
		_, err := fmt.Fprintf(w, "%s\n", strings.Join(fields, ";"))
		return err
	}

	totalBuckets := make(map[string]domain.TaxBucketAmounts)
	for _, line := range report.Periods {
		if err := writeRow(line.Period.Label(report.PeriodType), line.Buckets, line.TotalCollected, line.TotalDeductible, line.NetDue, line.IsCredit); err != nil {
			return fmt.Errorf("failed to write VAT CSV row: %w", err)
		}
		for key, b := range line.Buckets {
			acc := totalBuckets[key]
			acc.Rate = b.Rate
			acc.Base = acc.Base.Add(b.Base)
			acc.Tax = acc.Tax.Add(b.Tax)
			totalBuckets[key] = acc
		}
	}
	if err := writeRow("Total", totalBuckets, report.TotalCollected, report.TotalDeductible, report.NetDue, report.IsCredit); err != nil {
		return fmt.Errorf("failed to write VAT CSV totals: %w", err)
	}
	return nil
}

func isKnownRateKey(key string) bool {
	for _, known := range domain.KnownVATRateKeys {
		if key == known {
			return true
		}
	}
	return false
}

// VATFilename builds the declaration download filename.
func VATFilename(year int) string {
	return fmt.Sprintf("vat_declaration_%d.csv", year)
}
