package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	portsrepo "github.com/facturio/fiscal_engine_app/internal/core/ports/repositories"
	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

const monthLayout = "2006-01"

var minutesPerHour = decimal.NewFromInt(60)

// aggregateService builds revenue/expense summaries, profitability reports and
// receivables aging over arbitrary or fiscal-year windows. Converted amounts
// are summed at full precision and rounded once on each surfaced total.
type aggregateService struct {
	BaseService
	recordRepo   portsrepo.RecordRepository
	settingsRepo portsrepo.SettingsRepository
	rateSvc      portssvc.RateSvcFacade
}

// NewAggregateService creates a new aggregate report builder.
func NewAggregateService(recordRepo portsrepo.RecordRepository, settingsRepo portsrepo.SettingsRepository, rateSvc portssvc.RateSvcFacade) portssvc.AggregateSvcFacade {
	return &aggregateService{
		recordRepo:   recordRepo,
		settingsRepo: settingsRepo,
		rateSvc:      rateSvc,
	}
}

var _ portssvc.AggregateSvcFacade = (*aggregateService)(nil)

// accumulator keeps full-precision running sums keyed by an arbitrary string.
type accumulator map[string]decimal.Decimal

func (a accumulator) add(key string, amount decimal.Decimal) {
	a[key] = a[key].Add(amount)
}

// BuildSummary aggregates the requested window. The report structure is always
// complete: records without a resolvable rate are excluded from converted
// totals and surfaced in Warnings instead of failing the whole report.
func (s *aggregateService) BuildSummary(ctx context.Context, accountID string, filters portssvc.SummaryFilters) (*domain.AggregateReport, error) {
	settings, err := s.settingsRepo.GetAccountSettings(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account settings: %w", err)
	}

	from, to, err := resolveWindow(filters, settings.FiscalYearStartMonth)
	if err != nil {
		return nil, err
	}

	filter := portsrepo.RecordFilter{
		DateFrom:  from,
		DateTo:    to,
		ClientID:  filters.ClientID,
		ProjectID: filters.ProjectID,
	}

	invoices, err := s.recordRepo.ListInvoices(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices for summary: %w", err)
	}
	creditNotes, err := s.recordRepo.ListCreditNotes(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load credit notes for summary: %w", err)
	}
	expenses, err := s.recordRepo.ListExpenses(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses for summary: %w", err)
	}
	projects, err := s.recordRepo.ListProjects(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects for summary: %w", err)
	}
	timeEntries, err := s.recordRepo.ListTimeEntries(ctx, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load time entries for summary: %w", err)
	}

	report := &domain.AggregateReport{
		AccountID:        accountID,
		BaseCurrencyCode: settings.BaseCurrencyCode,
		DateFrom:         from,
		DateTo:           to,
	}

	revenueCash := decimal.Zero
	revenueAccrual := decimal.Zero
	totalExpenses := decimal.Zero
	vatCollected := decimal.Zero
	vatDeductible := decimal.Zero
	monthRevenue := accumulator{}
	monthExpenses := accumulator{}
	currencyRevenue := accumulator{}
	currencyExpenses := accumulator{}
	projectRevenue := accumulator{}
	projectExpenses := accumulator{}
	clientRevenue := accumulator{}
	clientExpenses := accumulator{}
	clientNames := map[string]string{}

	for _, inv := range invoices {
		if inv.Status == domain.StatusDraft || inv.Status == domain.StatusCancelled {
			continue
		}
		clientNames[inv.ClientID] = inv.ClientName

		net := inv.TotalExclTax()
		// Original, unconverted amounts always land in the currency breakdown.
		currencyRevenue.add(inv.CurrencyCode, net)

		rate, err := s.rateSvc.Resolve(ctx, inv.CurrencyCode, settings.BaseCurrencyCode, inv.IssueDate)
		if err != nil {
			if errors.Is(err, apperrors.ErrRateNotFound) {
				report.Warnings = append(report.Warnings, domain.ReportWarning{
					RecordKind: domain.KindInvoice,
					RecordID:   inv.InvoiceID,
					Reason:     fmt.Sprintf("no %s->%s rate as of %s", inv.CurrencyCode, settings.BaseCurrencyCode, inv.IssueDate.Format("2006-01-02")),
				})
				continue
			}
			return nil, err
		}

		accrual := net.Mul(rate)
		revenueAccrual = revenueAccrual.Add(accrual)

		collected := s.collectedNet(inv).Mul(rate)
		revenueCash = revenueCash.Add(collected)
		vatCollected = vatCollected.Add(inv.TotalTax().Mul(rate))

		monthKey := inv.IssueDate.Format(monthLayout)
		monthRevenue.add(monthKey, collected)
		if inv.ProjectID != "" {
			projectRevenue.add(inv.ProjectID, collected)
		}
		clientRevenue.add(inv.ClientID, collected)
	}

	for _, cn := range creditNotes {
		net := cn.TotalExclTax()
		currencyRevenue.add(cn.CurrencyCode, net.Neg())

		rate, err := s.rateSvc.Resolve(ctx, cn.CurrencyCode, settings.BaseCurrencyCode, cn.IssueDate)
		if err != nil {
			if errors.Is(err, apperrors.ErrRateNotFound) {
				report.Warnings = append(report.Warnings, domain.ReportWarning{
					RecordKind: domain.KindCreditNote,
					RecordID:   cn.CreditNoteID,
					Reason:     fmt.Sprintf("no %s->%s rate as of %s", cn.CurrencyCode, settings.BaseCurrencyCode, cn.IssueDate.Format("2006-01-02")),
				})
				continue
			}
			return nil, err
		}
		revenueAccrual = revenueAccrual.Sub(net.Mul(rate))
		vatCollected = vatCollected.Sub(cn.TotalTax().Mul(rate))
	}

	for _, e := range expenses {
		net := e.AmountExclTax
		currencyExpenses.add(e.CurrencyCode, net)

		rate, err := s.rateSvc.Resolve(ctx, e.CurrencyCode, settings.BaseCurrencyCode, e.Date)
		if err != nil {
			if errors.Is(err, apperrors.ErrRateNotFound) {
				report.Warnings = append(report.Warnings, domain.ReportWarning{
					RecordKind: domain.KindExpense,
					RecordID:   e.ExpenseID,
					Reason:     fmt.Sprintf("no %s->%s rate as of %s", e.CurrencyCode, settings.BaseCurrencyCode, e.Date.Format("2006-01-02")),
				})
				continue
			}
			return nil, err
		}

		converted := net.Mul(rate)
		totalExpenses = totalExpenses.Add(converted)
		monthExpenses.add(e.Date.Format(monthLayout), converted)
		if e.ProjectID != "" {
			projectExpenses.add(e.ProjectID, converted)
		}
		if e.VATDeductible {
			vatDeductible = vatDeductible.Add(e.VATAmount().Mul(rate))
		}
	}

	// Attribute project expenses to the owning client for client profitability.
	projectsByID := make(map[string]domain.Project, len(projects))
	for _, p := range projects {
		projectsByID[p.ProjectID] = p
	}
	for projectID, amount := range projectExpenses {
		if p, ok := projectsByID[projectID]; ok && p.ClientID != "" {
			clientExpenses.add(p.ClientID, amount)
		}
	}

	report.RevenueCash = revenueCash.Round(2)
	report.RevenueAccrual = revenueAccrual.Round(2)
	report.Expenses = totalExpenses.Round(2)
	report.Profit = revenueCash.Sub(totalExpenses).Round(2)
	report.VATCollected = vatCollected.Round(2)
	report.VATDeductible = vatDeductible.Round(2)
	if revenueCash.IsPositive() {
		report.MarginPercent = revenueCash.Sub(totalExpenses).Div(revenueCash).Mul(decimal.NewFromInt(100)).Round(2)
	}

	report.ByMonth = buildMonthly(from, to, monthRevenue, monthExpenses)
	report.ByCurrency = buildCurrencies(currencyRevenue, currencyExpenses)
	report.ByProject = s.buildProjectRows(projects, projectRevenue, projectExpenses, timeEntries)
	report.ByClient = buildClientRows(clientNames, clientRevenue, clientExpenses, report.ByProject, projectsByID)

	receivables, warnings, err := s.buildReceivables(ctx, *settings)
	if err != nil {
		return nil, err
	}
	report.Receivables = receivables
	report.Warnings = append(report.Warnings, warnings...)

	s.LogInfo(ctx, "Aggregate report built",
		slog.String("account_id", accountID),
		slog.String("from", from.Format("2006-01-02")),
		slog.String("to", to.Format("2006-01-02")),
		slog.Int("warnings", len(report.Warnings)))
	return report, nil
}

// collectedNet returns the tax-exclusive share of what was actually paid.
// AmountPaid is tax-inclusive, so the net portion is derived proportionally.
func (s *aggregateService) collectedNet(inv domain.Invoice) decimal.Decimal {
	if inv.Status != domain.StatusPaid && inv.Status != domain.StatusPartiallyPaid {
		return decimal.Zero
	}
	gross := inv.TotalInclTax()
	if gross.IsZero() {
		return decimal.Zero
	}
	paid := inv.AmountPaid
	if inv.Status == domain.StatusPaid && paid.GreaterThan(gross) {
		paid = gross
	}
	return paid.Mul(inv.TotalExclTax()).Div(gross)
}

// resolveWindow derives the report window from an explicit range or a fiscal
// year. Year and an explicit range are mutually exclusive.
func resolveWindow(filters portssvc.SummaryFilters, fiscalStartMonth int) (time.Time, time.Time, error) {
	hasRange := !filters.DateFrom.IsZero() || !filters.DateTo.IsZero()
	if filters.Year != 0 && hasRange {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: year and an explicit date range are mutually exclusive", apperrors.ErrValidation)
	}
	if filters.Year != 0 {
		if filters.Year < 2000 || filters.Year > 2100 {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: year must be between 2000 and 2100", apperrors.ErrValidation)
		}
		fy := domain.FiscalYear{Year: filters.Year, StartMonth: fiscalStartMonth}
		from, to := fy.Window()
		return from, to, nil
	}
	if err := ValidateDateRange(filters.DateFrom, filters.DateTo); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return filters.DateFrom, filters.DateTo, nil
}

func buildMonthly(from, to time.Time, revenue, expenses accumulator) []domain.MonthlyFigures {
	var rows []domain.MonthlyFigures
	cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		key := cursor.Format(monthLayout)
		rev := revenue[key]
		exp := expenses[key]
		rows = append(rows, domain.MonthlyFigures{
			Month:    key,
			Revenue:  rev.Round(2),
			Expenses: exp.Round(2),
			Profit:   rev.Sub(exp).Round(2),
		})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return rows
}

func buildCurrencies(revenue, expenses accumulator) []domain.CurrencyFigures {
	codes := make(map[string]struct{})
	for code := range revenue {
		codes[code] = struct{}{}
	}
	for code := range expenses {
		codes[code] = struct{}{}
	}
	rows := make([]domain.CurrencyFigures, 0, len(codes))
	for code := range codes {
		rows = append(rows, domain.CurrencyFigures{
			CurrencyCode: code,
			Revenue:      revenue[code].Round(2),
			Expenses:     expenses[code].Round(2),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CurrencyCode < rows[j].CurrencyCode })
	return rows
}

// buildProjectRows computes revenue - time_cost - allocated_expenses per
// project. Only hourly-billed projects carry a time cost.
func (s *aggregateService) buildProjectRows(projects []domain.Project, revenue, expenses accumulator, timeEntries []domain.TimeEntry) []domain.ProfitabilityRow {
	minutes := map[string]int64{}
	for _, entry := range timeEntries {
		minutes[entry.ProjectID] += entry.DurationMinutes
	}

	rows := make([]domain.ProfitabilityRow, 0, len(projects))
	for _, p := range projects {
		timeCost := decimal.Zero
		if p.BillingMode == domain.BillingHourly && minutes[p.ProjectID] > 0 {
			timeCost = decimal.NewFromInt(minutes[p.ProjectID]).Div(minutesPerHour).Mul(p.HourlyRate)
		}
		rev := revenue[p.ProjectID]
		exp := expenses[p.ProjectID]
		rows = append(rows, domain.ProfitabilityRow{
			ID:       p.ProjectID,
			Name:     p.Name,
			Revenue:  rev.Round(2),
			TimeCost: timeCost.Round(2),
			Expenses: exp.Round(2),
			Profit:   rev.Sub(timeCost).Sub(exp).Round(2),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Profit.Equal(rows[j].Profit) {
			return rows[i].Profit.GreaterThan(rows[j].Profit)
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func buildClientRows(names map[string]string, revenue, expenses accumulator, projectRows []domain.ProfitabilityRow, projectsByID map[string]domain.Project) []domain.ProfitabilityRow {
	// Time cost rolls up from the client's projects.
	timeCost := accumulator{}
	for _, row := range projectRows {
		if p, ok := projectsByID[row.ID]; ok && p.ClientID != "" {
			timeCost.add(p.ClientID, row.TimeCost)
		}
	}

	ids := make(map[string]struct{})
	for id := range revenue {
		ids[id] = struct{}{}
	}
	for id := range expenses {
		ids[id] = struct{}{}
	}
	rows := make([]domain.ProfitabilityRow, 0, len(ids))
	for id := range ids {
		rev := revenue[id]
		exp := expenses[id]
		cost := timeCost[id]
		rows = append(rows, domain.ProfitabilityRow{
			ID:       id,
			Name:     names[id],
			Revenue:  rev.Round(2),
			TimeCost: cost.Round(2),
			Expenses: exp.Round(2),
			Profit:   rev.Sub(cost).Sub(exp).Round(2),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Profit.Equal(rows[j].Profit) {
			return rows[i].Profit.GreaterThan(rows[j].Profit)
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

var agingRanges = []struct {
	label   string
	minDays int
	maxDays int // -1 means unbounded
}{
	{"0-30", 0, 30},
	{"31-60", 31, 60},
	{"61-90", 61, 90},
	{"90+", 91, -1},
}

// buildReceivables buckets unpaid, non-cancelled invoices by days past due.
func (s *aggregateService) buildReceivables(ctx context.Context, settings domain.AccountSettings) ([]domain.AgingBucket, []domain.ReportWarning, error) {
	now := time.Now().UTC()
	open, err := s.recordRepo.ListOpenInvoices(ctx, settings.AccountID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load open invoices for receivables: %w", err)
	}

	buckets := make([]domain.AgingBucket, len(agingRanges))
	sums := make([]decimal.Decimal, len(agingRanges))
	for i, r := range agingRanges {
		buckets[i] = domain.AgingBucket{Label: r.label}
	}

	var warnings []domain.ReportWarning
	for _, inv := range open {
		remaining := inv.RemainingDue()
		if !remaining.IsPositive() {
			continue
		}

		rate, err := s.rateSvc.Resolve(ctx, inv.CurrencyCode, settings.BaseCurrencyCode, inv.IssueDate)
		if err != nil {
			if errors.Is(err, apperrors.ErrRateNotFound) {
				warnings = append(warnings, domain.ReportWarning{
					RecordKind: domain.KindInvoice,
					RecordID:   inv.InvoiceID,
					Reason:     fmt.Sprintf("no %s->%s rate as of %s", inv.CurrencyCode, settings.BaseCurrencyCode, inv.IssueDate.Format("2006-01-02")),
				})
				continue
			}
			return nil, nil, err
		}

		overdue := int(now.Sub(inv.DueDate).Hours() / 24)
		if overdue < 0 {
			overdue = 0
		}
		for i, r := range agingRanges {
			if overdue >= r.minDays && (r.maxDays == -1 || overdue <= r.maxDays) {
				buckets[i].InvoiceCount++
				sums[i] = sums[i].Add(remaining.Mul(rate))
				break
			}
		}
	}
	for i := range buckets {
		buckets[i].Outstanding = sums[i].Round(2)
	}
	return buckets, warnings, nil
}
