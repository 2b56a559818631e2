package dto

import (
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// VATReportQuery defines the query parameters for building a VAT declaration.
type VATReportQuery struct {
	Year       int    `form:"year" binding:"required,min=2000,max=2100"`
	PeriodType string `form:"periodType" binding:"omitempty,oneof=monthly quarterly"`
	Format     string `form:"format" binding:"omitempty,oneof=json csv"`
}

// VATBucketResponse is one rate bucket of a VAT period.
type VATBucketResponse struct {
	Rate decimal.Decimal `json:"rate"`
	Base decimal.Decimal `json:"base"`
	Tax  decimal.Decimal `json:"tax"`
}

// VATPeriodResponse is one declaration period.
type VATPeriodResponse struct {
	Label           string                       `json:"label"`
	Buckets         map[string]VATBucketResponse `json:"buckets"`
	TotalCollected  decimal.Decimal              `json:"totalCollected"`
	TotalDeductible decimal.Decimal              `json:"totalDeductible"`
	NetDue          decimal.Decimal              `json:"netDue"`
	IsCredit        bool                         `json:"isCredit"`
}

// VATReportResponse is the yearly VAT declaration response.
type VATReportResponse struct {
	Year            int                 `json:"year"`
	PeriodType      string              `json:"periodType"`
	RateKeys        []string            `json:"rateKeys"`
	Periods         []VATPeriodResponse `json:"periods"`
	TotalCollected  decimal.Decimal     `json:"totalCollected"`
	TotalDeductible decimal.Decimal     `json:"totalDeductible"`
	NetDue          decimal.Decimal     `json:"netDue"`
	IsCredit        bool                `json:"isCredit"`
}

// ToVATReportResponse converts a domain VAT report to its DTO response.
func ToVATReportResponse(report *domain.VATReport) VATReportResponse {
	response := VATReportResponse{
		Year:            report.Year,
		PeriodType:      string(report.PeriodType),
		RateKeys:        report.RateKeys,
		Periods:         make([]VATPeriodResponse, len(report.Periods)),
		TotalCollected:  report.TotalCollected,
		TotalDeductible: report.TotalDeductible,
		NetDue:          report.NetDue,
		IsCredit:        report.IsCredit,
	}
	for i, period := range report.Periods {
		buckets := make(map[string]VATBucketResponse, len(period.Buckets))
		for key, bucket := range period.Buckets {
			buckets[key] = VATBucketResponse{
				Rate: bucket.Rate,
				Base: bucket.Base,
				Tax:  bucket.Tax,
			}
		}
		response.Periods[i] = VATPeriodResponse{
			Label:           period.Period.Label(report.PeriodType),
			Buckets:         buckets,
			TotalCollected:  period.TotalCollected,
			TotalDeductible: period.TotalDeductible,
			NetDue:          period.NetDue,
			IsCredit:        period.IsCredit,
		}
	}
	return response
}

// SummaryQuery defines the query parameters for an aggregate summary request.
// year and from/to are mutually exclusive.
type SummaryQuery struct {
	Year      int    `form:"year" binding:"omitempty,min=2000,max=2100"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	ClientID  string `form:"clientID"`
	ProjectID string `form:"projectID"`
}

// SummaryResponse is the aggregate revenue/expense report response.
type SummaryResponse struct {
	BaseCurrencyCode string `json:"baseCurrencyCode"`
	DateFrom         string `json:"dateFrom"`
	DateTo           string `json:"dateTo"`

	RevenueCash    decimal.Decimal `json:"revenueCash"`
	RevenueAccrual decimal.Decimal `json:"revenueAccrual"`
	Expenses       decimal.Decimal `json:"expenses"`
	Profit         decimal.Decimal `json:"profit"`
	MarginPercent  decimal.Decimal `json:"marginPercent"`
	VATCollected   decimal.Decimal `json:"vatCollected"`
	VATDeductible  decimal.Decimal `json:"vatDeductible"`

	ByMonth     []domain.MonthlyFigures   `json:"byMonth"`
	ByCurrency  []domain.CurrencyFigures  `json:"byCurrency"`
	ByProject   []domain.ProfitabilityRow `json:"byProject"`
	ByClient    []domain.ProfitabilityRow `json:"byClient"`
	Receivables []domain.AgingBucket      `json:"receivables"`
	Warnings    []domain.ReportWarning    `json:"warnings"`
}

// ToSummaryResponse converts a domain aggregate report to its DTO response.
func ToSummaryResponse(report *domain.AggregateReport) SummaryResponse {
	return SummaryResponse{
		BaseCurrencyCode: report.BaseCurrencyCode,
		DateFrom:         report.DateFrom.Format("2006-01-02"),
		DateTo:           report.DateTo.Format("2006-01-02"),
		RevenueCash:      report.RevenueCash,
		RevenueAccrual:   report.RevenueAccrual,
		Expenses:         report.Expenses,
		Profit:           report.Profit,
		MarginPercent:    report.MarginPercent,
		VATCollected:     report.VATCollected,
		VATDeductible:    report.VATDeductible,
		ByMonth:          report.ByMonth,
		ByCurrency:       report.ByCurrency,
		ByProject:        report.ByProject,
		ByClient:         report.ByClient,
		Receivables:      report.Receivables,
		Warnings:         report.Warnings,
	}
}
