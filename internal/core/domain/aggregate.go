package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyFigures is a single month's converted totals within a summary report.
type MonthlyFigures struct {
	Month    string          `json:"month"` // "2026-02"
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

// CurrencyFigures holds unconverted sums for one original currency.
type CurrencyFigures struct {
	CurrencyCode string          `json:"currencyCode"`
	Revenue      decimal.Decimal `json:"revenue"`
	Expenses     decimal.Decimal `json:"expenses"`
}

// ProfitabilityRow is one project's or client's profitability line.
type ProfitabilityRow struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Revenue  decimal.Decimal `json:"revenue"`
	TimeCost decimal.Decimal `json:"timeCost"` // Zero for fixed-price projects
	Expenses decimal.Decimal `json:"expenses"`
	Profit   decimal.Decimal `json:"profit"`
}

// AgingBucket is one range of the receivables aging report.
type AgingBucket struct {
	Label        string          `json:"label"` // "0-30", "31-60", "61-90", "90+"
	InvoiceCount int             `json:"invoiceCount"`
	Outstanding  decimal.Decimal `json:"outstanding"` // Converted to base currency
}

// ReportWarning surfaces a record that had to be excluded from converted totals.
type ReportWarning struct {
	RecordKind RecordKind `json:"recordKind"`
	RecordID   string     `json:"recordID"`
	Reason     string     `json:"reason"`
}

// AggregateReport is the fiscal-year / date-window summary. It is constructed
// fresh per request and never cached: source records and exchange rates mutate
// independently of each other.
type AggregateReport struct {
	AccountID        string    `json:"accountID"`
	BaseCurrencyCode string    `json:"baseCurrencyCode"`
	DateFrom         time.Time `json:"dateFrom"`
	DateTo           time.Time `json:"dateTo"`

	// Revenue is tracked on both bases; see the cash/accrual note in DESIGN.md.
	RevenueCash    decimal.Decimal `json:"revenueCash"`    // Amounts actually collected
	RevenueAccrual decimal.Decimal `json:"revenueAccrual"` // Full invoice totals at issue
	Expenses       decimal.Decimal `json:"expenses"`
	Profit         decimal.Decimal `json:"profit"` // RevenueCash - Expenses
	MarginPercent  decimal.Decimal `json:"marginPercent"`

	VATCollected  decimal.Decimal `json:"vatCollected"`
	VATDeductible decimal.Decimal `json:"vatDeductible"`

	ByMonth    []MonthlyFigures  `json:"byMonth"`
	ByCurrency []CurrencyFigures `json:"byCurrency"`
	ByProject  []ProfitabilityRow `json:"byProject"`
	ByClient   []ProfitabilityRow `json:"byClient"`

	Receivables []AgingBucket   `json:"receivables"`
	Warnings    []ReportWarning `json:"warnings"`
}

// TimeEntry is a unit of tracked work used for project time cost.
type TimeEntry struct {
	TimeEntryID     string    `json:"timeEntryID"`
	AccountID       string    `json:"accountID"`
	ProjectID       string    `json:"projectID"`
	Date            time.Time `json:"date"`
	DurationMinutes int64     `json:"durationMinutes"`
}

// BillingMode distinguishes hourly from fixed-price projects.
type BillingMode string

const (
	BillingHourly     BillingMode = "HOURLY"
	BillingFixedPrice BillingMode = "FIXED_PRICE"
)

// Project carries the billing configuration needed for profitability.
type Project struct {
	ProjectID   string          `json:"projectID"`
	AccountID   string          `json:"accountID"`
	Name        string          `json:"name"`
	ClientID    string          `json:"clientID"`
	BillingMode BillingMode     `json:"billingMode"`
	HourlyRate  decimal.Decimal `json:"hourlyRate"` // In the account base currency
}
