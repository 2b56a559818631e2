package domain

import (
	"fmt"
	"time"
)

// PeriodType selects the granularity of a VAT declaration.
type PeriodType string

const (
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
)

// Valid reports whether the period type is one of the supported values.
func (p PeriodType) Valid() bool {
	return p == PeriodMonthly || p == PeriodQuarterly
}

// PeriodsPerYear returns 12 for monthly and 4 for quarterly grouping.
func (p PeriodType) PeriodsPerYear() int {
	if p == PeriodQuarterly {
		return 4
	}
	return 12
}

// PeriodIndex maps a calendar month to its period index for this granularity.
// Quarterly: ceil(month/3); monthly: the month number itself.
func (p PeriodType) PeriodIndex(month time.Month) int {
	if p == PeriodQuarterly {
		return (int(month) + 2) / 3
	}
	return int(month)
}

// Period identifies a calendar month or quarter within a year.
type Period struct {
	Year  int `json:"year"`
	Index int `json:"index"` // 1-12 for months, 1-4 for quarters
}

// Label renders the period for report output, e.g. "2026-03" or "2026-Q1".
func (p Period) Label(t PeriodType) string {
	if t == PeriodQuarterly {
		return fmt.Sprintf("%d-Q%d", p.Year, p.Index)
	}
	return fmt.Sprintf("%d-%02d", p.Year, p.Index)
}

// FiscalYear is a 12-month window starting at a configurable month.
type FiscalYear struct {
	Year       int // Calendar year the fiscal year starts in
	StartMonth int // 1-12
}

// Window returns the inclusive [start, end] date range of the fiscal year.
// With StartMonth == 1 this is the plain calendar year. Otherwise the window
// runs from the first day of StartMonth in Year to the last day of the
// preceding month one year later.
func (fy FiscalYear) Window() (time.Time, time.Time) {
	month := fy.StartMonth
	if month < 1 || month > 12 {
		month = 1
	}
	start := time.Date(fy.Year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, -1)
	return start, end
}

// Contains reports whether d falls inside the fiscal year window.
func (fy FiscalYear) Contains(d time.Time) bool {
	start, end := fy.Window()
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(start) && !day.After(end)
}
