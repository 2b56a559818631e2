package domain_test

import (
	"testing"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPeriodType_PeriodIndex(t *testing.T) {
	tests := []struct {
		name       string
		periodType domain.PeriodType
		month      time.Month
		want       int
	}{
		{"monthly january", domain.PeriodMonthly, time.January, 1},
		{"monthly december", domain.PeriodMonthly, time.December, 12},
		{"quarterly january", domain.PeriodQuarterly, time.January, 1},
		{"quarterly march", domain.PeriodQuarterly, time.March, 1},
		{"quarterly april", domain.PeriodQuarterly, time.April, 2},
		{"quarterly october", domain.PeriodQuarterly, time.October, 4},
		{"quarterly december", domain.PeriodQuarterly, time.December, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.periodType.PeriodIndex(tt.month))
		})
	}
}

func TestPeriodType_PeriodsPerYear(t *testing.T) {
	assert.Equal(t, 12, domain.PeriodMonthly.PeriodsPerYear())
	assert.Equal(t, 4, domain.PeriodQuarterly.PeriodsPerYear())
}

func TestPeriodType_Valid(t *testing.T) {
	assert.True(t, domain.PeriodMonthly.Valid())
	assert.True(t, domain.PeriodQuarterly.Valid())
	assert.False(t, domain.PeriodType("weekly").Valid())
	assert.False(t, domain.PeriodType("").Valid())
}

func TestPeriod_Label(t *testing.T) {
	assert.Equal(t, "2026-03", domain.Period{Year: 2026, Index: 3}.Label(domain.PeriodMonthly))
	assert.Equal(t, "2026-11", domain.Period{Year: 2026, Index: 11}.Label(domain.PeriodMonthly))
	assert.Equal(t, "2026-Q2", domain.Period{Year: 2026, Index: 2}.Label(domain.PeriodQuarterly))
}

func TestFiscalYear_Window(t *testing.T) {
	tests := []struct {
		name       string
		fiscalYear domain.FiscalYear
		wantStart  time.Time
		wantEnd    time.Time
	}{
		{
			name:       "calendar year",
			fiscalYear: domain.FiscalYear{Year: 2026, StartMonth: 1},
			wantStart:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:    time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "april start crosses the year boundary",
			fiscalYear: domain.FiscalYear{Year: 2026, StartMonth: 4},
			wantStart:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:    time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "march start ends on leap day",
			fiscalYear: domain.FiscalYear{Year: 2027, StartMonth: 3},
			wantStart:  time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:    time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "out-of-range start month falls back to january",
			fiscalYear: domain.FiscalYear{Year: 2026, StartMonth: 0},
			wantStart:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:    time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.fiscalYear.Window()
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestFiscalYear_Contains(t *testing.T) {
	fy := domain.FiscalYear{Year: 2026, StartMonth: 4}

	assert.True(t, fy.Contains(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, fy.Contains(time.Date(2027, 3, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, fy.Contains(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, fy.Contains(time.Date(2027, 4, 1, 0, 0, 0, 0, time.UTC)))
}

func TestNormalizeRateKey(t *testing.T) {
	tests := []struct {
		name string
		rate string
		want string
	}{
		{"integer rate", "20", "20"},
		{"trailing zero", "20.0", "20"},
		{"two trailing zeros", "20.00", "20"},
		{"reduced rate", "5.5", "5.5"},
		{"reduced rate padded", "5.50", "5.5"},
		{"zero", "0", "0"},
		{"zero with decimals", "0.00", "0"},
		{"corsican rate", "2.10", "2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.NormalizeRateKey(decimal.RequireFromString(tt.rate)))
		})
	}
}
