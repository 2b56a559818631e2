package services_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	portsrepo "github.com/facturio/fiscal_engine_app/internal/core/ports/repositories"
	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/facturio/fiscal_engine_app/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type VATServiceTestSuite struct {
	suite.Suite
	mockRecordRepo *MockRecordRepository
	service        portssvc.VATSvcFacade
}

func (suite *VATServiceTestSuite) SetupTest() {
	suite.mockRecordRepo = new(MockRecordRepository)
	suite.service = services.NewVATService(suite.mockRecordRepo)
}

func (suite *VATServiceTestSuite) expectYear(invoices []domain.Invoice, creditNotes []domain.CreditNote, expenses []domain.Expense) {
	suite.mockRecordRepo.On("ListInvoices", mock.Anything, "acct-1", mock.AnythingOfType("repositories.RecordFilter")).Return(invoices, nil)
	suite.mockRecordRepo.On("ListCreditNotes", mock.Anything, "acct-1", mock.AnythingOfType("repositories.RecordFilter")).Return(creditNotes, nil)
	suite.mockRecordRepo.On("ListExpenses", mock.Anything, "acct-1", mock.AnythingOfType("repositories.RecordFilter")).Return(expenses, nil)
}

func vatInvoice(id string, month time.Month, status domain.InvoiceStatus, net string, rate int64) domain.Invoice {
	return domain.Invoice{
		InvoiceID: id, Number: id, ClientID: "client-1", ClientName: "Acme",
		IssueDate:    time.Date(2026, month, 15, 0, 0, 0, 0, time.UTC),
		CurrencyCode: "EUR", Status: status,
		Lines: []domain.DocumentLine{
			{Description: "Work", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString(net), VATRate: decimal.NewFromInt(rate)},
		},
	}
}

// --- Test Cases ---

func (suite *VATServiceTestSuite) TestBuild_MonthlyStructure() {
	suite.expectYear(nil, nil, nil)

	report, err := suite.service.Build(context.Background(), "acct-1", 2026, domain.PeriodMonthly)

	suite.Require().NoError(err)
	suite.Len(report.Periods, 12)
	// Known buckets always appear, even with no data at all.
	suite.Equal([]string{"0", "5.5", "10", "20"}, report.RateKeys)
	suite.True(report.NetDue.IsZero())
	suite.False(report.IsCredit)
}

func (suite *VATServiceTestSuite) TestBuild_QuarterlyGrouping() {
	invoices := []domain.Invoice{
		vatInvoice("INV-1", time.January, domain.StatusSent, "1000.00", 20),
		vatInvoice("INV-2", time.March, domain.StatusPaid, "500.00", 20),
		vatInvoice("INV-3", time.April, domain.StatusSent, "100.00", 20),
	}
	suite.expectYear(invoices, nil, nil)

	report, err := suite.service.Build(context.Background(), "acct-1", 2026, domain.PeriodQuarterly)

	suite.Require().NoError(err)
	suite.Require().Len(report.Periods, 4)

	// Q1 collects January + March, Q2 collects April.
	q1 := report.Periods[0]
	suite.True(q1.TotalCollected.Equal(decimal.RequireFromString("300")), "got %s", q1.TotalCollected)
	suite.True(q1.Buckets["20"].Base.Equal(decimal.RequireFromString("1500")))
	q2 := report.Periods[1]
	suite.True(q2.TotalCollected.Equal(decimal.RequireFromString("20")))
	suite.Equal("2026-Q1", q1.Period.Label(report.PeriodType))
}

func (suite *VATServiceTestSuite) TestBuild_SkipsDraftAndCancelled() {
	invoices := []domain.Invoice{
		vatInvoice("INV-1", time.May, domain.StatusDraft, "1000.00", 20),
		vatInvoice("INV-2", time.May, domain.StatusCancelled, "1000.00", 20),
		vatInvoice("INV-3", time.May, domain.StatusSent, "200.00", 20),
	}
	suite.expectYear(invoices, nil, nil)

	report, err := suite.service.Build(context.Background(), "acct-1", 2026, domain.PeriodMonthly)

	suite.Require().NoError(err)
	suite.True(report.TotalCollected.Equal(decimal.RequireFromString("40")))
}

func (suite *VATServiceTestSuite) TestBuild_CreditNotesReduceCollected() {
	invoices := []domain.Invoice{
		vatInvoice("INV-1", time.June, domain.StatusSent, "1000.00", 20),
	}
	creditNotes := []domain.CreditNote{
		{
			CreditNoteID: "CN-1", Number: "CN-1", ClientID: "client-1",
			IssueDate: time.Date(2026, time.June, 20, 0, 0, 0, 0, time.UTC), CurrencyCode: "EUR",
			Lines: []domain.DocumentLine{
				{Description: "Refund", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("300.00"), VATRate: decimal.NewFromInt(20)},
			},
		},
	}
	suite.expectYear(invoices, creditNotes, nil)

	report, err := suite.service.Build(context.Background(), "acct-1", 2026, domain.PeriodMonthly)

	suite.Require().NoError(err)
	june := report.Periods[5]
	suite.True(june.TotalCollected.Equal(decimal.RequireFromString("140")), "got %s", june.TotalCollected)
	suite.True(june.Buckets["20"].Base.Equal(decimal.RequireFromString("700")))
}

func (suite *VATServiceTestSuite) TestBuild_DeductibleExpensesAndCreditPosition() {
	invoices := []domain.Invoice{
		vatInvoice("INV-1", time.February, domain.StatusSent, "100.00", 20),
	}
	expenses := []domain.Expense{
		{
			ExpenseID: "EXP-1", Reference: "EXP-1", SupplierID: "sup-1",
			Date:          time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC),
			CurrencyCode:  "EUR",
			AmountExclTax: decimal.RequireFromString("400.00"),
			VATRate:       decimal.NewFromInt(20),
			VATDeductible: true,
		},
		{
			ExpenseID: "EXP-2", Reference: "EXP-2", SupplierID: "sup-2",
			Date:          time.Date(2026, time.February, 6, 0, 0, 0, 0, time.UTC),
			CurrencyCode:  "EUR",
			AmountExclTax: decimal.RequireFromString("50.00"),
			VATRate:       decimal.NewFromInt(20),
			VATDeductible: false, // Must not count
		},
	}
	suite.expectYear(invoices, nil, expenses)

	report, err := suite.service.Build(context.Background(), "acct-1", 2026, domain.PeriodMonthly)

	suite.Require().NoError(err)
	feb := report.Periods[1]
	suite.True(feb.TotalCollected.Equal(decimal.RequireFromString("20")))
	suite.True(feb.TotalDeductible.Equal(decimal.RequireFromString("80")))
	suite.True(feb.NetDue.Equal(decimal.RequireFromString("-60")))
	suite.True(feb.IsCredit)
	suite.True(report.IsCredit)
}

func (suite *VATServiceTestSuite) TestBuild_UnusualRateGetsExtraBucket() {
	invoices := []domain.Invoice{
		{
			InvoiceID: "INV-1", Number: "INV-1", ClientID: "client-1",
			IssueDate: time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), CurrencyCode: "EUR", Status: domain.StatusSent,
			Lines: []domain.DocumentLine{
				{Description: "Corsica", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("100.00"), VATRate: decimal.RequireFromString("2.10")},
			},
		},
	}
	suite.expectYear(invoices, nil, nil)

	report, err := suite.service.Build(context.Background(), "acct-1", 2026, domain.PeriodMonthly)

	suite.Require().NoError(err)
	suite.Equal([]string{"0", "5.5", "10", "20", "2.1"}, report.RateKeys)
}

func (suite *VATServiceTestSuite) TestBuild_RejectsInvalidInput() {
	_, err := suite.service.Build(context.Background(), "acct-1", 1999, domain.PeriodMonthly)
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.Build(context.Background(), "acct-1", 2026, domain.PeriodType("weekly"))
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockRecordRepo.AssertNotCalled(suite.T(), "ListInvoices")
}

func (suite *VATServiceTestSuite) TestBuild_CalendarYearFilter() {
	suite.mockRecordRepo.On("ListInvoices", mock.Anything, "acct-1", mock.MatchedBy(func(f portsrepo.RecordFilter) bool {
		return f.DateFrom.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) &&
			f.DateTo.Equal(time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC))
	})).Return(nil, nil)
	suite.mockRecordRepo.On("ListCreditNotes", mock.Anything, "acct-1", mock.Anything).Return(nil, nil)
	suite.mockRecordRepo.On("ListExpenses", mock.Anything, "acct-1", mock.Anything).Return(nil, nil)

	_, err := suite.service.Build(context.Background(), "acct-1", 2026, domain.PeriodMonthly)
	suite.Require().NoError(err)
	suite.mockRecordRepo.AssertExpectations(suite.T())
}

func (suite *VATServiceTestSuite) TestWriteCSV_RowsAndTotals() {
	invoices := []domain.Invoice{
		vatInvoice("INV-1", time.January, domain.StatusSent, "1000.00", 20),
	}
	suite.expectYear(invoices, nil, nil)

	report, err := suite.service.Build(context.Background(), "acct-1", 2026, domain.PeriodMonthly)
	suite.Require().NoError(err)

	var buf bytes.Buffer
	suite.Require().NoError(suite.service.WriteCSV(report, &buf))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	suite.Require().Len(lines, 14) // header + 12 months + total

	header := strings.Split(lines[0], ";")
	suite.Equal("Period", header[0])
	suite.Contains(lines[0], "Base 20%")
	suite.Contains(lines[0], "VAT 5.5%")

	january := strings.Split(lines[1], ";")
	suite.Equal("2026-01", january[0])

	total := strings.Split(lines[13], ";")
	suite.Equal("Total", total[0])
	suite.Equal("200.00", total[len(total)-4]) // Collected
	suite.Equal("0.00", total[len(total)-3])   // Deductible
	suite.Equal("200.00", total[len(total)-2]) // Net due
	suite.Equal("", total[len(total)-1])       // Not a credit
}

func TestVATServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VATServiceTestSuite))
}
