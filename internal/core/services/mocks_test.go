package services_test

import (
	"context"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	portsrepo "github.com/facturio/fiscal_engine_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock ExchangeRateRepository ---

type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) FindRateAsOf(ctx context.Context, base, target string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, base, target, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context, base, target *string, asOf *time.Time, page, pageSize int) ([]domain.ExchangeRate, int, error) {
	args := m.Called(ctx, base, target, asOf, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Int(1), args.Error(2)
}

// --- Mock CurrencyRepository ---

type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) ListActiveCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

// --- Mock RateProvider ---

type MockRateProvider struct {
	mock.Mock
}

func (m *MockRateProvider) LatestRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockRateProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

// --- Mock RecordRepository ---

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) ListRecordsForExport(ctx context.Context, accountID string, from, to time.Time, nextToken *string, limit int) ([]domain.AccountingRecord, *string, error) {
	args := m.Called(ctx, accountID, from, to, nextToken, limit)
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, token, args.Error(2)
	}
	return args.Get(0).([]domain.AccountingRecord), token, args.Error(2)
}

func (m *MockRecordRepository) ListInvoices(ctx context.Context, accountID string, filter portsrepo.RecordFilter) ([]domain.Invoice, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockRecordRepository) ListCreditNotes(ctx context.Context, accountID string, filter portsrepo.RecordFilter) ([]domain.CreditNote, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CreditNote), args.Error(1)
}

func (m *MockRecordRepository) ListExpenses(ctx context.Context, accountID string, filter portsrepo.RecordFilter) ([]domain.Expense, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockRecordRepository) ListOpenInvoices(ctx context.Context, accountID string, asOf time.Time) ([]domain.Invoice, error) {
	args := m.Called(ctx, accountID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockRecordRepository) ListTimeEntries(ctx context.Context, accountID string, from, to time.Time) ([]domain.TimeEntry, error) {
	args := m.Called(ctx, accountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeEntry), args.Error(1)
}

func (m *MockRecordRepository) ListProjects(ctx context.Context, accountID string) ([]domain.Project, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}

// --- Mock SettingsRepository ---

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetAccountSettings(ctx context.Context, accountID string) (*domain.AccountSettings, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountSettings), args.Error(1)
}

// testSettings returns a fully configured settings fixture.
func testSettings(accountID string) domain.AccountSettings {
	return domain.AccountSettings{
		AccountID:            accountID,
		BaseCurrencyCode:     "EUR",
		FiscalYearStartMonth: 1,
		SalesJournalCode:     "VE",
		SalesJournalLabel:    "Ventes",
		PurchasesJournalCode: "AC",
		PurchasesJournalLbl:  "Achats",
		BankJournalCode:      "BQ",
		BankJournalLabel:     "Banque",
		SalesAccountCode:     "706000",
		BankAccountCode:      "512000",
		ClientAccountCode:    "411000",
		SupplierAccountCode:  "401000",
		ExpenseAccountCode:   "606000",
		VATCollectedAccount:  "445710",
		VATDeductibleAccount: "445660",
		AuxAccountPrefix:     "C",
		ExportSeparator:      domain.SeparatorTab,
	}
}
