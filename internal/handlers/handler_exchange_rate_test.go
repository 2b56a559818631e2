package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/apperrors"
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/facturio/fiscal_engine_app/internal/dto"
	"github.com/facturio/fiscal_engine_app/internal/handlers"
	"github.com/facturio/fiscal_engine_app/internal/middleware"
	"github.com/facturio/fiscal_engine_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RateService ---
type MockRateService struct {
	mock.Mock
}

func (m *MockRateService) Resolve(ctx context.Context, base, target string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, base, target, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockRateService) Convert(ctx context.Context, amount domain.MonetaryAmount, target string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, amount, target, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockRateService) FetchAndStore(ctx context.Context, base string) int {
	args := m.Called(ctx, base)
	return args.Int(0)
}
func (m *MockRateService) ListRates(ctx context.Context, base, target *string, asOf *time.Time, page, pageSize int) ([]domain.ExchangeRate, int, error) {
	args := m.Called(ctx, base, target, asOf, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Int(1), args.Error(2)
}

var _ portssvc.RateSvcFacade = (*MockRateService)(nil)

// --- Mock FECService ---
type MockFECService struct {
	mock.Mock
}

func (m *MockFECService) Stream(ctx context.Context, accountID string, from, to time.Time, w io.Writer) error {
	args := m.Called(ctx, accountID, from, to, w)
	return args.Error(0)
}
func (m *MockFECService) Count(ctx context.Context, accountID string, from, to time.Time) (int, error) {
	args := m.Called(ctx, accountID, from, to)
	return args.Int(0), args.Error(1)
}

var _ portssvc.FECSvcFacade = (*MockFECService)(nil)

// --- Mock VATService ---
type MockVATService struct {
	mock.Mock
}

func (m *MockVATService) Build(ctx context.Context, accountID string, year int, periodType domain.PeriodType) (*domain.VATReport, error) {
	args := m.Called(ctx, accountID, year, periodType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VATReport), args.Error(1)
}
func (m *MockVATService) WriteCSV(report *domain.VATReport, w io.Writer) error {
	args := m.Called(report, w)
	return args.Error(0)
}

var _ portssvc.VATSvcFacade = (*MockVATService)(nil)

// --- Mock AggregateService ---
type MockAggregateService struct {
	mock.Mock
}

func (m *MockAggregateService) BuildSummary(ctx context.Context, accountID string, filters portssvc.SummaryFilters) (*domain.AggregateReport, error) {
	args := m.Called(ctx, accountID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AggregateReport), args.Error(1)
}

var _ portssvc.AggregateSvcFacade = (*MockAggregateService)(nil)

// --- Mock FormatAdapterService ---
type MockFormatAdapterService struct {
	mock.Mock
}

func (m *MockFormatAdapterService) Columns(target portssvc.ExportTarget) ([]portssvc.ColumnDescriptor, error) {
	args := m.Called(target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portssvc.ColumnDescriptor), args.Error(1)
}
func (m *MockFormatAdapterService) Stream(ctx context.Context, accountID string, target portssvc.ExportTarget, from, to time.Time, w io.Writer) error {
	args := m.Called(ctx, accountID, target, from, to, w)
	return args.Error(0)
}

var _ portssvc.FormatAdapterSvcFacade = (*MockFormatAdapterService)(nil)

// --- Test Suite ---
type ExchangeRateHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockRateService *MockRateService
}

func (suite *ExchangeRateHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockRateService = new(MockRateService)
	container := &portssvc.ServiceContainer{
		Rate:          suite.mockRateService,
		FEC:           new(MockFECService),
		VAT:           new(MockVATService),
		Aggregate:     new(MockAggregateService),
		FormatAdapter: new(MockFormatAdapterService),
	}
	cfg := &config.Config{ExportRateLimit: "10-M"}
	handlers.RegisterRoutes(suite.router, cfg, container)
}

func (suite *ExchangeRateHandlerTestSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set(middleware.AccountHeader, "acct-1")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *ExchangeRateHandlerTestSuite) TestResolveRate_Success() {
	asOf := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	suite.mockRateService.On("Resolve", mock.Anything, "USD", "EUR", asOf).
		Return(decimal.RequireFromString("0.912345"), nil).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/exchange-rates/USD/EUR?asOf=2026-03-15", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.ResolveRateResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("USD", body.BaseCurrencyCode)
	suite.Equal("EUR", body.TargetCurrencyCode)
	suite.Equal("2026-03-15", body.AsOf)
	suite.True(body.Rate.Equal(decimal.RequireFromString("0.912345")))
	suite.mockRateService.AssertExpectations(suite.T())
}

func (suite *ExchangeRateHandlerTestSuite) TestResolveRate_NotFound() {
	suite.mockRateService.On("Resolve", mock.Anything, "USD", "EUR", mock.AnythingOfType("time.Time")).
		Return(decimal.Zero, fmt.Errorf("%w: USD->EUR", apperrors.ErrRateNotFound)).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/exchange-rates/USD/EUR?asOf=2026-03-15", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ExchangeRateHandlerTestSuite) TestResolveRate_InvalidCode() {
	suite.mockRateService.On("Resolve", mock.Anything, "EURO", "EUR", mock.AnythingOfType("time.Time")).
		Return(decimal.Zero, fmt.Errorf("%w: invalid currency code", apperrors.ErrValidation)).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/exchange-rates/EURO/EUR", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ExchangeRateHandlerTestSuite) TestConvert_Success() {
	asOf := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	amount := domain.MonetaryAmount{Amount: decimal.RequireFromString("100.10"), CurrencyCode: "USD"}
	suite.mockRateService.On("Convert", mock.Anything, amount, "EUR", asOf).
		Return(decimal.RequireFromString("91.3257345"), nil).Once()

	payload := `{"amount":"100.10","currencyCode":"usd","targetCode":"EUR","asOf":"2026-03-15"}`
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/exchange-rates/convert", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.ConvertResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.True(body.Converted.Equal(decimal.RequireFromString("91.33")), "rounded at the response boundary")
	suite.True(body.ConvertedFull.Equal(decimal.RequireFromString("91.3257345")))
}

func (suite *ExchangeRateHandlerTestSuite) TestConvert_MissingFields() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/exchange-rates/convert", strings.NewReader(`{"amount":"10"}`))
	req.Header.Set("Content-Type", "application/json")
	w := suite.serve(req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockRateService.AssertNotCalled(suite.T(), "Convert")
}

func (suite *ExchangeRateHandlerTestSuite) TestRefreshRates() {
	suite.mockRateService.On("FetchAndStore", mock.Anything, "USD").Return(7).Once()

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/exchange-rates/refresh?base=usd", nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.RefreshRatesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("USD", body.BaseCurrencyCode)
	suite.Equal(7, body.StoredCount)
}

func (suite *ExchangeRateHandlerTestSuite) TestMissingAccountHeader() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/exchange-rates/USD/EUR", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockRateService.AssertNotCalled(suite.T(), "Resolve")
}

func TestExchangeRateHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateHandlerTestSuite))
}
