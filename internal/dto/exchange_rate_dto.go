package dto

import (
	"time"

	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ResolveRateQuery defines the query parameters for resolving a rate.
type ResolveRateQuery struct {
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// ResolveRateResponse is the resolved conversion rate for a pair at a date.
type ResolveRateResponse struct {
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	AsOf               string          `json:"asOf"`
	Rate               decimal.Decimal `json:"rate"`
}

// ConvertRequest defines the structure for a currency conversion request.
type ConvertRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	TargetCode   string          `json:"targetCode" binding:"required,len=3"`
	AsOf         string          `json:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// ConvertResponse carries the converted amount rounded to 2 decimals alongside
// the full-precision result.
type ConvertResponse struct {
	Amount        decimal.Decimal `json:"amount"`
	CurrencyCode  string          `json:"currencyCode"`
	TargetCode    string          `json:"targetCode"`
	AsOf          string          `json:"asOf"`
	Converted     decimal.Decimal `json:"converted"`
	ConvertedFull decimal.Decimal `json:"convertedFull"`
}

// ExchangeRateResponse defines the structure for API responses containing exchange rate details.
type ExchangeRateResponse struct {
	ExchangeRateID     string          `json:"exchangeRateID"`
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	Rate               decimal.Decimal `json:"rate"`
	RateDate           string          `json:"rateDate"`
	FetchedAt          time.Time       `json:"fetchedAt"`
	Source             string          `json:"source"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:     rate.ExchangeRateID,
		BaseCurrencyCode:   rate.BaseCurrencyCode,
		TargetCurrencyCode: rate.TargetCurrency,
		Rate:               rate.Rate,
		RateDate:           rate.RateDate.Format("2006-01-02"),
		FetchedAt:          rate.FetchedAt,
		Source:             rate.Source,
	}
}

// ListExchangeRatesResponse is a paginated rate history response.
type ListExchangeRatesResponse struct {
	Rates    []ExchangeRateResponse `json:"rates"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}

// ToListExchangeRatesResponse converts domain rates into the paginated response.
func ToListExchangeRatesResponse(rates []domain.ExchangeRate, total, page, pageSize int) ListExchangeRatesResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i, rate := range rates {
		responses[i] = ToExchangeRateResponse(rate)
	}
	return ListExchangeRatesResponse{
		Rates:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}

// RefreshRatesResponse reports the outcome of a manual rate fetch.
type RefreshRatesResponse struct {
	BaseCurrencyCode string `json:"baseCurrencyCode"`
	StoredCount      int    `json:"storedCount"`
}
