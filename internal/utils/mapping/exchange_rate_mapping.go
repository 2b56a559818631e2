package mapping

import (
	"github.com/facturio/fiscal_engine_app/internal/core/domain"
	"github.com/facturio/fiscal_engine_app/internal/models"
)

// ToModelExchangeRate converts a domain exchange rate to its row model.
func ToModelExchangeRate(rate domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		ExchangeRateID:   rate.ExchangeRateID,
		BaseCurrencyCode: rate.BaseCurrencyCode,
		TargetCurrency:   rate.TargetCurrency,
		Rate:             rate.Rate,
		RateDate:         rate.RateDate,
		FetchedAt:        rate.FetchedAt,
		Source:           rate.Source,
		AuditFields:      toModelAuditFields(rate.AuditFields),
	}
}

// ToDomainExchangeRate converts a row model to the domain exchange rate.
func ToDomainExchangeRate(rate models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		ExchangeRateID:   rate.ExchangeRateID,
		BaseCurrencyCode: rate.BaseCurrencyCode,
		TargetCurrency:   rate.TargetCurrency,
		Rate:             rate.Rate,
		RateDate:         rate.RateDate,
		FetchedAt:        rate.FetchedAt,
		Source:           rate.Source,
		AuditFields:      toDomainAuditFields(rate.AuditFields),
	}
}

// ToDomainCurrency converts a currency row model to the domain currency.
func ToDomainCurrency(currency models.Currency) domain.Currency {
	return domain.Currency{
		CurrencyCode: currency.CurrencyCode,
		Symbol:       currency.Symbol,
		Name:         currency.Name,
		Precision:    currency.Precision,
		IsActive:     currency.IsActive,
		AuditFields:  toDomainAuditFields(currency.AuditFields),
	}
}

func toModelAuditFields(a domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

func toDomainAuditFields(a models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}
