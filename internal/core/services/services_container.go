package services

import (
	portsrepo "github.com/facturio/fiscal_engine_app/internal/core/ports/repositories"
	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
)

// NewServiceContainer wires all engine services against the repository
// container and the configured rate provider.
func NewServiceContainer(repos *portsrepo.RepositoryContainer, provider portssvc.RateProvider) *portssvc.ServiceContainer {
	rateSvc := NewRateService(repos.ExchangeRate, repos.Currency, provider)
	return &portssvc.ServiceContainer{
		Rate:          rateSvc,
		FEC:           NewFECService(repos.Record, repos.Settings, rateSvc),
		VAT:           NewVATService(repos.Record),
		Aggregate:     NewAggregateService(repos.Record, repos.Settings, rateSvc),
		FormatAdapter: NewFormatAdapterService(repos.Record, repos.Settings, rateSvc),
	}
}
