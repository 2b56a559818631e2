package services

// ServiceContainer groups all service facades for injection into handlers.
type ServiceContainer struct {
	Rate          RateSvcFacade
	FEC           FECSvcFacade
	VAT           VATSvcFacade
	Aggregate     AggregateSvcFacade
	FormatAdapter FormatAdapterSvcFacade
}
