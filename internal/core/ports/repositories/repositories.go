package repositories

// RepositoryContainer groups all repository implementations for injection.
type RepositoryContainer struct {
	ExchangeRate ExchangeRateRepository
	Currency     CurrencyRepository
	Record       RecordRepository
	Settings     SettingsRepository
}
