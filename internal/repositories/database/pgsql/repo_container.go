package pgsql

import (
	portsrepo "github.com/facturio/fiscal_engine_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryContainer wires all pgx repository implementations.
func NewRepositoryContainer(dbPool *pgxpool.Pool) portsrepo.RepositoryContainer {
	return portsrepo.RepositoryContainer{
		ExchangeRate: NewPgxExchangeRateRepository(dbPool),
		Currency:     NewPgxCurrencyRepository(dbPool),
		Record:       NewPgxRecordRepository(dbPool),
		Settings:     NewPgxSettingsRepository(dbPool),
	}
}
