package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/facturio/fiscal_engine_app/internal/adapters/rateprovider"
	portssvc "github.com/facturio/fiscal_engine_app/internal/core/ports/services"
	"github.com/facturio/fiscal_engine_app/internal/core/services"
	"github.com/facturio/fiscal_engine_app/internal/handlers"
	"github.com/facturio/fiscal_engine_app/internal/middleware"
	"github.com/facturio/fiscal_engine_app/internal/platform/config"
	"github.com/facturio/fiscal_engine_app/internal/repositories/database/pgsql"
	"github.com/facturio/fiscal_engine_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryContainer(dbPool)
	provider := rateprovider.NewHTTPProvider(cfg.RateProviderURL, cfg.RateProviderName)
	serviceContainer := services.NewServiceContainer(&repos, provider)

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	if cfg.RateProviderURL != "" {
		go refreshRatesLoop(logger, serviceContainer.Rate, cfg.RateRefreshBase, cfg.RateRefreshInterval)
	} else {
		logger.Warn("Rate provider URL not configured; scheduled rate refresh disabled")
	}

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// refreshRatesLoop periodically pulls fresh rates from the provider. A failed
// fetch stores nothing and retries on the next tick.
func refreshRatesLoop(logger *slog.Logger, rateSvc portssvc.RateSvcFacade, base string, interval time.Duration) {
	ctx := middleware.WithLogger(context.Background(), logger)

	stored := rateSvc.FetchAndStore(ctx, base)
	logger.Info("Initial rate refresh complete", slog.Int("stored", stored))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		stored := rateSvc.FetchAndStore(ctx, base)
		logger.Info("Scheduled rate refresh complete", slog.Int("stored", stored))
	}
}

func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")
	// Open a temporary standard sql.DB connection for migrations,
	// using the pgx stdlib driver to stay compatible with the main pool.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		return sourceErr
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
