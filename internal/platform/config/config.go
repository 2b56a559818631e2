package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Exchange rate provider
	RateProviderURL     string
	RateProviderName    string
	RateRefreshBase     string
	RateRefreshInterval time.Duration

	// Rate limit applied to export endpoints, in limiter format (e.g. "10-M")
	ExportRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RATE_PROVIDER_URL", "")
	viper.SetDefault("RATE_PROVIDER_NAME", "frankfurter")
	viper.SetDefault("RATE_REFRESH_BASE", "EUR")
	viper.SetDefault("RATE_REFRESH_INTERVAL", "6h")
	viper.SetDefault("EXPORT_RATE_LIMIT", "10-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.RateProviderURL = viper.GetString("RATE_PROVIDER_URL")
	if cfg.RateProviderURL == "" {
		log.Println("Warning: RATE_PROVIDER_URL not set. Scheduled rate refresh will be disabled.")
	}
	cfg.RateProviderName = viper.GetString("RATE_PROVIDER_NAME")
	cfg.RateRefreshBase = viper.GetString("RATE_REFRESH_BASE")

	refreshIntervalStr := viper.GetString("RATE_REFRESH_INTERVAL")
	refreshInterval, err := time.ParseDuration(refreshIntervalStr)
	if err != nil {
		refreshInterval = 6 * time.Hour
		if refreshIntervalStr != "" {
			log.Printf("Warning: Invalid value for RATE_REFRESH_INTERVAL ('%s'). Defaulting to %s.\n", refreshIntervalStr, refreshInterval.String())
		}
	}
	cfg.RateRefreshInterval = refreshInterval

	cfg.ExportRateLimit = viper.GetString("EXPORT_RATE_LIMIT")

	return cfg, nil
}
