// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/warp/deposit-engine/deposit"
)

// Config holds application configuration
type Config struct {
	DatabasePath  string
	PortfolioFile string
	Port          int
	LogLevel      string
	LogPretty     bool
	MinBenefit    decimal.Decimal
	StaleAfter    time.Duration
	CheckSchedule string // cron spec for the staleness job
	Currency      string // ISO 4217 code used when formatting amounts
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:  getEnv("DEPOSITS_DB_PATH", "deposits.db"),
		PortfolioFile: getEnv("PORTFOLIO_FILE", "portfolio.json"),
		Port:          getEnvAsInt("PORT", 8080),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPretty:     getEnvAsBool("LOG_PRETTY", true),
		MinBenefit:    getEnvAsDecimal("MIN_BENEFIT", deposit.DefaultMinBenefit),
		StaleAfter:    getEnvAsDuration("STALE_AFTER", deposit.DefaultMaxDataAge),
		CheckSchedule: getEnv("CHECK_SCHEDULE", "@every 1h"),
		Currency:      getEnv("CURRENCY", "EUR"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DEPOSITS_DB_PATH is required")
	}
	if c.MinBenefit.IsNegative() {
		return fmt.Errorf("MIN_BENEFIT must not be negative, got %s", c.MinBenefit)
	}
	if c.StaleAfter <= 0 {
		return fmt.Errorf("STALE_AFTER must be positive, got %s", c.StaleAfter)
	}
	if money.GetCurrency(c.Currency) == nil {
		return fmt.Errorf("CURRENCY %q is not an ISO 4217 code", c.Currency)
	}
	if _, err := cron.ParseStandard(c.CheckSchedule); err != nil {
		return fmt.Errorf("CHECK_SCHEDULE %q: %w", c.CheckSchedule, err)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
