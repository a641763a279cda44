package envconfig

import (
	"fmt"
	"strconv"
	"time"

	"wolfcafe/models"
	"wolfcafe/pkg/database"

	"github.com/shopspring/decimal"
)

// Storage backends selectable with STORAGE_BACKEND
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// LoadDatabaseConfig loads database configuration from environment variables
func LoadDatabaseConfig() database.Config {
	config := database.DefaultConfig()

	// Override with environment variables if they exist
	if driver := GetEnv("DB_DRIVER", ""); driver != "" {
		config.Driver = driver
	}

	if host := GetEnv("DB_HOST", ""); host != "" {
		config.Host = host
	}

	if portStr := GetEnv("DB_PORT", ""); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}

	if user := GetEnv("DB_USER", ""); user != "" {
		config.User = user
	}

	if password := GetEnv("DB_PASSWORD", ""); password != "" {
		config.Password = password
	}

	if dbname := GetEnv("DB_NAME", ""); dbname != "" {
		config.DBName = dbname
	}

	if sslmode := GetEnv("DB_SSL_MODE", ""); sslmode != "" {
		config.SSLMode = sslmode
	}

	// Connection pool settings
	if maxOpenConns := GetEnvInt("DB_MAX_OPEN_CONNS", 0); maxOpenConns > 0 {
		config.MaxOpenConns = maxOpenConns
	}

	if maxIdleConns := GetEnvInt("DB_MAX_IDLE_CONNS", 0); maxIdleConns > 0 {
		config.MaxIdleConns = maxIdleConns
	}

	if connMaxLifetimeStr := GetEnv("DB_CONN_MAX_LIFETIME", ""); connMaxLifetimeStr != "" {
		if connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr); err == nil {
			config.ConnMaxLifetime = connMaxLifetime
		}
	}

	if connMaxIdleTimeStr := GetEnv("DB_CONN_MAX_IDLE_TIME", ""); connMaxIdleTimeStr != "" {
		if connMaxIdleTime, err := time.ParseDuration(connMaxIdleTimeStr); err == nil {
			config.ConnMaxIdleTime = connMaxIdleTime
		}
	}

	return config
}

// LoadStorageBackend reads STORAGE_BACKEND, defaulting to postgres
func LoadStorageBackend() (string, error) {
	switch backend := GetEnv("STORAGE_BACKEND", StoragePostgres); backend {
	case StoragePostgres, StorageMemory:
		return backend, nil
	default:
		return "", fmt.Errorf("unsupported STORAGE_BACKEND %q", backend)
	}
}

// LoadDefaultTaxRate reads DEFAULT_TAX_RATE for newly created inventories
func LoadDefaultTaxRate() (decimal.Decimal, error) {
	raw := GetEnv("DEFAULT_TAX_RATE", "")
	if raw == "" {
		return models.DefaultTaxRate, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid DEFAULT_TAX_RATE %q: %w", raw, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("DEFAULT_TAX_RATE must not be negative, got %s", rate)
	}
	return rate, nil
}
