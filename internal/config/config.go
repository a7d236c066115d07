// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Functions that do I/O accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Store drivers understood by the service.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the persistence backend: memory, sqlite3 or mysql.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the data source name for SQL drivers.
	StoreDSN string `koanf:"store_dsn"`

	// Connection pool settings for SQL drivers.
	DBMaxOpenConns       int `koanf:"db_max_open_conns"`
	DBMaxIdleConns       int `koanf:"db_max_idle_conns"`
	DBConnMaxLifetimeSec int `koanf:"db_conn_max_lifetime_sec"`

	// MaxBodyBytes caps request bodies accepted by the API.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// GaugeIntervalSec is how often the records gauge is refreshed.
	GaugeIntervalSec int `koanf:"gauge_interval_sec"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8000",
		StoreDriver:          DriverMemory,
		StoreDSN:             "",
		DBMaxOpenConns:       10,
		DBMaxIdleConns:       5,
		DBConnMaxLifetimeSec: 300,
		MaxBodyBytes:         1 << 20,
		GaugeIntervalSec:     10,
	}
}

// ConnMaxLifetime returns the pool lifetime as a duration.
func (c *Config) ConnMaxLifetime() time.Duration {
	return time.Duration(c.DBConnMaxLifetimeSec) * time.Second
}

// GaugeInterval returns the gauge refresh interval as a duration.
func (c *Config) GaugeInterval() time.Duration {
	return time.Duration(c.GaugeIntervalSec) * time.Second
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}
	if c.GaugeIntervalSec <= 0 {
		return fmt.Errorf("%w: gauge_interval_sec must be positive", ErrInvalidConfig)
	}

	switch c.StoreDriver {
	case DriverMemory:
		return nil
	case DriverSQLite:
		if strings.TrimSpace(c.StoreDSN) == "" {
			return fmt.Errorf("%w: store_dsn is required for %s", ErrInvalidConfig, c.StoreDriver)
		}
	case DriverMySQL:
		if strings.TrimSpace(c.StoreDSN) == "" {
			return fmt.Errorf("%w: store_dsn is required for %s", ErrInvalidConfig, c.StoreDriver)
		}
		if _, err := mysql.ParseDSN(c.StoreDSN); err != nil {
			return fmt.Errorf("%w: store_dsn: %w", ErrInvalidConfig, err)
		}
	default:
		return fmt.Errorf("%w: unknown store_driver %q", ErrInvalidConfig, c.StoreDriver)
	}

	if c.DBMaxOpenConns < 0 || c.DBMaxIdleConns < 0 || c.DBConnMaxLifetimeSec < 0 {
		return fmt.Errorf("%w: pool settings must not be negative", ErrInvalidConfig)
	}
	return nil
}
