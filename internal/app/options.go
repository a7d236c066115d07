package service

import (
	"time"

	"github.com/okian/bistro/internal/adapters/repository"
	"github.com/okian/bistro/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore injects a ready store. The service takes ownership and closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.injected = store
		}
	}
}

// WithStoreDriver selects the backend opened by Start: memory, sqlite3 or mysql.
func WithStoreDriver(driver string) Option {
	return func(s *Service) {
		if driver != "" {
			s.driver = driver
		}
	}
}

// WithStoreDSN sets the data source name for SQL drivers.
func WithStoreDSN(dsn string) Option {
	return func(s *Service) {
		s.dsn = dsn
	}
}

// WithPool sets the SQL connection pool limits.
func WithPool(maxOpen, maxIdle int, maxLifetime time.Duration) Option {
	return func(s *Service) {
		s.sqlOpts = append(s.sqlOpts,
			repository.WithMaxOpenConns(maxOpen),
			repository.WithMaxIdleConns(maxIdle),
			repository.WithConnMaxLifetime(maxLifetime),
		)
	}
}

// WithGaugeInterval sets how often the restaurant count gauge is refreshed.
func WithGaugeInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.gaugeInterval = interval
		}
	}
}
