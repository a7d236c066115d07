package repository

import "time"

// SQLOption applies a configuration option to a SQLStore.
type SQLOption func(*SQLStore)

// WithMaxOpenConns caps the number of open connections. Zero means unlimited.
func WithMaxOpenConns(n int) SQLOption {
	return func(s *SQLStore) {
		if n >= 0 {
			s.maxOpenConns = n
		}
	}
}

// WithMaxIdleConns caps the number of idle connections kept in the pool.
func WithMaxIdleConns(n int) SQLOption {
	return func(s *SQLStore) {
		if n >= 0 {
			s.maxIdleConns = n
		}
	}
}

// WithConnMaxLifetime sets how long a connection may be reused.
func WithConnMaxLifetime(d time.Duration) SQLOption {
	return func(s *SQLStore) {
		if d >= 0 {
			s.connMaxLifetime = d
		}
	}
}

// WithSkipMigrate leaves the schema alone on open. The table must already exist.
func WithSkipMigrate() SQLOption {
	return func(s *SQLStore) {
		s.skipMigrate = true
	}
}
