package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers "mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"

	"github.com/okian/bistro/internal/domain/model"
)

// Supported database/sql driver names.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

const selectColumns = "SELECT id, name, address, phone, cuisine FROM restaurants"

var schemas = map[string]string{
	DriverSQLite: `CREATE TABLE IF NOT EXISTS restaurants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(100) NOT NULL,
		address VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(20) NOT NULL DEFAULT '',
		cuisine VARCHAR(50) NOT NULL DEFAULT ''
	)`,
	DriverMySQL: `CREATE TABLE IF NOT EXISTS restaurants (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		address VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(20) NOT NULL DEFAULT '',
		cuisine VARCHAR(50) NOT NULL DEFAULT ''
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

// SQLStore is a Store backed by a relational database through sqlx.
type SQLStore struct {
	db     *sqlx.DB
	driver string
	closed atomic.Bool

	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	skipMigrate     bool
}

// OpenSQL connects to dsn with driver, applies pool settings and creates the
// restaurants table when missing.
func OpenSQL(ctx context.Context, driver, dsn string, opts ...SQLOption) (*SQLStore, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	s := &SQLStore{
		driver:          driver,
		maxOpenConns:    10,
		maxIdleConns:    5,
		connMaxLifetime: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}

	// An in-memory SQLite database lives and dies with its connection.
	if driver == DriverSQLite && strings.Contains(dsn, ":memory:") {
		s.maxOpenConns, s.maxIdleConns, s.connMaxLifetime = 1, 1, 0
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	db.SetMaxIdleConns(s.maxIdleConns)
	db.SetConnMaxLifetime(s.connMaxLifetime)
	s.db = db

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if !s.skipMigrate {
		if err := s.migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemas[s.driver]); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// FindAll returns every record ordered by id.
func (s *SQLStore) FindAll(ctx context.Context) (out []model.Restaurant, err error) {
	defer observe(s.driver, "find_all", time.Now(), &err)
	if s.closed.Load() {
		return nil, ErrClosed
	}

	out = []model.Restaurant{}
	if err := s.db.SelectContext(ctx, &out, selectColumns+" ORDER BY id ASC"); err != nil {
		return nil, fmt.Errorf("select restaurants: %w", err)
	}
	return out, nil
}

// FindByID returns the record with id.
func (s *SQLStore) FindByID(ctx context.Context, id int64) (r model.Restaurant, err error) {
	defer observe(s.driver, "find_by_id", time.Now(), &err)
	if s.closed.Load() {
		return model.Restaurant{}, ErrClosed
	}
	return s.get(ctx, s.db, id)
}

// Create inserts a new row and returns it with the generated id.
func (s *SQLStore) Create(ctx context.Context, fields model.Fields) (r model.Restaurant, err error) {
	defer observe(s.driver, "create", time.Now(), &err)
	if s.closed.Load() {
		return model.Restaurant{}, ErrClosed
	}

	cols, vals := fields.Columns(false)
	query := s.db.Rebind(fmt.Sprintf("INSERT INTO restaurants (%s) VALUES (%s)",
		strings.Join(cols, ", "), placeholders(len(cols))))

	res, err := s.db.ExecContext(ctx, query, vals...)
	if err != nil {
		return model.Restaurant{}, fmt.Errorf("insert restaurant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Restaurant{}, fmt.Errorf("insert restaurant: %w", err)
	}

	r = model.Restaurant{ID: id}
	fields.Apply(&r, false)
	return r, nil
}

// Update writes the supplied columns, or all of them in full mode, and
// re-reads the row in the same transaction.
func (s *SQLStore) Update(ctx context.Context, id int64, fields model.Fields, partial bool) (r model.Restaurant, err error) {
	defer observe(s.driver, "update", time.Now(), &err)
	if s.closed.Load() {
		return model.Restaurant{}, ErrClosed
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Restaurant{}, fmt.Errorf("begin update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = s.get(ctx, tx, id); err != nil {
		return model.Restaurant{}, err
	}

	cols, vals := fields.Columns(partial)
	if len(cols) > 0 {
		sets := make([]string, len(cols))
		for i, c := range cols {
			sets[i] = c + " = ?"
		}
		query := tx.Rebind("UPDATE restaurants SET " + strings.Join(sets, ", ") + " WHERE id = ?")
		if _, err = tx.ExecContext(ctx, query, append(vals, id)...); err != nil {
			return model.Restaurant{}, fmt.Errorf("update restaurant %d: %w", id, err)
		}
	}

	if r, err = s.get(ctx, tx, id); err != nil {
		return model.Restaurant{}, err
	}
	if err = tx.Commit(); err != nil {
		return model.Restaurant{}, fmt.Errorf("commit update: %w", err)
	}
	return r, nil
}

// Delete removes the row with id.
func (s *SQLStore) Delete(ctx context.Context, id int64) (err error) {
	defer observe(s.driver, "delete", time.Now(), &err)
	if s.closed.Load() {
		return ErrClosed
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM restaurants WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete restaurant %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete restaurant %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of rows.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM restaurants"); err != nil {
		return 0, fmt.Errorf("count restaurants: %w", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.PingContext(ctx)
}

// Close closes the connection pool. Later calls return ErrClosed.
func (s *SQLStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// DB exposes the underlying handle for maintenance tasks.
func (s *SQLStore) DB() *sqlx.DB { return s.db }

func (s *SQLStore) get(ctx context.Context, q sqlx.QueryerContext, id int64) (model.Restaurant, error) {
	var r model.Restaurant
	err := sqlx.GetContext(ctx, q, &r, s.db.Rebind(selectColumns+" WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Restaurant{}, ErrNotFound
	}
	if err != nil {
		return model.Restaurant{}, fmt.Errorf("select restaurant %d: %w", id, err)
	}
	return r, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
