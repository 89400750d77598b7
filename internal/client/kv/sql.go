package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at BIGINT NOT NULL
);
`

// SQLStore implements Store on top of a database/sql handle. It works with
// PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).
type SQLStore struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
	// driver selects the placeholder style.
	driver string
}

// OpenSQL opens driver at dsn, checks the connection and creates the kv
// table when missing.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return NewSQLStore(db, driver), nil
}

// NewSQLStore wraps an already opened db. driver is DriverPostgres or
// DriverSQLite.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{DB: db, driver: driver}
}

// rebind rewrites $N placeholders to ? for SQLite.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverSQLite {
		return query
	}
	for i := 3; i >= 1; i-- {
		query = strings.ReplaceAll(query, "$"+strconv.Itoa(i), "?")
	}
	return query
}

// Get returns the value stored under key, or ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, s.rebind(`SELECT value FROM kv WHERE key = $1`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	return []byte(value), nil
}

// Set inserts or replaces the value under key.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, s.rebind(`
		INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`), key, string(value), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM kv WHERE key = $1`), key); err != nil {
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.DB.Close()
}
