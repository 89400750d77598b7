// Package kv provides the local string-keyed persistence used by the client
// for the session record and the offline animal list.
package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a string-keyed slot store. Set overwrites, Delete of a missing
// key succeeds.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Supported drivers for Open.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Open returns the Store for driver. target is a file path for the file and
// sqlite drivers, a DSN for postgres, and ignored for memory. log may be nil.
func Open(ctx context.Context, driver, target string, log *zap.Logger) (Store, error) {
	switch driver {
	case DriverFile, "":
		if err := ensureDir(target); err != nil {
			return nil, err
		}
		return NewFileStore(target, log), nil
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		if err := ensureDir(target); err != nil {
			return nil, err
		}
		return OpenSQL(ctx, DriverSQLite, target)
	case DriverPostgres:
		return OpenSQL(ctx, DriverPostgres, target)
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", driver)
	}
}

func ensureDir(path string) error {
	if path == "" {
		return errors.New("kv: empty path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("kv: create dir %s: %w", dir, err)
	}
	return nil
}
