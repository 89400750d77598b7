package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/animaltrack/internal/logger"
)

// FileStore keeps all slots in a single JSON object on disk. Every call
// reads or rewrites the whole file, which is fine for the two small slots
// the client uses.
type FileStore struct {
	path string
	log  *zap.Logger
	mu   sync.Mutex
}

// NewFileStore returns a FileStore writing to path. The file is created on
// first Set. log may be nil.
func NewFileStore(path string, log *zap.Logger) *FileStore {
	return &FileStore{path: path, log: logger.OrNop(log)}
}

func (s *FileStore) load() (map[string]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	defer f.Close()

	slots := map[string]string{}
	if err := json.NewDecoder(f).Decode(&slots); err != nil {
		return nil, &decodeError{path: s.path, err: err}
	}
	return slots, nil
}

// loadForWrite is load for Set and Delete. An undecodable file is moved
// aside to path.corrupt and writing starts over from an empty object.
func (s *FileStore) loadForWrite() (map[string]string, error) {
	slots, err := s.load()
	var decodeErr *decodeError
	if !errors.As(err, &decodeErr) {
		return slots, err
	}
	s.log.Warn("storage file unreadable, starting over", zap.String("path", s.path), zap.Error(err))
	if err := os.Rename(s.path, s.path+".corrupt"); err != nil {
		return nil, err
	}
	return map[string]string{}, nil
}

type decodeError struct {
	path string
	err  error
}

func (e *decodeError) Error() string { return fmt.Sprintf("decode %s: %v", e.path, e.err) }

func (e *decodeError) Unwrap() error { return e.err }

func (s *FileStore) save(slots map[string]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".kv-*")
	if err != nil {
		return err
	}
	if err := json.NewEncoder(tmp).Encode(slots); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Get returns the value stored under key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("kv: get %s: %w", key, err)
	}
	v, ok := slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

// Set overwrites the value under key.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.loadForWrite()
	if err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	slots[key] = string(value)
	if err := s.save(slots); err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, err := s.loadForWrite()
	if err != nil {
		return fmt.Errorf("kv: delete %s: %w", key, err)
	}
	if _, ok := slots[key]; !ok {
		return nil
	}
	delete(slots, key)
	if err := s.save(slots); err != nil {
		return fmt.Errorf("kv: delete %s: %w", key, err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
