// Package session persists the authenticated-session record between runs.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atinyakov/animaltrack/internal/client/kv"
	"github.com/atinyakov/animaltrack/internal/models"
)

// Key is the storage slot holding the session payload.
const Key = "@userData"

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("session: not found")

// Store reads and writes the single session record.
type Store struct {
	kv kv.Store
}

// NewStore returns a Store over the given key-value backend.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// Save persists sess, replacing any previous session.
func (s *Store) Save(ctx context.Context, sess models.Session) error {
	if len(sess) == 0 || !json.Valid(sess) {
		return errors.New("session: payload is not valid JSON")
	}
	if err := s.kv.Set(ctx, Key, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the persisted session or ErrNoSession.
func (s *Store) Load(ctx context.Context) (models.Session, error) {
	raw, err := s.kv.Get(ctx, Key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return models.Session(raw), nil
}

// Clear removes the persisted session.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
