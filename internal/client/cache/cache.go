// Package cache keeps the last known animal list for offline display.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/atinyakov/animaltrack/internal/client/kv"
	"github.com/atinyakov/animaltrack/internal/logger"
	"github.com/atinyakov/animaltrack/internal/models"
)

// Key is the storage slot holding the serialized snapshot.
const Key = "@animals"

// Cache stores one ordered snapshot of animals.
type Cache struct {
	kv  kv.Store
	log *zap.Logger
}

// New returns a Cache over store. log may be nil.
func New(store kv.Store, log *zap.Logger) *Cache {
	return &Cache{kv: store, log: logger.OrNop(log)}
}

// Save overwrites the cached snapshot.
func (c *Cache) Save(ctx context.Context, animals []models.Animal) error {
	if animals == nil {
		animals = []models.Animal{}
	}
	b, err := json.Marshal(animals)
	if err != nil {
		return fmt.Errorf("encode animals: %w", err)
	}
	if err := c.kv.Set(ctx, Key, b); err != nil {
		return fmt.Errorf("save animals: %w", err)
	}
	return nil
}

// Load returns the cached snapshot. A missing, unreadable or unparsable
// slot yields an empty snapshot; the last two are logged.
func (c *Cache) Load(ctx context.Context) []models.Animal {
	raw, err := c.kv.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			c.log.Warn("animal cache unreadable, treating as empty", zap.Error(err))
		}
		return []models.Animal{}
	}

	var animals []models.Animal
	if err := json.Unmarshal(raw, &animals); err != nil {
		c.log.Warn("animal cache corrupt, treating as empty", zap.Error(err), zap.Int("bytes", len(raw)))
		return []models.Animal{}
	}
	if animals == nil {
		animals = []models.Animal{}
	}
	return animals
}

// Clear drops the cached snapshot.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear animals: %w", err)
	}
	return nil
}
