// Package listsync keeps the animal list on screen in step with the local
// cache and the remote API.
//
// Each Focus call is one synchronization pass: the cached snapshot is shown
// first, then the remote list replaces it and is written back to the cache.
// Only the remote path writes the cache, so a cached value can never
// overwrite a fresher remote one.
package listsync

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/animaltrack/internal/client/api"
	"github.com/atinyakov/animaltrack/internal/client/notify"
	"github.com/atinyakov/animaltrack/internal/logger"
	"github.com/atinyakov/animaltrack/internal/models"
)

// Remote is the part of the API client the synchronizer uses.
type Remote interface {
	ListAnimals(ctx context.Context) ([]models.Animal, error)
	DeleteAnimal(ctx context.Context, fid string) error
}

// Cache is the offline snapshot store.
type Cache interface {
	Load(ctx context.Context) []models.Animal
	Save(ctx context.Context, animals []models.Animal) error
}

// Status is the observable list state.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is a copy of what the list screen should render.
type State struct {
	Status  Status
	Animals []models.Animal
	// Message is set only in StatusError.
	Message string
}

// Synchronizer owns the in-memory list state of one list screen.
type Synchronizer struct {
	remote   Remote
	cache    Cache
	notifier notify.Notifier
	log      *zap.Logger

	mu       sync.Mutex
	gen      uint64
	status   Status
	message  string
	snapshot []models.Animal
	shown    bool
	removing map[string]bool

	filter       string
	visible      []models.Animal
	visibleValid bool
}

// New returns a Synchronizer in StatusLoading. log may be nil.
func New(remote Remote, cache Cache, notifier notify.Notifier, log *zap.Logger) *Synchronizer {
	return &Synchronizer{
		remote:   remote,
		cache:    cache,
		notifier: notifier,
		log:      logger.OrNop(log),
		removing: make(map[string]bool),
	}
}

// Focus runs one synchronization pass. Call it every time the list becomes
// visible. A failed remote read keeps whatever is displayed, emits an error
// notification and is returned. A failed cache write is logged and returned
// wrapped; the in-memory state is already up to date in that case.
func (s *Synchronizer) Focus(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	cached := s.cache.Load(ctx)
	s.mu.Lock()
	if gen == s.gen && len(cached) > 0 {
		s.setSnapshotLocked(cached)
		s.status = StatusReady
		s.shown = true
	}
	s.mu.Unlock()

	animals, err := s.remote.ListAnimals(ctx)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug("discarding superseded list refresh", zap.Uint64("generation", gen))
		return nil
	}
	if err != nil {
		msg := api.Message(err)
		if !s.shown {
			s.status = StatusError
			s.message = msg
		}
		s.mu.Unlock()
		s.log.Warn("animal list refresh failed", zap.Error(err))
		s.notifier.Notify(notify.Notification{Severity: notify.Error, Message: msg})
		return err
	}
	s.setSnapshotLocked(animals)
	s.status = StatusReady
	s.message = ""
	s.shown = true
	s.mu.Unlock()

	if err := s.cache.Save(ctx, animals); err != nil {
		s.log.Warn("animal cache write failed", zap.Error(err))
		return fmt.Errorf("refresh cache: %w", err)
	}
	return nil
}

// ErrDeleteInFlight is returned by Delete for a fid that is already being
// removed.
var ErrDeleteInFlight = errors.New("animal is already being removed")

// Delete removes the animal with fid remotely and then runs a full Focus
// pass. While the call is in flight Removing(fid) reports true and further
// deletes of fid return ErrDeleteInFlight. On failure the record stays, an
// error notification is emitted and the error returned.
func (s *Synchronizer) Delete(ctx context.Context, fid string) error {
	s.mu.Lock()
	if s.removing[fid] {
		s.mu.Unlock()
		return ErrDeleteInFlight
	}
	s.removing[fid] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.removing, fid)
		s.mu.Unlock()
	}()

	if err := s.remote.DeleteAnimal(ctx, fid); err != nil {
		s.log.Warn("animal delete failed", zap.String("fid", fid), zap.Error(err))
		s.notifier.Notify(notify.Notification{Severity: notify.Error, Message: api.Message(err)})
		return err
	}
	return s.Focus(ctx)
}

// Removing reports whether a delete of fid is in flight.
func (s *Synchronizer) Removing(fid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removing[fid]
}

// SetFilter changes the filter text applied by Visible.
func (s *Synchronizer) SetFilter(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == s.filter {
		return
	}
	s.filter = text
	s.visibleValid = false
}

// FilterText returns the current filter.
func (s *Synchronizer) FilterText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Visible returns the snapshot narrowed by the current filter. The result
// is recomputed only after the snapshot or the filter changed.
func (s *Synchronizer) Visible() []models.Animal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.visibleValid {
		s.visible = Filter(s.snapshot, s.filter)
		s.visibleValid = true
	}
	return append([]models.Animal(nil), s.visible...)
}

// State returns a copy of the current state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Status:  s.status,
		Animals: append([]models.Animal(nil), s.snapshot...),
		Message: s.message,
	}
}

// Find returns the animal with list key id from the current snapshot.
func (s *Synchronizer) Find(id string) (models.Animal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.snapshot {
		if a.ID == id {
			return a, true
		}
	}
	return models.Animal{}, false
}

// Reset drops all in-memory state. Passes still in flight are discarded.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.status = StatusLoading
	s.message = ""
	s.snapshot = nil
	s.shown = false
	s.removing = make(map[string]bool)
	s.filter = ""
	s.visible = nil
	s.visibleValid = false
}

func (s *Synchronizer) setSnapshotLocked(animals []models.Animal) {
	s.snapshot = append([]models.Animal(nil), animals...)
	s.visibleValid = false
}
