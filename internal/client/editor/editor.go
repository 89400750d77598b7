// Package editor holds the form state of the animal detail screen.
package editor

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/atinyakov/animaltrack/internal/client/api"
	"github.com/atinyakov/animaltrack/internal/client/nav"
	"github.com/atinyakov/animaltrack/internal/client/notify"
	"github.com/atinyakov/animaltrack/internal/logger"
	"github.com/atinyakov/animaltrack/internal/models"
)

// Updater sends a partial update for one animal.
type Updater interface {
	UpdateAnimal(ctx context.Context, fid, name, status string) error
}

// Editor edits the name and status of one animal. It never touches the
// local cache; the list picks the change up on its next Focus.
type Editor struct {
	remote   Updater
	notifier notify.Notifier
	nav      nav.Navigator
	log      *zap.Logger

	mu     sync.Mutex
	record models.Animal
	name   string
	status string
	saving bool
}

// New loads the editable fields from record.
func New(record models.Animal, remote Updater, notifier notify.Notifier, navigator nav.Navigator, log *zap.Logger) *Editor {
	return &Editor{
		remote:   remote,
		notifier: notifier,
		nav:      navigator,
		log:      logger.OrNop(log),
		record:   record,
		name:     record.Name,
		status:   record.Status.String(),
	}
}

// Record returns the animal the editor was opened with.
func (e *Editor) Record() models.Animal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record
}

func (e *Editor) SetName(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.name = name
}

func (e *Editor) SetStatus(status string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = status
}

// Fields returns the current form values.
func (e *Editor) Fields() (name, status string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.name, e.status
}

// Saving reports whether Submit is in flight.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// ErrSaving is returned by Submit while an earlier Submit is in flight.
var ErrSaving = errors.New("update already in progress")

// Submit sends the form. On success the navigator goes back to the list.
// On failure an error notification is emitted, the form keeps its values
// and the error is returned. A Submit while another is in flight returns
// ErrSaving without a request.
func (e *Editor) Submit(ctx context.Context) error {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return ErrSaving
	}
	fid, name, status := e.record.FID, e.name, e.status
	e.saving = true
	e.mu.Unlock()

	err := e.remote.UpdateAnimal(ctx, fid, name, status)

	e.mu.Lock()
	e.saving = false
	e.mu.Unlock()

	if err != nil {
		e.log.Warn("animal update failed", zap.String("fid", fid), zap.Error(err))
		e.notifier.Notify(notify.Notification{Severity: notify.Error, Message: api.Message(err)})
		return err
	}

	e.log.Info("animal updated", zap.String("fid", fid))
	e.nav.Back()
	return nil
}
