// Package app wires the client core together and owns the per-process
// session and list state. It is created at startup and torn down on logout;
// nothing here lives in package globals.
package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/atinyakov/animaltrack/internal/client/api"
	"github.com/atinyakov/animaltrack/internal/client/cache"
	"github.com/atinyakov/animaltrack/internal/client/editor"
	"github.com/atinyakov/animaltrack/internal/client/kv"
	"github.com/atinyakov/animaltrack/internal/client/listsync"
	"github.com/atinyakov/animaltrack/internal/client/nav"
	"github.com/atinyakov/animaltrack/internal/client/notify"
	"github.com/atinyakov/animaltrack/internal/client/session"
	"github.com/atinyakov/animaltrack/internal/logger"
	"github.com/atinyakov/animaltrack/internal/models"
)

// Remote is everything the client needs from the remote API.
type Remote interface {
	Authenticate(ctx context.Context, user, password string) (models.Session, error)
	listsync.Remote
	editor.Updater
}

// Deps are the collaborators of an App.
type Deps struct {
	Store     kv.Store
	Remote    Remote
	Navigator nav.Navigator
	Notifier  notify.Notifier
	Logger    *zap.Logger
}

// App is one running client.
type App struct {
	Sessions *session.Store
	Cache    *cache.Cache
	List     *listsync.Synchronizer

	remote   Remote
	nav      nav.Navigator
	notifier notify.Notifier
	log      *zap.Logger
}

// New builds an App from its dependencies.
func New(d Deps) *App {
	log := logger.OrNop(d.Logger)
	c := cache.New(d.Store, log.Named("cache"))
	return &App{
		Sessions: session.NewStore(d.Store),
		Cache:    c,
		List:     listsync.New(d.Remote, c, d.Notifier, log.Named("list")),
		remote:   d.Remote,
		nav:      d.Navigator,
		notifier: d.Notifier,
		log:      log,
	}
}

// Start decides the first screen: the list when a session is stored,
// otherwise login. It reports whether a session was found. A session that
// cannot be read counts as absent.
func (a *App) Start(ctx context.Context) bool {
	_, err := a.Sessions.Load(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			a.log.Warn("stored session unreadable, asking for login", zap.Error(err))
		}
		a.nav.Reset(nav.Login)
		return false
	}
	a.nav.Reset(nav.AnimalsList)
	return true
}

// Login authenticates, stores the session and moves to the list. Errors are
// shown as notifications and returned.
func (a *App) Login(ctx context.Context, user, password string) error {
	sess, err := a.remote.Authenticate(ctx, user, password)
	if err != nil {
		a.fail("login failed", err)
		return err
	}
	if err := a.Sessions.Save(ctx, sess); err != nil {
		a.fail("session not saved", err)
		return err
	}
	a.log.Info("logged in", zap.String("user", user))
	a.nav.Reset(nav.AnimalsList)
	return nil
}

// Logout forgets the session and the in-memory list, then returns to
// login. With purge the offline animal list is dropped as well.
func (a *App) Logout(ctx context.Context, purge bool) error {
	if err := a.Sessions.Clear(ctx); err != nil {
		a.fail("logout failed", err)
		return err
	}
	if purge {
		if err := a.Cache.Clear(ctx); err != nil {
			a.log.Warn("animal cache not cleared", zap.Error(err))
		}
	}
	a.List.Reset()
	a.nav.Reset(nav.Login)
	return nil
}

// Open pushes the detail screen for record and returns its editor.
func (a *App) Open(record models.Animal) *editor.Editor {
	rec := record
	a.nav.Push(nav.Animal, &rec)
	return editor.New(record, a.remote, a.notifier, a.nav, a.log.Named("editor"))
}

func (a *App) fail(msg string, err error) {
	a.log.Error(msg, zap.Error(err))
	a.notifier.Notify(notify.Notification{Severity: notify.Error, Message: api.Message(err)})
}
