package app

import (
	"context"
	"fmt"

	"github.com/fieldside/strikerlog/internal/app/repository"
	"github.com/fieldside/strikerlog/internal/app/services/logbook"
	"github.com/fieldside/strikerlog/internal/app/services/migration"
	"github.com/fieldside/strikerlog/internal/app/state"
	"github.com/fieldside/strikerlog/internal/app/storage"
	"github.com/fieldside/strikerlog/internal/app/storage/memory"
	"github.com/fieldside/strikerlog/internal/auth"
	"github.com/fieldside/strikerlog/pkg/logger"
)

// Config describes how the application obtains identity and persistence.
// Nil fields default to a fixed local identity over the in-memory store.
type Config struct {
	// Auth restores the session on startup. Defaults to auth.Static.
	Auth auth.Provider
	// Stores builds the per-user store once the user id is known. The
	// Supabase store needs the id for row scoping; the memory store
	// ignores it.
	Stores func(userID string) (storage.Store, error)
	Log    *logger.Logger
}

// Application ties the repository, state store and domain services together
// and manages the sign-in lifecycle.
type Application struct {
	log    *logger.Logger
	auth   auth.Provider
	stores func(userID string) (storage.Store, error)
	userID string

	State     *state.Store
	Repo      *repository.Repository
	Logbook   *logbook.Service
	Migration *migration.Service
}

// New builds an application. Services that depend on the signed-in user are
// wired during SignIn.
func New(cfg Config) *Application {
	log := cfg.Log
	if log == nil {
		log = logger.NewDefault("app")
	}
	provider := cfg.Auth
	if provider == nil {
		provider = auth.Static{UserID: "local"}
	}
	stores := cfg.Stores
	if stores == nil {
		mem := memory.New()
		stores = func(string) (storage.Store, error) { return mem, nil }
	}
	return &Application{
		log:    log,
		auth:   provider,
		stores: stores,
		State:  state.New(log),
	}
}

// SignIn restores the session, wires the per-user services, loads the full
// snapshot and repairs legacy records. It returns the number of repairs.
func (a *Application) SignIn(ctx context.Context) (int, error) {
	userID, err := a.auth.SignInSilently(ctx)
	if err != nil {
		return 0, fmt.Errorf("sign in: %w", err)
	}

	store, err := a.stores(userID)
	if err != nil {
		return 0, fmt.Errorf("open store for user: %w", err)
	}

	a.userID = userID
	a.Repo = repository.New(store, a.log)
	a.Logbook = logbook.New(a.Repo, a.State, a.log)
	a.Migration = migration.New(a.Repo, a.State, a.log)

	if err := a.State.Reload(ctx, a.Repo); err != nil {
		return 0, err
	}

	repairs := a.Migration.Run(ctx)
	if repairs > 0 {
		a.log.WithField("repairs", repairs).Info("migrated legacy records")
	}
	return repairs, nil
}

// SignOut terminates the session and clears the in-memory snapshot. The
// provider error is returned, but local state is cleared regardless.
func (a *Application) SignOut(ctx context.Context) error {
	err := a.auth.SignOut(ctx)
	a.State.SignOut()
	a.userID = ""
	a.Repo = nil
	a.Logbook = nil
	a.Migration = nil
	return err
}

// UserID returns the signed-in user id, or "" before SignIn.
func (a *Application) UserID() string {
	return a.userID
}

// SignedIn reports whether SignIn completed since the last SignOut.
func (a *Application) SignedIn() bool {
	return a.Repo != nil
}
