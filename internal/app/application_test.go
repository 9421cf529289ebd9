package app

import (
	"context"
	"testing"
	"time"

	"github.com/fieldside/strikerlog/internal/app/domain/action"
	"github.com/fieldside/strikerlog/internal/app/repository"
	"github.com/fieldside/strikerlog/internal/app/storage"
	"github.com/fieldside/strikerlog/internal/app/storage/memory"
)

func TestSignInLoadsSnapshotAndMigrates(t *testing.T) {
	mem := memory.New()
	repo := repository.New(mem, nil)
	ctx := context.Background()

	// A pre-existing legacy row: no player reference.
	if _, err := repo.AddAction(ctx, action.Action{
		Count:      2,
		Kind:       action.KindGoal,
		OccurredAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("seed action: %v", err)
	}

	application := New(Config{
		Stores: func(string) (storage.Store, error) { return mem, nil },
	})

	repairs, err := application.SignIn(ctx)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if repairs != 1 {
		t.Fatalf("expected one legacy repair, got %d", repairs)
	}
	if !application.SignedIn() || application.UserID() != "local" {
		t.Fatalf("session not established: %v %q", application.SignedIn(), application.UserID())
	}
	if !application.State.SyncEnabled() {
		t.Fatalf("snapshot must be marked loaded")
	}

	actions := application.State.Actions()
	if len(actions) != 1 {
		t.Fatalf("expected one action in snapshot, got %d", len(actions))
	}
	if actions[0].IsLegacy() {
		t.Fatalf("legacy row must be repaired after sign in: %+v", actions[0])
	}
}

func TestSignOutTearsDownServices(t *testing.T) {
	application := New(Config{})
	ctx := context.Background()

	if _, err := application.SignIn(ctx); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := application.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if application.SignedIn() || application.UserID() != "" {
		t.Fatalf("session must be cleared")
	}
	if application.State.SyncEnabled() {
		t.Fatalf("snapshot must be cleared on sign out")
	}
	if len(application.State.Actions()) != 0 {
		t.Fatalf("snapshot rows must be cleared on sign out")
	}
}
