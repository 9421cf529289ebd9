package state

import (
	"context"
	"testing"
	"time"

	"github.com/fieldside/strikerlog/internal/app/domain/action"
	"github.com/fieldside/strikerlog/internal/app/domain/player"
	"github.com/fieldside/strikerlog/internal/app/repository"
	"github.com/fieldside/strikerlog/internal/app/storage/memory"
)

func seedRepo(t *testing.T) *repository.Repository {
	t.Helper()
	repo := repository.New(memory.New(), nil)
	ctx := context.Background()

	base := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.AddAction(ctx, action.Action{
			ID:           int64(i + 1),
			OccurredAt:   base.Add(time.Duration(i) * time.Hour),
			Count:        i + 1,
			Kind:         action.KindGoal,
			OpponentName: "Rivals FC",
			PlayerID:     "p1",
		})
		if err != nil {
			t.Fatalf("seed action: %v", err)
		}
	}
	if _, err := repo.AddPlayer(ctx, player.Player{ID: "p1", Name: "Luka"}); err != nil {
		t.Fatalf("seed player: %v", err)
	}
	return repo
}

func TestReloadAndViews(t *testing.T) {
	repo := seedRepo(t)
	store := New(nil)

	if store.SyncEnabled() {
		t.Fatalf("fresh store must not report sync enabled")
	}
	if err := store.Reload(context.Background(), repo); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !store.SyncEnabled() {
		t.Fatalf("reload must enable sync")
	}

	actions := store.Actions()
	if len(actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(actions))
	}
	for i := 1; i < len(actions); i++ {
		if actions[i].OccurredAt.After(actions[i-1].OccurredAt) {
			t.Fatalf("actions must be sorted newest first")
		}
	}
	if store.TotalActionCount() != 6 {
		t.Fatalf("total count = %d, want 6", store.TotalActionCount())
	}
	if names := store.DistinctOpponentNames(); len(names) != 1 || names[0] != "Rivals FC" {
		t.Fatalf("opponent names = %v", names)
	}
}

func TestEchoKeepsOrder(t *testing.T) {
	repo := seedRepo(t)
	store := New(nil)
	if err := store.Reload(context.Background(), repo); err != nil {
		t.Fatalf("reload: %v", err)
	}

	// An older action echoed after a newer one must still sort below it.
	store.ApplyActionSaved(action.Action{
		ID:         99,
		OccurredAt: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		Count:      1,
		Kind:       action.KindAssist,
		PlayerID:   "p1",
	})
	actions := store.Actions()
	if actions[len(actions)-1].ID != 99 {
		t.Fatalf("oldest action must sort last, got order %v", actions)
	}

	// Replacing by id must not duplicate.
	store.ApplyActionSaved(action.Action{ID: 99, OccurredAt: actions[len(actions)-1].OccurredAt, Count: 7, Kind: action.KindAssist, PlayerID: "p1"})
	if got := len(store.Actions()); got != 4 {
		t.Fatalf("expected 4 actions after replace, got %d", got)
	}

	// Duplicate removal is an idempotent no-op.
	store.ApplyActionRemoved(99)
	store.ApplyActionRemoved(99)
	if got := len(store.Actions()); got != 3 {
		t.Fatalf("expected 3 actions after removal, got %d", got)
	}
}

func TestSignOutClears(t *testing.T) {
	repo := seedRepo(t)
	store := New(nil)
	if err := store.Reload(context.Background(), repo); err != nil {
		t.Fatalf("reload: %v", err)
	}

	store.SignOut()
	if store.SyncEnabled() {
		t.Fatalf("sign-out must disable sync")
	}
	if len(store.Actions()) != 0 || len(store.Players()) != 0 {
		t.Fatalf("sign-out must clear collections")
	}
}

func TestViewCopiesAreIsolated(t *testing.T) {
	repo := seedRepo(t)
	store := New(nil)
	if err := store.Reload(context.Background(), repo); err != nil {
		t.Fatalf("reload: %v", err)
	}

	actions := store.Actions()
	actions[0].Count = 999
	if store.Actions()[0].Count == 999 {
		t.Fatalf("view must be a copy, not a live slice")
	}
}
