package logbook

import (
	"context"
	"testing"
	"time"

	"github.com/fieldside/strikerlog/internal/app/domain/action"
	"github.com/fieldside/strikerlog/internal/app/domain/match"
	"github.com/fieldside/strikerlog/internal/app/repository"
	"github.com/fieldside/strikerlog/internal/app/state"
	"github.com/fieldside/strikerlog/internal/app/storage/memory"
)

func newService(t *testing.T) (*Service, *repository.Repository, *state.Store) {
	t.Helper()
	base := time.Date(2025, 1, 10, 15, 4, 5, 0, time.UTC)

	// Strictly advancing clock so consecutive saves never derive the same id.
	var tick time.Duration
	repo := repository.New(memory.New(), nil).WithClock(func() time.Time {
		tick += time.Millisecond
		return base.Add(tick)
	}, nil)

	store := state.New(nil)
	if err := store.Reload(context.Background(), repo); err != nil {
		t.Fatalf("reload: %v", err)
	}
	svc := New(repo, store, nil).WithClock(func() time.Time { return base })
	return svc, repo, store
}

func TestRecordMatchActionDerivesTeamAndMatch(t *testing.T) {
	svc, repo, store := newService(t)
	ctx := context.Background()

	saved, err := svc.RecordAction(ctx, action.Action{
		Count:        3,
		Kind:         action.KindGoal,
		IsMatch:      true,
		OpponentName: "Rivals FC",
		PlayerID:     "p1",
		TeamID:       "T1",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if saved.MatchID == "" {
		t.Fatalf("match action must be saved linked")
	}

	teams, _ := repo.ListAllTeams(ctx)
	if len(teams) != 1 || teams[0].Name != "Rivals FC" {
		t.Fatalf("expected derived opponent team, got %+v", teams)
	}
	matches, _ := repo.ListAllMatches(ctx)
	if len(matches) != 1 {
		t.Fatalf("expected derived match, got %d", len(matches))
	}
	m := matches[0]
	if m.ID != saved.MatchID || m.Date != "2025-01-10" || m.PlayerTeamID != "T1" || m.OpponentTeamID != teams[0].ID {
		t.Fatalf("derived match wrong: %+v", m)
	}

	// Echo: state mirrors the saved action and the derived rows.
	if len(store.Actions()) != 1 || len(store.Teams()) != 1 || len(store.Matches()) != 1 {
		t.Fatalf("state echo incomplete: %d/%d/%d", len(store.Actions()), len(store.Teams()), len(store.Matches()))
	}

	// A second identical save reuses team and match.
	saved2, err := svc.RecordAction(ctx, action.Action{
		Count:        1,
		Kind:         action.KindAssist,
		IsMatch:      true,
		OpponentName: "Rivals FC",
		PlayerID:     "p1",
		TeamID:       "T1",
	})
	if err != nil {
		t.Fatalf("second record: %v", err)
	}
	if saved2.MatchID != saved.MatchID {
		t.Fatalf("second save must share the match: %s vs %s", saved2.MatchID, saved.MatchID)
	}
	teams, _ = repo.ListAllTeams(ctx)
	matches, _ = repo.ListAllMatches(ctx)
	if len(teams) != 1 || len(matches) != 1 {
		t.Fatalf("second save must not duplicate derived rows")
	}
}

func TestRecordTrainingActionDerivesNothing(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	saved, err := svc.RecordAction(ctx, action.Action{
		Count:    2,
		Kind:     action.KindOffensiveAction,
		IsMatch:  false,
		PlayerID: "p1",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if saved.MatchID != "" {
		t.Fatalf("training action must not be linked to a match")
	}
	if teams, _ := repo.ListAllTeams(ctx); len(teams) != 0 {
		t.Fatalf("training action must not create teams")
	}
}

func TestRecordActionValidatesBeforeWrite(t *testing.T) {
	svc, repo, _ := newService(t)

	if _, err := svc.RecordAction(context.Background(), action.Action{Count: 0, Kind: action.KindGoal}); err == nil {
		t.Fatalf("expected validation error")
	}
	if actions, _ := repo.ListAllActions(context.Background()); len(actions) != 0 {
		t.Fatalf("invalid action must never reach the store")
	}
}

func TestDeleteMatchClearsLinksWithoutCascade(t *testing.T) {
	svc, repo, store := newService(t)
	ctx := context.Background()

	a1, err := svc.RecordAction(ctx, action.Action{Count: 1, Kind: action.KindGoal, IsMatch: true, OpponentName: "Rivals FC", PlayerID: "p1", TeamID: "T1"})
	if err != nil {
		t.Fatalf("record a1: %v", err)
	}
	a2, err := svc.RecordAction(ctx, action.Action{Count: 2, Kind: action.KindAssist, IsMatch: true, OpponentName: "Rivals FC", PlayerID: "p1", TeamID: "T1"})
	if err != nil {
		t.Fatalf("record a2: %v", err)
	}
	if a1.MatchID != a2.MatchID {
		t.Fatalf("fixture actions must share a match")
	}

	if err := svc.DeleteMatch(ctx, a1.MatchID); err != nil {
		t.Fatalf("delete match: %v", err)
	}

	if matches, _ := repo.ListAllMatches(ctx); len(matches) != 0 {
		t.Fatalf("match row must be gone")
	}
	actions, _ := repo.ListAllActions(ctx)
	if len(actions) != 2 {
		t.Fatalf("dependent actions must survive, got %d", len(actions))
	}
	for _, a := range actions {
		if a.MatchID != "" {
			t.Fatalf("action %d still linked after match delete", a.ID)
		}
		if a.Count == 0 || a.PlayerID != "p1" {
			t.Fatalf("unlinking must not touch other fields: %+v", a)
		}
	}
	for _, a := range store.Actions() {
		if a.MatchID != "" {
			t.Fatalf("state echo still linked after match delete")
		}
	}
}

func TestDeleteActionIdempotent(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()

	saved, err := svc.RecordAction(ctx, action.Action{Count: 1, Kind: action.KindGoal, PlayerID: "p1"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.DeleteAction(ctx, saved.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.DeleteAction(ctx, saved.ID); err != nil {
		t.Fatalf("duplicate delete must be a no-op, got %v", err)
	}
	if len(store.Actions()) != 0 {
		t.Fatalf("action still present after delete")
	}
}

func TestUpdateMatchScoreResult(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()

	saved, err := svc.AddMatch(ctx, match.Match{
		Date:           "2025-01-10",
		PlayerTeamID:   "T1",
		OpponentTeamID: "T2",
		PlayerScore:    match.ScoreUnset,
		OpponentScore:  match.ScoreUnset,
		IsHomeMatch:    true,
	})
	if err != nil {
		t.Fatalf("add match: %v", err)
	}
	if saved.Result() != match.ResultUnknown {
		t.Fatalf("fresh match must have no result")
	}

	saved.PlayerScore = 4
	saved.OpponentScore = 2
	updated, err := svc.UpdateMatch(ctx, saved)
	if err != nil {
		t.Fatalf("update match: %v", err)
	}
	if updated.Result() != match.ResultWin {
		t.Fatalf("expected win, got %v", updated.Result())
	}
	if got := store.Matches(); len(got) != 1 || got[0].PlayerScore != 4 {
		t.Fatalf("state echo missing score update: %+v", got)
	}
}
