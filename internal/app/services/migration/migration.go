// Package migration repairs records written by old app versions: actions
// without a player assignment, and match-type actions that predate the match
// entity. It runs once per sign-in, after the initial load, and converges —
// a second run over repaired data performs no writes.
package migration

import (
	"context"
	"fmt"

	"github.com/fieldside/strikerlog/internal/app/domain/player"
	"github.com/fieldside/strikerlog/internal/app/metrics"
	"github.com/fieldside/strikerlog/internal/app/repository"
	"github.com/fieldside/strikerlog/internal/app/state"
	"github.com/fieldside/strikerlog/pkg/logger"
)

// Service is the one-shot migration routine.
type Service struct {
	repo  *repository.Repository
	store *state.Store
	log   *logger.Logger
}

// New constructs the routine.
func New(repo *repository.Repository, store *state.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("migration")
	}
	return &Service{repo: repo, store: store, log: log}
}

// Run executes both migration steps against the loaded snapshot. Per-item
// failures are skipped and summarized in the store's transient status; the
// batch never aborts. The returned count is the number of actions repaired.
func (s *Service) Run(ctx context.Context) int {
	repaired, skipped := s.backfillPlayers(ctx)
	matchRepaired, matchSkipped := s.backfillMatches(ctx)
	repaired += matchRepaired
	skipped += matchSkipped
	switch {
	case skipped > 0:
		s.store.SetStatus(fmt.Sprintf("%d legacy records could not be repaired", skipped))
	case repaired > 0:
		s.store.SetStatus("")
	}
	if repaired > 0 {
		s.log.WithField("repaired", repaired).Info("legacy migration finished")
	}
	return repaired
}

// backfillPlayers assigns the reserved default player to every action that
// has none.
func (s *Service) backfillPlayers(ctx context.Context) (repaired, skipped int) {
	var legacy []int
	actions := s.store.Actions()
	for i, a := range actions {
		if a.IsLegacy() {
			legacy = append(legacy, i)
		}
	}
	if len(legacy) == 0 {
		return 0, 0
	}

	defaultID, err := s.ensureDefaultPlayer(ctx)
	if err != nil {
		s.log.WithError(err).Warn("could not resolve default player, skipping player backfill")
		return 0, len(legacy)
	}

	for _, i := range legacy {
		a := actions[i]
		a.PlayerID = defaultID
		a.TeamID = ""
		updated, err := s.repo.UpdateAction(ctx, a)
		metrics.RecordMigrationRepair("player_backfill", err)
		if err != nil {
			s.log.WithError(err).WithField("action_id", a.ID).Warn("player backfill failed for action")
			skipped++
			continue
		}
		s.store.ApplyActionSaved(updated)
		repaired++
	}
	return repaired, skipped
}

// ensureDefaultPlayer finds or creates the player with the reserved sentinel
// name.
func (s *Service) ensureDefaultPlayer(ctx context.Context) (string, error) {
	for _, p := range s.store.Players() {
		if p.Name == player.DefaultName {
			return p.ID, nil
		}
	}
	created, err := s.repo.AddPlayer(ctx, player.Player{Name: player.DefaultName})
	if err != nil {
		return "", err
	}
	s.store.ApplyPlayerSaved(created)
	s.log.WithField("player_id", created.ID).Info("default player created")
	return created.ID, nil
}

// backfillMatches derives a match (and opponent team) for every match-type
// action that has no match link. Actions with a blank opponent name carry
// nothing to derive from and are skipped silently.
func (s *Service) backfillMatches(ctx context.Context) (repaired, skipped int) {
	attempted := false
	for _, a := range s.store.Actions() {
		if !a.IsMatch || a.MatchID != "" {
			continue
		}
		if a.OpponentName == "" {
			continue
		}
		attempted = true

		opponentTeamID, err := s.repo.FindOrCreateOpponentTeam(ctx, a.OpponentName)
		if err != nil {
			metrics.RecordMigrationRepair("match_backfill", err)
			s.log.WithError(err).WithField("action_id", a.ID).Warn("opponent derivation failed")
			skipped++
			continue
		}
		matchID, err := s.repo.FindOrCreateMatch(ctx, a.OccurredAt.Format("2006-01-02"), a.TeamID, opponentTeamID)
		if err != nil {
			metrics.RecordMigrationRepair("match_backfill", err)
			s.log.WithError(err).WithField("action_id", a.ID).Warn("match derivation failed")
			skipped++
			continue
		}

		a.MatchID = matchID
		updated, err := s.repo.UpdateAction(ctx, a)
		metrics.RecordMigrationRepair("match_backfill", err)
		if err != nil {
			s.log.WithError(err).WithField("action_id", a.ID).Warn("match backfill failed for action")
			skipped++
			continue
		}
		s.store.ApplyActionSaved(updated)
		repaired++
	}

	// Derivation may have created team and match rows; pick them up.
	if attempted {
		if teams, err := s.repo.ListAllTeams(ctx); err == nil {
			s.store.ReplaceTeams(teams)
		} else {
			s.log.WithError(err).Warn("could not refresh teams after backfill")
		}
		if matches, err := s.repo.ListAllMatches(ctx); err == nil {
			s.store.ReplaceMatches(matches)
		} else {
			s.log.WithError(err).Warn("could not refresh matches after backfill")
		}
	}
	return repaired, skipped
}
