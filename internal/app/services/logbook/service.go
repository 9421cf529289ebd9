// Package logbook composes repository writes with their state echoes: every
// operation here persists first and mirrors the acknowledged value into the
// state store second, so observers never see unconfirmed data.
package logbook

import (
	"context"
	"errors"
	"time"

	"github.com/fieldside/strikerlog/internal/app/domain/action"
	"github.com/fieldside/strikerlog/internal/app/domain/match"
	"github.com/fieldside/strikerlog/internal/app/domain/player"
	"github.com/fieldside/strikerlog/internal/app/domain/team"
	"github.com/fieldside/strikerlog/internal/app/repository"
	"github.com/fieldside/strikerlog/internal/app/state"
	"github.com/fieldside/strikerlog/pkg/logger"
)

// Service bundles the write paths of the app.
type Service struct {
	repo  *repository.Repository
	store *state.Store
	log   *logger.Logger
	now   func() time.Time
}

// New constructs the service.
func New(repo *repository.Repository, store *state.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("logbook")
	}
	return &Service{repo: repo, store: store, log: log, now: time.Now}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Actions ---------------------------------------------------------------------

// RecordAction saves a new action. For a match-type action without a match
// link, the opponent team and the match are derived first (find-or-create)
// and the action is persisted already linked.
func (s *Service) RecordAction(ctx context.Context, a action.Action) (action.Action, error) {
	if err := a.Validate(); err != nil {
		return action.Action{}, err
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = s.now().UTC()
	}

	derived := false
	if a.IsMatch && a.MatchID == "" && a.OpponentName != "" {
		opponentTeamID, err := s.repo.FindOrCreateOpponentTeam(ctx, a.OpponentName)
		if err != nil {
			s.store.SetStatus("could not resolve opponent: " + err.Error())
			return action.Action{}, err
		}
		matchID, err := s.repo.FindOrCreateMatch(ctx, a.OccurredAt.Format("2006-01-02"), a.TeamID, opponentTeamID)
		if err != nil {
			s.store.SetStatus("could not resolve match: " + err.Error())
			return action.Action{}, err
		}
		a.MatchID = matchID
		derived = true
	}

	saved, err := s.repo.AddAction(ctx, a)
	if err != nil {
		s.store.SetStatus("could not save action: " + err.Error())
		return action.Action{}, err
	}
	s.store.ApplyActionSaved(saved)

	if derived {
		s.refreshDerived(ctx)
	}
	return saved, nil
}

// UpdateAction replaces a stored action and echoes the result.
func (s *Service) UpdateAction(ctx context.Context, a action.Action) (action.Action, error) {
	updated, err := s.repo.UpdateAction(ctx, a)
	if err != nil {
		s.store.SetStatus("could not update action: " + err.Error())
		return action.Action{}, err
	}
	s.store.ApplyActionSaved(updated)
	return updated, nil
}

// DeleteAction removes an action. Deleting an id that is already gone is an
// idempotent no-op.
func (s *Service) DeleteAction(ctx context.Context, id int64) error {
	err := s.repo.DeleteAction(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.store.SetStatus("could not delete action: " + err.Error())
		return err
	}
	s.store.ApplyActionRemoved(id)
	return nil
}

// Players ---------------------------------------------------------------------

// AddPlayer persists and echoes a new player.
func (s *Service) AddPlayer(ctx context.Context, p player.Player) (player.Player, error) {
	saved, err := s.repo.AddPlayer(ctx, p)
	if err != nil {
		s.store.SetStatus("could not save player: " + err.Error())
		return player.Player{}, err
	}
	s.store.ApplyPlayerSaved(saved)
	return saved, nil
}

// UpdatePlayer replaces and echoes a stored player.
func (s *Service) UpdatePlayer(ctx context.Context, p player.Player) (player.Player, error) {
	updated, err := s.repo.UpdatePlayer(ctx, p)
	if err != nil {
		s.store.SetStatus("could not update player: " + err.Error())
		return player.Player{}, err
	}
	s.store.ApplyPlayerSaved(updated)
	return updated, nil
}

// DeletePlayer removes a player. Actions keep their playerId; dangling
// references resolve to "unknown" at display time.
func (s *Service) DeletePlayer(ctx context.Context, id string) error {
	err := s.repo.DeletePlayer(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.store.SetStatus("could not delete player: " + err.Error())
		return err
	}
	s.store.ApplyPlayerRemoved(id)
	return nil
}

// Teams -----------------------------------------------------------------------

// AddTeam persists and echoes a new team.
func (s *Service) AddTeam(ctx context.Context, t team.Team) (team.Team, error) {
	saved, err := s.repo.AddTeam(ctx, t)
	if err != nil {
		s.store.SetStatus("could not save team: " + err.Error())
		return team.Team{}, err
	}
	s.store.ApplyTeamSaved(saved)
	return saved, nil
}

// UpdateTeam replaces and echoes a stored team.
func (s *Service) UpdateTeam(ctx context.Context, t team.Team) (team.Team, error) {
	updated, err := s.repo.UpdateTeam(ctx, t)
	if err != nil {
		s.store.SetStatus("could not update team: " + err.Error())
		return team.Team{}, err
	}
	s.store.ApplyTeamSaved(updated)
	return updated, nil
}

// DeleteTeam removes a team.
func (s *Service) DeleteTeam(ctx context.Context, id string) error {
	err := s.repo.DeleteTeam(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.store.SetStatus("could not delete team: " + err.Error())
		return err
	}
	s.store.ApplyTeamRemoved(id)
	return nil
}

// Matches ---------------------------------------------------------------------

// AddMatch persists and echoes an explicitly created match.
func (s *Service) AddMatch(ctx context.Context, m match.Match) (match.Match, error) {
	saved, err := s.repo.AddMatch(ctx, m)
	if err != nil {
		s.store.SetStatus("could not save match: " + err.Error())
		return match.Match{}, err
	}
	s.store.ApplyMatchSaved(saved)
	return saved, nil
}

// UpdateMatch replaces and echoes a stored match.
func (s *Service) UpdateMatch(ctx context.Context, m match.Match) (match.Match, error) {
	updated, err := s.repo.UpdateMatch(ctx, m)
	if err != nil {
		s.store.SetStatus("could not update match: " + err.Error())
		return match.Match{}, err
	}
	s.store.ApplyMatchSaved(updated)
	return updated, nil
}

// DeleteMatch clears the matchId on every action referencing the match, then
// removes the match row. Dependent actions are never deleted. A failed unlink
// is logged and skipped; the match is deleted regardless, matching the
// non-transactional behavior of the store.
func (s *Service) DeleteMatch(ctx context.Context, id string) error {
	for _, a := range s.store.Actions() {
		if a.MatchID != id {
			continue
		}
		a.MatchID = ""
		updated, err := s.repo.UpdateAction(ctx, a)
		if err != nil {
			s.log.WithError(err).WithField("action_id", a.ID).Warn("could not unlink action from match")
			continue
		}
		s.store.ApplyActionSaved(updated)
	}

	err := s.repo.DeleteMatch(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.store.SetStatus("could not delete match: " + err.Error())
		return err
	}
	s.store.ApplyMatchRemoved(id)
	return nil
}

// refreshDerived re-lists teams and matches after a find-or-create may have
// created rows as a side effect.
func (s *Service) refreshDerived(ctx context.Context) {
	if teams, err := s.repo.ListAllTeams(ctx); err == nil {
		s.store.ReplaceTeams(teams)
	} else {
		s.log.WithError(err).Warn("could not refresh teams")
	}
	if matches, err := s.repo.ListAllMatches(ctx); err == nil {
		s.store.ReplaceMatches(matches)
	} else {
		s.log.WithError(err).Warn("could not refresh matches")
	}
}
