// Package repository is the typed façade over the document store. It is the
// only component that talks to storage, and it owns the two find-or-create
// derivation helpers.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldside/strikerlog/internal/app/domain/action"
	"github.com/fieldside/strikerlog/internal/app/domain/match"
	"github.com/fieldside/strikerlog/internal/app/domain/player"
	"github.com/fieldside/strikerlog/internal/app/domain/team"
	"github.com/fieldside/strikerlog/internal/app/metrics"
	"github.com/fieldside/strikerlog/internal/app/storage"
	"github.com/fieldside/strikerlog/pkg/logger"
)

// Repository provides typed CRUD plus the derivation helpers. All operations
// return errors from the taxonomy in errors.go; nothing panics across this
// boundary.
type Repository struct {
	store storage.Store
	log   *logger.Logger
	now   func() time.Time
	newID func() string
}

// New constructs a repository over the given store.
func New(store storage.Store, log *logger.Logger) *Repository {
	if log == nil {
		log = logger.NewDefault("repository")
	}
	return &Repository{
		store: store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock overrides time and id sources, for tests.
func (r *Repository) WithClock(now func() time.Time, newID func() string) *Repository {
	if now != nil {
		r.now = now
	}
	if newID != nil {
		r.newID = newID
	}
	return r
}

// Actions ---------------------------------------------------------------------

// AddAction validates and persists a new action. A zero id is derived from
// the current time; a zero occurredAt defaults to now.
func (r *Repository) AddAction(ctx context.Context, a action.Action) (action.Action, error) {
	if err := a.Validate(); err != nil {
		return action.Action{}, err
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = r.now().UTC()
	}
	if a.ID == 0 {
		a.ID = action.NewID(r.now())
	}
	created, err := r.store.CreateAction(ctx, a)
	metrics.RecordStoreOp("actions", "create", err)
	if err != nil {
		return action.Action{}, classify(err)
	}
	return created, nil
}

// UpdateAction replaces the stored action with the same id.
func (r *Repository) UpdateAction(ctx context.Context, a action.Action) (action.Action, error) {
	if err := a.Validate(); err != nil {
		return action.Action{}, err
	}
	updated, err := r.store.UpdateAction(ctx, a)
	metrics.RecordStoreOp("actions", "update", err)
	if err != nil {
		return action.Action{}, classify(err)
	}
	return updated, nil
}

// DeleteAction removes the action by id.
func (r *Repository) DeleteAction(ctx context.Context, id int64) error {
	err := r.store.DeleteAction(ctx, id)
	metrics.RecordStoreOp("actions", "delete", err)
	if err != nil {
		return classify(err)
	}
	return nil
}

// ListAllActions scans the user's action collection.
func (r *Repository) ListAllActions(ctx context.Context) ([]action.Action, error) {
	list, err := r.store.ListActions(ctx)
	metrics.RecordStoreOp("actions", "list", err)
	if err != nil {
		return nil, classify(err)
	}
	return list, nil
}

// Players ---------------------------------------------------------------------

// AddPlayer persists a new player, generating an id when absent.
func (r *Repository) AddPlayer(ctx context.Context, p player.Player) (player.Player, error) {
	if p.ID == "" {
		p.ID = r.newID()
	}
	created, err := r.store.CreatePlayer(ctx, p)
	metrics.RecordStoreOp("players", "create", err)
	if err != nil {
		return player.Player{}, classify(err)
	}
	return created, nil
}

// UpdatePlayer replaces the stored player with the same id.
func (r *Repository) UpdatePlayer(ctx context.Context, p player.Player) (player.Player, error) {
	updated, err := r.store.UpdatePlayer(ctx, p)
	metrics.RecordStoreOp("players", "update", err)
	if err != nil {
		return player.Player{}, classify(err)
	}
	return updated, nil
}

// DeletePlayer removes the player by id. Actions referencing it keep their
// playerId; lookups on such dangling references resolve to "unknown".
func (r *Repository) DeletePlayer(ctx context.Context, id string) error {
	err := r.store.DeletePlayer(ctx, id)
	metrics.RecordStoreOp("players", "delete", err)
	if err != nil {
		return classify(err)
	}
	return nil
}

// ListAllPlayers scans the user's player collection.
func (r *Repository) ListAllPlayers(ctx context.Context) ([]player.Player, error) {
	list, err := r.store.ListPlayers(ctx)
	metrics.RecordStoreOp("players", "list", err)
	if err != nil {
		return nil, classify(err)
	}
	return list, nil
}

// Teams -----------------------------------------------------------------------

// AddTeam persists a new team, generating an id when absent.
func (r *Repository) AddTeam(ctx context.Context, t team.Team) (team.Team, error) {
	if t.ID == "" {
		t.ID = r.newID()
	}
	created, err := r.store.CreateTeam(ctx, t)
	metrics.RecordStoreOp("teams", "create", err)
	if err != nil {
		return team.Team{}, classify(err)
	}
	return created, nil
}

// UpdateTeam replaces the stored team with the same id.
func (r *Repository) UpdateTeam(ctx context.Context, t team.Team) (team.Team, error) {
	updated, err := r.store.UpdateTeam(ctx, t)
	metrics.RecordStoreOp("teams", "update", err)
	if err != nil {
		return team.Team{}, classify(err)
	}
	return updated, nil
}

// DeleteTeam removes the team by id.
func (r *Repository) DeleteTeam(ctx context.Context, id string) error {
	err := r.store.DeleteTeam(ctx, id)
	metrics.RecordStoreOp("teams", "delete", err)
	if err != nil {
		return classify(err)
	}
	return nil
}

// ListAllTeams scans the user's team collection.
func (r *Repository) ListAllTeams(ctx context.Context) ([]team.Team, error) {
	list, err := r.store.ListTeams(ctx)
	metrics.RecordStoreOp("teams", "list", err)
	if err != nil {
		return nil, classify(err)
	}
	return list, nil
}

// Matches ---------------------------------------------------------------------

// AddMatch persists a new match, generating an id when absent.
func (r *Repository) AddMatch(ctx context.Context, m match.Match) (match.Match, error) {
	if m.ID == "" {
		m.ID = r.newID()
	}
	created, err := r.store.CreateMatch(ctx, m)
	metrics.RecordStoreOp("matches", "create", err)
	if err != nil {
		return match.Match{}, classify(err)
	}
	return created, nil
}

// UpdateMatch replaces the stored match with the same id.
func (r *Repository) UpdateMatch(ctx context.Context, m match.Match) (match.Match, error) {
	updated, err := r.store.UpdateMatch(ctx, m)
	metrics.RecordStoreOp("matches", "update", err)
	if err != nil {
		return match.Match{}, classify(err)
	}
	return updated, nil
}

// DeleteMatch removes the match row only. Clearing matchId on dependent
// actions is the logbook service's job; there is no cascade here.
func (r *Repository) DeleteMatch(ctx context.Context, id string) error {
	err := r.store.DeleteMatch(ctx, id)
	metrics.RecordStoreOp("matches", "delete", err)
	if err != nil {
		return classify(err)
	}
	return nil
}

// ListAllMatches scans the user's match collection.
func (r *Repository) ListAllMatches(ctx context.Context) ([]match.Match, error) {
	list, err := r.store.ListMatches(ctx)
	metrics.RecordStoreOp("matches", "list", err)
	if err != nil {
		return nil, classify(err)
	}
	return list, nil
}

// Derivation helpers ----------------------------------------------------------
//
// Both helpers are check-then-act against a freshly listed snapshot, with no
// transaction underneath. Two near-simultaneous calls from different clients
// can still create duplicates; that limitation is accepted and deliberately
// kept inside these two methods so a transactional backend only needs this
// one seam changed.

// FindOrCreateOpponentTeam returns the id of the team whose name equals the
// given name (case-sensitive), creating it with the default color when
// absent.
func (r *Repository) FindOrCreateOpponentTeam(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("opponent name is required")
	}

	teams, err := r.ListAllTeams(ctx)
	if err != nil {
		return "", err
	}
	for _, t := range teams {
		if t.Name == name {
			return t.ID, nil
		}
	}

	created, err := r.AddTeam(ctx, team.Team{
		Name:  name,
		Color: team.DefaultColor,
	})
	if err != nil {
		return "", err
	}
	r.log.WithField("team_id", created.ID).WithField("name", name).Info("opponent team created")
	return created.ID, nil
}

// FindOrCreateMatch returns the id of the match with exactly the given
// (date, playerTeamId, opponentTeamId) triple, creating it with unset scores
// when absent. Date carries day granularity ("2006-01-02").
func (r *Repository) FindOrCreateMatch(ctx context.Context, date, playerTeamID, opponentTeamID string) (string, error) {
	if date == "" {
		return "", fmt.Errorf("match date is required")
	}

	matches, err := r.ListAllMatches(ctx)
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		if m.Date == date && m.PlayerTeamID == playerTeamID && m.OpponentTeamID == opponentTeamID {
			return m.ID, nil
		}
	}

	created, err := r.AddMatch(ctx, match.Match{
		Date:           date,
		PlayerTeamID:   playerTeamID,
		OpponentTeamID: opponentTeamID,
		PlayerScore:    match.ScoreUnset,
		OpponentScore:  match.ScoreUnset,
		IsHomeMatch:    true,
	})
	if err != nil {
		return "", err
	}
	r.log.WithField("match_id", created.ID).WithField("date", date).Info("match created")
	return created.ID, nil
}
