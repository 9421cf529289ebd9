// Package state holds the signed-in user's collections in memory. There is a
// single logical writer: every mutation happens after the backing write was
// acknowledged, so observers never see state the store has not accepted.
package state

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/fieldside/strikerlog/internal/app/domain/action"
	"github.com/fieldside/strikerlog/internal/app/domain/match"
	"github.com/fieldside/strikerlog/internal/app/domain/player"
	"github.com/fieldside/strikerlog/internal/app/domain/team"
	"github.com/fieldside/strikerlog/internal/app/repository"
	"github.com/fieldside/strikerlog/pkg/logger"
)

// Store is the observable holder of the four current-user collections.
type Store struct {
	mu      sync.RWMutex
	actions []action.Action
	players []player.Player
	teams   []team.Team
	matches []match.Match

	syncEnabled bool
	status      string

	// Single-flight guard: a second concurrent Reload no-ops instead of
	// queuing or cancelling the one in flight.
	loading atomic.Bool

	changed chan struct{}
	log     *logger.Logger
}

// New creates an empty store.
func New(log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("state")
	}
	return &Store{
		changed: make(chan struct{}, 1),
		log:     log,
	}
}

// Changed returns a coalescing notification channel; one receive may cover
// several mutations.
func (s *Store) Changed() <-chan struct{} {
	return s.changed
}

func (s *Store) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Reload wipes and replaces all four collections from the repository. When a
// reload is already in flight the call is dropped. On any listing failure the
// previous collections stay untouched and only the status message changes.
func (s *Store) Reload(ctx context.Context, repo *repository.Repository) error {
	if !s.loading.CompareAndSwap(false, true) {
		s.log.Info("reload already in flight, skipping")
		return nil
	}
	defer s.loading.Store(false)

	actions, err := repo.ListAllActions(ctx)
	if err != nil {
		s.SetStatus("could not load actions: " + err.Error())
		return err
	}
	players, err := repo.ListAllPlayers(ctx)
	if err != nil {
		s.SetStatus("could not load players: " + err.Error())
		return err
	}
	teams, err := repo.ListAllTeams(ctx)
	if err != nil {
		s.SetStatus("could not load teams: " + err.Error())
		return err
	}
	matches, err := repo.ListAllMatches(ctx)
	if err != nil {
		s.SetStatus("could not load matches: " + err.Error())
		return err
	}

	sortActions(actions)

	s.mu.Lock()
	s.actions = actions
	s.players = players
	s.teams = teams
	s.matches = matches
	s.syncEnabled = true
	s.status = ""
	s.mu.Unlock()

	s.log.WithField("actions", len(actions)).
		WithField("players", len(players)).
		WithField("teams", len(teams)).
		WithField("matches", len(matches)).
		Info("state reloaded")
	s.notify()
	return nil
}

// SignOut clears all collections and disables sync.
func (s *Store) SignOut() {
	s.mu.Lock()
	s.actions = nil
	s.players = nil
	s.teams = nil
	s.matches = nil
	s.syncEnabled = false
	s.status = ""
	s.mu.Unlock()
	s.notify()
}

// SyncEnabled reports whether a signed-in snapshot is loaded.
func (s *Store) SyncEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncEnabled
}

// SetStatus replaces the transient, dismissible status message.
func (s *Store) SetStatus(msg string) {
	s.mu.Lock()
	s.status = msg
	s.mu.Unlock()
	s.notify()
}

// Status returns the current transient message, empty when none.
func (s *Store) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Echo methods ----------------------------------------------------------------
//
// Each Apply* call is the optimistic echo of one acknowledged write: the
// in-memory copy must exactly match what was just written. There is no later
// reconciliation against an authoritative read short of a full Reload; that
// is a documented limitation carried over, not an oversight.

// ApplyActionSaved inserts or replaces the action and restores descending
// occurredAt order.
func (s *Store) ApplyActionSaved(a action.Action) {
	s.mu.Lock()
	replaced := false
	for i := range s.actions {
		if s.actions[i].ID == a.ID {
			s.actions[i] = a
			replaced = true
			break
		}
	}
	if !replaced {
		s.actions = append(s.actions, a)
	}
	sortActions(s.actions)
	s.mu.Unlock()
	s.notify()
}

// ApplyActionRemoved drops the action by id. Removing an id that is already
// gone is an idempotent no-op.
func (s *Store) ApplyActionRemoved(id int64) {
	s.mu.Lock()
	for i := range s.actions {
		if s.actions[i].ID == id {
			s.actions = append(s.actions[:i], s.actions[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// ApplyPlayerSaved inserts or replaces the player.
func (s *Store) ApplyPlayerSaved(p player.Player) {
	s.mu.Lock()
	replaced := false
	for i := range s.players {
		if s.players[i].ID == p.ID {
			s.players[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		s.players = append(s.players, p)
	}
	s.mu.Unlock()
	s.notify()
}

// ApplyPlayerRemoved drops the player by id.
func (s *Store) ApplyPlayerRemoved(id string) {
	s.mu.Lock()
	for i := range s.players {
		if s.players[i].ID == id {
			s.players = append(s.players[:i], s.players[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// ApplyTeamSaved inserts or replaces the team.
func (s *Store) ApplyTeamSaved(t team.Team) {
	s.mu.Lock()
	replaced := false
	for i := range s.teams {
		if s.teams[i].ID == t.ID {
			s.teams[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		s.teams = append(s.teams, t)
	}
	s.mu.Unlock()
	s.notify()
}

// ApplyTeamRemoved drops the team by id.
func (s *Store) ApplyTeamRemoved(id string) {
	s.mu.Lock()
	for i := range s.teams {
		if s.teams[i].ID == id {
			s.teams = append(s.teams[:i], s.teams[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// ApplyMatchSaved inserts or replaces the match.
func (s *Store) ApplyMatchSaved(m match.Match) {
	s.mu.Lock()
	replaced := false
	for i := range s.matches {
		if s.matches[i].ID == m.ID {
			s.matches[i] = m
			replaced = true
			break
		}
	}
	if !replaced {
		s.matches = append(s.matches, m)
	}
	s.mu.Unlock()
	s.notify()
}

// ApplyMatchRemoved drops the match by id.
func (s *Store) ApplyMatchRemoved(id string) {
	s.mu.Lock()
	for i := range s.matches {
		if s.matches[i].ID == id {
			s.matches = append(s.matches[:i], s.matches[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// ReplaceTeams swaps in a fresh team listing (migration side effects).
func (s *Store) ReplaceTeams(teams []team.Team) {
	s.mu.Lock()
	s.teams = teams
	s.mu.Unlock()
	s.notify()
}

// ReplaceMatches swaps in a fresh match listing (migration side effects).
func (s *Store) ReplaceMatches(matches []match.Match) {
	s.mu.Lock()
	s.matches = matches
	s.mu.Unlock()
	s.notify()
}

// Views -----------------------------------------------------------------------

// Actions returns a copy of the actions, newest first.
func (s *Store) Actions() []action.Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]action.Action(nil), s.actions...)
}

// Players returns a copy of the players in load order.
func (s *Store) Players() []player.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]player.Player(nil), s.players...)
}

// Teams returns a copy of the teams in load order.
func (s *Store) Teams() []team.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]team.Team(nil), s.teams...)
}

// Matches returns a copy of the matches in load order.
func (s *Store) Matches() []match.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]match.Match(nil), s.matches...)
}

// TotalActionCount sums the counts of every action.
func (s *Store) TotalActionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, a := range s.actions {
		total += a.Count
	}
	return total
}

// DistinctOpponentNames returns the non-blank opponent names, deduplicated
// case-sensitively and sorted alphabetically.
func (s *Store) DistinctOpponentNames() []string {
	s.mu.RLock()
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, a := range s.actions {
		if a.OpponentName == "" {
			continue
		}
		if _, ok := seen[a.OpponentName]; ok {
			continue
		}
		seen[a.OpponentName] = struct{}{}
		names = append(names, a.OpponentName)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}

// PlayersSortedByName returns the players sorted by name.
func (s *Store) PlayersSortedByName() []player.Player {
	players := s.Players()
	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })
	return players
}

// TeamsSortedByName returns the teams sorted by name.
func (s *Store) TeamsSortedByName() []team.Team {
	teams := s.Teams()
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams
}

// TeamByID resolves a team id against the snapshot. Dangling references
// report false rather than failing.
func (s *Store) TeamByID(id string) (team.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.teams {
		if t.ID == id {
			return t, true
		}
	}
	return team.Team{}, false
}

func sortActions(actions []action.Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].OccurredAt.After(actions[j].OccurredAt)
	})
}
