// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/fieldside/strikerlog/internal/app/domain/action"
	"github.com/fieldside/strikerlog/internal/app/domain/match"
	"github.com/fieldside/strikerlog/internal/app/domain/player"
	"github.com/fieldside/strikerlog/internal/app/domain/team"
	"github.com/fieldside/strikerlog/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces.
type Store struct {
	mu      sync.RWMutex
	actions map[int64]action.Action
	players map[string]player.Player
	teams   map[string]team.Team
	matches map[string]match.Match
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		actions: make(map[int64]action.Action),
		players: make(map[string]player.Player),
		teams:   make(map[string]team.Team),
		matches: make(map[string]match.Match),
	}
}

// ActionStore implementation --------------------------------------------------

func (s *Store) CreateAction(_ context.Context, a action.Action) (action.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.actions[a.ID]; exists {
		return action.Action{}, fmt.Errorf("action %d already exists", a.ID)
	}
	s.actions[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAction(_ context.Context, a action.Action) (action.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.actions[a.ID]; !ok {
		return action.Action{}, fmt.Errorf("action %d: %w", a.ID, storage.ErrNotFound)
	}
	s.actions[a.ID] = a
	return a, nil
}

func (s *Store) GetAction(_ context.Context, id int64) (action.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.actions[id]
	if !ok {
		return action.Action{}, fmt.Errorf("action %d: %w", id, storage.ErrNotFound)
	}
	return a, nil
}

func (s *Store) ListActions(_ context.Context) ([]action.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]action.Action, 0, len(s.actions))
	for _, a := range s.actions {
		result = append(result, a)
	}
	return result, nil
}

func (s *Store) DeleteAction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.actions[id]; !ok {
		return fmt.Errorf("action %d: %w", id, storage.ErrNotFound)
	}
	delete(s.actions, id)
	return nil
}

// PlayerStore implementation --------------------------------------------------

func (s *Store) CreatePlayer(_ context.Context, p player.Player) (player.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.players[p.ID]; exists {
		return player.Player{}, fmt.Errorf("player %s already exists", p.ID)
	}
	p = p.Clone()
	s.players[p.ID] = p
	return p.Clone(), nil
}

func (s *Store) UpdatePlayer(_ context.Context, p player.Player) (player.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[p.ID]; !ok {
		return player.Player{}, fmt.Errorf("player %s: %w", p.ID, storage.ErrNotFound)
	}
	p = p.Clone()
	s.players[p.ID] = p
	return p.Clone(), nil
}

func (s *Store) GetPlayer(_ context.Context, id string) (player.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return player.Player{}, fmt.Errorf("player %s: %w", id, storage.ErrNotFound)
	}
	return p.Clone(), nil
}

func (s *Store) ListPlayers(_ context.Context) ([]player.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]player.Player, 0, len(s.players))
	for _, p := range s.players {
		result = append(result, p.Clone())
	}
	return result, nil
}

func (s *Store) DeletePlayer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[id]; !ok {
		return fmt.Errorf("player %s: %w", id, storage.ErrNotFound)
	}
	delete(s.players, id)
	return nil
}

// TeamStore implementation ----------------------------------------------------

func (s *Store) CreateTeam(_ context.Context, t team.Team) (team.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.teams[t.ID]; exists {
		return team.Team{}, fmt.Errorf("team %s already exists", t.ID)
	}
	s.teams[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTeam(_ context.Context, t team.Team) (team.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[t.ID]; !ok {
		return team.Team{}, fmt.Errorf("team %s: %w", t.ID, storage.ErrNotFound)
	}
	s.teams[t.ID] = t
	return t, nil
}

func (s *Store) GetTeam(_ context.Context, id string) (team.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[id]
	if !ok {
		return team.Team{}, fmt.Errorf("team %s: %w", id, storage.ErrNotFound)
	}
	return t, nil
}

func (s *Store) ListTeams(_ context.Context) ([]team.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]team.Team, 0, len(s.teams))
	for _, t := range s.teams {
		result = append(result, t)
	}
	return result, nil
}

func (s *Store) DeleteTeam(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[id]; !ok {
		return fmt.Errorf("team %s: %w", id, storage.ErrNotFound)
	}
	delete(s.teams, id)
	return nil
}

// MatchStore implementation ---------------------------------------------------

func (s *Store) CreateMatch(_ context.Context, m match.Match) (match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.matches[m.ID]; exists {
		return match.Match{}, fmt.Errorf("match %s already exists", m.ID)
	}
	s.matches[m.ID] = m
	return m, nil
}

func (s *Store) UpdateMatch(_ context.Context, m match.Match) (match.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[m.ID]; !ok {
		return match.Match{}, fmt.Errorf("match %s: %w", m.ID, storage.ErrNotFound)
	}
	s.matches[m.ID] = m
	return m, nil
}

func (s *Store) GetMatch(_ context.Context, id string) (match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return match.Match{}, fmt.Errorf("match %s: %w", id, storage.ErrNotFound)
	}
	return m, nil
}

func (s *Store) ListMatches(_ context.Context) ([]match.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]match.Match, 0, len(s.matches))
	for _, m := range s.matches {
		result = append(result, m)
	}
	return result, nil
}

func (s *Store) DeleteMatch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[id]; !ok {
		return fmt.Errorf("match %s: %w", id, storage.ErrNotFound)
	}
	delete(s.matches, id)
	return nil
}
