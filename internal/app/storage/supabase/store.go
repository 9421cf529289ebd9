// Package supabase implements the storage interfaces on top of the Supabase
// REST client. Every row carries a userId column; all queries are scoped to
// the signed-in user.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fieldside/strikerlog/internal/app/domain/action"
	"github.com/fieldside/strikerlog/internal/app/domain/match"
	"github.com/fieldside/strikerlog/internal/app/domain/player"
	"github.com/fieldside/strikerlog/internal/app/domain/team"
	"github.com/fieldside/strikerlog/internal/app/storage"
	"github.com/fieldside/strikerlog/internal/database"
)

const (
	tableActions = "actions"
	tablePlayers = "players"
	tableTeams   = "teams"
	tableMatches = "matches"
)

// Store talks to the per-user collections in the document store.
type Store struct {
	client *database.Client
	userID string
}

var _ storage.Store = (*Store)(nil)

// New creates a store scoped to the given user.
func New(client *database.Client, userID string) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	return &Store{client: client, userID: userID}, nil
}

type actionRow struct {
	action.Action
	UserID string `json:"userId"`
}

type playerRow struct {
	player.Player
	UserID string `json:"userId"`
}

type teamRow struct {
	team.Team
	UserID string `json:"userId"`
}

type matchRow struct {
	match.Match
	UserID string `json:"userId"`
}

func (s *Store) scope() string {
	return "userId=eq." + s.userID
}

func (s *Store) scopedID(id string) string {
	return s.scope() + "&id=eq." + id
}

// ActionStore implementation --------------------------------------------------

func (s *Store) CreateAction(ctx context.Context, a action.Action) (action.Action, error) {
	row := actionRow{Action: a, UserID: s.userID}
	data, err := s.client.Request(ctx, "POST", tableActions, row, "")
	if err != nil {
		return action.Action{}, fmt.Errorf("create action: %w", err)
	}
	var rows []actionRow
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
		return rows[0].Action, nil
	}
	return a, nil
}

func (s *Store) UpdateAction(ctx context.Context, a action.Action) (action.Action, error) {
	row := actionRow{Action: a, UserID: s.userID}
	data, err := s.client.Request(ctx, "PATCH", tableActions, row, s.scopedID(fmt.Sprintf("%d", a.ID)))
	if err != nil {
		return action.Action{}, fmt.Errorf("update action: %w", err)
	}
	var rows []actionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return action.Action{}, fmt.Errorf("unmarshal actions: %w", err)
	}
	if len(rows) == 0 {
		return action.Action{}, fmt.Errorf("action %d: %w", a.ID, storage.ErrNotFound)
	}
	return rows[0].Action, nil
}

func (s *Store) GetAction(ctx context.Context, id int64) (action.Action, error) {
	data, err := s.client.Request(ctx, "GET", tableActions, nil, s.scopedID(fmt.Sprintf("%d", id))+"&limit=1")
	if err != nil {
		return action.Action{}, fmt.Errorf("get action: %w", err)
	}
	var rows []actionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return action.Action{}, fmt.Errorf("unmarshal actions: %w", err)
	}
	if len(rows) == 0 {
		return action.Action{}, fmt.Errorf("action %d: %w", id, storage.ErrNotFound)
	}
	return rows[0].Action, nil
}

func (s *Store) ListActions(ctx context.Context) ([]action.Action, error) {
	// Full scan of the user's collection; the dataset is a few hundred rows.
	data, err := s.client.Request(ctx, "GET", tableActions, nil, s.scope())
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	var rows []actionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal actions: %w", err)
	}
	result := make([]action.Action, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.Action)
	}
	return result, nil
}

func (s *Store) DeleteAction(ctx context.Context, id int64) error {
	data, err := s.client.Request(ctx, "DELETE", tableActions, nil, s.scopedID(fmt.Sprintf("%d", id)))
	if err != nil {
		return fmt.Errorf("delete action: %w", err)
	}
	return deletedOrNotFound(data, fmt.Sprintf("action %d", id))
}

// PlayerStore implementation --------------------------------------------------

func (s *Store) CreatePlayer(ctx context.Context, p player.Player) (player.Player, error) {
	row := playerRow{Player: p, UserID: s.userID}
	data, err := s.client.Request(ctx, "POST", tablePlayers, row, "")
	if err != nil {
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}
	var rows []playerRow
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
		return rows[0].Player, nil
	}
	return p, nil
}

func (s *Store) UpdatePlayer(ctx context.Context, p player.Player) (player.Player, error) {
	row := playerRow{Player: p, UserID: s.userID}
	data, err := s.client.Request(ctx, "PATCH", tablePlayers, row, s.scopedID(p.ID))
	if err != nil {
		return player.Player{}, fmt.Errorf("update player: %w", err)
	}
	var rows []playerRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return player.Player{}, fmt.Errorf("unmarshal players: %w", err)
	}
	if len(rows) == 0 {
		return player.Player{}, fmt.Errorf("player %s: %w", p.ID, storage.ErrNotFound)
	}
	return rows[0].Player, nil
}

func (s *Store) GetPlayer(ctx context.Context, id string) (player.Player, error) {
	data, err := s.client.Request(ctx, "GET", tablePlayers, nil, s.scopedID(id)+"&limit=1")
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	var rows []playerRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return player.Player{}, fmt.Errorf("unmarshal players: %w", err)
	}
	if len(rows) == 0 {
		return player.Player{}, fmt.Errorf("player %s: %w", id, storage.ErrNotFound)
	}
	return rows[0].Player, nil
}

func (s *Store) ListPlayers(ctx context.Context) ([]player.Player, error) {
	data, err := s.client.Request(ctx, "GET", tablePlayers, nil, s.scope())
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	var rows []playerRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal players: %w", err)
	}
	result := make([]player.Player, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.Player)
	}
	return result, nil
}

func (s *Store) DeletePlayer(ctx context.Context, id string) error {
	data, err := s.client.Request(ctx, "DELETE", tablePlayers, nil, s.scopedID(id))
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return deletedOrNotFound(data, "player "+id)
}

// TeamStore implementation ----------------------------------------------------

func (s *Store) CreateTeam(ctx context.Context, t team.Team) (team.Team, error) {
	row := teamRow{Team: t, UserID: s.userID}
	data, err := s.client.Request(ctx, "POST", tableTeams, row, "")
	if err != nil {
		return team.Team{}, fmt.Errorf("create team: %w", err)
	}
	var rows []teamRow
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
		return rows[0].Team, nil
	}
	return t, nil
}

func (s *Store) UpdateTeam(ctx context.Context, t team.Team) (team.Team, error) {
	row := teamRow{Team: t, UserID: s.userID}
	data, err := s.client.Request(ctx, "PATCH", tableTeams, row, s.scopedID(t.ID))
	if err != nil {
		return team.Team{}, fmt.Errorf("update team: %w", err)
	}
	var rows []teamRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return team.Team{}, fmt.Errorf("unmarshal teams: %w", err)
	}
	if len(rows) == 0 {
		return team.Team{}, fmt.Errorf("team %s: %w", t.ID, storage.ErrNotFound)
	}
	return rows[0].Team, nil
}

func (s *Store) GetTeam(ctx context.Context, id string) (team.Team, error) {
	data, err := s.client.Request(ctx, "GET", tableTeams, nil, s.scopedID(id)+"&limit=1")
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	var rows []teamRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return team.Team{}, fmt.Errorf("unmarshal teams: %w", err)
	}
	if len(rows) == 0 {
		return team.Team{}, fmt.Errorf("team %s: %w", id, storage.ErrNotFound)
	}
	return rows[0].Team, nil
}

func (s *Store) ListTeams(ctx context.Context) ([]team.Team, error) {
	data, err := s.client.Request(ctx, "GET", tableTeams, nil, s.scope())
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	var rows []teamRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal teams: %w", err)
	}
	result := make([]team.Team, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.Team)
	}
	return result, nil
}

func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	data, err := s.client.Request(ctx, "DELETE", tableTeams, nil, s.scopedID(id))
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	return deletedOrNotFound(data, "team "+id)
}

// MatchStore implementation ---------------------------------------------------

func (s *Store) CreateMatch(ctx context.Context, m match.Match) (match.Match, error) {
	row := matchRow{Match: m, UserID: s.userID}
	data, err := s.client.Request(ctx, "POST", tableMatches, row, "")
	if err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}
	var rows []matchRow
	if err := json.Unmarshal(data, &rows); err == nil && len(rows) > 0 {
		return rows[0].Match, nil
	}
	return m, nil
}

func (s *Store) UpdateMatch(ctx context.Context, m match.Match) (match.Match, error) {
	row := matchRow{Match: m, UserID: s.userID}
	data, err := s.client.Request(ctx, "PATCH", tableMatches, row, s.scopedID(m.ID))
	if err != nil {
		return match.Match{}, fmt.Errorf("update match: %w", err)
	}
	var rows []matchRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return match.Match{}, fmt.Errorf("unmarshal matches: %w", err)
	}
	if len(rows) == 0 {
		return match.Match{}, fmt.Errorf("match %s: %w", m.ID, storage.ErrNotFound)
	}
	return rows[0].Match, nil
}

func (s *Store) GetMatch(ctx context.Context, id string) (match.Match, error) {
	data, err := s.client.Request(ctx, "GET", tableMatches, nil, s.scopedID(id)+"&limit=1")
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	var rows []matchRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return match.Match{}, fmt.Errorf("unmarshal matches: %w", err)
	}
	if len(rows) == 0 {
		return match.Match{}, fmt.Errorf("match %s: %w", id, storage.ErrNotFound)
	}
	return rows[0].Match, nil
}

func (s *Store) ListMatches(ctx context.Context) ([]match.Match, error) {
	data, err := s.client.Request(ctx, "GET", tableMatches, nil, s.scope())
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	var rows []matchRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal matches: %w", err)
	}
	result := make([]match.Match, 0, len(rows))
	for _, r := range rows {
		result = append(result, r.Match)
	}
	return result, nil
}

func (s *Store) DeleteMatch(ctx context.Context, id string) error {
	data, err := s.client.Request(ctx, "DELETE", tableMatches, nil, s.scopedID(id))
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return deletedOrNotFound(data, "match "+id)
}

// deletedOrNotFound inspects the representation returned by a DELETE. An
// empty array means the id matched nothing.
func deletedOrNotFound(data []byte, what string) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}
