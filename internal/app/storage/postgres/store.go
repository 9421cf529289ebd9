// Package postgres implements the storage interfaces over PostgreSQL for
// self-hosted deployments. The schema mirrors the hosted document tables;
// rows are scoped per user like the hosted store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/fieldside/strikerlog/internal/app/domain/action"
	"github.com/fieldside/strikerlog/internal/app/domain/match"
	"github.com/fieldside/strikerlog/internal/app/domain/player"
	"github.com/fieldside/strikerlog/internal/app/domain/team"
	"github.com/fieldside/strikerlog/internal/app/storage"
)

// Store implements storage.Store backed by PostgreSQL.
type Store struct {
	db     *sql.DB
	userID string
}

var _ storage.Store = (*Store)(nil)

// New creates a Store over the provided handle, scoped to one user's rows.
func New(db *sql.DB, userID string) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	return &Store{db: db, userID: userID}, nil
}

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
}

// --- actions ----------------------------------------------------------------

func (s *Store) CreateAction(ctx context.Context, a action.Action) (action.Action, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions (id, user_id, occurred_at, count, kind, match, opponent_name, player_id, team_id, match_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, a.ID, s.userID, a.OccurredAt, a.Count, a.Kind.String(), a.IsMatch, a.OpponentName, a.PlayerID, a.TeamID, a.MatchID)
	if err != nil {
		if IsUniqueViolation(err) {
			return action.Action{}, fmt.Errorf("action %d already exists", a.ID)
		}
		return action.Action{}, err
	}
	return a, nil
}

func (s *Store) UpdateAction(ctx context.Context, a action.Action) (action.Action, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE actions
		SET occurred_at = $3, count = $4, kind = $5, match = $6, opponent_name = $7, player_id = $8, team_id = $9, match_id = $10
		WHERE id = $1 AND user_id = $2
	`, a.ID, s.userID, a.OccurredAt, a.Count, a.Kind.String(), a.IsMatch, a.OpponentName, a.PlayerID, a.TeamID, a.MatchID)
	if err != nil {
		return action.Action{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return action.Action{}, notFound(fmt.Sprintf("action %d", a.ID))
	}
	return a, nil
}

func (s *Store) GetAction(ctx context.Context, id int64) (action.Action, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, occurred_at, count, kind, match, opponent_name, player_id, team_id, match_id
		FROM actions WHERE id = $1 AND user_id = $2
	`, id, s.userID)
	a, err := scanAction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return action.Action{}, notFound(fmt.Sprintf("action %d", id))
	}
	return a, err
}

func (s *Store) ListActions(ctx context.Context) ([]action.Action, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, occurred_at, count, kind, match, opponent_name, player_id, team_id, match_id
		FROM actions WHERE user_id = $1
	`, s.userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []action.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func (s *Store) DeleteAction(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM actions WHERE id = $1 AND user_id = $2`, id, s.userID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return notFound(fmt.Sprintf("action %d", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(r rowScanner) (action.Action, error) {
	var a action.Action
	var kind string
	if err := r.Scan(&a.ID, &a.OccurredAt, &a.Count, &kind, &a.IsMatch, &a.OpponentName, &a.PlayerID, &a.TeamID, &a.MatchID); err != nil {
		return action.Action{}, err
	}
	a.Kind = action.ParseKind(kind)
	return a, nil
}

// --- players ----------------------------------------------------------------

func (s *Store) CreatePlayer(ctx context.Context, p player.Player) (player.Player, error) {
	teamIDs, err := json.Marshal(p.TeamIDs)
	if err != nil {
		return player.Player{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO players (id, user_id, name, birthdate, jersey_number, team_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, s.userID, p.Name, p.Birthdate, p.JerseyNumber, teamIDs)
	if err != nil {
		return player.Player{}, err
	}
	return p, nil
}

func (s *Store) UpdatePlayer(ctx context.Context, p player.Player) (player.Player, error) {
	teamIDs, err := json.Marshal(p.TeamIDs)
	if err != nil {
		return player.Player{}, err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE players
		SET name = $3, birthdate = $4, jersey_number = $5, team_ids = $6
		WHERE id = $1 AND user_id = $2
	`, p.ID, s.userID, p.Name, p.Birthdate, p.JerseyNumber, teamIDs)
	if err != nil {
		return player.Player{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return player.Player{}, notFound("player " + p.ID)
	}
	return p, nil
}

func (s *Store) GetPlayer(ctx context.Context, id string) (player.Player, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, birthdate, jersey_number, team_ids
		FROM players WHERE id = $1 AND user_id = $2
	`, id, s.userID)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return player.Player{}, notFound("player " + id)
	}
	return p, err
}

func (s *Store) ListPlayers(ctx context.Context) ([]player.Player, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, birthdate, jersey_number, team_ids
		FROM players WHERE user_id = $1
	`, s.userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []player.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Store) DeletePlayer(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1 AND user_id = $2`, id, s.userID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return notFound("player " + id)
	}
	return nil
}

func scanPlayer(r rowScanner) (player.Player, error) {
	var p player.Player
	var teamIDs []byte
	if err := r.Scan(&p.ID, &p.Name, &p.Birthdate, &p.JerseyNumber, &teamIDs); err != nil {
		return player.Player{}, err
	}
	if len(teamIDs) > 0 {
		if err := json.Unmarshal(teamIDs, &p.TeamIDs); err != nil {
			return player.Player{}, err
		}
	}
	return p, nil
}

// --- teams ------------------------------------------------------------------

func (s *Store) CreateTeam(ctx context.Context, t team.Team) (team.Team, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, user_id, name, color, league, season)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, s.userID, t.Name, t.Color, t.League, t.Season)
	if err != nil {
		return team.Team{}, err
	}
	return t, nil
}

func (s *Store) UpdateTeam(ctx context.Context, t team.Team) (team.Team, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE teams
		SET name = $3, color = $4, league = $5, season = $6
		WHERE id = $1 AND user_id = $2
	`, t.ID, s.userID, t.Name, t.Color, t.League, t.Season)
	if err != nil {
		return team.Team{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return team.Team{}, notFound("team " + t.ID)
	}
	return t, nil
}

func (s *Store) GetTeam(ctx context.Context, id string) (team.Team, error) {
	var t team.Team
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, color, league, season
		FROM teams WHERE id = $1 AND user_id = $2
	`, id, s.userID).Scan(&t.ID, &t.Name, &t.Color, &t.League, &t.Season)
	if errors.Is(err, sql.ErrNoRows) {
		return team.Team{}, notFound("team " + id)
	}
	return t, err
}

func (s *Store) ListTeams(ctx context.Context) ([]team.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, color, league, season
		FROM teams WHERE user_id = $1
	`, s.userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []team.Team
	for rows.Next() {
		var t team.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.League, &t.Season); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *Store) DeleteTeam(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1 AND user_id = $2`, id, s.userID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return notFound("team " + id)
	}
	return nil
}

// --- matches ----------------------------------------------------------------

func (s *Store) CreateMatch(ctx context.Context, m match.Match) (match.Match, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (id, user_id, date, player_team_id, opponent_team_id, league, player_score, opponent_score, home_match)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, m.ID, s.userID, m.Date, m.PlayerTeamID, m.OpponentTeamID, m.League, m.PlayerScore, m.OpponentScore, m.IsHomeMatch)
	if err != nil {
		return match.Match{}, err
	}
	return m, nil
}

func (s *Store) UpdateMatch(ctx context.Context, m match.Match) (match.Match, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE matches
		SET date = $3, player_team_id = $4, opponent_team_id = $5, league = $6, player_score = $7, opponent_score = $8, home_match = $9
		WHERE id = $1 AND user_id = $2
	`, m.ID, s.userID, m.Date, m.PlayerTeamID, m.OpponentTeamID, m.League, m.PlayerScore, m.OpponentScore, m.IsHomeMatch)
	if err != nil {
		return match.Match{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return match.Match{}, notFound("match " + m.ID)
	}
	return m, nil
}

func (s *Store) GetMatch(ctx context.Context, id string) (match.Match, error) {
	var m match.Match
	err := s.db.QueryRowContext(ctx, `
		SELECT id, date, player_team_id, opponent_team_id, league, player_score, opponent_score, home_match
		FROM matches WHERE id = $1 AND user_id = $2
	`, id, s.userID).Scan(&m.ID, &m.Date, &m.PlayerTeamID, &m.OpponentTeamID, &m.League, &m.PlayerScore, &m.OpponentScore, &m.IsHomeMatch)
	if errors.Is(err, sql.ErrNoRows) {
		return match.Match{}, notFound("match " + id)
	}
	return m, err
}

func (s *Store) ListMatches(ctx context.Context) ([]match.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, player_team_id, opponent_team_id, league, player_score, opponent_score, home_match
		FROM matches WHERE user_id = $1
	`, s.userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []match.Match
	for rows.Next() {
		var m match.Match
		if err := rows.Scan(&m.ID, &m.Date, &m.PlayerTeamID, &m.OpponentTeamID, &m.League, &m.PlayerScore, &m.OpponentScore, &m.IsHomeMatch); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Store) DeleteMatch(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1 AND user_id = $2`, id, s.userID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return notFound("match " + id)
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique constraint violation.
// Duplicate action ids surface this when two writers derive the same
// millisecond timestamp.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
