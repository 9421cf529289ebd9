// Package storage defines the persistence interfaces for the four record
// kinds. Implementations live in the memory, supabase and postgres
// subpackages.
package storage

import (
	"context"

	"github.com/fieldside/strikerlog/internal/app/domain/action"
	"github.com/fieldside/strikerlog/internal/app/domain/match"
	"github.com/fieldside/strikerlog/internal/app/domain/player"
	"github.com/fieldside/strikerlog/internal/app/domain/team"
)

// ActionStore persists action records.
type ActionStore interface {
	CreateAction(ctx context.Context, a action.Action) (action.Action, error)
	UpdateAction(ctx context.Context, a action.Action) (action.Action, error)
	GetAction(ctx context.Context, id int64) (action.Action, error)
	ListActions(ctx context.Context) ([]action.Action, error)
	DeleteAction(ctx context.Context, id int64) error
}

// PlayerStore persists player records.
type PlayerStore interface {
	CreatePlayer(ctx context.Context, p player.Player) (player.Player, error)
	UpdatePlayer(ctx context.Context, p player.Player) (player.Player, error)
	GetPlayer(ctx context.Context, id string) (player.Player, error)
	ListPlayers(ctx context.Context) ([]player.Player, error)
	DeletePlayer(ctx context.Context, id string) error
}

// TeamStore persists team records.
type TeamStore interface {
	CreateTeam(ctx context.Context, t team.Team) (team.Team, error)
	UpdateTeam(ctx context.Context, t team.Team) (team.Team, error)
	GetTeam(ctx context.Context, id string) (team.Team, error)
	ListTeams(ctx context.Context) ([]team.Team, error)
	DeleteTeam(ctx context.Context, id string) error
}

// MatchStore persists match records.
type MatchStore interface {
	CreateMatch(ctx context.Context, m match.Match) (match.Match, error)
	UpdateMatch(ctx context.Context, m match.Match) (match.Match, error)
	GetMatch(ctx context.Context, id string) (match.Match, error)
	ListMatches(ctx context.Context) ([]match.Match, error)
	DeleteMatch(ctx context.Context, id string) error
}

// Store bundles all four collections. Both implementations satisfy it.
type Store interface {
	ActionStore
	PlayerStore
	TeamStore
	MatchStore
}
