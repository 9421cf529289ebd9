// Package match defines the grouping entity for one competitive fixture.
package match

import (
	"github.com/fieldside/strikerlog/internal/app/domain/team"
)

// ScoreUnset is the sentinel for a score that was never recorded.
const ScoreUnset = -1

// Result classifies a finished match from the player team's perspective.
type Result int

const (
	ResultUnknown Result = iota
	ResultWin
	ResultLoss
	ResultDraw
)

func (r Result) String() string {
	switch r {
	case ResultWin:
		return "win"
	case ResultLoss:
		return "loss"
	case ResultDraw:
		return "draw"
	default:
		return ""
	}
}

// Match groups actions occurring in one fixture. Date carries day granularity
// only ("2006-01-02"), no time component. At most one match should exist per
// (date, playerTeamId, opponentTeamId) triple; that is enforced by the
// repository's find-or-create helper, not by the storage layer.
//
// The home flag is persisted without the "is" prefix; the stored schema
// predates the in-memory naming and must not change.
type Match struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	PlayerTeamID   string `json:"playerTeamId"`
	OpponentTeamID string `json:"opponentTeamId"`
	League         string `json:"league"`
	PlayerScore    int    `json:"playerScore"`
	OpponentScore  int    `json:"opponentScore"`
	IsHomeMatch    bool   `json:"homeMatch"`
}

// Result is only defined when both scores were recorded.
func (m Match) Result() Result {
	if m.PlayerScore < 0 || m.OpponentScore < 0 {
		return ResultUnknown
	}
	switch {
	case m.PlayerScore > m.OpponentScore:
		return ResultWin
	case m.PlayerScore < m.OpponentScore:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// TeamLookup resolves a team id to a team. The second return value reports
// whether the id was found.
type TeamLookup func(id string) (team.Team, bool)

// DisplayName renders "{playerTeam} vs {opponentTeam}", substituting
// "Unknown" for any reference that no longer resolves. It never fails.
func (m Match) DisplayName(lookup TeamLookup) string {
	return teamName(lookup, m.PlayerTeamID) + " vs " + teamName(lookup, m.OpponentTeamID)
}

func teamName(lookup TeamLookup, id string) string {
	if lookup != nil && id != "" {
		if t, ok := lookup(id); ok && t.Name != "" {
			return t.Name
		}
	}
	return "Unknown"
}
