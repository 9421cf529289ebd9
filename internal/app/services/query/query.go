// Package query contains the pure, synchronous filtering and aggregation
// functions used by the history and chart views. It performs no I/O and
// operates on state snapshots.
package query

import (
	"fmt"
	"time"

	"github.com/fieldside/strikerlog/internal/app/domain/action"
	"github.com/fieldside/strikerlog/internal/app/domain/match"
	"github.com/fieldside/strikerlog/internal/app/domain/team"
)

// LegacyPlayerFilter is the special player-filter value matching actions
// without a player assignment instead of an id.
const LegacyPlayerFilter = "Legacy"

// Filter holds optional criteria; nil fields impose no constraint.
type Filter struct {
	Kind           *action.Kind
	IsMatch        *bool
	OpponentTeamID *string
	PlayerID       *string
	TeamID         *string
}

// FilterActions returns the subset of actions where every provided criterion
// matches. The opponent criterion is matched through the action's linked
// match, not the action's own team. Actions with a dangling or empty matchId
// simply never match an opponent criterion.
func FilterActions(actions []action.Action, matches []match.Match, f Filter) []action.Action {
	var matchByID map[string]match.Match
	if f.OpponentTeamID != nil {
		matchByID = make(map[string]match.Match, len(matches))
		for _, m := range matches {
			matchByID[m.ID] = m
		}
	}

	result := make([]action.Action, 0, len(actions))
	for _, a := range actions {
		if f.Kind != nil && a.Kind != *f.Kind {
			continue
		}
		if f.IsMatch != nil && a.IsMatch != *f.IsMatch {
			continue
		}
		if f.TeamID != nil && a.TeamID != *f.TeamID {
			continue
		}
		if f.PlayerID != nil {
			if *f.PlayerID == LegacyPlayerFilter {
				if !a.IsLegacy() {
					continue
				}
			} else if a.PlayerID != *f.PlayerID {
				continue
			}
		}
		if f.OpponentTeamID != nil {
			m, ok := matchByID[a.MatchID]
			if !ok || m.OpponentTeamID != *f.OpponentTeamID {
				continue
			}
		}
		result = append(result, a)
	}
	return result
}

// Stats are the aggregate numbers shown above the chart.
type Stats struct {
	TotalCount   int     `json:"totalCount"`
	SessionCount int     `json:"sessionCount"`
	Average      float64 `json:"average"`
}

// AverageString formats the average to one decimal digit.
func (s Stats) AverageString() string {
	return fmt.Sprintf("%.1f", s.Average)
}

// AggregateStatistics computes totals over a (typically pre-filtered) action
// list. An empty list yields all zeros.
func AggregateStatistics(actions []action.Action) Stats {
	stats := Stats{SessionCount: len(actions)}
	for _, a := range actions {
		stats.TotalCount += a.Count
	}
	if stats.SessionCount > 0 {
		stats.Average = float64(stats.TotalCount) / float64(stats.SessionCount)
	}
	return stats
}

// Point is one chart sample.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SeriesForChart maps the action list to (ordinal index, count) pairs in
// list order. Each point is one session regardless of date spacing; the
// x-axis is not time-proportional. That matches the shipped chart and must
// stay that way without product sign-off.
func SeriesForChart(actions []action.Action) []Point {
	series := make([]Point, len(actions))
	for i, a := range actions {
		series[i] = Point{X: i, Y: a.Count}
	}
	return series
}

// OpponentTeamsFromMatches returns the distinct teams referenced as an
// opponent across the matches, deduplicated by id. Dangling opponent ids are
// skipped.
func OpponentTeamsFromMatches(matches []match.Match, teams []team.Team) []team.Team {
	teamByID := make(map[string]team.Team, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}

	seen := make(map[string]struct{})
	result := make([]team.Team, 0)
	for _, m := range matches {
		if m.OpponentTeamID == "" {
			continue
		}
		if _, ok := seen[m.OpponentTeamID]; ok {
			continue
		}
		seen[m.OpponentTeamID] = struct{}{}
		if t, ok := teamByID[m.OpponentTeamID]; ok {
			result = append(result, t)
		}
	}
	return result
}

// PlayTime sums the time bracketed by entered/left pairs, pairing events in
// chronological order. An entered event without a matching left event
// contributes nothing.
func PlayTime(actions []action.Action) time.Duration {
	events := make([]action.Action, 0)
	for _, a := range actions {
		if a.Kind.IsTimeTracking() {
			events = append(events, a)
		}
	}
	// Snapshots arrive newest first; walk oldest first.
	var total time.Duration
	var enteredAt time.Time
	onField := false
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		switch e.Kind {
		case action.KindEnteredField:
			enteredAt = e.OccurredAt
			onField = true
		case action.KindLeftField:
			if onField && e.OccurredAt.After(enteredAt) {
				total += e.OccurredAt.Sub(enteredAt)
			}
			onField = false
		}
	}
	return total
}
