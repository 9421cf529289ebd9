package match

import (
	"testing"

	"github.com/fieldside/strikerlog/internal/app/domain/team"
)

func TestResult(t *testing.T) {
	cases := []struct {
		player, opponent int
		want             Result
	}{
		{ScoreUnset, ScoreUnset, ResultUnknown},
		{2, ScoreUnset, ResultUnknown},
		{ScoreUnset, 2, ResultUnknown},
		{3, 1, ResultWin},
		{0, 1, ResultLoss},
		{2, 2, ResultDraw},
		{0, 0, ResultDraw},
	}
	for _, tc := range cases {
		m := Match{PlayerScore: tc.player, OpponentScore: tc.opponent}
		if got := m.Result(); got != tc.want {
			t.Fatalf("result of %d:%d = %v, want %v", tc.player, tc.opponent, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	teams := map[string]team.Team{
		"T1": {ID: "T1", Name: "Falcons"},
		"T2": {ID: "T2", Name: "Rivals FC"},
	}
	lookup := func(id string) (team.Team, bool) {
		tm, ok := teams[id]
		return tm, ok
	}

	m := Match{PlayerTeamID: "T1", OpponentTeamID: "T2"}
	if got := m.DisplayName(lookup); got != "Falcons vs Rivals FC" {
		t.Fatalf("display name = %q", got)
	}

	// Dangling references must degrade, not fail.
	m = Match{PlayerTeamID: "T1", OpponentTeamID: "gone"}
	if got := m.DisplayName(lookup); got != "Falcons vs Unknown" {
		t.Fatalf("display name with dangling opponent = %q", got)
	}
	m = Match{}
	if got := m.DisplayName(nil); got != "Unknown vs Unknown" {
		t.Fatalf("display name with nil lookup = %q", got)
	}
}
