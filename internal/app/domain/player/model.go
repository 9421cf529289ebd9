// Package player defines the tracked individual.
package player

// DefaultName is the reserved sentinel name assigned by the legacy migration
// when backfilling actions that were saved before player assignment existed.
const DefaultName = "Player"

// Player is a tracked individual. A player may belong to zero or more teams.
type Player struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Birthdate    string   `json:"birthdate"`
	JerseyNumber int      `json:"jerseyNumber"`
	TeamIDs      []string `json:"teamIds"`
}

// Clone returns a copy that shares no slice storage with the receiver.
func (p Player) Clone() Player {
	p.TeamIDs = append([]string(nil), p.TeamIDs...)
	return p
}
