// Package action defines the logged offensive-event record and its kind enum.
package action

import "time"

// Kind identifies what was logged. It is a closed enum with an explicit
// string encoding so renames never break rows already persisted.
type Kind int

const (
	KindUnknown Kind = iota
	KindGoal
	KindAssist
	KindOffensiveAction

	// The entered/left pair brackets time on the pitch for the play-time
	// aggregate. They are not offensive events themselves.
	KindEnteredField
	KindLeftField
)

var kindNames = map[Kind]string{
	KindGoal:            "goal",
	KindAssist:          "assist",
	KindOffensiveAction: "offensive_action",
	KindEnteredField:    "entered_field",
	KindLeftField:       "left_field",
}

var kindValues = map[string]Kind{}

func init() {
	for k, name := range kindNames {
		kindValues[name] = k
	}
}

// String returns the stable wire encoding of the kind.
func (k Kind) String() string {
	return kindNames[k]
}

// ParseKind decodes a persisted kind string. Unknown strings decode to
// KindUnknown rather than failing, so old rows never poison a listing.
func ParseKind(s string) Kind {
	return kindValues[s]
}

// IsTimeTracking reports whether the kind is one of the entered/left pair.
func (k Kind) IsTimeTracking() bool {
	return k == KindEnteredField || k == KindLeftField
}

// MarshalText implements encoding.TextMarshaler using the stable table.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}

// Action is one recorded offensive event-count entry. The empty string is the
// sentinel for every reference field: no player (legacy), no team, no match.
//
// Booleans are persisted without the "is" prefix; the stored schema predates
// the in-memory naming and must not change.
type Action struct {
	ID           int64     `json:"id"`
	OccurredAt   time.Time `json:"occurredAt"`
	Count        int       `json:"count"`
	Kind         Kind      `json:"actionKind"`
	IsMatch      bool      `json:"match"`
	OpponentName string    `json:"opponentName"`
	PlayerID     string    `json:"playerId"`
	TeamID       string    `json:"teamId"`
	MatchID      string    `json:"matchId"`
}

// IsLegacy reports whether the action predates player assignment.
func (a Action) IsLegacy() bool {
	return a.PlayerID == ""
}

// Validate checks business rules that must hold before any write.
func (a Action) Validate() error {
	if a.Count < 1 {
		return ErrCountTooLow
	}
	if a.Kind == KindUnknown {
		return ErrUnknownKind
	}
	return nil
}

// NewID derives an action id from a timestamp. Ids are unix milliseconds,
// unique as long as saves are naturally spaced by user interaction.
func NewID(now time.Time) int64 {
	return now.UnixMilli()
}
