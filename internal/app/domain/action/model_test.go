package action

import (
	"encoding/json"
	"testing"
	"time"
)

func TestKindEncoding(t *testing.T) {
	cases := map[Kind]string{
		KindGoal:            "goal",
		KindAssist:          "assist",
		KindOffensiveAction: "offensive_action",
		KindEnteredField:    "entered_field",
		KindLeftField:       "left_field",
	}
	for kind, name := range cases {
		if kind.String() != name {
			t.Fatalf("kind %d encoded as %q, want %q", kind, kind.String(), name)
		}
		if ParseKind(name) != kind {
			t.Fatalf("%q decoded as %d, want %d", name, ParseKind(name), kind)
		}
	}
	if ParseKind("red_card") != KindUnknown {
		t.Fatalf("unknown string must decode to KindUnknown")
	}
}

func TestTimeTrackingKinds(t *testing.T) {
	if !KindEnteredField.IsTimeTracking() || !KindLeftField.IsTimeTracking() {
		t.Fatalf("entered/left must be time tracking kinds")
	}
	if KindGoal.IsTimeTracking() {
		t.Fatalf("goal must not be a time tracking kind")
	}
}

func TestIsLegacy(t *testing.T) {
	a := Action{PlayerID: ""}
	if !a.IsLegacy() {
		t.Fatalf("empty playerId must be legacy")
	}
	a.PlayerID = "p1"
	if a.IsLegacy() {
		t.Fatalf("assigned playerId must not be legacy")
	}
}

func TestValidate(t *testing.T) {
	a := Action{Count: 0, Kind: KindGoal}
	if err := a.Validate(); err != ErrCountTooLow {
		t.Fatalf("expected ErrCountTooLow, got %v", err)
	}
	a = Action{Count: 1}
	if err := a.Validate(); err != ErrUnknownKind {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	a = Action{Count: 1, Kind: KindAssist}
	if err := a.Validate(); err != nil {
		t.Fatalf("valid action rejected: %v", err)
	}
}

func TestWireNames(t *testing.T) {
	a := Action{
		ID:         1736467200000,
		OccurredAt: time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC),
		Count:      3,
		Kind:       KindGoal,
		IsMatch:    true,
	}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// The stored schema uses "match", not "isMatch".
	if _, ok := raw["match"]; !ok {
		t.Fatalf("expected bare boolean name \"match\" on the wire, got %s", data)
	}
	if _, ok := raw["isMatch"]; ok {
		t.Fatalf("wire representation must not carry the is-prefixed name")
	}
	if string(raw["actionKind"]) != `"goal"` {
		t.Fatalf("kind must encode via the string table, got %s", raw["actionKind"])
	}
}
