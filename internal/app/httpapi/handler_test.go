package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	app "github.com/fieldside/strikerlog/internal/app"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	application := app.New(app.Config{})
	handler := NewHandler(application)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/session/signin", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("sign in: expected 200, got %d", resp.Code)
	}
	return handler
}

func marshal(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func TestHandlerLifecycle(t *testing.T) {
	handler := newTestHandler(t)

	// Create a player and a team the actions will reference.
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/players", marshal(t, map[string]any{"name": "Alex"})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create player: expected 201, got %d: %s", resp.Code, resp.Body)
	}
	var p map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal player: %v", err)
	}
	playerID := p["id"].(string)

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/teams", marshal(t, map[string]any{"name": "Striped FC"})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create team: expected 201, got %d: %s", resp.Code, resp.Body)
	}
	var tm map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &tm); err != nil {
		t.Fatalf("unmarshal team: %v", err)
	}
	teamID := tm["id"].(string)

	// A match action with an opponent name derives a team and a match.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/actions", marshal(t, map[string]any{
		"count":        3,
		"actionKind":   "goal",
		"match":        true,
		"opponentName": "Rivals FC",
		"playerId":     playerID,
		"teamId":       teamID,
	})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create action: expected 201, got %d: %s", resp.Code, resp.Body)
	}
	var saved map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &saved); err != nil {
		t.Fatalf("unmarshal action: %v", err)
	}
	if saved["matchId"] == "" {
		t.Fatalf("match action must come back linked: %v", saved)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/matches", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("list matches: expected 200, got %d", resp.Code)
	}
	var matches []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &matches); err != nil {
		t.Fatalf("unmarshal matches: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected one derived match, got %d", len(matches))
	}
	if matches[0]["displayName"] != "Striped FC vs Rivals FC" {
		t.Fatalf("unexpected display name %v", matches[0]["displayName"])
	}

	// Stats over the snapshot.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stats?kind=goal", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", resp.Code)
	}
	var stats map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats["totalCount"].(float64) != 3 || stats["sessionCount"].(float64) != 1 {
		t.Fatalf("unexpected stats %v", stats)
	}
	if stats["averageDisplay"] != "3.0" {
		t.Fatalf("unexpected average display %v", stats["averageDisplay"])
	}

	// Deleting the derived match unlinks the action but keeps it.
	matchID := matches[0]["id"].(string)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/matches/"+matchID, nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("delete match: expected 204, got %d: %s", resp.Code, resp.Body)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/actions", nil))
	var actions []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &actions); err != nil {
		t.Fatalf("unmarshal actions: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("action must survive match delete, got %d", len(actions))
	}
	if actions[0]["matchId"] != "" {
		t.Fatalf("action must be unlinked after match delete: %v", actions[0])
	}
}

func TestHandlerRejectsInvalidInput(t *testing.T) {
	handler := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/actions", marshal(t, map[string]any{
		"count":      0,
		"actionKind": "goal",
	})))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("zero count: expected 400, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stats?kind=volley", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind filter: expected 400, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/actions/not-a-number", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", resp.Code)
	}
}

func TestHandlerRequiresSession(t *testing.T) {
	application := app.New(app.Config{})
	handler := NewHandler(application)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/actions", marshal(t, map[string]any{
		"count":      1,
		"actionKind": "goal",
	})))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("write before sign-in: expected 401, got %d", resp.Code)
	}

	// Reads over the empty snapshot still work.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/actions", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("read before sign-in: expected 200, got %d", resp.Code)
	}
}

func TestHandlerSignOutClearsSnapshot(t *testing.T) {
	handler := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/teams", marshal(t, map[string]any{"name": "Striped FC"})))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create team: expected 201, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/session/signout", nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("sign out: expected 204, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/teams", nil))
	var teams []map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &teams); err != nil {
		t.Fatalf("unmarshal teams: %v", err)
	}
	if len(teams) != 0 {
		t.Fatalf("snapshot must be empty after sign out, got %d teams", len(teams))
	}
}
