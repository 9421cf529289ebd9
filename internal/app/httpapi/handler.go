// Package httpapi exposes the logbook over a REST API. List endpoints read
// the in-memory snapshot; writes go through the logbook service so the
// snapshot echoes every successful save.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	app "github.com/fieldside/strikerlog/internal/app"
	"github.com/fieldside/strikerlog/internal/app/domain/action"
	"github.com/fieldside/strikerlog/internal/app/domain/match"
	"github.com/fieldside/strikerlog/internal/app/domain/player"
	"github.com/fieldside/strikerlog/internal/app/domain/team"
	"github.com/fieldside/strikerlog/internal/app/metrics"
	"github.com/fieldside/strikerlog/internal/app/repository"
	"github.com/fieldside/strikerlog/internal/app/services/query"
)

type handler struct {
	app *app.Application
}

// NewHandler returns a router exposing the core REST API.
func NewHandler(application *app.Application) http.Handler {
	h := &handler{app: application}

	r := mux.NewRouter()
	r.Use(metricsMiddleware)

	r.HandleFunc("/healthz", h.health).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	r.HandleFunc("/session", h.sessionInfo).Methods("GET")
	r.HandleFunc("/session/signin", h.signIn).Methods("POST")
	r.HandleFunc("/session/signout", h.signOut).Methods("POST")
	r.HandleFunc("/reload", h.reload).Methods("POST")

	r.HandleFunc("/actions", h.listActions).Methods("GET")
	r.HandleFunc("/actions", h.createAction).Methods("POST")
	r.HandleFunc("/actions/{id}", h.updateAction).Methods("PUT")
	r.HandleFunc("/actions/{id}", h.deleteAction).Methods("DELETE")

	r.HandleFunc("/players", h.listPlayers).Methods("GET")
	r.HandleFunc("/players", h.createPlayer).Methods("POST")
	r.HandleFunc("/players/{id}", h.updatePlayer).Methods("PUT")
	r.HandleFunc("/players/{id}", h.deletePlayer).Methods("DELETE")

	r.HandleFunc("/teams", h.listTeams).Methods("GET")
	r.HandleFunc("/teams", h.createTeam).Methods("POST")
	r.HandleFunc("/teams/{id}", h.updateTeam).Methods("PUT")
	r.HandleFunc("/teams/{id}", h.deleteTeam).Methods("DELETE")

	r.HandleFunc("/matches", h.listMatches).Methods("GET")
	r.HandleFunc("/matches", h.createMatch).Methods("POST")
	r.HandleFunc("/matches/{id}", h.updateMatch).Methods("PUT")
	r.HandleFunc("/matches/{id}", h.deleteMatch).Methods("DELETE")

	r.HandleFunc("/stats", h.stats).Methods("GET")
	r.HandleFunc("/series", h.series).Methods("GET")
	r.HandleFunc("/playtime", h.playTime).Methods("GET")
	r.HandleFunc("/opponents", h.opponents).Methods("GET")

	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) sessionInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"signedIn":    h.app.SignedIn(),
		"userId":      h.app.UserID(),
		"syncEnabled": h.app.State.SyncEnabled(),
		"status":      h.app.State.Status(),
	})
}

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	repairs, err := h.app.SignIn(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  h.app.UserID(),
		"repairs": repairs,
	})
}

func (h *handler) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.app.SignOut(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) reload(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	if err := h.app.State.Reload(r.Context(), h.app.Repo); err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listActions(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	actions := query.FilterActions(h.app.State.Actions(), h.app.State.Matches(), f)
	writeJSON(w, http.StatusOK, actions)
}

func (h *handler) createAction(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	var a action.Action
	if err := decodeJSON(r.Body, &a); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	saved, err := h.app.Logbook.RecordAction(r.Context(), a)
	if err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *handler) updateAction(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("action id must be numeric"))
		return
	}
	var a action.Action
	if err := decodeJSON(r.Body, &a); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.ID = id
	saved, err := h.app.Logbook.UpdateAction(r.Context(), a)
	if err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *handler) deleteAction(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("action id must be numeric"))
		return
	}
	if err := h.app.Logbook.DeleteAction(r.Context(), id); err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listPlayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.app.State.PlayersSortedByName())
}

func (h *handler) createPlayer(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	var p player.Player
	if err := decodeJSON(r.Body, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	saved, err := h.app.Logbook.AddPlayer(r.Context(), p)
	if err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *handler) updatePlayer(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	var p player.Player
	if err := decodeJSON(r.Body, &p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p.ID = mux.Vars(r)["id"]
	saved, err := h.app.Logbook.UpdatePlayer(r.Context(), p)
	if err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *handler) deletePlayer(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	if err := h.app.Logbook.DeletePlayer(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listTeams(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("role") == "opponent" {
		writeJSON(w, http.StatusOK, query.OpponentTeamsFromMatches(h.app.State.Matches(), h.app.State.Teams()))
		return
	}
	writeJSON(w, http.StatusOK, h.app.State.TeamsSortedByName())
}

func (h *handler) createTeam(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	var t team.Team
	if err := decodeJSON(r.Body, &t); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	saved, err := h.app.Logbook.AddTeam(r.Context(), t)
	if err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *handler) updateTeam(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	var t team.Team
	if err := decodeJSON(r.Body, &t); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t.ID = mux.Vars(r)["id"]
	saved, err := h.app.Logbook.UpdateTeam(r.Context(), t)
	if err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *handler) deleteTeam(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	if err := h.app.Logbook.DeleteTeam(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listMatches(w http.ResponseWriter, _ *http.Request) {
	matches := h.app.State.Matches()
	lookup := h.app.State.TeamByID

	type matchView struct {
		match.Match
		DisplayName string `json:"displayName"`
		Result      string `json:"result,omitempty"`
	}
	views := make([]matchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, matchView{
			Match:       m,
			DisplayName: m.DisplayName(lookup),
			Result:      m.Result().String(),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handler) createMatch(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	var m match.Match
	if err := decodeJSON(r.Body, &m); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	saved, err := h.app.Logbook.AddMatch(r.Context(), m)
	if err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *handler) updateMatch(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	var m match.Match
	if err := decodeJSON(r.Body, &m); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	m.ID = mux.Vars(r)["id"]
	saved, err := h.app.Logbook.UpdateMatch(r.Context(), m)
	if err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *handler) deleteMatch(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}
	if err := h.app.Logbook.DeleteMatch(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, storeErrorStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	filtered := query.FilterActions(h.app.State.Actions(), h.app.State.Matches(), f)
	stats := query.AggregateStatistics(filtered)
	writeJSON(w, http.StatusOK, struct {
		query.Stats
		AverageDisplay string `json:"averageDisplay"`
	}{Stats: stats, AverageDisplay: stats.AverageString()})
}

func (h *handler) series(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	filtered := query.FilterActions(h.app.State.Actions(), h.app.State.Matches(), f)
	writeJSON(w, http.StatusOK, query.SeriesForChart(filtered))
}

func (h *handler) playTime(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	filtered := query.FilterActions(h.app.State.Actions(), h.app.State.Matches(), f)
	d := query.PlayTime(filtered)
	writeJSON(w, http.StatusOK, map[string]any{
		"minutes": int(d.Minutes()),
		"display": d.String(),
	})
}

func (h *handler) opponents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.app.State.DistinctOpponentNames())
}

func (h *handler) requireSession(w http.ResponseWriter) bool {
	if !h.app.SignedIn() {
		writeError(w, http.StatusUnauthorized, repository.ErrNotAuthenticated)
		return false
	}
	return true
}

// filterFromQuery builds the query engine filter from URL parameters. Absent
// parameters leave the corresponding criterion unset.
func filterFromQuery(r *http.Request) (query.Filter, error) {
	var f query.Filter
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("kind")); raw != "" {
		kind := action.ParseKind(raw)
		if kind == action.KindUnknown {
			return f, action.ErrUnknownKind
		}
		f.Kind = &kind
	}
	if raw := strings.TrimSpace(q.Get("match")); raw != "" {
		isMatch, err := strconv.ParseBool(raw)
		if err != nil {
			return f, errors.New("match must be a boolean")
		}
		f.IsMatch = &isMatch
	}
	if raw := q.Get("opponentTeamId"); raw != "" {
		f.OpponentTeamID = &raw
	}
	if raw := q.Get("playerId"); raw != "" {
		f.PlayerID = &raw
	}
	if raw := q.Get("teamId"); raw != "" {
		f.TeamID = &raw
	}
	return f, nil
}

func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrStoreUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, action.ErrCountTooLow), errors.Is(err, action.ErrUnknownKind):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
