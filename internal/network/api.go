package network

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/battle"
	"github.com/MRamiBalles/DailyHero/server/internal/infra/storage"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/logger"
)

// RecapSource builds the "while you were away" summary.
type RecapSource interface {
	GenerateRecap(ctx context.Context, gameID string, since time.Time) (*storage.Recap, error)
}

// API serves the game over plain HTTP.
type API struct {
	engine GameEngine
	recaps RecapSource
	gameID string
	logger *logger.Logger
}

// NewAPI creates the HTTP handlers. recaps may be nil, which disables
// /api/recap.
func NewAPI(eng GameEngine, recaps RecapSource, gameID string, log *logger.Logger) *API {
	if log == nil {
		log = logger.Nop()
	}
	return &API{engine: eng, recaps: recaps, gameID: gameID, logger: log}
}

// HandleState returns the current snapshot.
// GET /api/state
func (a *API) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.jsonSuccess(w, viewState(a.engine))
}

// HandleFight resolves today's battle. A hero on cooldown gets a normal
// response with status "cooldown".
// POST /api/fight
func (a *API) HandleFight(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, ok, err := a.engine.Fight(r.Context())
	if err != nil {
		a.logger.Errorf("Fight request failed: %v", err)
		a.jsonError(w, battleFailed(err), http.StatusInternalServerError)
		return
	}
	a.jsonSuccess(w, fightView(a.engine, res, ok))
}

// HandleDailyCheck re-evaluates eligibility for today.
// POST /api/daily-check
func (a *API) HandleDailyCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := a.engine.CheckDailyStatus(r.Context()); err != nil {
		a.logger.Errorf("Daily check request failed: %v", err)
		a.jsonError(w, "Daily check failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	a.jsonSuccess(w, viewState(a.engine))
}

// HandleBattles returns the newest log entries.
// GET /api/battles?limit=N
func (a *API) HandleBattles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := battle.DefaultRecent
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			a.jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries := a.engine.RecentBattles(limit)
	a.jsonSuccess(w, map[string]interface{}{
		"count":   len(entries),
		"battles": entries,
	})
}

// HandleRecap summarizes activity since a point in time.
// GET /api/recap?since=RFC3339
func (a *API) HandleRecap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		a.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if a.recaps == nil {
		a.jsonError(w, "Recap unavailable", http.StatusNotFound)
		return
	}

	since := time.Now().Add(-24 * time.Hour)
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			a.jsonError(w, "since must be an RFC3339 timestamp", http.StatusBadRequest)
			return
		}
		since = t
	}

	recap, err := a.recaps.GenerateRecap(r.Context(), a.gameID, since)
	if err != nil {
		a.logger.Errorf("Recap failed: %v", err)
		a.jsonError(w, "Recap failed", http.StatusInternalServerError)
		return
	}
	a.jsonSuccess(w, recap)
}

// RegisterRoutes sets up the game API routes.
func (a *API) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", a.HandleState)
	mux.HandleFunc("/api/fight", a.HandleFight)
	mux.HandleFunc("/api/daily-check", a.HandleDailyCheck)
	mux.HandleFunc("/api/battles", a.HandleBattles)
	mux.HandleFunc("/api/recap", a.HandleRecap)
}

// jsonError sends an error response.
func (a *API) jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// jsonSuccess sends a success response.
func (a *API) jsonSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
