package network

import (
	"net/http"
	"time"

	"github.com/MRamiBalles/DailyHero/server/internal/events"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/logger"
)

// HistoryHandler exposes the in-memory audit log.
type HistoryHandler struct {
	eventLog *events.EventLog
	logger   *logger.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(el *events.EventLog, log *logger.Logger) *HistoryHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &HistoryHandler{eventLog: el, logger: log}
}

// HistoryEvent is an audit event rendered for display.
type HistoryEvent struct {
	ID        string                 `json:"id"`
	Timestamp string                 `json:"timestamp"`
	GameDate  string                 `json:"game_date"`
	Type      string                 `json:"type"`
	Actor     string                 `json:"actor"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HistoryResponse is the API response for the history listing.
type HistoryResponse struct {
	TotalEvents int            `json:"total_events"`
	FilteredBy  string         `json:"filtered_by,omitempty"`
	GeneratedAt string         `json:"generated_at"`
	Events      []HistoryEvent `json:"events"`
}

// HandleHistory lists recent audit events, newest last.
// GET /api/events?date=2024-01-15&type=FIGHT_RESOLVED
func (hh *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	date := r.URL.Query().Get("date")
	eventType := r.URL.Query().Get("type")

	var source []events.GameEvent
	filterDesc := ""
	if date != "" {
		source = hh.eventLog.GetByDate(date)
		filterDesc = "date " + date
	} else {
		source = hh.eventLog.Replay()
	}

	list := make([]HistoryEvent, 0, len(source))
	for _, e := range source {
		if eventType != "" && string(e.Type) != eventType {
			continue
		}
		list = append(list, HistoryEvent{
			ID:        e.ID,
			Timestamp: e.Timestamp.Format(time.RFC3339),
			GameDate:  e.GameDate,
			Type:      string(e.Type),
			Actor:     e.ActorID,
			Details:   e.Payload,
		})
	}
	if eventType != "" {
		if filterDesc != "" {
			filterDesc += ", "
		}
		filterDesc += "type " + eventType
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		TotalEvents: len(list),
		FilteredBy:  filterDesc,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      list,
	})
}

// HandleStats returns per-type counts of the in-memory log.
// GET /api/events/stats
func (hh *HistoryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	all := hh.eventLog.Replay()
	stats := map[string]int{"total_events": len(all)}
	for _, e := range all {
		stats[string(e.Type)]++
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"stats":        stats,
	})
}

// RegisterRoutes sets up the history routes.
func (hh *HistoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/events", hh.HandleHistory)
	mux.HandleFunc("/api/events/stats", hh.HandleStats)
}
