// Package metrics provides observability for the game server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers gameplay and persistence metrics.
type Collector struct {
	// Gameplay
	FightsResolved int64
	FightsRejected int64
	CriticalHits   int64
	LevelUps       int64
	DailyChecks    int64
	DayRollovers   int64
	XPAwarded      int64
	GoldAwarded    int64

	// Store
	StoreWrites       int64
	StoreWriteLatSum  int64 // nanoseconds
	StoreWriteLatMax  int64
	StoreWriteErrors  int64
	CorruptRecoveries int64

	// Audit events
	EventsWritten    int64
	EventWriteErrors int64

	// WebSocket
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	LastFight time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = New()

// New returns an empty collector. Tests use their own instance.
func New() *Collector {
	return &Collector{StartTime: time.Now()}
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordFight records a resolved fight.
func (c *Collector) RecordFight(xp, gold int, crit, leveledUp bool) {
	atomic.AddInt64(&c.FightsResolved, 1)
	atomic.AddInt64(&c.XPAwarded, int64(xp))
	atomic.AddInt64(&c.GoldAwarded, int64(gold))
	if crit {
		atomic.AddInt64(&c.CriticalHits, 1)
	}
	if leveledUp {
		atomic.AddInt64(&c.LevelUps, 1)
	}

	c.mu.Lock()
	c.LastFight = time.Now()
	c.mu.Unlock()
}

// RecordFightRejected records a fight attempt while on cooldown.
func (c *Collector) RecordFightRejected() {
	atomic.AddInt64(&c.FightsRejected, 1)
}

// RecordDailyCheck records a daily status check; changed is true when it
// moved the hero back to eligible.
func (c *Collector) RecordDailyCheck(changed bool) {
	atomic.AddInt64(&c.DailyChecks, 1)
	if changed {
		atomic.AddInt64(&c.DayRollovers, 1)
	}
}

// RecordStoreWrite records a game state save.
func (c *Collector) RecordStoreWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.StoreWrites, 1)
	atomic.AddInt64(&c.StoreWriteLatSum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.StoreWriteLatMax) {
		atomic.StoreInt64(&c.StoreWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.StoreWriteErrors, 1)
	}
}

// RecordCorruptRecovery records a persisted slot replaced by its default.
func (c *Collector) RecordCorruptRecovery() {
	atomic.AddInt64(&c.CorruptRecoveries, 1)
}

// RecordEventWrite records an audit event write.
func (c *Collector) RecordEventWrite(err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	writes := atomic.LoadInt64(&c.StoreWrites)
	var writeAvg float64
	if writes > 0 {
		writeAvg = float64(atomic.LoadInt64(&c.StoreWriteLatSum)) / float64(writes) / 1e6 // ms
	}

	lastFight := ""
	if !c.LastFight.IsZero() {
		lastFight = c.LastFight.Format(time.RFC3339)
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"game": map[string]interface{}{
			"fights_resolved": atomic.LoadInt64(&c.FightsResolved),
			"fights_rejected": atomic.LoadInt64(&c.FightsRejected),
			"critical_hits":   atomic.LoadInt64(&c.CriticalHits),
			"level_ups":       atomic.LoadInt64(&c.LevelUps),
			"xp_awarded":      atomic.LoadInt64(&c.XPAwarded),
			"gold_awarded":    atomic.LoadInt64(&c.GoldAwarded),
			"daily_checks":    atomic.LoadInt64(&c.DailyChecks),
			"day_rollovers":   atomic.LoadInt64(&c.DayRollovers),
			"last_fight":      lastFight,
		},

		"store": map[string]interface{}{
			"writes":             writes,
			"avg_write_lat_ms":   writeAvg,
			"max_write_lat_ms":   float64(atomic.LoadInt64(&c.StoreWriteLatMax)) / 1e6,
			"write_errors":       atomic.LoadInt64(&c.StoreWriteErrors),
			"corrupt_recoveries": atomic.LoadInt64(&c.CorruptRecoveries),
		},

		"events": map[string]interface{}{
			"written": atomic.LoadInt64(&c.EventsWritten),
			"errors":  atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

// PrometheusHandler returns metrics in Prometheus text format.
func (c *Collector) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		counter(w, "hero_fights_resolved", "Total fights resolved", atomic.LoadInt64(&c.FightsResolved))
		counter(w, "hero_fights_rejected", "Fight attempts while on cooldown", atomic.LoadInt64(&c.FightsRejected))
		counter(w, "hero_critical_hits", "Total critical hits", atomic.LoadInt64(&c.CriticalHits))
		counter(w, "hero_level_ups", "Fights that raised the hero level", atomic.LoadInt64(&c.LevelUps))
		counter(w, "hero_daily_checks", "Daily status checks", atomic.LoadInt64(&c.DailyChecks))
		counter(w, "hero_store_writes", "Game state saves", atomic.LoadInt64(&c.StoreWrites))
		counter(w, "hero_store_write_errors", "Failed game state saves", atomic.LoadInt64(&c.StoreWriteErrors))
		counter(w, "hero_corrupt_recoveries", "Persisted slots replaced by defaults", atomic.LoadInt64(&c.CorruptRecoveries))

		fmt.Fprintf(w, "# HELP hero_store_write_latency_max_ms Maximum save latency\n")
		fmt.Fprintf(w, "# TYPE hero_store_write_latency_max_ms gauge\n")
		fmt.Fprintf(w, "hero_store_write_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.StoreWriteLatMax))/1e6)

		fmt.Fprintf(w, "# HELP hero_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE hero_ws_connections gauge\n")
		fmt.Fprintf(w, "hero_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP hero_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE hero_ws_messages_total counter\n")
		fmt.Fprintf(w, "hero_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "hero_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}

func counter(w http.ResponseWriter, name, help string, v int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s counter\n", name)
	fmt.Fprintf(w, "%s %d\n\n", name, v)
}
