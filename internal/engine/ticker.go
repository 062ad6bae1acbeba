package engine

import (
	"context"
	"time"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/game"
	"github.com/MRamiBalles/DailyHero/server/internal/events"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/logger"
)

// DefaultTickRate is how often the ticker looks at the clock.
const DefaultTickRate = 1 * time.Minute

// Ticker watches the calendar and runs the daily check once per new day, so
// a long-running server makes the hero eligible at midnight without waiting
// for a request.
type Ticker struct {
	engine   *Engine
	clock    Clock
	eventLog *events.EventLog
	logger   *logger.Logger
	rate     time.Duration
	lastDate string
	stopChan chan struct{}
}

// NewTicker creates a rollover ticker. eventLog may be nil.
func NewTicker(e *Engine, clock Clock, eventLog *events.EventLog, log *logger.Logger, rate time.Duration) *Ticker {
	if log == nil {
		log = logger.Nop()
	}
	if rate <= 0 {
		rate = DefaultTickRate
	}
	return &Ticker{
		engine:   e,
		clock:    clock,
		eventLog: eventLog,
		logger:   log,
		rate:     rate,
		lastDate: game.FormatDate(clock.Now()),
		stopChan: make(chan struct{}),
	}
}

// Run loops until ctx is done or Stop is called. It always returns nil so it
// can sit in an errgroup next to the servers.
func (t *Ticker) Run(ctx context.Context) error {
	t.logger.Infof("Daily ticker started (every %s, today %s)", t.rate, t.lastDate)

	ticker := time.NewTicker(t.rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Daily ticker stopped by context.")
			return nil
		case <-t.stopChan:
			t.logger.Info("Daily ticker stopped manually.")
			return nil
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

// Stop gracefully stops the ticker.
func (t *Ticker) Stop() {
	close(t.stopChan)
}

// tick runs the daily check when the date moved since the last tick. It
// reports whether a rollover completed.
func (t *Ticker) tick(ctx context.Context) bool {
	now := t.clock.Now()
	today := game.FormatDate(now)
	if today == t.lastDate {
		return false
	}

	previous := t.lastDate
	if err := t.engine.CheckDailyStatus(ctx); err != nil {
		// Retried on the next tick.
		t.logger.Errorf("Daily check after rollover failed: %v", err)
		return false
	}
	t.lastDate = today

	if t.eventLog != nil {
		_ = t.eventLog.Append(events.GameEvent{
			Timestamp: now,
			Type:      events.EventTypeDayRollover,
			ActorID:   events.ActorSystem,
			Payload:   map[string]interface{}{"from": previous, "to": today},
			GameDate:  today,
		})
	}
	t.logger.Event(string(events.EventTypeDayRollover), events.ActorSystem, previous+" -> "+today)
	return true
}
