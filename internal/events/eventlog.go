// Package events provides the audit log of engine activity.
// Every fight, rejected fight and daily status change is recorded here as an
// immutable event, optionally written through to durable storage.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/DailyHero/server/internal/platform/logger"
)

// EventType defines the category of an audit event.
type EventType string

const (
	EventTypeFightResolved      EventType = "FIGHT_RESOLVED"
	EventTypeFightRejected      EventType = "FIGHT_REJECTED"
	EventTypeDailyStatusChanged EventType = "DAILY_STATUS_CHANGED"
	EventTypeStateRecovered     EventType = "STATE_RECOVERED"
	EventTypeDayRollover        EventType = "DAY_ROLLOVER"
)

// ActorHero is the actor of every player-driven event.
const ActorHero = "HERO"

// ActorSystem is the actor of clock-driven events.
const ActorSystem = "SYSTEM"

// GameEvent represents an immutable record of an action in the game.
type GameEvent struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Type      EventType              `json:"type"`
	ActorID   string                 `json:"actor_id"`
	Payload   map[string]interface{} `json:"payload"`
	GameDate  string                 `json:"game_date"` // calendar date the event belongs to
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// DefaultCapacity bounds the in-memory tail of the log.
const DefaultCapacity = 500

// EventLog is the in-memory append-only log of audit events. Only the most
// recent events are kept in memory; the persister holds the full history.
type EventLog struct {
	mu          sync.RWMutex
	events      []GameEvent
	capacity    int
	persister   EventPersister
	subscribers []func(GameEvent)
	log         *logger.Logger
}

// NewEventLog creates a new event log with an optional persister.
func NewEventLog(persister EventPersister, log *logger.Logger) *EventLog {
	if log == nil {
		log = logger.Nop()
	}
	return &EventLog{
		events:    make([]GameEvent, 0),
		capacity:  DefaultCapacity,
		persister: persister,
		log:       log,
	}
}

// Subscribe registers fn to receive every appended event. fn runs on the
// appending goroutine and must not block.
func (el *EventLog) Subscribe(fn func(GameEvent)) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.subscribers = append(el.subscribers, fn)
}

// Append adds a new event to the log. Events are immutable once appended.
// A persister failure is logged and returned; the event stays in memory.
func (el *EventLog) Append(event GameEvent) error {
	if event.ID == "" {
		event.ID = GenerateEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	el.mu.Lock()
	el.events = append(el.events, event)
	if over := len(el.events) - el.capacity; over > 0 {
		el.events = append([]GameEvent(nil), el.events[over:]...)
	}
	subs := el.subscribers
	el.mu.Unlock()

	var err error
	if el.persister != nil {
		if err = el.persister.Append(event); err != nil {
			el.log.Errorf("persist event %s (%s): %v", event.ID, event.Type, err)
		}
	}

	for _, fn := range subs {
		fn(event)
	}
	return err
}

// GetByType returns the in-memory events of one type, oldest first.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// GetByDate returns all in-memory events recorded for a calendar date.
func (el *EventLog) GetByDate(date string) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.GameDate == date {
			result = append(result, e)
		}
	}
	return result
}

// Replay returns a copy of the in-memory history, oldest first.
func (el *EventLog) Replay() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]GameEvent, len(el.events))
	copy(out, el.events)
	return out
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}

// Payload keys shared by event producers and readers.
const (
	KeyMonsterID   = "monster_id"
	KeyMonsterName = "monster_name"
	KeyRarity      = "rarity"
	KeyXP          = "xp"
	KeyGold        = "gold"
	KeyCritical    = "critical"
	KeyLevelBefore = "level_before"
	KeyLevelAfter  = "level_after"
	KeyDaysIdle    = "days_without_fight"
	KeyOutcome     = "outcome"
	KeyMessage     = "message"
)
