package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/MRamiBalles/DailyHero/server/internal/events"
)

// Recapper builds the "while you were away" summary from the audit log.
type Recapper struct {
	eventRepo EventRepository
}

// NewRecapper creates a recap builder over eventRepo.
func NewRecapper(eventRepo EventRepository) *Recapper {
	return &Recapper{eventRepo: eventRepo}
}

// RecapEvent is a simplified event for the recap screen.
type RecapEvent struct {
	Timestamp string `json:"timestamp"`
	EventType string `json:"event_type"`
	Summary   string `json:"summary"` // Human-readable description
	Impact    string `json:"impact"`  // "POSITIVE", "NEGATIVE", "NEUTRAL"
}

// Recap aggregates the activity of one game since a point in time.
type Recap struct {
	Since        time.Time    `json:"since"`
	Fights       int          `json:"fights"`
	Rejected     int          `json:"rejected"`
	XPGained     int          `json:"xp_gained"`
	GoldGained   int          `json:"gold_gained"`
	CriticalHits int          `json:"critical_hits"`
	LevelsGained int          `json:"levels_gained"`
	Rollovers    int          `json:"rollovers"`
	Events       []RecapEvent `json:"events"`
}

// GenerateRecap summarizes every stored event of gameID at or after since.
func (r *Recapper) GenerateRecap(ctx context.Context, gameID string, since time.Time) (*Recap, error) {
	stored, err := r.eventRepo.GetSince(ctx, gameID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get game events: %w", err)
	}

	recap := &Recap{Since: since, Events: make([]RecapEvent, 0, len(stored))}
	for _, e := range stored {
		r.applyEvent(recap, e)
		recap.Events = append(recap.Events, RecapEvent{
			Timestamp: e.Timestamp.Format(time.RFC3339),
			EventType: e.EventType,
			Summary:   r.summarizeEvent(e),
			Impact:    r.determineImpact(e),
		})
	}
	return recap, nil
}

// applyEvent folds one event into the totals.
func (r *Recapper) applyEvent(recap *Recap, e GameEvent) {
	switch events.EventType(e.EventType) {
	case events.EventTypeFightResolved:
		recap.Fights++
		recap.XPGained += payloadInt(e.Payload, events.KeyXP)
		recap.GoldGained += payloadInt(e.Payload, events.KeyGold)
		if crit, _ := e.Payload[events.KeyCritical].(bool); crit {
			recap.CriticalHits++
		}
		if gained := payloadInt(e.Payload, events.KeyLevelAfter) - payloadInt(e.Payload, events.KeyLevelBefore); gained > 0 {
			recap.LevelsGained += gained
		}
	case events.EventTypeFightRejected:
		recap.Rejected++
	case events.EventTypeDayRollover:
		recap.Rollovers++
	}
}

// summarizeEvent creates a human-readable summary.
func (r *Recapper) summarizeEvent(e GameEvent) string {
	switch events.EventType(e.EventType) {
	case events.EventTypeFightResolved:
		name, _ := e.Payload[events.KeyMonsterName].(string)
		s := fmt.Sprintf("Defeated %s for %d XP and %d gold.", name,
			payloadInt(e.Payload, events.KeyXP), payloadInt(e.Payload, events.KeyGold))
		if after := payloadInt(e.Payload, events.KeyLevelAfter); after > payloadInt(e.Payload, events.KeyLevelBefore) {
			s += fmt.Sprintf(" Reached level %d!", after)
		}
		return s
	case events.EventTypeFightRejected:
		return "Tried to fight again on the same day."
	case events.EventTypeDailyStatusChanged:
		days := payloadInt(e.Payload, events.KeyDaysIdle)
		if days == 0 {
			return "A new day: the hero is ready to fight."
		}
		return fmt.Sprintf("A new day: the hero is ready to fight after %d idle days.", days)
	case events.EventTypeStateRecovered:
		return "Saved progress was damaged and has been repaired."
	case events.EventTypeDayRollover:
		return "The day changed."
	default:
		return "Something happened."
	}
}

// determineImpact classifies the event impact.
func (r *Recapper) determineImpact(e GameEvent) string {
	switch events.EventType(e.EventType) {
	case events.EventTypeFightResolved, events.EventTypeDailyStatusChanged:
		return "POSITIVE"
	case events.EventTypeStateRecovered, events.EventTypeFightRejected:
		return "NEGATIVE"
	default:
		return "NEUTRAL"
	}
}

// payloadInt reads a numeric payload field. Values that went through JSON
// arrive as float64.
func payloadInt(p map[string]interface{}, key string) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
