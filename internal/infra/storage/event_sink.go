package storage

import (
	"context"
	"time"

	"github.com/MRamiBalles/DailyHero/server/internal/events"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/metrics"
)

// EventSink writes audit events of one game through an EventRepository.
// It satisfies events.EventPersister.
type EventSink struct {
	repo    EventRepository
	gameID  string
	timeout time.Duration
	metrics *metrics.Collector
}

// NewEventSink binds repo to gameID.
func NewEventSink(repo EventRepository, gameID string) *EventSink {
	return &EventSink{repo: repo, gameID: gameID, timeout: 5 * time.Second}
}

// Instrument counts every write in m.
func (s *EventSink) Instrument(m *metrics.Collector) *EventSink {
	s.metrics = m
	return s
}

// Append converts and stores one event.
func (s *EventSink) Append(e events.GameEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	err := s.repo.Append(ctx, GameEvent{
		ID:        e.ID,
		GameID:    s.gameID,
		Timestamp: e.Timestamp,
		EventType: string(e.Type),
		ActorID:   e.ActorID,
		Payload:   e.Payload,
		GameDate:  e.GameDate,
	})
	if s.metrics != nil {
		s.metrics.RecordEventWrite(err)
	}
	return err
}
