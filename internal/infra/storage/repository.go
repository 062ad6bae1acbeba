// Package storage provides the persistence layer for the game server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/game"
)

// GameStore persists the whole game state of one hero.
type GameStore interface {
	// Load returns the durable record. Missing or undecodable slots fall
	// back to their defaults; an error means the record could not be read at
	// all and the returned state must not be used.
	Load(ctx context.Context) (game.State, error)

	// Save durably replaces the record. It either writes every slot or none.
	Save(ctx context.Context, s game.State) error
}

// GameEvent mirrors the audit event structure for persistence.
type GameEvent struct {
	ID        string                 `json:"id" db:"id"`
	GameID    string                 `json:"game_id" db:"game_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp_ns"`
	EventType string                 `json:"event_type" db:"event_type"`
	ActorID   string                 `json:"actor_id" db:"actor_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
	GameDate  string                 `json:"game_date" db:"game_date"`
}

// EventRepository defines the interface for audit event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event GameEvent) error

	// GetByGameID retrieves all events for a specific game, oldest first.
	GetByGameID(ctx context.Context, gameID string) ([]GameEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, gameID string, eventType string) ([]GameEvent, error)

	// GetSince retrieves events recorded at or after since.
	GetSince(ctx context.Context, gameID string, since time.Time) ([]GameEvent, error)
}
