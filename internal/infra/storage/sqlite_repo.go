package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event GameEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, game_id, timestamp_ns, event_type, actor_id, payload, game_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.GameID, event.Timestamp.UnixNano(), event.EventType, event.ActorID,
		string(payloadBytes), event.GameDate,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

const selectEvents = `SELECT id, game_id, timestamp_ns, event_type, actor_id, payload, game_date FROM events`

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]GameEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []GameEvent
	for rows.Next() {
		var e GameEvent
		var ts int64
		var payloadStr string
		err := rows.Scan(&e.ID, &e.GameID, &ts, &e.EventType, &e.ActorID, &payloadStr, &e.GameDate)
		if err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(0, ts)
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, fmt.Errorf("event %s payload: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetByGameID(ctx context.Context, gameID string) ([]GameEvent, error) {
	return r.getMany(ctx, selectEvents+` WHERE game_id = ? ORDER BY timestamp_ns ASC`, gameID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, gameID string, eventType string) ([]GameEvent, error) {
	return r.getMany(ctx, selectEvents+` WHERE game_id = ? AND event_type = ? ORDER BY timestamp_ns ASC`, gameID, eventType)
}

func (r *SQLiteEventRepository) GetSince(ctx context.Context, gameID string, since time.Time) ([]GameEvent, error) {
	return r.getMany(ctx, selectEvents+` WHERE game_id = ? AND timestamp_ns >= ? ORDER BY timestamp_ns ASC`, gameID, since.UnixNano())
}
