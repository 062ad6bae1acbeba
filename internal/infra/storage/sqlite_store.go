package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/game"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/logger"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/metrics"
)

// SQLiteStore implements GameStore on the game_slots table.
type SQLiteStore struct {
	db      *sql.DB
	gameID  string
	log     *logger.Logger
	metrics *metrics.Collector
}

// NewSQLiteStore creates a store for one game record. m may be nil.
func NewSQLiteStore(db *sql.DB, gameID string, log *logger.Logger, m *metrics.Collector) *SQLiteStore {
	if log == nil {
		log = logger.Nop()
	}
	return &SQLiteStore{db: db, gameID: gameID, log: log, metrics: m}
}

func (s *SQLiteStore) Load(ctx context.Context) (game.State, error) {
	raw, err := s.readSlots(ctx)
	if err != nil {
		return game.State{}, fmt.Errorf("load game %s: %w", s.gameID, err)
	}
	return decodeSlots(raw, corruptReporter(s.gameID, s.log, s.metrics)), nil
}

func (s *SQLiteStore) readSlots(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slot, value FROM game_slots WHERE game_id = ?`, s.gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	raw := make(map[string]string)
	for rows.Next() {
		var slot, value string
		if err := rows.Scan(&slot, &value); err != nil {
			return nil, err
		}
		raw[slot] = value
	}
	return raw, rows.Err()
}

func (s *SQLiteStore) Save(ctx context.Context, st game.State) (err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordStoreWrite(time.Since(start), err)
		}
	}()

	slots, err := encodeSlots(st)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	// Slots absent from this state are removed so a reload sees exactly it.
	if _, err := tx.ExecContext(ctx, `DELETE FROM game_slots WHERE game_id = ?`, s.gameID); err != nil {
		return fmt.Errorf("clear slots: %w", err)
	}

	now := time.Now().UnixNano()
	for slot, value := range slots {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO game_slots (game_id, slot, value, updated_at) VALUES (?, ?, ?, ?)`,
			s.gameID, slot, value, now,
		)
		if err != nil {
			return fmt.Errorf("write slot %s: %w", slot, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// WriteSlot overwrites one raw slot. It bypasses the codec and exists for
// repair tooling and tests.
func (s *SQLiteStore) WriteSlot(ctx context.Context, slot, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO game_slots (game_id, slot, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(game_id, slot) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
	`, s.gameID, slot, value, time.Now().UnixNano())
	return err
}

func corruptReporter(gameID string, log *logger.Logger, m *metrics.Collector) func(string, error) {
	return func(slot string, err error) {
		log.Warnf("game %s: slot %s unreadable (%v), using default", gameID, slot, err)
		if m != nil {
			m.RecordCorruptRecovery()
		}
	}
}
