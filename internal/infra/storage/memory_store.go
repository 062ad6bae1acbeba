package storage

import (
	"context"
	"sync"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/game"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/logger"
)

// MemoryStore keeps the encoded slots in a map. It goes through the same
// codec as SQLiteStore so reloads behave identically.
type MemoryStore struct {
	mu      sync.Mutex
	slots   map[string]string
	saveErr error
	loadErr error
	saves   int
	log     *logger.Logger
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]string), log: logger.Nop()}
}

func (m *MemoryStore) Load(ctx context.Context) (game.State, error) {
	m.mu.Lock()
	if m.loadErr != nil {
		err := m.loadErr
		m.mu.Unlock()
		return game.State{}, err
	}
	raw := make(map[string]string, len(m.slots))
	for k, v := range m.slots {
		raw[k] = v
	}
	m.mu.Unlock()

	return decodeSlots(raw, corruptReporter("memory", m.log, nil)), nil
}

func (m *MemoryStore) Save(ctx context.Context, s game.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	slots, err := encodeSlots(s)
	if err != nil {
		return err
	}
	m.slots = slots
	m.saves++
	return nil
}

// FailSaves makes every following Save return err. nil restores saving.
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// FailLoads makes every following Load return err. nil restores loading.
func (m *MemoryStore) FailLoads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// SetSlot overwrites one raw slot.
func (m *MemoryStore) SetSlot(slot, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = value
}

// Slot returns one raw slot.
func (m *MemoryStore) Slot(slot string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.slots[slot]
	return v, ok
}

// Saves counts successful saves.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
