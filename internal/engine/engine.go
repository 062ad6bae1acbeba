// Package engine orchestrates the daily fight loop: it loads the durable game
// record, applies the pure domain transitions and publishes the new snapshot
// only once the store has accepted it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/battle"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/game"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/monster"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/rules"
	"github.com/MRamiBalles/DailyHero/server/internal/events"
	"github.com/MRamiBalles/DailyHero/server/internal/infra/storage"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/logger"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/metrics"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/random"
)

var (
	// ErrStoreFailure marks a read or save the store could not complete. The
	// published state is left as it was before the call.
	ErrStoreFailure = errors.New("store failure")
	// ErrReadFailure additionally marks that the record could not be read.
	ErrReadFailure = errors.New("read")
)

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog replaces the default monster catalog.
func WithCatalog(c monster.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithBalance replaces the default reward tuning.
func WithBalance(b rules.Balance) Option {
	return func(e *Engine) { e.balance = b }
}

// WithEventLog records every mutation in el.
func WithEventLog(el *events.EventLog) Option {
	return func(e *Engine) { e.eventLog = el }
}

// WithMetrics counts fights and daily checks in m.
func WithMetrics(m *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithIDGenerator replaces the battle log entry ID source.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// Engine is the single writer of one game record. Fight and CheckDailyStatus
// are mutually exclusive; State is lock-free.
type Engine struct {
	store    storage.GameStore
	clock    Clock
	rng      random.Source
	logger   *logger.Logger
	catalog  monster.Catalog
	balance  rules.Balance
	eventLog *events.EventLog
	metrics  *metrics.Collector
	newID    func() string

	mu    sync.Mutex
	state atomic.Pointer[game.State]
}

// New wires an engine. The catalog must not be empty.
func New(store storage.GameStore, clock Clock, rng random.Source, log *logger.Logger, opts ...Option) (*Engine, error) {
	if log == nil {
		log = logger.Nop()
	}
	e := &Engine{
		store:   store,
		clock:   clock,
		rng:     rng,
		logger:  log,
		catalog: monster.DefaultCatalog(),
		balance: rules.DefaultBalance(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.catalog.Validate(); err != nil {
		return nil, fmt.Errorf("engine catalog: %w", err)
	}
	return e, nil
}

// Initialize loads the stored record, publishes it and runs the daily check.
// If the record cannot be read nothing is published. If the daily check
// cannot be saved the loaded state stays published and the error is returned.
func (e *Engine) Initialize(ctx context.Context) (game.State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	loaded, err := e.load(ctx, now)
	if err != nil {
		return e.State(), err
	}
	e.publish(loaded)
	e.logger.Infof("Game loaded: level %d, %d xp, %d gold, last fight %q",
		loaded.Player.Level, loaded.Player.XP, loaded.Player.Gold, loaded.Player.LastFightDate)

	s, err := e.checkDaily(ctx, loaded, now)
	if err != nil {
		return loaded, err
	}
	return s, nil
}

// State returns the last published snapshot. Callers must treat it as
// read-only. Before Initialize it is the first-run state.
func (e *Engine) State() game.State {
	if s := e.state.Load(); s != nil {
		return *s
	}
	return game.New()
}

// RecentBattles returns up to n log entries, newest first.
func (e *Engine) RecentBattles(n int) []battle.LogEntry {
	return e.State().BattleLog.Recent(n)
}

// CheckDailyStatus re-evaluates eligibility against today's date and saves
// the result when it changed anything.
func (e *Engine) CheckDailyStatus(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	s, err := e.load(ctx, now)
	if err != nil {
		return err
	}
	_, err = e.checkDaily(ctx, s, now)
	return err
}

// Fight resolves today's battle. ok is false, with no error and no state
// change, when the hero already fought today.
func (e *Engine) Fight(ctx context.Context) (result battle.Result, ok bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	s, err := e.load(ctx, now)
	if err != nil {
		return battle.Result{}, false, err
	}
	if !s.CanFightToday {
		e.publish(s)
		if e.metrics != nil {
			e.metrics.RecordFightRejected()
		}
		e.emit(events.EventTypeFightRejected, events.ActorHero, now, map[string]interface{}{
			events.KeyMessage: "already fought today",
		})
		return battle.Result{}, false, nil
	}

	m := e.catalog.Pick(e.rng)
	result = rules.ResolveBattle(m, s.Player, e.rng, e.balance)
	hero := s.Player.ApplyRewards(result.XPGained, result.GoldGained).LevelUpIfReady()
	next := s.WithBattleResult(result, m, hero, e.newID(), now, now)

	if err := e.save(ctx, next); err != nil {
		return battle.Result{}, false, err
	}
	e.publish(next)

	leveled := hero.Level > s.Player.Level
	if e.metrics != nil {
		e.metrics.RecordFight(result.XPGained, result.GoldGained, result.CriticalHit, leveled)
	}
	e.logger.Event(string(events.EventTypeFightResolved), events.ActorHero,
		fmt.Sprintf("%s (%s): +%d xp, +%d gold, crit=%t, level %d->%d",
			m.Name, m.Rarity, result.XPGained, result.GoldGained, result.CriticalHit, s.Player.Level, hero.Level))
	e.emit(events.EventTypeFightResolved, events.ActorHero, now, map[string]interface{}{
		events.KeyMonsterID:   m.ID,
		events.KeyMonsterName: m.Name,
		events.KeyRarity:      m.Rarity.String(),
		events.KeyXP:          result.XPGained,
		events.KeyGold:        result.GoldGained,
		events.KeyCritical:    result.CriticalHit,
		events.KeyLevelBefore: s.Player.Level,
		events.KeyLevelAfter:  hero.Level,
		events.KeyMessage:     result.Message,
	})
	return result, true, nil
}

// BoredMessage is advisory text for an idle hero; ok is false when the hero
// is not idle long enough to complain.
func (e *Engine) BoredMessage(daysWithoutFight int) (string, bool) {
	return game.BoredMessage(daysWithoutFight)
}

// load reads the durable record and derives today's eligibility. A read
// failure leaves the published snapshot alone.
func (e *Engine) load(ctx context.Context, now time.Time) (game.State, error) {
	s, err := e.store.Load(ctx)
	if err != nil {
		e.logger.Errorf("Load failed: %v", err)
		return game.State{}, fmt.Errorf("%w: %w: %w", ErrStoreFailure, ErrReadFailure, err)
	}
	return s.WithEligibility(now), nil
}

// checkDaily runs the daily transition on s. Must hold e.mu.
func (e *Engine) checkDaily(ctx context.Context, s game.State, now time.Time) (game.State, error) {
	next, outcome := s.CheckDaily(now)
	if e.metrics != nil {
		e.metrics.RecordDailyCheck(outcome != game.DailyUnchanged)
	}

	if outcome == game.DailyUnchanged {
		e.publish(next)
		return next, nil
	}

	if err := e.save(ctx, next); err != nil {
		return s, err
	}
	e.publish(next)

	eventType := events.EventTypeDailyStatusChanged
	if outcome == game.DailyRecovered {
		eventType = events.EventTypeStateRecovered
		e.logger.Warnf("Unreadable last fight date %q, hero reset to eligible", s.Player.LastFightDate)
	}
	e.emit(eventType, events.ActorSystem, now, map[string]interface{}{
		events.KeyOutcome:  outcome.String(),
		events.KeyDaysIdle: next.DaysWithoutFight,
	})
	return next, nil
}

func (e *Engine) save(ctx context.Context, s game.State) error {
	if err := e.store.Save(ctx, s); err != nil {
		e.logger.Errorf("Save failed: %v", err)
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return nil
}

func (e *Engine) publish(s game.State) {
	e.state.Store(&s)
}

func (e *Engine) emit(t events.EventType, actor string, at time.Time, payload map[string]interface{}) {
	if e.eventLog == nil {
		return
	}
	_ = e.eventLog.Append(events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: at,
		Type:      t,
		ActorID:   actor,
		Payload:   payload,
		GameDate:  game.FormatDate(at),
	})
}
