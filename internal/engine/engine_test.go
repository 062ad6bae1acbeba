package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/game"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/monster"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/player"
	"github.com/MRamiBalles/DailyHero/server/internal/events"
	"github.com/MRamiBalles/DailyHero/server/internal/infra/storage"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/metrics"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/random"
)

var day0 = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// Draws for one orc fight with no variance and no crit.
func orcDraws() *random.Sequence {
	return random.NewSequence([]int{140, 20, 20, 0, 0}, []float64{0.5})
}

type fixture struct {
	engine  *Engine
	store   *storage.MemoryStore
	clock   *FakeClock
	events  *events.EventLog
	metrics *metrics.Collector
}

func newFixture(t *testing.T, rng random.Source) *fixture {
	t.Helper()
	f := &fixture{
		store:   storage.NewMemoryStore(),
		clock:   NewFakeClock(day0),
		events:  events.NewEventLog(nil, nil),
		metrics: metrics.New(),
	}
	var n int64
	e, err := New(f.store, f.clock, rng, nil,
		WithEventLog(f.events),
		WithMetrics(f.metrics),
		WithIDGenerator(func() string { return fmt.Sprintf("entry-%d", atomic.AddInt64(&n, 1)) }),
	)
	require.NoError(t, err)
	f.engine = e
	return f
}

func mustLoad(t *testing.T, store storage.GameStore) game.State {
	t.Helper()
	s, err := store.Load(context.Background())
	require.NoError(t, err)
	return s
}

func TestInitializeFirstRun(t *testing.T) {
	f := newFixture(t, orcDraws())

	s, err := f.engine.Initialize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, game.New(), s)
	assert.Equal(t, s, f.engine.State())
	assert.Equal(t, 0, f.store.Saves(), "nothing to persist on first run")
}

func TestFightResolvesAndPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, orcDraws())
	_, err := f.engine.Initialize(ctx)
	require.NoError(t, err)

	res, ok, err := f.engine.Fight(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, res.Victory)
	assert.False(t, res.CriticalHit)
	assert.Equal(t, 45, res.XPGained)
	assert.Equal(t, 18, res.GoldGained)
	assert.Contains(t, res.Message, "You gained 45 XP!")

	s := f.engine.State()
	assert.False(t, s.CanFightToday)
	assert.Equal(t, 0, s.DaysWithoutFight)
	assert.Equal(t, "2024-01-15", s.Player.LastFightDate)
	assert.Equal(t, 45, s.Player.XP)
	assert.Equal(t, 18, s.Player.Gold)
	require.Equal(t, 1, s.BattleLog.Len())
	entry := s.BattleLog.Entries[0]
	assert.Equal(t, "entry-1", entry.ID)
	assert.Equal(t, "orc", entry.Monster.ID)
	assert.Equal(t, day0, entry.Timestamp)

	stored := mustLoad(t, f.store)
	assert.Equal(t, s.Player, stored.Player)
	assert.Equal(t, s.BattleLog, stored.BattleLog)

	resolved := f.events.GetByType(events.EventTypeFightResolved)
	require.Len(t, resolved, 1)
	assert.Equal(t, "Orc Berserker", resolved[0].Payload[events.KeyMonsterName])
	assert.Equal(t, "2024-01-15", resolved[0].GameDate)
	assert.Equal(t, int64(1), f.metrics.FightsResolved)
}

func TestSecondFightSameDayIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, random.New(7))
	_, err := f.engine.Initialize(ctx)
	require.NoError(t, err)

	_, ok, err := f.engine.Fight(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	before := f.engine.State()

	f.clock.Advance(13 * time.Hour) // 23:00 the same day
	res, ok, err := f.engine.Fight(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, res)
	assert.Equal(t, before, f.engine.State())
	assert.Equal(t, 1, f.store.Saves())
	assert.Len(t, f.events.GetByType(events.EventTypeFightRejected), 1)
	assert.Equal(t, int64(1), f.metrics.FightsRejected)
}

func TestDailyStatusAfterGap(t *testing.T) {
	tests := []struct {
		name     string
		days     int
		wantIdle int
	}{
		{"next day", 1, 0},
		{"two days", 2, 1},
		{"three days", 3, 2},
		{"a week and a day", 8, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t, random.New(3))
			_, err := f.engine.Initialize(ctx)
			require.NoError(t, err)
			_, ok, err := f.engine.Fight(ctx)
			require.NoError(t, err)
			require.True(t, ok)

			f.clock.AdvanceDays(tt.days)
			require.NoError(t, f.engine.CheckDailyStatus(ctx))

			s := f.engine.State()
			assert.True(t, s.CanFightToday)
			assert.Equal(t, tt.wantIdle, s.DaysWithoutFight)
			assert.Equal(t, tt.wantIdle, mustLoad(t, f.store).DaysWithoutFight)
			assert.Len(t, f.events.GetByType(events.EventTypeDailyStatusChanged), 1)
		})
	}
}

func TestCheckDailySameDayChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, random.New(3))
	_, err := f.engine.Initialize(ctx)
	require.NoError(t, err)
	_, _, err = f.engine.Fight(ctx)
	require.NoError(t, err)

	require.NoError(t, f.engine.CheckDailyStatus(ctx))
	assert.False(t, f.engine.State().CanFightToday)
	assert.Equal(t, 1, f.store.Saves())
}

func TestInitializeRecoversCorruptDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, random.New(3))
	seed := game.New()
	seed.DaysWithoutFight = 5
	require.NoError(t, f.store.Save(ctx, seed))
	f.store.SetSlot(storage.SlotLastFightDate, "15/01/2024")

	s, err := f.engine.Initialize(ctx)
	require.NoError(t, err)

	assert.True(t, s.CanFightToday)
	assert.Equal(t, 0, s.DaysWithoutFight)
	assert.Empty(t, s.Player.LastFightDate)
	_, present := f.store.Slot(storage.SlotLastFightDate)
	assert.False(t, present, "corrupt date removed from the record")
	assert.Len(t, f.events.GetByType(events.EventTypeStateRecovered), 1)
}

func TestInitializeKeepsIdleCounterWithoutDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, random.New(3))
	seed := game.New()
	seed.DaysWithoutFight = 4
	require.NoError(t, f.store.Save(ctx, seed))

	s, err := f.engine.Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, s.DaysWithoutFight)
	msg, ok := f.engine.BoredMessage(s.DaysWithoutFight)
	assert.True(t, ok)
	assert.Equal(t, "Your hero is bored and wants to fight!", msg)
}

func TestFightStoreFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, random.New(11))
	_, err := f.engine.Initialize(ctx)
	require.NoError(t, err)
	before := f.engine.State()

	boom := errors.New("disk full")
	f.store.FailSaves(boom)
	_, ok, err := f.engine.Fight(ctx)
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, f.engine.State())
	assert.Empty(t, f.events.GetByType(events.EventTypeFightResolved))

	f.store.FailSaves(nil)
	_, ok, err = f.engine.Fight(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "still eligible after the failed save")
}

func TestCheckDailyStoreFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, random.New(11))
	_, err := f.engine.Initialize(ctx)
	require.NoError(t, err)
	_, _, err = f.engine.Fight(ctx)
	require.NoError(t, err)
	before := f.engine.State()

	f.clock.AdvanceDays(4)
	f.store.FailSaves(errors.New("read-only"))
	err = f.engine.CheckDailyStatus(ctx)
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.Equal(t, before, f.engine.State())
}

func TestReadFailureKeepsPublishedHero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, random.New(11))
	seed := game.New()
	seed.Player.XP = 420
	seed.Player = seed.Player.LevelUpIfReady()
	seed.Player.Gold = 99
	seed.Player.LastFightDate = "2024-01-10"
	require.NoError(t, f.store.Save(ctx, seed))
	_, err := f.engine.Initialize(ctx)
	require.NoError(t, err)
	before := f.engine.State()
	saves := f.store.Saves()

	f.clock.AdvanceDays(1)
	f.store.FailLoads(errors.New("io error"))

	err = f.engine.CheckDailyStatus(ctx)
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.ErrorIs(t, err, ErrReadFailure)

	_, ok, err := f.engine.Fight(ctx)
	assert.ErrorIs(t, err, ErrReadFailure)
	assert.False(t, ok)

	assert.Equal(t, before, f.engine.State())
	assert.Equal(t, saves, f.store.Saves(), "nothing written after a failed read")
	assert.Empty(t, f.events.GetByType(events.EventTypeFightResolved))

	f.store.FailLoads(nil)
	require.NoError(t, f.engine.CheckDailyStatus(ctx))
	assert.Equal(t, 5, f.engine.State().Player.Level)
}

func TestInitializeReadFailurePublishesNothing(t *testing.T) {
	f := newFixture(t, random.New(11))
	f.store.FailLoads(errors.New("io error"))

	_, err := f.engine.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrReadFailure)
	assert.Equal(t, 0, f.store.Saves())
}

func TestCanceledSQLiteReadDoesNotResetHero(t *testing.T) {
	db, err := storage.InitSQLite(storage.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	store := storage.NewSQLiteStore(db, "g", nil, nil)
	seed := game.New()
	seed.Player.XP = 420
	seed.Player = seed.Player.LevelUpIfReady()
	seed.Player.Gold = 99
	seed.Player.LastFightDate = "2024-01-14"
	require.NoError(t, store.Save(ctx, seed))

	clock := NewFakeClock(day0)
	e, err := New(store, clock, random.New(3), nil)
	require.NoError(t, err)
	_, err = e.Initialize(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, e.State().Player.Level)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err = e.CheckDailyStatus(canceled)
	assert.ErrorIs(t, err, ErrStoreFailure)
	_, _, err = e.Fight(canceled)
	assert.ErrorIs(t, err, ErrStoreFailure)

	assert.Equal(t, 5, e.State().Player.Level)
	assert.Equal(t, 99, e.State().Player.Gold)
	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 99, stored.Player.Gold)
}

func TestFightLevelsUp(t *testing.T) {
	ctx := context.Background()
	// Slime, no variance, no crit: 10 xp.
	f := newFixture(t, random.NewSequence([]int{0, 20, 20, 0, 0}, []float64{0.5}))
	seed := game.New()
	seed.Player.XP = 95
	seed.Player.HP = 40
	require.NoError(t, f.store.Save(ctx, seed))
	_, err := f.engine.Initialize(ctx)
	require.NoError(t, err)

	res, ok, err := f.engine.Fight(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 10, res.XPGained)

	p := f.engine.State().Player
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 105, p.XP)
	assert.Equal(t, 100+player.HPPerLevel, p.MaxHP)
	assert.Equal(t, p.MaxHP, p.HP)
	assert.True(t, f.engine.RecentBattles(0)[0].LeveledUp())
	assert.Equal(t, int64(1), f.metrics.LevelUps)
}

func TestConcurrentFightsGrantOneBattle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, random.New(99))
	_, err := f.engine.Initialize(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var wins int64
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := f.engine.Fight(ctx)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt64(&wins, 1)
			}
			_ = f.engine.State()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins)
	assert.Equal(t, 1, f.store.Saves())
	assert.Equal(t, 1, f.engine.State().BattleLog.Len())
}

func TestBattleLogStaysBounded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, random.New(5))
	_, err := f.engine.Initialize(ctx)
	require.NoError(t, err)

	for i := 0; i < 14; i++ {
		_, ok, err := f.engine.Fight(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		f.clock.AdvanceDays(1)
	}

	s := f.engine.State()
	assert.Equal(t, 10, s.BattleLog.Len())
	assert.Equal(t, "entry-14", s.BattleLog.Entries[0].ID)
	assert.Len(t, f.engine.RecentBattles(0), 5)
}

func TestNewRejectsEmptyCatalog(t *testing.T) {
	_, err := New(storage.NewMemoryStore(), NewFakeClock(day0), random.New(1), nil, WithCatalog(monster.Catalog{}))
	assert.ErrorIs(t, err, monster.ErrEmptyCatalog)
}

func TestTickerRollsOverOncePerDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, random.New(8))
	_, err := f.engine.Initialize(ctx)
	require.NoError(t, err)
	_, _, err = f.engine.Fight(ctx)
	require.NoError(t, err)

	tk := NewTicker(f.engine, f.clock, f.events, nil, time.Minute)
	assert.False(t, tk.tick(ctx), "same day")

	f.clock.Advance(14 * time.Hour) // 00:00 next day
	assert.True(t, tk.tick(ctx))
	assert.False(t, tk.tick(ctx))

	assert.True(t, f.engine.State().CanFightToday)
	assert.Len(t, f.events.GetByType(events.EventTypeDayRollover), 1)
}

func TestTickerRetriesFailedCheck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, random.New(8))
	_, err := f.engine.Initialize(ctx)
	require.NoError(t, err)
	_, _, err = f.engine.Fight(ctx)
	require.NoError(t, err)

	tk := NewTicker(f.engine, f.clock, f.events, nil, time.Minute)
	f.clock.AdvanceDays(1)
	f.store.FailSaves(errors.New("locked"))
	assert.False(t, tk.tick(ctx))
	assert.False(t, tk.tick(ctx))
	assert.Empty(t, f.events.GetByType(events.EventTypeDayRollover), "no rollover until the check is saved")

	f.store.FailSaves(nil)
	assert.True(t, tk.tick(ctx))
	assert.False(t, tk.tick(ctx))
	assert.True(t, f.engine.State().CanFightToday)
	assert.Len(t, f.events.GetByType(events.EventTypeDayRollover), 1)
}

func TestTickerRunStopsWithContext(t *testing.T) {
	f := newFixture(t, random.New(8))
	tk := NewTicker(f.engine, f.clock, nil, nil, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tk.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("ticker did not stop")
	}
}
