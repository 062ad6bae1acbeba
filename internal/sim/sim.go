// Package sim drives the engine through many simulated days and checks the
// progression rules after every step. cmd/hero-sim prints its reports.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/battle"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/game"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/monster"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/player"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/rules"
	"github.com/MRamiBalles/DailyHero/server/internal/engine"
	"github.com/MRamiBalles/DailyHero/server/internal/events"
	"github.com/MRamiBalles/DailyHero/server/internal/infra/storage"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/logger"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/random"
)

// Scenario describes one simulated player.
type Scenario struct {
	Name string
	// Days is the number of calendar days simulated.
	Days int
	// PlayEvery makes the player show up every N days (1 = daily).
	PlayEvery int
	// AttemptsPerDay is how many times the player presses fight on a day
	// they show up. Only the first can succeed.
	AttemptsPerDay int
	Seed           uint64
}

// DefaultScenarios covers a daily player, a weekly player and a spammer.
func DefaultScenarios(seed uint64) []Scenario {
	return []Scenario{
		{Name: "daily player", Days: 60, PlayEvery: 1, AttemptsPerDay: 1, Seed: seed},
		{Name: "weekend warrior", Days: 60, PlayEvery: 7, AttemptsPerDay: 1, Seed: seed + 1},
		{Name: "button masher", Days: 30, PlayEvery: 1, AttemptsPerDay: 5, Seed: seed + 2},
		{Name: "long absence", Days: 40, PlayEvery: 20, AttemptsPerDay: 2, Seed: seed + 3},
	}
}

// Check is one verified property.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// Report is the outcome of one scenario.
type Report struct {
	Scenario     Scenario
	Final        player.Player
	Fights       int
	Rejected     int
	CriticalHits int
	LevelUps     int
	ByRarity     map[monster.Rarity]int
	MaxIdleDays  int
	Checks       []Check
}

// Passed reports whether every check held.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Runner runs scenarios with a shared catalog and balance.
type Runner struct {
	Catalog monster.Catalog
	Balance rules.Balance
	Start   time.Time
	Logger  *logger.Logger
}

// NewRunner returns a runner with the default catalog and balance.
func NewRunner(log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		Catalog: monster.DefaultCatalog(),
		Balance: rules.DefaultBalance(),
		Start:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Logger:  log,
	}
}

// Run simulates sc against a fresh in-memory store.
func (r *Runner) Run(ctx context.Context, sc Scenario) (*Report, error) {
	if sc.Days <= 0 || sc.PlayEvery <= 0 || sc.AttemptsPerDay <= 0 {
		return nil, fmt.Errorf("scenario %q: days, play interval and attempts must be positive", sc.Name)
	}

	store := storage.NewMemoryStore()
	clock := engine.NewFakeClock(r.Start)
	el := events.NewEventLog(nil, r.Logger)
	eng, err := engine.New(store, clock, random.New(sc.Seed), r.Logger,
		engine.WithCatalog(r.Catalog),
		engine.WithBalance(r.Balance),
		engine.WithEventLog(el),
	)
	if err != nil {
		return nil, err
	}
	if _, err := eng.Initialize(ctx); err != nil {
		return nil, err
	}

	rep := &Report{Scenario: sc, ByRarity: make(map[monster.Rarity]int)}
	v := newVerifier()
	prev := eng.State()

	for day := 0; day < sc.Days; day++ {
		if day > 0 {
			clock.AdvanceDays(1)
		}
		if day%sc.PlayEvery != 0 {
			continue
		}

		if err := eng.CheckDailyStatus(ctx); err != nil {
			return nil, fmt.Errorf("day %d: %w", day, err)
		}
		rep.MaxIdleDays = max(rep.MaxIdleDays, eng.State().DaysWithoutFight)
		v.idle(day, eng.State(), sc.PlayEvery)

		wins := 0
		for a := 0; a < sc.AttemptsPerDay; a++ {
			res, ok, err := eng.Fight(ctx)
			if err != nil {
				return nil, fmt.Errorf("day %d: %w", day, err)
			}
			if !ok {
				rep.Rejected++
				continue
			}
			wins++
			rep.Fights++
			if res.CriticalHit {
				rep.CriticalHits++
			}
			cur := eng.State()
			latest := cur.BattleLog.Entries[0]
			rep.ByRarity[latest.Monster.Rarity]++
			if latest.LeveledUp() {
				rep.LevelUps++
			}
			v.step(day, prev, cur, res)
			prev = cur
		}
		v.onePerDay(day, wins)
		stored, err := store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("day %d: %w", day, err)
		}
		v.roundTrip(day, eng.State(), stored, clock.Now())
	}

	rep.Final = eng.State().Player
	v.eventsMatch(rep, el)
	rep.Checks = v.results()
	return rep, nil
}

// verifier accumulates the first violation of each property.
type verifier struct {
	order      []string
	violations map[string]string
}

func newVerifier() *verifier {
	v := &verifier{violations: make(map[string]string)}
	v.order = []string{
		"one fight per day",
		"level follows xp",
		"max hp follows level",
		"full heal on level-up",
		"rewards never negative",
		"battle log bounded",
		"idle days counted",
		"store round trip",
		"audit log matches fights",
	}
	return v
}

func (v *verifier) fail(name, format string, args ...any) {
	if _, seen := v.violations[name]; !seen {
		v.violations[name] = fmt.Sprintf(format, args...)
	}
}

func (v *verifier) onePerDay(day, wins int) {
	if wins != 1 {
		v.fail("one fight per day", "day %d: %d fights resolved", day, wins)
	}
}

func (v *verifier) step(day int, prev, cur game.State, res battle.Result) {
	p := cur.Player
	if p.Level != p.CurrentLevel() {
		v.fail("level follows xp", "day %d: level %d with %d xp", day, p.Level, p.XP)
	}
	if want := 100 + player.HPPerLevel*(p.Level-1); p.MaxHP != want {
		v.fail("max hp follows level", "day %d: max hp %d at level %d", day, p.MaxHP, p.Level)
	}
	if p.Level > prev.Player.Level && p.HP != p.MaxHP {
		v.fail("full heal on level-up", "day %d: hp %d/%d after level-up", day, p.HP, p.MaxHP)
	}
	if res.XPGained < 1 || res.GoldGained < 0 || p.XP < prev.Player.XP || p.Gold < prev.Player.Gold {
		v.fail("rewards never negative", "day %d: +%d xp +%d gold", day, res.XPGained, res.GoldGained)
	}
	if cur.BattleLog.Len() > battle.MaxEntries {
		v.fail("battle log bounded", "day %d: %d entries", day, cur.BattleLog.Len())
	}
}

func (v *verifier) idle(day int, s game.State, every int) {
	want := 0
	if day > 0 {
		want = every - 1
	}
	if s.DaysWithoutFight != want {
		v.fail("idle days counted", "day %d: %d idle days, want %d", day, s.DaysWithoutFight, want)
	}
}

func (v *verifier) roundTrip(day int, published, stored game.State, now time.Time) {
	stored = stored.WithEligibility(now)
	if published.Player != stored.Player || published.DaysWithoutFight != stored.DaysWithoutFight ||
		published.CanFightToday != stored.CanFightToday || published.BattleLog.Len() != stored.BattleLog.Len() {
		v.fail("store round trip", "day %d: published %+v, stored %+v", day, published.Player, stored.Player)
		return
	}
	for i := range published.BattleLog.Entries {
		if published.BattleLog.Entries[i].ID != stored.BattleLog.Entries[i].ID {
			v.fail("store round trip", "day %d: log entry %d differs", day, i)
			return
		}
	}
}

func (v *verifier) eventsMatch(rep *Report, el *events.EventLog) {
	resolved := len(el.GetByType(events.EventTypeFightResolved))
	rejected := len(el.GetByType(events.EventTypeFightRejected))
	if resolved != rep.Fights || rejected != rep.Rejected {
		v.fail("audit log matches fights", "%d/%d events for %d/%d fights", resolved, rejected, rep.Fights, rep.Rejected)
	}
}

func (v *verifier) results() []Check {
	out := make([]Check, 0, len(v.order))
	for _, name := range v.order {
		detail, failed := v.violations[name]
		out = append(out, Check{Name: name, Passed: !failed, Detail: detail})
	}
	return out
}
