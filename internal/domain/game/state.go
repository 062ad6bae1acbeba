// Package game defines the GameState aggregate and its pure transitions.
// Every transition returns a new snapshot; nothing here mutates in place.
// This package is PURE and must NOT import any infrastructure packages.
package game

import (
	"time"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/battle"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/monster"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/player"
)

// DateLayout is the ISO calendar date format used for the last fight date.
const DateLayout = "2006-01-02"

// State is one immutable snapshot of the whole game. It is the unit of
// persistence and of atomic update.
type State struct {
	Player           player.Player    `json:"player"`
	BattleLog        battle.Log       `json:"battleLog"`
	CurrentMonster   *monster.Monster `json:"currentMonster,omitempty"`
	CanFightToday    bool             `json:"canFightToday"`
	DaysWithoutFight int              `json:"daysWithoutFight"`
}

// New returns the first-run state.
func New() State {
	return State{
		Player:        player.New(),
		BattleLog:     battle.Log{Entries: []battle.LogEntry{}},
		CanFightToday: true,
	}
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WithEligibility derives CanFightToday from the stored last fight date: the
// hero may fight unless the last fight happened today.
func (s State) WithEligibility(today time.Time) State {
	s.CanFightToday = s.Player.LastFightDate != FormatDate(today)
	return s
}

// WithBattleResult folds a resolved fight into the state. newPlayer must
// already carry the rewards and any level-up.
func (s State) WithBattleResult(result battle.Result, m monster.Monster, newPlayer player.Player, entryID string, at, today time.Time) State {
	entry := battle.LogEntry{
		ID:                entryID,
		Timestamp:         at,
		Monster:           m,
		Result:            result,
		PlayerLevelBefore: s.Player.Level,
		PlayerLevelAfter:  newPlayer.Level,
	}

	newPlayer.LastFightDate = FormatDate(today)

	s.Player = newPlayer
	s.BattleLog = s.BattleLog.Append(entry)
	s.CurrentMonster = nil
	s.CanFightToday = false
	s.DaysWithoutFight = 0
	return s
}
