// Package player defines the hero and the experience-driven progression rules.
// This package is PURE and must NOT import any infrastructure packages.
package player

const (
	// XPPerLevel is the experience span of one level.
	XPPerLevel = 100
	// HPPerLevel is the max HP gained on each level-up.
	HPPerLevel = 10

	startingHP = 100
)

// Player is an immutable snapshot of the hero. Level, HP and MaxHP are only
// ever changed by LevelUpIfReady.
type Player struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
	HP    int `json:"hp"`
	MaxHP int `json:"maxHp"`
	Gold  int `json:"gold"`

	// LastFightDate is the ISO calendar date (2006-01-02) of the last fight,
	// empty if the hero never fought. Kept as text so a corrupt value can be
	// detected and recovered by the daily check.
	LastFightDate string `json:"lastFightDate,omitempty"`
}

// New creates a fresh level 1 hero.
func New() Player {
	return Player{
		Level: 1,
		XP:    0,
		HP:    startingHP,
		MaxHP: startingHP,
		Gold:  0,
	}
}

// CurrentLevel derives the level from experience: floor(xp/100)+1.
func (p Player) CurrentLevel() int {
	return p.XP/XPPerLevel + 1
}

// XPForNextLevel is the experience still missing to reach the next level.
func (p Player) XPForNextLevel() int {
	return p.CurrentLevel()*XPPerLevel - p.XP
}

// XPProgress is the experience earned inside the current level (0-99).
func (p Player) XPProgress() int {
	return p.XP % XPPerLevel
}

// ApplyRewards adds battle rewards. No caps.
func (p Player) ApplyRewards(xp, gold int) Player {
	p.XP += xp
	p.Gold += gold
	return p
}

// LevelUpIfReady raises the level to match experience. Each level gained adds
// HPPerLevel max HP and the hero is fully healed. Crossing several thresholds
// at once is handled in one step. Unchanged if no threshold was crossed.
func (p Player) LevelUpIfReady() Player {
	newLevel := p.CurrentLevel()
	if newLevel <= p.Level {
		return p
	}
	p.MaxHP += HPPerLevel * (newLevel - p.Level)
	p.HP = p.MaxHP
	p.Level = newLevel
	return p
}

// Progress is the XP bar view of a player.
type Progress struct {
	Level          int `json:"level"`
	XPIntoLevel    int `json:"xpIntoLevel"`
	XPForNextLevel int `json:"xpForNextLevel"`
	Percent        int `json:"percent"`
}

// Progress returns the XP bar for the current level.
func (p Player) Progress() Progress {
	into := p.XPProgress()
	return Progress{
		Level:          p.CurrentLevel(),
		XPIntoLevel:    into,
		XPForNextLevel: p.XPForNextLevel(),
		Percent:        into * 100 / XPPerLevel,
	}
}
