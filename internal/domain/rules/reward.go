// Package rules contains the pure calculation logic for battle rewards.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"github.com/MRamiBalles/DailyHero/server/internal/domain/battle"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/monster"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/player"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/random"
)

// Balance holds the tunable reward parameters.
type Balance struct {
	VariancePct       int     `yaml:"variance_pct" json:"variancePct"`              // +/- percent applied to xp and gold
	CritChance        float64 `yaml:"crit_chance" json:"critChance"`                // probability in [0,1]
	CritMultiplierPct int     `yaml:"crit_multiplier_pct" json:"critMultiplierPct"` // 150 = x1.5
	LevelBonusPct     int     `yaml:"level_bonus_pct" json:"levelBonusPct"`         // per level above 1
}

// DefaultBalance returns the standard reward tuning.
func DefaultBalance() Balance {
	return Balance{
		VariancePct:       20,
		CritChance:        0.15,
		CritMultiplierPct: 150,
		LevelBonusPct:     5,
	}
}

// ResolveBattle computes the rewards of one fight. Victory is unconditional.
//
// Order: base reward, rarity multiplier, independent variance on xp and gold
// (xp floored at 1, gold at 0), critical hit, player level bonus. Every step
// truncates toward zero; multipliers are applied as integer percentages so
// the truncation is exact.
func ResolveBattle(m monster.Monster, p player.Player, rng random.Source, b Balance) battle.Result {
	xp := scale(m.BaseXPReward, m.Rarity.MultiplierPct())
	gold := scale(m.BaseGoldReward, m.Rarity.MultiplierPct())

	xp = max(1, scale(xp, 100+rollVariance(rng, b.VariancePct)))
	gold = max(0, scale(gold, 100+rollVariance(rng, b.VariancePct)))

	crit := rng.Float64() < b.CritChance
	if crit {
		xp = scale(xp, b.CritMultiplierPct)
		gold = scale(gold, b.CritMultiplierPct)
	}

	bonus := LevelBonusPct(p.Level, b)
	xp = scale(xp, bonus)
	gold = scale(gold, bonus)

	result := battle.Result{
		Victory:     true,
		XPGained:    xp,
		GoldGained:  gold,
		CriticalHit: crit,
	}
	result.Message = ComposeMessage(m, result, rng)
	return result
}

// LevelBonusPct is 100 + LevelBonusPct for every level above 1.
func LevelBonusPct(level int, b Balance) int {
	if level < 1 {
		level = 1
	}
	return 100 + b.LevelBonusPct*(level-1)
}

// rollVariance draws a whole percent in [-v, +v].
func rollVariance(rng random.Source, v int) int {
	if v <= 0 {
		return 0
	}
	return rng.IntN(2*v+1) - v
}

func scale(v, pct int) int {
	return v * pct / 100
}
