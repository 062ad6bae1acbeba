package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNewDefaults(t *testing.T) {
	p := New()
	assert.Equal(t, Player{Level: 1, XP: 0, HP: 100, MaxHP: 100, Gold: 0}, p)
	assert.Equal(t, 100, p.XPForNextLevel())
}

func TestDerivedAccessors(t *testing.T) {
	p := Player{Level: 3, XP: 250}
	assert.Equal(t, 3, p.CurrentLevel())
	assert.Equal(t, 50, p.XPForNextLevel())
	assert.Equal(t, 50, p.XPProgress())
	assert.Equal(t, Progress{Level: 3, XPIntoLevel: 50, XPForNextLevel: 50, Percent: 50}, p.Progress())
}

func TestApplyRewardsDoesNotLevel(t *testing.T) {
	p := New().ApplyRewards(150, 7)
	assert.Equal(t, 150, p.XP)
	assert.Equal(t, 7, p.Gold)
	assert.Equal(t, 1, p.Level, "levelling is a separate step")
}

func TestLevelUpMultiLevelJump(t *testing.T) {
	p := Player{Level: 1, XP: 0, HP: 40, MaxHP: 100}.ApplyRewards(230, 0).LevelUpIfReady()
	assert.Equal(t, 3, p.Level)
	assert.Equal(t, 120, p.MaxHP)
	assert.Equal(t, 120, p.HP)
}

func TestLevelUpNoThresholdUnchanged(t *testing.T) {
	p := Player{Level: 2, XP: 199, HP: 50, MaxHP: 110}
	assert.Equal(t, p, p.LevelUpIfReady())
}

func TestExactMultipleOfHundred(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		k := rapid.IntRange(0, 10_000).Draw(t, "k")
		p := Player{Level: 1, XP: k * XPPerLevel}
		if p.CurrentLevel() != k+1 {
			t.Fatalf("level for xp %d: got %d want %d", p.XP, p.CurrentLevel(), k+1)
		}
		if p.XPProgress() != 0 {
			t.Fatalf("progress for xp %d: got %d", p.XP, p.XPProgress())
		}
	})
}

func TestLevelUpProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := New().ApplyRewards(rapid.IntRange(0, 5_000).Draw(t, "xp0"), 0).LevelUpIfReady()
		reward := rapid.IntRange(0, 5_000).Draw(t, "reward")

		before := start.ApplyRewards(reward, 0)
		once := before.LevelUpIfReady()
		twice := once.LevelUpIfReady()

		if once != twice {
			t.Fatalf("not idempotent: %+v then %+v", once, twice)
		}
		if once.Level != once.CurrentLevel() {
			t.Fatalf("level %d does not match xp %d", once.Level, once.XP)
		}
		gained := once.Level - before.Level
		if once.MaxHP != before.MaxHP+HPPerLevel*gained {
			t.Fatalf("max hp %d after gaining %d levels from %d", once.MaxHP, gained, before.MaxHP)
		}
		if gained > 0 && once.HP != once.MaxHP {
			t.Fatalf("level-up must fully heal: hp %d max %d", once.HP, once.MaxHP)
		}
	})
}
