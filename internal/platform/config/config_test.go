package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/monster"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/rules"
)

func TestLoadServerDefaults(t *testing.T) {
	s, err := LoadServer()
	require.NoError(t, err)

	assert.Equal(t, ":8080", s.Addr)
	assert.Equal(t, "default", s.GameID)
	assert.Equal(t, time.Minute, s.DailyCheckInterval)
	assert.Zero(t, s.Seed)
	assert.Equal(t, DefaultTuning(), s.Tuning())
}

func TestLoadServerFromEnv(t *testing.T) {
	t.Setenv("HERO_ADDR", "127.0.0.1:9000")
	t.Setenv("HERO_GAME_ID", "hero-42")
	t.Setenv("HERO_SEED", "1234")
	t.Setenv("HERO_DAILY_CHECK_INTERVAL", "30s")
	t.Setenv("HERO_PROFILE", "low")
	t.Setenv("HERO_CLIENT_SEND_BUFFER", "3")

	s, err := LoadServer()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", s.Addr)
	assert.Equal(t, "hero-42", s.GameID)
	assert.Equal(t, uint64(1234), s.Seed)
	assert.Equal(t, 30*time.Second, s.DailyCheckInterval)

	tuning := s.Tuning()
	assert.Equal(t, 3, tuning.ClientSendBuffer)
	assert.Equal(t, LowResourceTuning().MaxClients, tuning.MaxClients)
}

func TestLoadServerRejectsBadValues(t *testing.T) {
	t.Run("unparsable", func(t *testing.T) {
		t.Setenv("HERO_SEED", "lots")
		_, err := LoadServer()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse env:")
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("HERO_PROFILE", "turbo")
		t.Setenv("HERO_DAILY_CHECK_INTERVAL", "0s")
		_, err := LoadServer()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HERO_PROFILE")
		assert.Contains(t, err.Error(), "HERO_DAILY_CHECK_INTERVAL")
	})
}

func TestLoadClient(t *testing.T) {
	t.Setenv("HERO_SERVER_URL", "ws://example:1/ws")
	c, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "ws://example:1/ws", c.ServerURL)
	assert.Equal(t, 10*time.Second, c.Timeout)
}

func TestLoadBalanceEmptyPath(t *testing.T) {
	b, c, err := LoadBalance("")
	require.NoError(t, err)
	assert.Equal(t, rules.DefaultBalance(), b)
	assert.Equal(t, monster.DefaultCatalog(), c)
}

func TestLoadBalanceFile(t *testing.T) {
	doc := `
balance:
  crit_chance: 0.5
monsters:
  - id: rat
    name: Giant Rat
    sprite: rat
    hp: 10
    max_hp: 10
    base_xp_reward: 5
    base_gold_reward: 1
    rarity: COMMON
  - id: lich
    name: Lich King
    base_xp_reward: 100
    base_gold_reward: 60
    rarity: epic
`
	path := filepath.Join(t.TempDir(), "balance.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	b, c, err := LoadBalance(path)
	require.NoError(t, err)

	want := rules.DefaultBalance()
	want.CritChance = 0.5
	assert.Equal(t, want, b)
	require.Len(t, c, 2)
	assert.Equal(t, "Giant Rat", c[0].Name)
	assert.Equal(t, monster.RarityEpic, c[1].Rarity)
	assert.Equal(t, 55, c.TotalWeight())
}

func TestParseBalanceErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "balance: [1"},
		{"crit out of range", "balance:\n  crit_chance: 1.5\n"},
		{"crit multiplier below one", "balance:\n  crit_multiplier_pct: 90\n"},
		{"unknown rarity", "monsters:\n  - id: x\n    rarity: LEGENDARY\n"},
		{"duplicate ids", "monsters:\n  - id: x\n  - id: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseBalance([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "load balance:")
		})
	}
}

func TestLoadBalanceMissingFile(t *testing.T) {
	_, _, err := LoadBalance(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
