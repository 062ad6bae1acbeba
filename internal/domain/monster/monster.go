// Package monster defines the fixed monster catalog and rarity-weighted selection.
// This package is PURE and must NOT import any infrastructure packages.
package monster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MRamiBalles/DailyHero/server/internal/platform/random"
)

// Rarity is the tier of a monster. It drives both selection weight and the
// reward multiplier.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
)

var rarityNames = [...]string{"COMMON", "UNCOMMON", "RARE", "EPIC"}

// Weight is the relative selection weight of the tier (total 100).
func (r Rarity) Weight() int {
	switch r {
	case RarityCommon:
		return 50
	case RarityUncommon:
		return 30
	case RarityRare:
		return 15
	case RarityEpic:
		return 5
	}
	return 0
}

// MultiplierPct is the reward multiplier in percent (Uncommon = 150 = x1.5).
func (r Rarity) MultiplierPct() int {
	switch r {
	case RarityCommon:
		return 100
	case RarityUncommon:
		return 150
	case RarityRare:
		return 200
	case RarityEpic:
		return 300
	}
	return 100
}

// DisplayName is the human-readable tier name.
func (r Rarity) DisplayName() string {
	if !r.valid() {
		return "Unknown"
	}
	n := rarityNames[r]
	return n[:1] + strings.ToLower(n[1:])
}

func (r Rarity) String() string {
	if !r.valid() {
		return fmt.Sprintf("Rarity(%d)", int(r))
	}
	return rarityNames[r]
}

func (r Rarity) valid() bool {
	return r >= RarityCommon && r <= RarityEpic
}

// MarshalText encodes the rarity by name, for JSON and YAML.
func (r Rarity) MarshalText() ([]byte, error) {
	if !r.valid() {
		return nil, fmt.Errorf("invalid rarity %d", int(r))
	}
	return []byte(rarityNames[r]), nil
}

// UnmarshalText accepts the rarity name in any case.
func (r *Rarity) UnmarshalText(b []byte) error {
	name := strings.ToUpper(strings.TrimSpace(string(b)))
	for i, n := range rarityNames {
		if n == name {
			*r = Rarity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown rarity %q", string(b))
}

// Monster is an immutable catalog entry. HP and MaxHP are flavor only:
// every fight is an automatic win.
type Monster struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Sprite         string `json:"sprite" yaml:"sprite"`
	HP             int    `json:"hp" yaml:"hp"`
	MaxHP          int    `json:"maxHp" yaml:"max_hp"`
	BaseXPReward   int    `json:"baseXpReward" yaml:"base_xp_reward"`
	BaseGoldReward int    `json:"baseGoldReward" yaml:"base_gold_reward"`
	Rarity         Rarity `json:"rarity" yaml:"rarity"`
}

// Catalog is an ordered list of monsters. Declaration order matters for
// weighted selection.
type Catalog []Monster

// DefaultCatalog returns the built-in six monsters.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "slime", Name: "Green Slime", Sprite: "slime", HP: 25, MaxHP: 25, BaseXPReward: 10, BaseGoldReward: 2, Rarity: RarityCommon},
		{ID: "goblin", Name: "Goblin Warrior", Sprite: "goblin", HP: 40, MaxHP: 40, BaseXPReward: 15, BaseGoldReward: 5, Rarity: RarityCommon},
		{ID: "skeleton", Name: "Skeleton Archer", Sprite: "skeleton", HP: 60, MaxHP: 60, BaseXPReward: 20, BaseGoldReward: 8, Rarity: RarityUncommon},
		{ID: "orc", Name: "Orc Berserker", Sprite: "orc", HP: 80, MaxHP: 80, BaseXPReward: 30, BaseGoldReward: 12, Rarity: RarityUncommon},
		{ID: "dragon", Name: "Fire Dragon", Sprite: "dragon", HP: 150, MaxHP: 150, BaseXPReward: 50, BaseGoldReward: 25, Rarity: RarityRare},
		{ID: "demon", Name: "Shadow Demon", Sprite: "demon", HP: 200, MaxHP: 200, BaseXPReward: 75, BaseGoldReward: 40, Rarity: RarityEpic},
	}
}

// TotalWeight sums the rarity weights of every entry.
func (c Catalog) TotalWeight() int {
	total := 0
	for _, m := range c {
		total += m.Rarity.Weight()
	}
	return total
}

// Pick draws one monster weighted by rarity. The draw is independent of the
// player. Falls back to the first entry if the walk does not match.
// c must not be empty (see Validate).
func (c Catalog) Pick(rng random.Source) Monster {
	total := c.TotalWeight()
	if total <= 0 {
		return c[0]
	}
	roll := rng.IntN(total)

	cumulative := 0
	for _, m := range c {
		cumulative += m.Rarity.Weight()
		if roll < cumulative {
			return m
		}
	}
	return c[0]
}

// Lookup finds a monster by ID.
func (c Catalog) Lookup(id string) (Monster, bool) {
	for _, m := range c {
		if m.ID == id {
			return m, true
		}
	}
	return Monster{}, false
}

var ErrEmptyCatalog = errors.New("monster catalog is empty")

// Validate checks a catalog loaded from configuration.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]bool, len(c))
	for i, m := range c {
		if m.ID == "" {
			return fmt.Errorf("monster %d: missing id", i)
		}
		if seen[m.ID] {
			return fmt.Errorf("monster %q: duplicate id", m.ID)
		}
		seen[m.ID] = true
		if m.BaseXPReward < 0 || m.BaseGoldReward < 0 {
			return fmt.Errorf("monster %q: negative reward", m.ID)
		}
		if !m.Rarity.valid() {
			return fmt.Errorf("monster %q: invalid rarity %d", m.ID, int(m.Rarity))
		}
	}
	return nil
}
