package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/monster"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/rules"
)

// BalanceFile is the on-disk layout of the balance file. Keys left out keep
// their default values; an absent monsters list keeps the default catalog.
//
//	balance:
//	  variance_pct: 20
//	  crit_chance: 0.15
//	monsters:
//	  - id: slime
//	    name: Green Slime
//	    rarity: COMMON
//	    ...
type BalanceFile struct {
	Balance  rules.Balance   `yaml:"balance"`
	Monsters monster.Catalog `yaml:"monsters"`
}

// LoadBalance reads the balance file at path. An empty path returns the
// defaults.
func LoadBalance(path string) (rules.Balance, monster.Catalog, error) {
	if path == "" {
		return rules.DefaultBalance(), monster.DefaultCatalog(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return rules.Balance{}, nil, fmt.Errorf("load balance: %w", err)
	}
	return ParseBalance(b)
}

// ParseBalance decodes a balance document.
func ParseBalance(b []byte) (rules.Balance, monster.Catalog, error) {
	f := BalanceFile{Balance: rules.DefaultBalance()}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return rules.Balance{}, nil, fmt.Errorf("load balance: %w", err)
	}

	if err := validateBalance(f.Balance); err != nil {
		return rules.Balance{}, nil, fmt.Errorf("load balance: %w", err)
	}

	catalog := f.Monsters
	if len(catalog) == 0 {
		catalog = monster.DefaultCatalog()
	}
	if err := catalog.Validate(); err != nil {
		return rules.Balance{}, nil, fmt.Errorf("load balance: %w", err)
	}
	return f.Balance, catalog, nil
}

func validateBalance(b rules.Balance) error {
	var errs []error
	if b.VariancePct < 0 || b.VariancePct > 100 {
		errs = append(errs, fmt.Errorf("variance_pct %d out of [0,100]", b.VariancePct))
	}
	if b.CritChance < 0 || b.CritChance > 1 {
		errs = append(errs, fmt.Errorf("crit_chance %v out of [0,1]", b.CritChance))
	}
	if b.CritMultiplierPct < 100 {
		errs = append(errs, fmt.Errorf("crit_multiplier_pct %d below 100", b.CritMultiplierPct))
	}
	if b.LevelBonusPct < 0 {
		errs = append(errs, fmt.Errorf("level_bonus_pct %d is negative", b.LevelBonusPct))
	}
	return errors.Join(errs...)
}
