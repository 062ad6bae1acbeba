package sim

import (
	"fmt"
	"io"
	"strings"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/monster"
)

var rarities = []monster.Rarity{monster.RarityCommon, monster.RarityUncommon, monster.RarityRare, monster.RarityEpic}

// Print writes a human-readable report for rep.
func (rep *Report) Print(w io.Writer) {
	sc := rep.Scenario
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
	fmt.Fprintf(w, "🧪 SCENARIO: %s\n", sc.Name)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "   Days: %d, plays every %d day(s), %d attempt(s) per visit, seed %d\n",
		sc.Days, sc.PlayEvery, sc.AttemptsPerDay, sc.Seed)

	fmt.Fprintln(w, "\n📊 FINAL HERO:")
	fmt.Fprintf(w, "   Level: %d (%d XP, %d/%d HP)\n", rep.Final.Level, rep.Final.XP, rep.Final.HP, rep.Final.MaxHP)
	fmt.Fprintf(w, "   Gold: %d\n", rep.Final.Gold)

	fmt.Fprintln(w, "\n⚔️  FIGHTS:")
	fmt.Fprintf(w, "   Resolved: %d (%d critical), rejected: %d\n", rep.Fights, rep.CriticalHits, rep.Rejected)
	fmt.Fprintf(w, "   Level-ups: %d, longest idle streak: %d day(s)\n", rep.LevelUps, rep.MaxIdleDays)
	for _, r := range rarities {
		fmt.Fprintf(w, "   %-9s %d\n", r.DisplayName()+":", rep.ByRarity[r])
	}

	fmt.Fprintln(w, "\n📋 CHECKS:")
	for _, c := range rep.Checks {
		if c.Passed {
			fmt.Fprintf(w, "   ✅ %s\n", c.Name)
		} else {
			fmt.Fprintf(w, "   ❌ %s: %s\n", c.Name, c.Detail)
		}
	}
}

// Summary counts passed and failed scenarios.
func Summary(reports []*Report) (passed, failed int) {
	for _, r := range reports {
		if r.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
