package rules

import (
	"strconv"
	"strings"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/battle"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/monster"
	"github.com/MRamiBalles/DailyHero/server/internal/platform/random"
)

var victoryMessages = []string{
	"You defeated the {monster}!",
	"The {monster} falls before your might!",
	"Victory! The {monster} has been slain!",
	"You emerge victorious against the {monster}!",
	"The {monster} crumbles to dust!",
	"Your blade finds its mark! The {monster} is defeated!",
}

var criticalMessages = []string{
	"Critical hit! You devastate the {monster}!",
	"A perfect strike! The {monster} didn't stand a chance!",
	"Your weapon glows with power as you strike the {monster}!",
	"Lightning-fast reflexes! Critical hit on the {monster}!",
	"The {monster} staggers from your devastating blow!",
}

var lootMessages = []string{
	"You found {gold} gold coins!",
	"The {monster} drops {gold} gold!",
	"You search the remains and find {gold} gold!",
	"Treasure! You discover {gold} gold pieces!",
	"Your victory yields {gold} gold coins!",
}

// ComposeMessage builds the battle text: a victory (or critical) line, the XP
// line, and a loot line only when gold was gained.
func ComposeMessage(m monster.Monster, r battle.Result, rng random.Source) string {
	templates := victoryMessages
	if r.CriticalHit {
		templates = criticalMessages
	}

	parts := []string{
		fill(pick(templates, rng), m.Name, r.GoldGained),
		"You gained " + strconv.Itoa(r.XPGained) + " XP!",
	}
	if r.GoldGained > 0 {
		parts = append(parts, fill(pick(lootMessages, rng), m.Name, r.GoldGained))
	}
	return strings.Join(parts, " ")
}

func pick(list []string, rng random.Source) string {
	return list[rng.IntN(len(list))]
}

func fill(tmpl, monsterName string, gold int) string {
	return strings.NewReplacer("{monster}", monsterName, "{gold}", strconv.Itoa(gold)).Replace(tmpl)
}
