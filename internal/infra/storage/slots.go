package storage

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/battle"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/game"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/player"
)

// Persisted slot keys. Each slot decodes on its own.
const (
	SlotPlayer           = "player_data"
	SlotBattleLog        = "battle_log_data"
	SlotLastFightDate    = "last_fight_date"
	SlotDaysWithoutFight = "days_without_fight"
)

// encodeSlots renders the durable part of s. The last fight date slot is
// omitted when the hero never fought.
func encodeSlots(s game.State) (map[string]string, error) {
	playerJSON, err := json.Marshal(s.Player)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", SlotPlayer, err)
	}

	log := s.BattleLog
	if log.Entries == nil {
		log.Entries = []battle.LogEntry{}
	}
	logJSON, err := json.Marshal(log)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", SlotBattleLog, err)
	}

	slots := map[string]string{
		SlotPlayer:           string(playerJSON),
		SlotBattleLog:        string(logJSON),
		SlotDaysWithoutFight: strconv.Itoa(s.DaysWithoutFight),
	}
	if s.Player.LastFightDate != "" {
		slots[SlotLastFightDate] = s.Player.LastFightDate
	}
	return slots, nil
}

// decodeSlots rebuilds a state from raw slots. A slot that fails to decode
// is replaced by its default and reported to onCorrupt. The last fight date
// slot is authoritative over the date embedded in the player record.
func decodeSlots(raw map[string]string, onCorrupt func(slot string, err error)) game.State {
	s := game.New()

	if v, ok := raw[SlotPlayer]; ok {
		p := player.New()
		if err := json.Unmarshal([]byte(v), &p); err != nil {
			onCorrupt(SlotPlayer, err)
			p = player.New()
		} else if err := checkPlayer(p); err != nil {
			onCorrupt(SlotPlayer, err)
			p = player.New()
		}
		s.Player = p
	}
	s.Player.LastFightDate = raw[SlotLastFightDate]

	if v, ok := raw[SlotBattleLog]; ok {
		var log battle.Log
		if err := json.Unmarshal([]byte(v), &log); err != nil {
			onCorrupt(SlotBattleLog, err)
		} else {
			if log.Entries == nil {
				log.Entries = []battle.LogEntry{}
			}
			if len(log.Entries) > battle.MaxEntries {
				log.Entries = log.Entries[:battle.MaxEntries]
			}
			s.BattleLog = log
		}
	}

	if v, ok := raw[SlotDaysWithoutFight]; ok {
		days, err := strconv.Atoi(v)
		switch {
		case err != nil:
			onCorrupt(SlotDaysWithoutFight, err)
		case days < 0:
			onCorrupt(SlotDaysWithoutFight, fmt.Errorf("negative value %d", days))
		default:
			s.DaysWithoutFight = days
		}
	}

	return s
}

func checkPlayer(p player.Player) error {
	if p.Level < 1 || p.XP < 0 || p.Gold < 0 || p.MaxHP <= 0 {
		return fmt.Errorf("invalid player record %+v", p)
	}
	return nil
}
