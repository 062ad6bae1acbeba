package network

import (
	"context"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/battle"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/game"
	"github.com/MRamiBalles/DailyHero/server/internal/domain/player"
)

// MessageType tags every frame sent to a WebSocket client.
type MessageType string

const (
	MsgTypeEvent       MessageType = "EVENT"
	MsgTypeState       MessageType = "STATE"
	MsgTypeFightResult MessageType = "FIGHT_RESULT"
	MsgTypeError       MessageType = "ERROR"
)

// Message is the envelope of every outgoing WebSocket frame.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// GameEngine is what the transports need from the engine.
type GameEngine interface {
	State() game.State
	Fight(ctx context.Context) (battle.Result, bool, error)
	CheckDailyStatus(ctx context.Context) error
	RecentBattles(n int) []battle.LogEntry
	BoredMessage(daysWithoutFight int) (string, bool)
}

// CooldownMessage is shown when the hero already fought today.
const CooldownMessage = "You've already fought today! Come back tomorrow."

// StateView is the client-facing rendering of a game snapshot.
type StateView struct {
	Player           player.Player     `json:"player"`
	Progress         player.Progress   `json:"progress"`
	CanFightToday    bool              `json:"canFightToday"`
	DaysWithoutFight int               `json:"daysWithoutFight"`
	BoredMessage     string            `json:"boredMessage,omitempty"`
	RecentBattles    []battle.LogEntry `json:"recentBattles"`
}

// FightView is the reply to a fight request.
type FightView struct {
	Status  string         `json:"status"` // "victory" or "cooldown"
	Message string         `json:"message"`
	Result  *battle.Result `json:"result,omitempty"`
	State   StateView      `json:"state"`
}

func viewState(eng GameEngine) StateView {
	s := eng.State()
	v := StateView{
		Player:           s.Player,
		Progress:         s.Player.Progress(),
		CanFightToday:    s.CanFightToday,
		DaysWithoutFight: s.DaysWithoutFight,
		RecentBattles:    s.BattleLog.Recent(battle.DefaultRecent),
	}
	if msg, ok := eng.BoredMessage(s.DaysWithoutFight); ok {
		v.BoredMessage = msg
	}
	return v
}

func fightView(eng GameEngine, res battle.Result, ok bool) FightView {
	if !ok {
		return FightView{Status: "cooldown", Message: CooldownMessage, State: viewState(eng)}
	}
	return FightView{Status: "victory", Message: res.Message, Result: &res, State: viewState(eng)}
}
