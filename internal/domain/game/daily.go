package game

import "time"

// DailyOutcome says what CheckDaily did.
type DailyOutcome int

const (
	// DailyUnchanged means nothing needs to be persisted.
	DailyUnchanged DailyOutcome = iota
	// DailyNewDay means the last fight is in the past: eligible again.
	DailyNewDay
	// DailyRecovered means the stored date was unreadable and was reset.
	DailyRecovered
)

func (o DailyOutcome) String() string {
	switch o {
	case DailyNewDay:
		return "new_day"
	case DailyRecovered:
		return "recovered"
	}
	return "unchanged"
}

// CheckDaily compares the last fight date with today.
//
//   - no date: unchanged, daysWithoutFight kept as stored
//   - date before today: eligible, daysWithoutFight = days since - 1 (min 0)
//   - date today or later: unchanged
//   - unparsable date: eligible, daysWithoutFight = 0, date cleared
func (s State) CheckDaily(today time.Time) (State, DailyOutcome) {
	raw := s.Player.LastFightDate
	if raw == "" {
		return s, DailyUnchanged
	}

	last, err := time.Parse(DateLayout, raw)
	if err != nil {
		s.Player.LastFightDate = ""
		s.CanFightToday = true
		s.DaysWithoutFight = 0
		return s, DailyRecovered
	}

	diff := DaysBetween(last, today)
	if diff <= 0 {
		return s, DailyUnchanged
	}
	s.CanFightToday = true
	s.DaysWithoutFight = max(0, diff-1)
	return s, DailyNewDay
}

// DaysBetween counts calendar days from a to b, ignoring time of day and
// location offsets (a DST shift never produces a fractional day).
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int((db.Unix() - da.Unix()) / 86400)
}

const (
	boredDays    = 3
	restlessDays = 7
)

// BoredMessage is advisory text for an idle hero. ok is false below three
// idle days.
func BoredMessage(daysWithoutFight int) (msg string, ok bool) {
	switch {
	case daysWithoutFight >= restlessDays:
		return "Your hero has been idle for a week! They're getting very restless...", true
	case daysWithoutFight >= boredDays:
		return "Your hero is bored and wants to fight!", true
	}
	return "", false
}
