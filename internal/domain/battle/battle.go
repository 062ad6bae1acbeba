// Package battle holds the outcome of a fight and the bounded battle history.
// This package is PURE and must NOT import any infrastructure packages.
package battle

import (
	"time"

	"github.com/MRamiBalles/DailyHero/server/internal/domain/monster"
)

const (
	// MaxEntries is the battle log capacity. Older entries are dropped.
	MaxEntries = 10
	// DefaultRecent is the number of entries shown when no count is given.
	DefaultRecent = 5
)

// Result is the outcome of one fight. Victory is always true: there is no
// losing outcome.
type Result struct {
	Victory     bool   `json:"victory"`
	XPGained    int    `json:"xpGained"`
	GoldGained  int    `json:"goldGained"`
	CriticalHit bool   `json:"criticalHit"`
	Message     string `json:"message"`
}

// LogEntry records one resolved fight. Immutable once created.
type LogEntry struct {
	ID                string          `json:"id"`
	Timestamp         time.Time       `json:"timestamp"`
	Monster           monster.Monster `json:"monster"`
	Result            Result          `json:"battleResult"`
	PlayerLevelBefore int             `json:"playerLevelBefore"`
	PlayerLevelAfter  int             `json:"playerLevelAfter"`
}

// LeveledUp reports whether the fight crossed a level threshold.
func (e LogEntry) LeveledUp() bool {
	return e.PlayerLevelAfter > e.PlayerLevelBefore
}

// Log is the battle history, newest first, at most MaxEntries long.
type Log struct {
	Entries []LogEntry `json:"entries"`
}

// Append returns a new log with entry in front, truncated to MaxEntries.
// The receiver is not modified.
func (l Log) Append(entry LogEntry) Log {
	n := len(l.Entries) + 1
	if n > MaxEntries {
		n = MaxEntries
	}
	entries := make([]LogEntry, 0, n)
	entries = append(entries, entry)
	entries = append(entries, l.Entries[:n-1]...)
	return Log{Entries: entries}
}

// Recent returns a copy of the first n entries (DefaultRecent if n <= 0).
func (l Log) Recent(n int) []LogEntry {
	if n <= 0 {
		n = DefaultRecent
	}
	if n > len(l.Entries) {
		n = len(l.Entries)
	}
	out := make([]LogEntry, n)
	copy(out, l.Entries[:n])
	return out
}

// Len is the number of stored entries.
func (l Log) Len() int {
	return len(l.Entries)
}
