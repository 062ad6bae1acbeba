package battle

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func entry(i int) LogEntry {
	return LogEntry{
		ID:                fmt.Sprintf("e%d", i),
		Timestamp:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
		PlayerLevelBefore: 1,
		PlayerLevelAfter:  1,
	}
}

func TestAppendPrependsAndCaps(t *testing.T) {
	var l Log
	for i := 0; i < 15; i++ {
		l = l.Append(entry(i))
	}
	require.Equal(t, MaxEntries, l.Len())
	assert.Equal(t, "e14", l.Entries[0].ID)
	assert.Equal(t, "e5", l.Entries[MaxEntries-1].ID)
}

func TestAppendDoesNotMutateReceiver(t *testing.T) {
	base := Log{}.Append(entry(1)).Append(entry(2))
	next := base.Append(entry(3))

	assert.Equal(t, []string{"e2", "e1"}, ids(base.Entries))
	assert.Equal(t, []string{"e3", "e2", "e1"}, ids(next.Entries))
}

func TestRecent(t *testing.T) {
	var l Log
	for i := 0; i < 8; i++ {
		l = l.Append(entry(i))
	}
	assert.Equal(t, []string{"e7", "e6", "e5", "e4", "e3"}, ids(l.Recent(0)))
	assert.Equal(t, []string{"e7", "e6"}, ids(l.Recent(2)))
	assert.Len(t, l.Recent(50), 8)

	view := l.Recent(1)
	view[0].ID = "changed"
	assert.Equal(t, "e7", l.Entries[0].ID)
}

func TestLeveledUp(t *testing.T) {
	assert.True(t, LogEntry{PlayerLevelBefore: 2, PlayerLevelAfter: 3}.LeveledUp())
	assert.False(t, LogEntry{PlayerLevelBefore: 2, PlayerLevelAfter: 2}.LeveledUp())
}

func TestAppendInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(t, "appends")
		var l Log
		for i := 0; i < n; i++ {
			l = l.Append(entry(i))
			if l.Len() > MaxEntries {
				t.Fatalf("log grew to %d", l.Len())
			}
			if l.Entries[0].ID != fmt.Sprintf("e%d", i) {
				t.Fatalf("newest entry not at index 0: %s", l.Entries[0].ID)
			}
		}
	})
}

func ids(es []LogEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}
