package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersister struct {
	got []GameEvent
	err error
}

func (p *recordingPersister) Append(e GameEvent) error {
	p.got = append(p.got, e)
	return p.err
}

func TestAppendFillsIDAndPersists(t *testing.T) {
	p := &recordingPersister{}
	el := NewEventLog(p, nil)

	require.NoError(t, el.Append(GameEvent{Type: EventTypeFightResolved, ActorID: ActorHero, GameDate: "2024-01-15"}))

	require.Len(t, p.got, 1)
	assert.NotEmpty(t, p.got[0].ID)
	assert.False(t, p.got[0].Timestamp.IsZero())
	assert.Len(t, el.GetByDate("2024-01-15"), 1)
	assert.Empty(t, el.GetByDate("2024-01-16"))
}

func TestAppendReportsPersisterFailure(t *testing.T) {
	p := &recordingPersister{err: errors.New("disk full")}
	el := NewEventLog(p, nil)

	err := el.Append(GameEvent{Type: EventTypeFightRejected})
	require.Error(t, err)
	assert.Len(t, el.Replay(), 1, "event kept in memory")
}

func TestSubscribersSeeEveryEvent(t *testing.T) {
	el := NewEventLog(nil, nil)
	var seen []EventType
	el.Subscribe(func(e GameEvent) { seen = append(seen, e.Type) })

	require.NoError(t, el.Append(GameEvent{Type: EventTypeFightResolved}))
	require.NoError(t, el.Append(GameEvent{Type: EventTypeDayRollover}))

	assert.Equal(t, []EventType{EventTypeFightResolved, EventTypeDayRollover}, seen)
	assert.Len(t, el.GetByType(EventTypeDayRollover), 1)
}

func TestInMemoryTailIsBounded(t *testing.T) {
	el := NewEventLog(nil, nil)
	el.capacity = 3
	for i := 0; i < 5; i++ {
		require.NoError(t, el.Append(GameEvent{ID: string(rune('a' + i))}))
	}

	got := el.Replay()
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "e", got[2].ID)
}
