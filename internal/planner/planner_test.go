package planner

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlanner(t *testing.T, names ...string) *Planner {
	t.Helper()
	p, err := New()
	require.NoError(t, err)
	for _, n := range names {
		u, err := NewUser(n)
		require.NoError(t, err)
		require.NoError(t, p.AddUser(u))
	}
	return p
}

func holds(t *testing.T, p *Planner, user string, e Event) bool {
	t.Helper()
	events, err := p.Events(user)
	require.NoError(t, err)
	for _, got := range events {
		if got.Equal(e) {
			return true
		}
	}
	return false
}

func tuesdayMeeting(t *testing.T, invitees ...string) Event {
	return mustEvent(t, "sync", MustWeekTime(Tuesday, 9, 0), MustWeekTime(Tuesday, 10, 0), invitees...)
}

func TestPlanner_AddUserDuplicate(t *testing.T) {
	p := newPlanner(t, "A")
	u, err := NewUser("A")
	require.NoError(t, err)

	assert.ErrorIs(t, p.AddUser(u), ErrDuplicateUser)
	assert.Len(t, p.Users(), 1)
}

func TestPlanner_UsersKeepRegistrationOrder(t *testing.T) {
	p := newPlanner(t, "Charlie", "Alice", "Bob")

	var names []string
	for _, u := range p.Users() {
		names = append(names, u.Name())
	}
	assert.Equal(t, []string{"Charlie", "Alice", "Bob"}, names)
}

func TestPlanner_AddEventPropagates(t *testing.T) {
	p := newPlanner(t, "Host", "A", "B")
	e := tuesdayMeeting(t, "Host", "A", "Ghost")

	require.NoError(t, p.AddEvent(e))

	assert.True(t, holds(t, p, "Host", e))
	assert.True(t, holds(t, p, "A", e))
	assert.False(t, holds(t, p, "B", e))
	_, ok := p.User("Ghost")
	assert.False(t, ok)
}

func TestPlanner_AddEventIsIdempotentForHolders(t *testing.T) {
	p := newPlanner(t, "Host", "A")
	e := tuesdayMeeting(t, "Host", "A")

	require.NoError(t, p.AddEvent(e))
	require.NoError(t, p.AddEvent(e))

	events, err := p.Events("A")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestPlanner_AddEventConflictIsAtomic(t *testing.T) {
	p := newPlanner(t, "Host", "A", "B")
	busy := mustEvent(t, "dentist", MustWeekTime(Tuesday, 9, 30), MustWeekTime(Tuesday, 9, 45), "B")
	require.NoError(t, p.AddEvent(busy))

	e := tuesdayMeeting(t, "Host", "A", "B")
	err := p.AddEvent(e)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "B", conflict.User)
	assert.True(t, conflict.Existing.Equal(busy))
	assert.False(t, holds(t, p, "Host", e))
	assert.False(t, holds(t, p, "A", e))
}

func TestPlanner_HostRemoval(t *testing.T) {
	p := newPlanner(t, "Host", "A", "B")
	e := tuesdayMeeting(t, "Host", "A", "B")
	require.NoError(t, p.AddEvent(e))

	require.NoError(t, p.RemoveEvent(e, "Host"))

	for _, name := range []string{"Host", "A", "B"} {
		events, err := p.Events(name)
		require.NoError(t, err)
		assert.Empty(t, events, name)
	}
}

func TestPlanner_InviteeRemoval(t *testing.T) {
	p := newPlanner(t, "Host", "A", "B")
	e := tuesdayMeeting(t, "Host", "A", "B")
	require.NoError(t, p.AddEvent(e))

	require.NoError(t, p.RemoveEvent(e, "A"))

	stripped := e.WithoutInvitee("A")
	assert.False(t, holds(t, p, "A", e))
	assert.False(t, holds(t, p, "A", stripped))
	for _, name := range []string{"Host", "B"} {
		assert.True(t, holds(t, p, name, stripped), name)
		assert.False(t, holds(t, p, name, e), name)
	}
}

func TestPlanner_HostRemovalMissingHolderIsAtomic(t *testing.T) {
	e := tuesdayMeeting(t, "Host", "A", "B")
	host, err := NewUser("Host", e)
	require.NoError(t, err)
	a, err := NewUser("A")
	require.NoError(t, err)
	b, err := NewUser("B", e)
	require.NoError(t, err)
	p, err := New(host, a, b)
	require.NoError(t, err)

	err = p.RemoveEvent(e, "Host")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, holds(t, p, "Host", e))
	assert.True(t, holds(t, p, "B", e))
}

func TestPlanner_RemoveEventNotHeld(t *testing.T) {
	p := newPlanner(t, "Host", "A", "B")
	e := tuesdayMeeting(t, "Host", "A")
	require.NoError(t, p.AddEvent(e))

	assert.ErrorIs(t, p.RemoveEvent(e, "B"), ErrNotFound)
	assert.ErrorIs(t, p.RemoveEvent(e, "Nobody"), ErrNotFound)
	assert.True(t, holds(t, p, "Host", e))
}

func TestPlanner_RemoveInvitee(t *testing.T) {
	p := newPlanner(t, "Host", "A", "B")
	e := tuesdayMeeting(t, "Host", "A", "B")
	require.NoError(t, p.AddEvent(e))

	require.NoError(t, p.RemoveInvitee(e, "B"))

	stripped := e.WithoutInvitee("B")
	assert.True(t, holds(t, p, "Host", stripped))
	assert.True(t, holds(t, p, "A", stripped))
	assert.True(t, holds(t, p, "B", e))
	assert.ErrorIs(t, p.RemoveInvitee(e, "Nobody"), ErrNotFound)
}

func TestPlanner_ModifyEvent(t *testing.T) {
	p := newPlanner(t, "Host", "A", "B")
	prev := tuesdayMeeting(t, "Host", "A")
	require.NoError(t, p.AddEvent(prev))

	updated := mustEvent(t, "sync", MustWeekTime(Tuesday, 9, 30), MustWeekTime(Tuesday, 10, 30), "Host", "A", "B")
	require.NoError(t, p.ModifyEvent(prev, updated))

	for _, name := range []string{"Host", "A", "B"} {
		assert.True(t, holds(t, p, name, updated), name)
		assert.False(t, holds(t, p, name, prev), name)
	}
}

func TestPlanner_ModifyEventDroppingHost(t *testing.T) {
	p := newPlanner(t, "Host", "A")
	prev := tuesdayMeeting(t, "Host", "A")
	require.NoError(t, p.AddEvent(prev))

	err := p.ModifyEvent(prev, tuesdayMeeting(t, "A"))

	assert.ErrorIs(t, err, ErrHostRequired)
	assert.True(t, holds(t, p, "Host", prev))
	assert.True(t, holds(t, p, "A", prev))
}

func TestPlanner_ModifyEventConflictKeepsPrevious(t *testing.T) {
	p := newPlanner(t, "Host", "B")
	gym := mustEvent(t, "gym", MustWeekTime(Wednesday, 9, 0), MustWeekTime(Wednesday, 10, 0), "B")
	require.NoError(t, p.AddEvent(gym))
	prev := tuesdayMeeting(t, "Host", "B")
	require.NoError(t, p.AddEvent(prev))

	updated := mustEvent(t, "sync", MustWeekTime(Wednesday, 9, 30), MustWeekTime(Wednesday, 10, 30), "Host", "B")
	err := p.ModifyEvent(prev, updated)

	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "B", conflict.User)
	assert.True(t, holds(t, p, "Host", prev))
	assert.True(t, holds(t, p, "B", prev))
	assert.False(t, holds(t, p, "Host", updated))
}

func TestPlanner_ImportUser(t *testing.T) {
	p := newPlanner(t, "A", "B")
	e := tuesdayMeeting(t, "Host", "A")
	host, err := NewUser("Host", e)
	require.NoError(t, err)

	require.NoError(t, p.ImportUser(host))

	assert.True(t, holds(t, p, "Host", e))
	assert.True(t, holds(t, p, "A", e))
	assert.False(t, holds(t, p, "B", e))
	assert.ErrorIs(t, p.ImportUser(host), ErrDuplicateUser)
}

func TestPlanner_ImportUserConflictIsAtomic(t *testing.T) {
	p := newPlanner(t, "A")
	busy := mustEvent(t, "busy", MustWeekTime(Tuesday, 9, 0), MustWeekTime(Tuesday, 9, 10), "A")
	require.NoError(t, p.AddEvent(busy))

	free := mustEvent(t, "free", MustWeekTime(Monday, 9, 0), MustWeekTime(Monday, 10, 0), "Host", "A")
	host, err := NewUser("Host", free, tuesdayMeeting(t, "Host", "A"))
	require.NoError(t, err)

	err = p.ImportUser(host)

	assert.ErrorIs(t, err, ErrConflict)
	_, ok := p.User("Host")
	assert.False(t, ok)
	assert.False(t, holds(t, p, "A", free))
}

func TestPlanner_EventAt(t *testing.T) {
	p := newPlanner(t, "A")
	e := tuesdayMeeting(t, "A")
	require.NoError(t, p.AddEvent(e))

	got, ok, err := p.EventAt("A", MustWeekTime(Tuesday, 9, 30))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(e))

	_, ok, err = p.EventAt("A", MustWeekTime(Tuesday, 11, 0))
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = p.EventAt("Nobody", StartOfWeek)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanner_SnapshotRestore(t *testing.T) {
	p := newPlanner(t, "Host", "A")
	e := tuesdayMeeting(t, "Host", "A")
	require.NoError(t, p.AddEvent(e))
	snap := p.Snapshot()

	require.NoError(t, p.RemoveEvent(e, "Host"))
	require.NoError(t, p.Restore(snap))

	assert.True(t, holds(t, p, "Host", e))
	assert.True(t, holds(t, p, "A", e))
}

func TestPlanner_ConcurrentAdds(t *testing.T) {
	p := newPlanner(t, "Host", "A")

	var wg sync.WaitGroup
	for hour := 0; hour < 24; hour += 2 {
		wg.Add(1)
		go func(hour int) {
			defer wg.Done()
			e, err := NewEvent(fmt.Sprintf("slot %d", hour),
				MustWeekTime(Thursday, hour, 0), MustWeekTime(Thursday, hour, 30),
				false, "", []string{"Host", "A"})
			if err == nil {
				err = p.AddEvent(e)
			}
			assert.NoError(t, err)
		}(hour)
	}
	wg.Wait()

	events, err := p.Events("A")
	require.NoError(t, err)
	assert.Len(t, events, 12)
}
