package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimedRecvBeforeDeadline(t *testing.T) {
	tq := NewTimed[string](4)
	base := time.Unix(1000, 0)
	id, err := tq.Send("hello", base.Add(time.Second))
	require.Nil(t, err)
	assert.Equal(t, uint32(0), id)

	v, rerr := tq.Recv()
	require.Nil(t, rerr)
	assert.Equal(t, "hello", v)

	// Already delivered via Recv: a later Timeout sweep finds nothing.
	_, _, ok := tq.Timeout(base.Add(2 * time.Second))
	assert.False(t, ok)
}

func TestTimedTimeoutAfterDeadline(t *testing.T) {
	tq := NewTimed[string](4)
	base := time.Unix(1000, 0)
	id, err := tq.Send("hello", base.Add(100*time.Millisecond))
	require.Nil(t, err)

	v, gotID, ok := tq.Timeout(base.Add(200 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, "hello", v)
	assert.Equal(t, id, gotID)

	// A later Recv must not re-deliver the reclaimed value.
	_, rerr := tq.Recv()
	require.NotNil(t, rerr)
	assert.Equal(t, ErrEmpty, rerr.Kind)
}

func TestTimedStaleTimerCannotExtractReusedSlot(t *testing.T) {
	tq := NewTimed[string](2)
	base := time.Unix(1000, 0)

	// Drive the 2-slot ring around until "c" lands in the same slot
	// "a" used, while "a"'s deadline is still outstanding.
	id0, err := tq.Send("a", base.Add(time.Second))
	require.Nil(t, err)
	v, rerr := tq.Recv()
	require.Nil(t, rerr)
	assert.Equal(t, "a", v)

	_, err = tq.Send("b", base.Add(time.Hour))
	require.Nil(t, err)
	v, rerr = tq.Recv()
	require.Nil(t, rerr)
	assert.Equal(t, "b", v)

	idC, err := tq.Send("c", base.Add(time.Hour))
	require.Nil(t, err)
	require.Equal(t, id0, idC, "the ring must have wrapped back onto a's slot")

	// "a"'s leftover deadline was retired when its slot was reused, so
	// it must not reclaim "c"; only "c"'s own later deadline can.
	_, _, ok := tq.Timeout(base.Add(2 * time.Second))
	assert.False(t, ok, "a stale deadline must not reclaim the slot's new occupant")

	v, _, ok = tq.Timeout(base.Add(2 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestTimedNextWait(t *testing.T) {
	tq := NewTimed[string](4)
	base := time.Unix(1000, 0)

	_, ok := tq.NextWait(base)
	assert.False(t, ok)

	_, _ = tq.Send("a", base.Add(3*time.Second))
	wait, ok := tq.NextWait(base)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, wait)
}
