package pending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimersPeekSoonestFirst(t *testing.T) {
	base := time.Unix(1000, 0)
	timers := NewTimers[string]()
	timers.Push("late", base.Add(3*time.Second))
	timers.Push("soon", base.Add(1*time.Second))
	timers.Push("mid", base.Add(2*time.Second))

	id, deadline, ok := timers.Peek()
	require.True(t, ok)
	assert.Equal(t, "soon", id)
	assert.Equal(t, base.Add(1*time.Second), deadline)
}

func TestTimersPopExpired(t *testing.T) {
	base := time.Unix(1000, 0)
	timers := NewTimers[string]()
	timers.Push("a", base.Add(1*time.Second))
	timers.Push("b", base.Add(2*time.Second))
	timers.Push("c", base.Add(5*time.Second))

	expired := timers.PopExpired(base.Add(3 * time.Second))
	assert.Equal(t, []string{"a", "b"}, expired)
	assert.Equal(t, 1, timers.Len())
}

func TestTimersCancel(t *testing.T) {
	base := time.Unix(1000, 0)
	timers := NewTimers[string]()
	timers.Push("a", base.Add(1*time.Second))
	timers.Push("b", base.Add(2*time.Second))

	assert.True(t, timers.Cancel("a", func(x, y string) bool { return x == y }))
	assert.False(t, timers.Cancel("a", func(x, y string) bool { return x == y }))
	assert.Equal(t, 1, timers.Len())
}

func TestTimersRetain(t *testing.T) {
	base := time.Unix(1000, 0)
	timers := NewTimers[uint32]()
	timers.Push(0, base.Add(1*time.Second))
	timers.Push(1, base.Add(2*time.Second))
	timers.Push(2, base.Add(3*time.Second))

	timers.Retain(func(id uint32) bool { return id >= 1 })
	assert.Equal(t, 2, timers.Len())

	expired := timers.PopExpired(base.Add(10 * time.Second))
	assert.Equal(t, []uint32{1, 2}, expired)
}

func TestPendingMsgsResponseCancelsTimeout(t *testing.T) {
	base := time.Unix(1000, 0)
	p := NewPendingMsgs[uint32, string]()
	p.Push(1, "hello", base.Add(5*time.Second))

	msg, ok := p.PullMsg(1)
	require.True(t, ok)
	assert.Equal(t, "hello", msg)

	// The timer was cancelled: a later expiry sweep finds nothing.
	expired := p.PullExpired(base.Add(10 * time.Second))
	assert.Empty(t, expired)
	assert.Equal(t, 0, p.Len())
}

func TestPendingMsgsTimeoutThenResponseIsNoop(t *testing.T) {
	base := time.Unix(1000, 0)
	p := NewPendingMsgs[uint32, string]()
	p.Push(1, "hello", base.Add(1*time.Second))

	expired := p.PullExpired(base.Add(2 * time.Second))
	require.Len(t, expired, 1)
	assert.Equal(t, uint32(1), expired[0].ID)
	assert.Equal(t, "hello", expired[0].Msg)

	// A response that arrives after the timeout already reclaimed the
	// entry must not be delivered a second time.
	_, ok := p.PullMsg(1)
	assert.False(t, ok)
}

func TestPendingMsgsNextWait(t *testing.T) {
	base := time.Unix(1000, 0)
	p := NewPendingMsgs[uint32, string]()

	_, ok := p.NextWait(base)
	assert.False(t, ok)

	p.Push(1, "hello", base.Add(3*time.Second))
	wait, ok := p.NextWait(base)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, wait)
}
