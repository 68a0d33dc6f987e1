package queue

import (
	"time"

	"github.com/prosaframework/prosa/core/pending"
)

// Timed layers a pending-timer structure (core/pending) over an
// OptCell ring, giving each pushed value both a normal consumer path
// (Recv) and a deadline-driven extraction path (Timeout) that races it
// consumer-free via TryPullID. A value delivered through one path is
// never also delivered through the other: Recv's underlying Pull skips
// cells TryPullID already emptied, and Timeout skips timer entries
// whose cell Recv already emptied.
type Timed[T any] struct {
	cells  *OptCell[T]
	timers *pending.Timers[uint32]
}

// NewTimed returns an empty Timed queue of the given ring capacity.
func NewTimed[T any](capacity uint32) *Timed[T] {
	return &Timed[T]{
		cells:  NewOptCell[T](capacity),
		timers: pending.NewTimers[uint32](),
	}
}

// Send pushes value, scheduling it to become eligible for Timeout
// extraction at deadline. It returns the slot id the value landed in.
// Timers whose slot has fallen outside the ring window observed at
// push time are retired here, so a stale deadline can never extract a
// newer value that has since reused the same slot.
func (t *Timed[T]) Send(value T, deadline time.Time) (id uint32, qerr *QueueError[T]) {
	head, id, qerr := t.cells.Push(value)
	if qerr != nil {
		return 0, qerr
	}
	// The retain window is the ring as it stood before this push,
	// [head, id): a leftover timer for slot id itself belongs to a
	// previous occupant and must go before the new one is registered.
	t.timers.Retain(func(tid uint32) bool { return IDInQueue(head, id, tid) })
	t.timers.Push(id, deadline)
	return id, nil
}

// Recv removes and returns the oldest live element, the normal
// consumer path. It blocks the caller only in the sense that a
// spinning Pull may briefly wait on an in-flight producer; it never
// waits on a deadline.
func (t *Timed[T]) Recv() (T, *QueueError[T]) {
	return t.cells.Pull()
}

// NextWait reports how long until the soonest still-pending deadline,
// for driving an external select loop's timer branch.
func (t *Timed[T]) NextWait(now time.Time) (time.Duration, bool) {
	return t.timers.NextWait(now)
}

// Timeout reclaims the first value whose deadline has elapsed as of
// now and that Recv has not already consumed. It removes expired
// timer entries in deadline order, skipping any whose cell Recv beat
// it to, and returns the first live one found; expired entries after
// that one stay pending for the next call.
func (t *Timed[T]) Timeout(now time.Time) (value T, id uint32, ok bool) {
	for {
		expiredID, deadline, found := t.timers.Peek()
		if !found || deadline.After(now) {
			break
		}
		t.timers.Cancel(expiredID, func(a, b uint32) bool { return a == b })
		if v, got := t.cells.TryPullID(expiredID); got {
			return v, expiredID, true
		}
	}
	var zero T
	return zero, 0, false
}
