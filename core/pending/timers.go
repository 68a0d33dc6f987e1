// Package pending tracks requests that are awaiting a response or a
// deadline. A processor that sends a
// RequestMsg downstream registers the request's id here together with
// a deadline; either the response arrives and is pulled by id, or the
// deadline elapses first and the entry is reclaimed as a timeout. The
// two outcomes are mutually exclusive: whichever happens first removes
// the entry, so the other path can never also fire for the same id.
package pending

import (
	"sort"
	"time"
)

// entry pairs a deadline with the identifier expiring at that deadline.
type entry[T any] struct {
	deadline time.Time
	id       T
}

// Timers keeps identifiers sorted by deadline, soonest last, so the
// next-to-expire entry can be popped off the end of the slice in O(1)
// once a binary search has placed a new entry (insertion is O(n)).
type Timers[T any] struct {
	entries []entry[T]
}

// NewTimers returns an empty timer set.
func NewTimers[T any]() *Timers[T] {
	return &Timers[T]{}
}

// Len reports how many timers are currently pending.
func (t *Timers[T]) Len() int { return len(t.entries) }

// Push schedules id to expire at deadline. Entries are kept sorted
// with the soonest deadline at the end of the slice.
func (t *Timers[T]) Push(id T, deadline time.Time) {
	// Soonest-last ordering: search for the first entry whose deadline
	// is <= the new one (scanning from the sorted-ascending-by-index
	// view, i.e. descending by deadline) and insert before it.
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].deadline.Before(deadline) || t.entries[i].deadline.Equal(deadline)
	})
	t.entries = append(t.entries, entry[T]{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = entry[T]{deadline: deadline, id: id}
}

// Peek returns the soonest deadline without removing it. ok is false
// if there are no pending timers.
func (t *Timers[T]) Peek() (id T, deadline time.Time, ok bool) {
	if len(t.entries) == 0 {
		var zero T
		return zero, time.Time{}, false
	}
	last := t.entries[len(t.entries)-1]
	return last.id, last.deadline, true
}

// NextWait returns how long to wait before the soonest timer expires,
// relative to now. It returns 0 and false when there is nothing
// pending, the "select loop has no timer branch" case.
func (t *Timers[T]) NextWait(now time.Time) (time.Duration, bool) {
	_, deadline, ok := t.Peek()
	if !ok {
		return 0, false
	}
	if d := deadline.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}

// PopExpired removes and returns every timer whose deadline is <= now,
// oldest deadline first.
func (t *Timers[T]) PopExpired(now time.Time) []T {
	var expired []T
	for len(t.entries) > 0 {
		last := t.entries[len(t.entries)-1]
		if last.deadline.After(now) {
			break
		}
		expired = append(expired, last.id)
		t.entries = t.entries[:len(t.entries)-1]
	}
	return expired
}

// Retain drops every timer whose id fails pred, used when the ring
// window the ids index into has advanced past them: a stale timer left
// behind would otherwise fire against a slot that has since been
// reused by a newer value.
func (t *Timers[T]) Retain(pred func(T) bool) {
	kept := t.entries[:0]
	for _, e := range t.entries {
		if pred(e.id) {
			kept = append(kept, e)
		}
	}
	t.entries = kept
}

// Cancel removes the first timer scheduled for id, if any, reporting
// whether one was found. Used when a response arrives before the
// deadline so the stale timer never fires.
func (t *Timers[T]) Cancel(id T, equal func(a, b T) bool) bool {
	for i, e := range t.entries {
		if equal(e.id, id) {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}
