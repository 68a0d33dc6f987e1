package pending

import "time"

// Expired pairs a timed-out identifier with the message that was
// waiting on it.
type Expired[T comparable, M any] struct {
	ID  T
	Msg M
}

// PendingMsgs tracks in-flight requests keyed by id, each carrying a
// deadline. A response delivered via PullMsg and a deadline reclaimed
// via PullExpired are mutually exclusive: whichever happens first
// deletes the map entry, so the other can never also observe it.
type PendingMsgs[T comparable, M any] struct {
	msgs   map[T]M
	timers *Timers[T]
}

// NewPendingMsgs returns an empty pending-message tracker.
func NewPendingMsgs[T comparable, M any]() *PendingMsgs[T, M] {
	return &PendingMsgs[T, M]{
		msgs:   make(map[T]M),
		timers: NewTimers[T](),
	}
}

// Len reports how many requests are currently in flight.
func (p *PendingMsgs[T, M]) Len() int { return len(p.msgs) }

// Push registers msg as awaiting a response to id, to be reclaimed as
// a timeout if no response arrives before deadline.
func (p *PendingMsgs[T, M]) Push(id T, msg M, deadline time.Time) {
	p.msgs[id] = msg
	p.timers.Push(id, deadline)
}

// PullMsg removes and returns the message awaiting id, if a response
// just arrived for it. It cancels the associated timer so it never
// fires as a spurious timeout. ok is false if id is unknown, which
// happens when id already timed out (or was never registered).
func (p *PendingMsgs[T, M]) PullMsg(id T) (msg M, ok bool) {
	msg, ok = p.msgs[id]
	if !ok {
		return msg, false
	}
	delete(p.msgs, id)
	p.timers.Cancel(id, func(a, b T) bool { return a == b })
	return msg, true
}

// PullExpired reclaims every request whose deadline has elapsed as of
// now, removing it from the pending set and returning the message that
// was waiting on it. An id whose response already arrived via PullMsg
// is no longer in msgs, so it is silently skipped here rather than
// double-delivered.
func (p *PendingMsgs[T, M]) PullExpired(now time.Time) []Expired[T, M] {
	var out []Expired[T, M]
	for _, id := range p.timers.PopExpired(now) {
		msg, ok := p.msgs[id]
		if !ok {
			continue
		}
		delete(p.msgs, id)
		out = append(out, Expired[T, M]{ID: id, Msg: msg})
	}
	return out
}

// NextWait reports how long until the soonest pending request times
// out, for use as the select-loop's timer branch duration.
func (p *PendingMsgs[T, M]) NextWait(now time.Time) (time.Duration, bool) {
	return p.timers.NextWait(now)
}
