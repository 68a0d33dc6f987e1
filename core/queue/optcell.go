package queue

import (
	"runtime"
	"sync/atomic"
)

// IDInQueue reports whether slot id is still inside the open window
// [head, tail) of a ring buffer, accounting for wraparound. It is the
// only synchronization primitive shared between a consumer and a
// second subsystem (the timer machinery in core/pending) that wants to
// race-extract a specific slot without coordinating with the consumer.
func IDInQueue(head, tail, id uint32) bool {
	if head > tail {
		return id >= head || id < tail
	}
	return head <= id && id < tail
}

// OptCell is a single-producer/multi-consumer ring buffer whose slots
// hold an optional value: a second accessor (TryPullID) may "mark
// consumed" a slot by id without advancing head, letting the timer
// machinery race-extract a value whose deadline has expired while the
// normal consumer loop (Pull) simply skips the now-empty cell.
type OptCell[T any] struct {
	capacity uint32
	head     atomic.Uint32
	tail     atomic.Uint32
	slots    []atomic.Pointer[T]
}

// NewOptCell returns an empty OptCell queue of the given capacity.
func NewOptCell[T any](capacity uint32) *OptCell[T] {
	if capacity < 2 {
		capacity = 2
	}
	return &OptCell[T]{
		capacity: capacity,
		slots:    make([]atomic.Pointer[T], capacity),
	}
}

// Cap returns the maximum number of elements the queue can hold.
func (q *OptCell[T]) Cap() int { return int(q.capacity) - 1 }

// MaxCapacity returns the ring's slot count (including the one slot
// that is always kept free), matching the window math used by
// IDInQueue and the timed sender's retain pass.
func (q *OptCell[T]) MaxCapacity() uint32 { return q.capacity }

func (q *OptCell[T]) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	return int((tail - head + q.capacity) % q.capacity)
}

func (q *OptCell[T]) IsEmpty() bool { return q.head.Load() == q.tail.Load() }

// Push reserves the next slot and publishes value into it, returning
// the head observed at push time and the slot id the value landed in.
// The head is returned so a caller (the timed queue) can retire stale
// timers whose id has since fallen outside the window.
func (q *OptCell[T]) Push(value T) (headAtPush, id uint32, qerr *QueueError[T]) {
	for {
		tail := q.tail.Load()
		head := q.head.Load()
		next := (tail + 1) % q.capacity
		if next == head {
			return 0, 0, &QueueError[T]{Kind: ErrFull, Value: value, Len: q.Cap()}
		}
		if q.tail.CompareAndSwap(tail, next) {
			q.slots[tail].Store(&value)
			return head, tail, nil
		}
	}
}

// TryPullID extracts the value at slot id if it is still inside the
// current [head, tail) window and has not already been consumed. It
// does not advance head: the normal Pull consumer skips empty cells it
// encounters. A race that loses (another pull already emptied the
// cell, or the window has moved past id) simply reports ok=false.
func (q *OptCell[T]) TryPullID(id uint32) (value T, ok bool) {
	head := q.head.Load()
	tail := q.tail.Load()
	if id >= q.capacity || !IDInQueue(head, tail, id) {
		var zero T
		return zero, false
	}
	ptr := q.slots[id].Swap(nil)
	if ptr == nil {
		var zero T
		return zero, false
	}
	return *ptr, true
}

// Pull removes and returns the oldest live element, skipping over
// cells already emptied by TryPullID. It returns ErrEmpty immediately
// if the window is empty.
func (q *OptCell[T]) Pull() (T, *QueueError[T]) {
	var zero T
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		if head == tail {
			return zero, &QueueError[T]{Kind: ErrEmpty}
		}

		ptr := q.slots[head].Swap(nil)
		if !q.head.CompareAndSwap(head, (head+1)%q.capacity) {
			// Another Pull advanced head first (TryPullID never moves
			// head); put back any value we took and retry. Pull has one
			// caller at a time, TryPullID being the other consumer.
			if ptr != nil {
				q.slots[head].Store(ptr)
			}
			runtime.Gosched()
			continue
		}
		if ptr != nil {
			return *ptr, nil
		}
		// Cell was already claimed by TryPullID; keep advancing.
	}
}

// TryPull is the same operation as Pull: both return ErrEmpty at once
// when the window is empty.
func (q *OptCell[T]) TryPull() (T, *QueueError[T]) {
	return q.Pull()
}
