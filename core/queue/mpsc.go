package queue

import (
	"runtime"
	"sync/atomic"
)

// MPSC is a bounded, lock-free ring buffer for many producers and one
// consumer. Head and tail are atomic counters modulo capacity; a slot
// holds an atomic pointer to the queued element, nil when empty.
//
// Some implementations specialize this over two index widths (up to
// 65,535 and up to 2^32-1 entries) to save a few bytes per counter.
// Go's atomic package has no such narrowing benefit, so this
// rendition collapses both into one capacity-parameterized type.
type MPSC[T any] struct {
	capacity uint32
	head     atomic.Uint32
	tail     atomic.Uint32
	slots    []atomic.Pointer[T]
}

// NewMPSC returns an empty MPSC queue that can hold at most capacity-1
// elements at once (one slot is always kept free to distinguish full
// from empty).
func NewMPSC[T any](capacity uint32) *MPSC[T] {
	if capacity < 2 {
		capacity = 2
	}
	return &MPSC[T]{
		capacity: capacity,
		slots:    make([]atomic.Pointer[T], capacity),
	}
}

// Cap returns the maximum number of elements the queue can hold.
func (q *MPSC[T]) Cap() int { return int(q.capacity) - 1 }

// Len returns a point-in-time estimate of the number of queued elements.
// It is racy by construction under concurrent producers/consumer; it is
// meant for metrics, not for correctness decisions.
func (q *MPSC[T]) Len() int {
	head := q.head.Load()
	tail := q.tail.Load()
	return int((tail - head + q.capacity) % q.capacity)
}

// IsEmpty reports whether the queue currently has no element.
func (q *MPSC[T]) IsEmpty() bool {
	return q.head.Load() == q.tail.Load()
}

// Push reserves the next ring slot via a CAS-advance of tail and
// publishes value into it. It fails with ErrFull, returning value
// intact, when the ring is full.
func (q *MPSC[T]) Push(value T) *QueueError[T] {
	for {
		tail := q.tail.Load()
		head := q.head.Load()
		next := (tail + 1) % q.capacity
		if next == head {
			return &QueueError[T]{Kind: ErrFull, Value: value, Len: q.Cap()}
		}
		if q.tail.CompareAndSwap(tail, next) {
			q.slots[tail].Store(&value)
			return nil
		}
	}
}

// Pull removes and returns the oldest element. It returns ErrEmpty
// immediately if head == tail; it never blocks otherwise, but may spin
// briefly waiting for an in-flight producer whose CAS has reserved the
// slot but has not yet published into it.
func (q *MPSC[T]) Pull() (T, *QueueError[T]) {
	var zero T
	head := q.head.Load()
	tail := q.tail.Load()
	if head == tail {
		return zero, &QueueError[T]{Kind: ErrEmpty}
	}

	var ptr *T
	for {
		ptr = q.slots[head].Swap(nil)
		if ptr != nil {
			break
		}
		runtime.Gosched()
	}
	q.head.Store((head + 1) % q.capacity)
	return *ptr, nil
}
