package queue

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Channel layers asynchronous send/recv semantics over a bounded
// MPSC ring: Send awaits a permit when the ring is full instead of
// failing outright, and Recv awaits a wake-up when the ring is
// momentarily empty instead of busy-polling. It is the transport every
// processor's internal message queue is built on.
type Channel[T any] struct {
	ring    *MPSC[T]
	permits *semaphore.Weighted
	notify  chan struct{}
}

// NewChannel returns a Channel whose ring can hold capacity-1
// elements (one slot is always kept free, same as the underlying
// MPSC). Each queued element holds one permit of the semaphore; the
// permit is released back when the consumer pulls the element out.
func NewChannel[T any](capacity uint32) *Channel[T] {
	ring := NewMPSC[T](capacity)
	return &Channel[T]{
		ring:    ring,
		permits: semaphore.NewWeighted(int64(ring.Cap())),
		notify:  make(chan struct{}, 1),
	}
}

// Cap returns the channel's maximum number of queued elements.
func (c *Channel[T]) Cap() int { return c.ring.Cap() }

// Len returns a point-in-time estimate of the number of queued
// elements.
func (c *Channel[T]) Len() int { return c.ring.Len() }

// TrySend pushes value without blocking, failing with ErrFull if no
// permit is immediately available.
func (c *Channel[T]) TrySend(value T) *QueueError[T] {
	if !c.permits.TryAcquire(1) {
		return &QueueError[T]{Kind: ErrFull, Value: value, Len: c.ring.Cap()}
	}
	if err := c.ring.Push(value); err != nil {
		// Permit accounting and ring capacity are kept in lockstep by
		// construction, so this only guards a future refactor, not a
		// path exercised today.
		c.permits.Release(1)
		return err
	}
	c.wakeConsumer()
	return nil
}

// Send blocks until a permit is available (the ring has room) or ctx
// is done.
func (c *Channel[T]) Send(ctx context.Context, value T) error {
	if err := c.permits.Acquire(ctx, 1); err != nil {
		return err
	}
	if err := c.ring.Push(value); err != nil {
		c.permits.Release(1)
		return err
	}
	c.wakeConsumer()
	return nil
}

// TryRecv pulls the oldest element without blocking, returning
// ErrEmpty if none is available.
func (c *Channel[T]) TryRecv() (T, *QueueError[T]) {
	v, err := c.ring.Pull()
	if err == nil {
		c.permits.Release(1)
	}
	return v, err
}

// Recv blocks until an element is available or ctx is done.
func (c *Channel[T]) Recv(ctx context.Context) (T, error) {
	for {
		v, err := c.ring.Pull()
		if err == nil {
			c.permits.Release(1)
			return v, nil
		}
		select {
		case <-c.notify:
			continue
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

func (c *Channel[T]) wakeConsumer() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}
