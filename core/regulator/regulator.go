package regulator

import (
	"context"
	"sync"
	"time"
)

// Regulator paces self-originated traffic to a target transactions-
// per-second ceiling and a maximum number of concurrently in-flight
// requests. A processor that injects requests (rather than only
// answering them) calls Tick before each dispatch, NotifySendTransaction
// once it actually sends, and NotifyReceiveTransaction when the
// matching response (or timeout) lands.
type Regulator struct {
	speed             *Speed
	maxTPS            float64
	timeoutThreshold  time.Duration
	maxConcurrent     int

	mu        sync.Mutex
	inFlight  int
	waiters   []chan struct{}
}

// New returns a Regulator capping throughput at maxTPS over the given
// window, admitting at most maxConcurrent requests at once, and
// treating any response slower than timeoutThreshold as overhead to
// fold into the next pacing delay. maxTPS <= 0 disables rate pacing;
// maxConcurrent <= 0 disables the concurrency gate.
func New(maxTPS float64, window int, maxConcurrent int, timeoutThreshold time.Duration) *Regulator {
	return &Regulator{
		speed:            NewSpeed(window),
		maxTPS:           maxTPS,
		timeoutThreshold: timeoutThreshold,
		maxConcurrent:    maxConcurrent,
	}
}

// Tick blocks until fewer than maxConcurrent requests are in flight,
// then sleeps whatever GetDuration(maxTPS) reports. It owns the
// pacing delay synchronously, running on a goroutine that tolerates a
// brief block rather than forcing every caller onto an async sleep.
// Cancelling ctx before the concurrency gate opens returns ctx.Err()
// and consumes no permit.
func (r *Regulator) Tick(ctx context.Context) error {
	if err := r.acquire(ctx); err != nil {
		return err
	}
	if r.maxTPS > 0 {
		time.Sleep(r.speed.GetDuration(r.maxTPS))
	}
	return nil
}

func (r *Regulator) acquire(ctx context.Context) error {
	if r.maxConcurrent <= 0 {
		return nil
	}
	for {
		r.mu.Lock()
		if r.inFlight < r.maxConcurrent {
			r.inFlight++
			r.mu.Unlock()
			return nil
		}
		wake := make(chan struct{})
		r.waiters = append(r.waiters, wake)
		r.mu.Unlock()

		select {
		case <-wake:
			// Re-check: acquire is re-entered at the top of the loop.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// NotifySendTransaction records that a transaction was sent at now,
// feeding Speed's pacing window.
func (r *Regulator) NotifySendTransaction(now time.Time) {
	r.speed.Tick(now)
}

// NotifyReceiveTransaction releases one in-flight permit (waking the
// oldest waiter, if any) and, when elapsed exceeds the configured
// timeout threshold, primes that excess as overhead for the next
// pacing delay.
func (r *Regulator) NotifyReceiveTransaction(elapsed time.Duration) {
	r.mu.Lock()
	if r.inFlight > 0 {
		r.inFlight--
	}
	var wake chan struct{}
	if len(r.waiters) > 0 {
		wake = r.waiters[0]
		r.waiters = r.waiters[1:]
	}
	r.mu.Unlock()
	if wake != nil {
		close(wake)
	}

	if r.timeoutThreshold > 0 && elapsed > r.timeoutThreshold {
		r.speed.AddOverhead(elapsed - r.timeoutThreshold)
	}
}

// GetSpeed returns the regulator's current observed transactions per
// second.
func (r *Regulator) GetSpeed() float64 { return r.speed.GetSpeed() }

// AddOverhead primes an extra delay for the next Tick, the explicit
// form of the overhead-priming NotifyReceiveTransaction applies
// automatically past timeoutThreshold. An injector uses this to charge
// a full timeout's worth of cooldown for a service it couldn't reach
// at all, where there is no elapsed duration to compare against the
// threshold.
func (r *Regulator) AddOverhead(d time.Duration) { r.speed.AddOverhead(d) }

// InFlight returns the current number of in-flight requests admitted
// by Tick and not yet released by NotifyReceiveTransaction.
func (r *Regulator) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight
}
