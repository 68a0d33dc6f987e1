package regulator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeedEmptyWindow(t *testing.T) {
	s := NewSpeed(5)
	assert.Equal(t, float64(0), s.GetSpeed())
	assert.Equal(t, 0, s.Count())
}

func TestSpeedComputesRate(t *testing.T) {
	s := NewSpeed(5)
	base := time.Unix(0, 0)
	s.Tick(base)
	s.Tick(base.Add(200 * time.Millisecond))
	s.Tick(base.Add(400 * time.Millisecond))

	// 2 gaps of 200ms each recorded so far => 1000*2/400 = 5 tx/s.
	assert.InDelta(t, 5.0, s.GetSpeed(), 0.001)
	assert.Equal(t, 2, s.Count())
}

func TestSpeedWindowClampedToMinimum(t *testing.T) {
	s := NewSpeed(1)
	assert.Equal(t, MinWindow, s.window)
}

func TestSpeedGetDurationUsesConfiguredWindow(t *testing.T) {
	s := NewSpeed(5)
	base := time.Unix(0, 0)
	// Record 4 gaps of 100ms (5 ticks), total elapsed so far = 400ms.
	for i := 0; i < 5; i++ {
		s.Tick(base.Add(time.Duration(i) * 100 * time.Millisecond))
	}
	// ideal = 1000*5/10 = 500ms; elapsed so far = 400ms; wait = 100ms.
	d := s.GetDuration(10)
	assert.InDelta(t, float64(100*time.Millisecond), float64(d), float64(5*time.Millisecond))
}

func TestSpeedGetDurationNeverNegative(t *testing.T) {
	s := NewSpeed(5)
	base := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		s.Tick(base.Add(time.Duration(i) * time.Second))
	}
	assert.Equal(t, time.Duration(0), s.GetDuration(1000))
}

func TestSpeedOverheadFoldsIntoNextDuration(t *testing.T) {
	s := NewSpeed(5)
	s.AddOverhead(50 * time.Millisecond)
	d := s.GetDuration(1000000)
	assert.Equal(t, 50*time.Millisecond, d)
	// Consumed once.
	assert.Equal(t, time.Duration(0), s.GetDuration(1000000))
}

func TestRegulatorConcurrencyGate(t *testing.T) {
	r := New(0, 5, 1, 0)
	ctx := context.Background()

	require.NoError(t, r.Tick(ctx))
	assert.Equal(t, 1, r.InFlight())

	done := make(chan error, 1)
	go func() { done <- r.Tick(ctx) }()

	select {
	case <-done:
		t.Fatal("second Tick should have blocked while at capacity")
	case <-time.After(20 * time.Millisecond):
	}

	r.NotifyReceiveTransaction(0)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second Tick never unblocked after a slot freed")
	}
}

func TestRegulatorTickCancelledByContext(t *testing.T) {
	r := New(0, 5, 1, 0)
	ctx := context.Background()
	require.NoError(t, r.Tick(ctx))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	err := r.Tick(cctx)
	assert.ErrorIs(t, err, context.Canceled)
	// The cancelled waiter must not have consumed a permit.
	assert.Equal(t, 1, r.InFlight())
}

func TestRegulatorOverheadPrimedOnSlowResponse(t *testing.T) {
	r := New(1000000, 5, 0, 10*time.Millisecond)
	r.NotifyReceiveTransaction(50 * time.Millisecond)
	d := r.speed.GetDuration(1000000)
	assert.GreaterOrEqual(t, d, 40*time.Millisecond)
}
