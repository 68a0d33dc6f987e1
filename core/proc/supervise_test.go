package proc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prosaframework/prosa/core/msg"
	"github.com/prosaframework/prosa/core/perror"
	"github.com/prosaframework/prosa/core/queue"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

type fakeBus struct {
	mu        sync.Mutex
	stopping  bool
	removals  []error
	logger    *logrus.Entry
}

func newFakeBus() *fakeBus {
	return &fakeBus{logger: logrus.NewEntry(logrus.New())}
}

func (b *fakeBus) AddProc(context.Context) error { return nil }
func (b *fakeBus) RemoveProc(_ context.Context, cause error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removals = append(b.removals, cause)
	return nil
}
func (b *fakeBus) AddProcQueue(context.Context, *queue.Channel[msg.InternalMsg[string]], uint32) error {
	return nil
}
func (b *fakeBus) RemoveProcQueue(context.Context, uint32) error          { return nil }
func (b *fakeBus) AddService(context.Context, []string, uint32) error     { return nil }
func (b *fakeBus) AddServiceProc(context.Context, []string) error        { return nil }
func (b *fakeBus) RemoveService(context.Context, []string, uint32) error { return nil }
func (b *fakeBus) RemoveServiceProc(context.Context, []string) error     { return nil }
func (b *fakeBus) IsStopping() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopping
}
func (b *fakeBus) Logger(string) *logrus.Entry { return b.logger }
func (b *fakeBus) Tracer(string) trace.Tracer  { return trace.NewNoopTracerProvider().Tracer("test") }

func (b *fakeBus) removalCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.removals)
}

type fakeSettings struct {
	base time.Duration
	cap  uint32
}

func (s fakeSettings) GetProcRestartDelay() (time.Duration, uint32) { return s.base, s.cap }

type countingProc struct {
	settings ProcSettings
	mu       sync.Mutex
	attempts int
	failWith func(attempt int) error
}

func (p *countingProc) Settings() ProcSettings             { return p.settings }
func (p *countingProc) ThreadMultiplicity() ThreadMultiplicity { return 0 }
func (p *countingProc) InternalRun(ctx context.Context, bus ProcBusParam[string], adapt string) error {
	p.mu.Lock()
	p.attempts++
	attempt := p.attempts
	p.mu.Unlock()
	return p.failWith(attempt)
}

func TestSuperviseCleanExitDeregistersOnce(t *testing.T) {
	bus := newFakeBus()
	p := &countingProc{
		settings: fakeSettings{base: time.Millisecond, cap: 1},
		failWith: func(attempt int) error { return nil },
	}
	Supervise[string](context.Background(), bus, p, "adapt")
	assert.Equal(t, 1, bus.removalCount())
	assert.Nil(t, bus.removals[0])
}

func TestSuperviseNonRecoverableErrorExitsWithoutRestart(t *testing.T) {
	bus := newFakeBus()
	fatal := errors.New("boom")
	p := &countingProc{
		settings: fakeSettings{base: time.Millisecond, cap: 1},
		failWith: func(attempt int) error { return perror.Fatal(fatal) },
	}
	Supervise[string](context.Background(), bus, p, "adapt")
	assert.Equal(t, 1, p.attempts)
	require.Len(t, bus.removals, 1)
	assert.Equal(t, perror.Fatal(fatal), bus.removals[0])
}

func TestSuperviseStoppingSkipsRestart(t *testing.T) {
	bus := newFakeBus()
	bus.stopping = true
	p := &countingProc{
		settings: fakeSettings{base: time.Millisecond, cap: 1},
		failWith: func(attempt int) error { return perror.Wrap(errors.New("retry me")) },
	}
	Supervise[string](context.Background(), bus, p, "adapt")
	assert.Equal(t, 1, p.attempts)
}

func TestSuperviseBackoffCadence(t *testing.T) {
	bus := newFakeBus()
	var mu sync.Mutex
	var gaps []time.Duration
	var last time.Time

	p := &countingProc{
		settings: fakeSettings{base: 50 * time.Millisecond, cap: 1},
		failWith: func(attempt int) error {
			mu.Lock()
			now := time.Now()
			if !last.IsZero() {
				gaps = append(gaps, now.Sub(last))
			}
			last = now
			mu.Unlock()
			if attempt >= 4 {
				return nil
			}
			return perror.Wrap(errors.New("retry me"))
		},
	}
	Supervise[string](context.Background(), bus, p, "adapt")

	require.Len(t, gaps, 3)
	expected := []time.Duration{100 * time.Millisecond, 300 * time.Millisecond, 700 * time.Millisecond}
	for i, want := range expected {
		assert.InDelta(t, float64(want), float64(gaps[i]), float64(60*time.Millisecond), "gap %d", i)
	}
}
