package proc

import (
	"context"
	"time"

	"github.com/prosaframework/prosa/core/perror"
)

// SuperviseOption configures an optional extension to Supervise.
type SuperviseOption func(*superviseConfig)

type superviseConfig struct {
	metrics  *Metrics
	procName string
}

// WithMetrics records a restart count against m every time Supervise
// restarts a processor, labeled by procName.
func WithMetrics(m *Metrics, procName string) SuperviseOption {
	return func(c *superviseConfig) {
		c.metrics = m
		c.procName = procName
	}
}

// Supervise runs proc.InternalRun in a loop, restarting it with
// exponential backoff on a recoverable error:
//  1. A clean (nil) return deregisters the processor and exits.
//  2. If the bus is already shutting down, deregister and exit
//     without restarting.
//  3. A non-recoverable error deregisters (carrying the error) and
//     exits.
//  4. Otherwise deregister (carrying the error), grow wait, then
//     sleep wait + the error's recovery extension before retrying.
//
// wait grows as wait = min(wait+base, cap)·2 before each sleep (not
// after), which is what produces the 100ms/300ms/700ms/1500ms.. cadence
// for base=50ms, cap=1s.
//
// Supervise returns when ctx is done or the loop exits for any of the
// reasons above; it runs proc.ProcEpilogue (if proc implements
// Epilogue) exactly once, with the terminal cause, before returning.
func Supervise[M any, A any](ctx context.Context, bus ProcBusParam[M], p Proc[M, A], adapt A, opts ...SuperviseOption) {
	cfg := &superviseConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	cause := runSupervised(ctx, bus, p, adapt, cfg)
	if epi, ok := p.(Epilogue); ok {
		epi.ProcEpilogue(ctx, cause)
	}
}

func runSupervised[M any, A any](ctx context.Context, bus ProcBusParam[M], p Proc[M, A], adapt A, cfg *superviseConfig) error {
	base, capSeconds := p.Settings().GetProcRestartDelay()
	cap := time.Duration(capSeconds) * time.Second
	var wait time.Duration

	for {
		err := p.InternalRun(ctx, bus, adapt)
		if err == nil {
			bus.RemoveProc(ctx, nil)
			return nil
		}

		if bus.IsStopping() {
			bus.RemoveProc(ctx, err)
			return err
		}

		pe := perror.Wrap(err)
		if !pe.Recoverable() {
			bus.RemoveProc(ctx, err)
			return err
		}

		bus.RemoveProc(ctx, err)
		cfg.metrics.recordRestart(cfg.procName)
		wait = minDuration(wait+base, cap) * 2

		timer := time.NewTimer(wait + pe.RecoveryDuration())
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
