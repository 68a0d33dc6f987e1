package inj_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prosaframework/prosa/core/adaptor"
	"github.com/prosaframework/prosa/core/bus"
	"github.com/prosaframework/prosa/core/proc"
	"github.com/prosaframework/prosa/core/tvf"
	"github.com/prosaframework/prosa/inj"
	"github.com/prosaframework/prosa/stub"
	"github.com/stretchr/testify/require"
)

// countingAdaptor wraps DummyAdaptor, counting every successful
// response it processes so the test can assert on throughput.
type countingAdaptor struct {
	inj.DummyAdaptor[*tvf.Simple]
	received *atomic.Int64
}

func (c countingAdaptor) ProcessResponse(resp *tvf.Simple, serviceName string) error {
	c.received.Add(1)
	return nil
}

// TestInjPacedAgainstEcho exercises an injector sending transactions
// to an ECHO stub at a regulated pace, observing every response come
// back through its own queue.
func TestInjPacedAgainstEcho(t *testing.T) {
	mp := bus.NewMainProc[*tvf.Simple]("test", nil, nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mp.Run(ctx)

	sp := stub.New[*tvf.Simple]("stub", stub.NewSettings([]string{"ECHO"}))
	stubHandle := mp.NewProcHandle(1, "stub", sp.Queue())
	go proc.Supervise[*tvf.Simple, adaptor.Adaptor[*tvf.Simple]](ctx, stubHandle, sp, stub.ParotAdaptor[*tvf.Simple]{})

	require.Eventually(t, func() bool {
		return mp.Handle().LoadServiceTable().ExistProcService("ECHO")
	}, time.Second, time.Millisecond)

	settings := inj.NewSettings("ECHO")
	settings.MaxSpeed = 50
	settings.TimeoutThreshold = 200 * time.Millisecond

	ip := inj.New[*tvf.Simple]("inj", settings)
	injHandle := mp.NewProcHandle(2, "inj", ip.Queue())

	var received atomic.Int64
	adapt := countingAdaptor{
		DummyAdaptor: inj.DummyAdaptor[*tvf.Simple]{New: func() *tvf.Simple { return tvf.NewSimple() }},
		received:     &received,
	}
	go proc.Supervise[*tvf.Simple, inj.Adaptor[*tvf.Simple]](ctx, injHandle, ip, adapt)

	require.Eventually(t, func() bool {
		return received.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
}
