package bus

import (
	"context"
	"testing"
	"time"

	"github.com/prosaframework/prosa/core/msg"
	"github.com/prosaframework/prosa/core/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startBus(t *testing.T) (*MainProc[string], context.Context, context.CancelFunc) {
	t.Helper()
	mp := NewMainProc[string]("test", nil, nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mp.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return mp, ctx, cancel
}

func TestAddProcPublishesServiceEnvelopeImmediately(t *testing.T) {
	mp, ctx, _ := startBus(t)
	ch := queue.NewChannel[msg.InternalMsg[string]](8)
	h := mp.NewProcHandle(1, "echo", ch)

	require.NoError(t, h.AddProc(ctx))

	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	m, err := ch.Recv(recvCtx)
	require.NoError(t, err)
	env, ok := m.(*msg.ServiceEnvelope[string])
	require.True(t, ok)
	assert.NotNil(t, env.Snapshot)
}

func TestAddServiceProcRoutesRequests(t *testing.T) {
	mp, ctx, _ := startBus(t)
	ch := queue.NewChannel[msg.InternalMsg[string]](8)
	h := mp.NewProcHandle(1, "echo", ch)

	require.NoError(t, h.AddProc(ctx))
	drainOne(t, ctx, ch)

	require.NoError(t, h.AddServiceProc(ctx, []string{"echo.v1"}))
	drainOne(t, ctx, ch)

	table := mp.Handle().LoadServiceTable()
	assert.True(t, table.ExistProcService("echo.v1"))
	svc, ok := table.GetProcService("echo.v1")
	require.True(t, ok)
	assert.Equal(t, uint32(1), svc.ProcID)
}

func TestRemoveServiceRequiresBothProcAndQueue(t *testing.T) {
	mp, ctx, _ := startBus(t)
	ch1 := queue.NewChannel[msg.InternalMsg[string]](8)
	ch2 := queue.NewChannel[msg.InternalMsg[string]](8)
	h1 := mp.NewProcHandle(1, "a", ch1)
	h2 := mp.NewProcHandle(2, "b", ch2)

	require.NoError(t, h1.AddProc(ctx))
	drainOne(t, ctx, ch1)
	require.NoError(t, h2.AddProc(ctx))
	drainOne(t, ctx, ch2)

	require.NoError(t, h1.AddServiceProc(ctx, []string{"shared"}))
	drainOne(t, ctx, ch1)
	require.NoError(t, h2.AddServiceProc(ctx, []string{"shared"}))
	drainOne(t, ctx, ch2)

	require.NoError(t, h1.RemoveService(ctx, []string{"shared"}, 0))
	drainOne(t, ctx, ch1)
	drainOne(t, ctx, ch2)

	table := mp.Handle().LoadServiceTable()
	require.True(t, table.ExistProcService("shared"))
	svc, _ := table.GetProcService("shared")
	assert.Equal(t, uint32(2), svc.ProcID)
}

func TestDeleteProcRemovesEveryServiceItOwned(t *testing.T) {
	mp, ctx, _ := startBus(t)
	ch := queue.NewChannel[msg.InternalMsg[string]](8)
	h := mp.NewProcHandle(1, "echo", ch)

	require.NoError(t, h.AddProc(ctx))
	drainOne(t, ctx, ch)
	require.NoError(t, h.AddServiceProc(ctx, []string{"echo.v1"}))
	drainOne(t, ctx, ch)

	require.NoError(t, h.RemoveProc(ctx, nil))

	assert.Eventually(t, func() bool {
		return !mp.Handle().LoadServiceTable().ExistProcService("echo.v1")
	}, time.Second, time.Millisecond)
}

func TestShutdownBroadcastsAndDrainsTheBus(t *testing.T) {
	mp := NewMainProc[string]("test", nil, nil, 0)
	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- mp.Run(ctx) }()

	ch := queue.NewChannel[msg.InternalMsg[string]](8)
	h := mp.NewProcHandle(1, "echo", ch)
	require.NoError(t, h.AddProc(ctx))
	drainOne(t, ctx, ch)

	handle := mp.Handle()
	require.NoError(t, handle.Shutdown(ctx, "test shutdown"))
	assert.True(t, handle.IsStopping())

	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	m, err := ch.Recv(recvCtx)
	require.NoError(t, err)
	_, ok := m.(*msg.ShutdownEnvelope[string])
	assert.True(t, ok)

	require.NoError(t, h.RemoveProc(ctx, nil))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after the only processor deregistered")
	}
}

func drainOne(t *testing.T, ctx context.Context, ch *queue.Channel[msg.InternalMsg[string]]) {
	t.Helper()
	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_, err := ch.Recv(recvCtx)
	require.NoError(t, err)
}
