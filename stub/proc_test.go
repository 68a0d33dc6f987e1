package stub_test

import (
	"context"
	"testing"
	"time"

	"github.com/prosaframework/prosa/core/adaptor"
	"github.com/prosaframework/prosa/core/bus"
	"github.com/prosaframework/prosa/core/msg"
	"github.com/prosaframework/prosa/core/proc"
	"github.com/prosaframework/prosa/core/tvf"
	"github.com/prosaframework/prosa/stub"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

// TestStubEchoRoundTrip exercises an echo scenario: a client
// sends a request with tag 1 = "hello" to a stub registered for ECHO
// and expects the same value back with no error.
func TestStubEchoRoundTrip(t *testing.T) {
	mp := bus.NewMainProc[*tvf.Simple]("test", nil, nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mp.Run(ctx)

	sp := stub.New[*tvf.Simple]("stub", stub.NewSettings([]string{"ECHO"}))
	h := mp.NewProcHandle(1, "stub", sp.Queue())
	go proc.Supervise[*tvf.Simple, adaptor.Adaptor[*tvf.Simple]](ctx, h, sp, stub.ParotAdaptor[*tvf.Simple]{})

	require.Eventually(t, func() bool {
		return mp.Handle().LoadServiceTable().ExistProcService("ECHO")
	}, time.Second, time.Millisecond)

	entry, ok := mp.Handle().LoadServiceTable().GetProcService("ECHO")
	require.True(t, ok)

	req := tvf.NewSimple()
	req.PutString(1, "hello")

	sink, replyCh := msg.NewOneshotSink[*tvf.Simple]()
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	reqMsg, _ := msg.NewRequestMsg[*tvf.Simple](ctx, tracer, "ECHO", req, sink)

	sendCtx, sendCancel := context.WithTimeout(ctx, time.Second)
	defer sendCancel()
	require.NoError(t, entry.Sender.Send(sendCtx, &msg.RequestEnvelope[*tvf.Simple]{Msg: reqMsg}))

	select {
	case delivery := <-replyCh:
		resp, ok := delivery.(*msg.ResponseEnvelope[*tvf.Simple])
		require.True(t, ok, "expected a response, got %T", delivery)
		val, err := resp.Msg.Data().GetString(1)
		require.NoError(t, err)
		require.Equal(t, "hello", val)
		require.GreaterOrEqual(t, resp.Msg.ID(), reqMsg.ID())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for stub response")
	}
}
