package msg

import (
	"context"
	"testing"

	"github.com/prosaframework/prosa/core/perror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNextIDMonotonic(t *testing.T) {
	a := NextID()
	b := NextID()
	assert.Less(t, a, b)
}

func TestRequestTakeData(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	sink, ch := NewOneshotSink[string]()
	req, _ := NewRequestMsg[string](context.Background(), tracer, "ECHO", "hello", sink)

	v, err := req.TakeData()
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = req.TakeData()
	assert.Error(t, err)

	resp := NewResponseMsg(req, "hello")
	sendErr := req.ReturnToSender(resp)
	require.Nil(t, sendErr)

	delivered := <-ch
	envelope, ok := delivered.(*ResponseEnvelope[string])
	require.True(t, ok)
	assert.Equal(t, "hello", envelope.Msg.Data())
}

func TestRequestReturnToSenderOnlyOnce(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	sink, ch := NewOneshotSink[string]()
	req, _ := NewRequestMsg[string](context.Background(), tracer, "ECHO", "hi", sink)

	resp := NewResponseMsg(req, "hi")
	require.Nil(t, req.ReturnToSender(resp))
	<-ch

	// Second attempt observes the sentinel sink and fails.
	sendErr := req.ReturnToSender(resp)
	require.NotNil(t, sendErr)
	assert.Equal(t, perror.SendDrop, sendErr.Kind)
}

func TestRequestReturnErrorToSender(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	sink, ch := NewOneshotSink[string]()
	req, _ := NewRequestMsg[string](context.Background(), tracer, "ECHO", "hi", sink)

	kind := perror.NewUnableToReachService("ECHO")
	sendErr := req.ReturnErrorToSender(kind)
	require.Nil(t, sendErr)

	delivered := <-ch
	envelope, ok := delivered.(*ErrorEnvelope[string])
	require.True(t, ok)
	assert.Equal(t, kind, envelope.Msg.Kind())
}

func TestRequestTakeDataIfPredicateFalseLeavesDataInPlace(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	sink := NoneSink[int]()
	req, _ := NewRequestMsg[int](context.Background(), tracer, "SVC", 42, sink)

	_, matched, err := req.TakeDataIf(func(v int) bool { return v > 100 })
	require.NoError(t, err)
	assert.False(t, matched)

	v, err := req.TakeData()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRequestElapsedNonNegative(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	sink := NoneSink[int]()
	req, _ := NewRequestMsg[int](context.Background(), tracer, "SVC", 1, sink)
	assert.GreaterOrEqual(t, req.Elapsed().Nanoseconds(), int64(0))
}
