package msg

import (
	"context"
	"sync"
	"time"

	"github.com/prosaframework/prosa/core/perror"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RequestMsg is a single in-flight request: an id, the target service
// name, a tracing span, an optional payload, the time it was created,
// and the sink its reply must eventually travel through.
type RequestMsg[M any] struct {
	id        uint64
	service   string
	span      trace.Span
	beginTime time.Time

	mu   sync.Mutex
	data *M
	sink ResponseSink[M]
}

// NewRequestMsg constructs a request targeting service, carrying data,
// replying through sink. If ctx already carries a span, the new
// request's span is a child of it; otherwise a root span annotated
// with the service name is started. The returned context carries the
// new span so the caller can propagate it to whatever it does next.
func NewRequestMsg[M any](ctx context.Context, tracer trace.Tracer, service string, data M, sink ResponseSink[M]) (*RequestMsg[M], context.Context) {
	spanCtx, span := tracer.Start(ctx, "prosa.request",
		trace.WithAttributes(attribute.String("prosa.service", service)))
	return &RequestMsg[M]{
		id:        NextID(),
		service:   service,
		span:      span,
		beginTime: time.Now(),
		data:      &data,
		sink:      sink,
	}, spanCtx
}

// ID returns the request's process-wide unique identifier.
func (r *RequestMsg[M]) ID() uint64 { return r.id }

// Service returns the request's target service name.
func (r *RequestMsg[M]) Service() string { return r.service }

// Span returns the request's tracing span.
func (r *RequestMsg[M]) Span() trace.Span { return r.span }

// BeginTime returns when the request was constructed.
func (r *RequestMsg[M]) BeginTime() time.Time { return r.beginTime }

// Elapsed reports the wall-clock time since BeginTime, or 0 if the
// clock appears to have gone backwards.
func (r *RequestMsg[M]) Elapsed() time.Duration {
	d := time.Since(r.beginTime)
	if d < 0 {
		return 0
	}
	return d
}

// EnterSpan pushes the request's span onto ctx for the duration of
// the returned scope, returning a context carrying it and a function
// that ends the span. Callers processing a request should defer the
// returned function.
func (r *RequestMsg[M]) EnterSpan(ctx context.Context) (context.Context, func()) {
	spanCtx := trace.ContextWithSpan(ctx, r.span)
	return spanCtx, func() { r.span.End() }
}

// TakeData transfers ownership of the payload to the caller. A second
// call (or a call after TakeDataIf has already matched) returns
// perror.NoData().
func (r *RequestMsg[M]) TakeData() (M, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		var zero M
		return zero, perror.NoData()
	}
	v := *r.data
	r.data = nil
	return v, nil
}

// TakeDataIf transfers ownership of the payload only if pred(data) is
// true, leaving the payload in place otherwise so a later accessor can
// still observe it.
func (r *RequestMsg[M]) TakeDataIf(pred func(M) bool) (M, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		var zero M
		return zero, false, perror.NoData()
	}
	if !pred(*r.data) {
		var zero M
		return zero, false, nil
	}
	v := *r.data
	r.data = nil
	return v, true, nil
}

// ReturnToSender consumes the request, sending resp through the saved
// sink and replacing it with the sentinel so any later attempt on this
// request observes a closed sink. On a closed sink it returns the
// response payload back to the caller so it isn't silently lost.
func (r *RequestMsg[M]) ReturnToSender(resp *ResponseMsg[M]) *perror.SendError[InternalMsg[M]] {
	r.mu.Lock()
	defer r.mu.Unlock()
	sink := r.sink
	r.sink = NoneSink[M]()
	if sendErr := sink.Deliver(&ResponseEnvelope[M]{Msg: resp}); sendErr != nil {
		return sendErr
	}
	return nil
}

// ReturnErrorToSender is the error dual of ReturnToSender, additionally
// logging a WARN event carrying the ServiceError ("error messages
// additionally emit a WARN event ... on entry").
func (r *RequestMsg[M]) ReturnErrorToSender(kind *perror.ServiceError) *perror.SendError[InternalMsg[M]] {
	r.mu.Lock()
	sink := r.sink
	r.sink = NoneSink[M]()
	r.mu.Unlock()

	errMsg := &ErrorMsg[M]{
		id:           r.id,
		service:      r.service,
		span:         r.span,
		responseTime: r.beginTime,
		kind:         kind,
	}
	logrus.WithFields(logrus.Fields{
		"prosa.request_id": r.id,
		"prosa.service":    r.service,
		"prosa.error_code":  kind.Code(),
	}).Warn(kind.Error())

	return sink.Deliver(&ErrorEnvelope[M]{Msg: errMsg})
}

// ReturnResultToSender dispatches between ReturnToSender and
// ReturnErrorToSender depending on which of resp/kind is non-nil.
// Exactly one of resp, kind should be provided; if both are, resp wins.
func (r *RequestMsg[M]) ReturnResultToSender(resp *ResponseMsg[M], kind *perror.ServiceError) *perror.SendError[InternalMsg[M]] {
	if resp != nil {
		return r.ReturnToSender(resp)
	}
	return r.ReturnErrorToSender(kind)
}
