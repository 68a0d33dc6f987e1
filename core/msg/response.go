package msg

import (
	"time"

	"github.com/prosaframework/prosa/core/perror"
	"go.opentelemetry.io/otel/trace"
)

// ResponseMsg carries a successful reply to a RequestMsg. ResponseTime
// is set to the originating request's begin time so Elapsed-style
// accounting composes end to end without the responder needing its
// own clock reading of when the request began.
type ResponseMsg[M any] struct {
	id           uint64
	service      string
	span         trace.Span
	responseTime time.Time
	data         M
}

// NewResponseMsg builds a response to the given request, carrying
// data.
func NewResponseMsg[M any](req *RequestMsg[M], data M) *ResponseMsg[M] {
	return &ResponseMsg[M]{
		id:           req.id,
		service:      req.service,
		span:         req.span,
		responseTime: req.beginTime,
		data:         data,
	}
}

func (r *ResponseMsg[M]) ID() uint64            { return r.id }
func (r *ResponseMsg[M]) Service() string       { return r.service }
func (r *ResponseMsg[M]) Span() trace.Span      { return r.span }
func (r *ResponseMsg[M]) ResponseTime() time.Time { return r.responseTime }
func (r *ResponseMsg[M]) Data() M               { return r.data }

// ErrorMsg carries a failed reply to a RequestMsg: the same envelope
// fields as ResponseMsg, plus the ServiceError describing the failure.
type ErrorMsg[M any] struct {
	id           uint64
	service      string
	span         trace.Span
	responseTime time.Time
	kind         *perror.ServiceError
}

func (e *ErrorMsg[M]) ID() uint64              { return e.id }
func (e *ErrorMsg[M]) Service() string         { return e.service }
func (e *ErrorMsg[M]) Span() trace.Span        { return e.span }
func (e *ErrorMsg[M]) ResponseTime() time.Time { return e.responseTime }
func (e *ErrorMsg[M]) Kind() *perror.ServiceError { return e.kind }
