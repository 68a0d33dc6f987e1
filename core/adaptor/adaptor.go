package adaptor

import (
	"context"

	"github.com/prosaframework/prosa/core/perror"
)

// Result is what an Adaptor produces for a single request: either a
// payload or a ServiceError, never both.
type Result[M any] struct {
	Data M
	Err  *perror.ServiceError
}

// NewAdaptorError is returned by a factory function when an adaptor
// cannot be constructed from the settings it was given.
type NewAdaptorError struct {
	Reason string
}

func (e *NewAdaptorError) Error() string { return "adaptor: " + e.Reason }

// AdaptError wraps a failure the adaptor itself reports while
// processing a request,
// distinct from a Result.Err: this is a processor-fatal failure
// (the adaptor's own internal state broke), not a per-request
// ServiceError to hand back to a caller.
type AdaptError struct {
	Reason string
}

func (e *AdaptError) Error() string { return "adaptor: " + e.Reason }

// Adaptor is the business-logic boundary a processor delegates to.
// Settings is whatever the concrete adaptor's factory function needs;
// this package only defines the call shape, not a settings type.
type Adaptor[M any] interface {
	// Process answers req, synchronously (adaptor.Ready) or
	// asynchronously (adaptor.Async) depending on what it needs to do.
	Process(ctx context.Context, service string, req M) MaybeAsync[Result[M]]
}

// Factory constructs an Adaptor from opaque settings, returning
// NewAdaptorError on failure.
type Factory[M any] func(settings any) (Adaptor[M], *NewAdaptorError)
