package proc

import (
	"context"

	"github.com/prosaframework/prosa/core/msg"
	"github.com/prosaframework/prosa/core/queue"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// ProcBusParam is a processor's handle onto the main bus: everything
// it needs to register and deregister itself, its queues, and the
// service names it advertises, plus the observability handles scoped
// to it. core/bus's ProcHandle satisfies this
// interface; core/proc never imports core/bus, so the dependency runs
// one way only.
type ProcBusParam[M any] interface {
	// AddProc registers the processor with the main task.
	AddProc(ctx context.Context) error
	// RemoveProc deregisters the processor, carrying the fatal cause
	// if the loop is giving up (nil on a clean exit).
	RemoveProc(ctx context.Context, cause error) error
	// AddProcQueue registers an additional internal-message queue
	// under this processor, identified by qid.
	AddProcQueue(ctx context.Context, ch *queue.Channel[msg.InternalMsg[M]], qid uint32) error
	// RemoveProcQueue deregisters one of the processor's queues.
	RemoveProcQueue(ctx context.Context, qid uint32) error
	// AddService advertises names for queue qid.
	AddService(ctx context.Context, names []string, qid uint32) error
	// AddServiceProc advertises names for every queue this processor
	// owns.
	AddServiceProc(ctx context.Context, names []string) error
	// RemoveService withdraws names from queue qid.
	RemoveService(ctx context.Context, names []string, qid uint32) error
	// RemoveServiceProc withdraws names from every queue this
	// processor owns.
	RemoveServiceProc(ctx context.Context, names []string) error
	// IsStopping reports whether the main task has begun shutdown.
	IsStopping() bool
	// Logger returns a logger scoped to name.
	Logger(name string) *logrus.Entry
	// Tracer returns a tracer scoped to name.
	Tracer(name string) trace.Tracer
}

// ThreadMultiplicity is a processor's preferred executor shape: 0
// reuses the caller's goroutine/executor, 1 asks for one dedicated
// worker, n>1 asks for a dedicated pool of n workers. core/proc treats
// this as advisory metadata; the concrete executor strategy lives in
// whatever embeds Supervise.
type ThreadMultiplicity int

// Proc is the contract a concrete processor satisfies. M is the
// message payload type; A is the adaptor type the processor delegates
// business logic to.
type Proc[M any, A any] interface {
	// Settings returns the processor's restart-backoff configuration.
	Settings() ProcSettings
	// ThreadMultiplicity reports the processor's preferred executor
	// shape.
	ThreadMultiplicity() ThreadMultiplicity
	// InternalRun is the processor's main loop body. A nil return is a
	// clean exit (no restart); a non-nil error is handed to the
	// supervision loop to decide between restart and fatal exit.
	InternalRun(ctx context.Context, bus ProcBusParam[M], adapt A) error
}

// Epilogue is an optional extension a Proc may implement to run once
// after Supervise has decided to stop retrying, for releasing
// resources InternalRun itself doesn't own.
type Epilogue interface {
	// ProcEpilogue runs with the terminal cause: nil on a clean exit
	// or shutdown, non-nil on a fatal error.
	ProcEpilogue(ctx context.Context, cause error)
}
