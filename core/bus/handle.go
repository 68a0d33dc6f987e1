package bus

import (
	"context"

	"github.com/prosaframework/prosa/core/msg"
	"github.com/prosaframework/prosa/core/queue"
	"github.com/prosaframework/prosa/core/service"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// Main is the public, cheaply cloneable handle onto a running main
// task. Any component that needs to read the current routing table,
// check whether the process is shutting down, or ask for one scoped
// to the process as a whole (rather than one processor) holds one of
// these; copying it is just copying a pointer.
type Main[M any] struct {
	core *busCore[M]
}

// LoadServiceTable returns the currently published routing snapshot.
func (m Main[M]) LoadServiceTable() *service.ServiceTable[M] { return m.core.LoadServiceTable() }

// IsStopping reports whether shutdown has begun.
func (m Main[M]) IsStopping() bool { return m.core.IsStopping() }

// Logger returns a logger scoped to name.
func (m Main[M]) Logger(name string) *logrus.Entry { return m.core.Logger(name) }

// Tracer returns a tracer scoped to name.
func (m Main[M]) Tracer(name string) trace.Tracer { return m.core.Tracer(name) }

// Command broadcasts command to every registered processor queue.
func (m Main[M]) Command(ctx context.Context, command string) error {
	return m.core.send(ctx, &Command{Command: command})
}

// Shutdown marks the process as stopping and broadcasts a shutdown
// notice to every registered processor queue. IsStopping becomes true
// the instant this call returns, even before the main task's own
// goroutine has processed the message, so callers racing a shutdown
// never observe a stale "still running" view.
func (m Main[M]) Shutdown(ctx context.Context, reason string) error {
	m.core.stopping.Store(true)
	return m.core.send(ctx, &Shutdown{Reason: reason})
}

// ProcHandle is the handle one processor instance holds on the main
// task. It implements core/proc.ProcBusParam[M] structurally: core/bus
// never imports core/proc, so the dependency only runs the other way.
type ProcHandle[M any] struct {
	core         *busCore[M]
	procID       uint32
	procName     string
	defaultQueue *queue.Channel[msg.InternalMsg[M]]
}

// AddProc registers the processor's default queue (queue id 0).
func (h *ProcHandle[M]) AddProc(ctx context.Context) error {
	return h.AddProcQueue(ctx, h.defaultQueue, 0)
}

// RemoveProc deregisters the processor and every queue it owns.
func (h *ProcHandle[M]) RemoveProc(ctx context.Context, cause error) error {
	return h.core.send(ctx, &DeleteProc{ProcID: h.procID, Cause: cause})
}

// AddProcQueue registers an additional queue under this processor.
func (h *ProcHandle[M]) AddProcQueue(ctx context.Context, ch *queue.Channel[msg.InternalMsg[M]], qid uint32) error {
	entry := &service.ProcService[M]{ProcID: h.procID, ProcName: h.procName, QueueID: qid, Sender: ch}
	return h.core.send(ctx, &NewProcQueue[M]{Entry: entry})
}

// RemoveProcQueue deregisters one of the processor's queues.
func (h *ProcHandle[M]) RemoveProcQueue(ctx context.Context, qid uint32) error {
	return h.core.send(ctx, &DeleteProcQueue{ProcID: h.procID, QueueID: qid})
}

// AddService advertises names for queue qid.
func (h *ProcHandle[M]) AddService(ctx context.Context, names []string, qid uint32) error {
	return h.core.send(ctx, &NewService{Names: names, ProcID: h.procID, QueueID: qid})
}

// AddServiceProc advertises names for every queue this processor owns.
func (h *ProcHandle[M]) AddServiceProc(ctx context.Context, names []string) error {
	return h.core.send(ctx, &NewProcService{Names: names, ProcID: h.procID})
}

// RemoveService withdraws names from queue qid.
func (h *ProcHandle[M]) RemoveService(ctx context.Context, names []string, qid uint32) error {
	return h.core.send(ctx, &DeleteService{Names: names, ProcID: h.procID, QueueID: qid})
}

// RemoveServiceProc withdraws names from every queue this processor owns.
func (h *ProcHandle[M]) RemoveServiceProc(ctx context.Context, names []string) error {
	return h.core.send(ctx, &DeleteProcService{Names: names, ProcID: h.procID})
}

// IsStopping reports whether the main task has begun shutdown.
func (h *ProcHandle[M]) IsStopping() bool { return h.core.IsStopping() }

// Logger returns a logger scoped to this processor and name.
func (h *ProcHandle[M]) Logger(name string) *logrus.Entry {
	return h.core.Logger(h.procName + "." + name)
}

// Tracer returns a tracer scoped to name.
func (h *ProcHandle[M]) Tracer(name string) trace.Tracer { return h.core.Tracer(name) }
