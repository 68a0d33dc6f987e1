package bus

import (
	"context"
	"sync/atomic"

	"github.com/prosaframework/prosa/core/perror"
	"github.com/prosaframework/prosa/core/queue"
	"github.com/prosaframework/prosa/core/service"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// busCore is the state every handle (Main, ProcHandle) and the runner
// (MainProc) share a pointer to: the control channel, the published
// service table, the shutdown flag, and the observability roots. Only
// MainProc.Run's goroutine ever mutates the routing table (via
// registry.Mutate) or the private queues index; everything in busCore
// itself is safe for concurrent use by any number of handles.
type busCore[M any] struct {
	name           string
	control        *queue.Channel[ControlMsg]
	registry       *service.Registry[M]
	stopping       atomic.Bool
	logger         *logrus.Logger
	tracerProvider trace.TracerProvider
}

func (c *busCore[M]) LoadServiceTable() *service.ServiceTable[M] { return c.registry.Load() }

func (c *busCore[M]) IsStopping() bool { return c.stopping.Load() }

func (c *busCore[M]) Logger(name string) *logrus.Entry {
	return c.logger.WithField("proc", name)
}

func (c *busCore[M]) Tracer(name string) trace.Tracer {
	return c.tracerProvider.Tracer(name)
}

// send pushes m onto the control channel, blocking until there is
// room or ctx is done. The control channel is itself an MPSC Channel,
// so any number of processor goroutines may call this concurrently.
func (c *busCore[M]) send(ctx context.Context, m ControlMsg) error {
	if err := c.control.Send(ctx, m); err != nil {
		return perror.InternalMainQueue("send", 0, err.Error())
	}
	return nil
}
