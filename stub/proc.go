package stub

import (
	"context"
	"fmt"

	"github.com/prosaframework/prosa/core/adaptor"
	"github.com/prosaframework/prosa/core/msg"
	"github.com/prosaframework/prosa/core/perror"
	"github.com/prosaframework/prosa/core/proc"
	"github.com/prosaframework/prosa/core/queue"
	"github.com/prosaframework/prosa/core/tvf"
	"github.com/sirupsen/logrus"
)

// Proc is the stub processor: it registers Settings.ServiceNames and
// answers every request for them by delegating to an
// adaptor.Adaptor[M].
type Proc[M tvf.Tvf] struct {
	name     string
	settings Settings
	queue    *queue.Channel[msg.InternalMsg[M]]
}

// New returns a Proc ready to be run under proc.Supervise. name is the
// processor's display name; settings.Capacity() sizes its internal
// message queue.
func New[M tvf.Tvf](name string, settings Settings) *Proc[M] {
	return &Proc[M]{
		name:     name,
		settings: settings,
		queue:    queue.NewChannel[msg.InternalMsg[M]](settings.Capacity()),
	}
}

// Queue returns the processor's internal message channel, the handle
// passed to bus.MainProc.NewProcHandle when starting it.
func (p *Proc[M]) Queue() *queue.Channel[msg.InternalMsg[M]] { return p.queue }

// Settings implements proc.Proc.
func (p *Proc[M]) Settings() proc.ProcSettings { return p.settings }

// ThreadMultiplicity implements proc.Proc: a stub processor is happy
// to share the caller's executor.
func (p *Proc[M]) ThreadMultiplicity() proc.ThreadMultiplicity { return 0 }

// InternalRun implements proc.Proc: register, advertise the configured
// services, then answer every inbound request until shutdown.
func (p *Proc[M]) InternalRun(ctx context.Context, bus proc.ProcBusParam[M], adapt adaptor.Adaptor[M]) error {
	if err := bus.AddProc(ctx); err != nil {
		return err
	}
	if err := bus.AddServiceProc(ctx, p.settings.ServiceNames); err != nil {
		return err
	}
	logger := bus.Logger(p.name)

	for {
		m, err := p.queue.Recv(ctx)
		if err != nil {
			return err
		}
		switch v := m.(type) {
		case *msg.RequestEnvelope[M]:
			p.handleRequest(ctx, v.Msg, adapt, logger)
		case *msg.ServiceEnvelope[M]:
			// A stub only ever answers requests routed directly to it;
			// it never looks up other services, so the snapshot is
			// simply discarded.
		case *msg.CommandEnvelope[M], *msg.ConfigEnvelope[M]:
			logger.WithField("msg_type", fmt.Sprintf("%T", m)).Debug("stub: command/config handling not implemented")
		case *msg.ShutdownEnvelope[M]:
			return nil
		case *msg.ResponseEnvelope[M], *msg.ErrorEnvelope[M]:
			return perror.Fatal(fmt.Errorf("stub processor %s received a %T, which it never originates", p.name, m))
		default:
			return perror.Fatal(fmt.Errorf("stub processor %s received unknown message %T", p.name, m))
		}
	}
}

// handleRequest takes the payload, asks the adaptor for a response,
// and returns it on the request's own sink, on a goroutine so a slow
// (MaybeAsync Future) adaptor never blocks the processor's receive
// loop from servicing other requests.
func (p *Proc[M]) handleRequest(ctx context.Context, req *msg.RequestMsg[M], adapt adaptor.Adaptor[M], logger *logrus.Entry) {
	data, err := req.TakeData()
	if err != nil {
		_ = req.ReturnErrorToSender(perror.NewProtocolError(req.Service(), err.Error()))
		return
	}

	spanCtx, endSpan := req.EnterSpan(ctx)
	pending := adapt.Process(spanCtx, req.Service(), data)

	go func() {
		defer endSpan()
		result, resolveErr := pending.Resolve(spanCtx)
		if resolveErr != nil {
			logger.WithError(resolveErr).Debug("stub: adaptor did not resolve")
			_ = req.ReturnErrorToSender(perror.NewProtocolError(req.Service(), resolveErr.Error()))
			return
		}
		if result.Err != nil {
			logger.WithField("stub_service", req.Service()).Debug(result.Err.Error())
			_ = req.ReturnErrorToSender(result.Err)
			return
		}
		logger.WithField("stub_service", req.Service()).Debug("stub_proc_response")
		_ = req.ReturnToSender(msg.NewResponseMsg(req, result.Data))
	}()
}
