package inj

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prosaframework/prosa/core/msg"
	"github.com/prosaframework/prosa/core/perror"
	"github.com/prosaframework/prosa/core/proc"
	"github.com/prosaframework/prosa/core/queue"
	"github.com/prosaframework/prosa/core/regulator"
	"github.com/prosaframework/prosa/core/service"
	"github.com/prosaframework/prosa/core/tvf"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// Proc is the injector processor: it builds transactions and sends
// them to Settings.ServiceName at the pace Settings.GetRegulator
// describes.
type Proc[M tvf.Tvf] struct {
	name     string
	settings Settings
	queue    *queue.Channel[msg.InternalMsg[M]]
	metrics  *Metrics

	// table is the injector's own copy of the routing table, updated
	// only from ServiceEnvelope notifications (it never reads
	// bus.Main directly, matching how self.service is tracked).
	table *service.ServiceTable[M]
}

// Option configures a Proc at construction time.
type Option[M tvf.Tvf] func(*Proc[M])

// WithMetrics records transaction durations against m.
func WithMetrics[M tvf.Tvf](m *Metrics) Option[M] {
	return func(p *Proc[M]) { p.metrics = m }
}

// New returns a Proc ready to be run under proc.Supervise.
func New[M tvf.Tvf](name string, settings Settings, opts ...Option[M]) *Proc[M] {
	p := &Proc[M]{
		name:     name,
		settings: settings,
		queue:    queue.NewChannel[msg.InternalMsg[M]](settings.Capacity()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Queue returns the processor's internal message channel.
func (p *Proc[M]) Queue() *queue.Channel[msg.InternalMsg[M]] { return p.queue }

// Settings implements proc.Proc.
func (p *Proc[M]) Settings() proc.ProcSettings { return p.settings }

// ThreadMultiplicity implements proc.Proc.
func (p *Proc[M]) ThreadMultiplicity() proc.ThreadMultiplicity { return 0 }

type recvResult[M any] struct {
	msg msg.InternalMsg[M]
	err error
}

// recvLoop is the sole goroutine that ever calls p.queue.Recv, since
// the underlying MPSC ring only tolerates one consumer at a time;
// InternalRun reads from out instead so it can select between a
// message arriving and a regulator tick completing.
func (p *Proc[M]) recvLoop(ctx context.Context, out chan<- recvResult[M]) {
	for {
		m, err := p.queue.Recv(ctx)
		select {
		case out <- recvResult[M]{msg: m, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// InternalRun implements proc.Proc: register, wait for the target
// service to appear, then alternate between servicing internal
// messages and pacing out transactions via the regulator.
func (p *Proc[M]) InternalRun(ctx context.Context, bus proc.ProcBusParam[M], adapt Adaptor[M]) error {
	if err := bus.AddProc(ctx); err != nil {
		return err
	}
	logger := bus.Logger(p.name)
	tracer := bus.Tracer(p.name)
	reg := p.settings.GetRegulator()

	recvCh := make(chan recvResult[M], 1)
	go p.recvLoop(ctx, recvCh)

	nextTx := adapt.BuildTransaction()
	haveNext := true

	for p.table == nil || !p.table.ExistProcService(p.settings.ServiceName) {
		select {
		case r := <-recvCh:
			if r.err != nil {
				return r.err
			}
			done, err := p.handleInternal(r.msg, adapt, reg, &nextTx, &haveNext, logger)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	tx := nextTx
	haveNext = false
	if err := p.sendTransaction(ctx, tracer, tx, reg, logger); err != nil {
		return err
	}

	tickCh := make(chan error, 1)
	tickInFlight := false

	for {
		if !tickInFlight && p.table != nil && p.table.ExistProcService(p.settings.ServiceName) {
			tickInFlight = true
			go func() {
				err := reg.Tick(ctx)
				select {
				case tickCh <- err:
				case <-ctx.Done():
				}
			}()
		}

		select {
		case r := <-recvCh:
			if r.err != nil {
				return r.err
			}
			done, err := p.handleInternal(r.msg, adapt, reg, &nextTx, &haveNext, logger)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		case err := <-tickCh:
			tickInFlight = false
			if err != nil {
				return err
			}
			var tx M
			if haveNext {
				tx = nextTx
				haveNext = false
			} else {
				tx = adapt.BuildTransaction()
			}
			if err := p.sendTransaction(ctx, tracer, tx, reg, logger); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// sendTransaction looks up the target service in the injector's own
// routing-table copy and sends tx to it, replying onto the injector's
// own queue (the "internal lock-free MPSC" sink variant) so the
// response interleaves with its other internal traffic.
func (p *Proc[M]) sendTransaction(ctx context.Context, tracer trace.Tracer, tx M, reg *regulator.Regulator, logger *logrus.Entry) error {
	entry, ok := p.table.GetProcService(p.settings.ServiceName)
	if !ok {
		// The service vanished between the existence check and now;
		// the next tick or Service envelope will resolve this.
		return nil
	}

	sink := msg.NewChannelSink(p.queue)
	req, spanCtx := msg.NewRequestMsg[M](ctx, tracer, p.settings.ServiceName, tx, sink)
	logger.WithField("service", p.settings.ServiceName).Debug("inj_proc")

	if err := entry.Sender.Send(spanCtx, &msg.RequestEnvelope[M]{Msg: req}); err != nil {
		return err
	}
	reg.NotifySendTransaction(time.Now())
	return nil
}

// handleInternal processes one internal message, updating the
// injector's routing-table copy, regulator overhead, and next-
// transaction slot as appropriate. done is true once a Shutdown
// envelope has been handled and InternalRun should return cleanly.
func (p *Proc[M]) handleInternal(m msg.InternalMsg[M], adapt Adaptor[M], reg *regulator.Regulator, nextTx *M, haveNext *bool, logger *logrus.Entry) (done bool, err error) {
	switch v := m.(type) {
	case *msg.RequestEnvelope[M]:
		return false, perror.Fatal(fmt.Errorf("inj processor %s received a request, which it never originates", p.name))

	case *msg.ResponseEnvelope[M]:
		elapsed := time.Since(v.Msg.ResponseTime())
		p.recordDuration(v.Msg.Service(), "0", elapsed)
		logger.WithField("service", v.Msg.Service()).Debug("resp_inj_proc")
		if procErr := adapt.ProcessResponse(v.Msg.Data(), v.Msg.Service()); procErr != nil {
			return false, perror.Fatal(procErr)
		}
		reg.NotifyReceiveTransaction(elapsed)
		p.primeNext(adapt, nextTx, haveNext)

	case *msg.ErrorEnvelope[M]:
		elapsed := time.Since(v.Msg.ResponseTime())
		kind := v.Msg.Kind()
		p.recordDuration(v.Msg.Service(), strconv.Itoa(int(kind.Code())), elapsed)
		logger.WithField("service", v.Msg.Service()).Debug("resp_err_inj_proc")

		switch kind.Kind {
		case perror.ServiceTimeout:
			reg.AddOverhead(time.Duration(kind.ElapsedMs) * time.Millisecond)
		case perror.ServiceUnableToReach:
			reg.AddOverhead(p.settings.TimeoutThreshold)
		default:
			return false, perror.Fatal(kind)
		}
		reg.NotifyReceiveTransaction(elapsed)
		p.primeNext(adapt, nextTx, haveNext)

	case *msg.ServiceEnvelope[M]:
		if table, ok := v.Snapshot.(*service.ServiceTable[M]); ok {
			p.table = table
		}

	case *msg.CommandEnvelope[M], *msg.ConfigEnvelope[M]:
		logger.WithField("msg_type", fmt.Sprintf("%T", m)).Debug("inj: command/config handling not implemented")

	case *msg.ShutdownEnvelope[M]:
		return true, nil

	default:
		return false, perror.Fatal(fmt.Errorf("inj processor %s received unknown message %T", p.name, m))
	}
	return false, nil
}

func (p *Proc[M]) recordDuration(serviceName, errCode string, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}
	p.metrics.TransDuration.WithLabelValues(p.name, serviceName, errCode).Observe(elapsed.Seconds())
}

func (p *Proc[M]) primeNext(adapt Adaptor[M], nextTx *M, haveNext *bool) {
	if *haveNext {
		return
	}
	*nextTx = adapt.BuildTransaction()
	*haveNext = true
}
