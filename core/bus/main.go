package bus

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prosaframework/prosa/core/msg"
	"github.com/prosaframework/prosa/core/queue"
	"github.com/prosaframework/prosa/core/service"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// DefaultControlCapacity bounds the main task's own control channel.
const DefaultControlCapacity uint32 = 4096

// rebroadcastDelay is how long a failed broadcast send waits before its
// single retry, mirroring a "one re-broadcast per change" protocol.
const rebroadcastDelay = 10 * time.Millisecond

// MainProc is the main task's single owner: the one goroutine running
// Run is the only thing that ever touches queues or mutates the
// registry. Every
// other goroutine interacts with it only through the handles Handle
// and NewProcHandle return.
type MainProc[M any] struct {
	core   *busCore[M]
	queues map[uint32]map[uint32]*service.ProcService[M]
}

// NewMainProc returns a MainProc ready to Run. A nil logger falls back
// to logrus's standard logger; a nil tracerProvider falls back to a
// no-op provider.
func NewMainProc[M any](name string, logger *logrus.Logger, tracerProvider trace.TracerProvider, controlCapacity uint32) *MainProc[M] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if tracerProvider == nil {
		tracerProvider = trace.NewNoopTracerProvider()
	}
	if controlCapacity == 0 {
		controlCapacity = DefaultControlCapacity
	}
	return &MainProc[M]{
		core: &busCore[M]{
			name:           name,
			control:        queue.NewChannel[ControlMsg](controlCapacity),
			registry:       service.NewRegistry[M](),
			logger:         logger,
			tracerProvider: tracerProvider,
		},
		queues: make(map[uint32]map[uint32]*service.ProcService[M]),
	}
}

// Handle returns the cheaply cloneable public handle onto this main
// task: read access to the routing table, the shutdown flag, scoped
// loggers/tracers, and Command/Shutdown.
func (mp *MainProc[M]) Handle() Main[M] { return Main[M]{core: mp.core} }

// NewProcHandle returns the handle one processor instance uses to
// register and deregister itself with this main task. defaultQueue is
// registered as queue 0 the first time AddProc is called.
func (mp *MainProc[M]) NewProcHandle(procID uint32, procName string, defaultQueue *queue.Channel[msg.InternalMsg[M]]) *ProcHandle[M] {
	return &ProcHandle[M]{core: mp.core, procID: procID, procName: procName, defaultQueue: defaultQueue}
}

// Run processes control messages until ctx is cancelled or a graceful
// shutdown has drained every registered queue. SIGINT and SIGTERM are
// translated into a Shutdown control message so the same code path
// handles an operator Ctrl-C and a programmatic Main.Shutdown call.
func (mp *MainProc[M]) Run(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	forwardCtx, cancelForward := context.WithCancel(ctx)
	defer cancelForward()
	go func() {
		select {
		case sig := <-sigCh:
			mp.core.stopping.Store(true)
			_ = mp.core.send(forwardCtx, &Shutdown{Reason: fmt.Sprintf("received %s", sig)})
		case <-forwardCtx.Done():
		}
	}()

	for {
		m, err := mp.core.control.Recv(ctx)
		if err != nil {
			return err
		}
		mp.dispatch(m)
		if mp.core.stopping.Load() && len(mp.queues) == 0 {
			return nil
		}
	}
}

func (mp *MainProc[M]) dispatch(m ControlMsg) {
	switch v := m.(type) {
	case *NewProcQueue[M]:
		mp.handleNewProcQueue(v)
	case *DeleteProc:
		mp.handleDeleteProc(v)
	case *DeleteProcQueue:
		mp.handleDeleteProcQueue(v)
	case *NewProcService:
		mp.handleNewProcService(v)
	case *NewService:
		mp.handleNewService(v)
	case *DeleteProcService:
		mp.handleDeleteProcService(v)
	case *DeleteService:
		mp.handleDeleteService(v)
	case *Command:
		mp.handleCommand(v)
	case *Shutdown:
		mp.handleShutdown(v)
	default:
		mp.core.logger.WithField("proc", mp.core.name).Warnf("bus: unknown control message %T", m)
	}
}

func (mp *MainProc[M]) queuesFor(procID uint32) map[uint32]*service.ProcService[M] {
	qs := mp.queues[procID]
	if qs == nil {
		qs = make(map[uint32]*service.ProcService[M])
		mp.queues[procID] = qs
	}
	return qs
}

func (mp *MainProc[M]) handleNewProcQueue(v *NewProcQueue[M]) {
	mp.queuesFor(v.Entry.ProcID)[v.Entry.QueueID] = v.Entry
	snapshot := mp.core.registry.Load()
	mp.sendTo(v.Entry, &msg.ServiceEnvelope[M]{Snapshot: snapshot})
}

func (mp *MainProc[M]) handleDeleteProc(v *DeleteProc) {
	delete(mp.queues, v.ProcID)
	next := mp.core.registry.Mutate(func(t *service.ServiceTable[M]) { t.RemoveProc(v.ProcID) })
	mp.broadcastSnapshot(next)
}

func (mp *MainProc[M]) handleDeleteProcQueue(v *DeleteProcQueue) {
	if qs, ok := mp.queues[v.ProcID]; ok {
		delete(qs, v.QueueID)
		if len(qs) == 0 {
			delete(mp.queues, v.ProcID)
		}
	}
	next := mp.core.registry.Mutate(func(t *service.ServiceTable[M]) { t.RemoveProcQueue(v.ProcID, v.QueueID) })
	mp.broadcastSnapshot(next)
}

func (mp *MainProc[M]) handleNewProcService(v *NewProcService) {
	qs := mp.queues[v.ProcID]
	next := mp.core.registry.Mutate(func(t *service.ServiceTable[M]) {
		for _, entry := range qs {
			for _, name := range v.Names {
				t.AddService(name, entry)
			}
		}
	})
	mp.broadcastSnapshot(next)
}

func (mp *MainProc[M]) handleNewService(v *NewService) {
	entry, ok := mp.queues[v.ProcID][v.QueueID]
	if !ok {
		return
	}
	next := mp.core.registry.Mutate(func(t *service.ServiceTable[M]) {
		for _, name := range v.Names {
			t.AddService(name, entry)
		}
	})
	mp.broadcastSnapshot(next)
}

func (mp *MainProc[M]) handleDeleteProcService(v *DeleteProcService) {
	qs := mp.queues[v.ProcID]
	next := mp.core.registry.Mutate(func(t *service.ServiceTable[M]) {
		for qid := range qs {
			for _, name := range v.Names {
				t.RemoveService(name, v.ProcID, qid)
			}
		}
	})
	mp.broadcastSnapshot(next)
}

func (mp *MainProc[M]) handleDeleteService(v *DeleteService) {
	next := mp.core.registry.Mutate(func(t *service.ServiceTable[M]) {
		for _, name := range v.Names {
			t.RemoveService(name, v.ProcID, v.QueueID)
		}
	})
	mp.broadcastSnapshot(next)
}

func (mp *MainProc[M]) handleCommand(v *Command) {
	mp.broadcastAll(&msg.CommandEnvelope[M]{Command: v.Command})
}

func (mp *MainProc[M]) handleShutdown(v *Shutdown) {
	mp.core.stopping.Store(true)
	mp.core.logger.WithField("proc", mp.core.name).Infof("bus: shutting down: %s", v.Reason)
	mp.broadcastAll(&msg.ShutdownEnvelope[M]{Reason: v.Reason})
}

func (mp *MainProc[M]) broadcastSnapshot(t *service.ServiceTable[M]) {
	mp.broadcastAll(&msg.ServiceEnvelope[M]{Snapshot: t})
}

func (mp *MainProc[M]) broadcastAll(env msg.InternalMsg[M]) {
	for _, qs := range mp.queues {
		for _, entry := range qs {
			mp.sendTo(entry, env)
		}
	}
}

// sendTo makes one immediate attempt and, on a full queue, exactly one
// delayed retry, matching the broadcast-with-retry protocol: a
// processor that is merely slow gets a second chance, one that is gone
// for good is simply dropped.
func (mp *MainProc[M]) sendTo(entry *service.ProcService[M], env msg.InternalMsg[M]) {
	if err := entry.Sender.TrySend(env); err != nil {
		e := entry
		go func() {
			time.Sleep(rebroadcastDelay)
			if err := e.Sender.TrySend(env); err != nil {
				mp.core.logger.WithFields(logrus.Fields{
					"proc_id":  e.ProcID,
					"queue_id": e.QueueID,
				}).Warn("bus: dropped broadcast, queue still full after retry")
			}
		}()
	}
}
