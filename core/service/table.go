// Package service implements the service-routing table: a read-mostly
// snapshot mapping a service name to the processor endpoints currently
// serving it.
package service

import (
	"github.com/prosaframework/prosa/core/msg"
	"github.com/prosaframework/prosa/core/queue"
)

// ProcService is one endpoint in the routing table: a processor/queue
// pair and the channel requests for it are pushed onto. Equality is
// (ProcID, QueueID); ProcName is a display label only.
type ProcService[M any] struct {
	ProcID   uint32
	ProcName string
	QueueID  uint32
	Sender   *queue.Channel[msg.InternalMsg[M]]
}

// Equal reports whether two endpoints refer to the same (proc, queue)
// pair.
func (p *ProcService[M]) Equal(other *ProcService[M]) bool {
	return p.ProcID == other.ProcID && p.QueueID == other.QueueID
}

// ServiceTable maps a service name to its ordered list of endpoints.
// A table is treated as immutable once published. The mutating
// methods here edit the receiver in place, so they are applied to a
// Clone that is then published via an atomic swap (Registry.Mutate
// does both), and readers never observe a partial edit.
type ServiceTable[M any] struct {
	services map[string][]*ProcService[M]
}

// NewServiceTable returns an empty table.
func NewServiceTable[M any]() *ServiceTable[M] {
	return &ServiceTable[M]{services: make(map[string][]*ProcService[M])}
}

// Clone returns a deep-enough copy: a new map and new per-name slices,
// sharing the *ProcService pointers (endpoints themselves are
// immutable once created).
func (t *ServiceTable[M]) Clone() *ServiceTable[M] {
	clone := NewServiceTable[M]()
	for name, list := range t.services {
		cp := make([]*ProcService[M], len(list))
		copy(cp, list)
		clone.services[name] = cp
	}
	return clone
}

// GetProcService picks one endpoint registered for name. When more
// than one is registered, the choice is
// msg.NextID() mod len(endpoints), the same process-wide monotonic
// counter a RequestMsg's id is drawn from, so the spread is
// deterministic once observed and costs no extra synchronization.
func (t *ServiceTable[M]) GetProcService(name string) (*ProcService[M], bool) {
	list := t.services[name]
	if len(list) == 0 {
		return nil, false
	}
	idx := int(msg.NextID() % uint64(len(list)))
	return list[idx], true
}

// ExistProcService reports whether name currently has at least one
// registered endpoint.
func (t *ServiceTable[M]) ExistProcService(name string) bool {
	return len(t.services[name]) > 0
}

// Names returns every service name with at least one registered
// endpoint.
func (t *ServiceTable[M]) Names() []string {
	names := make([]string, 0, len(t.services))
	for name, list := range t.services {
		if len(list) > 0 {
			names = append(names, name)
		}
	}
	return names
}

// AddService registers svc under name. A processor may register a
// service at most once even if it owns multiple queues: if an
// endpoint with the same ProcID is already present for name, this is
// a no-op.
func (t *ServiceTable[M]) AddService(name string, svc *ProcService[M]) {
	list := t.services[name]
	for _, existing := range list {
		if existing.ProcID == svc.ProcID {
			return
		}
	}
	t.services[name] = append(list, svc)
}

// RemoveService removes the endpoint matching both procID and
// queueID. A removal predicate of `proc_id != pid && queue_id != qid`
// would retain an entry if either field differs and so never remove a
// partial match; this removes only the endpoint matching both fields.
func (t *ServiceTable[M]) RemoveService(name string, procID, queueID uint32) {
	list := t.services[name]
	if len(list) == 0 {
		return
	}
	out := list[:0]
	for _, e := range list {
		if e.ProcID == procID && e.QueueID == queueID {
			continue
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		delete(t.services, name)
		return
	}
	t.services[name] = out
}

// RemoveProc removes every endpoint belonging to procID, across every
// service name, used when a processor is deregistered entirely.
func (t *ServiceTable[M]) RemoveProc(procID uint32) {
	for name, list := range t.services {
		out := list[:0]
		for _, e := range list {
			if e.ProcID == procID {
				continue
			}
			out = append(out, e)
		}
		if len(out) == 0 {
			delete(t.services, name)
		} else {
			t.services[name] = out
		}
	}
}

// RemoveProcQueue removes every endpoint belonging to (procID,
// queueID), across every service name.
func (t *ServiceTable[M]) RemoveProcQueue(procID, queueID uint32) {
	for name := range t.services {
		t.RemoveService(name, procID, queueID)
	}
}
