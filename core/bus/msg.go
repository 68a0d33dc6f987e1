// Package bus implements the main task: the single owner of the
// service-routing table and the processor registry. Main is the
// small, cheaply cloneable public
// handle every processor and client holds; MainProc is the
// single-owner runner that processes control messages on its own
// dedicated goroutine.
package bus

import "github.com/prosaframework/prosa/core/service"

// ControlMsg is the closed sum type of messages the main task's
// control channel accepts.
type ControlMsg interface {
	controlMsg()
}

// NewProcQueue registers a processor's queue with the main task. The
// main task responds by immediately pushing a ServiceEnvelope carrying
// the current snapshot onto Entry.Sender, so the processor can start
// routing without waiting for the next unrelated change.
type NewProcQueue[M any] struct {
	Entry *service.ProcService[M]
}

func (*NewProcQueue[M]) controlMsg() {}

// DeleteProc drops every queue belonging to ProcID and rebuilds the
// service table to remove every endpoint it served. Cause is the
// processor's terminal error, nil on a clean exit.
type DeleteProc struct {
	ProcID uint32
	Cause  error
}

func (*DeleteProc) controlMsg() {}

// DeleteProcQueue drops a single queue belonging to ProcID.
type DeleteProcQueue struct {
	ProcID  uint32
	QueueID uint32
}

func (*DeleteProcQueue) controlMsg() {}

// NewProcService advertises Names for every queue ProcID currently
// owns.
type NewProcService struct {
	Names  []string
	ProcID uint32
}

func (*NewProcService) controlMsg() {}

// NewService advertises Names for one specific (ProcID, QueueID) queue.
type NewService struct {
	Names   []string
	ProcID  uint32
	QueueID uint32
}

func (*NewService) controlMsg() {}

// DeleteProcService withdraws Names from every queue ProcID owns.
type DeleteProcService struct {
	Names  []string
	ProcID uint32
}

func (*DeleteProcService) controlMsg() {}

// DeleteService withdraws Names from one specific (ProcID, QueueID) queue.
type DeleteService struct {
	Names   []string
	ProcID  uint32
	QueueID uint32
}

func (*DeleteService) controlMsg() {}

// Command carries an operator or test-harness command string.
type Command struct {
	Command string
}

func (*Command) controlMsg() {}

// Shutdown begins graceful process shutdown.
type Shutdown struct {
	Reason string
}

func (*Shutdown) controlMsg() {}
