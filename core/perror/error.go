// Package perror defines the error taxonomy shared by the bus, the
// queues, and the processor supervision loop. Every concrete error type
// here answers the two questions the supervisor needs: whether the
// process can keep running (Recoverable) and how much longer it should
// wait before retrying (RecoveryDuration).
package perror

import (
	"fmt"
	"time"
)

// ProcError is the composite error a processor's run loop returns. The
// supervisor only knows this interface; it never inspects which
// concrete cause produced it.
type ProcError interface {
	error
	Recoverable() bool
	RecoveryDuration() time.Duration
}

// BusError reports a failure exchanging internal bus/processor
// messages. All bus errors are recoverable: a communication hiccup
// must not be treated as a reason to kill the whole process.
type BusError struct {
	Op     string
	ProcID uint32
	QueueID uint32
	Reason string
}

func (e *BusError) Error() string {
	switch e.Op {
	case "no_data":
		return "bus: message has no data"
	case "internal_main_queue":
		return fmt.Sprintf("bus: can't send internal main message, proc_id=%d: %s", e.ProcID, e.Reason)
	case "internal_queue":
		return fmt.Sprintf("bus: can't send internal message: %s", e.Reason)
	case "proc_comm":
		return fmt.Sprintf("bus: processor %d/%d can't be contacted: %s", e.ProcID, e.QueueID, e.Reason)
	default:
		return fmt.Sprintf("bus: %s: %s", e.Op, e.Reason)
	}
}

func (e *BusError) Recoverable() bool             { return true }
func (e *BusError) RecoveryDuration() time.Duration { return 0 }

// NoData is the sentinel BusError returned by accessors on a RequestMsg
// whose payload has already been taken.
func NoData() *BusError { return &BusError{Op: "no_data"} }

// InternalMainQueue reports that the main task's bus queue refused a message.
func InternalMainQueue(op string, procID uint32, reason string) *BusError {
	return &BusError{Op: "internal_main_queue", ProcID: procID, Reason: fmt.Sprintf("%s: %s", op, reason)}
}

// InternalQueue reports a generic internal-queue send failure.
func InternalQueue(reason string) *BusError {
	return &BusError{Op: "internal_queue", Reason: reason}
}

// ProcComm reports that a specific processor queue could not be reached.
func ProcComm(procID, queueID uint32, reason string) *BusError {
	return &BusError{Op: "proc_comm", ProcID: procID, QueueID: queueID, Reason: reason}
}

// SendError is returned by the bounded queue senders (core/queue). Full
// is retriable by the caller; Drop indicates the receiver is gone.
type SendError[T any] struct {
	Kind  SendErrorKind
	Value T
	Len   int
	Other string
}

// SendErrorKind tags the three ways a send can fail.
type SendErrorKind int

const (
	SendFull SendErrorKind = iota
	SendDrop
	SendOther
)

func (e *SendError[T]) Error() string {
	switch e.Kind {
	case SendFull:
		return fmt.Sprintf("queue: full, contains %d items", e.Len)
	case SendDrop:
		return "queue: receiver dropped"
	default:
		return fmt.Sprintf("queue: %s", e.Other)
	}
}

// Recoverable reports whether this send can be retried: only Full is.
func (e *SendError[T]) Recoverable() bool { return e.Kind == SendFull }

// ServiceErrorKind enumerates the stable numeric codes carried on every
// ErrorMsg for metric labeling.
type ServiceErrorKind uint8

const (
	ServiceNoError ServiceErrorKind = iota
	ServiceUnableToReach
	ServiceTimeout
	ServiceProtocolError
)

// ServiceError is the error a requester sees when a downstream service
// could not satisfy a request. Every variant is recoverable: a bad
// service response must never crash the calling processor.
type ServiceError struct {
	Kind    ServiceErrorKind
	Service string
	// ElapsedMs is populated only for Timeout.
	ElapsedMs uint64
	// Description is populated only for ProtocolError.
	Description string
}

func (e *ServiceError) Error() string {
	switch e.Kind {
	case ServiceNoError:
		return fmt.Sprintf("service %q: no error", e.Service)
	case ServiceUnableToReach:
		return fmt.Sprintf("service %q can't be reached", e.Service)
	case ServiceTimeout:
		return fmt.Sprintf("service %q didn't respond before %d ms", e.Service, e.ElapsedMs)
	case ServiceProtocolError:
		return fmt.Sprintf("service %q made a protocol error: %s", e.Service, e.Description)
	default:
		return fmt.Sprintf("service %q: unknown error", e.Service)
	}
}

// Code returns the stable numeric code used for metric labels.
func (e *ServiceError) Code() uint8 { return uint8(e.Kind) }

// Recoverable is always true: service errors surface at the request
// origin as an ErrorMsg and never propagate to the main task.
func (e *ServiceError) Recoverable() bool { return true }

func NewNoError(service string) *ServiceError {
	return &ServiceError{Kind: ServiceNoError, Service: service}
}

func NewUnableToReachService(service string) *ServiceError {
	return &ServiceError{Kind: ServiceUnableToReach, Service: service}
}

func NewTimeout(service string, elapsedMs uint64) *ServiceError {
	return &ServiceError{Kind: ServiceTimeout, Service: service, ElapsedMs: elapsedMs}
}

func NewProtocolError(service, description string) *ServiceError {
	return &ServiceError{Kind: ServiceProtocolError, Service: service, Description: description}
}

// procError is the generic wrapper used by core/proc to turn any
// wrapped cause into something the supervision loop understands,
// combining a cause (bus, send, adaptor construction, or adaptation) with an
// optional recovery-duration extension.
type procError struct {
	cause      error
	recoverable bool
	recovery   time.Duration
}

func (e *procError) Error() string                     { return e.cause.Error() }
func (e *procError) Unwrap() error                      { return e.cause }
func (e *procError) Recoverable() bool                  { return e.recoverable }
func (e *procError) RecoveryDuration() time.Duration    { return e.recovery }

// Wrap adapts any error into a ProcError. If cause already implements
// ProcError, its Recoverable/RecoveryDuration are reused; otherwise the
// error is treated as recoverable with no extension, matching the
// permissive default used by BusError and ServiceError above.
func Wrap(cause error) ProcError {
	if pe, ok := cause.(ProcError); ok {
		return pe
	}
	return &procError{cause: cause, recoverable: true}
}

// Fatal wraps cause as a non-recoverable ProcError: the supervisor will
// deregister the processor and stop retrying it.
func Fatal(cause error) ProcError {
	return &procError{cause: cause, recoverable: false}
}

// WithRecoveryDuration wraps cause as recoverable with an explicit
// extension added to the supervisor's backoff wait.
func WithRecoveryDuration(cause error, d time.Duration) ProcError {
	return &procError{cause: cause, recoverable: true, recovery: d}
}
