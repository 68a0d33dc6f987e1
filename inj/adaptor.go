package inj

import "github.com/prosaframework/prosa/core/tvf"

// Adaptor builds outgoing transactions and reacts to their responses.
// It is deliberately a
// different shape from core/adaptor.Adaptor: an injector originates
// traffic rather than answering it, so there is no incoming request to
// process, only a transaction to manufacture.
type Adaptor[M tvf.Tvf] interface {
	// BuildTransaction returns the next transaction to send.
	BuildTransaction() M
	// ProcessResponse reacts to a successful response to a previously
	// sent transaction, e.g. to check a status code. Returning a
	// non-nil error stops the injector ("if an error ... the injection
	// and processor will stop").
	ProcessResponse(response M, serviceName string) error
}

// DummyAdaptor sends a constant marker transaction and ignores every
// response.
type DummyAdaptor[M tvf.Tvf] struct {
	// New returns a fresh M each call; the demo process supplies
	// this since M carries no generic "new" capability of its own.
	New func() M
}

func (d DummyAdaptor[M]) BuildTransaction() M {
	msg := d.New()
	msg.PutString(1, "DUMMY")
	return msg
}

func (DummyAdaptor[M]) ProcessResponse(M, string) error { return nil }
