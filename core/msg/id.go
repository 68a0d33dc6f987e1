// Package msg defines the request/response message envelope exchanged
// over the service bus: RequestMsg, ResponseMsg, and ErrorMsg, plus the
// sink abstraction a request carries so exactly one reply can ever
// reach its origin.
package msg

import "sync/atomic"

var idCounter atomic.Uint64

// NextID returns the next value from the process-wide monotonic
// counter used both to stamp a new RequestMsg's id and, by
// core/service, to spread load deterministically across a service's
// registered endpoints (id mod len(endpoints)).
func NextID() uint64 {
	return idCounter.Add(1)
}
