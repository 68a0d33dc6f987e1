package msg

import (
	"sync"

	"github.com/prosaframework/prosa/core/perror"
	"github.com/prosaframework/prosa/core/queue"
)

// ResponseSink is the sum type a RequestMsg holds to return exactly
// one reply: a none sentinel, a one-shot channel, or a processor's
// bounded internal channel. The RequestMsg that owns this sink
// replaces it with NoneSink before its first Deliver call, whether or
// not that call succeeds, so any further attempt observes a closed
// sink instead of silently double-delivering.
type ResponseSink[M any] interface {
	Deliver(d InternalMsg[M]) *perror.SendError[InternalMsg[M]]
}

// noneSink is the sentinel every RequestMsg's sink is replaced with
// once a response has been sent, or that a caller may supply directly
// for fire-and-forget requests ("replaces its response sink with the
// sentinel").
type noneSink[M any] struct{}

// NoneSink returns the sentinel sink: every Deliver call fails with a
// Drop error, never panics, never blocks.
func NoneSink[M any]() ResponseSink[M] { return noneSink[M]{} }

func (noneSink[M]) Deliver(d InternalMsg[M]) *perror.SendError[InternalMsg[M]] {
	return &perror.SendError[InternalMsg[M]]{Kind: perror.SendDrop, Value: d, Other: "sink already consumed or never set"}
}

// oneshotSink delivers at most one Delivery value, matching the
// original's single-shot channel variant. It is the natural sink for
// a request that expects exactly one reply and nothing else.
type oneshotSink[M any] struct {
	mu   sync.Mutex
	sent bool
	ch   chan InternalMsg[M]
}

// NewOneshotSink returns a sink paired with a channel the caller reads
// exactly once to obtain the delivered value.
func NewOneshotSink[M any]() (ResponseSink[M], <-chan InternalMsg[M]) {
	ch := make(chan InternalMsg[M], 1)
	return &oneshotSink[M]{ch: ch}, ch
}

func (s *oneshotSink[M]) Deliver(d InternalMsg[M]) *perror.SendError[InternalMsg[M]] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent {
		return &perror.SendError[InternalMsg[M]]{Kind: perror.SendDrop, Value: d, Other: "oneshot already fired"}
	}
	select {
	case s.ch <- d:
		s.sent = true
		return nil
	default:
		return &perror.SendError[InternalMsg[M]]{Kind: perror.SendFull, Value: d, Len: 1}
	}
}

// channelSink routes the delivery onto a processor's bounded internal
// message channel, the "internal lock-free MPSC" variant: used when
// the reply must be interleaved with that processor's other internal
// traffic (Command, Config, Service, Shutdown) rather than answered
// out of band.
type channelSink[M any] struct {
	mu   sync.Mutex
	sent bool
	ch   *queue.Channel[InternalMsg[M]]
}

// NewChannelSink returns a sink that delivers onto ch.
func NewChannelSink[M any](ch *queue.Channel[InternalMsg[M]]) ResponseSink[M] {
	return &channelSink[M]{ch: ch}
}

func (s *channelSink[M]) Deliver(d InternalMsg[M]) *perror.SendError[InternalMsg[M]] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent {
		return &perror.SendError[InternalMsg[M]]{Kind: perror.SendDrop, Value: d, Other: "channel sink already consumed"}
	}
	if err := s.ch.TrySend(d); err != nil {
		if err.Kind == queue.ErrFull {
			return &perror.SendError[InternalMsg[M]]{Kind: perror.SendFull, Value: d, Len: err.Len}
		}
		return &perror.SendError[InternalMsg[M]]{Kind: perror.SendOther, Value: d, Other: err.Error()}
	}
	s.sent = true
	return nil
}
