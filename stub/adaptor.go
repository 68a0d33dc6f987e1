package stub

import (
	"context"
	"time"

	"github.com/prosaframework/prosa/core/adaptor"
	"github.com/prosaframework/prosa/core/tvf"
)

// ParotAdaptor answers every request with the request itself, cloned.
// It
// resolves synchronously: Process itself starts no goroutine.
type ParotAdaptor[M tvf.Tvf] struct{}

// NewParotAdaptor satisfies adaptor.Factory[M].
func NewParotAdaptor[M tvf.Tvf](any) (adaptor.Adaptor[M], *adaptor.NewAdaptorError) {
	return ParotAdaptor[M]{}, nil
}

func (ParotAdaptor[M]) Process(_ context.Context, _ string, req M) adaptor.MaybeAsync[adaptor.Result[M]] {
	return adaptor.Ready(adaptor.Result[M]{Data: req.Clone().(M)})
}

// AsyncParotAdaptor is the asynchronous twin of ParotAdaptor: it
// answers with the same request after a fixed delay, exercising the
// MaybeAsync future path.
type AsyncParotAdaptor[M tvf.Tvf] struct {
	Delay time.Duration
}

// NewAsyncParotAdaptor satisfies adaptor.Factory[M] with a fixed
// 100ms delay.
func NewAsyncParotAdaptor[M tvf.Tvf](any) (adaptor.Adaptor[M], *adaptor.NewAdaptorError) {
	return AsyncParotAdaptor[M]{Delay: 100 * time.Millisecond}, nil
}

func (a AsyncParotAdaptor[M]) Process(ctx context.Context, _ string, req M) adaptor.MaybeAsync[adaptor.Result[M]] {
	return adaptor.Async(ctx, func(ctx context.Context) (adaptor.Result[M], error) {
		select {
		case <-time.After(a.Delay):
		case <-ctx.Done():
			return adaptor.Result[M]{}, ctx.Err()
		}
		return adaptor.Result[M]{Data: req.Clone().(M)}, nil
	})
}
