package rendergraph

import (
	"log/slog"

	"github.com/gogpu/rendergraph/semaphore"
	"github.com/gogpu/rendergraph/target"
)

// Option configures a Graph during creation.
//
// Example:
//
//	// Bookkeeping only: no fences, no native render passes
//	g := rendergraph.New(rendergraph.QueueFamilies{})
//
//	// HAL backed
//	g := rendergraph.New(families,
//	    rendergraph.WithFenceSource(device),
//	    rendergraph.WithTargetFactory(factory))
type Option func(*options)

type options struct {
	logger   *slog.Logger
	pool     *semaphore.Pool
	fences   semaphore.FenceSource
	inFlight int
	factory  target.Factory
	cache    *target.Cache
}

// WithLogger sets the logger of the graph. It is also passed to the
// semaphore pool and the structural caches. Defaults to the package Logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSemaphorePool shares a semaphore pool between graphs.
// WithFenceSource and WithInFlightFrames are ignored when a pool is given.
func WithSemaphorePool(p *semaphore.Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithFenceSource backs the semaphores of the graph's own pool with fences.
// Without it semaphores are handle-only.
func WithFenceSource(src semaphore.FenceSource) Option {
	return func(o *options) {
		o.fences = src
	}
}

// WithInFlightFrames sets how many frames a semaphore stays in flight
// before it is reused. Values below 1 select semaphore.DefaultInFlightFrames.
func WithInFlightFrames(n int) Option {
	return func(o *options) {
		o.inFlight = n
	}
}

// WithTargetFactory sets the factory that creates native render pass and
// render target objects for the graph's own cache.
func WithTargetFactory(f target.Factory) Option {
	return func(o *options) {
		o.factory = f
	}
}

// WithTargetCache shares a structural cache between graphs.
// WithTargetFactory is ignored when a cache is given.
func WithTargetCache(c *target.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}
