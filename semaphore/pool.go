// Package semaphore recycles the synchronization handles that connect passes
// running on different GPU queues.
//
// A semaphore handed out by Pool.Get stays in flight until the pool has
// advanced more than the configured number of frames past its issue, so it
// is never reused while a submission that signals or waits on it may still
// be pending on the GPU.
package semaphore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/wgpu/hal"
)

// DefaultInFlightFrames is the number of frames a semaphore stays in flight
// after it was issued.
const DefaultInFlightFrames = 3

// FenceSource creates the timeline fences backing semaphores.
// hal.Device satisfies this interface.
type FenceSource interface {
	CreateFence() (hal.Fence, error)
	DestroyFence(fence hal.Fence)
}

// Semaphore is a cross-queue synchronization handle.
//
// It is backed by a timeline fence: each time the pool reissues the
// semaphore its Value grows by one, so a submission signals Value and a
// dependent submission waits for Value.
type Semaphore struct {
	id    uint64
	fence hal.Fence
	value uint64
}

// ID returns a pool-unique identifier, stable across reuse.
func (s *Semaphore) ID() uint64 { return s.id }

// Fence returns the backing fence, or nil for a pool without a FenceSource.
func (s *Semaphore) Fence() hal.Fence { return s.fence }

// Value returns the timeline value for the current issue.
func (s *Semaphore) Value() uint64 { return s.value }

// String formats the semaphore for logs.
func (s *Semaphore) String() string {
	if s == nil {
		return "sem(nil)"
	}
	return fmt.Sprintf("sem%d@%d", s.id, s.value)
}

// inFlight is an issued semaphore and the frames elapsed since its issue.
type inFlight struct {
	frames int
	sem    *Semaphore
}

// Pool is a free list of semaphores plus the list of semaphores in flight.
//
// Thread Safety:
// Pool is safe for concurrent use.
type Pool struct {
	mu       sync.Mutex
	src      FenceSource
	horizon  int
	free     []*Semaphore
	inFlight []inFlight
	created  int
	nextID   uint64
	log      *slog.Logger
}

// NewPool creates a pool. A nil src produces semaphores without fences,
// which is enough for backends that submit everything to a single queue
// in order. horizon <= 0 selects DefaultInFlightFrames.
func NewPool(src FenceSource, horizon int) *Pool {
	if horizon <= 0 {
		horizon = DefaultInFlightFrames
	}
	return &Pool{
		src:     src,
		horizon: horizon,
		log:     slog.New(discardHandler{}),
	}
}

// SetLogger sets the logger used for pool diagnostics.
func (p *Pool) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(discardHandler{})
	}
	p.mu.Lock()
	p.log = l
	p.mu.Unlock()
}

// Horizon returns the number of frames a semaphore stays in flight.
func (p *Pool) Horizon() int { return p.horizon }

// Get returns a semaphore that is not in flight, creating one if the free
// list is empty. The semaphore is in flight from now on.
func (p *Pool) Get() (*Semaphore, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var s *Semaphore
	if n := len(p.free); n > 0 {
		s = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		s.value++
	} else {
		var fence hal.Fence
		if p.src != nil {
			f, err := p.src.CreateFence()
			if err != nil {
				return nil, fmt.Errorf("semaphore: create fence: %w", err)
			}
			fence = f
		}
		p.nextID++
		s = &Semaphore{id: p.nextID, fence: fence, value: 1}
		p.created++
		p.log.Info("semaphore: created", "id", s.id, "total", p.created)
	}

	p.inFlight = append(p.inFlight, inFlight{sem: s})
	return s, nil
}

// NextFrame advances every in-flight semaphore by one frame and returns
// those past the horizon to the free list.
func (p *Pool) NextFrame() {
	p.mu.Lock()
	defer p.mu.Unlock()

	kept := p.inFlight[:0]
	recycled := 0
	for _, f := range p.inFlight {
		f.frames++
		if f.frames > p.horizon {
			p.free = append(p.free, f.sem)
			recycled++
			continue
		}
		kept = append(kept, f)
	}
	for i := len(kept); i < len(p.inFlight); i++ {
		p.inFlight[i] = inFlight{}
	}
	p.inFlight = kept

	if recycled > 0 && p.log.Enabled(context.Background(), slog.LevelDebug) {
		p.log.Debug("semaphore: recycled", "count", recycled, "free", len(p.free), "inFlight", len(p.inFlight))
	}
}

// IsFree reports whether s is on the free list.
func (p *Pool) IsFree(s *Semaphore) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, f := range p.free {
		if f == s {
			return true
		}
	}
	return false
}

// Stats returns pool statistics.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Created:  p.created,
		Free:     len(p.free),
		InFlight: len(p.inFlight),
	}
}

// Destroy destroys every fence owned by the pool, free or in flight, and
// empties the pool. The caller must ensure the GPU is idle.
func (p *Pool) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.src != nil {
		for _, s := range p.free {
			if s.fence != nil {
				p.src.DestroyFence(s.fence)
			}
		}
		for _, f := range p.inFlight {
			if f.sem.fence != nil {
				p.src.DestroyFence(f.sem.fence)
			}
		}
	}
	p.free = nil
	p.inFlight = nil
	p.created = 0
}

// Stats contains pool statistics.
type Stats struct {
	// Created is the number of semaphores created since the pool was made.
	Created int
	// Free is the number of semaphores ready for reuse.
	Free int
	// InFlight is the number of semaphores that may still be pending.
	InFlight int
}

// discardHandler silently discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
