// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halbridge

import (
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
)

// DefaultWaitTimeout bounds every fence wait of a Submitter.
const DefaultWaitTimeout = 5 * time.Second

// inFlight is a submitted command buffer and the fence value that retires it.
type inFlight struct {
	cb    hal.CommandBuffer
	fence hal.Fence
	value uint64
}

// Submitter implements rendergraph.Submitter on a HAL queue.
//
// Each pass is submitted on its own. A pass that signals a semaphore
// signals the semaphore's fence at its value; other passes signal the
// submitter's own fence. Command buffers are freed by Finish once their
// fence value is reached.
//
// Thread Safety:
// Submitter is NOT safe for concurrent use.
type Submitter struct {
	device  hal.Device
	queue   hal.Queue
	timeout time.Duration

	fence   hal.Fence
	value   uint64
	pending []inFlight
}

// NewSubmitter creates a submitter. A timeout of zero selects DefaultWaitTimeout.
func NewSubmitter(device hal.Device, queue hal.Queue, timeout time.Duration) *Submitter {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	return &Submitter{device: device, queue: queue, timeout: timeout}
}

// Submit implements rendergraph.Submitter.
func (s *Submitter) Submit(sub rendergraph.Submission) error {
	cb, ok := sub.CommandBuffer.(*CommandBuffer)
	if !ok || cb.raw == nil {
		return ErrForeignCommandBuffer
	}

	for _, w := range sub.Waits {
		if w.Semaphore == nil || w.Semaphore.Fence() == nil {
			continue
		}
		if err := s.wait(w.Semaphore.Fence(), w.Semaphore.Value()); err != nil {
			s.device.FreeCommandBuffer(cb.raw)
			return fmt.Errorf("halbridge: pass %q wait on %v: %w", sub.Pass, w.Semaphore, err)
		}
	}

	fence, value, err := s.signal(sub)
	if err != nil {
		s.device.FreeCommandBuffer(cb.raw)
		return err
	}
	if err := s.queue.Submit([]hal.CommandBuffer{cb.raw}, fence, value); err != nil {
		s.device.FreeCommandBuffer(cb.raw)
		return fmt.Errorf("halbridge: submit pass %q: %w", sub.Pass, err)
	}
	s.pending = append(s.pending, inFlight{cb: cb.raw, fence: fence, value: value})

	rendergraph.Logger().Debug("halbridge: pass submitted",
		"pass", sub.Pass, "queue", sub.Queue, "waits", len(sub.Waits), "signal", sub.Signal)
	return nil
}

// signal selects the fence and value a submission signals.
func (s *Submitter) signal(sub rendergraph.Submission) (hal.Fence, uint64, error) {
	if sub.Signal != nil && sub.Signal.Fence() != nil {
		return sub.Signal.Fence(), sub.Signal.Value(), nil
	}
	if s.fence == nil {
		fence, err := s.device.CreateFence()
		if err != nil {
			return nil, 0, fmt.Errorf("halbridge: create fence: %w", err)
		}
		s.fence = fence
	}
	s.value++
	return s.fence, s.value, nil
}

func (s *Submitter) wait(fence hal.Fence, value uint64) error {
	ok, err := s.device.Wait(fence, value, s.timeout)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWaitTimeout
	}
	return nil
}

// Pending returns the number of submitted command buffers not yet freed.
func (s *Submitter) Pending() int { return len(s.pending) }

// Finish waits for every pending submission and frees its command buffer.
// Call it once per frame after Render, or before releasing resources.
func (s *Submitter) Finish() error {
	var firstErr error
	for _, p := range s.pending {
		if err := s.wait(p.fence, p.value); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("halbridge: finish: %w", err)
		}
		s.device.FreeCommandBuffer(p.cb)
	}
	s.pending = s.pending[:0]
	return firstErr
}

// Destroy finishes pending work and releases the submitter's fence.
func (s *Submitter) Destroy() {
	if err := s.Finish(); err != nil {
		rendergraph.Logger().Warn("halbridge: destroy", "err", err)
	}
	if s.fence != nil {
		s.device.DestroyFence(s.fence)
		s.fence = nil
	}
}
