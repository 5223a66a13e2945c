// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package halbridge

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/access"
	"github.com/gogpu/rendergraph/target"
)

// CommandBuffer is the HAL command stream of one pass.
//
// Record callbacks type-assert the rendergraph.CommandBuffer they receive
// to *CommandBuffer to reach the encoder.
type CommandBuffer struct {
	label  string
	family uint32

	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder
	raw     hal.CommandBuffer

	// err is the first translation failure. Barriers have no error
	// return, so it surfaces from EndRecording.
	err error

	textureTransitions int
	bufferTransitions  int
}

// Label returns the debug label of the pass.
func (cb *CommandBuffer) Label() string { return cb.label }

// Encoder returns the HAL command encoder. Compute passes begin their
// compute pass on it.
func (cb *CommandBuffer) Encoder() hal.CommandEncoder { return cb.encoder }

// RenderPass returns the render pass encoder of a graphics pass, or nil
// outside the render pass.
func (cb *CommandBuffer) RenderPass() hal.RenderPassEncoder { return cb.pass }

// HAL returns the finished HAL command buffer, or nil before EndRecording.
func (cb *CommandBuffer) HAL() hal.CommandBuffer { return cb.raw }

// Transitions returns the number of texture and buffer transitions recorded.
func (cb *CommandBuffer) Transitions() (textures, buffers int) {
	return cb.textureTransitions, cb.bufferTransitions
}

func (cb *CommandBuffer) fail(err error) {
	if cb.err == nil {
		cb.err = err
	}
}

// PipelineBarrier implements rendergraph.CommandBuffer.
//
// Stages and access masks collapse into HAL usages. The acquire half of a
// queue family transfer is dropped because the release half already
// performed the transition on the single HAL queue.
func (cb *CommandBuffer) PipelineBarrier(_, _ access.PipelineStage, buffers []rendergraph.BufferBarrier, images []rendergraph.ImageBarrier) {
	if cb.pass != nil {
		cb.fail(ErrBarrierInPass)
		return
	}

	var textures []hal.TextureBarrier
	for i := range images {
		b := &images[i]
		if cb.acquire(b.SrcQueueFamily, b.DstQueueFamily) {
			continue
		}
		tex, ok := b.Texture.(*Texture)
		if !ok {
			cb.fail(fmt.Errorf("%w: %T", ErrForeignTexture, b.Texture))
			continue
		}
		oldUsage, okOld := textureUsage(b.OldLayout)
		newUsage, okNew := textureUsage(b.NewLayout)
		if !okOld || !okNew {
			continue
		}
		textures = append(textures, hal.TextureBarrier{
			Texture: tex.raw,
			Usage: hal.TextureUsageTransition{
				OldUsage: oldUsage,
				NewUsage: newUsage,
			},
		})
	}

	var bufs []hal.BufferBarrier
	for i := range buffers {
		b := &buffers[i]
		if cb.acquire(b.SrcQueueFamily, b.DstQueueFamily) {
			continue
		}
		buf, ok := b.Buffer.(*Buffer)
		if !ok {
			cb.fail(fmt.Errorf("%w: %T", ErrForeignBuffer, b.Buffer))
			continue
		}
		bufs = append(bufs, hal.BufferBarrier{
			Buffer: buf.raw,
			Usage: hal.BufferUsageTransition{
				OldUsage: bufferUsage(b.SrcAccess, buf.usage),
				NewUsage: bufferUsage(b.DstAccess, buf.usage),
			},
		})
	}

	if len(textures) > 0 {
		cb.encoder.TransitionTextures(textures)
		cb.textureTransitions += len(textures)
	}
	if len(bufs) > 0 {
		cb.encoder.TransitionBuffers(bufs)
		cb.bufferTransitions += len(bufs)
	}
}

func (cb *CommandBuffer) acquire(src, dst uint32) bool {
	return src != dst && src != access.QueueFamilyIgnored && cb.family == dst
}

// Recorder implements rendergraph.Recorder on a HAL device.
//
// Thread Safety:
// Recorder is NOT safe for concurrent use.
type Recorder struct {
	device hal.Device
	queues rendergraph.QueueResolver
	cur    *CommandBuffer
}

// NewRecorder creates a recorder. queues resolves the family a pass is
// recorded for; nil puts every pass on family 0.
func NewRecorder(device hal.Device, queues rendergraph.QueueResolver) *Recorder {
	if queues == nil {
		queues = rendergraph.QueueFamilies{}
	}
	return &Recorder{device: device, queues: queues}
}

// BeginRecording implements rendergraph.Recorder.
func (r *Recorder) BeginRecording(q rendergraph.QueueAffinity, label string) error {
	if r.cur != nil {
		return ErrAlreadyRecording
	}
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("halbridge: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("halbridge: begin encoding: %w", err)
	}
	r.cur = &CommandBuffer{
		label:   label,
		family:  r.queues.QueueFamilyIndex(q),
		encoder: encoder,
	}
	return nil
}

// CommandBuffer implements rendergraph.Recorder.
func (r *Recorder) CommandBuffer() rendergraph.CommandBuffer {
	if r.cur == nil {
		return nil
	}
	return r.cur
}

// BeginTargetPass implements rendergraph.Recorder.
func (r *Recorder) BeginTargetPass(rt *target.RenderTarget, rp *target.RenderPass, clear []rendergraph.ClearValue) error {
	if r.cur == nil {
		return ErrNotRecording
	}
	if r.cur.pass != nil {
		return ErrTargetPassActive
	}
	fb, ok := rt.Native.(*Framebuffer)
	if !ok {
		return ErrNoFramebuffer
	}
	r.cur.pass = r.cur.encoder.BeginRenderPass(renderPassDescriptor(r.cur.label, rp.Initializer(), fb, clear))
	return nil
}

// EndTargetPass implements rendergraph.Recorder.
func (r *Recorder) EndTargetPass() error {
	if r.cur == nil {
		return ErrNotRecording
	}
	if r.cur.pass == nil {
		return ErrNoTargetPass
	}
	r.cur.pass.End()
	r.cur.pass = nil
	return nil
}

// EndRecording implements rendergraph.Recorder. A recording that hit a
// translation error is discarded and the error returned.
func (r *Recorder) EndRecording() (rendergraph.CommandBuffer, error) {
	cb := r.cur
	if cb == nil {
		return nil, ErrNotRecording
	}
	if cb.pass != nil {
		return nil, ErrTargetPassActive
	}
	r.cur = nil

	if cb.err != nil {
		cb.encoder.DiscardEncoding()
		return nil, fmt.Errorf("halbridge: pass %q: %w", cb.label, cb.err)
	}
	raw, err := cb.encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("halbridge: end encoding: %w", err)
	}
	cb.raw = raw
	rendergraph.Logger().Debug("halbridge: pass recorded",
		"pass", cb.label, "textureTransitions", cb.textureTransitions, "bufferTransitions", cb.bufferTransitions)
	return cb, nil
}

// DiscardRecording implements rendergraph.Recorder. A bound render pass is
// ended before the encoder is discarded.
func (r *Recorder) DiscardRecording() {
	cb := r.cur
	if cb == nil {
		return
	}
	r.cur = nil
	if cb.pass != nil {
		cb.pass.End()
		cb.pass = nil
	}
	cb.encoder.DiscardEncoding()
	rendergraph.Logger().Debug("halbridge: pass discarded", "pass", cb.label)
}

// renderPassDescriptor combines a cached render pass with the views of a
// framebuffer. Clear values are indexed like the attachments.
func renderPassDescriptor(label string, init *target.RenderPassInitializer, fb *Framebuffer, clear []rendergraph.ClearValue) *hal.RenderPassDescriptor {
	desc := &hal.RenderPassDescriptor{Label: label}
	for i := range init.Colors {
		c := &init.Colors[i]
		a := hal.RenderPassColorAttachment{
			View:    fb.views[i],
			LoadOp:  c.LoadOp,
			StoreOp: c.StoreOp,
		}
		if i < len(clear) {
			a.ClearValue = clear[i].Color
		}
		desc.ColorAttachments = append(desc.ColorAttachments, a)
	}
	if ds := init.DepthStencil; ds != nil {
		i := len(init.Colors)
		d := &hal.RenderPassDepthStencilAttachment{
			View:           fb.views[i],
			DepthLoadOp:    ds.LoadOp,
			DepthStoreOp:   ds.StoreOp,
			StencilLoadOp:  ds.StencilLoadOp,
			StencilStoreOp: ds.StencilStoreOp,
		}
		if i < len(clear) {
			d.DepthClearValue = clear[i].Depth
			d.StencilClearValue = clear[i].Stencil
		}
		desc.DepthStencilAttachment = d
	}
	return desc
}
