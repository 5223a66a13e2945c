// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rendergraph

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendergraph/access"
)

// Barrier is the pipeline barrier that brings a resource from the state
// after one operation into the state before the next. Exactly one of Buffer
// and Image is set.
type Barrier struct {
	// Src is the state after the previous operation, Dst the state the
	// operation requires.
	Src access.State
	Dst access.State

	Buffer *BufferBarrier
	Image  *ImageBarrier
}

// IsTransfer reports whether the barrier moves the resource between queue families.
func (b Barrier) IsTransfer() bool {
	return b.Src.QueueFamily != b.Dst.QueueFamily
}

func (b Barrier) apply(cmd CommandBuffer) {
	if b.Buffer != nil {
		cmd.PipelineBarrier(b.Src.Stage, b.Dst.Stage, []BufferBarrier{*b.Buffer}, nil)
		return
	}
	cmd.PipelineBarrier(b.Src.Stage, b.Dst.Stage, nil, []ImageBarrier{*b.Image})
}

// Barrier computes the barrier in front of operation i of a resource.
//
// The source side is the previous operation's state. Operation 0 starts
// from no access, top of pipe and an undefined layout on its own queue
// family.
func (g *Graph) Barrier(h ResourceHandle, i int) (Barrier, error) {
	r, err := g.resource(h)
	if err != nil {
		return Barrier{}, err
	}
	return r.barrier(i)
}

func (r *resource) barrier(i int) (Barrier, error) {
	if i < 0 || i >= len(r.ops) {
		return Barrier{}, fmt.Errorf("%w: operation %d of %d", ErrOperationNotFound, i, len(r.ops))
	}
	cur := r.ops[i]
	dst, err := r.state(cur.Kind, cur.QueueFamily, false)
	if err != nil {
		return Barrier{}, err
	}
	src := access.Initial(cur.QueueFamily)
	if i > 0 {
		prev := r.ops[i-1]
		if src, err = r.state(prev.Kind, prev.QueueFamily, true); err != nil {
			return Barrier{}, err
		}
	}

	b := Barrier{Src: src, Dst: dst}
	if r.typ == ResourceBuffer {
		b.Buffer = &BufferBarrier{
			Buffer:         r.buffer,
			SrcAccess:      src.Access,
			DstAccess:      dst.Access,
			SrcQueueFamily: src.QueueFamily,
			DstQueueFamily: dst.QueueFamily,
			Size:           access.WholeSize,
		}
		return b, nil
	}
	b.Image = &ImageBarrier{
		Texture:        r.texture,
		SrcAccess:      src.Access,
		DstAccess:      dst.Access,
		OldLayout:      src.Layout,
		NewLayout:      dst.Layout,
		SrcQueueFamily: src.QueueFamily,
		DstQueueFamily: dst.QueueFamily,
		Aspect:         imageAspect(r.texture.Format(), src.Layout, dst.Layout),
		LevelCount:     access.RemainingLevels,
		LayerCount:     access.RemainingLayers,
	}
	return b, nil
}

// imageAspect narrows the layout-derived aspect to the planes the format has.
func imageAspect(f gputypes.TextureFormat, oldLayout, newLayout access.ImageLayout) access.Aspect {
	if !isDepthFormat(f) {
		return access.AspectFor(oldLayout, newLayout)
	}
	switch {
	case f == gputypes.TextureFormatStencil8:
		return access.AspectStencil
	case hasStencil(f):
		return access.AspectDepth | access.AspectStencil
	default:
		return access.AspectDepth
	}
}

// applyPreBarriers emits the acquire side of every operation of the pass,
// outputs first.
func (g *Graph) applyPreBarriers(p *pass, cmd CommandBuffer) error {
	for _, idx := range p.outputs {
		n := &g.nodes[idx]
		if err := g.applyBarrier(n.res, n.opIndex, cmd); err != nil {
			return err
		}
	}
	for _, in := range p.inputs {
		if err := g.applyBarrier(g.nodes[in.node].res, in.opIndex, cmd); err != nil {
			return err
		}
	}
	return nil
}

// applyPostBarriers emits the release half of every ownership transfer the
// pass takes part in, then the transitions to the present layout.
func (g *Graph) applyPostBarriers(p *pass, cmd CommandBuffer) error {
	for _, idx := range p.outputs {
		n := &g.nodes[idx]
		if n.transfer {
			if err := g.applyBarrier(n.res, n.opIndex+1, cmd); err != nil {
				return err
			}
		}
	}
	for _, in := range p.inputs {
		if in.transfer {
			if err := g.applyBarrier(g.nodes[in.node].res, in.opIndex+1, cmd); err != nil {
				return err
			}
		}
	}
	for _, idx := range p.outputs {
		n := &g.nodes[idx]
		if n.present {
			if err := g.applyBarrier(n.res, n.presentOpIndex, cmd); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) applyBarrier(res uint32, opIndex int, cmd CommandBuffer) error {
	b, err := g.resources[res].barrier(opIndex)
	if err != nil {
		return err
	}
	b.apply(cmd)
	return nil
}
