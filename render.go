package rendergraph

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendergraph/access"
	"github.com/gogpu/rendergraph/target"
)

// Render records and submits every pass in declaration order.
//
// For each pass Render begins a recording on the pass's queue, emits the
// pre-barriers, binds the cached render target of a graphics pass, calls
// the record callback once, emits the post-barriers and hands the finished
// command buffer with its semaphores to sub. After the last pass the
// semaphore pool advances one frame.
//
// A failing pass aborts the frame: its recording is discarded and nothing
// after it is recorded or submitted. Render may be called once per Prepare.
func (g *Graph) Render(rec Recorder, sub Submitter) error {
	if !g.prepared {
		return ErrNotPrepared
	}
	if g.rendered {
		return ErrAlreadyRendered
	}
	g.rendered = true

	for _, p := range g.passes {
		if err := g.renderPass(p, rec, sub); err != nil {
			return fmt.Errorf("rendergraph: pass %q: %w", p.name, err)
		}
	}
	g.semaphores.NextFrame()
	return nil
}

func (g *Graph) renderPass(p *pass, rec Recorder, sub Submitter) error {
	if err := rec.BeginRecording(p.affinity, p.name); err != nil {
		return fmt.Errorf("begin recording: %w", err)
	}
	ended := false
	defer func() {
		if !ended {
			rec.DiscardRecording()
		}
	}()
	cmd := rec.CommandBuffer()

	if err := g.applyPreBarriers(p, cmd); err != nil {
		return err
	}

	var rt *target.RenderTarget
	if !p.compute {
		var clears []ClearValue
		var err error
		if rt, clears, err = g.targetFor(p); err != nil {
			return err
		}
		if rt != nil {
			if err := rec.BeginTargetPass(rt, rt.RenderPass(), clears); err != nil {
				return fmt.Errorf("begin target pass: %w", err)
			}
		}
	}

	if err := p.record(cmd); err != nil {
		return fmt.Errorf("record: %w", err)
	}

	if rt != nil {
		if err := rec.EndTargetPass(); err != nil {
			return fmt.Errorf("end target pass: %w", err)
		}
	}
	if err := g.applyPostBarriers(p, cmd); err != nil {
		return err
	}

	cb, err := rec.EndRecording()
	if err != nil {
		return fmt.Errorf("end recording: %w", err)
	}
	ended = true
	g.logger().Debug("rendergraph: pass recorded",
		"pass", p.name, "queue", p.affinity, "waits", len(p.waits), "signal", p.signal)

	return sub.Submit(Submission{
		Pass:          p.name,
		Index:         p.index,
		Queue:         p.affinity,
		QueueFamily:   p.family,
		CommandBuffer: cb,
		Waits:         append([]Wait(nil), p.waits...),
		Signal:        p.signal,
		SignalStages:  p.signalStages,
	})
}

// RenderTarget returns the cached render target the pass at index i binds,
// or nil when the pass has no attachments. The render pass object is
// available through the target's RenderPass method.
func (g *Graph) RenderTarget(i int) (*target.RenderTarget, error) {
	if i < 0 || i >= len(g.passes) {
		return nil, fmt.Errorf("%w: %d", ErrPassNotFound, i)
	}
	p := g.passes[i]
	if p.compute {
		return nil, fmt.Errorf("rendergraph: pass %q: %w", p.name, ErrComputeRenderTarget)
	}
	if !g.prepared {
		return nil, ErrNotPrepared
	}
	rt, _, err := g.targetFor(p)
	return rt, err
}

// boundAttachment is an image bound by a graphics pass.
type boundAttachment struct {
	tex   Texture
	desc  target.AttachmentDescription
	clear ClearValue
}

// targetFor derives the render pass and render target of a graphics pass
// from its attachment outputs and depth inputs.
func (g *Graph) targetFor(p *pass) (*target.RenderTarget, []ClearValue, error) {
	var colors []boundAttachment
	var depth *boundAttachment

	bindDepth := func(a boundAttachment) error {
		if depth != nil {
			return ErrMultipleDepth
		}
		depth = &a
		return nil
	}

	for _, idx := range p.outputs {
		n := &g.nodes[idx]
		r := &g.resources[n.res]
		if r.typ != ResourceAttachment {
			continue
		}
		a, err := g.attachment(r, n.opIndex, n.clear, n.clearValue)
		if err != nil {
			return nil, nil, err
		}
		if r.isDepth() {
			if err := bindDepth(a); err != nil {
				return nil, nil, err
			}
			continue
		}
		colors = append(colors, a)
	}
	for _, in := range p.inputs {
		if in.usage != UsageDepthAttachment {
			continue
		}
		r := &g.resources[g.nodes[in.node].res]
		a, err := g.attachment(r, in.opIndex, false, ClearValue{})
		if err != nil {
			return nil, nil, err
		}
		if err := bindDepth(a); err != nil {
			return nil, nil, err
		}
	}
	if len(colors) == 0 && depth == nil {
		return nil, nil, nil
	}

	rpInit := target.RenderPassInitializer{Label: p.name}
	rtInit := target.RenderTargetInitializer{Label: p.name, Layers: 1}
	var clears []ClearValue
	for _, a := range colors {
		rpInit.Colors = append(rpInit.Colors, a.desc)
		rtInit.Attachments = append(rtInit.Attachments, a.tex)
		clears = append(clears, a.clear)
	}
	if depth != nil {
		d := depth.desc
		rpInit.DepthStencil = &d
		rtInit.Attachments = append(rtInit.Attachments, depth.tex)
		clears = append(clears, depth.clear)
	}

	for i, a := range rtInit.Attachments {
		size := a.Size()
		if i == 0 {
			rtInit.Width, rtInit.Height = size.Width, size.Height
			continue
		}
		if size.Width != rtInit.Width || size.Height != rtInit.Height {
			return nil, nil, fmt.Errorf("%w: %dx%d and %dx%d",
				ErrAttachmentSize, rtInit.Width, rtInit.Height, size.Width, size.Height)
		}
	}

	rp, err := g.targets.GetRenderPass(&rpInit)
	if err != nil {
		return nil, nil, err
	}
	rtInit.RenderPass = rp
	rt, err := g.targets.GetRenderTarget(&rtInit)
	if err != nil {
		return nil, nil, err
	}
	return rt, clears, nil
}

func (g *Graph) attachment(r *resource, opIndex int, shouldClear bool, v ClearValue) (boundAttachment, error) {
	if opIndex < 0 || opIndex >= len(r.ops) {
		return boundAttachment{}, fmt.Errorf("%w: operation %d of %d", ErrOperationNotFound, opIndex, len(r.ops))
	}
	op := r.ops[opIndex]
	st, err := access.For(op.Kind, op.QueueFamily, false)
	if err != nil {
		return boundAttachment{}, err
	}

	f := r.texture.Format()
	desc := target.AttachmentDescription{
		Format:        f,
		Samples:       1,
		LoadOp:        gputypes.LoadOpLoad,
		StoreOp:       gputypes.StoreOpStore,
		InitialLayout: st.Layout,
		FinalLayout:   st.Layout,
	}
	if shouldClear {
		desc.LoadOp = gputypes.LoadOpClear
	}
	if hasStencil(f) {
		desc.StencilLoadOp = desc.LoadOp
		desc.StencilStoreOp = desc.StoreOp
	}
	return boundAttachment{tex: r.texture, desc: desc, clear: v}, nil
}
