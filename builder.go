package rendergraph

import "fmt"

// PassBuilder declares the resource usage of one pass.
//
// A PassBuilder is only valid inside the setup callback given to AddPass.
// The first error is sticky: later calls are ignored and AddPass returns
// the error and discards the pass.
type PassBuilder struct {
	g      *Graph
	p      *pass
	err    error
	closed bool

	// nodes and presented are undone when the pass is discarded.
	nodes     []uint32
	presented []uint32
}

// Err returns the first error recorded by the builder.
func (b *PassBuilder) Err() error {
	if b.closed && b.err == nil {
		return ErrBuilderClosed
	}
	return b.err
}

func (b *PassBuilder) usable() bool {
	if b.closed {
		return false
	}
	return b.err == nil
}

func (b *PassBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// AddOutput declares that the pass writes r and returns the node later
// passes read it through. Attachments are written as color or depth
// attachments on graphics passes and as storage images on compute passes.
func (b *PassBuilder) AddOutput(r ResourceHandle) NodeHandle {
	if !b.usable() {
		return NodeHandle{}
	}
	res, err := b.g.resource(r)
	if err != nil {
		b.fail(err)
		return NodeHandle{}
	}
	if res.presented {
		b.fail(fmt.Errorf("%w: output %v", ErrResourcePresented, r))
		return NodeHandle{}
	}

	g := b.g
	//nolint:gosec // G115: node count is bounded by memory
	idx := uint32(len(g.nodes))
	g.nodes = append(g.nodes, node{res: r.index, pass: b.p.index, opIndex: -1, presentOpIndex: -1})
	b.p.outputs = append(b.p.outputs, idx)
	b.nodes = append(b.nodes, idx)
	return g.nodeHandle(idx)
}

// AddInput declares that the pass reads n, which an earlier pass produced.
//
// UsageDepthAttachment binds a depth attachment read-only as the depth
// attachment of a graphics pass, with its contents loaded and stored.
func (b *PassBuilder) AddInput(n NodeHandle, usage InputUsage) {
	if !b.usable() {
		return
	}
	nd, err := b.g.node(n)
	if err != nil {
		b.fail(err)
		return
	}
	if nd.pass < 0 || nd.pass >= b.p.index {
		b.fail(fmt.Errorf("%w: node %v", ErrInputNotProduced, n))
		return
	}
	res := &b.g.resources[nd.res]
	if res.presented {
		b.fail(fmt.Errorf("%w: input %v", ErrResourcePresented, n))
		return
	}
	if usage == UsageDepthAttachment && !res.isDepth() {
		b.fail(fmt.Errorf("%w: %v is not a depth attachment", ErrDepthUsage, n))
		return
	}
	b.p.inputs = append(b.p.inputs, input{node: n.index, usage: usage, opIndex: -1})
}

// SetCompute moves the pass to the compute queue.
func (b *PassBuilder) SetCompute() {
	if !b.usable() {
		return
	}
	b.p.compute = true
	b.p.affinity = QueueCompute
}

// SetClear clears the output n to v before the pass body runs.
// Only attachments bound by a graphics pass are cleared.
func (b *PassBuilder) SetClear(n NodeHandle, v ClearValue) {
	nd := b.ownOutput(n)
	if nd == nil {
		return
	}
	nd.clear = true
	nd.clearValue = v
}

// PresentSwapchain transitions the output n to the present layout after the
// pass. The resource must be a swapchain attachment and cannot be used
// again until the graph is cleared.
func (b *PassBuilder) PresentSwapchain(n NodeHandle) {
	nd := b.ownOutput(n)
	if nd == nil {
		return
	}
	res := &b.g.resources[nd.res]
	if res.typ != ResourceAttachment || !res.texture.IsSwapchain() {
		b.fail(fmt.Errorf("%w: node %v", ErrPresentNotSwapchain, n))
		return
	}
	if res.presented {
		b.fail(fmt.Errorf("%w: node %v", ErrResourcePresented, n))
		return
	}
	nd.present = true
	res.presented = true
	b.presented = append(b.presented, nd.res)
}

func (b *PassBuilder) ownOutput(n NodeHandle) *node {
	if !b.usable() {
		return nil
	}
	nd, err := b.g.node(n)
	if err != nil {
		b.fail(err)
		return nil
	}
	if nd.pass != b.p.index {
		b.fail(fmt.Errorf("%w: node %v", ErrNotOutput, n))
		return nil
	}
	return nd
}

// validate checks constraints that depend on the final pass configuration.
func (b *PassBuilder) validate() {
	if b.err != nil || !b.p.compute {
		return
	}
	for _, in := range b.p.inputs {
		if in.usage == UsageDepthAttachment {
			b.fail(fmt.Errorf("%w: compute pass binds a depth attachment", ErrDepthUsage))
			return
		}
	}
}

// discard orphans the nodes of a rejected pass and reverts its presents.
func (b *PassBuilder) discard() {
	for _, idx := range b.nodes {
		b.g.nodes[idx].pass = -1
	}
	for _, r := range b.presented {
		b.g.resources[r].presented = false
	}
}

// AddPass adds a pass named name to the graph.
//
// setup declares the inputs and outputs of the pass through the builder and
// returns a value, typically the output nodes, which AddPass hands back.
// record is called once per Render with the command buffer of the pass.
//
// Example:
//
//	type gbuffer struct{ albedo, depth rendergraph.NodeHandle }
//
//	gb, err := rendergraph.AddPass(g, "gbuffer", func(b *rendergraph.PassBuilder) gbuffer {
//	    out := gbuffer{albedo: b.AddOutput(albedo), depth: b.AddOutput(depth)}
//	    b.SetClear(out.albedo, rendergraph.ClearValue{})
//	    return out
//	}, drawScene)
func AddPass[T any](g *Graph, name string, setup func(b *PassBuilder) T, record RecordFunc) (T, error) {
	var zero T
	if g.prepared {
		return zero, fmt.Errorf("rendergraph: pass %q: %w", name, ErrAlreadyPrepared)
	}
	if record == nil {
		return zero, fmt.Errorf("rendergraph: pass %q: %w", name, ErrNilCallback)
	}

	p := &pass{
		name:     name,
		index:    len(g.passes),
		affinity: QueueGraphics,
		record:   record,
	}
	b := &PassBuilder{g: g, p: p}

	var out T
	if setup != nil {
		out = setup(b)
	}
	b.validate()
	b.closed = true

	if b.err != nil {
		b.discard()
		return zero, fmt.Errorf("rendergraph: pass %q: %w", name, b.err)
	}
	g.passes = append(g.passes, p)
	return out, nil
}
