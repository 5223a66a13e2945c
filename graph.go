package rendergraph

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/gogpu/rendergraph/semaphore"
	"github.com/gogpu/rendergraph/target"
)

// Graph schedules the passes of one frame.
//
// A frame registers its resources, adds its passes with AddPass, calls
// Prepare and then Render. Clear resets the graph for the next frame while
// keeping the semaphore pool and the structural caches.
//
// Thread Safety:
// Graph is not safe for concurrent use. The pool and caches it shares with
// other graphs lock internally.
type Graph struct {
	queues QueueResolver
	log    *slog.Logger

	semaphores *semaphore.Pool
	targets    *target.Cache

	gen       uint32
	resources []resource
	byHandle  map[uintptr]uint32
	nodes     []node
	passes    []*pass

	prepared bool
	rendered bool
}

// New creates an empty graph. A nil resolver puts every queue on family 0.
func New(queues QueueResolver, opts ...Option) *Graph {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if queues == nil {
		queues = QueueFamilies{}
	}

	g := &Graph{
		queues:     queues,
		log:        o.logger,
		semaphores: o.pool,
		targets:    o.cache,
		gen:        1,
		byHandle:   make(map[uintptr]uint32),
	}
	if g.semaphores == nil {
		g.semaphores = semaphore.NewPool(o.fences, o.inFlight)
	}
	if g.targets == nil {
		g.targets = target.NewCache(o.factory)
	}
	l := g.logger()
	propagateLogger(g.semaphores, l)
	propagateLogger(g.targets, l)
	return g
}

func (g *Graph) logger() *slog.Logger {
	if g.log != nil {
		return g.log
	}
	return Logger()
}

// SetLogger replaces the graph logger and passes it on to the semaphore
// pool and the structural caches. Nil reverts to the package Logger.
func (g *Graph) SetLogger(l *slog.Logger) {
	g.log = l
	l = g.logger()
	propagateLogger(g.semaphores, l)
	propagateLogger(g.targets, l)
}

// Semaphores returns the semaphore pool of the graph.
func (g *Graph) Semaphores() *semaphore.Pool { return g.semaphores }

// Targets returns the structural cache of the graph.
func (g *Graph) Targets() *target.Cache { return g.targets }

// RegisterAttachment registers an image. Each native image can be
// registered once between calls to Clear.
func (g *Graph) RegisterAttachment(t Texture) (ResourceHandle, error) {
	if t == nil {
		return ResourceHandle{}, ErrNilResource
	}
	return g.register(resource{typ: ResourceAttachment, texture: t})
}

// RegisterBuffer registers a buffer. Each native buffer can be registered
// once between calls to Clear.
func (g *Graph) RegisterBuffer(b Buffer) (ResourceHandle, error) {
	if b == nil {
		return ResourceHandle{}, ErrNilResource
	}
	return g.register(resource{typ: ResourceBuffer, buffer: b})
}

func (g *Graph) register(r resource) (ResourceHandle, error) {
	h := r.handle()
	if _, ok := g.byHandle[h]; ok {
		return ResourceHandle{}, fmt.Errorf("%w: %v 0x%x", ErrResourceRegistered, r.typ, h)
	}
	//nolint:gosec // G115: resource count is bounded by memory
	idx := uint32(len(g.resources))
	g.resources = append(g.resources, r)
	g.byHandle[h] = idx
	return ResourceHandle{index: idx, gen: g.gen}, nil
}

// Clear drops every pass, node and resource. Handles issued before Clear
// become stale. The semaphore pool and the structural caches are kept.
func (g *Graph) Clear() {
	g.gen++
	if g.gen == 0 {
		g.gen = 1
	}
	clear(g.resources)
	g.resources = g.resources[:0]
	clear(g.byHandle)
	g.nodes = g.nodes[:0]
	clear(g.passes)
	g.passes = g.passes[:0]
	g.prepared = false
	g.rendered = false
}

// ClearCache drops the structural caches. Call it when the swapchain or
// any attachment is resized.
func (g *Graph) ClearCache() {
	g.targets.Clear()
}

func (g *Graph) resource(h ResourceHandle) (*resource, error) {
	if h.gen != g.gen || int(h.index) >= len(g.resources) {
		return nil, fmt.Errorf("%w: resource %v", ErrStaleHandle, h)
	}
	return &g.resources[h.index], nil
}

func (g *Graph) node(h NodeHandle) (*node, error) {
	if h.gen != g.gen || int(h.index) >= len(g.nodes) {
		return nil, fmt.Errorf("%w: node %v", ErrStaleHandle, h)
	}
	return &g.nodes[h.index], nil
}

func (g *Graph) resourceHandle(idx uint32) ResourceHandle {
	return ResourceHandle{index: idx, gen: g.gen}
}

func (g *Graph) nodeHandle(idx uint32) NodeHandle {
	return NodeHandle{index: idx, gen: g.gen}
}

// PassCount returns the number of passes in the graph.
func (g *Graph) PassCount() int { return len(g.passes) }

// Pass returns a description of the pass at index i.
func (g *Graph) Pass(i int) (PassInfo, error) {
	if i < 0 || i >= len(g.passes) {
		return PassInfo{}, fmt.Errorf("%w: %d", ErrPassNotFound, i)
	}
	p := g.passes[i]
	info := PassInfo{
		Name:            p.name,
		Index:           p.index,
		Queue:           p.affinity,
		QueueFamily:     p.family,
		Compute:         p.compute,
		SignalSemaphore: p.signal,
		SignalStages:    p.signalStages,
		Waits:           slices.Clone(p.waits),
	}
	for _, n := range p.outputs {
		info.Outputs = append(info.Outputs, g.nodeHandle(n))
	}
	for _, in := range p.inputs {
		info.Inputs = append(info.Inputs, InputInfo{
			Node:                    g.nodeHandle(in.node),
			Usage:                   in.usage,
			OperationIndex:          in.opIndex,
			ShouldTransferOwnership: in.transfer,
		})
	}
	return info, nil
}

// Node returns a description of a pass output.
func (g *Graph) Node(h NodeHandle) (NodeInfo, error) {
	n, err := g.node(h)
	if err != nil {
		return NodeInfo{}, err
	}
	return NodeInfo{
		Resource:                g.resourceHandle(n.res),
		Pass:                    n.pass,
		OperationIndex:          n.opIndex,
		ShouldClear:             n.clear,
		ClearValue:              n.clearValue,
		ShouldTransferOwnership: n.transfer,
		PresentSwapchain:        n.present,
	}, nil
}

// Resource returns a description of a registered resource.
func (g *Graph) Resource(h ResourceHandle) (ResourceInfo, error) {
	r, err := g.resource(h)
	if err != nil {
		return ResourceInfo{}, err
	}
	return ResourceInfo{
		Type:       r.typ,
		Texture:    r.texture,
		Buffer:     r.buffer,
		Operations: slices.Clone(r.ops),
		Presented:  r.presented,
	}, nil
}

// Operations returns a copy of the operation log of a resource.
// The log is empty before Prepare.
func (g *Graph) Operations(h ResourceHandle) ([]Operation, error) {
	r, err := g.resource(h)
	if err != nil {
		return nil, err
	}
	return slices.Clone(r.ops), nil
}
