// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rendergraph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gogpu/rendergraph/access"
)

// Prepare schedules the graph.
//
// The first sweep resolves the queue family of every pass and appends one
// operation per output and input to the resources' logs, in pass order.
// A presented output gets an extra Present operation attributed to the
// following pass index.
//
// The second sweep looks at the operation after each of a pass's own
// operations. When it runs on another queue family the owning output or
// input is flagged for an ownership transfer, its destination stage joins
// the pass's signal stages, and the earliest such dependent pass waits on
// one semaphore the pass signals.
func (g *Graph) Prepare() error {
	if g.prepared {
		return ErrAlreadyPrepared
	}
	for i := range g.resources {
		g.resources[i].ops = g.resources[i].ops[:0]
	}

	for _, p := range g.passes {
		g.appendOperations(p)
	}
	for _, p := range g.passes {
		if err := g.scheduleTransfers(p); err != nil {
			return fmt.Errorf("rendergraph: prepare pass %q: %w", p.name, err)
		}
	}

	if l := g.logger(); l.Enabled(context.Background(), slog.LevelDebug) {
		for _, p := range g.passes {
			l.Debug("rendergraph: pass scheduled",
				"pass", p.name, "index", p.index, "queue", p.affinity, "family", p.family,
				"outputs", len(p.outputs), "inputs", len(p.inputs),
				"waits", len(p.waits), "signal", p.signal)
		}
	}
	g.prepared = true
	return nil
}

func (g *Graph) appendOperations(p *pass) {
	p.family = g.queues.QueueFamilyIndex(p.affinity)
	p.signal = nil
	p.signalStages = access.StageNone
	p.waits = p.waits[:0]

	var presents []*node
	for _, idx := range p.outputs {
		n := &g.nodes[idx]
		r := &g.resources[n.res]
		n.transfer = false
		n.opIndex = r.appendOp(p.index, p.family, outputKind(p, r))
		if n.present {
			presents = append(presents, n)
		}
	}
	for i := range p.inputs {
		in := &p.inputs[i]
		r := &g.resources[g.nodes[in.node].res]
		in.transfer = false
		in.opIndex = r.appendOp(p.index, p.family, inputKind(p, in.usage))
	}
	// Present entries follow every operation of the pass itself.
	for _, n := range presents {
		n.presentOpIndex = g.resources[n.res].appendOp(p.index+1, p.family, access.Present)
	}
}

func (r *resource) appendOp(pass int, family uint32, kind access.Kind) int {
	r.ops = append(r.ops, Operation{Pass: pass, QueueFamily: family, Kind: kind})
	return len(r.ops) - 1
}

func outputKind(p *pass, r *resource) access.Kind {
	switch {
	case p.compute:
		return access.ComputeShaderReadWrite
	case r.typ == ResourceBuffer:
		return access.GraphicsShaderReadWrite
	case r.isDepth():
		return access.DepthStencilAttachment
	default:
		return access.ColorAttachment
	}
}

func inputKind(p *pass, usage InputUsage) access.Kind {
	switch {
	case usage == UsageDepthAttachment:
		return access.DepthStencilAttachment
	case p.compute:
		return access.ComputeShaderRead
	default:
		return access.GraphicsShaderRead
	}
}

func (g *Graph) scheduleTransfers(p *pass) error {
	dependent := -1

	// handoff reports whether the operation after opIndex runs on another
	// queue family, and accounts for it.
	handoff := func(r *resource, opIndex int) (bool, error) {
		if opIndex < 0 {
			return false, ErrOperationNotFound
		}
		if opIndex+1 >= len(r.ops) {
			return false, nil
		}
		next := r.ops[opIndex+1]
		if next.QueueFamily == p.family {
			return false, nil
		}
		dst, err := r.state(next.Kind, next.QueueFamily, false)
		if err != nil {
			return false, err
		}
		p.signalStages |= dst.Stage
		if dependent < 0 || next.Pass < dependent {
			dependent = next.Pass
		}
		return true, nil
	}

	for _, idx := range p.outputs {
		n := &g.nodes[idx]
		t, err := handoff(&g.resources[n.res], n.opIndex)
		if err != nil {
			return err
		}
		n.transfer = t
	}
	for i := range p.inputs {
		in := &p.inputs[i]
		t, err := handoff(&g.resources[g.nodes[in.node].res], in.opIndex)
		if err != nil {
			return err
		}
		in.transfer = t
	}

	if dependent < 0 {
		return nil
	}
	if dependent >= len(g.passes) {
		return fmt.Errorf("%w: dependent pass %d", ErrOperationNotFound, dependent)
	}
	sem, err := g.semaphores.Get()
	if err != nil {
		return err
	}
	p.signal = sem
	d := g.passes[dependent]
	d.waits = append(d.waits, Wait{Semaphore: sem, Stage: p.signalStages})
	g.logger().Info("rendergraph: semaphore allocated",
		"pass", p.name, "dependent", d.name, "semaphore", sem, "stages", p.signalStages)
	return nil
}

// state looks up the table state of an operation kind for this resource.
func (r *resource) state(kind access.Kind, family uint32, source bool) (access.State, error) {
	if r.typ == ResourceBuffer {
		return access.ForBuffer(kind, family, source)
	}
	return access.For(kind, family, source)
}
