package main

import (
	"fmt"
	"io"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/semaphore"
	"github.com/gogpu/rendergraph/target"
)

// style holds the ANSI sequences used by the report. The zero value prints
// plain text.
type style struct {
	header, graphics, compute, sync, dim, reset string
}

var colorStyle = style{
	header:   "\x1b[1m",
	graphics: "\x1b[34m",
	compute:  "\x1b[35m",
	sync:     "\x1b[33m",
	dim:      "\x1b[2m",
	reset:    "\x1b[0m",
}

func (s style) paint(code, text string) string {
	if code == "" {
		return text
	}
	return code + text + s.reset
}

// reporter prints the prepared schedule of a graph.
type reporter struct {
	w      io.Writer
	style  style
	script *Script
}

func (r *reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

// schedule prints every pass of a prepared graph with its operations and
// synchronization.
func (r *reporter) schedule(g *rendergraph.Graph, frame int) error {
	r.printf("%s\n", r.style.paint(r.style.header, fmt.Sprintf("frame %d: %d passes", frame, g.PassCount())))
	for i := 0; i < g.PassCount(); i++ {
		p, err := g.Pass(i)
		if err != nil {
			return err
		}
		code := r.style.graphics
		if p.Compute {
			code = r.style.compute
		}
		r.printf("  [%d] %s %s family %d\n", p.Index, r.style.paint(code, p.Name), p.Queue, p.QueueFamily)

		for _, w := range p.Waits {
			r.printf("      %s\n", r.style.paint(r.style.sync, fmt.Sprintf("wait %v at %v", w.Semaphore, w.Stage)))
		}
		for _, in := range p.Inputs {
			if err := r.input(g, in); err != nil {
				return err
			}
		}
		for _, n := range p.Outputs {
			if err := r.output(g, n); err != nil {
				return err
			}
		}
		if p.SignalSemaphore != nil {
			r.printf("      %s\n", r.style.paint(r.style.sync, fmt.Sprintf("signal %v for %v", p.SignalSemaphore, p.SignalStages)))
		}
	}
	return nil
}

func (r *reporter) input(g *rendergraph.Graph, in rendergraph.InputInfo) error {
	n, err := g.Node(in.Node)
	if err != nil {
		return err
	}
	kind, err := r.kind(g, n.Resource, in.OperationIndex)
	if err != nil {
		return err
	}
	line := fmt.Sprintf("in  %-12s op %d %v", r.script.ResourceName(n.Resource), in.OperationIndex, kind)
	if in.Usage != rendergraph.UsageDefault {
		line += " " + in.Usage.String()
	}
	if in.ShouldTransferOwnership {
		line += " " + r.style.paint(r.style.sync, "transfer")
	}
	r.printf("      %s\n", line)
	return nil
}

func (r *reporter) output(g *rendergraph.Graph, h rendergraph.NodeHandle) error {
	n, err := g.Node(h)
	if err != nil {
		return err
	}
	kind, err := r.kind(g, n.Resource, n.OperationIndex)
	if err != nil {
		return err
	}
	line := fmt.Sprintf("out %-12s op %d %v", r.script.ResourceName(n.Resource), n.OperationIndex, kind)
	if info, err := g.Resource(n.Resource); err == nil && info.Texture != nil {
		size := info.Texture.Size()
		line += r.style.paint(r.style.dim, fmt.Sprintf(" %dx%d %s", size.Width, size.Height, formatName(info.Texture.Format())))
	}
	if n.ShouldClear {
		line += " clear"
	}
	if n.ShouldTransferOwnership {
		line += " " + r.style.paint(r.style.sync, "transfer")
	}
	if n.PresentSwapchain {
		line += " present"
	}
	r.printf("      %s\n", line)
	return nil
}

func (r *reporter) kind(g *rendergraph.Graph, h rendergraph.ResourceHandle, opIndex int) (string, error) {
	ops, err := g.Operations(h)
	if err != nil {
		return "", err
	}
	if opIndex < 0 || opIndex >= len(ops) {
		return "?", nil
	}
	return ops[opIndex].Kind.String(), nil
}

// stats prints the semaphore pool and structural cache counters.
func (r *reporter) stats(sem semaphore.Stats, cache target.Stats) {
	r.printf("%s\n", r.style.paint(r.style.header, "totals"))
	r.printf("  semaphores: %d created, %d free, %d in flight\n", sem.Created, sem.Free, sem.InFlight)
	r.printf("  render passes: %d cached, %d hits, %d misses\n",
		cache.RenderPasses.Len, cache.RenderPasses.Hits, cache.RenderPasses.Misses)
	r.printf("  render targets: %d cached, %d hits, %d misses\n",
		cache.RenderTargets.Len, cache.RenderTargets.Hits, cache.RenderTargets.Misses)
}
