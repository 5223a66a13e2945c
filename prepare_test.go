// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rendergraph

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendergraph/access"
)

// Pass one clears and writes X, pass two samples it on the same queue.
func TestScenarioSameQueueRead(t *testing.T) {
	g := New(QueueFamilies{Graphics: 0, Compute: 1})
	x, _ := g.RegisterAttachment(&mockTexture{handle: 1, width: 64, height: 64})

	written, err := AddPass(g, "write", func(b *PassBuilder) NodeHandle {
		n := b.AddOutput(x)
		b.SetClear(n, ClearValue{Color: gputypes.Color{R: 1, A: 1}})
		return n
	}, nopRecord)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := AddPass(g, "read", func(b *PassBuilder) struct{} {
		b.AddInput(written, UsageDefault)
		return struct{}{}
	}, nopRecord); err != nil {
		t.Fatal(err)
	}
	if err := g.Prepare(); err != nil {
		t.Fatal(err)
	}

	if st := g.Semaphores().Stats(); st.Created != 0 {
		t.Errorf("semaphores created = %d, want 0", st.Created)
	}
	for i := range 2 {
		p, _ := g.Pass(i)
		if p.SignalSemaphore != nil || len(p.Waits) != 0 {
			t.Errorf("pass %d has semaphores: %+v", i, p)
		}
	}

	ops, _ := g.Operations(x)
	want := []Operation{{0, 0, access.ColorAttachment}, {1, 0, access.GraphicsShaderRead}}
	if len(ops) != len(want) || ops[0] != want[0] || ops[1] != want[1] {
		t.Fatalf("Operations = %v, want %v", ops, want)
	}

	b, err := g.Barrier(x, 1)
	if err != nil {
		t.Fatal(err)
	}
	if b.Image == nil {
		t.Fatal("attachment barrier has no image barrier")
	}
	if b.Image.OldLayout != access.LayoutColorAttachmentOptimal || b.Image.NewLayout != access.LayoutShaderReadOnlyOptimal {
		t.Errorf("layouts = %v -> %v, want ColorAttachmentOptimal -> ShaderReadOnlyOptimal",
			b.Image.OldLayout, b.Image.NewLayout)
	}
	if b.Image.Aspect != access.AspectColor {
		t.Errorf("Aspect = %v, want Color", b.Image.Aspect)
	}
	if b.Image.LevelCount != access.RemainingLevels || b.Image.LayerCount != access.RemainingLayers {
		t.Errorf("subresource range = %d levels, %d layers; want the whole image", b.Image.LevelCount, b.Image.LayerCount)
	}
	if b.IsTransfer() {
		t.Error("same-queue barrier reports a transfer")
	}
}

// Pass one writes a storage buffer on graphics, pass two reads it on compute.
func TestScenarioCrossQueueBuffer(t *testing.T) {
	g := New(QueueFamilies{Graphics: 0, Compute: 1})
	buf, _ := g.RegisterBuffer(&mockBuffer{handle: 10, size: 1024})

	out, _ := AddPass(g, "fill", func(b *PassBuilder) NodeHandle { return b.AddOutput(buf) }, nopRecord)
	if _, err := AddPass(g, "reduce", func(b *PassBuilder) struct{} {
		b.SetCompute()
		b.AddInput(out, UsageDefault)
		return struct{}{}
	}, nopRecord); err != nil {
		t.Fatal(err)
	}
	if err := g.Prepare(); err != nil {
		t.Fatal(err)
	}

	n, _ := g.Node(out)
	if !n.ShouldTransferOwnership {
		t.Error("producer node not flagged for ownership transfer")
	}
	p0, _ := g.Pass(0)
	p1, _ := g.Pass(1)
	if p0.SignalSemaphore == nil {
		t.Fatal("producer pass has no signal semaphore")
	}
	if p0.SignalStages != access.StageComputeShader {
		t.Errorf("SignalStages = %v, want ComputeShader", p0.SignalStages)
	}
	if len(p1.Waits) != 1 || p1.Waits[0].Semaphore != p0.SignalSemaphore {
		t.Fatalf("consumer waits = %v, want the producer semaphore", p1.Waits)
	}
	if p1.Waits[0].Stage != access.StageComputeShader {
		t.Errorf("wait stage = %v, want ComputeShader", p1.Waits[0].Stage)
	}
	if len(p0.Waits) != 0 || p1.SignalSemaphore != nil {
		t.Error("semaphore attached to the wrong pass")
	}
	if st := g.Semaphores().Stats(); st.Created != 1 {
		t.Errorf("semaphores created = %d, want 1", st.Created)
	}

	b, _ := g.Barrier(buf, 1)
	if b.Buffer == nil {
		t.Fatal("buffer barrier missing")
	}
	if b.Buffer.SrcQueueFamily != 0 || b.Buffer.DstQueueFamily != 1 {
		t.Errorf("queue families = %d -> %d, want 0 -> 1", b.Buffer.SrcQueueFamily, b.Buffer.DstQueueFamily)
	}
	if b.Buffer.Size != access.WholeSize {
		t.Errorf("Size = %d, want WholeSize", b.Buffer.Size)
	}
	if !b.IsTransfer() {
		t.Error("cross-queue barrier does not report a transfer")
	}
}

// A pass presents the swapchain image.
func TestScenarioPresent(t *testing.T) {
	g := New(nil)
	sc, _ := g.RegisterAttachment(&mockTexture{handle: 1, width: 800, height: 600, swapchain: true, format: gputypes.TextureFormatBGRA8Unorm})

	if _, err := AddPass(g, "final", func(b *PassBuilder) NodeHandle {
		n := b.AddOutput(sc)
		b.PresentSwapchain(n)
		return n
	}, nopRecord); err != nil {
		t.Fatal(err)
	}

	_, err := AddPass(g, "late", func(b *PassBuilder) NodeHandle { return b.AddOutput(sc) }, nopRecord)
	if !errors.Is(err, ErrResourcePresented) {
		t.Fatalf("use after present error = %v, want ErrResourcePresented", err)
	}

	if err := g.Prepare(); err != nil {
		t.Fatal(err)
	}
	ops, _ := g.Operations(sc)
	if len(ops) != 2 || ops[1].Kind != access.Present || ops[1].Pass != 1 {
		t.Fatalf("Operations = %v, want a Present at pass 1", ops)
	}
	b, _ := g.Barrier(sc, 1)
	if b.Image.NewLayout != access.LayoutPresentSrc {
		t.Errorf("present barrier NewLayout = %v, want PresentSrc", b.Image.NewLayout)
	}

	rec := &mockRecorder{}
	if err := g.Render(rec, &mockSubmitter{}); err != nil {
		t.Fatal(err)
	}

	g.Clear()
	sc, _ = g.RegisterAttachment(&mockTexture{handle: 1, width: 800, height: 600, swapchain: true})
	if _, err := AddPass(g, "next", func(b *PassBuilder) NodeHandle { return b.AddOutput(sc) }, nopRecord); err != nil {
		t.Errorf("swapchain unusable after Clear: %v", err)
	}
}

func TestFirstOperationStartsUndefined(t *testing.T) {
	g := New(nil)
	x, _ := g.RegisterAttachment(&mockTexture{handle: 1, width: 4, height: 4})
	_, _ = AddPass(g, "p", func(b *PassBuilder) NodeHandle { return b.AddOutput(x) }, nopRecord)
	if err := g.Prepare(); err != nil {
		t.Fatal(err)
	}
	b, err := g.Barrier(x, 0)
	if err != nil {
		t.Fatal(err)
	}
	if b.Image.SrcAccess != access.AccessNone || b.Image.OldLayout != access.LayoutUndefined {
		t.Errorf("first barrier source = %v %v, want None Undefined", b.Image.SrcAccess, b.Image.OldLayout)
	}
	if _, err := g.Barrier(x, 1); !errors.Is(err, ErrOperationNotFound) {
		t.Errorf("Barrier past the log error = %v, want ErrOperationNotFound", err)
	}
}

// One semaphore per producing pass, waited on by the earliest dependent.
func TestOneSemaphorePerPass(t *testing.T) {
	g := New(QueueFamilies{Graphics: 0, Compute: 1})
	a, _ := g.RegisterBuffer(&mockBuffer{handle: 1})
	c, _ := g.RegisterAttachment(&mockTexture{handle: 2, width: 8, height: 8})

	type outs struct{ a, c NodeHandle }
	o, _ := AddPass(g, "produce", func(b *PassBuilder) outs {
		return outs{a: b.AddOutput(a), c: b.AddOutput(c)}
	}, nopRecord)
	_, _ = AddPass(g, "first", func(b *PassBuilder) struct{} {
		b.SetCompute()
		b.AddInput(o.a, UsageDefault)
		return struct{}{}
	}, nopRecord)
	_, _ = AddPass(g, "second", func(b *PassBuilder) struct{} {
		b.SetCompute()
		b.AddInput(o.c, UsageDefault)
		return struct{}{}
	}, nopRecord)
	if err := g.Prepare(); err != nil {
		t.Fatal(err)
	}

	if st := g.Semaphores().Stats(); st.Created != 1 {
		t.Errorf("semaphores created = %d, want 1", st.Created)
	}
	p1, _ := g.Pass(1)
	p2, _ := g.Pass(2)
	if len(p1.Waits) != 1 || len(p2.Waits) != 0 {
		t.Errorf("waits = %d/%d, want 1/0", len(p1.Waits), len(p2.Waits))
	}
	for _, n := range []NodeHandle{o.a, o.c} {
		info, _ := g.Node(n)
		if !info.ShouldTransferOwnership {
			t.Errorf("node %v not flagged", n)
		}
	}
}

// A compute read followed by a graphics read transfers ownership back.
func TestInputTransfer(t *testing.T) {
	g := New(QueueFamilies{Graphics: 0, Compute: 1})
	x, _ := g.RegisterAttachment(&mockTexture{handle: 1, width: 8, height: 8})

	n, _ := AddPass(g, "draw", func(b *PassBuilder) NodeHandle { return b.AddOutput(x) }, nopRecord)
	_, _ = AddPass(g, "analyze", func(b *PassBuilder) struct{} {
		b.SetCompute()
		b.AddInput(n, UsageDefault)
		return struct{}{}
	}, nopRecord)
	_, _ = AddPass(g, "composite", func(b *PassBuilder) struct{} {
		b.AddInput(n, UsageDefault)
		return struct{}{}
	}, nopRecord)
	if err := g.Prepare(); err != nil {
		t.Fatal(err)
	}

	p1, _ := g.Pass(1)
	if !p1.Inputs[0].ShouldTransferOwnership {
		t.Error("compute input not flagged for transfer")
	}
	if p1.Inputs[0].OperationIndex != 1 {
		t.Errorf("input OperationIndex = %d, want 1", p1.Inputs[0].OperationIndex)
	}
	p2, _ := g.Pass(2)
	if p1.SignalSemaphore == nil || len(p2.Waits) != 1 || p2.Waits[0].Semaphore != p1.SignalSemaphore {
		t.Error("compute pass does not signal the composite pass")
	}
	if p2.Waits[0].Stage != access.StageVertexShader|access.StageFragmentShader {
		t.Errorf("wait stage = %v", p2.Waits[0].Stage)
	}
	if p2.Inputs[0].ShouldTransferOwnership {
		t.Error("last input flagged for transfer")
	}
}

func TestDepthOperations(t *testing.T) {
	g := New(nil)
	d, _ := g.RegisterAttachment(&mockTexture{handle: 1, width: 8, height: 8, format: gputypes.TextureFormatDepth24PlusStencil8})
	n, _ := AddPass(g, "prepass", func(b *PassBuilder) NodeHandle { return b.AddOutput(d) }, nopRecord)
	_, _ = AddPass(g, "shade", func(b *PassBuilder) struct{} {
		b.AddInput(n, UsageDepthAttachment)
		return struct{}{}
	}, nopRecord)
	_, _ = AddPass(g, "ssao", func(b *PassBuilder) struct{} {
		b.AddInput(n, UsageDefault)
		return struct{}{}
	}, nopRecord)
	if err := g.Prepare(); err != nil {
		t.Fatal(err)
	}

	ops, _ := g.Operations(d)
	kinds := []access.Kind{access.DepthStencilAttachment, access.DepthStencilAttachment, access.GraphicsShaderRead}
	for i, k := range kinds {
		if ops[i].Kind != k {
			t.Errorf("ops[%d].Kind = %v, want %v", i, ops[i].Kind, k)
		}
	}
	b, _ := g.Barrier(d, 2)
	if b.Image.Aspect != access.AspectDepth|access.AspectStencil {
		t.Errorf("Aspect = %v, want Depth|Stencil", b.Image.Aspect)
	}
	if b.Image.OldLayout != access.LayoutDepthStencilAttachmentOptimal {
		t.Errorf("OldLayout = %v", b.Image.OldLayout)
	}
}

func TestPrepareTwice(t *testing.T) {
	g := New(nil)
	if err := g.Prepare(); err != nil {
		t.Fatal(err)
	}
	if err := g.Prepare(); !errors.Is(err, ErrAlreadyPrepared) {
		t.Errorf("second Prepare error = %v, want ErrAlreadyPrepared", err)
	}
	_, err := AddPass(g, "late", func(*PassBuilder) struct{} { return struct{}{} }, nopRecord)
	if !errors.Is(err, ErrAlreadyPrepared) {
		t.Errorf("AddPass after Prepare error = %v, want ErrAlreadyPrepared", err)
	}
}

// randomGraph builds a chain of passes over a few resources with random
// queue assignments.
func randomGraph(t *testing.T, seed uint64) (*Graph, []ResourceHandle) {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed*31+7))
	g := New(QueueFamilies{Graphics: 0, Compute: 1})

	var res []ResourceHandle
	for i := range 3 {
		h, _ := g.RegisterAttachment(&mockTexture{handle: uintptr(i + 1), width: 16, height: 16})
		res = append(res, h)
	}
	for i := range 2 {
		h, _ := g.RegisterBuffer(&mockBuffer{handle: uintptr(100 + i), size: 64})
		res = append(res, h)
	}

	latest := make([]NodeHandle, len(res))
	for p := range 12 {
		compute := rng.IntN(2) == 0
		ri := rng.IntN(len(res))
		read := rng.IntN(len(res))
		_, err := AddPass(g, "p", func(b *PassBuilder) struct{} {
			if compute {
				b.SetCompute()
			}
			if latest[read].IsValid() && read != ri {
				b.AddInput(latest[read], UsageDefault)
			}
			latest[ri] = b.AddOutput(res[ri])
			return struct{}{}
		}, nopRecord)
		if err != nil {
			t.Fatalf("pass %d: %v", p, err)
		}
	}
	if err := g.Prepare(); err != nil {
		t.Fatal(err)
	}
	return g, res
}

func TestBarrierProperties(t *testing.T) {
	for seed := range uint64(20) {
		g, res := randomGraph(t, seed)
		for _, h := range res {
			info, _ := g.Resource(h)
			for i, op := range info.Operations {
				b, err := g.Barrier(h, i)
				if err != nil {
					t.Fatalf("seed %d: Barrier(%v, %d): %v", seed, h, i, err)
				}
				wantDst, _ := stateOf(info.Type, op, false)
				if b.Dst != wantDst {
					t.Errorf("seed %d: %v op %d dst = %v, want %v", seed, h, i, b.Dst, wantDst)
				}
				if i == 0 {
					if b.Src.Access != access.AccessNone || b.Src.Layout != access.LayoutUndefined {
						t.Errorf("seed %d: %v op 0 src = %v", seed, h, b.Src)
					}
					continue
				}
				wantSrc, _ := stateOf(info.Type, info.Operations[i-1], true)
				if b.Src != wantSrc {
					t.Errorf("seed %d: %v op %d src = %v, want %v", seed, h, i, b.Src, wantSrc)
				}
			}
		}
		checkTransferFlags(t, g, seed)
	}
}

func stateOf(typ ResourceType, op Operation, source bool) (access.State, error) {
	if typ == ResourceBuffer {
		return access.ForBuffer(op.Kind, op.QueueFamily, source)
	}
	return access.For(op.Kind, op.QueueFamily, source)
}

// checkTransferFlags verifies that the record owning operation i is flagged
// exactly when operation i+1 runs on another queue family.
func checkTransferFlags(t *testing.T, g *Graph, seed uint64) {
	t.Helper()
	for pi := range g.PassCount() {
		p, _ := g.Pass(pi)
		signals := false
		for _, n := range p.Outputs {
			info, _ := g.Node(n)
			ops, _ := g.Operations(info.Resource)
			want := info.OperationIndex+1 < len(ops) && ops[info.OperationIndex+1].QueueFamily != p.QueueFamily
			if info.ShouldTransferOwnership != want {
				t.Errorf("seed %d: pass %d output %v transfer = %v, want %v", seed, pi, n, info.ShouldTransferOwnership, want)
			}
			signals = signals || want
		}
		for _, in := range p.Inputs {
			info, _ := g.Node(in.Node)
			ops, _ := g.Operations(info.Resource)
			want := in.OperationIndex+1 < len(ops) && ops[in.OperationIndex+1].QueueFamily != p.QueueFamily
			if in.ShouldTransferOwnership != want {
				t.Errorf("seed %d: pass %d input %v transfer = %v, want %v", seed, pi, in.Node, in.ShouldTransferOwnership, want)
			}
			signals = signals || want
		}
		if signals != (p.SignalSemaphore != nil) {
			t.Errorf("seed %d: pass %d signal = %v, transfers = %v", seed, pi, p.SignalSemaphore, signals)
		}
	}
}
