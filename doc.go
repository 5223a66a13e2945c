// Package rendergraph schedules the GPU passes of a frame.
//
// # Overview
//
// Callers register the resources a frame touches and declare passes with
// their inputs and outputs. The graph then works out, for that fixed pass
// order, which state every resource must be in before each pass, which
// barriers move it there, when a resource changes hands between the
// graphics and compute queue families, and which semaphores order those
// hand-offs. Render replays the passes through a Recorder and hands the
// finished command buffers to a Submitter.
//
// Passes run strictly in declaration order. The graph never reorders or
// culls passes.
//
// # Quick Start
//
//	g := rendergraph.New(rendergraph.QueueFamilies{Graphics: 0, Compute: 1})
//
//	color, _ := g.RegisterAttachment(swapchainImage)
//	particles, _ := g.RegisterBuffer(particleBuffer)
//
//	sim, _ := rendergraph.AddPass(g, "simulate", func(b *rendergraph.PassBuilder) rendergraph.NodeHandle {
//	    b.SetCompute()
//	    return b.AddOutput(particles)
//	}, simulate)
//
//	rendergraph.AddPass(g, "draw", func(b *rendergraph.PassBuilder) struct{} {
//	    b.AddInput(sim, rendergraph.UsageDefault)
//	    out := b.AddOutput(color)
//	    b.SetClear(out, rendergraph.ClearValue{})
//	    b.PresentSwapchain(out)
//	    return struct{}{}
//	}, draw)
//
//	if err := g.Prepare(); err != nil { ... }
//	if err := g.Render(recorder, submitter); err != nil { ... }
//	g.Clear()
//
// # Scheduling
//
// Every resource keeps a log of the operations passes perform on it. The
// barrier in front of operation i goes from the source state of operation
// i-1 to the destination state of operation i, as given by package access.
// When consecutive operations run on different queue families the barrier
// is split: the producing pass releases the resource right after it ran,
// the consuming pass acquires it before it runs, and a semaphore orders the
// two submissions. One semaphore is allocated per producing pass; it is
// waited on by the earliest dependent pass.
//
// # Caching
//
// Graphics passes that bind attachments get their render pass and render
// target objects from a target.Cache, so equal configurations share one
// object across passes and frames. Call ClearCache after a resize.
//
// # Backends
//
// Package recording captures commands in memory and is used by tests and
// the rgplan tool. Package backend/halbridge drives a gogpu/wgpu HAL device.
package rendergraph
