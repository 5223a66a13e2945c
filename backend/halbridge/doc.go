// Package halbridge runs a render graph on a gogpu/wgpu HAL device.
//
// It provides the collaborators the graph drives at render time:
//
//   - Texture and Buffer wrap hal.Texture and hal.Buffer for registration.
//   - Recorder opens one hal.CommandEncoder per pass and translates the
//     graph's barriers into TransitionTextures and TransitionBuffers calls.
//   - Factory turns cached render target configurations into texture views.
//   - Submitter submits finished passes on the HAL queue.
//
// HAL exposes a single queue and no semaphore waits. Device.Families
// therefore resolves both queue affinities to one family, and semaphore
// waits that do reach the Submitter are honoured with a CPU fence wait.
//
// Quick start:
//
//	dev, err := halbridge.FromProvider(provider)
//	if err != nil {
//	    return err
//	}
//	g := dev.NewGraph()
//	rec, sub := dev.NewRecorder(), dev.NewSubmitter()
//	defer sub.Destroy()
//
//	// every frame
//	g.Clear()
//	// ... register resources and add passes ...
//	if err := g.Prepare(); err != nil {
//	    return err
//	}
//	if err := g.Render(rec, sub); err != nil {
//	    return err
//	}
//	return sub.Finish()
//
// Record callbacks reach the native encoder through the command buffer:
//
//	func(cmd rendergraph.CommandBuffer) error {
//	    rp := cmd.(*halbridge.CommandBuffer).RenderPass()
//	    rp.SetPipeline(pipeline)
//	    rp.Draw(3, 1, 0, 0)
//	    return nil
//	}
package halbridge
