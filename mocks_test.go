package rendergraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph/access"
	"github.com/gogpu/rendergraph/target"
)

// mockTexture is a test double for Texture.
type mockTexture struct {
	handle        uintptr
	width, height uint32
	format        gputypes.TextureFormat
	swapchain     bool
}

func (t *mockTexture) NativeHandle() uintptr { return t.handle }
func (t *mockTexture) Size() gputypes.Extent3D {
	return gputypes.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1}
}
func (t *mockTexture) Format() gputypes.TextureFormat {
	if t.format == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatRGBA8Unorm
	}
	return t.format
}
func (t *mockTexture) IsSwapchain() bool { return t.swapchain }

// mockBuffer is a test double for Buffer.
type mockBuffer struct {
	handle uintptr
	size   uint64
}

func (b *mockBuffer) NativeHandle() uintptr { return b.handle }
func (b *mockBuffer) Size() uint64          { return b.size }

// mockFences counts fence creation. The fences it returns are nil.
type mockFences struct {
	created, destroyed int
}

func (m *mockFences) CreateFence() (hal.Fence, error) {
	m.created++
	return nil, nil
}
func (m *mockFences) DestroyFence(hal.Fence) { m.destroyed++ }

// mockFactory counts render pass and render target creation.
type mockFactory struct {
	passes, targets int
}

func (f *mockFactory) CreateRenderPass(*target.RenderPassInitializer) (any, error) {
	f.passes++
	return f.passes, nil
}

func (f *mockFactory) CreateRenderTarget(*target.RenderTargetInitializer) (any, error) {
	f.targets++
	return f.targets, nil
}

// barrierCall is one PipelineBarrier call.
type barrierCall struct {
	src, dst access.PipelineStage
	buffers  []BufferBarrier
	images   []ImageBarrier
}

// mockCommandBuffer records barriers and user commands.
type mockCommandBuffer struct {
	label    string
	queue    QueueAffinity
	barriers []barrierCall
	events   []string
}

func (c *mockCommandBuffer) PipelineBarrier(src, dst access.PipelineStage, buffers []BufferBarrier, images []ImageBarrier) {
	c.barriers = append(c.barriers, barrierCall{src: src, dst: dst, buffers: buffers, images: images})
	c.events = append(c.events, "barrier")
}

// mockRecorder is a test double for Recorder.
type mockRecorder struct {
	cur     *mockCommandBuffer
	targets []*target.RenderTarget
	clears  [][]ClearValue
	events  []string

	failBegin error
}

func (r *mockRecorder) BeginRecording(q QueueAffinity, label string) error {
	if r.failBegin != nil {
		return r.failBegin
	}
	if r.cur != nil {
		return fmt.Errorf("recording %q still open", r.cur.label)
	}
	r.cur = &mockCommandBuffer{label: label, queue: q}
	r.events = append(r.events, "begin:"+label)
	return nil
}

func (r *mockRecorder) CommandBuffer() CommandBuffer { return r.cur }

func (r *mockRecorder) BeginTargetPass(rt *target.RenderTarget, _ *target.RenderPass, clears []ClearValue) error {
	r.targets = append(r.targets, rt)
	r.clears = append(r.clears, clears)
	r.cur.events = append(r.cur.events, "target")
	return nil
}

func (r *mockRecorder) EndTargetPass() error {
	r.cur.events = append(r.cur.events, "endtarget")
	return nil
}

func (r *mockRecorder) DiscardRecording() {
	if r.cur == nil {
		return
	}
	r.events = append(r.events, "discard:"+r.cur.label)
	r.cur = nil
}

func (r *mockRecorder) EndRecording() (CommandBuffer, error) {
	cb := r.cur
	r.cur = nil
	r.events = append(r.events, "end:"+cb.label)
	return cb, nil
}

// mockSubmitter collects submissions.
type mockSubmitter struct {
	subs []Submission
}

func (s *mockSubmitter) Submit(sub Submission) error {
	s.subs = append(s.subs, sub)
	return nil
}

func nopRecord(CommandBuffer) error { return nil }

// markRecord returns a record callback that logs name into the command buffer.
func markRecord(name string) RecordFunc {
	return func(cmd CommandBuffer) error {
		cb := cmd.(*mockCommandBuffer)
		cb.events = append(cb.events, "record:"+name)
		return nil
	}
}
