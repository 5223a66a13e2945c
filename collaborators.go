package rendergraph

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendergraph/access"
	"github.com/gogpu/rendergraph/semaphore"
	"github.com/gogpu/rendergraph/target"
)

// QueueAffinity selects the hardware queue a pass is submitted to.
type QueueAffinity uint8

const (
	// QueueGraphics is the graphics queue. Passes use it unless SetCompute is called.
	QueueGraphics QueueAffinity = iota
	// QueueCompute is the asynchronous compute queue.
	QueueCompute
)

// String returns the affinity name.
func (q QueueAffinity) String() string {
	switch q {
	case QueueGraphics:
		return "graphics"
	case QueueCompute:
		return "compute"
	default:
		return fmt.Sprintf("QueueAffinity(%d)", uint8(q))
	}
}

// QueueResolver maps a queue affinity to the queue family index of the device.
//
// Two passes whose affinities resolve to the same family are ordered by
// pipeline barriers alone; different families require an ownership transfer
// and a semaphore.
type QueueResolver interface {
	QueueFamilyIndex(q QueueAffinity) uint32
}

// QueueFamilies is a QueueResolver with fixed family indices.
// The zero value puts both queues on family 0.
type QueueFamilies struct {
	Graphics uint32
	Compute  uint32
}

// QueueFamilyIndex implements QueueResolver.
func (f QueueFamilies) QueueFamilyIndex(q QueueAffinity) uint32 {
	if q == QueueCompute {
		return f.Compute
	}
	return f.Graphics
}

// Texture is an image that can be registered as an attachment.
//
// The native handle identifies the image: registering two Textures with the
// same handle is an error.
type Texture interface {
	NativeHandle() uintptr
	Size() gputypes.Extent3D
	Format() gputypes.TextureFormat
	IsSwapchain() bool
}

// Buffer is a GPU buffer that can be registered with a graph.
type Buffer interface {
	NativeHandle() uintptr
	Size() uint64
}

// BufferBarrier is a buffer memory barrier over the whole buffer.
type BufferBarrier struct {
	Buffer         Buffer
	SrcAccess      access.Flags
	DstAccess      access.Flags
	SrcQueueFamily uint32
	DstQueueFamily uint32
	Offset         uint64
	Size           uint64
}

// ImageBarrier is an image memory barrier with a layout transition.
type ImageBarrier struct {
	Texture        Texture
	SrcAccess      access.Flags
	DstAccess      access.Flags
	OldLayout      access.ImageLayout
	NewLayout      access.ImageLayout
	SrcQueueFamily uint32
	DstQueueFamily uint32
	Aspect         access.Aspect
	BaseMipLevel   uint32
	LevelCount     uint32
	BaseArrayLayer uint32
	LayerCount     uint32
}

// CommandBuffer is the command stream of the pass being recorded.
type CommandBuffer interface {
	PipelineBarrier(src, dst access.PipelineStage, buffers []BufferBarrier, images []ImageBarrier)
}

// Recorder is the recording collaborator Render drives.
//
// One recording spans exactly one pass: BeginRecording, an optional
// BeginTargetPass/EndTargetPass pair, then EndRecording, which returns the
// finished command buffer. When a pass fails after BeginRecording,
// DiscardRecording abandons the recording and any bound target pass so the
// next BeginRecording succeeds. DiscardRecording is a no-op between
// recordings.
type Recorder interface {
	BeginRecording(q QueueAffinity, label string) error
	CommandBuffer() CommandBuffer
	BeginTargetPass(rt *target.RenderTarget, rp *target.RenderPass, clear []ClearValue) error
	EndTargetPass() error
	EndRecording() (CommandBuffer, error)
	DiscardRecording()
}

// Wait is a semaphore a pass waits on before the given stages execute.
type Wait struct {
	Semaphore *semaphore.Semaphore
	Stage     access.PipelineStage
}

// Submission describes one finished pass for the submission collaborator.
type Submission struct {
	// Pass is the debug name of the pass.
	Pass string
	// Index is the position of the pass in the graph.
	Index         int
	Queue         QueueAffinity
	QueueFamily   uint32
	CommandBuffer CommandBuffer
	// Waits lists the semaphores to wait on, with the stages that wait.
	Waits []Wait
	// Signal is the semaphore to signal on completion, or nil.
	Signal *semaphore.Semaphore
	// SignalStages is the union of the stages dependent passes wait in.
	SignalStages access.PipelineStage
}

// Submitter accepts finished passes in declaration order.
// Implementations may batch them; the graph never calls a native submit.
type Submitter interface {
	Submit(s Submission) error
}

// RecordFunc records the body of a pass. It is called exactly once per Render.
type RecordFunc func(cmd CommandBuffer) error

// ClearValue is the value an output attachment is cleared to.
type ClearValue struct {
	Color   gputypes.Color
	Depth   float32
	Stencil uint32
}
