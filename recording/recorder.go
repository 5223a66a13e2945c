package recording

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/access"
	"github.com/gogpu/rendergraph/target"
)

// Recorder state errors.
var (
	// ErrNotRecording is returned when a call needs an open recording.
	ErrNotRecording = errors.New("recording: no recording in progress")

	// ErrAlreadyRecording is returned by BeginRecording while a recording is open.
	ErrAlreadyRecording = errors.New("recording: recording already in progress")

	// ErrTargetPassActive is returned when a target pass is begun twice, or
	// a recording is ended with its target pass still bound.
	ErrTargetPassActive = errors.New("recording: target pass still active")

	// ErrNoTargetPass is returned by EndTargetPass without a bound target.
	ErrNoTargetPass = errors.New("recording: no target pass active")
)

// Recorder captures passes as CommandBuffers instead of GPU work.
// It implements rendergraph.Recorder.
//
// Example:
//
//	rec := recording.NewRecorder()
//	tl := recording.NewTimeline()
//	err := g.Render(rec, tl)
//	_, err = tl.WriteTo(os.Stdout)
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	cur      *CommandBuffer
	inTarget bool
	finished int
}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// BeginRecording opens a command buffer for one pass.
func (r *Recorder) BeginRecording(q rendergraph.QueueAffinity, label string) error {
	if r.cur != nil {
		return fmt.Errorf("%w: %q", ErrAlreadyRecording, r.cur.label)
	}
	r.cur = &CommandBuffer{
		label:    label,
		queue:    q,
		commands: make([]Command, 0, 16),
	}
	return nil
}

// CommandBuffer returns the open command buffer, or nil between recordings.
func (r *Recorder) CommandBuffer() rendergraph.CommandBuffer {
	if r.cur == nil {
		return nil
	}
	return r.cur
}

// BeginTargetPass records the binding of rt.
func (r *Recorder) BeginTargetPass(rt *target.RenderTarget, rp *target.RenderPass, clear []rendergraph.ClearValue) error {
	if r.cur == nil {
		return ErrNotRecording
	}
	if r.inTarget {
		return ErrTargetPassActive
	}
	r.inTarget = true
	r.cur.append(BeginTargetPassCommand{Target: rt, RenderPass: rp, Clear: slices.Clone(clear)})
	return nil
}

// EndTargetPass records the end of the bound target pass.
func (r *Recorder) EndTargetPass() error {
	if r.cur == nil {
		return ErrNotRecording
	}
	if !r.inTarget {
		return ErrNoTargetPass
	}
	r.inTarget = false
	r.cur.append(EndTargetPassCommand{})
	return nil
}

// EndRecording closes the open command buffer and returns it.
func (r *Recorder) EndRecording() (rendergraph.CommandBuffer, error) {
	if r.cur == nil {
		return nil, ErrNotRecording
	}
	if r.inTarget {
		return nil, fmt.Errorf("%w: %q", ErrTargetPassActive, r.cur.label)
	}
	cb := r.cur
	r.cur = nil
	r.finished++
	return cb, nil
}

// DiscardRecording drops the open command buffer and any bound target pass.
func (r *Recorder) DiscardRecording() {
	r.cur = nil
	r.inTarget = false
}

// Finished returns the number of command buffers recorded so far.
func (r *Recorder) Finished() int { return r.finished }

// CommandBuffer is a recorded pass.
type CommandBuffer struct {
	label    string
	queue    rendergraph.QueueAffinity
	commands []Command
}

// Label returns the name of the pass the buffer was recorded for.
func (cb *CommandBuffer) Label() string { return cb.label }

// Queue returns the queue the buffer was recorded for.
func (cb *CommandBuffer) Queue() rendergraph.QueueAffinity { return cb.queue }

// Commands returns the recorded commands.
// The returned slice should not be modified.
func (cb *CommandBuffer) Commands() []Command { return cb.commands }

// Len returns the number of recorded commands.
func (cb *CommandBuffer) Len() int { return len(cb.commands) }

func (cb *CommandBuffer) append(c Command) {
	cb.commands = append(cb.commands, c)
}

// PipelineBarrier implements rendergraph.CommandBuffer.
func (cb *CommandBuffer) PipelineBarrier(src, dst access.PipelineStage, buffers []rendergraph.BufferBarrier, images []rendergraph.ImageBarrier) {
	cb.append(PipelineBarrierCommand{
		Src:     src,
		Dst:     dst,
		Buffers: slices.Clone(buffers),
		Images:  slices.Clone(images),
	})
}

// Marker records a label. Record callbacks use it in place of real work.
func (cb *CommandBuffer) Marker(label string) {
	cb.append(MarkerCommand{Label: label})
}

// Barriers returns the recorded barrier commands in order.
func (cb *CommandBuffer) Barriers() []PipelineBarrierCommand {
	var out []PipelineBarrierCommand
	for _, c := range cb.commands {
		if b, ok := c.(PipelineBarrierCommand); ok {
			out = append(out, b)
		}
	}
	return out
}

// marker is implemented by command buffers that accept debug labels.
type marker interface {
	Marker(label string)
}

// Playback replays the buffer into rec, which must have no open recording.
// Markers reach the target only if its command buffer has a Marker method.
// A failed replay discards the recording it opened.
func (cb *CommandBuffer) Playback(rec rendergraph.Recorder) (rendergraph.CommandBuffer, error) {
	if err := rec.BeginRecording(cb.queue, cb.label); err != nil {
		return nil, err
	}
	out, err := cb.replay(rec)
	if err != nil {
		rec.DiscardRecording()
		return nil, err
	}
	return out, nil
}

func (cb *CommandBuffer) replay(rec rendergraph.Recorder) (rendergraph.CommandBuffer, error) {
	out := rec.CommandBuffer()
	for _, cmd := range cb.commands {
		switch c := cmd.(type) {
		case PipelineBarrierCommand:
			out.PipelineBarrier(c.Src, c.Dst, c.Buffers, c.Images)
		case BeginTargetPassCommand:
			if err := rec.BeginTargetPass(c.Target, c.RenderPass, c.Clear); err != nil {
				return nil, err
			}
		case EndTargetPassCommand:
			if err := rec.EndTargetPass(); err != nil {
				return nil, err
			}
		case MarkerCommand:
			if m, ok := out.(marker); ok {
				m.Marker(c.Label)
			}
		}
	}
	return rec.EndRecording()
}
