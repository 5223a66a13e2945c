package recording

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/semaphore"
)

// ErrUnsignaledWait is returned when a submission waits on a semaphore that
// no earlier submission of the frame signals at its current value.
var ErrUnsignaledWait = errors.New("recording: wait on a semaphore that was not signaled")

// Timeline is a rendergraph.Submitter that keeps submissions in memory,
// grouped by frame, and checks that every wait follows its signal.
//
// The Timeline is not safe for concurrent use.
type Timeline struct {
	frames   [][]rendergraph.Submission
	cur      []rendergraph.Submission
	signaled map[*semaphore.Semaphore]uint64
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{signaled: make(map[*semaphore.Semaphore]uint64)}
}

// Submit implements rendergraph.Submitter.
func (t *Timeline) Submit(s rendergraph.Submission) error {
	for _, w := range s.Waits {
		v, ok := t.signaled[w.Semaphore]
		if !ok || v != w.Semaphore.Value() {
			return fmt.Errorf("%w: pass %q waits on %v", ErrUnsignaledWait, s.Pass, w.Semaphore)
		}
	}
	if s.Signal != nil {
		t.signaled[s.Signal] = s.Signal.Value()
	}
	t.cur = append(t.cur, s)
	return nil
}

// EndFrame closes the current frame.
func (t *Timeline) EndFrame() {
	t.frames = append(t.frames, t.cur)
	t.cur = nil
	clear(t.signaled)
}

// Frames returns the closed frames.
func (t *Timeline) Frames() [][]rendergraph.Submission { return t.frames }

// Pending returns the submissions of the frame not yet closed.
func (t *Timeline) Pending() []rendergraph.Submission { return t.cur }

// Reset drops every recorded submission.
func (t *Timeline) Reset() {
	t.frames = nil
	t.cur = nil
	clear(t.signaled)
}

// WriteTo writes a text dump of every frame, the pending one last.
func (t *Timeline) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	for i, f := range t.frames {
		fmt.Fprintf(cw, "frame %d\n", i)
		for _, s := range f {
			writeSubmission(cw, s)
		}
	}
	if len(t.cur) > 0 {
		fmt.Fprintf(cw, "frame %d (pending)\n", len(t.frames))
		for _, s := range t.cur {
			writeSubmission(cw, s)
		}
	}
	if err := cw.w.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, cw.err
}

// countingWriter counts bytes and keeps the first write error.
type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}

func writeSubmission(w io.Writer, s rendergraph.Submission) {
	fmt.Fprintf(w, "  [%d] %s %v q%d\n", s.Index, s.Pass, s.Queue, s.QueueFamily)
	for _, wt := range s.Waits {
		fmt.Fprintf(w, "      wait %v at %v\n", wt.Semaphore, wt.Stage)
	}
	if cb, ok := s.CommandBuffer.(*CommandBuffer); ok {
		for _, c := range cb.commands {
			writeCommand(w, c)
		}
	}
	if s.Signal != nil {
		fmt.Fprintf(w, "      signal %v for %v\n", s.Signal, s.SignalStages)
	}
}

func writeCommand(w io.Writer, c Command) {
	switch c := c.(type) {
	case PipelineBarrierCommand:
		fmt.Fprintf(w, "      barrier %v -> %v\n", c.Src, c.Dst)
		for _, b := range c.Buffers {
			fmt.Fprintf(w, "        buffer 0x%x %v -> %v q%d->q%d\n",
				b.Buffer.NativeHandle(), b.SrcAccess, b.DstAccess, b.SrcQueueFamily, b.DstQueueFamily)
		}
		for _, im := range c.Images {
			fmt.Fprintf(w, "        image 0x%x %v -> %v %v -> %v q%d->q%d %v\n",
				im.Texture.NativeHandle(), im.OldLayout, im.NewLayout, im.SrcAccess, im.DstAccess,
				im.SrcQueueFamily, im.DstQueueFamily, im.Aspect)
		}
	case BeginTargetPassCommand:
		if c.Target != nil {
			fmt.Fprintf(w, "      begin target %08x pass %08x attachments %d\n",
				c.Target.Hash(), c.RenderPass.Hash(), len(c.Target.Initializer().Attachments))
		}
		for i, cv := range c.Clear {
			fmt.Fprintf(w, "        clear %d color(%g %g %g %g) depth %g stencil %d\n",
				i, cv.Color.R, cv.Color.G, cv.Color.B, cv.Color.A, cv.Depth, cv.Stencil)
		}
	case EndTargetPassCommand:
		fmt.Fprintln(w, "      end target")
	case MarkerCommand:
		fmt.Fprintf(w, "      marker %q\n", c.Label)
	}
}
