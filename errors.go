package rendergraph

import "errors"

// Construction errors. These report a graph that violates the construction
// contract; the offending call or pass is rejected and nothing reaches the GPU.
var (
	// ErrNilResource is returned when a nil texture or buffer is registered.
	ErrNilResource = errors.New("rendergraph: resource is nil")

	// ErrResourceRegistered is returned when a native resource is registered twice.
	ErrResourceRegistered = errors.New("rendergraph: native resource already registered")

	// ErrStaleHandle is returned for a handle from an earlier frame or another graph.
	ErrStaleHandle = errors.New("rendergraph: stale or invalid handle")

	// ErrInputNotProduced is returned when a pass reads a node that no earlier pass produced.
	ErrInputNotProduced = errors.New("rendergraph: input was not produced by an earlier pass")

	// ErrNotOutput is returned when a pass configures a node it does not output.
	ErrNotOutput = errors.New("rendergraph: node is not an output of this pass")

	// ErrPresentNotSwapchain is returned when a non-swapchain resource is presented.
	ErrPresentNotSwapchain = errors.New("rendergraph: only swapchain attachments can be presented")

	// ErrResourcePresented is returned when a presented resource is used again
	// before the graph is cleared.
	ErrResourcePresented = errors.New("rendergraph: resource was already presented")

	// ErrDepthUsage is returned when a depth attachment input is declared on a
	// compute pass, on a buffer, or on a color format.
	ErrDepthUsage = errors.New("rendergraph: invalid depth attachment usage")

	// ErrMultipleDepth is returned when a pass binds more than one depth attachment.
	ErrMultipleDepth = errors.New("rendergraph: pass binds more than one depth attachment")

	// ErrAttachmentSize is returned when the attachments of a pass differ in size.
	ErrAttachmentSize = errors.New("rendergraph: attachment sizes differ")

	// ErrNilCallback is returned when a pass has no record callback.
	ErrNilCallback = errors.New("rendergraph: record callback is nil")

	// ErrBuilderClosed is returned when a PassBuilder is used after its setup returned.
	ErrBuilderClosed = errors.New("rendergraph: pass builder used outside its setup callback")
)

// Scheduling errors.
var (
	// ErrAlreadyPrepared is returned when passes are added to, or Prepare is
	// called on, a graph that was already prepared.
	ErrAlreadyPrepared = errors.New("rendergraph: graph already prepared")

	// ErrNotPrepared is returned when Render is called before Prepare.
	ErrNotPrepared = errors.New("rendergraph: graph not prepared")

	// ErrAlreadyRendered is returned when Render is called twice without Clear.
	ErrAlreadyRendered = errors.New("rendergraph: graph already rendered")

	// ErrComputeRenderTarget is returned when a render target is requested for a compute pass.
	ErrComputeRenderTarget = errors.New("rendergraph: compute passes have no render target")

	// ErrOperationNotFound is returned when an operation log has no entry
	// where the schedule expects one. It indicates internal inconsistency.
	ErrOperationNotFound = errors.New("rendergraph: operation not found")

	// ErrPassNotFound is returned for a pass index outside the graph.
	ErrPassNotFound = errors.New("rendergraph: pass not found")
)
