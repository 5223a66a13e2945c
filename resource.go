package rendergraph

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendergraph/access"
)

// ResourceType is the type of a registered resource.
type ResourceType uint8

const (
	// ResourceAttachment is an image usable as a render target or shader resource.
	ResourceAttachment ResourceType = iota
	// ResourceBuffer is a storage or uniform buffer.
	ResourceBuffer
)

// String returns the type name.
func (t ResourceType) String() string {
	switch t {
	case ResourceAttachment:
		return "attachment"
	case ResourceBuffer:
		return "buffer"
	default:
		return fmt.Sprintf("ResourceType(%d)", uint8(t))
	}
}

// ResourceHandle refers to a resource registered with a Graph.
// The zero value is invalid.
type ResourceHandle struct {
	index uint32
	gen   uint32
}

// IsValid reports whether h was returned by a successful registration.
// A valid handle still goes stale when its graph is cleared.
func (h ResourceHandle) IsValid() bool { return h.gen != 0 }

// String formats the handle for logs.
func (h ResourceHandle) String() string {
	return fmt.Sprintf("r%d@%d", h.index, h.gen)
}

// NodeHandle refers to a pass output. The zero value is invalid.
type NodeHandle struct {
	index uint32
	gen   uint32
}

// IsValid reports whether h was returned by PassBuilder.AddOutput.
func (h NodeHandle) IsValid() bool { return h.gen != 0 }

// String formats the handle for logs.
func (h NodeHandle) String() string {
	return fmt.Sprintf("n%d@%d", h.index, h.gen)
}

// Operation is one entry in the operation log of a resource.
type Operation struct {
	// Pass is the index of the pass performing the operation. The
	// synthetic present operation uses the index after the presenting pass.
	Pass        int
	QueueFamily uint32
	Kind        access.Kind
}

// String formats the operation for logs.
func (o Operation) String() string {
	return fmt.Sprintf("%v@p%d/q%d", o.Kind, o.Pass, o.QueueFamily)
}

type resource struct {
	typ     ResourceType
	texture Texture
	buffer  Buffer
	ops     []Operation

	// presented is set once a pass presents the resource.
	presented bool
}

func (r *resource) handle() uintptr {
	if r.typ == ResourceBuffer {
		return r.buffer.NativeHandle()
	}
	return r.texture.NativeHandle()
}

// isDepth reports whether the resource is a depth/stencil attachment.
func (r *resource) isDepth() bool {
	return r.typ == ResourceAttachment && isDepthFormat(r.texture.Format())
}

func isDepthFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatDepth16Unorm,
		gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32Float,
		gputypes.TextureFormatDepth32FloatStencil8,
		gputypes.TextureFormatStencil8:
		return true
	}
	return false
}

func hasStencil(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32FloatStencil8,
		gputypes.TextureFormatStencil8:
		return true
	}
	return false
}

// ResourceInfo describes a registered resource.
type ResourceInfo struct {
	Type ResourceType
	// Texture is set for attachments, Buffer for buffers.
	Texture Texture
	Buffer  Buffer
	// Operations is a copy of the operation log.
	Operations []Operation
	Presented  bool
}
