package access

import (
	"fmt"
	"strings"
)

// Kind identifies how a pass uses a resource.
//
// Every entry in a resource's operation log carries a Kind. The tables in
// this package translate a Kind into the concrete synchronization state the
// resource must be in before (destination side) and after (source side)
// the operation.
type Kind uint8

const (
	// GraphicsShaderRead is a sampled/read-only access from a graphics shader stage.
	GraphicsShaderRead Kind = iota
	// GraphicsShaderWrite is a storage write from a graphics shader stage.
	GraphicsShaderWrite
	// GraphicsShaderReadWrite is a storage read-modify-write from a graphics shader stage.
	GraphicsShaderReadWrite
	// ComputeShaderRead is a read-only access from a compute shader.
	ComputeShaderRead
	// ComputeShaderWrite is a storage write from a compute shader.
	ComputeShaderWrite
	// ComputeShaderReadWrite is a storage read-modify-write from a compute shader.
	ComputeShaderReadWrite
	// ColorAttachment is use as a color render target.
	ColorAttachment
	// DepthStencilAttachment is use as a depth/stencil render target.
	DepthStencilAttachment
	// Present hands a swapchain image to the presentation engine.
	Present

	kindCount
)

var kindNames = [...]string{
	GraphicsShaderRead:      "GraphicsShaderRead",
	GraphicsShaderWrite:     "GraphicsShaderWrite",
	GraphicsShaderReadWrite: "GraphicsShaderReadWrite",
	ComputeShaderRead:       "ComputeShaderRead",
	ComputeShaderWrite:      "ComputeShaderWrite",
	ComputeShaderReadWrite:  "ComputeShaderReadWrite",
	ColorAttachment:         "ColorAttachment",
	DepthStencilAttachment:  "DepthStencilAttachment",
	Present:                 "Present",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k < kindCount
}

// IsCompute reports whether the kind executes on the compute pipeline.
func (k Kind) IsCompute() bool {
	return k == ComputeShaderRead || k == ComputeShaderWrite || k == ComputeShaderReadWrite
}

// IsAttachment reports whether the kind binds an image as a render target
// or presents it. Buffers never take part in such operations.
func (k Kind) IsAttachment() bool {
	return k == ColorAttachment || k == DepthStencilAttachment || k == Present
}

// Flags is a memory access mask. Bit values match VkAccessFlagBits.
type Flags uint32

// Access flag bits.
const (
	AccessNone                        Flags = 0
	AccessIndirectCommandRead         Flags = 0x00000001
	AccessIndexRead                   Flags = 0x00000002
	AccessVertexAttributeRead         Flags = 0x00000004
	AccessUniformRead                 Flags = 0x00000008
	AccessInputAttachmentRead         Flags = 0x00000010
	AccessShaderRead                  Flags = 0x00000020
	AccessShaderWrite                 Flags = 0x00000040
	AccessColorAttachmentRead         Flags = 0x00000080
	AccessColorAttachmentWrite        Flags = 0x00000100
	AccessDepthStencilAttachmentRead  Flags = 0x00000200
	AccessDepthStencilAttachmentWrite Flags = 0x00000400
	AccessTransferRead                Flags = 0x00000800
	AccessTransferWrite               Flags = 0x00001000
	AccessMemoryRead                  Flags = 0x00008000
	AccessMemoryWrite                 Flags = 0x00010000
)

var flagNames = []struct {
	bit  Flags
	name string
}{
	{AccessIndirectCommandRead, "IndirectCommandRead"},
	{AccessIndexRead, "IndexRead"},
	{AccessVertexAttributeRead, "VertexAttributeRead"},
	{AccessUniformRead, "UniformRead"},
	{AccessInputAttachmentRead, "InputAttachmentRead"},
	{AccessShaderRead, "ShaderRead"},
	{AccessShaderWrite, "ShaderWrite"},
	{AccessColorAttachmentRead, "ColorAttachmentRead"},
	{AccessColorAttachmentWrite, "ColorAttachmentWrite"},
	{AccessDepthStencilAttachmentRead, "DepthStencilAttachmentRead"},
	{AccessDepthStencilAttachmentWrite, "DepthStencilAttachmentWrite"},
	{AccessTransferRead, "TransferRead"},
	{AccessTransferWrite, "TransferWrite"},
	{AccessMemoryRead, "MemoryRead"},
	{AccessMemoryWrite, "MemoryWrite"},
}

// String returns the set bits joined with '|', or "None".
func (f Flags) String() string {
	if f == AccessNone {
		return "None"
	}
	var parts []string
	rest := f
	for _, n := range flagNames {
		if f&n.bit != 0 {
			parts = append(parts, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// PipelineStage is a pipeline stage mask. Bit values match VkPipelineStageFlagBits.
type PipelineStage uint32

// Pipeline stage bits.
const (
	StageNone                  PipelineStage = 0
	StageTopOfPipe             PipelineStage = 0x00000001
	StageDrawIndirect          PipelineStage = 0x00000002
	StageVertexInput           PipelineStage = 0x00000004
	StageVertexShader          PipelineStage = 0x00000008
	StageFragmentShader        PipelineStage = 0x00000080
	StageEarlyFragmentTests    PipelineStage = 0x00000100
	StageLateFragmentTests     PipelineStage = 0x00000200
	StageColorAttachmentOutput PipelineStage = 0x00000400
	StageComputeShader         PipelineStage = 0x00000800
	StageTransfer              PipelineStage = 0x00001000
	StageBottomOfPipe          PipelineStage = 0x00002000
	StageAllGraphics           PipelineStage = 0x00008000
	StageAllCommands           PipelineStage = 0x00010000
)

var stageNames = []struct {
	bit  PipelineStage
	name string
}{
	{StageTopOfPipe, "TopOfPipe"},
	{StageDrawIndirect, "DrawIndirect"},
	{StageVertexInput, "VertexInput"},
	{StageVertexShader, "VertexShader"},
	{StageFragmentShader, "FragmentShader"},
	{StageEarlyFragmentTests, "EarlyFragmentTests"},
	{StageLateFragmentTests, "LateFragmentTests"},
	{StageColorAttachmentOutput, "ColorAttachmentOutput"},
	{StageComputeShader, "ComputeShader"},
	{StageTransfer, "Transfer"},
	{StageBottomOfPipe, "BottomOfPipe"},
	{StageAllGraphics, "AllGraphics"},
	{StageAllCommands, "AllCommands"},
}

// String returns the set bits joined with '|', or "None".
func (s PipelineStage) String() string {
	if s == StageNone {
		return "None"
	}
	var parts []string
	rest := s
	for _, n := range stageNames {
		if s&n.bit != 0 {
			parts = append(parts, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ImageLayout is an image memory layout. Values match VkImageLayout.
type ImageLayout uint32

// Image layouts.
const (
	LayoutUndefined                     ImageLayout = 0
	LayoutGeneral                       ImageLayout = 1
	LayoutColorAttachmentOptimal        ImageLayout = 2
	LayoutDepthStencilAttachmentOptimal ImageLayout = 3
	LayoutDepthStencilReadOnlyOptimal   ImageLayout = 4
	LayoutShaderReadOnlyOptimal         ImageLayout = 5
	LayoutTransferSrcOptimal            ImageLayout = 6
	LayoutTransferDstOptimal            ImageLayout = 7
	LayoutPresentSrc                    ImageLayout = 1000001002
)

// String returns the layout name.
func (l ImageLayout) String() string {
	switch l {
	case LayoutUndefined:
		return "Undefined"
	case LayoutGeneral:
		return "General"
	case LayoutColorAttachmentOptimal:
		return "ColorAttachmentOptimal"
	case LayoutDepthStencilAttachmentOptimal:
		return "DepthStencilAttachmentOptimal"
	case LayoutDepthStencilReadOnlyOptimal:
		return "DepthStencilReadOnlyOptimal"
	case LayoutShaderReadOnlyOptimal:
		return "ShaderReadOnlyOptimal"
	case LayoutTransferSrcOptimal:
		return "TransferSrcOptimal"
	case LayoutTransferDstOptimal:
		return "TransferDstOptimal"
	case LayoutPresentSrc:
		return "PresentSrc"
	default:
		return fmt.Sprintf("ImageLayout(%d)", uint32(l))
	}
}

// IsDepthStencil reports whether the layout is one of the depth/stencil layouts.
func (l ImageLayout) IsDepthStencil() bool {
	return l == LayoutDepthStencilAttachmentOptimal || l == LayoutDepthStencilReadOnlyOptimal
}

// Aspect selects the planes of an image a barrier applies to.
// Bit values match VkImageAspectFlagBits.
type Aspect uint32

// Image aspects.
const (
	AspectColor   Aspect = 0x1
	AspectDepth   Aspect = 0x2
	AspectStencil Aspect = 0x4
)

// String returns the aspect bits joined with '|'.
func (a Aspect) String() string {
	var parts []string
	if a&AspectColor != 0 {
		parts = append(parts, "Color")
	}
	if a&AspectDepth != 0 {
		parts = append(parts, "Depth")
	}
	if a&AspectStencil != 0 {
		parts = append(parts, "Stencil")
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// AspectFor returns the aspect mask for a transition between two layouts:
// depth|stencil when either side is a depth/stencil layout, color otherwise.
func AspectFor(oldLayout, newLayout ImageLayout) Aspect {
	if oldLayout.IsDepthStencil() || newLayout.IsDepthStencil() {
		return AspectDepth | AspectStencil
	}
	return AspectColor
}

// QueueFamilyIgnored marks a barrier that performs no ownership transfer.
// Matches VK_QUEUE_FAMILY_IGNORED.
const QueueFamilyIgnored uint32 = ^uint32(0)

// RemainingLevels selects every mip level from the base on.
// Matches VK_REMAINING_MIP_LEVELS.
const RemainingLevels uint32 = ^uint32(0)

// RemainingLayers selects every array layer from the base on.
// Matches VK_REMAINING_ARRAY_LAYERS.
const RemainingLayers uint32 = ^uint32(0)

// WholeSize covers a buffer from its offset to the end. Matches VK_WHOLE_SIZE.
const WholeSize uint64 = ^uint64(0)
