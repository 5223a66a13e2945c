package rendergraph

// InputUsage qualifies how a pass reads an input.
type InputUsage uint8

const (
	// UsageDefault reads the input in a shader.
	UsageDefault InputUsage = iota
	// UsageDepthAttachment binds the input as the read-only depth
	// attachment of a graphics pass.
	UsageDepthAttachment
)

// String returns the usage name.
func (u InputUsage) String() string {
	if u == UsageDepthAttachment {
		return "depth-attachment"
	}
	return "default"
}

// node is a pass output.
type node struct {
	res  uint32
	pass int // -1 once the producing pass was discarded

	opIndex int // -1 before Prepare

	clear      bool
	clearValue ClearValue

	transfer bool
	present  bool

	// presentOpIndex locates the synthetic present operation.
	presentOpIndex int
}

// input is a pass's reference to a node produced by an earlier pass.
type input struct {
	node     uint32
	usage    InputUsage
	opIndex  int
	transfer bool
}

// NodeInfo describes a pass output.
type NodeInfo struct {
	Resource ResourceHandle
	// Pass is the index of the producing pass.
	Pass int
	// OperationIndex is the position of the output in the resource's
	// operation log, or -1 before Prepare.
	OperationIndex int

	ShouldClear bool
	ClearValue  ClearValue

	// ShouldTransferOwnership is set by Prepare when the next operation on
	// the resource runs on a different queue family.
	ShouldTransferOwnership bool
	PresentSwapchain        bool
}
