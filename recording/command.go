package recording

import (
	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/access"
	"github.com/gogpu/rendergraph/target"
)

// CommandType identifies the type of a command.
type CommandType uint8

const (
	CmdPipelineBarrier  CommandType = iota // Pipeline barrier
	CmdBeginTargetPass                     // Bind a render target
	CmdEndTargetPass                       // Unbind the render target
	CmdMarker                              // User marker from a record callback
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdPipelineBarrier: "PipelineBarrier",
	CmdBeginTargetPass: "BeginTargetPass",
	CmdEndTargetPass:   "EndTargetPass",
	CmdMarker:          "Marker",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// PipelineBarrierCommand is a recorded pipeline barrier.
type PipelineBarrierCommand struct {
	Src, Dst access.PipelineStage
	Buffers  []rendergraph.BufferBarrier
	Images   []rendergraph.ImageBarrier
}

// Type implements Command.
func (PipelineBarrierCommand) Type() CommandType { return CmdPipelineBarrier }

// BeginTargetPassCommand binds a render target.
type BeginTargetPassCommand struct {
	Target     *target.RenderTarget
	RenderPass *target.RenderPass
	// Clear holds one value per attachment, colors first.
	Clear []rendergraph.ClearValue
}

// Type implements Command.
func (BeginTargetPassCommand) Type() CommandType { return CmdBeginTargetPass }

// EndTargetPassCommand ends the bound render target.
type EndTargetPassCommand struct{}

// Type implements Command.
func (EndTargetPassCommand) Type() CommandType { return CmdEndTargetPass }

// MarkerCommand is a label a record callback inserted, standing in for the
// draw or dispatch work of the pass.
type MarkerCommand struct {
	Label string
}

// Type implements Command.
func (MarkerCommand) Type() CommandType { return CmdMarker }
