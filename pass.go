package rendergraph

import (
	"github.com/gogpu/rendergraph/access"
	"github.com/gogpu/rendergraph/semaphore"
)

type pass struct {
	name     string
	index    int
	affinity QueueAffinity
	family   uint32
	compute  bool

	outputs []uint32
	inputs  []input
	record  RecordFunc

	signal       *semaphore.Semaphore
	signalStages access.PipelineStage
	waits        []Wait
}

// PassInfo describes a pass. Scheduling fields are zero before Prepare.
type PassInfo struct {
	Name        string
	Index       int
	Queue       QueueAffinity
	QueueFamily uint32
	Compute     bool

	Outputs []NodeHandle
	Inputs  []InputInfo

	SignalSemaphore *semaphore.Semaphore
	SignalStages    access.PipelineStage
	Waits           []Wait
}

// InputInfo describes one input of a pass.
type InputInfo struct {
	Node  NodeHandle
	Usage InputUsage
	// OperationIndex is the position of the read in the resource's
	// operation log, or -1 before Prepare.
	OperationIndex          int
	ShouldTransferOwnership bool
}
