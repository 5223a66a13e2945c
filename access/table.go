// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package access

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedKind is returned for an operation kind the tables do not define.
	ErrUnsupportedKind = errors.New("access: unsupported operation kind")

	// ErrNoBufferState is returned when a buffer is asked for an attachment-only state.
	ErrNoBufferState = errors.New("access: operation kind has no buffer state")
)

// State is the synchronization state of a resource around one operation.
//
// For buffers Layout is always LayoutUndefined and must be ignored.
type State struct {
	Access      Flags
	Stage       PipelineStage
	Layout      ImageLayout
	QueueFamily uint32
}

// String formats the state for logs.
func (s State) String() string {
	return fmt.Sprintf("{%v %v %v q%d}", s.Access, s.Stage, s.Layout, s.QueueFamily)
}

// entry holds the source and destination halves of one kind.
type entry struct {
	src, dst State
}

const (
	graphicsShaderStages = StageVertexShader | StageFragmentShader
	depthTestStages      = StageEarlyFragmentTests | StageLateFragmentTests
)

// table is indexed by Kind. QueueFamily is filled in by the lookup.
var table = [kindCount]entry{
	GraphicsShaderRead: {
		src: State{Access: AccessNone, Stage: graphicsShaderStages, Layout: LayoutShaderReadOnlyOptimal},
		dst: State{Access: AccessShaderRead, Stage: graphicsShaderStages, Layout: LayoutShaderReadOnlyOptimal},
	},
	GraphicsShaderWrite: {
		src: State{Access: AccessShaderWrite, Stage: graphicsShaderStages, Layout: LayoutGeneral},
		dst: State{Access: AccessShaderWrite, Stage: graphicsShaderStages, Layout: LayoutGeneral},
	},
	GraphicsShaderReadWrite: {
		src: State{Access: AccessShaderWrite, Stage: graphicsShaderStages, Layout: LayoutGeneral},
		dst: State{Access: AccessShaderRead | AccessShaderWrite, Stage: graphicsShaderStages, Layout: LayoutGeneral},
	},
	ComputeShaderRead: {
		src: State{Access: AccessNone, Stage: StageComputeShader, Layout: LayoutShaderReadOnlyOptimal},
		dst: State{Access: AccessShaderRead, Stage: StageComputeShader, Layout: LayoutShaderReadOnlyOptimal},
	},
	ComputeShaderWrite: {
		src: State{Access: AccessShaderWrite, Stage: StageComputeShader, Layout: LayoutGeneral},
		dst: State{Access: AccessShaderWrite, Stage: StageComputeShader, Layout: LayoutGeneral},
	},
	ComputeShaderReadWrite: {
		src: State{Access: AccessShaderWrite, Stage: StageComputeShader, Layout: LayoutGeneral},
		dst: State{Access: AccessShaderRead | AccessShaderWrite, Stage: StageComputeShader, Layout: LayoutGeneral},
	},
	ColorAttachment: {
		src: State{Access: AccessColorAttachmentWrite, Stage: StageColorAttachmentOutput, Layout: LayoutColorAttachmentOptimal},
		dst: State{
			Access: AccessColorAttachmentRead | AccessColorAttachmentWrite,
			Stage:  StageColorAttachmentOutput,
			Layout: LayoutColorAttachmentOptimal,
		},
	},
	DepthStencilAttachment: {
		src: State{Access: AccessDepthStencilAttachmentWrite, Stage: StageLateFragmentTests, Layout: LayoutDepthStencilAttachmentOptimal},
		dst: State{
			Access: AccessDepthStencilAttachmentRead | AccessDepthStencilAttachmentWrite,
			Stage:  depthTestStages,
			Layout: LayoutDepthStencilAttachmentOptimal,
		},
	},
	Present: {
		src: State{Access: AccessNone, Stage: StageBottomOfPipe, Layout: LayoutPresentSrc},
		dst: State{Access: AccessNone, Stage: StageBottomOfPipe, Layout: LayoutPresentSrc},
	},
}

// For returns the state of an image around an operation of the given kind
// executed on queueFamily. With source set it returns the state to transition
// from when the kind was the previous operation; otherwise the state to
// transition to when the kind is the current operation.
func For(kind Kind, queueFamily uint32, source bool) (State, error) {
	if !kind.Valid() {
		return State{}, fmt.Errorf("%w: %v", ErrUnsupportedKind, kind)
	}
	s := table[kind].dst
	if source {
		s = table[kind].src
	}
	s.QueueFamily = queueFamily
	return s, nil
}

// ForBuffer is For restricted to buffers: access, stage and queue family only.
func ForBuffer(kind Kind, queueFamily uint32, source bool) (State, error) {
	if !kind.Valid() {
		return State{}, fmt.Errorf("%w: %v", ErrUnsupportedKind, kind)
	}
	if kind.IsAttachment() {
		return State{}, fmt.Errorf("%w: %v", ErrNoBufferState, kind)
	}
	s, err := For(kind, queueFamily, source)
	if err != nil {
		return State{}, err
	}
	s.Layout = LayoutUndefined
	return s, nil
}

// Initial is the source state of a resource's first operation. No GPU work
// has established a state yet, so there is nothing to wait for and the
// contents are undefined.
func Initial(queueFamily uint32) State {
	return State{
		Access:      AccessNone,
		Stage:       StageTopOfPipe,
		Layout:      LayoutUndefined,
		QueueFamily: queueFamily,
	}
}
