package access

import (
	"errors"
	"testing"
)

func TestForLayouts(t *testing.T) {
	tests := []struct {
		kind    Kind
		source  bool
		wantLay ImageLayout
	}{
		{GraphicsShaderRead, false, LayoutShaderReadOnlyOptimal},
		{GraphicsShaderReadWrite, false, LayoutGeneral},
		{ComputeShaderRead, false, LayoutShaderReadOnlyOptimal},
		{ComputeShaderReadWrite, true, LayoutGeneral},
		{ColorAttachment, false, LayoutColorAttachmentOptimal},
		{ColorAttachment, true, LayoutColorAttachmentOptimal},
		{DepthStencilAttachment, false, LayoutDepthStencilAttachmentOptimal},
		{Present, false, LayoutPresentSrc},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			s, err := For(tt.kind, 2, tt.source)
			if err != nil {
				t.Fatalf("For(%v) error: %v", tt.kind, err)
			}
			if s.Layout != tt.wantLay {
				t.Errorf("For(%v, source=%v).Layout = %v, want %v", tt.kind, tt.source, s.Layout, tt.wantLay)
			}
			if s.QueueFamily != 2 {
				t.Errorf("QueueFamily = %d, want 2", s.QueueFamily)
			}
		})
	}
}

func TestForDefinesEveryKind(t *testing.T) {
	for k := Kind(0); k < kindCount; k++ {
		for _, source := range []bool{false, true} {
			s, err := For(k, 0, source)
			if err != nil {
				t.Fatalf("For(%v) error: %v", k, err)
			}
			if s.Stage == StageNone {
				t.Errorf("For(%v, source=%v) has no pipeline stage", k, source)
			}
		}
	}
}

func TestForWriteKindsMakeWritesAvailable(t *testing.T) {
	writes := map[Kind]Flags{
		GraphicsShaderWrite:     AccessShaderWrite,
		GraphicsShaderReadWrite: AccessShaderWrite,
		ComputeShaderWrite:      AccessShaderWrite,
		ComputeShaderReadWrite:  AccessShaderWrite,
		ColorAttachment:         AccessColorAttachmentWrite,
		DepthStencilAttachment:  AccessDepthStencilAttachmentWrite,
	}
	for k, want := range writes {
		s, _ := For(k, 0, true)
		if s.Access&want == 0 {
			t.Errorf("source access of %v = %v, want it to contain %v", k, s.Access, want)
		}
	}
}

func TestForUnsupportedKind(t *testing.T) {
	_, err := For(Kind(200), 0, false)
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Errorf("For(200) error = %v, want ErrUnsupportedKind", err)
	}
}

func TestForBuffer(t *testing.T) {
	s, err := ForBuffer(ComputeShaderRead, 1, false)
	if err != nil {
		t.Fatalf("ForBuffer error: %v", err)
	}
	if s.Layout != LayoutUndefined {
		t.Errorf("buffer state carries layout %v", s.Layout)
	}
	if s.Access != AccessShaderRead || s.Stage != StageComputeShader {
		t.Errorf("ForBuffer(ComputeShaderRead) = %v", s)
	}

	for _, k := range []Kind{ColorAttachment, DepthStencilAttachment, Present} {
		if _, err := ForBuffer(k, 0, false); !errors.Is(err, ErrNoBufferState) {
			t.Errorf("ForBuffer(%v) error = %v, want ErrNoBufferState", k, err)
		}
	}
}

func TestInitial(t *testing.T) {
	s := Initial(3)
	if s.Access != AccessNone || s.Layout != LayoutUndefined || s.QueueFamily != 3 {
		t.Errorf("Initial(3) = %v", s)
	}
}

func TestAspectFor(t *testing.T) {
	if got := AspectFor(LayoutUndefined, LayoutColorAttachmentOptimal); got != AspectColor {
		t.Errorf("AspectFor(color) = %v", got)
	}
	if got := AspectFor(LayoutUndefined, LayoutDepthStencilAttachmentOptimal); got != AspectDepth|AspectStencil {
		t.Errorf("AspectFor(undefined->depth) = %v", got)
	}
	if got := AspectFor(LayoutDepthStencilAttachmentOptimal, LayoutShaderReadOnlyOptimal); got != AspectDepth|AspectStencil {
		t.Errorf("AspectFor(depth->shader) = %v", got)
	}
}

func TestStrings(t *testing.T) {
	if got := (AccessShaderRead | AccessShaderWrite).String(); got != "ShaderRead|ShaderWrite" {
		t.Errorf("Flags.String() = %q", got)
	}
	if got := AccessNone.String(); got != "None" {
		t.Errorf("AccessNone.String() = %q", got)
	}
	if got := (StageVertexShader | StageFragmentShader).String(); got != "VertexShader|FragmentShader" {
		t.Errorf("PipelineStage.String() = %q", got)
	}
	if got := LayoutPresentSrc.String(); got != "PresentSrc" {
		t.Errorf("ImageLayout.String() = %q", got)
	}
	if got := Kind(99).String(); got != "Kind(99)" {
		t.Errorf("Kind(99).String() = %q", got)
	}
}
