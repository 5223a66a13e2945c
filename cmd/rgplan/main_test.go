package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/rendergraph"
)

func readScript(t *testing.T, name string) string {
	t.Helper()
	src, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	return string(src)
}

func TestRunDeferred(t *testing.T) {
	var out bytes.Buffer
	cfg := config{script: "deferred.lua", frames: 3, compute: 1, dump: true}
	if err := run(cfg, readScript(t, "testdata/deferred.lua"), &out, false); err != nil {
		t.Fatal(err)
	}
	got := out.String()

	for _, want := range []string{
		"frame 0: 3 passes",
		"frame 2: 3 passes",
		"[0] simulate compute family 1",
		"[1] scene graphics family 0",
		"[2] tonemap graphics family 0",
		"out particles    op 0 ComputeShaderReadWrite transfer",
		"in  particles    op 1 GraphicsShaderRead transfer",
		"in  depth        op 1 DepthStencilAttachment depth-attachment",
		"out swapchain    op 0 ColorAttachment 1280x720 bgra8unorm present",
		"render targets: 2 cached, 4 hits, 2 misses",
		`marker "scene"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output lacks %q\n%s", want, got)
		}
	}
	if !strings.Contains(got, "signal sem") || !strings.Contains(got, "wait sem") {
		t.Errorf("output lacks the cross-queue semaphore\n%s", got)
	}
	if strings.Contains(got, "\x1b[") {
		t.Error("plain output contains escape sequences")
	}
}

func TestRunSameFamilyNeedsNoSemaphores(t *testing.T) {
	var out bytes.Buffer
	cfg := config{script: "deferred.lua", frames: 1, compute: 0}
	if err := run(cfg, readScript(t, "testdata/deferred.lua"), &out, true); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if strings.Contains(got, "signal sem") || strings.Contains(got, "transfer") {
		t.Errorf("single family schedule has cross-queue synchronization\n%s", got)
	}
	if !strings.Contains(got, colorStyle.compute+"simulate"+colorStyle.reset) {
		t.Errorf("colored output does not highlight the compute pass\n%s", got)
	}
	if !strings.Contains(got, "semaphores: 0 created") {
		t.Errorf("output lacks semaphore totals\n%s", got)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		frames  int
		wantErr string
	}{
		{"syntax", `pass{`, 1, "deferred.lua"},
		{"no name", `attachment{ width = 1, height = 1 }`, 1, "name is required"},
		{"unknown format", `attachment{ name = "a", width = 1, height = 1, format = "yuv" }`, 1, "unknown format"},
		{"no size", `buffer{ name = "b" }`, 1, "needs a size"},
		{"not a node", `pass{ name = "p", inputs = { 1 } }`, 1, "expected a node"},
		{
			"present non-swapchain",
			`local a = attachment{ name = "a", width = 4, height = 4 }
			 pass{ name = "p", outputs = { a }, present = a }`,
			1, "swapchain",
		},
		{
			"depth on compute",
			`local d = attachment{ name = "d", width = 4, height = 4, format = "depth32float" }
			 local p = pass{ name = "p", outputs = { d } }
			 pass{ name = "c", compute = true, inputs = { { p.d, depth = true } } }`,
			1, "depth",
		},
		{"zero frames", ``, 0, "frames must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(config{script: "deferred.lua", frames: tt.frames}, tt.src, &out, false)
			if err == nil {
				t.Fatalf("run() succeeded\n%s", out.String())
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("run() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestScriptKeepsHandlesAcrossFrames(t *testing.T) {
	s := NewScript("resize.lua", `attachment{ name = "a", width = frame == 0 and 8 or 16, height = 8 }`)
	if err := s.Build(rendergraph.New(nil), 0); err != nil {
		t.Fatal(err)
	}
	first := s.textures["a"].handle
	if err := s.Build(rendergraph.New(nil), 0); err != nil {
		t.Fatal(err)
	}
	if s.textures["a"].handle != first {
		t.Error("unchanged attachment got a new handle")
	}
	if err := s.Build(rendergraph.New(nil), 1); err != nil {
		t.Fatal(err)
	}
	if s.textures["a"].handle == first {
		t.Error("resized attachment kept its handle")
	}
}

func TestRunWritesChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.png")
	var out bytes.Buffer
	cfg := config{script: "deferred.lua", frames: 1, compute: 1, chart: path}
	if err := run(cfg, readScript(t, "testdata/deferred.lua"), &out, false); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	// Three passes over two queue families.
	if got, want := img.Bounds().Size(), chartSize(3, 2); got != want {
		t.Errorf("chart size = %v, want %v", got, want)
	}
}
