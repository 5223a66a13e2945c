// Command rgplan prepares and renders a frame graph described in Lua and
// prints the resulting schedule.
//
// Usage:
//
//	rgplan [flags] graph.lua
//
// With -png the schedule of the last frame is also drawn as a timeline
// chart, one lane per queue family.
//
// The script declares resources and passes with three functions:
//
//	local hdr = attachment{ name = "hdr", width = 1280, height = 720, format = "rgba16float" }
//	local sc = attachment{ name = "swapchain", width = 1280, height = 720, format = "bgra8unorm", swapchain = true }
//	local particles = buffer{ name = "particles", size = 65536 }
//
//	local sim = pass{ name = "simulate", compute = true, outputs = { particles } }
//	local scene = pass{ name = "scene", inputs = { sim.particles }, outputs = { hdr }, clear = { hdr = { 0, 0, 0, 1 } } }
//	pass{ name = "tonemap", inputs = { scene.hdr }, outputs = { sc }, present = sc }
//
// pass returns a table of the nodes it produced, keyed by resource name.
// An input written as { node, depth = true } is bound as a read-only depth
// attachment. The global frame holds the current frame number.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/recording"
)

type config struct {
	script   string
	frames   int
	inFlight int
	compute  uint
	dump     bool
	chart    string
	color    string
	verbose  bool
}

func main() {
	var cfg config
	flag.IntVar(&cfg.frames, "frames", 1, "number of frames to render")
	flag.IntVar(&cfg.inFlight, "inflight", 0, "frames a semaphore stays in flight (0 = default)")
	flag.UintVar(&cfg.compute, "compute-family", 1, "queue family index of the compute queue")
	flag.BoolVar(&cfg.dump, "dump", false, "print the recorded command streams")
	flag.StringVar(&cfg.chart, "png", "", "write a timeline chart of the last frame to this PNG file")
	flag.StringVar(&cfg.color, "color", "auto", "colorize output: auto, always or never")
	flag.BoolVar(&cfg.verbose, "v", false, "log scheduling decisions to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: rgplan [flags] graph.lua\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	cfg.script = flag.Arg(0)

	if cfg.verbose {
		rendergraph.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	src, err := os.ReadFile(cfg.script)
	if err != nil {
		log.Fatalf("rgplan: %v", err)
	}
	if err := run(cfg, string(src), os.Stdout, useColor(cfg.color, os.Stdout)); err != nil {
		log.Fatalf("rgplan: %v", err)
	}
}

// useColor reports whether the report should be colorized.
func useColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int
}

// run builds, prepares and renders the script for cfg.frames frames on the
// recording backend.
func run(cfg config, src string, w io.Writer, color bool) error {
	if cfg.frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", cfg.frames)
	}

	queues := rendergraph.QueueFamilies{Graphics: 0, Compute: uint32(cfg.compute)} //nolint:gosec // G115: queue family indices are small
	g := rendergraph.New(queues, rendergraph.WithInFlightFrames(cfg.inFlight))
	defer g.Semaphores().Destroy()

	script := NewScript(cfg.script, src)
	rep := &reporter{w: w, script: script}
	if color {
		rep.style = colorStyle
	}

	rec := recording.NewRecorder()
	timeline := recording.NewTimeline()
	for frame := 0; frame < cfg.frames; frame++ {
		g.Clear()
		if err := script.Build(g, frame); err != nil {
			return err
		}
		if err := g.Prepare(); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		if err := rep.schedule(g, frame); err != nil {
			return err
		}
		if err := g.Render(rec, timeline); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		timeline.EndFrame()
	}

	if cfg.chart != "" {
		if err := saveChart(cfg.chart, g); err != nil {
			return err
		}
	}

	rep.stats(g.Semaphores().Stats(), g.Targets().Stats())
	if cfg.dump {
		if _, err := timeline.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

func saveChart(path string, g *rendergraph.Graph) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return writeChart(f, g)
}
