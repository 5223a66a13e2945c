package main

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/recording"
)

const (
	resourceTypeName = "rgplan.resource"
	nodeTypeName     = "rgplan.node"
)

// scriptResource is the Lua value returned by attachment{} and buffer{}.
type scriptResource struct {
	name   string
	handle rendergraph.ResourceHandle
}

// Script declares a frame graph from Lua source.
//
// The source runs once per frame against a fresh interpreter. Resources
// are identified by name, so a resource declared again in a later frame
// keeps its native handle and hits the structural cache.
type Script struct {
	name   string
	source string

	textures map[string]*scriptTexture
	buffers  map[string]*scriptBuffer
	next     uintptr

	// names maps the handles of the current frame back to resource names.
	names map[rendergraph.ResourceHandle]string
}

// NewScript creates a script. name is used in error messages.
func NewScript(name, source string) *Script {
	return &Script{
		name:     name,
		source:   source,
		textures: make(map[string]*scriptTexture),
		buffers:  make(map[string]*scriptBuffer),
	}
}

// ResourceName returns the script name of a resource registered by the
// last Build.
func (s *Script) ResourceName(h rendergraph.ResourceHandle) string {
	if n, ok := s.names[h]; ok {
		return n
	}
	return h.String()
}

// Build runs the script for one frame and declares its resources and
// passes on g. The global frame holds the frame number.
func (s *Script) Build(g *rendergraph.Graph, frame int) error {
	s.names = make(map[rendergraph.ResourceHandle]string)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return fmt.Errorf("open %s library: %w", lib.name, err)
		}
	}

	L.NewTypeMetatable(resourceTypeName)
	L.NewTypeMetatable(nodeTypeName)
	L.SetGlobal("frame", lua.LNumber(frame))
	L.SetGlobal("attachment", L.NewFunction(func(L *lua.LState) int { return s.attachment(L, g) }))
	L.SetGlobal("buffer", L.NewFunction(func(L *lua.LState) int { return s.buffer(L, g) }))
	L.SetGlobal("pass", L.NewFunction(func(L *lua.LState) int { return s.pass(L, g) }))

	if err := L.DoString(s.source); err != nil {
		var apiErr *lua.ApiError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("%s: %v", s.name, apiErr.Object)
		}
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return nil
}

func (s *Script) allocHandle() uintptr {
	s.next++
	return s.next
}

// attachment{name=, width=, height=, format=, swapchain=}
func (s *Script) attachment(L *lua.LState, g *rendergraph.Graph) int {
	t := L.CheckTable(1)
	name := requireName(L, t)
	format, err := parseFormat(lua.LVAsString(t.RawGetString("format")))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	width := uint32(lua.LVAsNumber(t.RawGetString("width")))
	height := uint32(lua.LVAsNumber(t.RawGetString("height")))
	if width == 0 || height == 0 {
		L.ArgError(1, fmt.Sprintf("attachment %q needs a width and a height", name))
	}
	swapchain := lua.LVAsBool(t.RawGetString("swapchain"))

	tex, ok := s.textures[name]
	if !ok || tex.size.Width != width || tex.size.Height != height || tex.format != format || tex.swapchain != swapchain {
		// A changed description is a new image, as after a resize.
		tex = &scriptTexture{name: name, handle: s.allocHandle(), format: format, swapchain: swapchain}
		tex.size.Width, tex.size.Height, tex.size.DepthOrArrayLayers = width, height, 1
		s.textures[name] = tex
	}
	h, err := g.RegisterAttachment(tex)
	if err != nil {
		L.RaiseError("attachment %q: %v", name, err)
	}
	L.Push(s.resourceValue(L, name, h))
	return 1
}

// buffer{name=, size=}
func (s *Script) buffer(L *lua.LState, g *rendergraph.Graph) int {
	t := L.CheckTable(1)
	name := requireName(L, t)
	size := uint64(lua.LVAsNumber(t.RawGetString("size")))
	if size == 0 {
		L.ArgError(1, fmt.Sprintf("buffer %q needs a size", name))
	}

	buf, ok := s.buffers[name]
	if !ok || buf.size != size {
		buf = &scriptBuffer{name: name, handle: s.allocHandle(), size: size}
		s.buffers[name] = buf
	}
	h, err := g.RegisterBuffer(buf)
	if err != nil {
		L.RaiseError("buffer %q: %v", name, err)
	}
	L.Push(s.resourceValue(L, name, h))
	return 1
}

func (s *Script) resourceValue(L *lua.LState, name string, h rendergraph.ResourceHandle) *lua.LUserData {
	s.names[h] = name
	ud := L.NewUserData()
	ud.Value = &scriptResource{name: name, handle: h}
	L.SetMetatable(ud, L.GetTypeMetatable(resourceTypeName))
	return ud
}

func nodeValue(L *lua.LState, n rendergraph.NodeHandle) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = n
	L.SetMetatable(ud, L.GetTypeMetatable(nodeTypeName))
	return ud
}

// passSpec is the parsed argument of pass{}.
type passSpec struct {
	name    string
	compute bool
	inputs  []passInput
	outputs []*scriptResource
	clears  map[string]rendergraph.ClearValue
	present string
}

type passInput struct {
	node  rendergraph.NodeHandle
	usage rendergraph.InputUsage
}

// pass{name=, compute=, inputs={...}, outputs={...}, clear={...}, present=}
//
// Returns a table mapping each output resource name to its node.
func (s *Script) pass(L *lua.LState, g *rendergraph.Graph) int {
	spec := parsePass(L, L.CheckTable(1))

	nodes, err := rendergraph.AddPass(g, spec.name, func(b *rendergraph.PassBuilder) map[string]rendergraph.NodeHandle {
		if spec.compute {
			b.SetCompute()
		}
		for _, in := range spec.inputs {
			b.AddInput(in.node, in.usage)
		}
		out := make(map[string]rendergraph.NodeHandle, len(spec.outputs))
		for _, r := range spec.outputs {
			n := b.AddOutput(r.handle)
			out[r.name] = n
			if v, ok := spec.clears[r.name]; ok {
				b.SetClear(n, v)
			}
			if spec.present == r.name {
				b.PresentSwapchain(n)
			}
		}
		return out
	}, markPass(spec.name))
	if err != nil {
		L.RaiseError("%v", err)
	}

	result := L.NewTable()
	for name, n := range nodes {
		result.RawSetString(name, nodeValue(L, n))
	}
	L.Push(result)
	return 1
}

// markPass records a marker naming the pass, so dumps show where the body
// sits between the barriers.
func markPass(name string) rendergraph.RecordFunc {
	return func(cmd rendergraph.CommandBuffer) error {
		if cb, ok := cmd.(*recording.CommandBuffer); ok {
			cb.Marker(name)
		}
		return nil
	}
}

func parsePass(L *lua.LState, t *lua.LTable) passSpec {
	spec := passSpec{
		name:    requireName(L, t),
		compute: lua.LVAsBool(t.RawGetString("compute")),
		clears:  make(map[string]rendergraph.ClearValue),
	}

	if in, ok := t.RawGetString("inputs").(*lua.LTable); ok {
		in.ForEach(func(_, v lua.LValue) {
			spec.inputs = append(spec.inputs, parseInput(L, v))
		})
	}
	if out, ok := t.RawGetString("outputs").(*lua.LTable); ok {
		out.ForEach(func(_, v lua.LValue) {
			spec.outputs = append(spec.outputs, checkResource(L, v))
		})
	}
	if clears, ok := t.RawGetString("clear").(*lua.LTable); ok {
		clears.ForEach(func(k, v lua.LValue) {
			spec.clears[lua.LVAsString(k)] = parseClear(L, v)
		})
	}
	switch p := t.RawGetString("present").(type) {
	case lua.LString:
		spec.present = string(p)
	case *lua.LUserData:
		spec.present = checkResource(L, p).name
	}
	return spec
}

// parseInput accepts a node or {node, depth = true}.
func parseInput(L *lua.LState, v lua.LValue) passInput {
	if t, ok := v.(*lua.LTable); ok {
		in := passInput{node: checkNode(L, t.RawGetInt(1))}
		if lua.LVAsBool(t.RawGetString("depth")) {
			in.usage = rendergraph.UsageDepthAttachment
		}
		return in
	}
	return passInput{node: checkNode(L, v)}
}

// parseClear accepts {r, g, b, a} for color, a number for depth, or
// {depth = d, stencil = s}.
func parseClear(L *lua.LState, v lua.LValue) rendergraph.ClearValue {
	var cv rendergraph.ClearValue
	switch c := v.(type) {
	case lua.LNumber:
		cv.Depth = float32(c)
	case *lua.LTable:
		if d := c.RawGetString("depth"); d != lua.LNil {
			cv.Depth = float32(lua.LVAsNumber(d))
			cv.Stencil = uint32(lua.LVAsNumber(c.RawGetString("stencil")))
			return cv
		}
		cv.Color.R = float64(lua.LVAsNumber(c.RawGetInt(1)))
		cv.Color.G = float64(lua.LVAsNumber(c.RawGetInt(2)))
		cv.Color.B = float64(lua.LVAsNumber(c.RawGetInt(3)))
		cv.Color.A = float64(lua.LVAsNumber(c.RawGetInt(4)))
	default:
		L.RaiseError("clear value must be a number or a table, got %s", v.Type())
	}
	return cv
}

func requireName(L *lua.LState, t *lua.LTable) string {
	name := lua.LVAsString(t.RawGetString("name"))
	if name == "" {
		L.ArgError(1, "name is required")
	}
	return name
}

func checkResource(L *lua.LState, v lua.LValue) *scriptResource {
	if ud, ok := v.(*lua.LUserData); ok {
		if r, ok := ud.Value.(*scriptResource); ok {
			return r
		}
	}
	L.RaiseError("expected a resource, got %s", v.Type())
	return nil
}

func checkNode(L *lua.LState, v lua.LValue) rendergraph.NodeHandle {
	if ud, ok := v.(*lua.LUserData); ok {
		if n, ok := ud.Value.(rendergraph.NodeHandle); ok {
			return n
		}
	}
	L.RaiseError("expected a node, got %s", v.Type())
	return rendergraph.NodeHandle{}
}
