package main

import (
	"fmt"
	"sort"

	"github.com/gogpu/gputypes"
)

// formats maps script format names to texture formats. Names follow the
// WebGPU spelling.
var formats = map[string]gputypes.TextureFormat{
	"r8unorm":              gputypes.TextureFormatR8Unorm,
	"rgba8unorm":           gputypes.TextureFormatRGBA8Unorm,
	"bgra8unorm":           gputypes.TextureFormatBGRA8Unorm,
	"rgba16float":          gputypes.TextureFormatRGBA16Float,
	"rgba32float":          gputypes.TextureFormatRGBA32Float,
	"depth16unorm":         gputypes.TextureFormatDepth16Unorm,
	"depth24plus":          gputypes.TextureFormatDepth24Plus,
	"depth24plus-stencil8": gputypes.TextureFormatDepth24PlusStencil8,
	"depth32float":         gputypes.TextureFormatDepth32Float,
	"stencil8":             gputypes.TextureFormatStencil8,
}

func parseFormat(name string) (gputypes.TextureFormat, error) {
	if name == "" {
		return gputypes.TextureFormatRGBA8Unorm, nil
	}
	f, ok := formats[name]
	if !ok {
		names := make([]string, 0, len(formats))
		for n := range formats {
			names = append(names, n)
		}
		sort.Strings(names)
		return gputypes.TextureFormatUndefined, fmt.Errorf("unknown format %q (known: %v)", name, names)
	}
	return f, nil
}

func formatName(f gputypes.TextureFormat) string {
	for n, v := range formats {
		if v == f {
			return n
		}
	}
	return fmt.Sprintf("format(%d)", uint32(f))
}

// scriptTexture is an attachment declared by a script. It stands in for a
// GPU image: the handle is synthetic and stable for the lifetime of the run.
type scriptTexture struct {
	name      string
	handle    uintptr
	size      gputypes.Extent3D
	format    gputypes.TextureFormat
	swapchain bool
}

func (t *scriptTexture) NativeHandle() uintptr          { return t.handle }
func (t *scriptTexture) Size() gputypes.Extent3D        { return t.size }
func (t *scriptTexture) Format() gputypes.TextureFormat { return t.format }
func (t *scriptTexture) IsSwapchain() bool              { return t.swapchain }

// scriptBuffer is a buffer declared by a script.
type scriptBuffer struct {
	name   string
	handle uintptr
	size   uint64
}

func (b *scriptBuffer) NativeHandle() uintptr { return b.handle }
func (b *scriptBuffer) Size() uint64          { return b.size }
