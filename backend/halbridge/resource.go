package halbridge

import (
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Texture is a HAL texture that can be registered as a graph attachment.
//
// Textures created with Device.CreateAttachment own their HAL texture and
// release it on Destroy. Wrapped textures leave the HAL texture to the caller.
type Texture struct {
	raw       hal.Texture
	size      gputypes.Extent3D
	format    gputypes.TextureFormat
	swapchain bool

	owner   hal.Device
	destroy sync.Once
}

// NewTexture wraps an existing HAL texture.
func NewTexture(raw hal.Texture, width, height uint32, format gputypes.TextureFormat) *Texture {
	return &Texture{
		raw:    raw,
		size:   gputypes.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		format: format,
	}
}

// NewSwapchainTexture wraps a texture acquired from a surface. The graph
// allows swapchain textures to be presented.
func NewSwapchainTexture(raw hal.Texture, width, height uint32, format gputypes.TextureFormat) *Texture {
	t := NewTexture(raw, width, height, format)
	t.swapchain = true
	return t
}

// HAL returns the wrapped HAL texture.
func (t *Texture) HAL() hal.Texture { return t.raw }

// NativeHandle returns the native handle of the HAL texture.
func (t *Texture) NativeHandle() uintptr { return t.raw.NativeHandle() }

// Size returns the texture extent.
func (t *Texture) Size() gputypes.Extent3D { return t.size }

// Format returns the texel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// IsSwapchain reports whether the texture belongs to a surface.
func (t *Texture) IsSwapchain() bool { return t.swapchain }

// Destroy releases an owned HAL texture. It is a no-op for wrapped textures
// and safe to call more than once.
func (t *Texture) Destroy() {
	if t.owner == nil {
		return
	}
	t.destroy.Do(func() {
		t.owner.DestroyTexture(t.raw)
	})
}

// Buffer is a HAL buffer that can be registered with a graph.
type Buffer struct {
	raw   hal.Buffer
	size  uint64
	usage gputypes.BufferUsage

	owner   hal.Device
	destroy sync.Once
}

// NewBuffer wraps an existing HAL buffer. usage is the usage the buffer
// was created with; it selects between uniform and storage transitions.
func NewBuffer(raw hal.Buffer, size uint64, usage gputypes.BufferUsage) *Buffer {
	return &Buffer{raw: raw, size: size, usage: usage}
}

// HAL returns the wrapped HAL buffer.
func (b *Buffer) HAL() hal.Buffer { return b.raw }

// NativeHandle returns the native handle of the HAL buffer.
func (b *Buffer) NativeHandle() uintptr { return b.raw.NativeHandle() }

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Usage returns the creation usage of the buffer.
func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }

// Destroy releases an owned HAL buffer. It is a no-op for wrapped buffers.
func (b *Buffer) Destroy() {
	if b.owner == nil {
		return
	}
	b.destroy.Do(func() {
		b.owner.DestroyBuffer(b.raw)
	})
}
