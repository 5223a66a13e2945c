package halbridge

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
)

// Device bundles the HAL device and queue a graph renders with.
type Device struct {
	device        hal.Device
	queue         hal.Queue
	surfaceFormat gputypes.TextureFormat
}

// NewDevice wraps a HAL device and its queue.
func NewDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue}
}

// FromProvider extracts the HAL device and queue from a shared device
// provider such as a gogpu application. The provider must implement
// HalDevice() any and HalQueue() any.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, ErrNoHALDevice
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, ErrNoHALQueue
	}
	return &Device{device: device, queue: queue, surfaceFormat: provider.SurfaceFormat()}, nil
}

// HAL returns the HAL device.
func (d *Device) HAL() hal.Device { return d.device }

// Queue returns the HAL queue.
func (d *Device) Queue() hal.Queue { return d.queue }

// SurfaceFormat returns the provider's surface format, or
// TextureFormatUndefined for a device created with NewDevice.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.surfaceFormat }

// Families returns the queue resolver of the device. HAL exposes a single
// queue, so both affinities resolve to family 0.
func (d *Device) Families() rendergraph.QueueFamilies {
	return rendergraph.QueueFamilies{}
}

// Options returns the graph options that back semaphores with HAL fences
// and render targets with texture views.
func (d *Device) Options() []rendergraph.Option {
	return []rendergraph.Option{
		rendergraph.WithFenceSource(d.device),
		rendergraph.WithTargetFactory(NewFactory(d.device)),
	}
}

// NewGraph creates a graph for the device. opts are applied after Options.
func (d *Device) NewGraph(opts ...rendergraph.Option) *rendergraph.Graph {
	return rendergraph.New(d.Families(), append(d.Options(), opts...)...)
}

// NewRecorder creates a recorder on the device.
func (d *Device) NewRecorder() *Recorder {
	return NewRecorder(d.device, d.Families())
}

// NewSubmitter creates a submitter on the device queue.
func (d *Device) NewSubmitter() *Submitter {
	return NewSubmitter(d.device, d.queue, 0)
}

// SurfaceTexture wraps a texture acquired from the provider's surface as
// a presentable swapchain texture in the surface format.
func (d *Device) SurfaceTexture(raw hal.Texture, width, height uint32) *Texture {
	return NewSwapchainTexture(raw, width, height, d.surfaceFormat)
}

// CreateAttachment creates a 2D texture usable as a render target and for
// sampling. extra is OR-ed into the usage, for example
// TextureUsageStorageBinding for compute outputs.
func (d *Device) CreateAttachment(label string, width, height uint32, format gputypes.TextureFormat, extra gputypes.TextureUsage) (*Texture, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	raw, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding | extra,
	})
	if err != nil {
		return nil, fmt.Errorf("halbridge: create texture %q: %w", label, err)
	}
	t := NewTexture(raw, width, height, format)
	t.owner = d.device
	return t, nil
}

// CreateBuffer creates a buffer with the given usage.
func (d *Device) CreateBuffer(label string, size uint64, usage gputypes.BufferUsage) (*Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: 0 bytes", ErrInvalidSize)
	}
	raw, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("halbridge: create buffer %q: %w", label, err)
	}
	b := NewBuffer(raw, size, usage)
	b.owner = d.device
	return b, nil
}
