package halbridge

import (
	"testing"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

// mockHALDevice wraps a noop device and counts the calls the bridge makes.
type mockHALDevice struct {
	hal.Device

	viewsCreated   int
	viewsDestroyed int
	waits          int
	freed          int
	waitResult     bool
	createViewErr  error

	encoders []*mockHALEncoder
	beginErr error
}

func newMockHALDevice(t *testing.T) (*mockHALDevice, *mockHALQueue) {
	d, q := createNoopDevice(t)
	return &mockHALDevice{Device: d, waitResult: true}, &mockHALQueue{Queue: q}
}

func (d *mockHALDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	e := &mockHALEncoder{CommandEncoder: enc, beginErr: d.beginErr}
	d.encoders = append(d.encoders, e)
	return e, nil
}

// discarded returns the number of encoders that were discarded.
func (d *mockHALDevice) discarded() int {
	n := 0
	for _, e := range d.encoders {
		n += e.discards
	}
	return n
}

func (d *mockHALDevice) CreateTextureView(_ hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	if d.createViewErr != nil {
		return nil, d.createViewErr
	}
	d.viewsCreated++
	return &mockHALTextureView{label: desc.Label}, nil
}

func (d *mockHALDevice) DestroyTextureView(_ hal.TextureView) { d.viewsDestroyed++ }

func (d *mockHALDevice) Wait(_ hal.Fence, _ uint64, _ time.Duration) (bool, error) {
	d.waits++
	return d.waitResult, nil
}

func (d *mockHALDevice) FreeCommandBuffer(_ hal.CommandBuffer) { d.freed++ }

// mockHALEncoder wraps a noop encoder and counts discards.
type mockHALEncoder struct {
	hal.CommandEncoder

	beginErr error
	discards int
}

func (e *mockHALEncoder) BeginEncoding(label string) error {
	if e.beginErr != nil {
		return e.beginErr
	}
	return e.CommandEncoder.BeginEncoding(label)
}

func (e *mockHALEncoder) DiscardEncoding() {
	e.discards++
	e.CommandEncoder.DiscardEncoding()
}

// mockHALQueue wraps a noop queue and records submitted fence values.
type mockHALQueue struct {
	hal.Queue

	values []uint64
	fences []hal.Fence
}

func (q *mockHALQueue) Submit(cbs []hal.CommandBuffer, fence hal.Fence, value uint64) error {
	q.fences = append(q.fences, fence)
	q.values = append(q.values, value)
	return nil
}

// mockHALTexture is a test double for hal.Texture.
type mockHALTexture struct {
	handle uintptr
}

func (t *mockHALTexture) Destroy()              {}
func (t *mockHALTexture) NativeHandle() uintptr { return t.handle }

// mockHALTextureView is a test double for hal.TextureView.
type mockHALTextureView struct {
	label string
}

func (v *mockHALTextureView) Destroy()              {}
func (v *mockHALTextureView) NativeHandle() uintptr { return 0 }

// mockHALBuffer is a test double for hal.Buffer.
type mockHALBuffer struct {
	handle uintptr
}

func (b *mockHALBuffer) Destroy()              {}
func (b *mockHALBuffer) NativeHandle() uintptr { return b.handle }

// mockProvider implements gpucontext.DeviceProvider with HAL accessors.
type mockProvider struct {
	device any
	queue  any
	format gputypes.TextureFormat
}

func (m *mockProvider) Device() gpucontext.Device             { return nil }
func (m *mockProvider) Queue() gpucontext.Queue               { return nil }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return nil }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockProvider) HalDevice() any                        { return m.device }
func (m *mockProvider) HalQueue() any                         { return m.queue }

// plainProvider exposes no HAL objects.
type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device             { return nil }
func (plainProvider) Queue() gpucontext.Queue               { return nil }
func (plainProvider) Adapter() gpucontext.Adapter           { return nil }
func (plainProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
