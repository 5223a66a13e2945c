package halbridge

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph/target"
)

// Factory creates the native objects of the render graph's structural cache.
//
// HAL has no render pass objects, so CreateRenderPass only validates the
// configuration. CreateRenderTarget creates one texture view per attachment.
type Factory struct {
	device hal.Device
}

// NewFactory returns a factory creating views on device.
func NewFactory(device hal.Device) *Factory {
	return &Factory{device: device}
}

// CreateRenderPass implements target.Factory. The returned value is the
// initializer itself; Recorder reads load and store operations from it.
func (f *Factory) CreateRenderPass(init *target.RenderPassInitializer) (any, error) {
	if init.AttachmentCount() == 0 {
		return nil, fmt.Errorf("halbridge: render pass %q has no attachments", init.Label)
	}
	return init, nil
}

// CreateRenderTarget implements target.Factory.
func (f *Factory) CreateRenderTarget(init *target.RenderTargetInitializer) (any, error) {
	fb := &Framebuffer{device: f.device, views: make([]hal.TextureView, 0, len(init.Attachments))}
	for i, a := range init.Attachments {
		tex, ok := a.(*Texture)
		if !ok {
			fb.Destroy()
			return nil, fmt.Errorf("%w: attachment %d is %T", ErrForeignTexture, i, a)
		}
		view, err := f.device.CreateTextureView(tex.raw, &hal.TextureViewDescriptor{
			Label: fmt.Sprintf("%s_view%d", init.Label, i),
		})
		if err != nil {
			fb.Destroy()
			return nil, fmt.Errorf("halbridge: create view for attachment %d: %w", i, err)
		}
		fb.views = append(fb.views, view)
	}
	fb.width, fb.height = init.Width, init.Height
	return fb, nil
}

// Framebuffer is the native object behind a cached render target: the
// views of its attachments in binding order.
type Framebuffer struct {
	device        hal.Device
	views         []hal.TextureView
	width, height uint32
}

// Views returns the attachment views. The slice must not be modified.
func (fb *Framebuffer) Views() []hal.TextureView { return fb.views }

// Extent returns the framebuffer dimensions.
func (fb *Framebuffer) Extent() (width, height uint32) { return fb.width, fb.height }

// Destroy releases the views. The target cache calls it on Clear.
func (fb *Framebuffer) Destroy() {
	for _, v := range fb.views {
		fb.device.DestroyTextureView(v)
	}
	fb.views = nil
}
