package halbridge

import "errors"

// Bridge errors.
var (
	// ErrNoHALProvider is returned when a device provider does not expose HAL objects.
	ErrNoHALProvider = errors.New("halbridge: provider does not expose HAL device")

	// ErrNoHALDevice is returned when the provider's HAL device has an unexpected type.
	ErrNoHALDevice = errors.New("halbridge: HalDevice is not a hal.Device")

	// ErrNoHALQueue is returned when the provider's HAL queue has an unexpected type.
	ErrNoHALQueue = errors.New("halbridge: HalQueue is not a hal.Queue")

	// ErrNotRecording is returned when a command is issued outside a recording.
	ErrNotRecording = errors.New("halbridge: not recording")

	// ErrAlreadyRecording is returned when BeginRecording is called twice.
	ErrAlreadyRecording = errors.New("halbridge: already recording")

	// ErrTargetPassActive is returned when a render pass is still open.
	ErrTargetPassActive = errors.New("halbridge: render pass is active")

	// ErrNoTargetPass is returned by EndTargetPass without a matching BeginTargetPass.
	ErrNoTargetPass = errors.New("halbridge: no render pass is active")

	// ErrNoFramebuffer is returned when a render target was cached without
	// the halbridge Factory.
	ErrNoFramebuffer = errors.New("halbridge: render target has no framebuffer")

	// ErrForeignTexture is returned for textures not created by this package.
	ErrForeignTexture = errors.New("halbridge: texture is not a halbridge texture")

	// ErrForeignBuffer is returned for buffers not created by this package.
	ErrForeignBuffer = errors.New("halbridge: buffer is not a halbridge buffer")

	// ErrForeignCommandBuffer is returned for command buffers not recorded by this package.
	ErrForeignCommandBuffer = errors.New("halbridge: command buffer was not recorded by halbridge")

	// ErrBarrierInPass is returned when a barrier is recorded inside a render pass.
	ErrBarrierInPass = errors.New("halbridge: pipeline barrier inside render pass")

	// ErrWaitTimeout is returned when a fence wait times out.
	ErrWaitTimeout = errors.New("halbridge: fence wait timed out")

	// ErrInvalidSize is returned when a resource is created with a zero dimension.
	ErrInvalidSize = errors.New("halbridge: invalid resource size")
)
