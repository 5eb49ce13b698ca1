package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/taganka/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferHandle is an opaque reference to a buffer owned by a Device.
type BufferHandle interface {
	// Label returns the debug label the buffer was created with.
	Label() string

	// Size returns the buffer size in bytes.
	Size() int

	// Release frees the device memory behind the buffer. Releasing twice is a no-op.
	Release()
}

// Device is the graphics capability the core renders through. It is deliberately narrow:
// buffer creation, vertex attribute binding, matrix uniforms and draw calls.
// Implementations must be safe for concurrent buffer creation, since models may bind concurrently.
type Device interface {
	// CreateBuffer uploads data into a new device buffer.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - kind: whether the buffer is bound as vertex or index data
	//   - usage: the upload frequency hint
	//   - data: the bytes to upload
	//
	// Returns:
	//   - BufferHandle: the created buffer
	//   - error: error if the device rejects the buffer
	CreateBuffer(label string, kind BufferKind, usage BufferUsage, data []byte) (BufferHandle, error)

	// SetVertexBuffer binds a vertex buffer to an attribute slot for the next draw.
	//
	// Parameters:
	//   - slot: the attribute slot (SlotPosition, SlotColor, SlotNormal)
	//   - buffer: the vertex buffer
	//   - format: the per-vertex layout of the buffer
	SetVertexBuffer(slot int, buffer BufferHandle, format VertexFormat)

	// SetProjection uploads the projection matrix uniform.
	//
	// Parameters:
	//   - m: the projection matrix
	SetProjection(m *common.Matrix4)

	// SetModelView uploads the model-view matrix uniform used by the next draw.
	//
	// Parameters:
	//   - m: the model-view matrix
	SetModelView(m *common.Matrix4)

	// Draw issues a non-indexed triangle-list draw.
	//
	// Parameters:
	//   - vertexCount: the number of vertices to draw
	//
	// Returns:
	//   - error: error if no frame is in progress or the draw is invalid
	Draw(vertexCount int) error

	// DrawIndexed issues an indexed triangle-list draw.
	//
	// Parameters:
	//   - indices: the index buffer
	//   - format: the index element type
	//   - count: the number of indices to draw
	//
	// Returns:
	//   - error: error if no frame is in progress or the draw is invalid
	DrawIndexed(indices BufferHandle, format IndexFormat, count int) error

	// BeginFrame starts recording a frame. Must be paired with EndFrame.
	//
	// Returns:
	//   - error: error if the frame could not be started
	BeginFrame() error

	// EndFrame submits and presents the frame started by BeginFrame.
	//
	// Returns:
	//   - error: error if submission fails
	EndFrame() error

	// Resize reconfigures the render target for a new surface size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// ProgramCompiled reports whether the device's shader program compiled and linked.
	//
	// Returns:
	//   - bool: true if draws can be issued
	ProgramCompiled() bool
}

// SurfaceProvider supplies the presentation surface for on-screen devices. engine/window.Window satisfies it.
type SurfaceProvider interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// DeviceBuffers are the device buffers bound for one primitive.
// They are created once at load time and owned by the model for its lifetime.
type DeviceBuffers struct {
	Position    BufferHandle
	Color       BufferHandle
	Normal      BufferHandle
	Index       BufferHandle
	IndexFormat IndexFormat
	VertexCount int
}

// Release frees every buffer that was created. Nil handles are skipped.
func (b *DeviceBuffers) Release() {
	for _, h := range []BufferHandle{b.Position, b.Color, b.Normal, b.Index} {
		if h != nil {
			h.Release()
		}
	}
}

// NewDevice creates a Device for the requested backend.
//
// Parameters:
//   - backendType: the device implementation to create
//   - surface: the presentation surface, required for BackendTypeWGPU and ignored otherwise
//   - options: functional options configuring the device
//
// Returns:
//   - Device: the created device
//   - error: error if the backend could not be initialized
func NewDevice(backendType DeviceBackendType, surface SurfaceProvider, options ...DeviceBuilderOption) (Device, error) {
	cfg := newDeviceConfig()
	for _, opt := range options {
		opt(cfg)
	}

	switch backendType {
	case BackendTypeRecording:
		return newRecordingDevice(cfg), nil
	case BackendTypeWGPU:
		if surface == nil {
			return nil, fmt.Errorf("wgpu device requires a surface")
		}
		return newWGPUDevice(surface, cfg)
	default:
		return nil, fmt.Errorf("unknown device backend type %d", backendType)
	}
}

// DrawPrimitive binds the three attribute slots of a primitive and issues its draw.
// Indexed primitives draw VertexCount indices; others draw VertexCount vertices.
//
// Parameters:
//   - d: the device to draw on
//   - b: the primitive's bound buffers
//
// Returns:
//   - error: error if the device rejects the draw
func DrawPrimitive(d Device, b *DeviceBuffers) error {
	d.SetVertexBuffer(SlotPosition, b.Position, VertexFormatFloat32x3)
	d.SetVertexBuffer(SlotColor, b.Color, VertexFormatUnorm16x4)
	d.SetVertexBuffer(SlotNormal, b.Normal, VertexFormatFloat32x3)

	if b.Index != nil {
		return d.DrawIndexed(b.Index, b.IndexFormat, b.VertexCount)
	}
	return d.Draw(b.VertexCount)
}
