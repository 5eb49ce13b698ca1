package renderer

// DeviceBackendType identifies the graphics device implementation returned by NewDevice.
type DeviceBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based device.
	BackendTypeWGPU DeviceBackendType = iota

	// BackendTypeRecording selects the in-memory device that records every call without a GPU.
	BackendTypeRecording
)

// BufferKind identifies what a device buffer is bound as.
type BufferKind int

const (
	BufferKindVertex BufferKind = iota
	BufferKindIndex
)

func (k BufferKind) String() string {
	switch k {
	case BufferKindVertex:
		return "vertex"
	case BufferKindIndex:
		return "index"
	default:
		return "unknown"
	}
}

// BufferUsage is the upload frequency hint for a device buffer.
type BufferUsage int

const (
	// UsageStatic marks data uploaded once and never modified.
	UsageStatic BufferUsage = iota
	// UsageDynamic marks data rewritten between frames.
	UsageDynamic
)

// VertexFormat is the per-vertex layout of a vertex buffer slot.
type VertexFormat int

const (
	// VertexFormatFloat32x3 is three 32-bit floats (12 bytes).
	VertexFormatFloat32x3 VertexFormat = iota
	// VertexFormatUnorm16x4 is four normalized unsigned 16-bit integers (8 bytes).
	VertexFormatUnorm16x4
)

// Stride returns the byte size of one vertex in this format.
func (f VertexFormat) Stride() int {
	switch f {
	case VertexFormatUnorm16x4:
		return 8
	default:
		return 12
	}
}

// IndexFormat is the element type of an index buffer.
type IndexFormat int

const (
	IndexFormatUint16 IndexFormat = iota
	IndexFormatUint32
)

// Vertex buffer slots, matching the shader input locations.
const (
	SlotPosition = 0
	SlotColor    = 1
	SlotNormal   = 2
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)
