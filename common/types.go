// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ComponentType is the numeric element type of an accessor, using the glTF component type codes.
type ComponentType int

const (
	ComponentTypeByte          ComponentType = 5120
	ComponentTypeUnsignedByte  ComponentType = 5121
	ComponentTypeShort         ComponentType = 5122
	ComponentTypeUnsignedShort ComponentType = 5123
	ComponentTypeUnsignedInt   ComponentType = 5125
	ComponentTypeFloat         ComponentType = 5126
)

// Known reports whether the component type is one of the six glTF component types.
func (c ComponentType) Known() bool {
	switch c {
	case ComponentTypeByte, ComponentTypeUnsignedByte, ComponentTypeShort,
		ComponentTypeUnsignedShort, ComponentTypeUnsignedInt, ComponentTypeFloat:
		return true
	}
	return false
}

// Reader returns the component type used to read elements of this type.
// Unrecognized component types fall back to the unsigned byte reader.
func (c ComponentType) Reader() ComponentType {
	if !c.Known() {
		return ComponentTypeUnsignedByte
	}
	return c
}

// Size returns the byte width of a single element. Unrecognized types report the fallback reader's width.
func (c ComponentType) Size() int {
	switch c.Reader() {
	case ComponentTypeShort, ComponentTypeUnsignedShort:
		return 2
	case ComponentTypeUnsignedInt, ComponentTypeFloat:
		return 4
	default:
		return 1
	}
}

func (c ComponentType) String() string {
	switch c {
	case ComponentTypeByte:
		return "BYTE"
	case ComponentTypeUnsignedByte:
		return "UNSIGNED_BYTE"
	case ComponentTypeShort:
		return "SHORT"
	case ComponentTypeUnsignedShort:
		return "UNSIGNED_SHORT"
	case ComponentTypeUnsignedInt:
		return "UNSIGNED_INT"
	case ComponentTypeFloat:
		return "FLOAT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(c))
	}
}

// Standard attribute semantics consumed by the renderer.
const (
	AttributePosition = "POSITION"
	AttributeColor    = "COLOR_0"
	AttributeNormal   = "NORMAL"
)

// ElementBuffer is a typed, read-only view over a little-endian byte range.
// The element count is always len(Data) divided by the element width; a trailing partial element is ignored.
type ElementBuffer struct {
	ComponentType ComponentType
	Data          []byte
}

// Len returns the number of whole elements in the buffer.
func (b ElementBuffer) Len() int {
	return len(b.Data) / b.ComponentType.Size()
}

// Bytes returns the backing bytes trimmed to whole elements.
func (b ElementBuffer) Bytes() []byte {
	return b.Data[:b.Len()*b.ComponentType.Size()]
}

// Float returns element i converted to float64 without normalization.
func (b ElementBuffer) Float(i int) float64 {
	off := i * b.ComponentType.Size()
	switch b.ComponentType.Reader() {
	case ComponentTypeByte:
		return float64(int8(b.Data[off]))
	case ComponentTypeShort:
		return float64(int16(binary.LittleEndian.Uint16(b.Data[off:])))
	case ComponentTypeUnsignedShort:
		return float64(binary.LittleEndian.Uint16(b.Data[off:]))
	case ComponentTypeUnsignedInt:
		return float64(binary.LittleEndian.Uint32(b.Data[off:]))
	case ComponentTypeFloat:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b.Data[off:])))
	default:
		return float64(b.Data[off])
	}
}

// Normalized returns element i mapped into [0, 1] (unsigned) or [-1, 1] (signed) following the glTF
// normalized integer rules. Float elements are returned unchanged.
func (b ElementBuffer) Normalized(i int) float64 {
	v := b.Float(i)
	switch b.ComponentType.Reader() {
	case ComponentTypeByte:
		return math.Max(v/127, -1)
	case ComponentTypeShort:
		return math.Max(v/32767, -1)
	case ComponentTypeUnsignedShort:
		return v / 65535
	case ComponentTypeUnsignedInt:
		return v / 4294967295
	case ComponentTypeFloat:
		return v
	default:
		return v / 255
	}
}

// Uint returns element i as an unsigned integer, used for index buffers.
func (b ElementBuffer) Uint(i int) uint32 {
	return uint32(b.Float(i))
}

// Attribute is one decoded vertex attribute of a primitive.
type Attribute struct {
	// Components is the number of components per vertex (1 for SCALAR, 3 for VEC3, ...).
	Components int
	// Normalized mirrors the accessor's normalized flag for integer data.
	Normalized bool
	// Buffer holds every component of every vertex, tightly packed.
	Buffer ElementBuffer
}

// Count returns the number of vertices the attribute describes.
func (a Attribute) Count() int {
	if a.Components == 0 {
		return 0
	}
	return a.Buffer.Len() / a.Components
}

// PrimitiveGeometry is the decoded geometry of the first primitive of one mesh.
type PrimitiveGeometry struct {
	Name        string
	Attributes  map[string]Attribute
	Indices     *ElementBuffer
	VertexCount int
}

// Indexed reports whether the primitive is drawn with an index buffer.
func (g *PrimitiveGeometry) Indexed() bool {
	return g.Indices != nil
}

// MissingAttributes lists the required renderer attributes the primitive lacks, in a stable order.
func (g *PrimitiveGeometry) MissingAttributes() []string {
	var missing []string
	for _, name := range []string{AttributePosition, AttributeColor, AttributeNormal} {
		if _, ok := g.Attributes[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
