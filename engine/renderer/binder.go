package renderer

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/Carmen-Shannon/taganka/common"
	"go.uber.org/multierr"
)

// ValidateGeometry checks that every primitive carries POSITION, COLOR_0 and NORMAL.
// Each offending mesh contributes exactly one *common.MissingAttributeError to the combined error;
// use multierr.Errors to enumerate them.
//
// Parameters:
//   - primitives: decoded geometry keyed by mesh name
//
// Returns:
//   - error: nil if every primitive is renderable
func ValidateGeometry(primitives map[string]*common.PrimitiveGeometry) error {
	var err error
	for _, name := range sortedNames(primitives) {
		if missing := primitives[name].MissingAttributes(); len(missing) > 0 {
			err = multierr.Append(err, &common.MissingAttributeError{Mesh: name, Attributes: missing})
		}
	}
	return err
}

// BindGeometry uploads every primitive into static device buffers: position (3×float32),
// color (4×unorm16) and normal (3×float32) vertex buffers plus an optional index buffer.
// All primitives are validated before the first buffer is created, so a rejected asset leaves no
// buffers behind.
//
// Parameters:
//   - d: the device to upload to
//   - label: prefix for the buffer debug labels
//   - primitives: decoded geometry keyed by mesh name
//
// Returns:
//   - map[string]*DeviceBuffers: the bound buffers keyed by mesh name
//   - error: the validation error, or the first device error
func BindGeometry(d Device, label string, primitives map[string]*common.PrimitiveGeometry) (map[string]*DeviceBuffers, error) {
	if err := ValidateGeometry(primitives); err != nil {
		return nil, err
	}

	bound := make(map[string]*DeviceBuffers, len(primitives))
	for _, name := range sortedNames(primitives) {
		b, err := bindPrimitive(d, label+"/"+name, name, primitives[name])
		if err != nil {
			for _, done := range bound {
				done.Release()
			}
			return nil, err
		}
		bound[name] = b
	}

	return bound, nil
}

// bindPrimitive uploads the buffers of one primitive. On failure the buffers it already created
// are released.
func bindPrimitive(d Device, prefix, name string, g *common.PrimitiveGeometry) (_ *DeviceBuffers, err error) {
	b := &DeviceBuffers{VertexCount: g.VertexCount}
	defer func() {
		if err != nil {
			b.Release()
		}
	}()

	if b.Position, err = d.CreateBuffer(prefix+"/position", BufferKindVertex, UsageStatic, packFloat32x3(g.Attributes[common.AttributePosition])); err != nil {
		return nil, fmt.Errorf("failed to create position buffer for %q: %w", name, err)
	}
	if b.Color, err = d.CreateBuffer(prefix+"/color", BufferKindVertex, UsageStatic, packUnorm16x4(g.Attributes[common.AttributeColor])); err != nil {
		return nil, fmt.Errorf("failed to create color buffer for %q: %w", name, err)
	}
	if b.Normal, err = d.CreateBuffer(prefix+"/normal", BufferKindVertex, UsageStatic, packFloat32x3(g.Attributes[common.AttributeNormal])); err != nil {
		return nil, fmt.Errorf("failed to create normal buffer for %q: %w", name, err)
	}

	if g.Indices != nil {
		data, format := packIndices(*g.Indices)
		if b.Index, err = d.CreateBuffer(prefix+"/index", BufferKindIndex, UsageStatic, data); err != nil {
			return nil, fmt.Errorf("failed to create index buffer for %q: %w", name, err)
		}
		b.IndexFormat = format
	}

	return b, nil
}

func sortedNames(primitives map[string]*common.PrimitiveGeometry) []string {
	names := make([]string, 0, len(primitives))
	for name := range primitives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// packFloat32x3 lays an attribute out as three float32 per vertex.
// Tightly packed float VEC3 data is passed through untouched.
func packFloat32x3(a common.Attribute) []byte {
	if a.Buffer.ComponentType == common.ComponentTypeFloat && a.Components == 3 {
		return a.Buffer.Bytes()
	}

	count := a.Count()
	out := make([]byte, count*12)
	for v := 0; v < count; v++ {
		for c := 0; c < 3 && c < a.Components; c++ {
			i := v*a.Components + c
			value := a.Buffer.Float(i)
			if a.Normalized {
				value = a.Buffer.Normalized(i)
			}
			binary.LittleEndian.PutUint32(out[v*12+c*4:], math.Float32bits(float32(value)))
		}
	}
	return out
}

// packUnorm16x4 lays a color attribute out as four normalized uint16 per vertex.
// Unsigned short VEC4 data is passed through untouched; RGB colors get an opaque alpha.
func packUnorm16x4(a common.Attribute) []byte {
	if a.Buffer.ComponentType == common.ComponentTypeUnsignedShort && a.Components == 4 {
		return a.Buffer.Bytes()
	}

	count := a.Count()
	out := make([]byte, count*8)
	for v := 0; v < count; v++ {
		for c := 0; c < 4; c++ {
			value := 0.0
			switch {
			case c < a.Components:
				value = a.Buffer.Normalized(v*a.Components + c)
			case c == 3:
				value = 1
			}
			value = math.Min(math.Max(value, 0), 1)
			binary.LittleEndian.PutUint16(out[v*8+c*2:], uint16(math.Round(value*65535)))
		}
	}
	return out
}

// packIndices returns index data the device can bind directly. 16 and 32-bit indices pass through;
// anything else is widened to uint32.
func packIndices(b common.ElementBuffer) ([]byte, IndexFormat) {
	switch b.ComponentType {
	case common.ComponentTypeUnsignedShort:
		return b.Bytes(), IndexFormatUint16
	case common.ComponentTypeUnsignedInt:
		return b.Bytes(), IndexFormatUint32
	}

	out := make([]byte, b.Len()*4)
	for i := 0; i < b.Len(); i++ {
		binary.LittleEndian.PutUint32(out[i*4:], b.Uint(i))
	}
	return out, IndexFormatUint32
}
