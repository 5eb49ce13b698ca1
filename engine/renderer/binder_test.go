package renderer

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/taganka/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func floatBuffer(values ...float32) common.ElementBuffer {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return common.ElementBuffer{ComponentType: common.ComponentTypeFloat, Data: data}
}

func ushortBuffer(values ...uint16) common.ElementBuffer {
	data := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[i*2:], v)
	}
	return common.ElementBuffer{ComponentType: common.ComponentTypeUnsignedShort, Data: data}
}

func triangle(name string, indexed bool) *common.PrimitiveGeometry {
	g := &common.PrimitiveGeometry{
		Name: name,
		Attributes: map[string]common.Attribute{
			common.AttributePosition: {Components: 3, Buffer: floatBuffer(0, 0, 0, 1, 0, 0, 0, 1, 0)},
			common.AttributeColor:    {Components: 4, Normalized: true, Buffer: ushortBuffer(65535, 0, 0, 65535, 0, 65535, 0, 65535, 0, 0, 65535, 65535)},
			common.AttributeNormal:   {Components: 3, Buffer: floatBuffer(0, 0, 1, 0, 0, 1, 0, 0, 1)},
		},
		VertexCount: 3,
	}
	if indexed {
		idx := ushortBuffer(0, 1, 2)
		g.Indices = &idx
	}
	return g
}

func TestBindGeometryUploadsStaticBuffers(t *testing.T) {
	d := NewRecordingDevice()
	bound, err := BindGeometry(d, "wheels", map[string]*common.PrimitiveGeometry{
		"wheel": triangle("wheel", true),
		"hub":   triangle("hub", false),
	})
	require.NoError(t, err)
	require.Len(t, bound, 2)

	// three attribute buffers per mesh plus one index buffer for the indexed mesh
	buffers := d.Buffers()
	require.Len(t, buffers, 7)
	for _, b := range buffers {
		assert.Equal(t, UsageStatic, b.Usage, b.Label())
	}

	wheel := bound["wheel"]
	require.NotNil(t, wheel.Index)
	assert.Equal(t, IndexFormatUint16, wheel.IndexFormat)
	assert.Equal(t, 3, wheel.VertexCount)
	assert.Equal(t, "wheels/wheel/position", wheel.Position.Label())
	assert.Equal(t, 36, wheel.Position.Size())
	assert.Equal(t, 24, wheel.Color.Size())

	assert.Nil(t, bound["hub"].Index)
}

func TestBindGeometryMissingAttributeOncePerMesh(t *testing.T) {
	noNormal := triangle("a", false)
	delete(noNormal.Attributes, common.AttributeNormal)
	noColorOrPosition := triangle("b", false)
	delete(noColorOrPosition.Attributes, common.AttributeColor)
	delete(noColorOrPosition.Attributes, common.AttributePosition)

	d := NewRecordingDevice()
	bound, err := BindGeometry(d, "m", map[string]*common.PrimitiveGeometry{
		"a":  noNormal,
		"b":  noColorOrPosition,
		"ok": triangle("ok", true),
	})
	require.Error(t, err)
	assert.Nil(t, bound)
	assert.True(t, errors.Is(err, common.ErrMissingAttribute))
	assert.Empty(t, d.Buffers(), "nothing is uploaded when validation fails")

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)

	var first, second *common.MissingAttributeError
	require.True(t, errors.As(errs[0], &first))
	require.True(t, errors.As(errs[1], &second))
	assert.Equal(t, "a", first.Mesh)
	assert.Equal(t, []string{common.AttributeNormal}, first.Attributes)
	assert.Equal(t, "b", second.Mesh)
	assert.Equal(t, []string{common.AttributePosition, common.AttributeColor}, second.Attributes)
}

func TestPackUnorm16x4FromFloatRGB(t *testing.T) {
	out := packUnorm16x4(common.Attribute{Components: 3, Buffer: floatBuffer(1, 0.5, 2)})
	require.Len(t, out, 8)
	assert.Equal(t, uint16(65535), binary.LittleEndian.Uint16(out[0:]))
	assert.Equal(t, uint16(32768), binary.LittleEndian.Uint16(out[2:]))
	assert.Equal(t, uint16(65535), binary.LittleEndian.Uint16(out[4:]), "clamped")
	assert.Equal(t, uint16(65535), binary.LittleEndian.Uint16(out[6:]), "opaque alpha")
}

func TestPackFloat32x3PassThrough(t *testing.T) {
	a := common.Attribute{Components: 3, Buffer: floatBuffer(1, 2, 3)}
	assert.Equal(t, a.Buffer.Data, packFloat32x3(a))
}

func TestPackIndicesWidensBytes(t *testing.T) {
	data, format := packIndices(common.ElementBuffer{ComponentType: common.ComponentTypeUnsignedByte, Data: []byte{2, 1, 0}})
	assert.Equal(t, IndexFormatUint32, format)
	require.Len(t, data, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data))
}

func TestDrawPrimitive(t *testing.T) {
	d := NewRecordingDevice()
	bound, err := BindGeometry(d, "m", map[string]*common.PrimitiveGeometry{
		"indexed": triangle("indexed", true),
		"plain":   triangle("plain", false),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, DrawPrimitive(d, bound["plain"]), errNoFrame)
	assert.Len(t, d.CallsOf(OpSetVertexBuffer), 3, "slots are bound before the frame check")
	d.Reset()

	require.NoError(t, d.BeginFrame())
	require.NoError(t, DrawPrimitive(d, bound["indexed"]))
	require.NoError(t, DrawPrimitive(d, bound["plain"]))
	require.NoError(t, d.EndFrame())

	indexed := d.CallsOf(OpDrawIndexed)
	require.Len(t, indexed, 1)
	assert.Equal(t, 3, indexed[0].Count)
	assert.Equal(t, "m/indexed/index", indexed[0].Buffer.Label())

	plain := d.CallsOf(OpDraw)
	require.Len(t, plain, 1)
	assert.Equal(t, 3, plain[0].Count)

	slots := d.CallsOf(OpSetVertexBuffer)
	require.Len(t, slots, 6)
	assert.Equal(t, VertexFormatUnorm16x4, slots[1].VertexFormat)
	assert.Equal(t, 1, d.Frames())
}

// budgetDevice fails every CreateBuffer once its budget is spent.
type budgetDevice struct {
	*RecordingDevice
	budget int
}

var errOutOfMemory = errors.New("out of device memory")

func (d *budgetDevice) CreateBuffer(label string, kind BufferKind, usage BufferUsage, data []byte) (BufferHandle, error) {
	if d.budget == 0 {
		return nil, errOutOfMemory
	}
	d.budget--
	return d.RecordingDevice.CreateBuffer(label, kind, usage, data)
}

func TestBindGeometryReleasesOnFailure(t *testing.T) {
	primitives := map[string]*common.PrimitiveGeometry{
		"a": triangle("a", true),
		"b": triangle("b", true),
	}

	for budget := 0; budget < 8; budget++ {
		d := &budgetDevice{RecordingDevice: NewRecordingDevice(), budget: budget}
		bound, err := BindGeometry(d, "m", primitives)
		require.ErrorIs(t, err, errOutOfMemory, "budget %d", budget)
		assert.Nil(t, bound)

		created := d.Buffers()
		require.Len(t, created, budget)
		for _, buf := range created {
			assert.True(t, buf.Released(), "%s leaked with budget %d", buf.Label(), budget)
		}
	}

	d := &budgetDevice{RecordingDevice: NewRecordingDevice(), budget: 8}
	_, err := BindGeometry(d, "m", primitives)
	require.NoError(t, err)
	for _, buf := range d.Buffers() {
		assert.False(t, buf.Released())
	}
}
