package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/taganka/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func intPtr(v int) *int { return &v }

func floatBytes(values ...float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func ushortBytes(values ...uint16) []byte {
	out := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

// testAsset assembles a glTF document and its binary payload for encoding as GLB or glTF JSON.
type testAsset struct {
	doc gltfDocument
	bin []byte
}

func newTestAsset() *testAsset {
	return &testAsset{doc: gltfDocument{Asset: gltfAsset{Version: "2.0"}}}
}

func (a *testAsset) addView(data []byte) int {
	for len(a.bin)%4 != 0 {
		a.bin = append(a.bin, 0)
	}
	a.doc.BufferViews = append(a.doc.BufferViews, gltfBufferView{ByteOffset: len(a.bin), ByteLength: len(data)})
	a.bin = append(a.bin, data...)
	return len(a.doc.BufferViews) - 1
}

func (a *testAsset) addAccessor(view *int, componentType int, accessorType string, count int) int {
	a.doc.Accessors = append(a.doc.Accessors, gltfAccessor{
		BufferView:    view,
		ComponentType: componentType,
		Count:         count,
		Type:          accessorType,
	})
	return len(a.doc.Accessors) - 1
}

func (a *testAsset) addMesh(name string, attributes map[string]int, indices *int) {
	a.doc.Meshes = append(a.doc.Meshes, gltfMesh{
		Name:       name,
		Primitives: []gltfPrimitive{{Attributes: attributes, Indices: indices}},
	})
}

func (a *testAsset) documentJSON(t *testing.T) []byte {
	t.Helper()
	data, err := json.Marshal(a.doc)
	require.NoError(t, err)
	return data
}

// glb encodes the asset as a GLB container. withBin controls whether the BIN chunk is written.
func (a *testAsset) glb(t *testing.T, withBin bool) []byte {
	t.Helper()
	a.doc.Buffers = []gltfBuffer{{ByteLength: len(a.bin)}}

	jsonData := a.documentJSON(t)
	for len(jsonData)%4 != 0 {
		jsonData = append(jsonData, ' ')
	}
	bin := append([]byte(nil), a.bin...)
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	total := 12 + 8 + len(jsonData)
	if withBin {
		total += 8 + len(bin)
	}

	var out bytes.Buffer
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonData)), ChunkType: gltfGLBChunkJSON}))
	out.Write(jsonData)
	if withBin {
		require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN}))
		out.Write(bin)
	}
	return out.Bytes()
}

// wheelAsset is a four vertex quad drawn with six indices, spread over five buffer views.
func wheelAsset() *testAsset {
	a := newTestAsset()
	pos := a.addView(floatBytes(0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0))
	col := a.addView(ushortBytes(65535, 0, 0, 65535, 0, 65535, 0, 65535, 0, 0, 65535, 65535, 65535, 65535, 65535, 65535))
	nrm := a.addView(floatBytes(0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1))
	idx := a.addView(ushortBytes(0, 1, 2, 0, 2, 3))
	a.addView(floatBytes(0))

	posAcc := a.addAccessor(intPtr(pos), gltfComponentTypeFloat, gltfAccessorTypeVec3, 4)
	colAcc := a.addAccessor(intPtr(col), gltfComponentTypeUnsignedShort, gltfAccessorTypeVec4, 4)
	a.doc.Accessors[colAcc].Normalized = true
	nrmAcc := a.addAccessor(intPtr(nrm), gltfComponentTypeFloat, gltfAccessorTypeVec3, 4)
	idxAcc := a.addAccessor(intPtr(idx), gltfComponentTypeUnsignedShort, gltfAccessorTypeScalar, 6)

	a.addMesh("wheel", map[string]int{
		common.AttributePosition: posAcc,
		common.AttributeColor:    colAcc,
		common.AttributeNormal:   nrmAcc,
	}, intPtr(idxAcc))

	a.doc.Scene = intPtr(0)
	a.doc.Scenes = []gltfScene{{Name: "wheels", Nodes: []int{0}}}
	a.doc.Nodes = []gltfNode{{Name: "root", Mesh: intPtr(0), Rotation: &[4]float64{0, 0, 0, 1}}}
	return a
}

func loadGLB(t *testing.T, l Loader, data []byte) error {
	t.Helper()
	_, err := l.LoadReader(context.Background(), t.Name(), bytes.NewReader(data), true)
	return err
}

func TestLoadReaderDecodesWheel(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	asset, err := l.LoadReader(context.Background(), "wheel.glb", bytes.NewReader(wheelAsset().glb(t, true)), true)
	require.NoError(t, err)

	assert.Equal(t, "wheels", asset.Name)
	require.Contains(t, asset.Primitives, "wheel")

	wheel := asset.Primitives["wheel"]
	assert.Equal(t, 6, wheel.VertexCount)
	require.True(t, wheel.Indexed())
	assert.Equal(t, 6, wheel.Indices.Len())
	assert.Equal(t, common.ComponentTypeUnsignedShort, wheel.Indices.ComponentType)

	position := wheel.Attributes[common.AttributePosition]
	assert.Equal(t, 3, position.Components)
	assert.Equal(t, 12, position.Buffer.Len())
	assert.InDelta(t, 1.0, position.Buffer.Float(3), 1e-9)

	color := wheel.Attributes[common.AttributeColor]
	assert.Equal(t, 4, color.Components)
	assert.True(t, color.Normalized)
	assert.Equal(t, 16, color.Buffer.Len())

	assert.Empty(t, wheel.MissingAttributes())
	require.NotNil(t, asset.NodeRotation)
	assert.Equal(t, [4]float64{0, 0, 0, 1}, *asset.NodeRotation)
}

func TestInsufficientBufferViews(t *testing.T) {
	a := wheelAsset()
	a.doc.BufferViews = a.doc.BufferViews[:4]

	err := loadGLB(t, NewLoader(BackendTypeGLTF), a.glb(t, true))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInsufficientBufferViews)
	assert.ErrorIs(t, err, common.ErrStructural)

	_, err = NewLoader(BackendTypeGLTF, WithMinBufferViews(4)).
		LoadReader(context.Background(), "four", bytes.NewReader(a.glb(t, true)), true)
	assert.NoError(t, err)
}

func TestMissingBinaryChunk(t *testing.T) {
	err := loadGLB(t, NewLoader(BackendTypeGLTF), wheelAsset().glb(t, false))
	assert.ErrorIs(t, err, common.ErrMissingBinaryChunk)
}

func TestStructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *testAsset)
		want   error
	}{
		{
			name:   "no meshes",
			mutate: func(a *testAsset) { a.doc.Meshes = nil },
			want:   common.ErrNoMeshes,
		},
		{
			name:   "empty primitive list",
			mutate: func(a *testAsset) { a.doc.Meshes[0].Primitives = nil },
			want:   common.ErrEmptyPrimitive,
		},
		{
			name:   "attribute references unknown accessor",
			mutate: func(a *testAsset) { a.doc.Meshes[0].Primitives[0].Attributes[common.AttributeNormal] = 99 },
			want:   common.ErrAccessorNotFound,
		},
		{
			name:   "indices reference unknown accessor",
			mutate: func(a *testAsset) { a.doc.Meshes[0].Primitives[0].Indices = intPtr(42) },
			want:   common.ErrAccessorNotFound,
		},
		{
			name:   "accessor without buffer view",
			mutate: func(a *testAsset) { a.doc.Accessors[0].BufferView = nil },
			want:   common.ErrMissingBufferView,
		},
		{
			name:   "buffer view overruns buffer",
			mutate: func(a *testAsset) { a.doc.BufferViews[4].ByteLength = 4096 },
			want:   common.ErrBufferViewOutOfRange,
		},
		{
			name: "no position and no indices",
			mutate: func(a *testAsset) {
				prim := &a.doc.Meshes[0].Primitives[0]
				prim.Indices = nil
				delete(prim.Attributes, common.AttributePosition)
			},
			want: common.ErrMissingAttribute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := wheelAsset()
			tt.mutate(a)

			err := loadGLB(t, NewLoader(BackendTypeGLTF), a.glb(t, true))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, common.ErrStructural)
		})
	}
}

func TestNonIndexedVertexCountFromPositions(t *testing.T) {
	a := wheelAsset()
	a.doc.Meshes[0].Primitives[0].Indices = nil

	asset, err := NewLoader(BackendTypeGLTF).LoadReader(context.Background(), "flat", bytes.NewReader(a.glb(t, true)), true)
	require.NoError(t, err)

	wheel := asset.Primitives["wheel"]
	assert.False(t, wheel.Indexed())
	assert.Equal(t, 4, wheel.VertexCount)
}

func TestAccessorByteOffsetShortensView(t *testing.T) {
	a := wheelAsset()
	a.doc.Meshes[0].Primitives[0].Indices = nil
	a.doc.Accessors[0].ByteOffset = 12

	asset, err := NewLoader(BackendTypeGLTF).LoadReader(context.Background(), "offset", bytes.NewReader(a.glb(t, true)), true)
	require.NoError(t, err)

	position := asset.Primitives["wheel"].Attributes[common.AttributePosition]
	assert.Equal(t, 9, position.Buffer.Len())
	assert.InDelta(t, 1.0, position.Buffer.Float(0), 1e-9)
	assert.Equal(t, 3, asset.Primitives["wheel"].VertexCount)
}

func TestUnknownComponentTypeFallsBackWithWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	a := wheelAsset()
	a.doc.Meshes[0].Primitives[0].Indices = nil
	a.doc.Accessors[0].ComponentType = 9999

	l := NewLoader(BackendTypeGLTF, WithLogger(zap.New(core)))
	asset, err := l.LoadReader(context.Background(), "odd", bytes.NewReader(a.glb(t, true)), true)
	require.NoError(t, err)

	position := asset.Primitives["wheel"].Attributes[common.AttributePosition]
	assert.Equal(t, common.ComponentTypeUnsignedByte, position.Buffer.ComponentType)
	assert.Equal(t, 48, position.Buffer.Len())
	assert.Equal(t, 16, asset.Primitives["wheel"].VertexCount)

	warnings := logs.FilterMessageSnippet("unrecognized accessor component type").All()
	require.Len(t, warnings, 1)
	assert.EqualValues(t, 9999, warnings[0].ContextMap()["componentType"])
}

func TestUnnamedAndDuplicateMeshNames(t *testing.T) {
	a := wheelAsset()
	prim := a.doc.Meshes[0].Primitives[0]
	a.doc.Meshes = append(a.doc.Meshes,
		gltfMesh{Primitives: []gltfPrimitive{prim}},
		gltfMesh{Name: "wheel", Primitives: []gltfPrimitive{prim}},
	)

	asset, err := NewLoader(BackendTypeGLTF, WithWorkers(2)).
		LoadReader(context.Background(), "many", bytes.NewReader(a.glb(t, true)), true)
	require.NoError(t, err)

	assert.Len(t, asset.Primitives, 3)
	assert.Contains(t, asset.Primitives, "wheel")
	assert.Contains(t, asset.Primitives, "mesh_1")
	assert.Contains(t, asset.Primitives, "wheel_2")
}

func TestFirstFailingMeshWins(t *testing.T) {
	a := wheelAsset()
	good := a.doc.Meshes[0].Primitives[0]
	a.doc.Meshes = append(a.doc.Meshes,
		gltfMesh{Name: "empty"},
		gltfMesh{Name: "dangling", Primitives: []gltfPrimitive{{Attributes: map[string]int{common.AttributePosition: 77}}}},
		gltfMesh{Name: "fine", Primitives: []gltfPrimitive{good}},
	)

	for i := 0; i < 10; i++ {
		err := loadGLB(t, NewLoader(BackendTypeGLTF, WithWorkers(4)), a.glb(t, true))
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrEmptyPrimitive)
		assert.False(t, errors.Is(err, common.ErrAccessorNotFound))
	}
}

func TestLoadReaderDeduplicatesContent(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)
	data := wheelAsset().glb(t, true)

	first, err := l.LoadReader(context.Background(), "a", bytes.NewReader(data), true)
	require.NoError(t, err)
	second, err := l.LoadReader(context.Background(), "b", bytes.NewReader(data), true)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, l.Get("b"))
	assert.Len(t, l.Assets(), 2)
}

func TestLoadFromFileAndSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wheel.glb")
	require.NoError(t, os.WriteFile(path, wheelAsset().glb(t, true), 0o600))

	l := NewLoader(BackendTypeGLTF)
	asset, err := l.Source(path).Import(context.Background())
	require.NoError(t, err)
	assert.Same(t, asset, l.Get(path))

	again, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Same(t, asset, again)

	_, err = l.Load(context.Background(), filepath.Join(t.TempDir(), "wheel.obj"))
	assert.Error(t, err)
}

func TestGLTFWithDataURI(t *testing.T) {
	a := wheelAsset()
	a.doc.Buffers = []gltfBuffer{{
		URI:        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(a.bin),
		ByteLength: len(a.bin),
	}}

	asset, err := NewLoader(BackendTypeGLTF).
		LoadReader(context.Background(), "wheel.gltf", bytes.NewReader(a.documentJSON(t)), false)
	require.NoError(t, err)
	assert.Equal(t, 6, asset.Primitives["wheel"].VertexCount)
}

func TestGLTFSiblingBufferFile(t *testing.T) {
	dir := t.TempDir()
	a := wheelAsset()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wheel.bin"), a.bin, 0o600))
	a.doc.Buffers = []gltfBuffer{{URI: "wheel.bin", ByteLength: len(a.bin)}}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wheel.gltf"), a.documentJSON(t), 0o600))

	asset, err := NewLoader(BackendTypeGLTF).Load(context.Background(), filepath.Join(dir, "wheel.gltf"))
	require.NoError(t, err)
	assert.Contains(t, asset.Primitives, "wheel")
}

func TestInvalidContainers(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	assert.ErrorIs(t, loadGLB(t, l, []byte{1, 2, 3}), errGLBTooSmall)

	bad := wheelAsset().glb(t, true)
	binary.LittleEndian.PutUint32(bad, 0xdeadbeef)
	_, err := l.LoadReader(context.Background(), "magic", bytes.NewReader(bad), true)
	assert.ErrorIs(t, err, errInvalidGLBMagic)

	full := wheelAsset().glb(t, true)
	_, err = l.LoadReader(context.Background(), "short", bytes.NewReader(full[:len(full)-4]), true)
	assert.ErrorIs(t, err, errGLBTruncated)

	overrun := wheelAsset().glb(t, true)
	binary.LittleEndian.PutUint32(overrun[12:], uint32(len(overrun)))
	_, err = l.LoadReader(context.Background(), "overrun", bytes.NewReader(overrun), true)
	assert.ErrorIs(t, err, errGLBTruncated)

	a := wheelAsset()
	a.doc.Asset.Version = "1.0"
	_, err = l.LoadReader(context.Background(), "v1", bytes.NewReader(a.glb(t, true)), true)
	assert.ErrorIs(t, err, errInvalidGLTFVersion)
}

func TestLoadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLoader(BackendTypeGLTF)
	_, err := l.LoadReader(ctx, "cancelled", bytes.NewReader(wheelAsset().glb(t, true)), true)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, l.Get("cancelled"))
}

func TestNodeRotationUsesFirstNode(t *testing.T) {
	doc := &gltfDocument{
		Scene:  intPtr(0),
		Scenes: []gltfScene{{Nodes: []int{1}}},
		Nodes: []gltfNode{
			{Rotation: &[4]float64{1, 0, 0, 0}},
			{Rotation: &[4]float64{0, 1, 0, 0}},
		},
	}
	assert.Equal(t, &[4]float64{1, 0, 0, 0}, gltfExtractNodeRotation(doc), "scene root order is ignored")

	doc.Scene = nil
	assert.Equal(t, &[4]float64{1, 0, 0, 0}, gltfExtractNodeRotation(doc))

	got := gltfExtractNodeRotation(doc)
	got[0] = 5
	assert.Equal(t, 1.0, (*doc.Nodes[0].Rotation)[0], "the returned quaternion is a copy")

	doc.Nodes[0].Rotation = nil
	assert.Nil(t, gltfExtractNodeRotation(doc))
	assert.Nil(t, gltfExtractNodeRotation(&gltfDocument{}))
}
