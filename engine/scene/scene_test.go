package scene

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/taganka/common"
	"github.com/Carmen-Shannon/taganka/engine/camera"
	"github.com/Carmen-Shannon/taganka/engine/kinematics"
	"github.com/Carmen-Shannon/taganka/engine/model"
	"github.com/Carmen-Shannon/taganka/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floats(values ...float32) common.ElementBuffer {
	data := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return common.ElementBuffer{ComponentType: common.ComponentTypeFloat, Data: data}
}

func triangleSource(name string) model.AssetSource {
	return model.AssetSourceFunc(func(context.Context) (*model.ImportedAsset, error) {
		return &model.ImportedAsset{
			Name: name,
			Primitives: map[string]*common.PrimitiveGeometry{
				name: {
					Name: name,
					Attributes: map[string]common.Attribute{
						common.AttributePosition: {Components: 3, Buffer: floats(0, 0, 0, 1, 0, 0, 0, 1, 0)},
						common.AttributeColor:    {Components: 4, Buffer: floats(1, 0, 0, 1, 0, 1, 0, 1, 0, 0, 1, 1)},
						common.AttributeNormal:   {Components: 3, Buffer: floats(0, 0, 1, 0, 0, 1, 0, 0, 1)},
					},
					VertexCount: 3,
				},
			},
		}, nil
	})
}

func failingSource(err error) model.AssetSource {
	return model.AssetSourceFunc(func(context.Context) (*model.ImportedAsset, error) {
		return nil, err
	})
}

type fixture struct {
	device  *renderer.RecordingDevice
	camera  camera.Camera
	wheels  WheelsModel
	terrain model.Model
	scene   Scene
}

func newFixture(options ...renderer.DeviceBuilderOption) *fixture {
	d := renderer.NewRecordingDevice(options...)
	cam := camera.NewCamera()
	wheels := NewWheelsModel(
		model.NewModel(model.WithSource(triangleSource("wheel")), model.WithDevice(d)),
		WithSimulator(kinematics.NewSimulator(kinematics.WithUp(cam.Up()))),
	)
	terrain := NewStaticModel(model.WithSource(triangleSource("terrain")), model.WithDevice(d))
	return &fixture{
		device:  d,
		camera:  cam,
		wheels:  wheels,
		terrain: terrain,
		scene:   NewScene(cam, d, WithName("taganka"), WithWheels(wheels), WithModels(terrain)),
	}
}

func TestShaderNotCompiled(t *testing.T) {
	f := newFixture(renderer.WithProgramCompiled(false))

	for _, err := range []error{
		f.scene.LoadModels(context.Background()),
		f.scene.Prepare(1),
		f.scene.DrawScene(1),
		f.scene.Resize(800, 600),
	} {
		assert.ErrorIs(t, err, common.ErrShaderNotCompiled)
		assert.ErrorIs(t, err, common.ErrPrecondition)
	}
	assert.Empty(t, f.device.Buffers())
	assert.Zero(t, f.device.Frames())
}

func TestLoadModels(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.LoadModels(context.Background()))

	assert.True(t, f.wheels.Model().Loaded())
	assert.True(t, f.terrain.Loaded())
	assert.Len(t, f.device.Buffers(), 6)
	assert.Len(t, f.scene.Models(), 2)
	assert.Equal(t, "taganka", f.scene.Name())
}

func TestLoadModelsPropagatesFirstError(t *testing.T) {
	d := renderer.NewRecordingDevice()
	broken := model.NewModel(model.WithSource(failingSource(common.ErrNoMeshes)), model.WithDevice(d))
	fine := model.NewModel(model.WithSource(triangleSource("fine")), model.WithDevice(d))

	s := NewScene(camera.NewCamera(), d, WithModels(fine, broken), WithLoadConcurrency(1))
	err := s.LoadModels(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNoMeshes))
	assert.True(t, errors.Is(err, common.ErrStructural))
}

func TestPrepareUploadsPerspective(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.Prepare(16.0/9.0))

	want := common.NewMatrix4().Perspective(45, 16.0/9.0, 0.5, 1000)
	assert.Equal(t, want.Array(), f.device.Projection())
}

func TestResizeReprojects(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.Resize(1000, 500))

	resizes := f.device.CallsOf(renderer.OpResize)
	require.Len(t, resizes, 1)
	assert.Equal(t, 1000, resizes[0].Width)
	assert.Equal(t, 500, resizes[0].Height)
	assert.Equal(t, common.NewMatrix4().Perspective(45, 2, 0.5, 1000).Array(), f.device.Projection())

	require.NoError(t, f.scene.Resize(0, 500), "minimised windows are ignored")
	assert.Len(t, f.device.CallsOf(renderer.OpResize), 1)
}

func TestDrawSceneBeforeLoadEndsFrame(t *testing.T) {
	f := newFixture()

	err := f.scene.DrawScene(1)
	assert.ErrorIs(t, err, common.ErrNotLoaded)
	assert.Equal(t, 1, f.device.Frames())
	assert.Zero(t, f.wheels.Simulator().State().Distance, "simulator must not advance before load")

	require.NoError(t, f.device.BeginFrame())
	require.NoError(t, f.device.EndFrame())
}

func TestDrawSceneComposesWheelTransforms(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.LoadModels(context.Background()))
	require.NoError(t, f.scene.Prepare(1))

	const dt = 36.0
	require.NoError(t, f.scene.DrawScene(dt))

	expected := kinematics.NewSimulator()
	expected.Step(dt)

	view := f.camera.ViewMatrix()
	mounted := view.Copy().Translate(DefaultMount.X, DefaultMount.Y, DefaultMount.Z)
	wantFront := mounted.Copy().MultiplyRight(expected.FrontTranslation()).MultiplyRight(expected.FrontOrientation())
	wantRear := mounted.Copy().MultiplyRight(expected.RearTranslation()).MultiplyRight(expected.RearOrientation())

	draws := f.device.CallsOf(renderer.OpDraw)
	require.Len(t, draws, 3)
	assert.True(t, common.Matrix4FromArray(draws[0].Matrix).Equal(wantFront, 1e-9), "front wheel")
	assert.True(t, common.Matrix4FromArray(draws[1].Matrix).Equal(wantRear, 1e-9), "rear wheel")
	assert.True(t, common.Matrix4FromArray(draws[2].Matrix).Equal(view, 1e-9), "terrain")
	assert.Equal(t, 1, f.device.Frames())
}

func TestReadouts(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.scene.LoadModels(context.Background()))

	for i := 0; i < 3; i++ {
		require.NoError(t, f.scene.DrawScene(36))
	}

	r, ok := f.scene.Readouts()
	require.True(t, ok)
	assert.InDelta(t, 2*math.Pi*kinematics.DefaultTireRadius*0.1, r.MovementMagnitude, 1e-9)
	assert.Equal(t, f.wheels.Simulator().HeadingDegrees(), r.HeadingDegrees)
	assert.Equal(t, f.wheels.Simulator().FrontPosition(), r.FrontPosition)
	assert.Greater(t, r.HeadingDegrees, 0.0)

	empty := NewScene(camera.NewCamera(), renderer.NewRecordingDevice())
	_, ok = empty.Readouts()
	assert.False(t, ok)
	assert.Nil(t, empty.Wheels())
}
