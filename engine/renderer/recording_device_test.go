package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/taganka/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeviceRecording(t *testing.T) {
	d, err := NewDevice(BackendTypeRecording, nil, WithProgramCompiled(false))
	require.NoError(t, err)
	assert.False(t, d.ProgramCompiled())

	_, err = NewDevice(BackendTypeWGPU, nil)
	assert.Error(t, err)
}

func TestRecordingDeviceFrameProtocol(t *testing.T) {
	d := NewRecordingDevice()
	assert.ErrorIs(t, d.EndFrame(), errNoFrame)
	require.NoError(t, d.BeginFrame())
	assert.ErrorIs(t, d.BeginFrame(), errFrameInProgress)
	require.NoError(t, d.EndFrame())
	assert.Equal(t, 1, d.Frames())
}

func TestRecordingDeviceDrawRequiresSlots(t *testing.T) {
	d := NewRecordingDevice()
	require.NoError(t, d.BeginFrame())
	assert.ErrorIs(t, d.Draw(3), errUnboundSlot)
}

func TestRecordingDeviceCapturesMatrices(t *testing.T) {
	d := NewRecordingDevice()
	proj := common.NewMatrix4().Perspective(45, 1, 0.5, 1000)
	d.SetProjection(proj)
	assert.Equal(t, proj.Array(), d.Projection())

	buf, err := d.CreateBuffer("b", BufferKindVertex, UsageStatic, []byte{1, 2, 3})
	require.NoError(t, err)
	for _, slot := range []int{SlotPosition, SlotColor, SlotNormal} {
		d.SetVertexBuffer(slot, buf, VertexFormatFloat32x3)
	}

	mv := common.NewMatrix4().Translate(1, 2, 3)
	d.SetModelView(mv)
	require.NoError(t, d.BeginFrame())
	require.NoError(t, d.Draw(1))

	draws := d.CallsOf(OpDraw)
	require.Len(t, draws, 1)
	assert.Equal(t, mv.Array(), draws[0].Matrix)

	d.Reset()
	assert.Empty(t, d.Calls())
	assert.Len(t, d.Buffers(), 1)
}

func TestRecordingDeviceReflectsShader(t *testing.T) {
	assert.True(t, NewRecordingDevice().ProgramCompiled())

	noNormal := `
@group(0) @binding(0) var<uniform> projection: mat4x4<f32>;
@group(0) @binding(1) var<uniform> model_view: mat4x4<f32>;
@vertex fn vs(@location(0) position: vec3<f32>, @location(1) color: vec4<f32>) -> @builtin(position) vec4<f32> {
    return projection * model_view * vec4<f32>(position, 1.0);
}
@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	assert.False(t, NewRecordingDevice(WithShaderSource(noNormal)).ProgramCompiled())
	assert.False(t, NewRecordingDevice(WithShaderSource("")).ProgramCompiled())
}

func TestModelShaderReflection(t *testing.T) {
	p, err := reflectModelProgram(modelShaderSource)
	require.NoError(t, err)
	assert.NotEmpty(t, p.VertexEntry)
	assert.NotEmpty(t, p.FragmentEntry)
	assert.Len(t, p.Inputs, 3)
}
