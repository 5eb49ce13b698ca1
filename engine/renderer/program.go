package renderer

import (
	_ "embed"

	"github.com/Carmen-Shannon/taganka/engine/renderer/shader"
	"go.uber.org/multierr"
)

//go:embed shaders/model.wgsl
var modelShaderSource string

// reflectModelProgram checks that source reads the three attribute slots with the types the
// binder uploads and declares the projection and model-view uniforms.
func reflectModelProgram(source string) (*shader.Program, error) {
	program, err := shader.Reflect("model.wgsl", source)
	if err != nil {
		return nil, err
	}
	err = multierr.Combine(
		program.RequireInput(SlotPosition, "vec3<f32>"),
		program.RequireInput(SlotColor, "vec4<f32>"),
		program.RequireInput(SlotNormal, "vec3<f32>"),
		program.RequireUniform(0, 0),
		program.RequireUniform(0, 1),
	)
	if err != nil {
		return nil, err
	}
	return program, nil
}
