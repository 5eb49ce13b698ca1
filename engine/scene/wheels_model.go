package scene

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/taganka/common"
	"github.com/Carmen-Shannon/taganka/engine/kinematics"
	"github.com/Carmen-Shannon/taganka/engine/model"
)

// DefaultMount is where the wheel pair is anchored in the scene.
var DefaultMount = common.Vector3{X: 5, Y: 1, Z: 15}

// wheelsModel is the implementation of the WheelsModel interface.
type wheelsModel struct {
	model     model.Model
	simulator kinematics.Simulator
	mount     common.Vector3
}

// WheelsModel draws one wheel mesh twice, as the front and rear wheel of the kinematics simulator.
// The simulator advances exactly once per Render call.
type WheelsModel interface {
	model.AssetModel

	// Model returns the shared model that holds the wheel geometry.
	//
	// Returns:
	//   - model.Model: the underlying model
	Model() model.Model

	// Simulator returns the kinematics driving the wheels.
	//
	// Returns:
	//   - kinematics.Simulator: the simulator
	Simulator() kinematics.Simulator

	// Readouts returns the simulator's display values.
	//
	// Returns:
	//   - kinematics.Readouts: heading, movement magnitude and front position
	Readouts() kinematics.Readouts
}

var _ WheelsModel = &wheelsModel{}

// NewWheelsModel creates a WheelsModel drawing base's geometry for both wheels.
//
// Parameters:
//   - base: the model holding the wheel asset
//   - options: a variadic list of WheelsModelBuilderOption functions to configure the WheelsModel
//
// Returns:
//   - WheelsModel: the configured wheels model
func NewWheelsModel(base model.Model, options ...WheelsModelBuilderOption) WheelsModel {
	w := &wheelsModel{
		model: base,
		mount: DefaultMount,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.simulator == nil {
		w.simulator = kinematics.NewSimulator()
	}
	return w
}

func (w *wheelsModel) Model() model.Model {
	return w.model
}

func (w *wheelsModel) Simulator() kinematics.Simulator {
	return w.simulator
}

func (w *wheelsModel) Readouts() kinematics.Readouts {
	return w.simulator.Readouts()
}

func (w *wheelsModel) Load(ctx context.Context) error {
	return w.model.Load(ctx)
}

// Render steps the simulator, then draws the front wheel with
// view × mount × frontTranslation × steering × spin and the rear wheel with
// view × mount × rearTranslation × heading × spin. The shared model appends the node rotation.
func (w *wheelsModel) Render(options model.RenderOptions) error {
	if !w.model.Loaded() {
		return fmt.Errorf("cannot render wheels %q: %w", w.model.Name(), common.ErrNotLoaded)
	}

	view := options.View
	if view == nil {
		view = common.NewMatrix4()
	}

	w.simulator.Step(options.DeltaTime)

	mounted := view.Copy().Translate(w.mount.X, w.mount.Y, w.mount.Z)

	front := mounted.Copy().
		MultiplyRight(w.simulator.FrontTranslation()).
		MultiplyRight(w.simulator.FrontOrientation())
	if err := w.model.RenderPrimitives(front); err != nil {
		return fmt.Errorf("front wheel: %w", err)
	}

	rear := mounted.
		MultiplyRight(w.simulator.RearTranslation()).
		MultiplyRight(w.simulator.RearOrientation())
	if err := w.model.RenderPrimitives(rear); err != nil {
		return fmt.Errorf("rear wheel: %w", err)
	}
	return nil
}
