package scene

import (
	"github.com/Carmen-Shannon/taganka/common"
	"github.com/Carmen-Shannon/taganka/engine/kinematics"
)

// WheelsModelBuilderOption is a functional option for configuring a WheelsModel via NewWheelsModel.
type WheelsModelBuilderOption func(*wheelsModel)

// WithSimulator is an option builder that sets the kinematics driving the wheels.
// When unset, a simulator with default wheel geometry is used.
//
// Parameters:
//   - simulator: the simulator instance
//
// Returns:
//   - WheelsModelBuilderOption: a function that applies the simulator option to a wheels model
func WithSimulator(simulator kinematics.Simulator) WheelsModelBuilderOption {
	return func(w *wheelsModel) {
		w.simulator = simulator
	}
}

// WithMount is an option builder that sets the scene-space anchor of the wheel pair.
func WithMount(mount common.Vector3) WheelsModelBuilderOption {
	return func(w *wheelsModel) {
		w.mount = mount
	}
}
