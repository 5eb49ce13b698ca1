package kinematics

import "github.com/Carmen-Shannon/taganka/common"

// SimulatorBuilderOption is a functional option for configuring a Simulator via NewSimulator.
type SimulatorBuilderOption func(*simulator)

// WithTireRadius is an option builder that sets the tire radius shared by both wheels.
//
// Parameters:
//   - radius: the tire radius in world units
//
// Returns:
//   - SimulatorBuilderOption: a function that applies the tire radius option to a simulator
func WithTireRadius(radius float64) SimulatorBuilderOption {
	return func(s *simulator) {
		s.tireRadius = radius
	}
}

// WithWheelBase is an option builder that sets the rigid front-to-rear distance.
// Start positions that were not set explicitly are re-centred on the new wheelbase.
//
// Parameters:
//   - wheelBase: the wheelbase in world units
//
// Returns:
//   - SimulatorBuilderOption: a function that applies the wheelbase option to a simulator
func WithWheelBase(wheelBase float64) SimulatorBuilderOption {
	return func(s *simulator) {
		s.wheelBase = wheelBase
	}
}

// WithSteeringRate is an option builder that sets the radians of steering added per unit of time.
// A rate of zero drives in a straight line.
func WithSteeringRate(rate float64) SimulatorBuilderOption {
	return func(s *simulator) {
		s.steeringRate = rate
	}
}

// WithStartPositions is an option builder that places the wheels explicitly.
//
// Parameters:
//   - front: the front wheel's starting position
//   - rear: the rear wheel's starting position
//
// Returns:
//   - SimulatorBuilderOption: a function that applies the start positions to a simulator
func WithStartPositions(front, rear common.Vector3) SimulatorBuilderOption {
	return func(s *simulator) {
		s.startFront = &front
		s.startRear = &rear
	}
}

// WithUp is an option builder that sets the axis headings are measured about.
func WithUp(up common.Vector3) SimulatorBuilderOption {
	return func(s *simulator) {
		s.up = up
	}
}
