package kinematics

import "github.com/Carmen-Shannon/taganka/common"

// Default wheel geometry.
const (
	DefaultTireRadius   = 0.51
	DefaultWheelBase    = 4.0
	DefaultSteeringRate = 1.0 / 15.0
)

// WheelState is a point-in-time snapshot of the simulator, safe to hand to other goroutines.
type WheelState struct {
	FrontPosition common.Vector3 `json:"frontPosition"`
	RearPosition  common.Vector3 `json:"rearPosition"`

	// Movement is the front wheel's displacement during the last step.
	Movement common.Vector3 `json:"movement"`

	// FrontSpin and RearSpin are rolling angles in degrees, in [0, 360).
	FrontSpin float64 `json:"frontSpin"`
	RearSpin  float64 `json:"rearSpin"`

	// Steering is the accumulated steering angle in radians.
	Steering float64 `json:"steering"`

	// Heading is the signed angle in radians from the forward axis to the rear-to-front direction.
	Heading float64 `json:"heading"`

	// Distance is the total arc length travelled by the front wheel.
	Distance float64 `json:"distance"`
}

// Readouts are the values shown to the user every frame.
type Readouts struct {
	HeadingDegrees    float64        `json:"headingDegrees"`
	MovementMagnitude float64        `json:"movementMagnitude"`
	FrontPosition     common.Vector3 `json:"frontPosition"`
}
