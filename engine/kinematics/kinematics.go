// Package kinematics simulates a two-wheel rigid body: a steered front wheel that drives forward
// and a rear wheel that trails it at a fixed wheelbase.
package kinematics

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/taganka/common"
)

// simulator is the implementation of the Simulator interface.
type simulator struct {
	mu sync.RWMutex

	tireRadius   float64
	wheelBase    float64
	steeringRate float64
	up           common.Vector3
	startFront   *common.Vector3
	startRear    *common.Vector3

	steering  *common.Matrix4
	front     *common.Vector3
	rear      *common.Vector3
	movement  *common.Vector3
	frontSpin float64
	rearSpin  float64
	steerAcc  float64
	heading   float64
	distance  float64
}

// Simulator advances both wheels once per rendered frame.
// Step mutates state and must be called from a single goroutine; the read methods may be
// called concurrently with it.
type Simulator interface {
	// Step advances the simulation by deltaTime. One unit of time steers by SteeringRate radians,
	// spins the front wheel by one degree and rolls it 2π·radius/360 forward.
	// Zero produces no motion; negative values run the motion backwards.
	//
	// The rear wheel only follows the front along the rear-to-front line, so for a straight
	// displacement d it moves by exactly d while the front stays ahead of it: any forward step,
	// and reverse steps with |d| < WheelBase. A reverse step of exactly WheelBase lands the front
	// on the rear, which then stays put. A longer reverse step carries the front past the rear and
	// the pair flips: the rear is placed WheelBase beyond the front and the heading turns by 180°.
	//
	// Parameters:
	//   - deltaTime: elapsed simulation time since the previous step
	Step(deltaTime float64)

	// Reset returns both wheels to their start positions with zero spin, steering and heading.
	Reset()

	// FrontTranslation returns the translation matrix of the front wheel position.
	//
	// Returns:
	//   - *common.Matrix4: a new translation matrix
	FrontTranslation() *common.Matrix4

	// FrontOrientation returns steering × Rz(−frontSpin).
	//
	// Returns:
	//   - *common.Matrix4: a new orientation matrix
	FrontOrientation() *common.Matrix4

	// RearTranslation returns the translation matrix of the rear wheel position.
	//
	// Returns:
	//   - *common.Matrix4: a new translation matrix
	RearTranslation() *common.Matrix4

	// RearOrientation returns Ry(heading) × Rz(−rearSpin), so the rear wheel spins about its own
	// rolling axis after it has been turned to face the front wheel.
	//
	// Returns:
	//   - *common.Matrix4: a new orientation matrix
	RearOrientation() *common.Matrix4

	// HeadingDegrees returns the signed rear heading in degrees.
	HeadingDegrees() float64

	// MovementMagnitude returns the length of the front wheel's last displacement.
	MovementMagnitude() float64

	// FrontPosition returns a copy of the front wheel position.
	FrontPosition() common.Vector3

	// Readouts returns heading, movement magnitude and front position together.
	Readouts() Readouts

	// State returns a snapshot of the full simulator state.
	State() WheelState
}

var _ Simulator = &simulator{}

// NewSimulator creates a new Simulator with the provided options applied.
// The wheels start side by side along the x axis, centred on (5, 0, 10).
//
// Parameters:
//   - options: a variadic list of SimulatorBuilderOption functions to configure the Simulator
//
// Returns:
//   - Simulator: the configured simulator
func NewSimulator(options ...SimulatorBuilderOption) Simulator {
	s := &simulator{
		tireRadius:   DefaultTireRadius,
		wheelBase:    DefaultWheelBase,
		steeringRate: DefaultSteeringRate,
		up:           common.Vector3{X: 0, Y: 1, Z: 0},
	}
	for _, opt := range options {
		opt(s)
	}
	s.Reset()
	return s
}

func (s *simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.startFront != nil {
		s.front = s.startFront.Copy()
	} else {
		s.front = common.NewVector3(s.wheelBase/2+5, 0, 10)
	}
	if s.startRear != nil {
		s.rear = s.startRear.Copy()
	} else {
		s.rear = common.NewVector3(-s.wheelBase/2+5, 0, 10)
	}

	s.steering = common.NewMatrix4()
	s.movement = common.NewVector3(0, 0, 0)
	s.frontSpin, s.rearSpin = 0, 0
	s.steerAcc, s.heading, s.distance = 0, 0, 0
}

func (s *simulator) Step(deltaTime float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stepFront(deltaTime)
	s.stepRear()
}

func (s *simulator) stepFront(deltaTime float64) {
	s.frontSpin = wrapDegrees(s.frontSpin + deltaTime)

	angle := deltaTime * s.steeringRate
	s.steering.RotateRadians(angle, 0, 1, 0)
	s.steerAcc += angle

	arc := 2 * math.Pi * s.tireRadius * (deltaTime / 360)
	s.movement = common.NewVector3(1, 0, 0).Transform(s.steering).Scale(arc)
	s.front.Add(s.movement)
	s.distance += math.Abs(arc)
}

// stepRear pulls the rear wheel along the rear-to-front line until the wheelbase is restored.
// A degenerate zero-length segment leaves the rear wheel and heading where they are.
func (s *simulator) stepRear() {
	segment := s.front.Copy().Subtract(s.rear)
	length := segment.Magnitude()
	direction, err := segment.Normalize()
	if err != nil {
		return
	}

	excess := length - s.wheelBase
	s.rear.Add(direction.Scale(excess))
	s.rearSpin = wrapDegrees(s.rearSpin + excess*360/(2*math.Pi*s.tireRadius))

	facing, err := s.front.Copy().Subtract(s.rear).Normalize()
	if err != nil {
		return
	}
	s.heading = facing.AngleBetween(common.NewVector3(1, 0, 0), &s.up)
}

// wrapDegrees maps an angle into [0, 360).
func wrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func (s *simulator) FrontTranslation() *common.Matrix4 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return common.NewMatrix4().Translate(s.front.X, s.front.Y, s.front.Z)
}

func (s *simulator) FrontOrientation() *common.Matrix4 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.steering.Copy().Rotate(-s.frontSpin, 0, 0, 1)
}

func (s *simulator) RearTranslation() *common.Matrix4 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return common.NewMatrix4().Translate(s.rear.X, s.rear.Y, s.rear.Z)
}

func (s *simulator) RearOrientation() *common.Matrix4 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return common.NewMatrix4().
		RotateRadians(s.heading, 0, 1, 0).
		Rotate(-s.rearSpin, 0, 0, 1)
}

func (s *simulator) HeadingDegrees() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.heading * 180 / math.Pi
}

func (s *simulator) MovementMagnitude() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.movement.Magnitude()
}

func (s *simulator) FrontPosition() common.Vector3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.front
}

func (s *simulator) Readouts() Readouts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Readouts{
		HeadingDegrees:    s.heading * 180 / math.Pi,
		MovementMagnitude: s.movement.Magnitude(),
		FrontPosition:     *s.front,
	}
}

func (s *simulator) State() WheelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return WheelState{
		FrontPosition: *s.front,
		RearPosition:  *s.rear,
		Movement:      *s.movement,
		FrontSpin:     s.frontSpin,
		RearSpin:      s.rearSpin,
		Steering:      s.steerAcc,
		Heading:       s.heading,
		Distance:      s.distance,
	}
}
