package kinematics

import (
	"math"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/taganka/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func distance(a, b common.Vector3) float64 {
	return a.Copy().Subtract(&b).Magnitude()
}

func TestDefaults(t *testing.T) {
	s := NewSimulator()
	st := s.State()

	assert.Equal(t, common.Vector3{X: 7, Y: 0, Z: 10}, st.FrontPosition)
	assert.Equal(t, common.Vector3{X: 3, Y: 0, Z: 10}, st.RearPosition)
	assert.Zero(t, st.FrontSpin)
	assert.Zero(t, st.Heading)
	assert.Zero(t, s.MovementMagnitude())
}

func TestStraightLineKeepsWheelBaseRigid(t *testing.T) {
	for _, dt := range []float64{0.5, 1, 7.25, 36, 90, 359} {
		s := NewSimulator(WithSteeringRate(0))
		before := s.State()

		s.Step(dt)
		after := s.State()

		d := 2 * math.Pi * DefaultTireRadius * dt / 360
		assert.InDelta(t, before.FrontPosition.X+d, after.FrontPosition.X, eps, "dt=%v", dt)
		assert.InDelta(t, before.RearPosition.X+d, after.RearPosition.X, eps, "dt=%v", dt)
		assert.InDelta(t, before.RearPosition.Z, after.RearPosition.Z, eps, "dt=%v", dt)
		assert.InDelta(t, DefaultWheelBase, distance(after.FrontPosition, after.RearPosition), eps, "dt=%v", dt)
		assert.InDelta(t, after.FrontSpin, after.RearSpin, 1e-6, "no-slip rolling matches spins, dt=%v", dt)
		assert.InDelta(t, 0, s.HeadingDegrees(), eps)
	}
}

func TestFrontSpinWrapsAfterFullRevolution(t *testing.T) {
	s := NewSimulator()
	for i := 0; i < 10; i++ {
		s.Step(36)
	}

	st := s.State()
	assert.Equal(t, 0.0, st.FrontSpin)
	assert.InDelta(t, 2*math.Pi*DefaultTireRadius, st.Distance, eps)
	assert.InDelta(t, 10.0*36*DefaultSteeringRate, st.Steering, eps)
}

func TestHeadingSign(t *testing.T) {
	left := NewSimulator(WithSteeringRate(1.0 / 15))
	right := NewSimulator(WithSteeringRate(-1.0 / 15))
	for i := 0; i < 5; i++ {
		left.Step(10)
		right.Step(10)
	}

	assert.Greater(t, left.HeadingDegrees(), 0.0)
	assert.Less(t, right.HeadingDegrees(), 0.0)
	assert.InDelta(t, left.HeadingDegrees(), -right.HeadingDegrees(), 1e-9)

	// Turning left about +y carries the front wheel towards -z.
	assert.Less(t, left.FrontPosition().Z, 10.0)
	assert.Greater(t, right.FrontPosition().Z, 10.0)
}

func TestWheelBaseHeldWhileTurning(t *testing.T) {
	s := NewSimulator()
	for i := 0; i < 200; i++ {
		s.Step(3)
		st := s.State()
		// The rear is pulled along the segment, restoring the wheelbase every step.
		assert.InDelta(t, DefaultWheelBase, distance(st.FrontPosition, st.RearPosition), 1e-9)
	}
}

func TestZeroDeltaTimeIsNoMotion(t *testing.T) {
	s := NewSimulator()
	s.Step(12)
	before := s.State()

	s.Step(0)
	after := s.State()

	assert.Equal(t, before.FrontPosition, after.FrontPosition)
	assert.True(t, before.RearPosition.Equal(&after.RearPosition, eps))
	assert.Equal(t, before.FrontSpin, after.FrontSpin)
	assert.InDelta(t, before.Heading, after.Heading, eps)
	assert.Zero(t, s.MovementMagnitude())
}

func TestNegativeDeltaTimeReverses(t *testing.T) {
	s := NewSimulator(WithSteeringRate(0))
	start := s.State()

	s.Step(-36)
	st := s.State()
	assert.Less(t, st.FrontPosition.X, start.FrontPosition.X)
	assert.InDelta(t, 324, st.FrontSpin, eps)

	s.Step(36)
	st = s.State()
	assert.InDelta(t, start.FrontPosition.X, st.FrontPosition.X, eps)
	assert.InDelta(t, start.RearPosition.X, st.RearPosition.X, eps)
	assert.InDelta(t, 0, st.FrontSpin, eps)
}

// timeForArc returns the deltaTime that rolls the front wheel by arc.
func timeForArc(arc float64) float64 {
	return arc * 360 / (2 * math.Pi * DefaultTireRadius)
}

func TestReverseStepLimit(t *testing.T) {
	const w = DefaultWheelBase

	for _, d := range []float64{-1, -2, -3.5} {
		s := NewSimulator(WithSteeringRate(0))
		start := s.State()
		s.Step(timeForArc(d))
		st := s.State()
		assert.InDelta(t, d, st.FrontPosition.X-start.FrontPosition.X, 1e-9, "front d=%v", d)
		assert.InDelta(t, d, st.RearPosition.X-start.RearPosition.X, 1e-9, "rear d=%v", d)
		assert.InDelta(t, 0, s.HeadingDegrees(), 1e-9)
	}

	s := NewSimulator(WithSteeringRate(0))
	start := s.State()
	s.Step(timeForArc(-6))
	st := s.State()
	assert.InDelta(t, start.FrontPosition.X-6, st.FrontPosition.X, 1e-9)
	assert.InDelta(t, start.RearPosition.X+2, st.RearPosition.X, 1e-9, "rear flips ahead of the front")
	assert.InDelta(t, w, st.RearPosition.X-st.FrontPosition.X, 1e-9)
	assert.InDelta(t, 180, math.Abs(s.HeadingDegrees()), 1e-9)
}

func TestCoincidentWheelsKeepHeading(t *testing.T) {
	p := common.Vector3{X: 1, Y: 0, Z: 1}
	s := NewSimulator(WithStartPositions(p, p), WithSteeringRate(0))

	s.Step(0)
	st := s.State()
	assert.Equal(t, p, st.RearPosition)
	assert.Zero(t, st.Heading)
	assert.Zero(t, st.RearSpin)
}

func TestOrientationComposition(t *testing.T) {
	s := NewSimulator()
	s.Step(45)
	st := s.State()

	wantFront := common.NewMatrix4().
		RotateRadians(st.Steering, 0, 1, 0).
		Rotate(-st.FrontSpin, 0, 0, 1)
	assert.True(t, s.FrontOrientation().Equal(wantFront, 1e-12))

	wantRear := common.NewMatrix4().
		Rotate(s.HeadingDegrees(), 0, 1, 0).
		Rotate(-st.RearSpin, 0, 0, 1)
	assert.True(t, s.RearOrientation().Equal(wantRear, 1e-9))

	front := s.FrontTranslation()
	assert.InDelta(t, st.FrontPosition.X, front.At(0, 3), eps)
	assert.InDelta(t, st.FrontPosition.Z, front.At(2, 3), eps)
	rear := s.RearTranslation()
	assert.InDelta(t, st.RearPosition.X, rear.At(0, 3), eps)
}

func TestReadoutsAndReset(t *testing.T) {
	s := NewSimulator(WithTireRadius(1), WithWheelBase(2))
	s.Step(18)

	r := s.Readouts()
	assert.InDelta(t, s.HeadingDegrees(), r.HeadingDegrees, eps)
	assert.InDelta(t, 2*math.Pi*18/360, r.MovementMagnitude, eps)
	assert.Equal(t, s.FrontPosition(), r.FrontPosition)

	s.Reset()
	st := s.State()
	assert.Equal(t, common.Vector3{X: 6, Y: 0, Z: 10}, st.FrontPosition)
	assert.Equal(t, common.Vector3{X: 4, Y: 0, Z: 10}, st.RearPosition)
	assert.Zero(t, st.Distance)
}

func TestConcurrentReadsDuringSteps(t *testing.T) {
	s := NewSimulator()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = s.Readouts()
			_ = s.RearOrientation()
		}
	}()
	for i := 0; i < 500; i++ {
		s.Step(1)
	}
	wg.Wait()

	require.InDelta(t, 500.0*2*math.Pi*DefaultTireRadius/360, s.State().Distance, 1e-9)
}
