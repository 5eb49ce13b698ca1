package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/taganka/common"
)

// Default camera placement and lens.
var (
	DefaultEye    = common.Vector3{X: 30, Y: 20, Z: 50}
	DefaultCenter = common.Vector3{X: 0, Y: 0, Z: 5}
	DefaultUp     = common.Vector3{X: 0, Y: 1, Z: 0}
)

const (
	DefaultFov  = 45.0
	DefaultNear = 0.5
	DefaultFar  = 1000.0
)

type cameraImpl struct {
	mu sync.Mutex

	eye    common.Vector3
	center common.Vector3
	up     common.Vector3

	fov  float64
	near float64
	far  float64

	minDistance float64
	maxDistance float64
	rotateSpeed float64

	initial [3]common.Vector3
}

// Camera is a look-at camera driven by pointer deltas.
// All methods are safe to call from input callbacks while the frame loop reads the view matrix.
type Camera interface {
	// Eye returns the camera position.
	//
	// Returns:
	//   - common.Vector3: world-space eye position
	Eye() common.Vector3

	// Center returns the point the camera looks at.
	//
	// Returns:
	//   - common.Vector3: world-space look-at point
	Center() common.Vector3

	// Up returns the camera's up vector. Headings in the scene are measured about this axis.
	//
	// Returns:
	//   - common.Vector3: the up vector
	Up() common.Vector3

	// Fov returns the vertical field of view in degrees.
	Fov() float64

	// Near returns the near clipping plane distance.
	Near() float64

	// Far returns the far clipping plane distance.
	Far() float64

	// ViewMatrix builds the look-at view matrix for the current eye, center and up.
	//
	// Returns:
	//   - *common.Matrix4: a new view matrix
	ViewMatrix() *common.Matrix4

	// ProjectionMatrix builds the perspective projection for the camera lens.
	//
	// Parameters:
	//   - aspect: viewport width / height
	//
	// Returns:
	//   - *common.Matrix4: a new projection matrix
	ProjectionMatrix(aspect float64) *common.Matrix4

	// Move pans eye and center together across the view plane.
	// Positive dx moves the scene right, positive dy moves it down, matching a pointer drag.
	//
	// Parameters:
	//   - dx, dy: pan distance in world units
	Move(dx, dy float64)

	// Rotate orbits the eye about the center: dx turns about the up vector, dy tilts about
	// the camera's right vector. Tilts that would look straight along the up vector are ignored.
	//
	// Parameters:
	//   - dx, dy: rotation amount, scaled by the rotate speed into degrees
	Rotate(dx, dy float64)

	// Zoom moves the eye along the view direction. Positive delta moves closer.
	// The eye-to-center distance is clamped to the configured limits.
	//
	// Parameters:
	//   - delta: distance in world units
	Zoom(delta float64)

	// Reset restores the eye, center and up the camera was built with.
	Reset()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the provided options applied.
//
// Parameters:
//   - options: a variadic list of CameraBuilderOption functions to configure the Camera
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		eye:         DefaultEye,
		center:      DefaultCenter,
		up:          DefaultUp,
		fov:         DefaultFov,
		near:        DefaultNear,
		far:         DefaultFar,
		minDistance: 1,
		maxDistance: 500,
		rotateSpeed: 1,
	}
	for _, opt := range options {
		opt(c)
	}
	c.initial = [3]common.Vector3{c.eye, c.center, c.up}
	return c
}

func (c *cameraImpl) Eye() common.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Center() common.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center
}

func (c *cameraImpl) Up() common.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float64  { return c.fov }
func (c *cameraImpl) Near() float64 { return c.near }
func (c *cameraImpl) Far() float64  { return c.far }

func (c *cameraImpl) ViewMatrix() *common.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.NewMatrix4().LookAt(&c.eye, &c.center, &c.up)
}

func (c *cameraImpl) ProjectionMatrix(aspect float64) *common.Matrix4 {
	return common.NewMatrix4().Perspective(c.fov, aspect, c.near, c.far)
}

// localAxes returns the camera's backward (eye - center) and right vectors, both unit length,
// consistent with the LookAt basis. ok is false when eye and center coincide or the view
// direction is parallel to up. Caller must hold the mutex.
func (c *cameraImpl) localAxes() (back, right, up *common.Vector3, ok bool) {
	back, err := c.eye.Copy().Subtract(&c.center).Normalize()
	if err != nil {
		return nil, nil, nil, false
	}
	right, err = c.up.Cross(back).Normalize()
	if err != nil {
		return nil, nil, nil, false
	}
	return back, right, back.Cross(right), true
}

func (c *cameraImpl) Move(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, right, up, ok := c.localAxes()
	if !ok {
		return
	}
	shift := right.Scale(-dx).Add(up.Scale(dy))
	c.eye.Add(shift)
	c.center.Add(shift)
}

func (c *cameraImpl) Rotate(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	offset := c.eye.Copy().Subtract(&c.center)
	offset.Transform(common.NewMatrix4().Rotate(-dx*c.rotateSpeed, c.up.X, c.up.Y, c.up.Z))
	c.eye = *c.center.Copy().Add(offset)

	_, right, _, ok := c.localAxes()
	if !ok {
		return
	}
	tilted := offset.Copy().Transform(common.NewMatrix4().Rotate(-dy*c.rotateSpeed, right.X, right.Y, right.Z))

	// Refuse tilts that reach or cross the pole: the eye must stay on the same side of the up axis.
	upUnit, err := c.up.Copy().Normalize()
	if err != nil {
		return
	}
	dir, err := tilted.Copy().Normalize()
	if err != nil || math.Abs(dir.Dot(upUnit)) > 0.999 {
		return
	}
	flat := func(v *common.Vector3) *common.Vector3 {
		return v.Copy().Subtract(upUnit.Copy().Scale(v.Dot(upUnit)))
	}
	if flat(offset).Dot(flat(tilted)) <= 0 {
		return
	}
	c.eye = *c.center.Copy().Add(tilted)
}

func (c *cameraImpl) Zoom(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	back, _, _, ok := c.localAxes()
	if !ok {
		return
	}
	distance := c.eye.Copy().Subtract(&c.center).Magnitude() - delta
	distance = math.Max(c.minDistance, math.Min(c.maxDistance, distance))
	c.eye = *c.center.Copy().Add(back.Scale(distance))
}

func (c *cameraImpl) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye, c.center, c.up = c.initial[0], c.initial[1], c.initial[2]
}
