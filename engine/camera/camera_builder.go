package camera

import "github.com/Carmen-Shannon/taganka/common"

type CameraBuilderOption func(*cameraImpl)

// WithEye sets the camera position.
//
// Parameters:
//   - eye: world-space eye position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's eye
func WithEye(eye common.Vector3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.eye = eye
	}
}

// WithCenter sets the point the camera looks at.
//
// Parameters:
//   - center: world-space look-at point
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's center
func WithCenter(center common.Vector3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.center = center
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - up: the up vector
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(up common.Vector3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithFov sets the vertical field of view in degrees.
func WithFov(fov float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clip planes
func WithClipPlanes(near, far float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithDistanceLimits bounds how close and how far Zoom may bring the eye to the center.
func WithDistanceLimits(minDistance, maxDistance float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.minDistance = minDistance
		c.maxDistance = maxDistance
	}
}

// WithRotateSpeed sets how many degrees one unit of Rotate input turns the camera.
func WithRotateSpeed(speed float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.rotateSpeed = speed
	}
}
