package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Matrix4 is a 4x4 transform stored in column-major order (OpenGL/WebGPU convention).
// Every mutating method composes in place and returns the receiver so calls can be chained:
//
//	mv := common.NewMatrix4().Translate(5, 1, 15).Rotate(90, 0, 1, 0)
//
// Composition is always right-multiplication, so later calls in a chain apply closer to the object.
type Matrix4 struct {
	m mgl64.Mat4
}

// NewMatrix4 creates a new identity matrix.
//
// Returns:
//   - *Matrix4: the identity matrix
func NewMatrix4() *Matrix4 {
	return &Matrix4{m: mgl64.Ident4()}
}

// Matrix4FromArray creates a matrix from 16 column-major values.
//
// Parameters:
//   - values: the column-major matrix elements
//
// Returns:
//   - *Matrix4: the new matrix
func Matrix4FromArray(values [16]float64) *Matrix4 {
	return &Matrix4{m: mgl64.Mat4(values)}
}

// Copy returns an independent copy of the matrix.
//
// Returns:
//   - *Matrix4: the copy
func (m *Matrix4) Copy() *Matrix4 {
	return &Matrix4{m: m.m}
}

// Set overwrites the receiver with the values of other.
//
// Parameters:
//   - other: the matrix to copy from
//
// Returns:
//   - *Matrix4: the receiver
func (m *Matrix4) Set(other *Matrix4) *Matrix4 {
	m.m = other.m
	return m
}

// Identity resets the matrix to the identity matrix.
//
// Returns:
//   - *Matrix4: the receiver
func (m *Matrix4) Identity() *Matrix4 {
	m.m = mgl64.Ident4()
	return m
}

// MultiplyRight replaces the matrix with m × other.
//
// Parameters:
//   - other: the right-hand matrix
//
// Returns:
//   - *Matrix4: the receiver
func (m *Matrix4) MultiplyRight(other *Matrix4) *Matrix4 {
	m.m = m.m.Mul4(other.m)
	return m
}

// Translate right-multiplies a translation by (x, y, z).
//
// Parameters:
//   - x, y, z: the translation offsets
//
// Returns:
//   - *Matrix4: the receiver
func (m *Matrix4) Translate(x, y, z float64) *Matrix4 {
	m.m = m.m.Mul4(mgl64.Translate3D(x, y, z))
	return m
}

// Rotate right-multiplies a rotation of angleDegrees about the axis (ax, ay, az).
// The axis does not need to be normalized. A zero axis leaves the matrix unchanged.
//
// Parameters:
//   - angleDegrees: the rotation angle in degrees (counter-clockwise about the axis)
//   - ax, ay, az: the rotation axis
//
// Returns:
//   - *Matrix4: the receiver
func (m *Matrix4) Rotate(angleDegrees, ax, ay, az float64) *Matrix4 {
	return m.RotateRadians(mgl64.DegToRad(angleDegrees), ax, ay, az)
}

// RotateRadians right-multiplies a rotation of angle radians about the axis (ax, ay, az).
// A zero axis leaves the matrix unchanged.
//
// Parameters:
//   - angle: the rotation angle in radians
//   - ax, ay, az: the rotation axis
//
// Returns:
//   - *Matrix4: the receiver
func (m *Matrix4) RotateRadians(angle, ax, ay, az float64) *Matrix4 {
	axis := mgl64.Vec3{ax, ay, az}
	if axis.Len() == 0 {
		return m
	}
	m.m = m.m.Mul4(mgl64.HomogRotate3D(angle, axis.Normalize()))
	return m
}

// RotateWithQuaternion right-multiplies the rotation described by the quaternion (x, y, z, w).
// The quaternion is normalized first; a zero quaternion leaves the matrix unchanged.
//
// Parameters:
//   - x, y, z: the vector part of the quaternion
//   - w: the scalar part of the quaternion
//
// Returns:
//   - *Matrix4: the receiver
func (m *Matrix4) RotateWithQuaternion(x, y, z, w float64) *Matrix4 {
	q := mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}
	if q.Len() == 0 {
		return m
	}
	m.m = m.m.Mul4(q.Normalize().Mat4())
	return m
}

// Perspective overwrites the matrix with a perspective projection.
// Clip-space depth follows the OpenGL convention [-1, 1]; WebGPU devices remap it on upload.
//
// Parameters:
//   - fovYDegrees: vertical field of view in degrees
//   - aspect: viewport aspect ratio (width/height)
//   - zNear: near clip plane distance
//   - zFar: far clip plane distance
//
// Returns:
//   - *Matrix4: the receiver
func (m *Matrix4) Perspective(fovYDegrees, aspect, zNear, zFar float64) *Matrix4 {
	m.m = mgl64.Perspective(mgl64.DegToRad(fovYDegrees), aspect, zNear, zFar)
	return m
}

// LookAt overwrites the matrix with a right-handed view matrix.
//
// Parameters:
//   - eye: the camera position
//   - center: the point the camera looks at
//   - up: the camera up direction
//
// Returns:
//   - *Matrix4: the receiver
func (m *Matrix4) LookAt(eye, center, up *Vector3) *Matrix4 {
	m.m = mgl64.LookAtV(eye.vec(), center.vec(), up.vec())
	return m
}

// At returns the element at the given row and column.
func (m *Matrix4) At(row, col int) float64 {
	return m.m.At(row, col)
}

// Array returns the column-major elements.
func (m *Matrix4) Array() [16]float64 {
	return [16]float64(m.m)
}

// Float32 returns the column-major elements narrowed to float32 for uniform upload.
func (m *Matrix4) Float32() [16]float32 {
	var out [16]float32
	for i, v := range m.m {
		out[i] = float32(v)
	}
	return out
}

// Equal reports whether every element of m and other differs by at most eps.
func (m *Matrix4) Equal(other *Matrix4, eps float64) bool {
	for i := range m.m {
		if math.Abs(m.m[i]-other.m[i]) > eps {
			return false
		}
	}
	return true
}
