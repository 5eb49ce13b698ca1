package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector3 is a mutable 3-component vector.
// Like Matrix4, mutating methods work in place and return the receiver for chaining.
type Vector3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// NewVector3 creates a new vector.
//
// Parameters:
//   - x, y, z: the vector components
//
// Returns:
//   - *Vector3: the new vector
func NewVector3(x, y, z float64) *Vector3 {
	return &Vector3{X: x, Y: y, Z: z}
}

func vectorFrom(v mgl64.Vec3) *Vector3 {
	return &Vector3{X: v[0], Y: v[1], Z: v[2]}
}

func (v *Vector3) vec() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func (v *Vector3) assign(o mgl64.Vec3) *Vector3 {
	v.X, v.Y, v.Z = o[0], o[1], o[2]
	return v
}

// Copy returns an independent copy of the vector.
func (v *Vector3) Copy() *Vector3 {
	return &Vector3{X: v.X, Y: v.Y, Z: v.Z}
}

// Set overwrites the receiver with the components of other.
func (v *Vector3) Set(other *Vector3) *Vector3 {
	v.X, v.Y, v.Z = other.X, other.Y, other.Z
	return v
}

// Add adds other to the vector in place.
func (v *Vector3) Add(other *Vector3) *Vector3 {
	return v.assign(v.vec().Add(other.vec()))
}

// Subtract subtracts other from the vector in place.
func (v *Vector3) Subtract(other *Vector3) *Vector3 {
	return v.assign(v.vec().Sub(other.vec()))
}

// Scale multiplies every component by s in place.
func (v *Vector3) Scale(s float64) *Vector3 {
	return v.assign(v.vec().Mul(s))
}

// Magnitude returns the Euclidean length of the vector.
func (v *Vector3) Magnitude() float64 {
	return v.vec().Len()
}

// Normalize scales the vector to unit length in place.
// A zero-length vector is left untouched and ErrZeroLength is returned.
//
// Returns:
//   - *Vector3: the receiver
//   - error: ErrZeroLength if the vector has no direction
func (v *Vector3) Normalize() (*Vector3, error) {
	length := v.Magnitude()
	if length == 0 {
		return v, ErrZeroLength
	}
	return v.Scale(1 / length), nil
}

// Transform applies m to the vector as a point (w = 1), so both rotation and translation take effect.
//
// Parameters:
//   - m: the transform to apply
//
// Returns:
//   - *Vector3: the receiver
func (v *Vector3) Transform(m *Matrix4) *Vector3 {
	return v.assign(m.m.Mul4x1(v.vec().Vec4(1)).Vec3())
}

// Dot returns the dot product of the vector and other.
func (v *Vector3) Dot(other *Vector3) float64 {
	return v.vec().Dot(other.vec())
}

// Cross returns a new vector holding v × other.
func (v *Vector3) Cross(other *Vector3) *Vector3 {
	return vectorFrom(v.vec().Cross(other.vec()))
}

// AngleBetween returns the signed angle in radians from reference to v, measured about axis using
// the right-hand rule. Rotating reference by +θ about axis yields +θ, by -θ yields -θ.
// The result lies in (-π, π]. A zero axis yields the unsigned angle.
//
// Parameters:
//   - reference: the vector the angle is measured from
//   - axis: the rotation axis defining the positive sense
//
// Returns:
//   - float64: the signed angle in radians
func (v *Vector3) AngleBetween(reference, axis *Vector3) float64 {
	cross := reference.vec().Cross(v.vec())
	dot := reference.vec().Dot(v.vec())

	n := axis.vec()
	if n.Len() == 0 {
		return math.Atan2(cross.Len(), dot)
	}
	return math.Atan2(n.Normalize().Dot(cross), dot)
}

// Equal reports whether every component of v and other differs by at most eps.
func (v *Vector3) Equal(other *Vector3, eps float64) bool {
	return math.Abs(v.X-other.X) <= eps &&
		math.Abs(v.Y-other.Y) <= eps &&
		math.Abs(v.Z-other.Z) <= eps
}
