package common

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector3InPlaceArithmetic(t *testing.T) {
	v := NewVector3(1, 2, 3)
	assert.Same(t, v, v.Add(NewVector3(1, 1, 1)))
	assert.Equal(t, Vector3{2, 3, 4}, *v)

	v.Subtract(NewVector3(2, 3, 4))
	assert.Equal(t, Vector3{0, 0, 0}, *v)

	v.Set(NewVector3(1, -2, 0.5)).Scale(2)
	assert.Equal(t, Vector3{2, -4, 1}, *v)
}

func TestVector3Magnitude(t *testing.T) {
	assert.InDelta(t, 5, NewVector3(3, 4, 0).Magnitude(), eps)
}

func TestVector3Normalize(t *testing.T) {
	v, err := NewVector3(0, 3, 4).Normalize()
	require.NoError(t, err)
	assert.InDelta(t, 1, v.Magnitude(), eps)
	assert.True(t, v.Equal(NewVector3(0, 0.6, 0.8), eps))
}

func TestVector3NormalizeZeroLength(t *testing.T) {
	v := NewVector3(0, 0, 0)
	got, err := v.Normalize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrZeroLength))
	assert.True(t, errors.Is(err, ErrNumericDomain))
	assert.Same(t, v, got)
	assert.Equal(t, Vector3{}, *v)
}

func TestVector3CrossDot(t *testing.T) {
	x := NewVector3(1, 0, 0)
	y := NewVector3(0, 1, 0)
	assert.Equal(t, Vector3{0, 0, 1}, *x.Cross(y))
	assert.Equal(t, 0.0, x.Dot(y))
	assert.Equal(t, Vector3{1, 0, 0}, *x, "cross must not mutate")
}

func TestVector3Transform(t *testing.T) {
	m := NewMatrix4().Translate(1, 2, 3).Rotate(90, 0, 1, 0)
	v := NewVector3(1, 0, 0).Transform(m)
	assert.True(t, v.Equal(NewVector3(1, 2, 2), eps), "got %+v", v)
}

func TestAngleBetweenSignSymmetry(t *testing.T) {
	up := NewVector3(0, 1, 0)
	ref := NewVector3(1, 0, 0)

	for _, theta := range []float64{0.1, 0.5, 1, math.Pi / 2, 2.5} {
		pos := ref.Copy().Transform(NewMatrix4().RotateRadians(theta, 0, 1, 0))
		neg := ref.Copy().Transform(NewMatrix4().RotateRadians(-theta, 0, 1, 0))

		assert.InDelta(t, theta, pos.AngleBetween(ref, up), 1e-12, "theta %v", theta)
		assert.InDelta(t, -theta, neg.AngleBetween(ref, up), 1e-12, "theta %v", theta)
	}
}

func TestAngleBetweenIgnoresMagnitudes(t *testing.T) {
	v := NewVector3(0, 0, -7)
	a := v.AngleBetween(NewVector3(3, 0, 0), NewVector3(0, 5, 0))
	assert.InDelta(t, math.Pi/2, a, 1e-12)
}

func TestAngleBetweenZeroAxisIsUnsigned(t *testing.T) {
	v := NewVector3(0, 0, 1)
	assert.InDelta(t, math.Pi/2, v.AngleBetween(NewVector3(1, 0, 0), NewVector3(0, 0, 0)), 1e-12)
}
