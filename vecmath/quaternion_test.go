package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuaternion_Mul(t *testing.T) {
	tests := []struct {
		a, b     *Quaternion
		expected *Quaternion
	}{
		{
			a:        Identity(),
			b:        NewQuaternion(0.5, 0.1, 0.2, 0.3),
			expected: NewQuaternion(0.5, 0.1, 0.2, 0.3),
		},
		{
			a:        NewQuaternion(1, 0, 0, 0),
			b:        NewQuaternion(1, 0, 0, 0),
			expected: NewQuaternion(1, 0, 0, 0),
		},
		{
			// i*i == -1
			a:        NewQuaternion(0, 1, 0, 0),
			b:        NewQuaternion(0, 1, 0, 0),
			expected: NewQuaternion(-1, 0, 0, 0),
		},
		{
			// i*j == k
			a:        NewQuaternion(0, 1, 0, 0),
			b:        NewQuaternion(0, 0, 1, 0),
			expected: NewQuaternion(0, 0, 0, 1),
		},
	}

	for _, tc := range tests {
		got := tc.a.Clone().Mul(tc.b)
		assert.InDelta(t, tc.expected.W, got.W, 1e-12)
		assert.InDelta(t, tc.expected.X, got.X, 1e-12)
		assert.InDelta(t, tc.expected.Y, got.Y, 1e-12)
		assert.InDelta(t, tc.expected.Z, got.Z, 1e-12)
	}
}

func TestQuaternion_ImagCross(t *testing.T) {
	x := NewVector(1, 0, 0)
	y := NewVector(0, 1, 0)

	z := x.ImagCross(y)
	assert.InDelta(t, 0, z.W, 1e-12)
	assert.InDelta(t, 0, z.X, 1e-12)
	assert.InDelta(t, 0, z.Y, 1e-12)
	assert.InDelta(t, 1, z.Z, 1e-12)
}

func TestQuaternion_ImagDot(t *testing.T) {
	a := NewVector(1, 2, 3)
	b := NewVector(4, -5, 6)
	assert.InDelta(t, 1*4+2*-5+3*6, a.ImagDot(b), 1e-12)
}

func TestQuaternion_Normalize(t *testing.T) {
	q := NewQuaternion(2, 0, 0, 0)
	q.Normalize()
	assert.InDelta(t, 1, q.Norm(), 1e-12)

	// A singular quaternion normalizes to identity instead of NaN.
	zero := NewQuaternion(0, 0, 0, 0)
	zero.Normalize()
	assert.True(t, zero.Equals(Identity()))
}

func TestQuaternion_NormalizeToLength(t *testing.T) {
	v := NewVector(3, 0, 4)
	v.NormalizeToLength(10)
	assert.InDelta(t, 10, v.ImagNorm(), 1e-12)
}
