package vecmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransform_ShoemakeIdentity(t *testing.T) {
	var tr Transform
	tr.Shoemake(Identity(), NewVector(1, 2, 3))

	assert.InDelta(t, 1, tr[12], 1e-12)
	assert.InDelta(t, 2, tr[13], 1e-12)
	assert.InDelta(t, 3, tr[14], 1e-12)

	col0 := tr.Column(0)
	assert.InDelta(t, 1, col0.X, 1e-12)
	assert.InDelta(t, 0, col0.Y, 1e-12)
	assert.InDelta(t, 0, col0.Z, 1e-12)
}

func TestTransform_RoundTrip(t *testing.T) {
	// A 90-degree rotation about Z: q = (cos45, 0, 0, sin45).
	half := math.Pi / 4
	q := NewQuaternion(math.Cos(half), 0, 0, math.Sin(half))

	var tr Transform
	tr.Shoemake(q, NewVector(5, -2, 1))

	v := NewVector(1, 0, 0)
	world := tr.Apply(v)
	back := tr.ApplyInverse(world)

	assert.InDelta(t, v.X, back.X, 1e-9)
	assert.InDelta(t, v.Y, back.Y, 1e-9)
	assert.InDelta(t, v.Z, back.Z, 1e-9)
}

func TestTransform_Skew(t *testing.T) {
	var skew Transform
	skew.Skew(NewVector(0, 0, 1))

	x := NewVector(1, 0, 0)
	result := skew.ApplyRotation(x)

	// (0,0,1) x (1,0,0) == (0,1,0)
	assert.InDelta(t, 0, result.X, 1e-12)
	assert.InDelta(t, 1, result.Y, 1e-12)
	assert.InDelta(t, 0, result.Z, 1e-12)
}

func TestTransform_RotationSimilarityDiagonalUnderIdentity(t *testing.T) {
	var tr Transform
	tr.Shoemake(Identity(), NewVector(0, 0, 0))

	var inertia Transform
	inertia.Diagonal(1, 2, 3)

	world := tr.RotationSimilarity(&inertia)
	assert.InDelta(t, 1, world[0], 1e-12)
	assert.InDelta(t, 2, world[5], 1e-12)
	assert.InDelta(t, 3, world[10], 1e-12)
}

func TestTransform_InverseSingular(t *testing.T) {
	var singular Transform // zero matrix, determinant 0
	var inv Transform
	inv.Inverse(&singular)
	assert.Equal(t, Transform{}, inv)
}

func TestTransform_SimilarityRoundTrip(t *testing.T) {
	half := math.Pi / 6
	q := NewQuaternion(math.Cos(half), 0, math.Sin(half), 0)

	var tr Transform
	tr.Shoemake(q, NewVector(0, 0, 0))

	var inertia Transform
	inertia.Diagonal(1, 2, 3)

	world := tr.RotationSimilarity(&inertia)
	back := tr.InverseRotationSimilarity(world)

	for i, want := range inertia {
		assert.InDelta(t, want, back[i], 1e-12)
	}
}

func TestTransform_QuaternionMulMatrices(t *testing.T) {
	q := NewQuaternion(0.5, -0.5, 0.5, 0.5)
	p := NewQuaternion(0.2, 0.4, -0.1, 0.3)

	applyMat4 := func(m *Transform, v *Quaternion) *Quaternion {
		return NewQuaternion(
			m[0]*v.W+m[4]*v.X+m[8]*v.Y+m[12]*v.Z,
			m[1]*v.W+m[5]*v.X+m[9]*v.Y+m[13]*v.Z,
			m[2]*v.W+m[6]*v.X+m[10]*v.Y+m[14]*v.Z,
			m[3]*v.W+m[7]*v.X+m[11]*v.Y+m[15]*v.Z,
		)
	}

	var left Transform
	left.LeftMulMatrix(q)
	gotLeft := applyMat4(&left, p)
	wantLeft := q.Clone().Mul(p)
	assert.InDelta(t, wantLeft.W, gotLeft.W, 1e-12)
	assert.InDelta(t, wantLeft.X, gotLeft.X, 1e-12)
	assert.InDelta(t, wantLeft.Y, gotLeft.Y, 1e-12)
	assert.InDelta(t, wantLeft.Z, gotLeft.Z, 1e-12)

	var right Transform
	right.RightMulMatrix(q)
	gotRight := applyMat4(&right, p)
	wantRight := p.Clone().Mul(q)
	assert.InDelta(t, wantRight.W, gotRight.W, 1e-12)
	assert.InDelta(t, wantRight.X, gotRight.X, 1e-12)
	assert.InDelta(t, wantRight.Y, gotRight.Y, 1e-12)
	assert.InDelta(t, wantRight.Z, gotRight.Z, 1e-12)
}
