// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vecmath implements the real-quaternion and transform math
// primitives the rigid-body core is built on.
package vecmath

import "math"

// Quaternion is a real quaternion with scalar part W and imaginary
// part (X, Y, Z). A quaternion with W == 0 is a spatial vector: a
// plain 3-vector embedded in quaternion space so it can be added to
// and multiplied with orientations using the same algebra.
type Quaternion struct {
	W, X, Y, Z float64
}

// NewQuaternion creates and returns a pointer to a new quaternion
// from the specified components.
func NewQuaternion(w, x, y, z float64) *Quaternion {

	return &Quaternion{W: w, X: x, Y: y, Z: z}
}

// NewVector creates and returns a pointer to a new spatial vector
// (a pure-imaginary quaternion) from the specified components.
func NewVector(x, y, z float64) *Quaternion {

	return &Quaternion{X: x, Y: y, Z: z}
}

// Identity returns the multiplicative identity quaternion (1,0,0,0).
func Identity() *Quaternion {

	return &Quaternion{W: 1}
}

// Set sets this quaternion's components.
// Returns pointer to this updated quaternion.
func (q *Quaternion) Set(w, x, y, z float64) *Quaternion {

	q.W = w
	q.X = x
	q.Y = y
	q.Z = z
	return q
}

// SetIdentity sets this quaternion to the identity quaternion.
// Returns pointer to this updated quaternion.
func (q *Quaternion) SetIdentity() *Quaternion {

	q.W = 1
	q.X = 0
	q.Y = 0
	q.Z = 0
	return q
}

// Copy copies other into this quaternion.
// Returns pointer to this updated quaternion.
func (q *Quaternion) Copy(other *Quaternion) *Quaternion {

	*q = *other
	return q
}

// Clone returns a copy of this quaternion.
func (q *Quaternion) Clone() *Quaternion {

	c := *q
	return &c
}

// XYZ returns the imaginary part of this quaternion as three floats.
func (q *Quaternion) XYZ() (float64, float64, float64) {

	return q.X, q.Y, q.Z
}

// Add sets this quaternion to the sum of itself and other.
// Returns pointer to this updated quaternion.
func (q *Quaternion) Add(other *Quaternion) *Quaternion {

	q.W += other.W
	q.X += other.X
	q.Y += other.Y
	q.Z += other.Z
	return q
}

// AddQuaternions sets this quaternion to the sum of a and b.
// Returns pointer to this updated quaternion.
func (q *Quaternion) AddQuaternions(a, b *Quaternion) *Quaternion {

	q.W = a.W + b.W
	q.X = a.X + b.X
	q.Y = a.Y + b.Y
	q.Z = a.Z + b.Z
	return q
}

// Sub sets this quaternion to the difference of itself and other.
// Returns pointer to this updated quaternion.
func (q *Quaternion) Sub(other *Quaternion) *Quaternion {

	q.W -= other.W
	q.X -= other.X
	q.Y -= other.Y
	q.Z -= other.Z
	return q
}

// Scale sets this quaternion to itself scaled by s.
// Returns pointer to this updated quaternion.
func (q *Quaternion) Scale(s float64) *Quaternion {

	q.W *= s
	q.X *= s
	q.Y *= s
	q.Z *= s
	return q
}

// Negate sets this quaternion to its additive inverse.
// Returns pointer to this updated quaternion.
func (q *Quaternion) Negate() *Quaternion {

	return q.Scale(-1)
}

// Mul sets this quaternion to the Hamilton product of itself and other (q = q*other).
// Returns pointer to this updated quaternion.
func (q *Quaternion) Mul(other *Quaternion) *Quaternion {

	return q.MulQuaternions(q, other)
}

// MulQuaternions sets this quaternion to the Hamilton product of a and b (q = a*b).
// Returns pointer to this updated quaternion.
func (q *Quaternion) MulQuaternions(a, b *Quaternion) *Quaternion {

	aw, ax, ay, az := a.W, a.X, a.Y, a.Z
	bw, bx, by, bz := b.W, b.X, b.Y, b.Z

	q.W = aw*bw - ax*bx - ay*by - az*bz
	q.X = aw*bx + ax*bw + ay*bz - az*by
	q.Y = aw*by - ax*bz + ay*bw + az*bx
	q.Z = aw*bz + ax*by - ay*bx + az*bw
	return q
}

// Conjugate sets this quaternion to its conjugate (negates the imaginary part).
// Returns pointer to this updated quaternion.
func (q *Quaternion) Conjugate() *Quaternion {

	q.X = -q.X
	q.Y = -q.Y
	q.Z = -q.Z
	return q
}

// Hadamard sets this quaternion to the component-wise product of itself and other.
// Returns pointer to this updated quaternion.
func (q *Quaternion) Hadamard(other *Quaternion) *Quaternion {

	q.W *= other.W
	q.X *= other.X
	q.Y *= other.Y
	q.Z *= other.Z
	return q
}

// ImagCross returns a new pure-imaginary quaternion holding the cross
// product of the imaginary parts of q and other.
func (q *Quaternion) ImagCross(other *Quaternion) *Quaternion {

	return &Quaternion{
		X: q.Y*other.Z - q.Z*other.Y,
		Y: q.Z*other.X - q.X*other.Z,
		Z: q.X*other.Y - q.Y*other.X,
	}
}

// ImagDot returns the dot product of the imaginary parts of q and other.
func (q *Quaternion) ImagDot(other *Quaternion) float64 {

	return q.X*other.X + q.Y*other.Y + q.Z*other.Z
}

// ImagNorm returns the length of the imaginary part of q.
func (q *Quaternion) ImagNorm() float64 {

	return math.Sqrt(q.ImagDot(q))
}

// Norm returns the full length of this quaternion.
func (q *Quaternion) Norm() float64 {

	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize normalizes this quaternion to unit length. If the
// quaternion has zero norm it is set to the identity quaternion
// (a singular orientation cannot be normalized, so it defaults to
// "no rotation" rather than propagating a NaN).
// Returns pointer to this updated quaternion.
func (q *Quaternion) Normalize() *Quaternion {

	n := q.Norm()
	if n == 0 {
		return q.SetIdentity()
	}
	return q.Scale(1 / n)
}

// NormalizeToLength scales this quaternion's imaginary part so that it
// has the given length. A zero-length imaginary part is left unchanged.
// Returns pointer to this updated quaternion.
func (q *Quaternion) NormalizeToLength(length float64) *Quaternion {

	n := q.ImagNorm()
	if n == 0 {
		return q
	}
	s := length / n
	q.X *= s
	q.Y *= s
	q.Z *= s
	return q
}

// Equals returns whether this quaternion is equal to other.
func (q *Quaternion) Equals(other *Quaternion) bool {

	return q.W == other.W && q.X == other.X && q.Y == other.Y && q.Z == other.Z
}
