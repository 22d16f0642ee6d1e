// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vecmath

// Transform is a 4x4 matrix stored column-major: elements 4*i..4*i+3
// are column i. For a rigid body's world transform, column 3 is the
// body's position and columns 0..2 are its local basis axes expressed
// in world coordinates. Transform is also reused (with a zero
// translation column) to hold 3x3 tensors such as a body's inertia
// matrix, so that the similarity-transform operation below can serve
// both roles without a separate matrix type.
type Transform [16]float64

// NewTransform creates and returns a pointer to a new Transform
// initialized to the identity.
func NewTransform() *Transform {

	var t Transform
	t.Identity()
	return &t
}

// Set sets all sixteen elements of this transform row by row.
// Returns pointer to this updated transform.
func (t *Transform) Set(n11, n12, n13, n14, n21, n22, n23, n24, n31, n32, n33, n34, n41, n42, n43, n44 float64) *Transform {

	t[0], t[4], t[8], t[12] = n11, n12, n13, n14
	t[1], t[5], t[9], t[13] = n21, n22, n23, n24
	t[2], t[6], t[10], t[14] = n31, n32, n33, n34
	t[3], t[7], t[11], t[15] = n41, n42, n43, n44
	return t
}

// Identity sets this transform to the identity matrix.
// Returns pointer to this updated transform.
func (t *Transform) Identity() *Transform {

	return t.Set(
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	)
}

// Zero sets this transform to the zero matrix.
// Returns pointer to this updated transform.
func (t *Transform) Zero() *Transform {

	*t = Transform{}
	return t
}

// Copy copies src into this transform.
// Returns pointer to this updated transform.
func (t *Transform) Copy(src *Transform) *Transform {

	*t = *src
	return t
}

// Clone returns a copy of this transform.
func (t *Transform) Clone() *Transform {

	c := *t
	return &c
}

// Column returns column i (0..3) as a spatial vector. Columns 0-2 are
// the transform's local basis axes; column 3 is its translation.
func (t *Transform) Column(i int) *Quaternion {

	return NewVector(t[4*i], t[4*i+1], t[4*i+2])
}

// SetColumn sets column i (0..3) from the imaginary part of v.
// Returns pointer to this updated transform.
func (t *Transform) SetColumn(i int, v *Quaternion) *Transform {

	t[4*i], t[4*i+1], t[4*i+2] = v.X, v.Y, v.Z
	return t
}

// Skew sets this transform's upper-left 3x3 block to the
// skew-symmetric (cross-product) matrix of v: Skew(v)*x == v x ("v
// cross x") for any spatial vector x. The translation column and the
// bottom-right element are left as identity.
// Returns pointer to this updated transform.
func (t *Transform) Skew(v *Quaternion) *Transform {

	t.Identity()
	t[0], t[4], t[8] = 0, -v.Z, v.Y
	t[1], t[5], t[9] = v.Z, 0, -v.X
	t[2], t[6], t[10] = -v.Y, v.X, 0
	return t
}

// LeftMulMatrix sets this transform to the matrix L(q) such that, for
// any quaternion p viewed as the 4-vector (p.W, p.X, p.Y, p.Z),
// L(q)*p equals the Hamilton product q*p.
// Returns pointer to this updated transform.
func (t *Transform) LeftMulMatrix(q *Quaternion) *Transform {

	return t.Set(
		q.W, -q.X, -q.Y, -q.Z,
		q.X, q.W, -q.Z, q.Y,
		q.Y, q.Z, q.W, -q.X,
		q.Z, -q.Y, q.X, q.W,
	)
}

// RightMulMatrix sets this transform to the matrix R(q) such that, for
// any quaternion p viewed as the 4-vector (p.W, p.X, p.Y, p.Z),
// R(q)*p equals the Hamilton product p*q.
// Returns pointer to this updated transform.
func (t *Transform) RightMulMatrix(q *Quaternion) *Transform {

	return t.Set(
		q.W, -q.X, -q.Y, -q.Z,
		q.X, q.W, q.Z, -q.Y,
		q.Y, -q.Z, q.W, q.X,
		q.Z, q.Y, -q.X, q.W,
	)
}

// Shoemake builds this transform as the rigid transform with the
// given orientation quaternion (assumed unit) and translation vector:
// the classic Shoemake construction of a rotation matrix from a
// quaternion, with the translation placed in column 3.
// Returns pointer to this updated transform.
func (t *Transform) Shoemake(q *Quaternion, x *Quaternion) *Transform {

	w, xi, yi, zi := q.W, q.X, q.Y, q.Z
	x2, y2, z2 := xi+xi, yi+yi, zi+zi
	xx, xy, xz := xi*x2, xi*y2, xi*z2
	yy, yz, zz := yi*y2, yi*z2, zi*z2
	wx, wy, wz := w*x2, w*y2, w*z2

	t[0] = 1 - (yy + zz)
	t[1] = xy + wz
	t[2] = xz - wy
	t[3] = 0

	t[4] = xy - wz
	t[5] = 1 - (xx + zz)
	t[6] = yz + wx
	t[7] = 0

	t[8] = xz + wy
	t[9] = yz - wx
	t[10] = 1 - (xx + yy)
	t[11] = 0

	t[12] = x.X
	t[13] = x.Y
	t[14] = x.Z
	t[15] = 1

	return t
}

// Determinant returns the determinant of this transform's upper-left
// 3x3 rotational block.
func (t *Transform) Determinant() float64 {

	a, b, c := t[0], t[4], t[8]
	d, e, f := t[1], t[5], t[9]
	g, h, i := t[2], t[6], t[10]

	return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
}

// Inverse sets this transform to the inverse of src, treating src as
// a rigid transform [R|x; 0 0 0 1]: the inverse is [R^T | -R^T x; 0 0
// 0 1]. If the rotational block is singular (determinant 0) the
// inverse rotation is set to zero rather than propagating a division
// by zero -- a singular inertia/orientation is a misuse case the
// caller reports through the error sink, not a crash here.
// Returns pointer to this updated transform.
func (t *Transform) Inverse(src *Transform) *Transform {

	if src.Determinant() == 0 {
		return t.Zero()
	}

	// Transpose the rotational block.
	t[0], t[4], t[8] = src[0], src[1], src[2]
	t[1], t[5], t[9] = src[4], src[5], src[6]
	t[2], t[6], t[10] = src[8], src[9], src[10]
	t[3], t[7], t[11] = 0, 0, 0
	t[15] = 1

	pos := src.Column(3)
	inv := t.ApplyRotation(pos)
	t[12] = -inv.X
	t[13] = -inv.Y
	t[14] = -inv.Z
	return t
}

// Transpose sets this transform to the transpose of src.
// Returns pointer to this updated transform.
func (t *Transform) Transpose(src *Transform) *Transform {

	var r Transform
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			r[4*row+col] = src[4*col+row]
		}
	}
	*t = r
	return t
}

// Multiply sets this transform to the matrix product a*b.
// Returns pointer to this updated transform.
func (t *Transform) Multiply(a, b *Transform) *Transform {

	var r Transform
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += a[4*k+row] * b[4*col+k]
			}
			r[4*col+row] = sum
		}
	}
	*t = r
	return t
}

// ApplyRotation applies this transform's rotational block only to v,
// ignoring translation: result = R*v.
func (t *Transform) ApplyRotation(v *Quaternion) *Quaternion {

	return &Quaternion{
		X: t[0]*v.X + t[4]*v.Y + t[8]*v.Z,
		Y: t[1]*v.X + t[5]*v.Y + t[9]*v.Z,
		Z: t[2]*v.X + t[6]*v.Y + t[10]*v.Z,
	}
}

// Apply applies this transform (rotation and translation) to point v:
// result = R*v + x.
func (t *Transform) Apply(v *Quaternion) *Quaternion {

	r := t.ApplyRotation(v)
	r.X += t[12]
	r.Y += t[13]
	r.Z += t[14]
	return r
}

// ApplyInverse applies the inverse of this transform to point v,
// without materializing the inverse transform.
func (t *Transform) ApplyInverse(v *Quaternion) *Quaternion {

	var inv Transform
	inv.Inverse(t)
	return inv.Apply(v)
}

// RotationSimilarity returns the similarity transform of x by this
// transform's rotational block: R*x*R^T, where x is itself a
// Transform holding a 3x3 tensor in its upper-left block (such as a
// body's inertia tensor). This is how a body-frame tensor is carried
// into world frame: I_w = T.RotationSimilarity(I_b).
func (t *Transform) RotationSimilarity(x *Transform) *Transform {

	var rot, rotT, tmp, result Transform
	rot.extractRotation(t)
	rotT.Transpose(&rot)
	tmp.Multiply(&rot, x)
	result.Multiply(&tmp, &rotT)
	return &result
}

// InverseRotationSimilarity returns the inverse similarity transform
// R^T*x*R, carrying a world-frame tensor back into this transform's
// local frame.
func (t *Transform) InverseRotationSimilarity(x *Transform) *Transform {

	var rot, rotT, tmp, result Transform
	rot.extractRotation(t)
	rotT.Transpose(&rot)
	tmp.Multiply(&rotT, x)
	result.Multiply(&tmp, &rot)
	return &result
}

// extractRotation copies only the upper-left 3x3 rotational block of
// src into t, zeroing translation and setting the identity bottom row.
func (t *Transform) extractRotation(src *Transform) *Transform {

	t.Identity()
	t[0], t[1], t[2] = src[0], src[1], src[2]
	t[4], t[5], t[6] = src[4], src[5], src[6]
	t[8], t[9], t[10] = src[8], src[9], src[10]
	return t
}

// InvertBlock returns the matrix inverse of src's upper-left 3x3
// block, treated as a general (not necessarily rigid) tensor such as
// an inertia matrix, computed via Cramer's rule. A singular block
// (determinant 0) inverts to the zero tensor rather than propagating
// a division by zero.
// Returns pointer to this updated transform.
func (t *Transform) InvertBlock(src *Transform) *Transform {

	a, b, c := src[0], src[4], src[8]
	d, e, f := src[1], src[5], src[9]
	g, h, i := src[2], src[6], src[10]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	t.Zero()
	if det == 0 {
		return t
	}
	invDet := 1 / det

	t[0] = (e*i - f*h) * invDet
	t[1] = (f*g - d*i) * invDet
	t[2] = (d*h - e*g) * invDet
	t[4] = (c*h - b*i) * invDet
	t[5] = (a*i - c*g) * invDet
	t[6] = (b*g - a*h) * invDet
	t[8] = (b*f - c*e) * invDet
	t[9] = (c*d - a*f) * invDet
	t[10] = (a*e - b*d) * invDet
	t[15] = 1
	return t
}

// Diagonal builds this transform as a tensor with the given diagonal
// entries and a zero translation column -- the representation used
// for body-frame inertia tensors (and their inverses).
// Returns pointer to this updated transform.
func (t *Transform) Diagonal(xx, yy, zz float64) *Transform {

	t.Zero()
	t[0], t[5], t[10], t[15] = xx, yy, zz, 1
	return t
}
