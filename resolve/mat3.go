// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolve

import "github.com/polyhull/rigid/vecmath"

// mat3 is a plain 3x3 matrix used for the local Coulomb-friction
// linear solve; the public math model (vecmath.Transform) only needs
// to expose its upper-left block here, via fromBlock.
type mat3 [3][3]float64

func identity3() mat3 {

	return mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// fromBlock extracts the upper-left 3x3 block of a Transform.
func fromBlock(t *vecmath.Transform) mat3 {

	return mat3{
		{t[0], t[4], t[8]},
		{t[1], t[5], t[9]},
		{t[2], t[6], t[10]},
	}
}

// skew3 returns the skew-symmetric (cross-product) matrix of v:
// skew(v)*x == v cross x.
func skew3(v *vecmath.Quaternion) mat3 {

	return mat3{
		{0, -v.Z, v.Y},
		{v.Z, 0, -v.X},
		{-v.Y, v.X, 0},
	}
}

func (m mat3) mul(o mat3) mat3 {

	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m[i][k] * o[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

func (m mat3) add(o mat3) mat3 {

	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] + o[i][j]
		}
	}
	return r
}

func (m mat3) scale(s float64) mat3 {

	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] * s
		}
	}
	return r
}

func (m mat3) transpose() mat3 {

	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[j][i] = m[i][j]
		}
	}
	return r
}

// apply returns m*v for a spatial vector v.
func (m mat3) apply(v *vecmath.Quaternion) *vecmath.Quaternion {

	return vecmath.NewVector(
		m[0][0]*v.X+m[0][1]*v.Y+m[0][2]*v.Z,
		m[1][0]*v.X+m[1][1]*v.Y+m[1][2]*v.Z,
		m[2][0]*v.X+m[2][1]*v.Y+m[2][2]*v.Z,
	)
}

// invert returns the matrix inverse of m via Cramer's rule. A
// singular m (determinant 0) inverts to the zero matrix.
func (m mat3) invert() mat3 {

	a, b, c := m[0][0], m[0][1], m[0][2]
	d, e, f := m[1][0], m[1][1], m[1][2]
	g, h, i := m[2][0], m[2][1], m[2][2]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if det == 0 {
		return mat3{}
	}
	invDet := 1 / det

	return mat3{
		{(e*i - f*h) * invDet, (c*h - b*i) * invDet, (b*f - c*e) * invDet},
		{(f*g - d*i) * invDet, (a*i - c*g) * invDet, (c*d - a*f) * invDet},
		{(d*h - e*g) * invDet, (b*g - a*h) * invDet, (a*e - b*d) * invDet},
	}
}
