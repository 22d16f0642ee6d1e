// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package collision implements the narrowphase detection pipeline: a
// fixed-capacity contact registry, a per-pair intersection test with
// contact-point synthesis for every supported geometry combination,
// and the per-contact derived quantities the resolvers consume.
package collision

import (
	"math"

	"github.com/polyhull/rigid/rigidbody"
	"github.com/polyhull/rigid/vecmath"
)

// restitutionGuard is the low-velocity cutoff below which restitution
// is treated as zero, so micro-collisions in resting contact do not
// inject energy.
const restitutionGuard = 0.25

// Contact is one point of contact between two geometries.
type Contact struct {
	BodyA *rigidbody.Body // never nil after normalization
	BodyB *rigidbody.Body // nil iff B is scenery

	Point     *vecmath.Quaternion // world contact point
	Normal    *vecmath.Quaternion // unit normal, the direction that separates A from B
	Depth     float64             // penetration depth, >=0 while unresolved
	Restitution float64
	Friction    float64

	// Derived by UpdateDerived.
	basis  *vecmath.Transform  // contact-to-world: column 0 is Normal
	rA, rB *vecmath.Quaternion // contact point relative to each center
	Vc     *vecmath.Quaternion // contact-frame relative velocity
	DvN    float64             // desired bouncing velocity along normal
}

// Basis returns this contact's contact-to-world basis transform.
func (c *Contact) Basis() *vecmath.Transform { return c.basis.Clone() }

// RA and RB return the contact point relative to each body's center.
func (c *Contact) RA() *vecmath.Quaternion {
	if c.rA == nil {
		return nil
	}
	return c.rA.Clone()
}
func (c *Contact) RB() *vecmath.Quaternion {
	if c.rB == nil {
		return nil
	}
	return c.rB.Clone()
}

// normalize ensures BodyA is non-nil, swapping and negating the
// normal if the detector initially wrote scenery into A.
func (c *Contact) normalize() {

	if c.BodyA == nil {
		c.BodyA, c.BodyB = c.BodyB, c.BodyA
		c.Normal.Negate()
	}
}

// UpdateDerived recomputes this contact's contact-to-world basis,
// relative positions, contact-frame velocity and bouncing velocity.
func (c *Contact) UpdateDerived(h float64) {

	c.normalize()

	n := c.Normal
	var uy, uz *vecmath.Quaternion
	if math.Abs(n.X) > math.Abs(n.Y) {
		invLen := 1 / math.Sqrt(n.X*n.X+n.Z*n.Z)
		uy = vecmath.NewVector(n.Z*invLen, 0, -n.X*invLen)
		uz = uy.ImagCross(n)
	} else {
		invLen := 1 / math.Sqrt(n.Y*n.Y+n.Z*n.Z)
		uy = vecmath.NewVector(0, -n.Z*invLen, n.Y*invLen)
		uz = n.ImagCross(uy)
	}
	uz.Normalize()

	c.basis = vecmath.NewTransform()
	c.basis.SetColumn(0, n)
	c.basis.SetColumn(1, uy)
	c.basis.SetColumn(2, uz)

	posA := c.BodyA.Position()
	c.rA = c.Point.Clone().Sub(posA)

	relVel := c.BodyA.Velocity().Clone().Add(c.BodyA.AngularVelocity().ImagCross(c.rA))

	var forceVel *vecmath.Quaternion
	forceVel = c.BodyA.Force().Clone().Scale(c.BodyA.InvMass() * h)

	if c.BodyB != nil {
		posB := c.BodyB.Position()
		c.rB = c.Point.Clone().Sub(posB)
		relVelB := c.BodyB.Velocity().Clone().Add(c.BodyB.AngularVelocity().ImagCross(c.rB))
		relVel.Sub(relVelB)

		forceVelB := c.BodyB.Force().Clone().Scale(c.BodyB.InvMass() * h)
		forceVel.Sub(forceVelB)
	} else {
		c.rB = nil
	}

	var basisT vecmath.Transform
	basisT.Transpose(c.basis)

	dVforce := basisT.ApplyRotation(forceVel)
	normalForce := dVforce.X
	dVforce.X = 0 // only the tangential part of force-induced velocity is accumulated into Vc

	c.Vc = basisT.ApplyRotation(relVel)
	c.Vc.Add(dVforce)

	eps := c.Restitution
	if math.Abs(c.Vc.X-normalForce) < restitutionGuard {
		eps = 0
	}
	c.DvN = -(1+eps)*c.Vc.X + eps*normalForce
}
