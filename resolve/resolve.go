// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resolve implements the two sequential, largest-first
// contact resolvers: impulse transfer (so bodies bounce) and position
// projection (so bodies stop overlapping).
package resolve

import (
	"math"

	"github.com/polyhull/rigid/collision"
	"github.com/polyhull/rigid/rigidbody"
	"github.com/polyhull/rigid/vecmath"
)

// DefaultEpsilon is the default convergence tolerance for both
// resolvers.
const DefaultEpsilon = 0.01

// angularContactInertia returns k = ((I_w^-1 . (r x n)) x r) . n, the
// scalar angular contribution to a body's effective inverse mass
// along the contact normal.
func angularContactInertia(invInertiaW *vecmath.Transform, r, n *vecmath.Quaternion) float64 {

	rCrossN := r.ImagCross(n)
	t := invInertiaW.ApplyRotation(rCrossN)
	return t.ImagCross(r).ImagDot(n)
}

func sharesBody(c *collision.Contact, body *rigidbody.Body) bool {

	return c.BodyA == body || c.BodyB == body
}

func wakeDormantPartner(bodyA, bodyB *rigidbody.Body) {

	if bodyB == nil || bodyA.Active() == bodyB.Active() {
		return
	}
	if !bodyA.Active() {
		bodyA.Activate()
	} else {
		bodyB.Activate()
	}
}

// Impulses runs the sequential largest-closing-velocity impulse
// transfer over every contact in reg, bounded at maxIterations
// (8*|registry| if maxIterations <= 0). The step length h carries the
// force-induced velocity term through each sibling refresh.
func Impulses(reg *collision.Registry, h float64, maxIterations int, eps float64) {

	if eps <= 0 {
		eps = DefaultEpsilon
	}
	if maxIterations <= 0 {
		maxIterations = 8 * reg.Count()
	}

	for iter := 0; iter < maxIterations; iter++ {

		best := -1
		bestDv := eps
		for i, c := range reg.All() {
			if c.DvN > bestDv {
				bestDv = c.DvN
				best = i
			}
		}
		if best < 0 {
			return
		}

		c := reg.At(best)
		applyImpulse(c)

		// c's own Vc/DvN are as stale as any sibling's after the
		// impulse changed both bodies' velocities, so it is re-derived
		// alongside them rather than treated as a special case.
		for _, other := range reg.All() {
			if sharesBody(other, c.BodyA) || (c.BodyB != nil && sharesBody(other, c.BodyB)) {
				other.UpdateDerived(h)
			}
		}
	}
}

func applyImpulse(c *collision.Contact) {

	bodyA, bodyB := c.BodyA, c.BodyB
	wakeDormantPartner(bodyA, bodyB)

	rA := c.RA()
	invInertiaA := bodyA.InvInertiaWorld()
	kA := angularContactInertia(invInertiaA, rA, c.Normal)
	invMassLin := bodyA.InvMass()
	invMassR := invMassLin + kA

	var rB *vecmath.Quaternion
	var invInertiaB *vecmath.Transform
	if bodyB != nil {
		rB = c.RB()
		invInertiaB = bodyB.InvInertiaWorld()
		kB := angularContactInertia(invInertiaB, rB, c.Normal)
		invMassLin += bodyB.InvMass()
		invMassR += bodyB.InvMass() + kB
	}
	if invMassR <= 0 {
		return
	}

	var jContact *vecmath.Quaternion
	if c.Friction == 0 {
		jContact = vecmath.NewVector(c.DvN/invMassR, 0, 0)
	} else {
		basis := c.Basis()
		b := fromBlock(basis)
		bT := b.transpose()

		skewA := skew3(rA)
		inner := skewA.mul(fromBlock(invInertiaA)).mul(skewA).scale(-1)
		if bodyB != nil {
			skewB := skew3(rB)
			inner = inner.add(skewB.mul(fromBlock(invInertiaB)).mul(skewB).scale(-1))
		}
		// Only the linear inverse masses sit on the diagonal; the
		// angular contribution enters through the skew-matrix term.
		K := identity3().scale(invMassLin).add(bT.mul(inner).mul(b))

		dv := vecmath.NewVector(c.DvN, -c.Vc.Y, -c.Vc.Z)
		j := K.invert().apply(dv)

		tangentMag := math.Sqrt(j.Y*j.Y + j.Z*j.Z)
		if tangentMag > c.Friction*j.X {
			// Coulomb cone violated: clamp the tangential impulse to the
			// cone and re-solve the normal component as a 1-D problem
			// along the combined direction (normal + friction*tangent).
			tY := j.Y / tangentMag
			tZ := j.Z / tangentMag
			denom := K[0][0] + K[0][1]*c.Friction*tY + K[0][2]*c.Friction*tZ
			if denom == 0 {
				return
			}
			jx := c.DvN / denom
			j = vecmath.NewVector(jx, c.Friction*jx*tY, c.Friction*jx*tZ)
		}
		jContact = j
	}

	basis := c.Basis()
	J := basis.ApplyRotation(jContact)

	bodyA.AddImpulse(J, c.Point)
	if bodyB != nil {
		bodyB.AddImpulse(J.Clone().Negate(), c.Point)
	}
}

// Positions runs the sequential largest-penetration position
// projection over every contact in reg, bounded at maxIterations
// (8*|registry| if maxIterations <= 0).
func Positions(reg *collision.Registry, relaxation float64, maxIterations int, eps float64) {

	if eps <= 0 {
		eps = DefaultEpsilon
	}
	if maxIterations <= 0 {
		maxIterations = 8 * reg.Count()
	}

	for iter := 0; iter < maxIterations; iter++ {

		best := -1
		bestDepth := eps
		for i, c := range reg.All() {
			if c.Depth > bestDepth {
				bestDepth = c.Depth
				best = i
			}
		}
		if best < 0 {
			return
		}

		c := reg.At(best)
		projectContact(reg, c, relaxation)
	}
}

func projectContact(reg *collision.Registry, c *collision.Contact, relaxation float64) {

	bodyA, bodyB := c.BodyA, c.BodyB
	wakeDormantPartner(bodyA, bodyB)

	n := c.Normal
	rA := c.RA()
	invInertiaA := bodyA.InvInertiaWorld()
	kA := angularContactInertia(invInertiaA, rA, n)
	mT := bodyA.InvMass() + kA

	var rB *vecmath.Quaternion
	var invInertiaB *vecmath.Transform
	var kB float64
	if bodyB != nil {
		rB = c.RB()
		invInertiaB = bodyB.InvInertiaWorld()
		kB = angularContactInertia(invInertiaB, rB, n)
		mT += bodyB.InvMass() + kB
	}
	if mT <= 0 {
		return
	}

	delta := c.Depth
	if relaxation > 0 && relaxation <= 1 {
		delta *= 1 - relaxation
	}

	linA, angA := projectBody(bodyA, invInertiaA, rA, n, delta, bodyA.InvMass(), kA, mT, +1)
	var linB, angB *vecmath.Quaternion
	if bodyB != nil {
		linB, angB = projectBody(bodyB, invInertiaB, rB, n, delta, bodyB.InvMass(), kB, mT, -1)
	}

	// c's own penetration shrinks by its share of the correction just
	// like any sibling sharing bodyA/bodyB would, so it is included in
	// this sweep rather than treated as a special case.
	for _, other := range reg.All() {
		adjustSiblingDepth(other, bodyA, linA, angA)
		if bodyB != nil {
			adjustSiblingDepth(other, bodyB, linB, angB)
		}
	}
}

// projectBody applies body's share of a position-projection
// correction along the contact normal, clamping the angular component
// so one contact cannot spin a body through a large spurious angle and
// pouring any excess back into the linear component. The direction
// sign (+1 for A, -1 for B, since the normal is the direction that
// separates A from B) carries through both the linear and the angular
// part of the split. Returns the linear displacement and angular jolt
// actually applied, for sibling-contact propagation.
func projectBody(body *rigidbody.Body, invInertiaW *vecmath.Transform, r, n *vecmath.Quaternion, delta, invMass, k, mT float64, dirSign float64) (*vecmath.Quaternion, *vecmath.Quaternion) {

	deltaX := dirSign * delta * invMass / mT
	deltaQ := dirSign * delta * k / mT

	rDotN := r.ImagDot(n)
	rPerp := r.Clone().Sub(n.Clone().Scale(rDotN))
	clampVal := 0.3 * rPerp.ImagNorm()

	if deltaQ > clampVal {
		deltaX += deltaQ - clampVal
		deltaQ = clampVal
	} else if deltaQ < -clampVal {
		deltaX += deltaQ + clampVal
		deltaQ = -clampVal
	}

	linearDelta := n.Clone().Scale(deltaX)

	var angularJolt *vecmath.Quaternion
	if deltaQ != 0 && k != 0 {
		axis := invInertiaW.ApplyRotation(r.ImagCross(n))
		angularJolt = axis.Scale(deltaQ / k)
	}

	body.ApplyPositionProjection(linearDelta, angularJolt)

	return linearDelta, angularJolt
}

// adjustSiblingDepth changes a sibling contact's penetration depth by
// the component, along its own normal, of the displacement the shared
// body underwent at the sibling's own contact point. The lever arm is
// the sibling's, not the resolved contact's: the same rotation moves
// different contact points by different amounts.
func adjustSiblingDepth(c *collision.Contact, movedBody *rigidbody.Body, linDelta, angJolt *vecmath.Quaternion) {

	if linDelta == nil {
		return
	}

	// The sibling's normal is its own A's separating direction, so a
	// shared body moving along it shrinks the penetration on the A side
	// and deepens it on the B side.
	var sign float64
	var r *vecmath.Quaternion
	switch movedBody {
	case c.BodyA:
		sign = -1
		r = c.RA()
	case c.BodyB:
		sign = 1
		r = c.RB()
	default:
		return
	}

	disp := linDelta.Clone()
	if angJolt != nil && r != nil {
		disp.Add(angJolt.ImagCross(r))
	}
	c.Depth += disp.ImagDot(c.Normal) * sign
}
