// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rigidbody

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polyhull/rigid/vecmath"
)

// Invariant 1: orientation stays unit-length after repeated steps,
// even when angular velocity is large enough that the raw Euler
// update would otherwise drift.
func TestBody_OrientationStaysUnitNormalized(t *testing.T) {

	b := NewBody(1, vecmath.NewVector(0, 0, 0), vecmath.Identity(),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
	b.SetInertia(1, 1, 1)
	b.SetState(vecmath.NewVector(0, 0, 0), vecmath.Identity(),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(3, 1, 2))

	for i := 0; i < 500; i++ {
		b.Step(0.01)
	}

	assert.InDelta(t, 1, b.orientation.Norm(), 1e-9)
}

// Invariant 2: with no forces and damping disabled, kinetic energy and
// momentum are exactly conserved by the symplectic integrator (no
// collisions, no gravity enters this body at all).
func TestBody_ConservesEnergyAndMomentumWithNoForces(t *testing.T) {

	b := NewBody(2, vecmath.NewVector(1, 2, 3), vecmath.Identity(),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
	b.SetInertia(0.5, 0.5, 0.5)
	b.SetState(vecmath.NewVector(1, 2, 3), vecmath.Identity(),
		vecmath.NewVector(1, 0, 0), vecmath.NewVector(0, 0, 1))

	startKE := b.KineticEnergy()
	startP := b.LinearMomentum()
	startL := b.TotalAngularMomentum().ImagNorm()

	for i := 0; i < 100; i++ {
		b.Step(0.01)
	}

	assert.InDelta(t, startKE, b.KineticEnergy(), 1e-6)
	assert.InDelta(t, startP.ImagNorm(), b.LinearMomentum().ImagNorm(), 1e-9)
	assert.InDelta(t, startL, b.TotalAngularMomentum().ImagNorm(), 1e-6)
}

// Invariant 5: a deactivated body with no external force holds its
// position and orientation constant across further steps.
func TestBody_DeactivationIsIdempotent(t *testing.T) {

	b := NewBody(1, vecmath.NewVector(4, 5, 6), vecmath.Identity(),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
	b.SetInertia(1, 1, 1)
	b.Deactivate()

	posBefore := b.Position()
	orientBefore := b.Orientation()

	for i := 0; i < 50; i++ {
		b.Step(0.01)
	}

	assert.True(t, posBefore.Equals(b.Position()))
	assert.True(t, orientBefore.Equals(b.Orientation()))
	assert.False(t, b.Active())
}

func TestBody_DeactivateZeroesMomentaAndVelocities(t *testing.T) {

	b := NewBody(1, vecmath.NewVector(0, 0, 0), vecmath.Identity(),
		vecmath.NewVector(1, 1, 1), vecmath.NewVector(1, 1, 1))
	b.SetInertia(1, 1, 1)

	b.Deactivate()

	assert.Equal(t, 0.0, b.LinearMomentum().ImagNorm())
	assert.Equal(t, 0.0, b.AngularMomentum().ImagNorm())
	assert.Equal(t, 0.0, b.Velocity().ImagNorm())
	assert.Equal(t, 0.0, b.AngularVelocity().ImagNorm())
	assert.Equal(t, 0.0, b.KineticEnergy())
}

func TestBody_ActivateReseedsAverageKineticEnergy(t *testing.T) {

	b := NewBody(4, vecmath.NewVector(0, 0, 0), vecmath.Identity(),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
	b.SetInertia(1, 1, 1)
	b.Deactivate()

	b.Activate()
	assert.True(t, b.Active())
	assert.InDelta(t, 0.6*b.Mass(), b.avgKinEnergy, 1e-12)
}

// Mass <= 0 and mass >= 1e30 both encode as infinite mass (invMass 0).
func TestBody_SetMassEncodesInfiniteMassThroughInverse(t *testing.T) {

	tests := []struct {
		mass        float64
		wantInvMass float64
	}{
		{mass: 2, wantInvMass: 0.5},
		{mass: 0, wantInvMass: 0},
		{mass: -1, wantInvMass: 0},
		{mass: 1e30, wantInvMass: 0},
	}

	for _, tc := range tests {
		b := NewBody(1, vecmath.NewVector(0, 0, 0), vecmath.Identity(),
			vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
		b.SetMass(tc.mass)
		assert.Equal(t, tc.wantInvMass, b.InvMass())
	}
}

// A singular inertia tensor inverts to zero rather than propagating a
// division by zero.
func TestBody_SetInertiaWithSingularTensorZeroesInverse(t *testing.T) {

	b := NewBody(1, vecmath.NewVector(0, 0, 0), vecmath.Identity(),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
	b.SetInertia(1, 0, 1)

	inv := b.InvInertiaWorld()
	for _, v := range inv {
		assert.Equal(t, 0.0, v)
	}
}

func TestBody_AddExternalForceDoesNotActivate(t *testing.T) {

	b := NewBody(1, vecmath.NewVector(0, 2, 0), vecmath.Identity(),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
	b.SetInertia(1, 1, 1)
	b.Deactivate()

	b.AddExternalForce(vecmath.NewVector(0, -9.8, 0))

	assert.False(t, b.Active())
	// Potential energy of a constant force field is -F.X: m*g*y here.
	assert.InDelta(t, 9.8*2, b.PotentialEnergy(), 1e-12)
}

func TestBody_AddForceAtPointActivatesAndAppliesTorque(t *testing.T) {

	b := NewBody(1, vecmath.NewVector(0, 0, 0), vecmath.Identity(),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
	b.SetInertia(1, 1, 1)
	b.Deactivate()

	b.AddForceAtPoint(vecmath.NewVector(0, 0, 1), vecmath.NewVector(1, 0, 0))

	assert.True(t, b.Active())
	assert.InDelta(t, 0, b.Torque().X, 1e-12)
	assert.InDelta(t, -1, b.Torque().Y, 1e-12)
	assert.InDelta(t, 0, b.Torque().Z, 1e-12)
}

// Free-fall-under-gravity sanity check at the rigid-body level
// (integration only, no world).
func TestBody_FreeFallMatchesKinematics(t *testing.T) {

	b := NewBody(1, vecmath.NewVector(0, 10, 0), vecmath.Identity(),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
	b.SetInertia(1, 1, 1)

	g := -9.81
	h := 0.01
	n := 100
	for i := 0; i < n; i++ {
		b.AddExternalForce(vecmath.NewVector(0, g*b.Mass(), 0))
		b.Step(h)
		b.ClearAccumulators()
	}

	// Semi-implicit Euler under constant force sums to a slightly
	// different closed form than continuous free fall: x0 + g*h^2*n*(n+1)/2.
	wantY := 10 + g*h*h*float64(n*(n+1))/2
	assert.InDelta(t, wantY, b.Position().Y, 1e-9)
	assert.False(t, math.IsNaN(b.Position().Y))
}

type recordingSink struct {
	ids []int
}

func (s *recordingSink) ReportSevere(id int, message string) {
	s.ids = append(s.ids, id)
}

// A singular inertia tensor on a finite-mass body is misuse and goes
// to the installed sink; on an infinite-mass body a zero inverse
// inertia is the canonical immovable encoding and is not reported.
func TestBody_SingularInertiaReportsOnlyForFiniteMass(t *testing.T) {

	finite := NewBody(1, vecmath.NewVector(0, 0, 0), vecmath.Identity(),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
	sink := &recordingSink{}
	finite.SetErrorSink(sink)
	finite.SetInertia(1, 0, 1)
	assert.Equal(t, []int{ErrSingularInertia}, sink.ids)

	immovable := NewBody(0, vecmath.NewVector(0, 0, 0), vecmath.Identity(),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
	sink = &recordingSink{}
	immovable.SetErrorSink(sink)
	immovable.SetInertia(0, 0, 0)
	assert.Empty(t, sink.ids)
}

// An unnormalizable (zero-norm) orientation is reported and then falls
// back to the identity.
func TestBody_ZeroOrientationReportsAndDefaultsToIdentity(t *testing.T) {

	b := NewBody(1, vecmath.NewVector(0, 0, 0), vecmath.Identity(),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
	sink := &recordingSink{}
	b.SetErrorSink(sink)

	b.SetState(vecmath.NewVector(1, 0, 0), vecmath.NewQuaternion(0, 0, 0, 0),
		vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))

	assert.Equal(t, []int{ErrSingularOrientation}, sink.ids)
	assert.True(t, b.Orientation().Equals(vecmath.Identity()))
}
