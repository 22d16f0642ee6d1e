// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rigidbody implements the Newton-Euler rigid body state
// model: position, orientation, momenta, derived velocities and
// energy, and the semi-implicit symplectic integrator that advances
// them one step at a time.
package rigidbody

import (
	"math"

	"github.com/polyhull/rigid/vecmath"
)

// Thresholds used to encode infinite and zero mass through their
// inverse, so both are representable as a single float.
const (
	infiniteMassThreshold = 1e30
	angularDamping        = 0.998
	linearDamping         = 1.0
	deactivationHalfLife  = 0.5 // alpha = (1/2)^h per step, see Body.Step
)

// Severe-misuse report identifiers passed to an ErrorSink.
const (
	ErrSingularOrientation = 1
	ErrSingularInertia     = 2
)

// ErrorSink receives reports of unrecoverable misuse. The world
// propagates its installed sink to every body it owns; a body with no
// sink applies the documented numeric fallback silently.
type ErrorSink interface {
	ReportSevere(id int, message string)
}

// Body is a rigid body: its mass properties, its state (position,
// orientation, linear and angular momentum) and the quantities
// derived from that state.
type Body struct {
	// Mass properties.
	mass        float64
	invMass     float64
	invInertiaB *vecmath.Transform // inverse inertia tensor, body frame

	// State.
	position    *vecmath.Quaternion // X
	orientation *vecmath.Quaternion // Q, kept unit-normalized
	linMomentum *vecmath.Quaternion // P
	angMomentum *vecmath.Quaternion // L

	// Accumulators, cleared by the world at the end of every step.
	force     *vecmath.Quaternion
	torque    *vecmath.Quaternion
	potEnergy float64

	// Derived quantities, refreshed by refreshDerived.
	transform   *vecmath.Transform  // T
	invInertiaW *vecmath.Transform  // I_w^-1 = R * invInertiaB * R^T
	velocity    *vecmath.Quaternion // V = invMass * P
	angVelocity *vecmath.Quaternion // Omega = invInertiaW * L
	totalAngMom *vecmath.Quaternion // X x P + L
	kinEnergy   float64

	// Activation.
	active        bool
	canDeactivate bool
	dampingOn     bool
	avgKinEnergy  float64
	keThreshold   float64

	sink ErrorSink // misuse reports, nil until the world installs one
}

// invertTensor returns the matrix inverse of a Transform's upper-left
// 3x3 block when it is a general symmetric tensor, such as an inertia
// matrix.
func invertTensor(m *vecmath.Transform) *vecmath.Transform {

	return vecmath.NewTransform().InvertBlock(m)
}

// NewBody creates and returns a pointer to a new active Body with the
// given mass, initial position, orientation, linear velocity and
// angular velocity. Pass mass <= 0 (or >= 1e30) for an immovable
// (infinite mass) body. The body's inertia starts at zero (massless
// point); callers set it via SetInertia (or a geometry mass-setter)
// once its geometry is known. Angular velocity is absorbed into
// angular momentum through the inertia tensor, so a spinning initial
// state must be established with SetState after the inertia is set.
func NewBody(mass float64, x, q, v, omega *vecmath.Quaternion) *Body {

	b := new(Body)
	b.position = x.Clone()
	b.orientation = q.Clone()
	b.normalizeOrientation()
	b.force = vecmath.NewVector(0, 0, 0)
	b.torque = vecmath.NewVector(0, 0, 0)
	b.transform = vecmath.NewTransform()
	b.invInertiaB = vecmath.NewTransform().Zero()
	b.invInertiaW = vecmath.NewTransform().Zero()
	b.active = true
	b.canDeactivate = true
	b.dampingOn = false

	b.SetMass(mass)
	// Seed the average kinetic energy the same way Activate does, so a
	// freshly created body is not deactivated on its very first step.
	b.avgKinEnergy = 0.6 * b.mass

	b.linMomentum = v.Clone().Scale(b.mass)
	b.refreshTransform()
	b.invInertiaW = b.transform.RotationSimilarity(b.invInertiaB)
	b.angMomentum = invertTensor(b.invInertiaW).ApplyRotation(omega)
	b.refreshDerived()

	return b
}

// SetMass sets the body's mass. A mass <= 0 makes the body immovable
// (infinite mass, invMass == 0); a mass >= 1e30 is likewise immovable
// (invMass == 0). Mass is always stored through its inverse so both
// extremes are representable on one float field.
func (b *Body) SetMass(mass float64) {

	b.mass = mass
	switch {
	case mass <= 0:
		b.invMass = 0
	case mass >= infiniteMassThreshold:
		b.invMass = 0
	default:
		b.invMass = 1 / mass
	}
	b.keThreshold = 0.3 * mass
}

// SetInertia sets the body's inertia tensor in body frame from its
// principal moments (Ixx, Iyy, Izz); used by geometry mass-setters
// (sphere, cuboid). A singular tensor (determinant 0) sets the inverse
// to zero and, on a finite-mass body, is reported through the error
// sink as misuse; on an infinite-mass body zero inverse inertia is the
// canonical immovable encoding and is not reported.
func (b *Body) SetInertia(ixx, iyy, izz float64) {

	var inertia vecmath.Transform
	inertia.Diagonal(ixx, iyy, izz)
	if inertia.Determinant() == 0 {
		if b.invMass != 0 {
			b.reportSevere(ErrSingularInertia, "singular inertia tensor, inverse set to zero")
		}
		b.invInertiaB.Zero()
	} else {
		b.invInertiaB = invertTensor(&inertia)
	}
	b.refreshDerived()
}

// Position, Orientation, Velocity, AngularVelocity, Force, Torque and
// Transform return the body's current state and derived quantities.
func (b *Body) Position() *vecmath.Quaternion        { return b.position.Clone() }
func (b *Body) Orientation() *vecmath.Quaternion     { return b.orientation.Clone() }
func (b *Body) Velocity() *vecmath.Quaternion        { return b.velocity.Clone() }
func (b *Body) AngularVelocity() *vecmath.Quaternion { return b.angVelocity.Clone() }
func (b *Body) LinearMomentum() *vecmath.Quaternion  { return b.linMomentum.Clone() }
func (b *Body) AngularMomentum() *vecmath.Quaternion { return b.angMomentum.Clone() }
func (b *Body) Force() *vecmath.Quaternion           { return b.force.Clone() }
func (b *Body) Torque() *vecmath.Quaternion          { return b.torque.Clone() }
func (b *Body) Transform() *vecmath.Transform        { return b.transform.Clone() }
func (b *Body) InvInertiaWorld() *vecmath.Transform  { return b.invInertiaW.Clone() }
func (b *Body) InvMass() float64                     { return b.invMass }
func (b *Body) Mass() float64                        { return b.mass }
func (b *Body) Active() bool                         { return b.active }
func (b *Body) KineticEnergy() float64               { return b.kinEnergy }
func (b *Body) PotentialEnergy() float64             { return b.potEnergy }
func (b *Body) TotalAngularMomentum() *vecmath.Quaternion {
	return b.totalAngMom.Clone()
}

// SetErrorSink installs the sink this body reports misuse through.
func (b *Body) SetErrorSink(sink ErrorSink) { b.sink = sink }

// reportSevere forwards a misuse report to the installed sink, if any.
func (b *Body) reportSevere(id int, message string) {

	if b.sink != nil {
		b.sink.ReportSevere(id, message)
	}
}

// normalizeOrientation normalizes the body's orientation, reporting a
// zero-norm (unnormalizable) quaternion as misuse before the
// normalization falls back to the identity.
func (b *Body) normalizeOrientation() {

	if b.orientation.Norm() == 0 {
		b.reportSevere(ErrSingularOrientation, "orientation has zero norm, defaulting to identity")
	}
	b.orientation.Normalize()
}

// SetCanDeactivate sets whether the body is allowed to fall asleep.
func (b *Body) SetCanDeactivate(state bool) { b.canDeactivate = state }

// SetDamping enables or disables angular velocity damping during
// integration.
func (b *Body) SetDamping(state bool) { b.dampingOn = state }

// SetState resets the body's position, orientation, linear and
// angular velocity directly (used by the embedder to place a body).
func (b *Body) SetState(x, q, v, omega *vecmath.Quaternion) {

	b.position.Copy(x)
	b.orientation.Copy(q)
	b.normalizeOrientation()
	b.linMomentum = v.Clone().Scale(b.mass)
	b.refreshTransform()
	b.invInertiaW = b.transform.RotationSimilarity(b.invInertiaB)
	b.angMomentum = invertTensor(b.invInertiaW).ApplyRotation(omega)
	b.refreshDerived()
}

// Activate wakes the body, re-seeding its average kinetic energy so it
// is not immediately deactivated again.
func (b *Body) Activate() {

	if b.active {
		return
	}
	b.active = true
	b.avgKinEnergy = 0.6 * b.mass
}

// Deactivate puts the body to sleep, zeroing its momenta and derived
// velocities.
func (b *Body) Deactivate() {

	b.active = false
	b.linMomentum.Set(0, 0, 0, 0)
	b.angMomentum.Set(0, 0, 0, 0)
	b.force.Set(0, 0, 0, 0)
	b.torque.Set(0, 0, 0, 0)
	b.velocity.Set(0, 0, 0, 0)
	b.angVelocity.Set(0, 0, 0, 0)
	b.totalAngMom.Set(0, 0, 0, 0)
	b.kinEnergy = 0
}

// AddExternalForce adds a force (such as gravity) to the body's force
// accumulator and potential energy. For a constant force field the
// potential contribution is -F.X, so total energy (kinetic plus
// potential) stays an invariant of the motion. Unlike AddForce, it
// never wakes an inactive body -- an external field should not itself
// keep sleeping bodies busy.
func (b *Body) AddExternalForce(f *vecmath.Quaternion) {

	b.force.Add(f)
	b.potEnergy -= f.ImagDot(b.position)
}

// AddForce adds a force at the body's center of mass, activating the
// body.
func (b *Body) AddForce(f *vecmath.Quaternion) {

	b.force.Add(f)
	b.potEnergy -= f.ImagDot(b.position)
	b.Activate()
}

// AddForceAtPoint adds a force applied at world point p, activating
// the body. The torque contribution is (p - X) x F.
func (b *Body) AddForceAtPoint(f, p *vecmath.Quaternion) {

	r := p.Clone().Sub(b.position)
	b.force.Add(f)
	b.torque.Add(r.ImagCross(f))
	b.potEnergy -= f.ImagDot(b.position)
	b.Activate()
}

// AddForceAtBodyPoint adds a force applied at a point given in body
// coordinates, activating the body.
func (b *Body) AddForceAtBodyPoint(f, bodyPoint *vecmath.Quaternion) {

	worldPoint := b.transform.Apply(bodyPoint)
	b.AddForceAtPoint(f, worldPoint)
}

// AddImpulse applies an instantaneous impulse J, applied at worldPoint,
// directly to the body's momenta. Used by the contact resolver.
func (b *Body) AddImpulse(impulse, worldPoint *vecmath.Quaternion) {

	r := worldPoint.Clone().Sub(b.position)
	b.linMomentum.Add(impulse)
	b.angMomentum.Add(r.ImagCross(impulse))
	b.refreshDerived()
}

// ApplyPositionProjection applies a non-physical position correction:
// a linear displacement and, if angularJolt is non-nil, an orientation
// jolt of the form Q += 1/2 * angularJolt * Q (angularJolt embedded as
// a pure-imaginary quaternion). Used by the position-projection
// resolver to remove residual interpenetration after impulse
// transfer. Rebuilds all derived quantities afterward.
func (b *Body) ApplyPositionProjection(linearDelta, angularJolt *vecmath.Quaternion) {

	b.position.Add(linearDelta)

	if angularJolt != nil {
		omegaQ := vecmath.NewQuaternion(0, angularJolt.X, angularJolt.Y, angularJolt.Z)
		qdot := omegaQ.Clone().Mul(b.orientation).Scale(0.5)
		b.orientation.Add(qdot)
		b.orientation.Normalize()
	}

	b.refreshTransform()
	b.refreshDerived()
}

// ClearAccumulators zeros the force, torque and potential energy
// accumulators. Called by the world at the end of every step.
func (b *Body) ClearAccumulators() {

	b.force.Set(0, 0, 0, 0)
	b.torque.Set(0, 0, 0, 0)
	b.potEnergy = 0
}

// refreshTransform rebuilds T from (orientation, position).
func (b *Body) refreshTransform() {

	b.transform.Shoemake(b.orientation, b.position)
}

// refreshDerived recomputes everything that follows from the current
// state: world inverse inertia, linear/angular velocity, total angular
// momentum and kinetic energy.
func (b *Body) refreshDerived() {

	b.invInertiaW = b.transform.RotationSimilarity(b.invInertiaB)

	b.velocity = b.linMomentum.Clone().Scale(b.invMass)
	b.angVelocity = b.invInertiaW.ApplyRotation(b.angMomentum)

	b.totalAngMom = b.position.ImagCross(b.linMomentum).Add(b.angMomentum)

	b.kinEnergy = 0.5 * (b.velocity.ImagDot(b.linMomentum) + b.angVelocity.ImagDot(b.angMomentum))
}

// Step integrates this body forward by h using the semi-implicit
// (symplectic) Euler scheme: momenta first, then position and
// orientation from the updated velocities.
func (b *Body) Step(h float64) {

	if !b.active {
		return
	}

	// 1-2: integrate force/torque into momentum.
	b.linMomentum.Add(b.force.Clone().Scale(h))
	b.angMomentum.Add(b.torque.Clone().Scale(h))

	// 3: damping (angular only; linear damping is the identity here).
	if b.dampingOn {
		if linearDamping != 1 {
			b.linMomentum.Scale(math.Pow(linearDamping, h))
		}
		b.angMomentum.Scale(math.Pow(angularDamping, h))
	}

	// 4: refresh V, Omega from the updated momenta (pre-move).
	b.velocity = b.linMomentum.Clone().Scale(b.invMass)
	b.angVelocity = b.invInertiaW.ApplyRotation(b.angMomentum)

	// 5: Qdot = 1/2 * Omega * Q (Omega embedded as a pure-imaginary quaternion).
	omegaQ := vecmath.NewQuaternion(0, b.angVelocity.X, b.angVelocity.Y, b.angVelocity.Z)
	qdot := omegaQ.Clone().Mul(b.orientation).Scale(0.5)

	// 6-7: integrate position and orientation.
	b.position.Add(b.velocity.Clone().Scale(h))
	b.orientation.Add(qdot.Scale(h))

	// 8: normalize and rebuild derived quantities.
	b.orientation.Normalize()
	b.refreshTransform()
	b.refreshDerived()

	// 9: deactivation bookkeeping.
	if b.canDeactivate {
		alpha := math.Pow(deactivationHalfLife, h)
		b.avgKinEnergy = alpha*b.avgKinEnergy + (1-alpha)*b.kinEnergy
		if b.avgKinEnergy > 10*b.keThreshold {
			b.avgKinEnergy = 10 * b.keThreshold
		}
		if b.avgKinEnergy < b.keThreshold {
			b.Deactivate()
		}
	}
}
