// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package world implements the top-level simulation orchestrator: a
// fixed-capacity collection of geometries and a contact registry,
// advanced one bounded-time step at a time.
package world

import (
	"fmt"
	"strings"

	"github.com/polyhull/rigid/collision"
	"github.com/polyhull/rigid/geometry"
	"github.com/polyhull/rigid/resolve"
	"github.com/polyhull/rigid/rigidbody"
	"github.com/polyhull/rigid/util/logger"
	"github.com/polyhull/rigid/vecmath"
)

// ErrorSink receives reports of unrecoverable misuse. NewWorld installs
// a default sink that logs; an embedder replaces it through
// SetErrorSink. The world never panics on misuse, it
// reports and aborts the offending operation. The same sink is
// propagated to every body the world owns.
type ErrorSink = rigidbody.ErrorSink

// Severe-misuse report identifiers passed to the error sink,
// continuing the numbering started in rigidbody.
const (
	ErrGeometryCapacity = 3
	ErrContactIndex     = 4
)

// Package logger for the world package.
var log = logger.New("world")

// defaultSink logs severe errors through the package logger when the
// embedder installs none.
type defaultSink struct{}

func (defaultSink) ReportSevere(id int, message string) {
	log.Error("%d: %s", id, message)
}

// World owns the fixed-capacity geometry list and contact registry
// and orchestrates one simulation step at a time.
type World struct {
	maxObjects    int
	maxCollisions int

	geometries []*geometry.Geometry
	bodyList   []*rigidbody.Body // bodies behind geometries, scenery skipped
	registry   *collision.Registry

	gravity     *vecmath.Quaternion
	restitution float64
	relaxation  float64
	friction    float64

	time  float64
	steps int

	totalKinetic   float64
	totalPotential float64
	totalLinMom    *vecmath.Quaternion
	totalAngMom    *vecmath.Quaternion

	sink ErrorSink
}

// NewWorld creates and returns a pointer to a new World with the given
// fixed capacities, default restitution 1.0, relaxation 0.2, friction
// 0.0, and zero gravity. Install an error sink via SetErrorSink.
func NewWorld(maxObjects, maxCollisions int) *World {

	w := new(World)
	w.maxObjects = maxObjects
	w.maxCollisions = maxCollisions
	w.geometries = make([]*geometry.Geometry, 0, maxObjects)
	w.bodyList = make([]*rigidbody.Body, 0, maxObjects)
	w.registry = collision.NewRegistry(maxCollisions)
	w.gravity = vecmath.NewVector(0, 0, 0)
	w.restitution = 1.0
	w.relaxation = 0.2
	w.friction = 0.0
	w.sink = defaultSink{}
	w.totalLinMom = vecmath.NewVector(0, 0, 0)
	w.totalAngMom = vecmath.NewVector(0, 0, 0)
	return w
}

// SetErrorSink installs the embedder's severe-error sink, propagating
// it to every body already owned by the world.
func (w *World) SetErrorSink(sink ErrorSink) {

	w.sink = sink
	for _, b := range w.bodyList {
		b.SetErrorSink(sink)
	}
}

// SetGravity sets the world's gravity acceleration vector.
func (w *World) SetGravity(g *vecmath.Quaternion) { w.gravity = g.Clone() }

// SetRestitution, SetRelaxation and SetFriction set the world's
// default contact coefficients, applied to every contact detected.
func (w *World) SetRestitution(e float64)  { w.restitution = e }
func (w *World) SetRelaxation(r float64)   { w.relaxation = r }
func (w *World) SetFriction(mu float64)    { w.friction = mu }

// AddGeometry adds a geometry to the world if there is room, returning
// whether it was added. Exceeding MaxObjects is reported through the
// error sink as a misuse condition.
func (w *World) AddGeometry(g *geometry.Geometry) bool {

	if len(w.geometries) >= w.maxObjects {
		w.sink.ReportSevere(ErrGeometryCapacity, "geometry capacity exceeded")
		return false
	}
	w.geometries = append(w.geometries, g)

	if b := g.Body(); b != nil {
		for _, known := range w.bodyList {
			if known == b {
				return true
			}
		}
		b.SetErrorSink(w.sink)
		w.bodyList = append(w.bodyList, b)
	}
	return true
}

// ClearGeometries empties the world's geometry and body lists.
func (w *World) ClearGeometries() {

	w.geometries = w.geometries[:0]
	w.bodyList = w.bodyList[:0]
}

// Geometries returns the world's current geometry list. The returned
// slice aliases the world's backing storage.
func (w *World) Geometries() []*geometry.Geometry { return w.geometries }

// Initialize resets the world's clock, step counter, contact registry
// and aggregates.
func (w *World) Initialize() {

	w.time = 0
	w.steps = 0
	w.registry.Reset()
	for _, g := range w.geometries {
		if b := g.Body(); b != nil {
			b.ClearAccumulators()
		}
	}
	w.totalKinetic = 0
	w.totalPotential = 0
	w.totalLinMom.Set(0, 0, 0, 0)
	w.totalAngMom.Set(0, 0, 0, 0)
}

// Step advances the simulation by h: apply gravity, integrate,
// advance the clock, recompute aggregates, clear and repopulate the
// contact registry, refresh per-contact derived quantities, resolve
// impulses, resolve positions, clear accumulators.
func (w *World) Step(h float64) {

	bodies := w.bodies()

	for _, b := range bodies {
		if !b.Active() || b.InvMass() == 0 {
			continue
		}
		b.AddExternalForce(w.gravity.Clone().Scale(b.Mass()))
	}

	for _, b := range bodies {
		b.Step(h)
	}

	w.time += h
	w.steps++

	w.recomputeAggregates(bodies)

	w.registry.Reset()
	for i := 0; i < len(w.geometries); i++ {
		for j := i + 1; j < len(w.geometries); j++ {
			if !w.registry.HasSpaceForMoreContacts() {
				break
			}
			collision.Detect(w.registry, w.geometries[i], w.geometries[j])
		}
	}

	for _, c := range w.registry.All() {
		c.Restitution = w.restitution
		c.Friction = w.friction
		c.UpdateDerived(h)
	}

	resolve.Impulses(w.registry, h, 0, resolve.DefaultEpsilon)
	resolve.Positions(w.registry, w.relaxation, 0, resolve.DefaultEpsilon)

	for _, b := range bodies {
		b.ClearAccumulators()
	}
}

// bodies returns the rigid bodies owned by the world's geometries,
// skipping static scenery. The list is maintained as geometries are
// added so stepping does not rebuild it.
func (w *World) bodies() []*rigidbody.Body { return w.bodyList }

func (w *World) recomputeAggregates(bodies []*rigidbody.Body) {

	w.totalKinetic = 0
	w.totalPotential = 0
	w.totalLinMom.Set(0, 0, 0, 0)
	w.totalAngMom.Set(0, 0, 0, 0)

	for _, b := range bodies {
		w.totalKinetic += b.KineticEnergy()
		w.totalPotential += b.PotentialEnergy()
		w.totalLinMom.Add(b.LinearMomentum())
		w.totalAngMom.Add(b.TotalAngularMomentum())
	}
}

// TotalEnergy returns the sum of total kinetic and total potential
// energy across all bodies, as of the last Step.
func (w *World) TotalEnergy() float64 { return w.totalKinetic + w.totalPotential }

// TotalLinearMomentum and TotalAngularMomentum return the
// corresponding aggregate vectors, as of the last Step.
func (w *World) TotalLinearMomentum() *vecmath.Quaternion  { return w.totalLinMom.Clone() }
func (w *World) TotalAngularMomentum() *vecmath.Quaternion { return w.totalAngMom.Clone() }

// StepCount returns the number of steps executed since Initialize.
func (w *World) StepCount() int { return w.steps }

// Time returns the simulated time elapsed since Initialize.
func (w *World) Time() float64 { return w.time }

// ContactCount returns the number of contacts registered by the most
// recent detection pass.
func (w *World) ContactCount() int { return w.registry.Count() }

// Contact returns the position, normal, penetration depth and
// scenery flag of contact i (0 <= i < ContactCount()). An index past
// the current count is a misuse condition reported through the error
// sink; zero values are returned.
func (w *World) Contact(i int) (point, normal *vecmath.Quaternion, depth float64, isScenery bool) {

	if i < 0 || i >= w.registry.Count() {
		w.sink.ReportSevere(ErrContactIndex, "contact index out of range")
		return vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0), 0, false
	}
	c := w.registry.At(i)
	return c.Point.Clone(), c.Normal.Clone(), c.Depth, c.BodyB == nil
}

// Dump writes a human-readable report of the world's parameters and
// per-body state to a string, for diagnostic use.
func (w *World) Dump() string {

	var sb strings.Builder
	fmt.Fprintf(&sb, "world: t=%.4f steps=%d bodies=%d contacts=%d/%d\n",
		w.time, w.steps, len(w.bodies()), w.registry.Count(), w.maxCollisions)
	fmt.Fprintf(&sb, "%-6s %-24s %-28s %-24s %-24s %-24s %-24s %-10s\n",
		"mass", "position", "orientation", "lin.mom", "ang.mom", "velocity", "ang.vel", "KE")

	for _, b := range w.bodies() {
		pos := b.Position()
		q := b.Orientation()
		p := b.LinearMomentum()
		l := b.AngularMomentum()
		v := b.Velocity()
		omega := b.AngularVelocity()
		fmt.Fprintf(&sb, "%-6.2f (%.2f,%.2f,%.2f) (%.2f,%.2f,%.2f,%.2f) (%.2f,%.2f,%.2f) (%.2f,%.2f,%.2f) (%.2f,%.2f,%.2f) (%.2f,%.2f,%.2f) %.4f\n",
			b.Mass(), pos.X, pos.Y, pos.Z, q.W, q.X, q.Y, q.Z, p.X, p.Y, p.Z, l.X, l.Y, l.Z,
			v.X, v.Y, v.Z, omega.X, omega.Y, omega.Z, b.KineticEnergy())
	}
	return sb.String()
}
