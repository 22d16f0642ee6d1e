// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geometry implements the collidable shapes the physics core
// operates on: a tagged union of Sphere, Cuboid, HalfSpace and
// TruePlane variants, each optionally owned by a rigid body. A
// geometry with no owning body is static scenery: it never moves and
// never integrates.
package geometry

import (
	"github.com/polyhull/rigid/rigidbody"
	"github.com/polyhull/rigid/vecmath"
)

// Kind discriminates the variant held by a Geometry.
type Kind int

const (
	// Sphere is a ball of the given radius about its body's position.
	Sphere Kind = iota
	// Cuboid is an oriented box with the given half-extents.
	Cuboid
	// HalfSpace is the one-sided region {p : n.p <= d}.
	HalfSpace
	// TruePlane is a two-sided infinite plane at n.p == d.
	TruePlane
)

// Geometry is a tagged record describing one collidable shape. Only
// the fields relevant to Kind are meaningful; the others are zero.
type Geometry struct {
	kind Kind
	body *rigidbody.Body // nil iff this geometry is static scenery

	radius     float64             // Sphere
	halfExtent *vecmath.Quaternion // Cuboid: (hx, hy, hz)
	normal     *vecmath.Quaternion // HalfSpace, TruePlane: unit normal
	offset     float64             // HalfSpace, TruePlane: plane offset d

	// sceneryTransform gives position()/axis() a frame for static
	// geometry, which has no body to read a transform from.
	sceneryTransform *vecmath.Transform
}

// NewSphere creates and returns a pointer to a new spherical geometry
// of the given radius, owned by body (nil for static scenery).
func NewSphere(radius float64, body *rigidbody.Body) *Geometry {

	g := &Geometry{kind: Sphere, body: body, radius: radius}
	g.sceneryTransform = vecmath.NewTransform()
	return g
}

// NewCuboid creates and returns a pointer to a new box geometry with
// the given half-extents, owned by body (nil for static scenery).
func NewCuboid(hx, hy, hz float64, body *rigidbody.Body) *Geometry {

	g := &Geometry{kind: Cuboid, body: body, halfExtent: vecmath.NewVector(hx, hy, hz)}
	g.sceneryTransform = vecmath.NewTransform()
	return g
}

// NewHalfSpace creates and returns a pointer to a new half-space
// {p : n.p <= d} scenery geometry. Half-spaces are always static.
func NewHalfSpace(n *vecmath.Quaternion, d float64) *Geometry {

	g := &Geometry{kind: HalfSpace, normal: n.Clone().Normalize(), offset: d}
	g.sceneryTransform = vecmath.NewTransform()
	return g
}

// NewTruePlane creates and returns a pointer to a new two-sided plane
// n.p == d scenery geometry. True planes are always static.
func NewTruePlane(n *vecmath.Quaternion, d float64) *Geometry {

	g := &Geometry{kind: TruePlane, normal: n.Clone().Normalize(), offset: d}
	g.sceneryTransform = vecmath.NewTransform()
	return g
}

// Kind returns this geometry's variant discriminator.
func (g *Geometry) Kind() Kind { return g.kind }

// Body returns the rigid body owning this geometry, or nil if it is
// static scenery.
func (g *Geometry) Body() *rigidbody.Body { return g.body }

// IsScenery returns whether this geometry has no owning body.
func (g *Geometry) IsScenery() bool { return g.body == nil }

// Radius returns the sphere's radius. Meaningless for other kinds.
func (g *Geometry) Radius() float64 { return g.radius }

// HalfExtent returns the cuboid's half-extent vector. Meaningless for
// other kinds.
func (g *Geometry) HalfExtent() *vecmath.Quaternion { return g.halfExtent.Clone() }

// Normal returns the half-space/plane unit normal. Meaningless for
// other kinds.
func (g *Geometry) Normal() *vecmath.Quaternion { return g.normal.Clone() }

// Offset returns the half-space/plane offset d. Meaningless for other
// kinds.
func (g *Geometry) Offset() float64 { return g.offset }

// transform returns the frame this geometry reads position/axes from:
// its body's world transform, or its own identity-at-origin frame for
// static scenery.
func (g *Geometry) transform() *vecmath.Transform {

	if g.body != nil {
		return g.body.Transform()
	}
	return g.sceneryTransform
}

// Position returns column 3 of this geometry's frame: its body's
// world position, or the zero vector for scenery.
func (g *Geometry) Position() *vecmath.Quaternion {

	return g.transform().Column(3)
}

// Axis returns column i (0..2) of this geometry's frame: its body's
// local basis axis i expressed in world coordinates, or the world
// basis vector i for scenery.
func (g *Geometry) Axis(i int) *vecmath.Quaternion {

	return g.transform().Column(i)
}

// SetMass sets the owning body's mass and, for Sphere and Cuboid,
// derives and installs the principal body-frame moment of inertia
// from the shape's geometry: Ixx=Iyy=Izz = (2/5)*m*r^2 for a sphere,
// and the standard box diagonal (m/12)*(h_j^2+h_k^2) per axis for a
// cuboid. A no-op on scenery geometries (no owning body).
func (g *Geometry) SetMass(mass float64) {

	if g.body == nil {
		return
	}
	g.body.SetMass(mass)

	switch g.kind {
	case Sphere:
		i := 0.4 * mass * g.radius * g.radius
		g.body.SetInertia(i, i, i)
	case Cuboid:
		hx, hy, hz := g.halfExtent.X, g.halfExtent.Y, g.halfExtent.Z
		wx, wy, wz := 4*hx*hx, 4*hy*hy, 4*hz*hz // full extents squared
		ixx := (mass / 12) * (wy + wz)
		iyy := (mass / 12) * (wx + wz)
		izz := (mass / 12) * (wx + wy)
		g.body.SetInertia(ixx, iyy, izz)
	}
}
