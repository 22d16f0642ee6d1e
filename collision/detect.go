// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"math"

	"github.com/polyhull/rigid/geometry"
	"github.com/polyhull/rigid/vecmath"
)

// crossAxisTolSq is the squared-norm threshold below which a SAT
// cross-product candidate axis is treated as degenerate
// (near-parallel edges) and skipped.
const crossAxisTolSq = 1e-4

// parallelAxisTol is the per-axis alignment threshold below which a
// cuboid face is treated as parallel to a half-space.
const parallelAxisTol = 1e-4

// Detect dispatches on the unordered pair of variants held by a and
// b and registers however many contacts the pair produces (0 or more)
// into reg. Unsupported pairs (plane against plane, cuboid against
// true plane) are no-ops. Returns the number of contacts registered.
func Detect(reg *Registry, a, b *geometry.Geometry) int {

	switch {
	case a.Kind() == geometry.Sphere && b.Kind() == geometry.Sphere:
		return detectSphereSphere(reg, a, b)
	case a.Kind() == geometry.Cuboid && b.Kind() == geometry.Cuboid:
		return detectCuboidCuboid(reg, a, b)

	case a.Kind() == geometry.Sphere && b.Kind() == geometry.Cuboid:
		return detectCuboidSphere(reg, b, a)
	case a.Kind() == geometry.Cuboid && b.Kind() == geometry.Sphere:
		return detectCuboidSphere(reg, a, b)

	case a.Kind() == geometry.Sphere && b.Kind() == geometry.HalfSpace:
		return detectSphereHalfSpace(reg, a, b)
	case a.Kind() == geometry.HalfSpace && b.Kind() == geometry.Sphere:
		return detectSphereHalfSpace(reg, b, a)

	case a.Kind() == geometry.Sphere && b.Kind() == geometry.TruePlane:
		return detectSpherePlane(reg, a, b)
	case a.Kind() == geometry.TruePlane && b.Kind() == geometry.Sphere:
		return detectSpherePlane(reg, b, a)

	case a.Kind() == geometry.Cuboid && b.Kind() == geometry.HalfSpace:
		return detectCuboidHalfSpace(reg, a, b)
	case a.Kind() == geometry.HalfSpace && b.Kind() == geometry.Cuboid:
		return detectCuboidHalfSpace(reg, b, a)
	}
	return 0
}

func newContact(bodyA, bodyB *geometry.Geometry, point, normal *vecmath.Quaternion, depth float64) *Contact {

	c := &Contact{
		Point:  point,
		Normal: normal,
		Depth:  depth,
	}
	if bodyA != nil {
		c.BodyA = bodyA.Body()
	}
	if bodyB != nil {
		c.BodyB = bodyB.Body()
	}
	return c
}

// 4.2.1 Sphere/half-space.
func detectSphereHalfSpace(reg *Registry, sphere, plane *geometry.Geometry) int {

	n := plane.Normal()
	x := sphere.Position()
	r := sphere.Radius()

	d := n.ImagDot(x) - r - plane.Offset()
	if d >= 0 {
		return 0
	}

	point := x.Clone().Sub(n.Clone().Scale(d + r))
	c := newContact(sphere, plane, point, n.Clone(), -d)
	if reg.Register(c) {
		return 1
	}
	return 0
}

// 4.2.2 Sphere/true-plane.
func detectSpherePlane(reg *Registry, sphere, plane *geometry.Geometry) int {

	n := plane.Normal()
	x := sphere.Position()
	r := sphere.Radius()

	d := n.ImagDot(x) - plane.Offset()
	if d*d > r*r {
		return 0
	}

	normal := n.Clone()
	if d < 0 {
		normal.Negate()
	}
	depth := r - math.Abs(d)
	point := x.Clone().Sub(n.Clone().Scale(d))

	c := newContact(sphere, plane, point, normal, depth)
	if reg.Register(c) {
		return 1
	}
	return 0
}

// 4.2.3 Sphere/sphere.
func detectSphereSphere(reg *Registry, a, b *geometry.Geometry) int {

	xa, xb := a.Position(), b.Position()
	ra, rb := a.Radius(), b.Radius()

	delta := xa.Clone().Sub(xb)
	rho := delta.ImagNorm()
	if rho >= ra+rb {
		return 0
	}

	var normal *vecmath.Quaternion
	if rho > 0 {
		normal = delta.Clone().Scale(1 / rho)
	} else {
		normal = vecmath.NewVector(1, 0, 0)
	}
	point := xb.Clone().Add(delta.Clone().Scale(0.5))

	c := newContact(a, b, point, normal, ra+rb-rho)
	if reg.Register(c) {
		return 1
	}
	return 0
}

// 4.2.4 Cuboid/sphere.
func detectCuboidSphere(reg *Registry, box, sphere *geometry.Geometry) int {

	h := box.HalfExtent()
	r := sphere.Radius()
	worldCenter := sphere.Position()

	boxT := &vecmath.Transform{}
	boxT.Shoemake(orientationOf(box), box.Position())
	localCenter := boxT.ApplyInverse(worldCenter)

	if math.Abs(localCenter.X) > h.X+r || math.Abs(localCenter.Y) > h.Y+r || math.Abs(localCenter.Z) > h.Z+r {
		return 0
	}

	closest := vecmath.NewVector(
		clamp(localCenter.X, -h.X, h.X),
		clamp(localCenter.Y, -h.Y, h.Y),
		clamp(localCenter.Z, -h.Z, h.Z),
	)

	diff := localCenter.Clone().Sub(closest)
	distSq := diff.ImagDot(diff)
	if distSq > r*r {
		return 0
	}

	worldClosest := boxT.Apply(closest)
	dist := math.Sqrt(distSq)

	var normal *vecmath.Quaternion
	if dist > 1e-12 {
		normal = worldClosest.Clone().Sub(worldCenter).Scale(1 / dist)
	} else {
		normal = vecmath.NewVector(0, 1, 0)
	}

	c := newContact(box, sphere, worldClosest, normal, r-dist)
	if reg.Register(c) {
		return 1
	}
	return 0
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {

	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// orientationOf recovers the orientation quaternion implied by a
// geometry's transform, used where a detector needs to build its own
// Transform (the body's own Transform() already embeds it, but static
// scenery has only an identity transform).
func orientationOf(g *geometry.Geometry) *vecmath.Quaternion {

	if b := g.Body(); b != nil {
		return b.Orientation()
	}
	return vecmath.Identity()
}

// boxVertices returns the 8 world-frame vertices of a cuboid.
func boxVertices(box *geometry.Geometry) [8]*vecmath.Quaternion {

	h := box.HalfExtent()
	pos := box.Position()
	ax, ay, az := box.Axis(0), box.Axis(1), box.Axis(2)

	var verts [8]*vecmath.Quaternion
	idx := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				v := pos.Clone().
					Add(ax.Clone().Scale(sx * h.X)).
					Add(ay.Clone().Scale(sy * h.Y)).
					Add(az.Clone().Scale(sz * h.Z))
				verts[idx] = v
				idx++
			}
		}
	}
	return verts
}

// 4.2.5 Cuboid/half-space. When any box axis is within parallelAxisTol
// of perpendicular to the plane normal (a face effectively parallel to
// the plane), a single contact is registered at the vertex most inside
// the plane; otherwise one contact is registered per vertex at or below
// the plane, up to eight. The switch between the two cases at the 1e-4
// boundary is discontinuous: a slight tilt past it changes one contact
// into several.
func detectCuboidHalfSpace(reg *Registry, box, plane *geometry.Geometry) int {

	n := plane.Normal()
	d := plane.Offset()
	h := box.HalfExtent()
	pos := box.Position()
	ax, ay, az := box.Axis(0), box.Axis(1), box.Axis(2)

	dotX, dotY, dotZ := ax.ImagDot(n), ay.ImagDot(n), az.ImagDot(n)
	reach := h.X*math.Abs(dotX) + h.Y*math.Abs(dotY) + h.Z*math.Abs(dotZ)
	centerDist := pos.ImagDot(n) - d
	if centerDist > reach {
		return 0 // quick rejection: box entirely on the positive side
	}

	parallelCount := 0
	if math.Abs(dotX) < parallelAxisTol {
		parallelCount++
	}
	if math.Abs(dotY) < parallelAxisTol {
		parallelCount++
	}
	if math.Abs(dotZ) < parallelAxisTol {
		parallelCount++
	}

	verts := boxVertices(box)
	count := 0

	if parallelCount > 0 {
		// One face is effectively parallel to the plane: synthesize a
		// single contact at the vertex most inside the plane.
		bestIdx, bestPen := -1, math.Inf(-1)
		for i, v := range verts {
			pen := d - v.ImagDot(n)
			if pen > bestPen {
				bestPen = pen
				bestIdx = i
			}
		}
		if bestPen >= 0 {
			point := verts[bestIdx].Clone().Add(n.Clone().Scale(0.5 * bestPen))
			c := newContact(box, plane, point, n.Clone(), bestPen)
			if reg.Register(c) {
				count++
			}
		}
		return count
	}

	for _, v := range verts {
		pen := d - v.ImagDot(n)
		if pen < 0 {
			continue
		}
		point := v.Clone().Add(n.Clone().Scale(0.5 * pen))
		c := newContact(box, plane, point, n.Clone(), pen)
		if !reg.Register(c) {
			break
		}
		count++
	}
	return count
}

// 4.2.6 Cuboid/cuboid, Separating Axis Theorem.
func detectCuboidCuboid(reg *Registry, a, b *geometry.Geometry) int {

	ha, hb := a.HalfExtent(), b.HalfExtent()
	posA, posB := a.Position(), b.Position()
	axesA := [3]*vecmath.Quaternion{a.Axis(0), a.Axis(1), a.Axis(2)}
	axesB := [3]*vecmath.Quaternion{b.Axis(0), b.Axis(1), b.Axis(2)}
	hA := [3]float64{ha.X, ha.Y, ha.Z}
	hB := [3]float64{hb.X, hb.Y, hb.Z}

	deltaX := posA.Clone().Sub(posB)

	type candidate struct {
		axis    *vecmath.Quaternion
		kind    int // 0 = A axis, 1 = B axis, 2 = cross axis
		ia, ib  int
	}

	candidates := make([]candidate, 0, 15)
	for i := 0; i < 3; i++ {
		candidates = append(candidates, candidate{axesA[i], 0, i, -1})
	}
	for i := 0; i < 3; i++ {
		candidates = append(candidates, candidate{axesB[i], 1, -1, i})
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := axesA[i].ImagCross(axesB[j])
			candidates = append(candidates, candidate{cross, 2, i, j})
		}
	}

	bestPen := math.Inf(1)
	var bestAxis *vecmath.Quaternion
	bestKind, bestI, bestJ := -1, -1, -1
	bestFacePen, bestFaceKind := math.Inf(1), -1

	for _, cand := range candidates {
		normSq := cand.axis.ImagDot(cand.axis)
		if cand.kind == 2 && normSq < crossAxisTolSq {
			continue
		}
		u := cand.axis
		if cand.kind == 2 {
			u = cand.axis.Clone().Normalize()
		}

		projA := boxExtentAlong(hA, axesA, u)
		projB := boxExtentAlong(hB, axesB, u)
		pen := projA + projB - math.Abs(deltaX.ImagDot(u))
		if pen < 0 {
			return 0 // separating axis found
		}
		if pen < bestPen {
			bestPen = pen
			bestAxis = u
			bestKind, bestI, bestJ = cand.kind, cand.ia, cand.ib
		}
		if cand.kind != 2 && pen < bestFacePen {
			bestFacePen = pen
			bestFaceKind = cand.kind
		}
	}

	if bestAxis == nil {
		return 0
	}

	// Orient the winning axis so it points from B toward A, the
	// direction an impulse must push A to separate the pair.
	n := bestAxis.Clone()
	if deltaX.ImagDot(n) < 0 {
		n.Negate()
	}

	var point *vecmath.Quaternion
	switch bestKind {
	case 0:
		// A's face, B's vertex: B's vertex nearest A lies toward +n.
		point = vertexToward(b, hB, axesB, n)
	case 1:
		// B's face, A's vertex: A's vertex nearest B lies toward -n.
		point = vertexToward(a, hA, axesA, n.Clone().Negate())
	default:
		// When the nearest-point solve degenerates, the contact falls
		// back to the edge of the body whose face axis lost the overlap
		// race: A's edge iff the best face axis belonged to B.
		useA := bestFaceKind == 1
		point = edgeEdgeContact(a, hA, axesA, b, hB, axesB, n, bestI, bestJ, useA)
	}

	c := newContact(a, b, point, n, bestPen)
	if reg.Register(c) {
		return 1
	}
	return 0
}

// boxExtentAlong returns proj_box(u) = sum_i h_i * |u . axis_i|, the
// projection half-width of a box onto unit axis u.
func boxExtentAlong(h [3]float64, axes [3]*vecmath.Quaternion, u *vecmath.Quaternion) float64 {

	return h[0]*math.Abs(axes[0].ImagDot(u)) + h[1]*math.Abs(axes[1].ImagDot(u)) + h[2]*math.Abs(axes[2].ImagDot(u))
}

// vertexToward returns the world-frame vertex of a box displaced
// furthest in the n direction: on each local axis the half-extent sign
// follows the sign of axis.n.
func vertexToward(g *geometry.Geometry, h [3]float64, axes [3]*vecmath.Quaternion, n *vecmath.Quaternion) *vecmath.Quaternion {

	pos := g.Position()
	v := pos.Clone()
	for i := 0; i < 3; i++ {
		s := 1.0
		if axes[i].ImagDot(n) < 0 {
			s = -1.0
		}
		v.Add(axes[i].Clone().Scale(s * h[i]))
	}
	return v
}

// edgeEdgeContact computes the closest-approach contact point between
// the edge of A and the edge of B most aligned with the contact
// normal, for a cross-product separating axis. When the two-line
// solve degenerates to an edge-face contact, useA picks which body's
// edge midpoint stands in for the closest point.
func edgeEdgeContact(a *geometry.Geometry, hA [3]float64, axesA [3]*vecmath.Quaternion, b *geometry.Geometry, hB [3]float64, axesB [3]*vecmath.Quaternion, n *vecmath.Quaternion, ia, ib int, useA bool) *vecmath.Quaternion {

	posA, posB := a.Position(), b.Position()

	// With n pointing from B toward A, A's contacting edge sits on the
	// face of A turned toward B (against n) and B's on the face turned
	// toward A (along n). Axes nearly perpendicular to n leave the edge
	// midpoint coordinate at zero.
	edgeOriginA := posA.Clone()
	edgeDirA := axesA[ia].Clone()
	for i := 0; i < 3; i++ {
		if i == ia {
			continue
		}
		dot := axesA[i].ImagDot(n)
		if math.Abs(dot) < parallelAxisTol {
			continue
		}
		sign := -1.0
		if dot < 0 {
			sign = 1.0
		}
		edgeOriginA.Add(axesA[i].Clone().Scale(sign * hA[i]))
	}

	edgeOriginB := posB.Clone()
	edgeDirB := axesB[ib].Clone()
	for i := 0; i < 3; i++ {
		if i == ib {
			continue
		}
		dot := axesB[i].ImagDot(n)
		if math.Abs(dot) < parallelAxisTol {
			continue
		}
		sign := 1.0
		if dot < 0 {
			sign = -1.0
		}
		edgeOriginB.Add(axesB[i].Clone().Scale(sign * hB[i]))
	}

	return closestPointOnEdges(edgeOriginA, edgeDirA, hA[ia], edgeOriginB, edgeDirB, hB[ib], useA)
}

// closestPointOnEdges finds the closest approach of two edges given by
// origin +/- halfLength*dir, via the standard two-line nearest-point
// formula. If the lines are near-parallel, or either solved parameter
// exceeds its edge's half-extent, the contact degenerates to edge-face
// and the midpoint of one edge (useA selecting which) is kept instead.
// Otherwise the contact point is the midpoint of the two nearest
// points.
func closestPointOnEdges(originA, dirA *vecmath.Quaternion, halfA float64, originB, dirB *vecmath.Quaternion, halfB float64, useA bool) *vecmath.Quaternion {

	r := originA.Clone().Sub(originB)
	smA := dirA.ImagDot(dirA)
	smB := dirB.ImagDot(dirB)
	dpAB := dirA.ImagDot(dirB)
	dpA := dirA.ImagDot(r)
	dpB := dirB.ImagDot(r)

	denom := smA*smB - dpAB*dpAB
	if math.Abs(denom) < 1e-12 {
		if useA {
			return originA.Clone()
		}
		return originB.Clone()
	}

	s := (dpAB*dpB - smB*dpA) / denom
	t := (smA*dpB - dpAB*dpA) / denom
	if s < -halfA || s > halfA || t < -halfB || t > halfB {
		if useA {
			return originA.Clone()
		}
		return originB.Clone()
	}

	pA := originA.Clone().Add(dirA.Clone().Scale(s))
	pB := originB.Clone().Add(dirB.Clone().Scale(t))
	return pA.Add(pB).Scale(0.5)
}
