package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polyhull/rigid/geometry"
	"github.com/polyhull/rigid/rigidbody"
	"github.com/polyhull/rigid/vecmath"
)

func newBodyAt(mass float64, x *vecmath.Quaternion) *rigidbody.Body {

	return rigidbody.NewBody(mass, x, vecmath.Identity(), vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
}

// S6: plane culling.
func TestDetect_SpherePlaneCulling(t *testing.T) {

	plane := geometry.NewHalfSpace(vecmath.NewVector(0, 1, 0), 0)

	above := geometry.NewSphere(1, newBodyAt(1, vecmath.NewVector(0, 1.0001, 0)))
	reg := NewRegistry(8)
	n := Detect(reg, above, plane)
	assert.Equal(t, 0, n)

	reg.Reset()
	below := geometry.NewSphere(1, newBodyAt(1, vecmath.NewVector(0, 0.9999, 0)))
	n = Detect(reg, below, plane)
	assert.Equal(t, 1, n)
	assert.InDelta(t, 0.0001, reg.At(0).Depth, 1e-6)
}

func TestDetect_SphereSphere(t *testing.T) {

	a := geometry.NewSphere(1, newBodyAt(1, vecmath.NewVector(0, 0, 0)))
	b := geometry.NewSphere(1, newBodyAt(1, vecmath.NewVector(1.5, 0, 0)))

	reg := NewRegistry(8)
	n := Detect(reg, a, b)
	assert.Equal(t, 1, n)
	assert.InDelta(t, 0.5, reg.At(0).Depth, 1e-9)
}

func TestDetect_SphereSphereNoContact(t *testing.T) {

	a := geometry.NewSphere(1, newBodyAt(1, vecmath.NewVector(0, 0, 0)))
	b := geometry.NewSphere(1, newBodyAt(1, vecmath.NewVector(3, 0, 0)))

	reg := NewRegistry(8)
	n := Detect(reg, a, b)
	assert.Equal(t, 0, n)
}

// S5: box vs box edge-edge.
func TestDetect_CuboidCuboidEdgeEdge(t *testing.T) {

	a := geometry.NewCuboid(0.5, 0.5, 0.5, newBodyAt(1, vecmath.NewVector(0, 0, 0)))
	b := geometry.NewCuboid(0.5, 0.5, 0.5, newBodyAt(1, vecmath.NewVector(0.9, 0.9, 0.9)))

	reg := NewRegistry(8)
	n := Detect(reg, a, b)
	assert.Equal(t, 1, n)
	assert.InDelta(t, 0.1, reg.At(0).Depth, 0.02)
}

func TestDetect_CuboidHalfSpace(t *testing.T) {

	box := geometry.NewCuboid(0.5, 0.5, 0.5, newBodyAt(1, vecmath.NewVector(0, 0.4, 0)))
	plane := geometry.NewHalfSpace(vecmath.NewVector(0, 1, 0), 0)

	reg := NewRegistry(16)
	n := Detect(reg, box, plane)
	assert.True(t, n > 0)
	for i := 0; i < n; i++ {
		assert.True(t, reg.At(i).Depth >= 0)
	}
}

func TestDetect_CuboidSphere(t *testing.T) {

	box := geometry.NewCuboid(1, 1, 1, newBodyAt(1, vecmath.NewVector(0, 0, 0)))
	sphere := geometry.NewSphere(0.5, newBodyAt(1, vecmath.NewVector(1.2, 0, 0)))

	reg := NewRegistry(8)
	n := Detect(reg, box, sphere)
	assert.Equal(t, 1, n)
	assert.InDelta(t, 0.3, reg.At(0).Depth, 1e-6)
}

func TestRegistry_SaturatesSilently(t *testing.T) {

	reg := NewRegistry(1)
	a := geometry.NewSphere(1, newBodyAt(1, vecmath.NewVector(0, 0, 0)))
	b := geometry.NewSphere(1, newBodyAt(1, vecmath.NewVector(0.5, 0, 0)))
	c := geometry.NewSphere(1, newBodyAt(1, vecmath.NewVector(0, 0.5, 0)))

	assert.Equal(t, 1, Detect(reg, a, b))
	assert.False(t, reg.HasSpaceForMoreContacts())
	assert.Equal(t, 0, Detect(reg, a, c))
	assert.Equal(t, 1, reg.Count())
}
