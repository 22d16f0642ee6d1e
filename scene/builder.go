// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scene builds simulation worlds from a declarative scene
// description in YAML format. The core itself has no persistence; this
// is the test-bed side of that line, the format an embedding driver
// hands to the physics world.
package scene

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/polyhull/rigid/geometry"
	"github.com/polyhull/rigid/rigidbody"
	"github.com/polyhull/rigid/vecmath"
	"github.com/polyhull/rigid/world"
)

// Builder builds a world from a scene description in YAML format.
type Builder struct {
	desc    *sceneDesc
	current string // name of the object being built, for error context
}

type sceneDesc struct {
	MaxObjects    int
	MaxCollisions int
	Gravity       string
	Restitution   *float64
	Relaxation    *float64
	Friction      *float64
	Objects       []*objectDesc
}

type objectDesc struct {
	Type            string // Sphere, Cuboid, HalfSpace, TruePlane
	Name            string // Optional name for error messages
	Radius          float64
	HalfExtents     string // 3 floats: hx hy hz
	Normal          string // 3 floats, HalfSpace and TruePlane
	Offset          float64
	Mass            float64
	Scenery         bool
	Position        string // 3 floats
	Orientation     string // 4 floats: w x y z
	Velocity        string // 3 floats
	AngularVelocity string // 3 floats
	CanDeactivate   *bool
	Damping         bool
}

const (
	descTypeSphere    = "Sphere"
	descTypeCuboid    = "Cuboid"
	descTypeHalfSpace = "HalfSpace"
	descTypeTruePlane = "TruePlane"
)

// NewBuilder creates and returns a pointer to a new scene Builder.
func NewBuilder() *Builder {

	return new(Builder)
}

// ParseString parses a string with a scene description in YAML format.
// A previously parsed description is discarded.
func (b *Builder) ParseString(desc string) error {

	var sd sceneDesc
	err := yaml.Unmarshal([]byte(desc), &sd)
	if err != nil {
		return err
	}
	b.desc = &sd
	return nil
}

// ParseFile parses the specified file, which must contain a scene
// description in YAML format.
func (b *Builder) ParseFile(filepath string) error {

	f, err := os.Open(filepath)
	if err != nil {
		return err
	}
	data, err := ioutil.ReadAll(f)
	if err != nil {
		return err
	}
	err = f.Close()
	if err != nil {
		return err
	}
	return b.ParseString(string(data))
}

// Build builds and returns a world from the previously parsed scene
// description: capacities and contact coefficients first, then each
// described geometry with its rigid body.
func (b *Builder) Build() (*world.World, error) {

	if b.desc == nil {
		return nil, fmt.Errorf("no scene description parsed")
	}

	maxObjects := b.desc.MaxObjects
	if maxObjects <= 0 {
		maxObjects = 32
	}
	maxCollisions := b.desc.MaxCollisions
	if maxCollisions <= 0 {
		maxCollisions = 64
	}
	w := world.NewWorld(maxObjects, maxCollisions)

	b.current = ""
	if b.desc.Gravity != "" {
		g, err := b.parseVector("gravity", b.desc.Gravity)
		if err != nil {
			return nil, err
		}
		w.SetGravity(g)
	}
	if b.desc.Restitution != nil {
		w.SetRestitution(*b.desc.Restitution)
	}
	if b.desc.Relaxation != nil {
		w.SetRelaxation(*b.desc.Relaxation)
	}
	if b.desc.Friction != nil {
		w.SetFriction(*b.desc.Friction)
	}

	for i, od := range b.desc.Objects {
		b.current = od.Name
		if b.current == "" {
			b.current = fmt.Sprintf("#%d", i)
		}
		g, err := b.buildObject(od)
		if err != nil {
			return nil, err
		}
		if !w.AddGeometry(g) {
			return nil, b.err("type", "world object capacity exceeded")
		}
	}

	w.Initialize()
	return w, nil
}

// buildObject builds one geometry, and its owning rigid body unless
// the object is scenery, from its description.
func (b *Builder) buildObject(od *objectDesc) (*geometry.Geometry, error) {

	switch od.Type {
	case descTypeSphere, descTypeCuboid:
		return b.buildSolid(od)
	case descTypeHalfSpace, descTypeTruePlane:
		return b.buildPlane(od)
	}
	return nil, b.err("type", "unknown object type: "+od.Type)
}

func (b *Builder) buildSolid(od *objectDesc) (*geometry.Geometry, error) {

	var body *rigidbody.Body
	if !od.Scenery {
		body = rigidbody.NewBody(od.Mass, vecmath.NewVector(0, 0, 0),
			vecmath.Identity(), vecmath.NewVector(0, 0, 0), vecmath.NewVector(0, 0, 0))
	}

	var g *geometry.Geometry
	switch od.Type {
	case descTypeSphere:
		if od.Radius <= 0 {
			return nil, b.err("radius", "sphere radius must be positive")
		}
		g = geometry.NewSphere(od.Radius, body)
	case descTypeCuboid:
		he, err := b.parseVector("halfextents", od.HalfExtents)
		if err != nil {
			return nil, err
		}
		if he.X <= 0 || he.Y <= 0 || he.Z <= 0 {
			return nil, b.err("halfextents", "cuboid half extents must be positive")
		}
		g = geometry.NewCuboid(he.X, he.Y, he.Z, body)
	}

	// Mass (and with it inertia) is installed before the initial state
	// so a described angular velocity is absorbed into angular momentum
	// through the real inertia tensor.
	g.SetMass(od.Mass)

	if body != nil {
		pos, err := b.parseVectorDefault("position", od.Position, vecmath.NewVector(0, 0, 0))
		if err != nil {
			return nil, err
		}
		orient, err := b.parseOrientation(od.Orientation)
		if err != nil {
			return nil, err
		}
		vel, err := b.parseVectorDefault("velocity", od.Velocity, vecmath.NewVector(0, 0, 0))
		if err != nil {
			return nil, err
		}
		angVel, err := b.parseVectorDefault("angularvelocity", od.AngularVelocity, vecmath.NewVector(0, 0, 0))
		if err != nil {
			return nil, err
		}
		body.SetState(pos, orient, vel, angVel)
		if od.CanDeactivate != nil {
			body.SetCanDeactivate(*od.CanDeactivate)
		}
		body.SetDamping(od.Damping)
	}
	return g, nil
}

func (b *Builder) buildPlane(od *objectDesc) (*geometry.Geometry, error) {

	n, err := b.parseVectorDefault("normal", od.Normal, vecmath.NewVector(0, 1, 0))
	if err != nil {
		return nil, err
	}
	if n.ImagNorm() == 0 {
		return nil, b.err("normal", "plane normal must be non-zero")
	}
	if od.Type == descTypeHalfSpace {
		return geometry.NewHalfSpace(n, od.Offset), nil
	}
	return geometry.NewTruePlane(n, od.Offset), nil
}

// parseOrientation parses a 4-float "w x y z" field into a quaternion,
// defaulting to the identity.
func (b *Builder) parseOrientation(field string) (*vecmath.Quaternion, error) {

	va, err := b.parseFloats("orientation", field, 4, 4)
	if err != nil {
		return nil, err
	}
	if va == nil {
		return vecmath.Identity(), nil
	}
	return vecmath.NewQuaternion(va[0], va[1], va[2], va[3]), nil
}

// parseVector parses a required 3-float field into a spatial vector.
func (b *Builder) parseVector(fname, field string) (*vecmath.Quaternion, error) {

	va, err := b.parseFloats(fname, field, 3, 3)
	if err != nil {
		return nil, err
	}
	if va == nil {
		return nil, b.err(fname, "field is required")
	}
	return vecmath.NewVector(va[0], va[1], va[2]), nil
}

// parseVectorDefault parses an optional 3-float field into a spatial
// vector, returning def when the field is empty.
func (b *Builder) parseVectorDefault(fname, field string, def *vecmath.Quaternion) (*vecmath.Quaternion, error) {

	va, err := b.parseFloats(fname, field, 3, 3)
	if err != nil {
		return nil, err
	}
	if va == nil {
		return def, nil
	}
	return vecmath.NewVector(va[0], va[1], va[2]), nil
}

// parseFloats parses a string with a list of floats with the specified
// size and returns a slice. The individual values can be separated by
// spaces or commas. An empty field returns a nil slice and no error.
func (b *Builder) parseFloats(fname, field string, min, max int) ([]float64, error) {

	field = strings.Trim(field, " ")
	if field == "" {
		return nil, nil
	}

	var parts []string
	if strings.Index(field, ",") < 0 {
		parts = strings.Fields(field)
	} else {
		parts = strings.Split(field, ",")
	}
	if len(parts) < min || len(parts) > max {
		return nil, b.err(fname, "invalid number of float values")
	}

	var values []float64
	for i := 0; i < len(parts); i++ {
		val, err := strconv.ParseFloat(strings.Trim(parts[i], " "), 64)
		if err != nil {
			return nil, b.err(fname, err.Error())
		}
		values = append(values, val)
	}
	return values, nil
}

// err creates and returns an error for the current object and field
// name with the specified message.
func (b *Builder) err(fname, msg string) error {

	return fmt.Errorf("error in object:%s field:%s -> %s", b.current, fname, msg)
}
