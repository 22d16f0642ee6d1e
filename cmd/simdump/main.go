// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// simdump is a minimum driver for the rigid body world: it builds a
// scene (from a YAML file or a built-in default), steps it for a fixed
// duration and prints periodic dumps of body state, mirroring
// hellog3n's role as the simplest possible embedder but for the
// headless physics core instead of the renderer.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/polyhull/rigid/scene"
	"github.com/polyhull/rigid/util/logger"
	"github.com/polyhull/rigid/world"
)

const defaultScene = `
gravity: 0 -9.8 0
restitution: 0.5
friction: 0.3
objects:
  - type: HalfSpace
    name: ground
    normal: 0 1 0
    offset: 0
  - type: Sphere
    name: ball
    radius: 0.5
    mass: 1
    position: 0 5 0
    velocity: 0.5 0 0
  - type: Cuboid
    name: crate
    halfextents: 0.4 0.4 0.4
    mass: 2
    position: 1.5 6 0
    angularvelocity: 0 0.2 0
`

func main() {

	duration := flag.Float64("duration", 2.0, "simulated seconds to run")
	dt := flag.Float64("dt", 0.01, "fixed timestep in seconds")
	every := flag.Int("every", 25, "dump state every N steps")
	sceneFile := flag.String("scene", "", "YAML scene file (built-in scene if empty)")
	logLevel := flag.String("log", "info", "log level: debug|info|warn|error")
	flag.Parse()

	if err := logger.SetLevelByName(*logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	w, err := loadScene(*sceneFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	steps := int(*duration / *dt)
	for i := 0; i < steps; i++ {
		if i%*every == 0 {
			fmt.Print(w.Dump())
		}
		w.Step(*dt)
	}
	fmt.Print(w.Dump())
}

// loadScene builds the world from the given YAML scene file, or from
// the built-in default scene if path is empty.
func loadScene(path string) (*world.World, error) {

	b := scene.NewBuilder()
	var err error
	if path == "" {
		err = b.ParseString(defaultScene)
	} else {
		err = b.ParseFile(path)
	}
	if err != nil {
		return nil, err
	}
	return b.Build()
}
