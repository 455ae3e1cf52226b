package scenepack

import (
	"fmt"
	"math/rand"
	"sort"

	"spheretrace/geometry"
	"spheretrace/material"
	"spheretrace/scene"
	"spheretrace/vmath/vec3"
)

type builder func(rng *rand.Rand, spherePos vec3.T) *Pack

var builtins = map[string]builder{
	"random": randomScene,
	"grid":   gridScene,
	"four":   fourSphereScene,
	"two":    twoSphereScene,
}

// BuiltinNames lists the scenes Builtin knows, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin builds one of the stock scenes.  spherePos places the glass sphere
// of the "random" and "grid" scenes; rng is only drawn from by "grid".
func Builtin(name string, rng *rand.Rand, spherePos vec3.T) (*Pack, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown builtin scene %q (known: %v)", name, BuiltinNames())
	}
	return b(rng, spherePos), nil
}

var randomSceneView = &View{
	LookFrom:    vec3.T{3, 3, 2},
	LookAt:      vec3.T{0, 0, -1},
	VUp:         vec3.T{0, 1, 0},
	VFOVDegrees: 60,
}

// addRandomSceneLandmarks adds the three large spheres that sit on the ground
// of the random scenes.
func addRandomSceneLandmarks(sc *scene.Scene, spherePos vec3.T) {
	sc.AddSphere(geometry.Sphere{
		Center:   spherePos,
		Radius:   1,
		Material: material.Dielectric(1.5),
	})
	sc.AddSphere(geometry.Sphere{
		Center:   vec3.T{-4, 1, 0},
		Radius:   1,
		Material: material.Metal(vec3.T{0.4, 0.2, 0.1}, 0),
	})
	sc.AddSphere(geometry.Sphere{
		Center:   vec3.T{4, 1, 0},
		Radius:   1,
		Material: material.Metal(vec3.T{0.7, 0.6, 0.5}, 0),
	})
}

func addGround(sc *scene.Scene) {
	sc.AddSphere(geometry.Sphere{
		Center:   vec3.T{0, -1000, 0},
		Radius:   1000,
		Material: material.Lambertian(vec3.T{0.5, 0.5, 0.5}),
	})
}

func randomScene(rng *rand.Rand, spherePos vec3.T) *Pack {
	sc := &scene.Scene{}
	addGround(sc)
	addRandomSceneLandmarks(sc, spherePos)

	view := *randomSceneView
	return &Pack{Scene: sc, View: &view}
}

// gridScene scatters small spheres over a 22x22 grid around the landmarks.
func gridScene(rng *rand.Rand, spherePos vec3.T) *Pack {
	sc := &scene.Scene{}
	addGround(sc)

	keepClear := vec3.T{4, 0, 2}
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := rng.Float64()
			center := vec3.T{
				float64(a) + 0.9*rng.Float64(),
				0.2,
				float64(b) + 0.9*rng.Float64(),
			}
			if vec3.SubVV(center, keepClear).Norm() <= 0.9 {
				continue
			}

			var m material.Material
			switch {
			case chooseMat < 0.8:
				m = material.Lambertian(vec3.T{rng.Float64(), rng.Float64(), rng.Float64()})
			case chooseMat < 0.95:
				albedo := vec3.T{0.5 * rng.Float64(), 0.5 * rng.Float64(), 0.5 * rng.Float64()}
				m = material.Metal(albedo, 0.5*rng.Float64())
			default:
				m = material.Dielectric(1.5)
			}

			sc.AddSphere(geometry.Sphere{Center: center, Radius: 0.2, Material: m})
		}
	}

	addRandomSceneLandmarks(sc, spherePos)

	view := *randomSceneView
	return &Pack{Scene: sc, View: &view}
}

// fourSphereScene is a red ball between two metal balls on a grey ground,
// seen through the default camera.
func fourSphereScene(rng *rand.Rand, spherePos vec3.T) *Pack {
	sc := &scene.Scene{}
	sc.AddSphere(geometry.Sphere{
		Center:   vec3.T{0, 0, -1},
		Radius:   0.5,
		Material: material.Lambertian(vec3.T{0.8, 0.3, 0.3}),
	})
	sc.AddSphere(geometry.Sphere{
		Center:   vec3.T{0, -100.5, -1},
		Radius:   100,
		Material: material.Lambertian(vec3.T{0.8, 0.8, 0.8}),
	})
	sc.AddSphere(geometry.Sphere{
		Center:   vec3.T{1, 0, -1},
		Radius:   0.5,
		Material: material.Metal(vec3.T{0.8, 0.6, 0.2}, 0),
	})
	sc.AddSphere(geometry.Sphere{
		Center:   vec3.T{-1, 0, -1},
		Radius:   0.5,
		Material: material.Metal(vec3.T{0.8, 0.8, 0.8}, 0),
	})
	return &Pack{Scene: sc}
}

// twoSphereScene is a red ball resting on a large yellow-green ground
// sphere, seen through the default camera.
func twoSphereScene(rng *rand.Rand, spherePos vec3.T) *Pack {
	sc := &scene.Scene{}
	sc.AddSphere(geometry.Sphere{
		Center:   vec3.T{0, 0, -1},
		Radius:   0.5,
		Material: material.Lambertian(vec3.T{0.8, 0.3, 0.3}),
	})
	sc.AddSphere(geometry.Sphere{
		Center:   vec3.T{0, -100.5, -1},
		Radius:   100,
		Material: material.Lambertian(vec3.T{0.8, 0.8, 0.0}),
	})
	return &Pack{Scene: sc}
}
