package scenepack

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"spheretrace/camera"
	"spheretrace/geometry"
	"spheretrace/material"
	"spheretrace/scene"
	"spheretrace/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/xerrors"
)

const exampleScene = `
camera { look_from { x: 3 y: 3 z: 2 } look_at { z: -1 } v_up { y: 1 } vfov_degrees: 60 }
sphere { center { y: -1000 } radius: 1000 lambertian { albedo { x: 0.5 y: 0.5 z: 0.5 } } }
sphere { center { x: 4 y: 1 } radius: 1 metal { albedo { x: 0.7 y: 0.6 z: 0.5 } fuzz: 0 } }
sphere { center { y: 1 } radius: 1 dielectric { refractive_index: 1.5 } }
`

func TestParseScene(t *testing.T) {
	got, err := ParseScene([]byte(exampleScene))
	if err != nil {
		t.Fatalf("Error while parsing: %v", err)
	}

	want := &Pack{
		Scene: &scene.Scene{
			Spheres: []geometry.Sphere{
				{Center: vec3.T{0, -1000, 0}, Radius: 1000, Material: material.Lambertian(vec3.T{0.5, 0.5, 0.5})},
				{Center: vec3.T{4, 1, 0}, Radius: 1, Material: material.Metal(vec3.T{0.7, 0.6, 0.5}, 0)},
				{Center: vec3.T{0, 1, 0}, Radius: 1, Material: material.Dielectric(1.5)},
			},
		},
		View: &View{
			LookFrom:    vec3.T{3, 3, 2},
			LookAt:      vec3.T{0, 0, -1},
			VUp:         vec3.T{0, 1, 0},
			VFOVDegrees: 60,
		},
	}

	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("bad scene; diff (-got +want)\n%s", diff)
	}
}

func TestParseSceneWithoutCamera(t *testing.T) {
	p, err := ParseScene([]byte(`sphere { radius: 2 dielectric { refractive_index: 1.3 } }`))
	if err != nil {
		t.Fatalf("Error while parsing: %v", err)
	}
	if p.View != nil {
		t.Errorf("View = %+v, want nil", p.View)
	}

	cam, err := p.Camera(2)
	if err != nil {
		t.Fatalf("Error while building camera: %v", err)
	}
	if diff := cmp.Diff(cam, camera.Default()); diff != "" {
		t.Errorf("camera is not the default; diff (-got +want)\n%s", diff)
	}
}

func TestParseSceneValidation(t *testing.T) {
	testCases := []struct {
		desc      string
		text      string
		wantField string
	}{
		{
			desc:      "no material",
			text:      `sphere { radius: 1 }`,
			wantField: "sphere[0]",
		},
		{
			desc:      "zero radius",
			text:      `sphere { lambertian {} } sphere { radius: 0 lambertian {} }`,
			wantField: "sphere[0].radius",
		},
		{
			desc:      "negative radius on second sphere",
			text:      `sphere { radius: 1 lambertian {} } sphere { radius: -1 lambertian {} }`,
			wantField: "sphere[1].radius",
		},
		{
			desc:      "fuzz out of range",
			text:      `sphere { radius: 1 metal { fuzz: 1.5 } }`,
			wantField: "sphere[0].metal.fuzz",
		},
		{
			desc:      "negative albedo",
			text:      `sphere { radius: 1 lambertian { albedo { x: -1 } } }`,
			wantField: "sphere[0].lambertian",
		},
		{
			desc:      "zero refractive index",
			text:      `sphere { radius: 1 dielectric {} }`,
			wantField: "sphere[0].dielectric",
		},
		{
			desc:      "refractive index below one",
			text:      `sphere { radius: 1 dielectric { refractive_index: 0.5 } }`,
			wantField: "sphere[0].dielectric",
		},
		{
			desc:      "camera looking at itself",
			text:      `camera { look_from { x: 1 } look_at { x: 1 } v_up { y: 1 } vfov_degrees: 40 }`,
			wantField: "camera.look_at",
		},
		{
			desc:      "camera without up",
			text:      `camera { look_at { z: -1 } vfov_degrees: 40 }`,
			wantField: "camera.v_up",
		},
		{
			desc:      "camera without field of view",
			text:      `camera { look_at { z: -1 } v_up { y: 1 } }`,
			wantField: "camera.vfov_degrees",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := ParseScene([]byte(tc.text))
			if err == nil {
				t.Fatalf("ParseScene succeeded, want a validation error")
			}

			var verr *ValidationError
			if !xerrors.As(err, &verr) {
				t.Fatalf("ParseScene error %v is not a *ValidationError", err)
			}
			if verr.Field != tc.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tc.wantField)
			}
		})
	}
}

func TestParseSceneSyntaxErrors(t *testing.T) {
	testCases := []struct {
		desc string
		text string
	}{
		{"two materials", `sphere { radius: 1 lambertian {} metal {} }`},
		{"unknown field", `sphere { radius: 1 plastic {} }`},
		{"garbage", `this is not a scene`},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if _, err := ParseScene([]byte(tc.text)); err == nil {
				t.Errorf("ParseScene(%q) succeeded", tc.text)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, name := range BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			want, err := Builtin(name, rand.New(rand.NewSource(3)), vec3.T{0, 1, 0})
			if err != nil {
				t.Fatalf("Error while building scene: %v", err)
			}

			text, err := MarshalScene(want)
			if err != nil {
				t.Fatalf("Error while marshaling: %v", err)
			}

			got, err := ParseScene(text)
			if err != nil {
				t.Fatalf("Error while parsing marshaled scene: %v\n%s", err, text)
			}

			if diff := cmp.Diff(got, want); diff != "" {
				t.Errorf("bad round trip; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestLoadScene(t *testing.T) {
	name := filepath.Join(t.TempDir(), "scene.textproto")
	if err := os.WriteFile(name, []byte(exampleScene), 0644); err != nil {
		t.Fatalf("Error while writing scene file: %v", err)
	}

	p, err := LoadScene(name)
	if err != nil {
		t.Fatalf("Error while loading: %v", err)
	}
	if got := len(p.Scene.Spheres); got != 3 {
		t.Errorf("loaded %d spheres, want 3", got)
	}

	if _, err := LoadScene(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("LoadScene of a missing file succeeded")
	}
}

func TestBuiltin(t *testing.T) {
	if _, err := Builtin("nope", nil, vec3.T{}); err == nil {
		t.Errorf("Builtin of an unknown name succeeded")
	}

	if diff := cmp.Diff(BuiltinNames(), []string{"four", "grid", "random", "two"}); diff != "" {
		t.Errorf("bad builtin names; diff (-got +want)\n%s", diff)
	}

	random, err := Builtin("random", nil, vec3.T{0, 1, 0})
	if err != nil {
		t.Fatalf("Error while building random scene: %v", err)
	}
	if got := len(random.Scene.Spheres); got != 4 {
		t.Errorf("random scene has %d spheres, want 4", got)
	}
	if got := random.Scene.Spheres[1]; got.Center != (vec3.T{0, 1, 0}) || got.Material != material.Dielectric(1.5) {
		t.Errorf("glass sphere = %+v", got)
	}
	if _, err := random.Camera(1.5); err != nil {
		t.Errorf("Error while building random scene camera: %v", err)
	}

	for _, name := range BuiltinNames() {
		p, err := Builtin(name, rand.New(rand.NewSource(1)), vec3.T{0, 1, 0})
		if err != nil {
			t.Fatalf("Error while building %q: %v", name, err)
		}
		if err := p.Scene.Validate(); err != nil {
			t.Errorf("builtin %q is invalid: %v", name, err)
		}
	}
}

func TestGridScene(t *testing.T) {
	a, _ := Builtin("grid", rand.New(rand.NewSource(5)), vec3.T{0, 1, 0})
	b, _ := Builtin("grid", rand.New(rand.NewSource(5)), vec3.T{0, 1, 0})
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("grid scene is not deterministic; diff (-first +second)\n%s", diff)
	}

	// Ground, 22x22 cells less the few near (4, 0, 2), and three landmarks.
	n := len(a.Scene.Spheres)
	if n < 1+22*22-6+3 || n > 1+22*22+3 {
		t.Errorf("grid scene has %d spheres", n)
	}

	keepClear := vec3.T{4, 0, 2}
	for _, sp := range a.Scene.Spheres[1 : n-3] {
		if sp.Radius != 0.2 {
			t.Fatalf("grid sphere has radius %v", sp.Radius)
		}
		if vec3.SubVV(sp.Center, keepClear).Norm() <= 0.9 {
			t.Fatalf("grid sphere at %v is too close to %v", sp.Center, keepClear)
		}
	}
}
