package scene

import (
	"math"
	"math/rand"
	"testing"

	"spheretrace/geometry"
	"spheretrace/material"
	"spheretrace/ray"
	"spheretrace/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func segment(point, slope vec3.T) ray.RaySegment {
	return ray.RaySegment{
		TheRay:     ray.Ray{Point: point, Slope: slope},
		TheSegment: ray.Span{Lo: hitEpsilon, Hi: math.Inf(1)},
	}
}

func TestRayIntersectClosestHitIgnoresOrder(t *testing.T) {
	near := geometry.Sphere{Center: vec3.T{0, 0, -2}, Radius: 0.5, Material: material.Lambertian(vec3.T{1, 0, 0})}
	far := geometry.Sphere{Center: vec3.T{0, 0, -6}, Radius: 1, Material: material.Lambertian(vec3.T{0, 1, 0})}
	query := segment(vec3.T{}, vec3.T{0, 0, -1})

	for _, order := range [][]geometry.Sphere{{near, far}, {far, near}} {
		sc := &Scene{}
		for _, sp := range order {
			sc.AddSphere(sp)
		}

		h, ok := sc.Hit(query)
		if !ok {
			t.Fatalf("expected a hit")
		}
		if math.Abs(h.T-1.5) > 1e-12 {
			t.Errorf("hit T = %v, want 1.5", h.T)
		}
		if h.Material != near.Material {
			t.Errorf("hit material = %v, want the near sphere's", h.Material)
		}
	}
}

func TestRayIntersectTieGoesToFirstSphere(t *testing.T) {
	sc := &Scene{}
	sc.AddSphere(geometry.Sphere{Center: vec3.T{0, 0, -3}, Radius: 1, Material: material.Lambertian(vec3.T{1, 0, 0})})
	sc.AddSphere(geometry.Sphere{Center: vec3.T{0, 0, -3}, Radius: 1, Material: material.Metal(vec3.T{0, 1, 0}, 0)})

	c, idx := sc.RayIntersect(segment(vec3.T{}, vec3.T{0, 0, -1}))
	if idx != 0 {
		t.Errorf("RayIntersect index = %d, want 0", idx)
	}
	if c.T != 2 {
		t.Errorf("RayIntersect T = %v, want 2", c.T)
	}
}

func TestRayIntersectEmptyScene(t *testing.T) {
	sc := &Scene{}
	c, idx := sc.RayIntersect(segment(vec3.T{}, vec3.T{0, 0, -1}))
	if idx != -1 || !c.IsNaN() {
		t.Errorf("RayIntersect on empty scene = (%v, %d), want a NaN contact and -1", c, idx)
	}
}

func TestBackground(t *testing.T) {
	testCases := []struct {
		desc  string
		slope vec3.T
		want  vec3.T
	}{
		{"straight up", vec3.T{0, 3, 0}, vec3.T{0.5, 0.7, 1.0}},
		{"straight down", vec3.T{0, -1, 0}, vec3.T{1, 1, 1}},
		{"horizontal", vec3.T{0, 0, -2}, vec3.T{0.75, 0.85, 1.0}},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := Background(ray.Ray{Slope: tc.slope})
			if diff := cmp.Diff(got, tc.want, approx); diff != "" {
				t.Errorf("bad background; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestEmptySceneSamplesBackground(t *testing.T) {
	sc := &Scene{}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		r := ray.Ray{Slope: vec3.RandomInUnitSphere(rng)}
		if got, want := sc.SampleRay(r, rng, MaxDepth), Background(r); got != want {
			t.Fatalf("SampleRay(%v) = %v, want background %v", r, got, want)
		}
	}
}

func TestDepthCapIsBlack(t *testing.T) {
	sc := &Scene{}
	sc.AddSphere(geometry.Sphere{Center: vec3.T{0, 0, -1}, Radius: 0.5, Material: material.Lambertian(vec3.T{1, 1, 1})})
	r := ray.Ray{Slope: vec3.T{0, 0, -1}}

	rng := rand.New(rand.NewSource(2))
	if got := sc.Color(r, MaxDepth, rng); got != vec3.Zero {
		t.Errorf("Color at the depth cap = %v, want black", got)
	}
	if got := sc.SampleRay(r, rng, 0); got != vec3.Zero {
		t.Errorf("SampleRay with no bounces allowed = %v, want black", got)
	}
}

func TestMirrorBounce(t *testing.T) {
	albedo := vec3.T{0.9, 0.8, 0.7}
	sc := &Scene{}
	sc.AddSphere(geometry.Sphere{Center: vec3.T{0, -1000, 0}, Radius: 1000, Material: material.Metal(albedo, 0)})

	r := ray.Ray{Point: vec3.T{0, 1, 0}, Slope: vec3.T{1, -1, 0}}
	h, ok := sc.Hit(segment(r.Point, r.Slope))
	if !ok {
		t.Fatalf("ray missed the mirror")
	}
	info, ok := h.Material.Scatter(r, h.Contact, nil)
	if !ok {
		t.Fatalf("mirror absorbed the ray")
	}
	want := vec3.MulVV(albedo, Background(info.IncidentRay))

	// Only one bounce is left, and a perfect mirror draws nothing from the
	// generator.
	got := sc.Color(r, MaxDepth-1, rand.New(rand.NewSource(1)))
	if diff := cmp.Diff(got, want, approx); diff != "" {
		t.Errorf("bad mirror color; diff (-got +want)\n%s", diff)
	}
}

func TestAbsorbedPathIsBlack(t *testing.T) {
	// A grazing hit on a fully fuzzy metal ball is often pushed under the
	// surface.
	sc := &Scene{}
	sc.AddSphere(geometry.Sphere{Center: vec3.T{0, -1, 0}, Radius: 1, Material: material.Metal(vec3.T{1, 1, 1}, 1)})

	r := ray.Ray{Point: vec3.T{5, 1e-3, 0}, Slope: vec3.T{-1, -1e-3, 0}}
	rng := rand.New(rand.NewSource(3))
	black := 0
	for i := 0; i < 200; i++ {
		if sc.SampleRay(r, rng, MaxDepth) == vec3.Zero {
			black++
		}
	}
	if black == 0 {
		t.Errorf("no grazing fuzzy reflection was absorbed")
	}
}

func TestVarianceShrinksWithSamples(t *testing.T) {
	sc := twoSphereScene()
	r := ray.Ray{Slope: vec3.T{0.05, -0.02, -1}}

	variance := func(ns int) float64 {
		const trials = 300
		var sum, sumSq float64
		for trial := 0; trial < trials; trial++ {
			rng := rand.New(rand.NewSource(int64(trial)))
			var acc vec3.T
			for i := 0; i < ns; i++ {
				acc = vec3.AddVV(acc, sc.SampleRay(r, rng, MaxDepth))
			}
			est := acc[0] / float64(ns)
			sum += est
			sumSq += est * est
		}
		mean := sum / trials
		return sumSq/trials - mean*mean
	}

	prev := variance(1)
	if prev == 0 {
		t.Fatalf("single-sample estimates have no variance")
	}
	for _, ns := range []int{4, 16, 64} {
		cur := variance(ns)
		if cur >= prev {
			t.Errorf("variance with %d samples is %v, not below %v", ns, cur, prev)
		}
		prev = cur
	}
}

func TestValidate(t *testing.T) {
	sc := &Scene{}
	sc.AddSphere(geometry.Sphere{Center: vec3.T{}, Radius: 1, Material: material.Dielectric(1.5)})
	if err := sc.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	sc.AddSphere(geometry.Sphere{Center: vec3.T{}, Radius: -1, Material: material.Dielectric(1.5)})
	err := sc.Validate()
	serr, ok := err.(*SphereError)
	if !ok {
		t.Fatalf("Validate() = %v, want a *SphereError", err)
	}
	if serr.Index != 1 {
		t.Errorf("SphereError.Index = %d, want 1", serr.Index)
	}
}
