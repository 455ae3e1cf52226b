package scene

import (
	"fmt"
	"math"
	"math/rand"

	"spheretrace/contact"
	"spheretrace/geometry"
	"spheretrace/material"
	"spheretrace/ray"
	"spheretrace/rendermetrics"
	"spheretrace/vmath/vec3"
)

// MaxDepth is the number of bounces after which Color gives up on a path.
const MaxDepth = 50

// hitEpsilon keeps scattered rays from hitting the surface they leave.
const hitEpsilon = 0.001

var (
	skyHorizon = vec3.T{1.0, 1.0, 1.0}
	skyZenith  = vec3.T{0.5, 0.7, 1.0}
)

// Scene is an ordered list of spheres.  It is built with AddSphere and must
// not change while rendering.
type Scene struct {
	Spheres []geometry.Sphere
}

func (s *Scene) AddSphere(sp geometry.Sphere) int {
	s.Spheres = append(s.Spheres, sp)
	return len(s.Spheres) - 1
}

// Validate checks every sphere in the scene.
func (s *Scene) Validate() error {
	for i := range s.Spheres {
		if err := s.Spheres[i].Validate(); err != nil {
			return &SphereError{Index: i, Err: err}
		}
	}
	return nil
}

type SphereError struct {
	Index int
	Err   error
}

func (e *SphereError) Error() string {
	return fmt.Sprintf("sphere %d: %v", e.Index, e.Err)
}

func (e *SphereError) Unwrap() error {
	return e.Err
}

// Hit is a contact together with the material of the sphere that produced
// it.
type Hit struct {
	contact.Contact
	Material material.Material
}

// RayIntersect returns the nearest contact inside the query segment and the
// index of the sphere hit, or -1 if nothing was hit.  On an exact tie the
// earlier sphere wins.
func (s *Scene) RayIntersect(query ray.RaySegment) (contact.Contact, int) {
	minContact := contact.ContactNaN()
	minIndex := -1

	for i := range s.Spheres {
		c := s.Spheres[i].RayInto(query)
		if c.IsNaN() {
			continue
		}

		// Later spheres must be strictly closer.
		query.TheSegment.Hi = c.T
		minContact = c
		minIndex = i
	}

	return minContact, minIndex
}

func (s *Scene) Hit(query ray.RaySegment) (Hit, bool) {
	c, i := s.RayIntersect(query)
	if i == -1 {
		return Hit{Contact: c}, false
	}
	return Hit{Contact: c, Material: s.Spheres[i].Material}, true
}

// Background is the color seen along r when it escapes the scene: a vertical
// gradient from white at the horizon to light blue overhead.
func Background(r ray.Ray) vec3.T {
	unit := vec3.Normalize(r.Slope)
	t := 0.5 * (unit[1] + 1.0)
	return vec3.Lerp(skyHorizon, skyZenith, t)
}

// Color estimates the light arriving backwards along r, which is already
// depth bounces into its path.
func (s *Scene) Color(r ray.Ray, depth int, rng *rand.Rand) vec3.T {
	return s.trace(r, depth, MaxDepth, rng, nil)
}

// SampleRay is Color for a camera ray with a caller-chosen depth limit.
func (s *Scene) SampleRay(r ray.Ray, rng *rand.Rand, depthLim int) vec3.T {
	return s.trace(r, 0, depthLim, rng, nil)
}

// trace follows one path until it escapes, is absorbed, or scatters at depth
// depthLim.  curK is the product of the attenuations seen so far.
func (s *Scene) trace(r ray.Ray, depth, depthLim int, rng *rand.Rand, ps *rendermetrics.PathStats) vec3.T {
	curK := vec3.T{1, 1, 1}
	curRay := r

	for {
		h, ok := s.Hit(ray.RaySegment{
			TheRay:     curRay,
			TheSegment: ray.Span{Lo: hitEpsilon, Hi: math.Inf(1)},
		})
		if !ok {
			if ps != nil {
				ps.Escaped++
			}
			return vec3.MulVV(curK, Background(curRay))
		}

		// Materials draw from rng even when the path is about to be cut off.
		shading, scattered := h.Material.Scatter(curRay, h.Contact, rng)
		if !scattered {
			if ps != nil {
				ps.Absorbed++
			}
			return vec3.Zero
		}
		if depth >= depthLim {
			if ps != nil {
				ps.DepthExhausted++
			}
			return vec3.Zero
		}

		if ps != nil {
			ps.Bounces++
		}
		curK = vec3.MulVV(curK, shading.Attenuation)
		curRay = shading.IncidentRay
		depth++
	}
}
