package geometry

import (
	"fmt"
	"math"

	"spheretrace/contact"
	"spheretrace/material"
	"spheretrace/ray"
	"spheretrace/vmath/vec3"
)

type Sphere struct {
	Center   vec3.T
	Radius   float64
	Material material.Material
}

// RayInto returns the nearest intersection of the query ray with the sphere
// that lies strictly inside the query segment, or a NaN contact.
//
// With a = d·d, b = oc·d, c = oc·oc - r², the roots of a·t² + 2b·t + c are
// (-b ± √(b² - ac)) / a.  A tangent ray (zero discriminant) is a miss.
func (s *Sphere) RayInto(query ray.RaySegment) contact.Contact {
	oc := vec3.SubVV(query.TheRay.Point, s.Center)
	a := vec3.IProd(query.TheRay.Slope, query.TheRay.Slope)
	b := vec3.IProd(oc, query.TheRay.Slope)
	c := vec3.IProd(oc, oc) - s.Radius*s.Radius

	discriminant := b*b - a*c
	if !(discriminant > 0) {
		return contact.ContactNaN()
	}

	sqrtDisc := math.Sqrt(discriminant)
	for _, t := range [2]float64{(-b - sqrtDisc) / a, (-b + sqrtDisc) / a} {
		if !query.TheSegment.Contains(t) {
			continue
		}

		p := query.TheRay.Eval(t)
		return contact.Contact{
			T: t,
			R: query.TheRay,
			P: p,
			N: vec3.DivVS(vec3.SubVV(p, s.Center), s.Radius),
		}
	}

	return contact.ContactNaN()
}

func (s *Sphere) Validate() error {
	if !(s.Radius > 0) || math.IsInf(s.Radius, 0) {
		return fmt.Errorf("sphere radius must be positive and finite, got %v", s.Radius)
	}
	for i, x := range s.Center {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("sphere center component %d must be finite, got %v", i, x)
		}
	}
	if err := s.Material.Validate(); err != nil {
		return fmt.Errorf("while validating sphere material: %w", err)
	}
	return nil
}
