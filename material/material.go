package material

import (
	"fmt"
	"math"
	"math/rand"

	"spheretrace/contact"
	"spheretrace/ray"
	"spheretrace/vmath/vec3"
)

type Kind int

const (
	KindLambertian Kind = iota
	KindMetal
	KindDielectric
)

func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Material is one of a closed set of surface models, selected by Kind.  Only
// the fields for that kind are meaningful.
//
// Materials are plain values: spheres copy them and == compares them.
type Material struct {
	Kind Kind

	// Per-channel reflectance of Lambertian and Metal surfaces.
	Albedo vec3.T

	// Metal roughness in [0, 1].  Zero is a perfect mirror.
	Fuzz float64

	// Dielectric index of refraction relative to the surrounding medium.
	RefractiveIndex float64
}

// dielectricAttenuation is the color a dielectric passes.  The blue channel is
// zero, which tints all glass yellow.
var dielectricAttenuation = vec3.T{1.0, 1.0, 0.0}

func Lambertian(albedo vec3.T) Material {
	return Material{
		Kind:   KindLambertian,
		Albedo: albedo,
	}
}

// Metal returns a fuzzy mirror.  fuzz is clamped to 1.
func Metal(albedo vec3.T, fuzz float64) Material {
	if fuzz > 1.0 {
		fuzz = 1.0
	}
	return Material{
		Kind:   KindMetal,
		Albedo: albedo,
		Fuzz:   fuzz,
	}
}

func Dielectric(refractiveIndex float64) Material {
	return Material{
		Kind:            KindDielectric,
		RefractiveIndex: refractiveIndex,
	}
}

// ShadeInfo describes where the light arriving along a path came from.
type ShadeInfo struct {
	// Per-channel fraction of the incident light that survives the bounce.
	Attenuation vec3.T

	// The ray to follow next.  It starts at the contact point.
	IncidentRay ray.Ray
}

// Scatter picks the next ray of a path that arrived along in and hit the
// surface at c.  The boolean is false when the path is absorbed, in which
// case ShadeInfo carries no meaningful ray.
func (m Material) Scatter(in ray.Ray, c contact.Contact, rng *rand.Rand) (ShadeInfo, bool) {
	switch m.Kind {
	case KindLambertian:
		return m.scatterLambertian(c, rng)
	case KindMetal:
		return m.scatterMetal(in, c, rng)
	case KindDielectric:
		return m.scatterDielectric(in, c, rng)
	}

	// Dead code
	return ShadeInfo{}, false
}

func (m Material) scatterLambertian(c contact.Contact, rng *rand.Rand) (ShadeInfo, bool) {
	target := vec3.AddVV(vec3.AddVV(c.P, c.N), vec3.RandomInUnitSphere(rng))
	return ShadeInfo{
		Attenuation: m.Albedo,
		IncidentRay: ray.Ray{
			Point: c.P,
			Slope: vec3.SubVV(target, c.P),
		},
	}, true
}

func (m Material) scatterMetal(in ray.Ray, c contact.Contact, rng *rand.Rand) (ShadeInfo, bool) {
	dir := vec3.Reflect(vec3.Normalize(in.Slope), c.N)
	if m.Fuzz != 0 {
		dir = vec3.AddVV(dir, vec3.MulVS(vec3.RandomInUnitSphere(rng), m.Fuzz))
	}

	info := ShadeInfo{
		Attenuation: m.Albedo,
		IncidentRay: ray.Ray{
			Point: c.P,
			Slope: dir,
		},
	}

	// Fuzz can push the ray under the surface; such paths are absorbed.
	return info, vec3.IProd(dir, c.N) > 0
}

func (m Material) scatterDielectric(in ray.Ray, c contact.Contact, rng *rand.Rand) (ShadeInfo, bool) {
	ri := m.RefractiveIndex
	d := in.Slope
	dn := vec3.IProd(d, c.N)

	var outwardNormal vec3.T
	var niOverNt, cosine float64
	if dn > 0 {
		// Leaving the medium.
		outwardNormal = vec3.Neg(c.N)
		niOverNt = ri
		cosine = ri * dn / d.Norm()
	} else {
		outwardNormal = c.N
		niOverNt = 1.0 / ri
		cosine = -dn / d.Norm()
	}

	info := ShadeInfo{
		Attenuation: dielectricAttenuation,
		IncidentRay: ray.Ray{
			Point: c.P,
			Slope: vec3.Reflect(d, c.N),
		},
	}

	refracted, ok := vec3.Refract(d, outwardNormal, niOverNt)
	if !ok {
		// Total internal reflection.
		return info, true
	}

	if rng.Float64() >= Schlick(cosine, ri) {
		info.IncidentRay.Slope = refracted
	}
	return info, true
}

// Schlick approximates the Fresnel reflectance of a dielectric boundary.
// cosine is the cosine of the incidence angle.
func Schlick(cosine, refractiveIndex float64) float64 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}

// Validate checks that the parameters of m are physically meaningful.  A
// dielectric index of exactly 1 is allowed; it describes a medium that does
// not bend light.
func (m Material) Validate() error {
	switch m.Kind {
	case KindLambertian, KindMetal:
		for i, a := range m.Albedo {
			if !(a >= 0) || math.IsInf(a, 0) {
				return fmt.Errorf("%v albedo channel %d must be finite and non-negative, got %v", m.Kind, i, a)
			}
		}
		if m.Kind == KindMetal && !(m.Fuzz >= 0 && m.Fuzz <= 1) {
			return fmt.Errorf("metal fuzz must be in [0, 1], got %v", m.Fuzz)
		}
	case KindDielectric:
		if !(m.RefractiveIndex >= 1) || math.IsInf(m.RefractiveIndex, 0) {
			return fmt.Errorf("dielectric refractive index must be finite and at least 1, got %v", m.RefractiveIndex)
		}
	default:
		return fmt.Errorf("unknown material kind %v", m.Kind)
	}
	return nil
}
