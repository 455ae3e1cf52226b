package vec3

import (
	"math"
	"math/rand"
)

type T [3]float64

// Zero is the additive identity.  Paths that are fully absorbed carry it.
var Zero = T{0, 0, 0}

func (v T) NormSquared() float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Normalize scales v to unit length in place.
//
// The zero vector becomes NaN in every component.
func (v *T) Normalize() {
	l := v.Norm()
	v[0] /= l
	v[1] /= l
	v[2] /= l
}

// Normalize returns v scaled to unit length.  The zero vector yields NaN
// components; callers that can produce one must check for it themselves.
func Normalize(v T) T {
	l := v.Norm()
	return T{
		v[0] / l,
		v[1] / l,
		v[2] / l,
	}
}

func Neg(a T) T {
	return T{-a[0], -a[1], -a[2]}
}

func AddVV(a, b T) T {
	return T{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

func SubVV(a, b T) T {
	return T{
		a[0] - b[0],
		a[1] - b[1],
		a[2] - b[2],
	}
}

// MulVV is the component-wise (Hadamard) product.
func MulVV(a, b T) T {
	return T{
		a[0] * b[0],
		a[1] * b[1],
		a[2] * b[2],
	}
}

// DivVV is the component-wise quotient.
func DivVV(a, b T) T {
	return T{
		a[0] / b[0],
		a[1] / b[1],
		a[2] / b[2],
	}
}

func MulVS(a T, b float64) T {
	return T{
		a[0] * b,
		a[1] * b,
		a[2] * b,
	}
}

func DivVS(a T, b float64) T {
	return T{
		a[0] / b,
		a[1] / b,
		a[2] / b,
	}
}

func IProd(a, b T) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func CProd(a, b T) T {
	return T{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Lerp blends from a (t=0) to b (t=1).
func Lerp(a, b T, t float64) T {
	return T{
		(1-t)*a[0] + t*b[0],
		(1-t)*a[1] + t*b[1],
		(1-t)*a[2] + t*b[2],
	}
}

func Reflect(a, n T) T {
	return SubVV(a, MulVS(n, 2*IProd(a, n)))
}

// Refract bends v through a boundary with normal n by Snell's law.  v need
// not be unit length; n must be.  The second result is false under total
// internal reflection, in which case the returned vector is meaningless.
func Refract(v, n T, niOverNt float64) (T, bool) {
	uv := Normalize(v)
	dt := IProd(uv, n)
	discriminant := 1.0 - niOverNt*niOverNt*(1.0-dt*dt)
	if discriminant <= 0.0 {
		return T{}, false
	}

	return SubVV(MulVS(SubVV(uv, MulVS(n, dt)), niOverNt), MulVS(n, math.Sqrt(discriminant))), true
}

// RandomInUnitSphere rejection-samples a point strictly inside the unit
// ball.  Expected iterations are 6/π (cube volume over ball volume).
func RandomInUnitSphere(rng *rand.Rand) T {
	for {
		p := T{
			2.0*rng.Float64() - 1.0,
			2.0*rng.Float64() - 1.0,
			2.0*rng.Float64() - 1.0,
		}
		if p.NormSquared() < 1.0 {
			return p
		}
	}
}
