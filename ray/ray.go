package ray

import "spheretrace/vmath/vec3"

// Span is a range of ray parameters.  Hit tests treat it as the open
// interval (Lo, Hi).
type Span struct {
	Lo, Hi float64
}

// Contains reports whether t lies strictly inside the span.
func (s Span) Contains(t float64) bool {
	return s.Lo < t && t < s.Hi
}

// Ray is a half-line.  Slope need not be unit length; parameters are
// measured in multiples of it.
type Ray struct {
	Point vec3.T
	Slope vec3.T
}

func (r *Ray) Eval(t float64) vec3.T {
	return vec3.T{
		r.Point[0] + t*r.Slope[0],
		r.Point[1] + t*r.Slope[1],
		r.Point[2] + t*r.Slope[2],
	}
}

type RaySegment struct {
	TheRay     Ray
	TheSegment Span
}
