package contact

import (
	"math"

	"spheretrace/ray"
	"spheretrace/vmath/vec3"
)

// Contact is the result of a ray hitting a surface.  It is produced and
// consumed within a single query and never stored.
type Contact struct {
	// Ray parameter of the hit.  NaN means no hit.
	T float64

	// The query ray.
	R ray.Ray

	// Hit point.
	P vec3.T

	// Unit surface normal at P, oriented by the primitive's convention
	// (outward for spheres).
	N vec3.T
}

func ContactNaN() Contact {
	return Contact{
		T: math.NaN(),
	}
}

// IsNaN reports whether c represents a miss.
func (c Contact) IsNaN() bool {
	return math.IsNaN(c.T)
}
