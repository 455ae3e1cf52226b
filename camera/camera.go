package camera

import (
	"fmt"
	"math"
	"math/rand"

	"spheretrace/ray"
	"spheretrace/vmath/vec3"
)

// Camera maps an image pixel to a primary ray, jittered within the pixel by
// rng.
type Camera interface {
	ImageToRay(curRow, imgRows, curCol, imgCols int, rng *rand.Rand) ray.Ray
}

// LookAt is a pinhole camera described by the corner and extent of its image
// plane in world space.
type LookAt struct {
	LowerLeftCorner vec3.T
	Horizontal      vec3.T
	Vertical        vec3.T
	Origin          vec3.T
}

// New builds a camera at lookFrom, aimed at lookAt, with vUp fixing the roll.
// vfovDegrees is the full vertical field of view and aspect is width over
// height.
//
// Arguments are not checked; see Validate.
func New(lookFrom, lookAt, vUp vec3.T, vfovDegrees, aspect float64) *LookAt {
	theta := vfovDegrees * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := aspect * halfHeight

	w := vec3.Normalize(vec3.SubVV(lookFrom, lookAt))
	u := vec3.Normalize(vec3.CProd(vUp, w))
	v := vec3.CProd(w, u)

	lowerLeft := lookFrom
	lowerLeft = vec3.SubVV(lowerLeft, vec3.MulVS(u, halfWidth))
	lowerLeft = vec3.SubVV(lowerLeft, vec3.MulVS(v, halfHeight))
	lowerLeft = vec3.SubVV(lowerLeft, w)

	return &LookAt{
		LowerLeftCorner: lowerLeft,
		Horizontal:      vec3.MulVS(u, 2*halfWidth),
		Vertical:        vec3.MulVS(v, 2*halfHeight),
		Origin:          lookFrom,
	}
}

// Default is the fixed camera at the origin looking down -Z with a 2:1 image
// plane one unit away.
func Default() *LookAt {
	return FromBasis(
		vec3.T{-2.0, -1.0, -1.0},
		vec3.T{4.0, 0.0, 0.0},
		vec3.T{0.0, 2.0, 0.0},
		vec3.T{0.0, 0.0, 0.0},
	)
}

func FromBasis(lowerLeftCorner, horizontal, vertical, origin vec3.T) *LookAt {
	return &LookAt{
		LowerLeftCorner: lowerLeftCorner,
		Horizontal:      horizontal,
		Vertical:        vertical,
		Origin:          origin,
	}
}

// GetRay returns the ray through image-plane coordinates (s, t), with (0, 0)
// the lower left corner and (1, 1) the upper right.
func (c *LookAt) GetRay(s, t float64) ray.Ray {
	target := vec3.AddVV(c.LowerLeftCorner, vec3.MulVS(c.Horizontal, s))
	target = vec3.AddVV(target, vec3.MulVS(c.Vertical, t))
	return ray.Ray{
		Point: c.Origin,
		Slope: vec3.SubVV(target, c.Origin),
	}
}

// ImageToRay jitters uniformly inside pixel (curRow, curCol).  Row 0 is the
// top of the image.  The column jitter is drawn before the row jitter.
func (c *LookAt) ImageToRay(curRow, imgRows, curCol, imgCols int, rng *rand.Rand) ray.Ray {
	u := (float64(curCol) + rng.Float64()) / float64(imgCols)
	v := (float64(imgRows-curRow) + rng.Float64()) / float64(imgRows)
	return c.GetRay(u, v)
}

// Validate checks the preconditions of New for parameters that come from
// outside the program.
func Validate(lookFrom, lookAt, vUp vec3.T, vfovDegrees, aspect float64) error {
	if !(vfovDegrees > 0 && vfovDegrees < 180) {
		return fmt.Errorf("vertical field of view must be in (0, 180) degrees, got %v", vfovDegrees)
	}
	if !(aspect > 0) || math.IsInf(aspect, 0) {
		return fmt.Errorf("aspect ratio must be positive and finite, got %v", aspect)
	}

	w := vec3.SubVV(lookFrom, lookAt)
	if w.NormSquared() == 0 {
		return fmt.Errorf("look-from and look-at are the same point %v", lookFrom)
	}
	if vec3.CProd(vUp, w).NormSquared() == 0 {
		return fmt.Errorf("up vector %v is parallel to the view direction", vUp)
	}
	return nil
}
