package camera

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
)

// PolarEpsilon is the minimum distance of [Spherical.Phi] to the poles after
// [Spherical.MakeSafe]. Keeping the polar angle off the poles avoids the
// degenerate look-at basis when the view direction is parallel to up.
const PolarEpsilon = 0.01

// Spherical coordinates with +Y up. Phi is the polar angle measured from +Y
// and Theta the azimuthal angle around Y measured from +Z.
type Spherical struct {
	Radius float32
	Phi    float32
	Theta  float32
}

// FromCartesian returns the spherical coordinates of v. A zero vector
// yields zero angles.
func FromCartesian(v ms3.Vec) Spherical {
	r := ms3.Norm(v)
	if r == 0 {
		return Spherical{}
	}
	return Spherical{
		Radius: r,
		Theta:  math32.Atan2(v.X, v.Z),
		Phi:    math32.Acos(ms1.Clamp(v.Y/r, -1, 1)),
	}
}

// Cartesian returns the cartesian coordinates of s.
func (s Spherical) Cartesian() ms3.Vec {
	sinPhi, cosPhi := math32.Sincos(s.Phi)
	sinTheta, cosTheta := math32.Sincos(s.Theta)
	return ms3.Vec{
		X: s.Radius * sinPhi * sinTheta,
		Y: s.Radius * cosPhi,
		Z: s.Radius * sinPhi * cosTheta,
	}
}

// MakeSafe restricts the polar angle to [PolarEpsilon, π-PolarEpsilon].
func (s Spherical) MakeSafe() Spherical {
	s.Phi = ms1.Clamp(s.Phi, PolarEpsilon, math32.Pi-PolarEpsilon)
	return s
}

// WrapAngle wraps an angle in radians into (-π, π].
func WrapAngle(a float32) float32 {
	if a > -math32.Pi && a <= math32.Pi {
		return a
	}
	a = math32.Mod(a+math32.Pi, 2*math32.Pi)
	if a <= 0 {
		a += 2 * math32.Pi
	}
	return a - math32.Pi
}
