package rmarch

import (
	"errors"

	"github.com/soypat/geometry/ms3"
)

var (
	ErrBadEpsilon     = errors.New("marcher epsilon must be positive")
	ErrBadMaxDistance = errors.New("marcher max distance must be larger than epsilon")
)

// Ray is a half line starting at Origin going along Dir. Dir should be unit length.
type Ray struct {
	Origin ms3.Vec
	Dir    ms3.Vec
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) ms3.Vec {
	return ms3.Add(r.Origin, ms3.Scale(t, r.Dir))
}

// Hit is the result of a successful march.
type Hit struct {
	// Index of the hit shape in the shape slice. It is -1 for combined field
	// marches, which do not attribute the surface to a single shape.
	Index int
	// Point on the surface, within epsilon of it.
	Point ms3.Vec
	// Traveled is the distance traveled along the ray before the hit.
	Traveled float32
	// Color of the combined field at the hit point. Only set by [Marcher.March].
	Color ms3.Vec
	// Steps is the number of field evaluations performed.
	Steps int
}

// Marcher sphere-traces rays through a slice of shapes.
//
// A march takes O(MaxDistance/Epsilon) steps in the worst case, for rays
// grazing surfaces. MaxDistance is the only bound on the loop.
type Marcher struct {
	// MaxDistance is the distance at which rays give up. It is also the
	// distance reported for shapes of unknown type.
	MaxDistance float32
	// Epsilon is the hit tolerance. Must be positive and much smaller than
	// typical shape sizes.
	Epsilon float32
}

// DefaultMarcher returns a Marcher with [DefaultMaxDistance] and [DefaultEpsilon].
func DefaultMarcher() Marcher {
	return Marcher{MaxDistance: DefaultMaxDistance, Epsilon: DefaultEpsilon}
}

// Validate checks that the march parameters bound the loop.
func (m Marcher) Validate() error {
	if !(m.Epsilon > 0) {
		return ErrBadEpsilon
	} else if !(m.MaxDistance > m.Epsilon) {
		return ErrBadMaxDistance
	}
	return nil
}

// Pick marches the ray using the raw distance of each individual shape,
// ignoring operators and blending, and returns the index of the first shape
// whose surface the ray reaches.
//
// Picking does not evaluate the combined field, so a ray may select a shape
// whose surface is not visible there because it was cut or masked away.
func (m Marcher) Pick(shapes []Shape, ray Ray) (Hit, bool) {
	if m.Validate() != nil {
		return Hit{Index: -1}, false
	}
	pos := ray.Origin
	var traveled float32
	steps := 0
	for traveled < m.MaxDistance {
		steps++
		idx, dist := nearest(shapes, pos, m.MaxDistance)
		if idx >= 0 && dist <= m.Epsilon {
			return Hit{
				Index:    idx,
				Point:    ms3.Add(pos, ms3.Scale(dist, ray.Dir)),
				Traveled: traveled,
				Steps:    steps,
			}, true
		}
		pos = ms3.Add(pos, ms3.Scale(dist, ray.Dir))
		traveled += dist
	}
	return Hit{Index: -1, Steps: steps}, false
}

// nearest returns the index and distance of the shape nearest to p. It
// returns -1 and maxDist if no shape is nearer than maxDist.
func nearest(shapes []Shape, p ms3.Vec, maxDist float32) (idx int, dist float32) {
	idx = -1
	dist = maxDist
	for i := range shapes {
		d := Distance(&shapes[i], p, maxDist)
		if d < dist {
			dist = d
			idx = i
		}
	}
	return idx, dist
}

// March marches the ray through the combined scene field, as the fragment
// shader does, and returns the hit point and its color.
func (m Marcher) March(shapes []Shape, ray Ray) (Hit, bool) {
	if m.Validate() != nil {
		return Hit{Index: -1}, false
	}
	pos := ray.Origin
	var traveled float32
	steps := 0
	for traveled < m.MaxDistance {
		steps++
		dist, color := SceneField(shapes, pos, m.MaxDistance)
		if dist <= m.Epsilon {
			return Hit{
				Index:    -1,
				Point:    ms3.Add(pos, ms3.Scale(dist, ray.Dir)),
				Traveled: traveled,
				Color:    color,
				Steps:    steps,
			}, true
		}
		pos = ms3.Add(pos, ms3.Scale(dist, ray.Dir))
		traveled += dist
	}
	return Hit{Index: -1, Steps: steps}, false
}

// Normal estimates the surface normal of the combined field at p using
// central differences with step epsilon.
func Normal(shapes []Shape, p ms3.Vec, epsilon, maxDist float32) ms3.Vec {
	var n ms3.Vec
	var axes = [3]ms3.Vec{{X: epsilon}, {Y: epsilon}, {Z: epsilon}}
	var diff [3]float32
	for i, h := range axes {
		d1, _ := SceneField(shapes, ms3.Add(p, h), maxDist)
		d2, _ := SceneField(shapes, ms3.Sub(p, h), maxDist)
		diff[i] = d1 - d2
	}
	n = ms3.Vec{X: diff[0], Y: diff[1], Z: diff[2]}
	if ms3.Norm(n) < epstol {
		return ms3.Vec{}
	}
	return ms3.Unit(n)
}

// Shadow marches from origin towards the light for at most maxDist and
// returns the light attenuation in [0.2, 1]. Surfaces crossed give full
// shadow, surfaces passed nearby give a soft penumbra.
func (m Marcher) Shadow(shapes []Shape, ray Ray, maxDist float32) float32 {
	var traveled float32
	brightness := float32(1)
	pos := ray.Origin
	for traveled < maxDist {
		dist, _ := SceneField(shapes, pos, m.MaxDistance)
		if dist <= m.Epsilon {
			return ShadowIntensity
		}
		brightness = minf(brightness, dist*200)
		pos = ms3.Add(pos, ms3.Scale(dist, ray.Dir))
		traveled += dist
	}
	return ShadowIntensity + (1-ShadowIntensity)*brightness
}
