package rmarch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// LightKind discriminates the variants of [Light]. Values are part of the
// GPU layout contract.
type LightKind int32

const (
	// LightDirectional lights the scene from infinitely far away along a direction.
	LightDirectional LightKind = iota
	// LightPoint lights the scene from a position.
	LightPoint
)

func (k LightKind) String() string {
	switch k {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	}
	return "unknown"
}

// Light is the single light source of the scene. It is either directional or
// a point light. Use [Light.Kind] to switch on the variant.
type Light struct {
	kind LightKind
	// v is the unit direction of a directional light or the position of a point light.
	v ms3.Vec
}

// DirectionalLight returns a light shining along dir. dir is normalized.
// A zero direction is replaced by straight down.
func DirectionalLight(dir ms3.Vec) Light {
	if ms3.Norm(dir) < epstol {
		dir = ms3.Vec{Y: -1}
	}
	return Light{kind: LightDirectional, v: ms3.Unit(dir)}
}

// PointLight returns a light located at pos.
func PointLight(pos ms3.Vec) Light {
	return Light{kind: LightPoint, v: pos}
}

// Kind returns the light variant.
func (l Light) Kind() LightKind { return l.kind }

// Vec returns the payload of the light: the direction of a directional light
// or the position of a point light. This is the vector stored in the GPU layout.
func (l Light) Vec() ms3.Vec { return l.v }

// Direction returns the direction of a directional light.
func (l Light) Direction() (ms3.Vec, bool) {
	return l.v, l.kind == LightDirectional
}

// Position returns the position of a point light.
func (l Light) Position() (ms3.Vec, bool) {
	return l.v, l.kind == LightPoint
}

// ToLight returns the unit direction from p towards the light and the
// distance to the light. Directional lights are maxDist away.
func (l Light) ToLight(p ms3.Vec, maxDist float32) (dir ms3.Vec, dist float32) {
	switch l.kind {
	case LightDirectional:
		return ms3.Scale(-1, l.v), maxDist
	case LightPoint:
		d := ms3.Sub(l.v, p)
		n := ms3.Norm(d)
		if n < epstol {
			return ms3.Vec{}, 0
		}
		return ms3.Scale(1/n, d), math32.Min(n, maxDist)
	}
	return ms3.Vec{}, 0
}

// RotateY rotates the light about the vertical axis by angle radians.
// Directional lights rotate their direction, point lights orbit the
// vertical axis through (0, y, 0) keeping their height.
func (l Light) RotateY(angle float32) Light {
	s, c := math32.Sincos(angle)
	v := l.v
	rotated := ms3.Vec{X: c*v.X + s*v.Z, Y: v.Y, Z: -s*v.X + c*v.Z}
	switch l.kind {
	case LightDirectional:
		return DirectionalLight(rotated)
	case LightPoint:
		return PointLight(rotated)
	}
	return l
}
