// Package rmarch implements a signed distance field scene of a handful of
// primitives that can be combined with boolean and blend operators and ray
// marched on the CPU. The same scene is consumed on the GPU through the
// binary layout written by [Shape.Put], see the glbuild package.
package rmarch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
)

const (
	// DefaultMaxDistance is the distance cutoff of the scene. Points farther
	// than this are considered infinitely far and rays that travel this far miss.
	DefaultMaxDistance = 80
	// DefaultEpsilon is the surface hit tolerance for sphere tracing.
	DefaultEpsilon = 0.001
	// DefaultShadowBias offsets shadow rays off surfaces along the normal
	// so they do not immediately hit the surface they start on.
	DefaultShadowBias = 50 * DefaultEpsilon
	// ShadowIntensity is the light attenuation of fully shadowed surfaces.
	ShadowIntensity = 0.2
	// HighlightAmount is the interpolation factor towards [HighlightTint]
	// applied to selected shapes.
	HighlightAmount = 0.5

	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization.
	epstol = 6e-7
)

var white = ms3.Vec{X: 1, Y: 1, Z: 1}

// HighlightTint returns the color selected shapes are tinted towards. It is
// fixed so shaders generated at any time agree with CPU renders.
func HighlightTint() ms3.Vec { return ms3.Vec{X: 1, Y: 0.85, Z: 0.1} }

// Highlight tints a color to mark a selected shape. The fragment shader
// applies the exact same tint so CPU and GPU renders agree.
func Highlight(c ms3.Vec) ms3.Vec {
	return mix3(c, HighlightTint(), HighlightAmount)
}

func clampf(v, Min, Max float32) float32 {
	return ms1.Clamp(v, Min, Max)
}

func mixf(x, y, a float32) float32 {
	return x*(1-a) + y*a
}

func mix3(x, y ms3.Vec, a float32) ms3.Vec {
	return ms3.Add(ms3.Scale(1-a, x), ms3.Scale(a, y))
}

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}
