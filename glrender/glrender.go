// Package glrender renders ray marching scenes to images on the CPU. Its
// output mirrors the GPU fragment shader so scenes can be checked headless.
package glrender

import (
	"image"
	"image/color"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// minRowBuffer is the smallest evaluation buffer accepted by renderers.
const minRowBuffer = 64

// toRGBA converts a linear color with components in [0,1] to an opaque RGBA.
// Components out of range are clamped.
func toRGBA(c ms3.Vec) color.RGBA {
	return color.RGBA{
		R: uint8(ms1.Clamp(c.X, 0, 1)*255 + 0.5),
		G: uint8(ms1.Clamp(c.Y, 0, 1)*255 + 0.5),
		B: uint8(ms1.Clamp(c.Z, 0, 1)*255 + 0.5),
		A: 255,
	}
}
