package glrender

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/rmarch/gleval"
)

// SliceRenderer converts a planar slice of a 3D SDF to an image. The slice is
// the XY plane at a fixed Z spanning the SDF's bounding box, with +Y up.
type SliceRenderer struct {
	conv func(f float32) color.Color
	pos  []ms3.Vec
	dist []float32
}

// NewSliceRenderer instances a new [SliceRenderer]. A nil float->color conversion
// function results in a simple black-white color scheme where black is the interior of the SDF (negative distance).
func NewSliceRenderer(evalBufferSize int, conversion func(float32) color.Color) (*SliceRenderer, error) {
	if evalBufferSize < minRowBuffer {
		return nil, errors.New("too small evaluation buffer size")
	}
	if conversion == nil {
		conversion = func(f float32) color.Color {
			switch {
			case math32.IsNaN(f) || math32.IsInf(f, 0):
				return color.RGBA{R: 255, A: 255}
			case f > 0:
				return color.White
			default:
				return color.Black
			}
		}
	}
	sr := &SliceRenderer{
		conv: conversion,
		pos:  make([]ms3.Vec, evalBufferSize),
		dist: make([]float32, evalBufferSize),
	}
	return sr, nil
}

// Render evaluates sdf over the plane Z=z and renders the distances to img.
// As many whole image rows as fit in the evaluation buffer are evaluated per
// batch.
func (sr *SliceRenderer) Render(sdf gleval.SDF3, z float32, img setImage) error {
	rect := img.Bounds()
	w, h := rect.Dx(), rect.Dy()
	if w > len(sr.dist) {
		return fmt.Errorf("require evaluation buffer (%d) to be at least of length of image rows (%d)", len(sr.dist), w)
	} else if w == 0 || h == 0 {
		return nil
	}
	bb := sdf.Bounds()
	sz := bb.Size()
	// Pixel centers, top row at the box's maximum Y.
	step := ms3.Vec{X: sz.X / float32(w), Y: -sz.Y / float32(h)}
	first := ms3.Vec{X: bb.Min.X + step.X/2, Y: bb.Max.Y + step.Y/2, Z: z}
	rowsPerBatch := len(sr.dist) / w
	for row := 0; row < h; row += rowsPerBatch {
		nrows := min(rowsPerBatch, h-row)
		n := nrows * w
		for k := 0; k < n; k++ {
			i, j := k%w, row+k/w
			sr.pos[k] = ms3.Vec{
				X: first.X + float32(i)*step.X,
				Y: first.Y + float32(j)*step.Y,
				Z: z,
			}
		}
		err := sdf.Evaluate(sr.pos[:n], sr.dist[:n])
		if err != nil {
			return err
		}
		for k, d := range sr.dist[:n] {
			img.Set(rect.Min.X+k%w, rect.Min.Y+row+k/w, sr.conv(d))
		}
	}
	return nil
}
