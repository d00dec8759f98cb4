package rmaux

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/rmarch"
)

// DemoScene returns three boxes and a sphere spread along -Z plus a rounded
// box group with a blended sphere on top and a torus cut through it.
func DemoScene() []rmarch.Shape {
	cube := [4]float32{0.5, 0.5, 0.5}
	groupPos := ms3.Vec{X: 1.6, Z: -0.5}
	return []rmarch.Shape{
		{Type: rmarch.Box, Size: cube, Color: ms3.Vec{Y: 1}},
		{Type: rmarch.Box, Position: ms3.Vec{X: 0.5, Z: -1.5}, Size: cube, Color: ms3.Vec{X: 1}},
		{Type: rmarch.Box, Position: ms3.Vec{X: -0.5, Z: -3}, Size: cube, Color: ms3.Vec{Z: 1}},
		{Type: rmarch.Sphere, Position: ms3.Vec{X: -1, Z: -1.5}, Size: [4]float32{0.5}, Color: ms3.Vec{X: 1, Z: 1}},
		{
			Type:        rmarch.RoundedBox,
			Position:    groupPos,
			Rotation:    rmarch.Rotation(math32.Pi/6, ms3.Vec{Y: 1}),
			Size:        [4]float32{0.35, 0.25, 0.35, 0.08},
			Color:       ms3.Vec{X: 0.2, Y: 0.8, Z: 0.9},
			NumChildren: 2,
		},
		{
			Type:          rmarch.Sphere,
			Position:      ms3.Add(groupPos, ms3.Vec{Y: 0.4}),
			Size:          [4]float32{0.3},
			Color:         ms3.Vec{X: 1, Y: 0.9, Z: 0.2},
			Operation:     rmarch.OpBlend,
			BlendStrength: 0.25,
		},
		{
			Type:      rmarch.Torus,
			Position:  groupPos,
			Rotation:  rmarch.Rotation(math32.Pi/2, ms3.Vec{X: 1}),
			Size:      [4]float32{0.3, 0.12},
			Color:     ms3.Vec{X: 1, Y: 1, Z: 1},
			Operation: rmarch.OpCut,
		},
	}
}
