package rmaux

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
)

var red = color.RGBA{R: 255, A: 255}

// ColorVec converts c to the linear RGB vector used by shapes and lights.
// Alpha is ignored.
func ColorVec(c color.Color) ms3.Vec {
	r, g, b, _ := c.RGBA()
	return ms3.Vec{
		X: float32(r) / 0xffff,
		Y: float32(g) / 0xffff,
		Z: float32(b) / 0xffff,
	}
}

// ParseHexColor parses a color of the form "#rrggbb" or "#rgb".
func ParseHexColor(s string) (ms3.Vec, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return ms3.Vec{}, errors.New("hex color must start with '#'")
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return ms3.Vec{}, fmt.Errorf("hex color %q must have 3 or 6 digits", s)
	}
	c, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return ms3.Vec{}, fmt.Errorf("hex color %q: %w", s, err)
	}
	return ms3.Vec{
		X: float32(uint8(c>>16)) / 255,
		Y: float32(uint8(c>>8)) / 255,
		Z: float32(uint8(c)) / 255,
	}, nil
}

// ColorConversionInigoQuilez colors a distance slice with [Inigo Quilez]'s
// banded style: orange outside, blue inside and a white isoline at d=0.
// A good characteristic distance is the bounding box diagonal divided by 3.
// NaN distances are drawn red.
//
// [Inigo Quilez]: https://iquilezles.org/articles/distfunctions2d/
func ColorConversionInigoQuilez(characteristicDistance float32) func(float32) color.Color {
	inv := 1 / characteristicDistance
	outside := ms3.Vec{X: 0.9, Y: 0.6, Z: 0.3}
	inside := ms3.Vec{X: 0.65, Y: 0.85, Z: 1}
	white := ms3.Vec{X: 1, Y: 1, Z: 1}
	return func(d float32) color.Color {
		if math.IsNaN(d) {
			return red
		}
		d *= inv
		c := inside
		if d > 0 {
			c = outside
		}
		ad := math.Abs(d)
		c = ms3.Scale((1-math.Exp(-6*ad))*(0.8+0.2*math.Cos(150*d)), c)
		edge := 1 - ms1.SmoothStep(0, 0.01, ad)
		c = ms3.InterpElem(c, white, ms3.Vec{X: edge, Y: edge, Z: edge})
		return vecRGBA(c)
	}
}

// ColorConversionLinearGradient maps distances in [-gradientLength/2, gradientLength/2]
// onto a gradient from c0 to c1 interpolated in HSV space. Distances outside
// the range saturate to the end colors.
func ColorConversionLinearGradient(gradientLength float32, c0, c1 color.Color) func(d float32) color.Color {
	hsv0 := toHSV(ColorVec(c0))
	hsv1 := toHSV(ColorVec(c1))
	// Interpolate hue along the shortest arc.
	switch {
	case hsv1.X-hsv0.X > 0.5:
		hsv0.X++
	case hsv1.X-hsv0.X < -0.5:
		hsv1.X++
	}
	return func(d float32) color.Color {
		t := d/gradientLength + 0.5
		if t <= 0 {
			return c0
		} else if t >= 1 {
			return c1
		}
		hsv := ms3.InterpElem(hsv0, hsv1, ms3.Vec{X: t, Y: t, Z: t})
		hsv.X -= math.Floor(hsv.X)
		return vecRGBA(fromHSV(hsv))
	}
}

func vecRGBA(c ms3.Vec) color.RGBA {
	return color.RGBA{
		R: uint8(ms1.Clamp(c.X, 0, 1) * 255),
		G: uint8(ms1.Clamp(c.Y, 0, 1) * 255),
		B: uint8(ms1.Clamp(c.Z, 0, 1) * 255),
		A: 255,
	}
}

// toHSV converts an RGB vector in [0,1] to hue, saturation and value in [0,1]
// stored in X, Y and Z.
func toHSV(c ms3.Vec) ms3.Vec {
	v := max(c.X, c.Y, c.Z)
	chroma := v - min(c.X, c.Y, c.Z)
	var h, s float32
	switch {
	case chroma == 0:
	case v == c.X:
		h = (c.Y - c.Z) / (6 * chroma)
	case v == c.Y:
		h = 1.0/3 + (c.Z-c.X)/(6*chroma)
	default:
		h = 2.0/3 + (c.X-c.Y)/(6*chroma)
	}
	if h < 0 {
		h++
	}
	if v > 0 {
		s = chroma / v
	}
	return ms3.Vec{X: h, Y: s, Z: v}
}

// fromHSV is the inverse of toHSV.
func fromHSV(hsv ms3.Vec) ms3.Vec {
	channel := func(n float32) float32 {
		k := math.Mod(n+hsv.X*6, 6)
		return hsv.Z - hsv.Z*hsv.Y*ms1.Clamp(min(k, 4-k), 0, 1)
	}
	return ms3.Vec{X: channel(5), Y: channel(3), Z: channel(1)}
}
