package rmarch_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/rmarch"
)

func TestLightVariants(t *testing.T) {
	dl := rmarch.DirectionalLight(ms3.Vec{X: -1, Y: -1, Z: -1})
	if dl.Kind() != rmarch.LightDirectional {
		t.Fatal("want directional light")
	}
	dir, ok := dl.Direction()
	if !ok || !equalWithin(ms3.Norm(dir), 1, tol) {
		t.Errorf("directional light should be unit length, got %v", dir)
	}
	if _, ok := dl.Position(); ok {
		t.Error("directional light has no position")
	}
	pl := rmarch.PointLight(ms3.Vec{Y: 3})
	pos, ok := pl.Position()
	if !ok || pos != (ms3.Vec{Y: 3}) {
		t.Errorf("point light position mismatch: %v", pos)
	}
	if _, ok := pl.Direction(); ok {
		t.Error("point light has no direction")
	}
	zero := rmarch.DirectionalLight(ms3.Vec{})
	if zero.Vec() != (ms3.Vec{Y: -1}) {
		t.Errorf("zero direction should default to down, got %v", zero.Vec())
	}
	if rmarch.LightPoint.String() != "point" || rmarch.LightDirectional.String() != "directional" {
		t.Error("bad light kind names")
	}
}

func TestLightToLight(t *testing.T) {
	dl := rmarch.DirectionalLight(ms3.Vec{Y: -1})
	dir, dist := dl.ToLight(ms3.Vec{X: 4}, 80)
	if dir != (ms3.Vec{Y: 1}) || dist != 80 {
		t.Errorf("directional: want ((0,1,0), 80), got (%v, %g)", dir, dist)
	}
	pl := rmarch.PointLight(ms3.Vec{Y: 3})
	dir, dist = pl.ToLight(ms3.Vec{Y: 1}, 80)
	if dir != (ms3.Vec{Y: 1}) || dist != 2 {
		t.Errorf("point: want ((0,1,0), 2), got (%v, %g)", dir, dist)
	}
	_, dist = pl.ToLight(ms3.Vec{Y: 100}, 80)
	if dist != 80 {
		t.Errorf("point light beyond max distance should clamp, got %g", dist)
	}
}

func TestLightRotateY(t *testing.T) {
	pl := rmarch.PointLight(ms3.Vec{X: 2, Y: 1})
	rotated := pl.RotateY(math32.Pi / 2)
	pos, _ := rotated.Position()
	want := ms3.Vec{Y: 1, Z: -2}
	if ms3.Norm(ms3.Sub(pos, want)) > tol {
		t.Errorf("want %v, got %v", want, pos)
	}
	dl := rmarch.DirectionalLight(ms3.Vec{X: -0.5, Y: -0.5, Z: -0.5})
	for i := 0; i < 100; i++ {
		dl = dl.RotateY(0.1)
	}
	if !equalWithin(ms3.Norm(dl.Vec()), 1, tol) {
		t.Errorf("rotated directional light drifted from unit length: %v", dl.Vec())
	}
	if dl.Kind() != rmarch.LightDirectional {
		t.Error("rotation must preserve light kind")
	}
}
