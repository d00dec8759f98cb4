package rmarch_test

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/rmarch"
)

func unitSphereScene() []rmarch.Shape {
	return []rmarch.Shape{{Type: rmarch.Sphere, Size: [4]float32{1}, Color: ms3.Vec{X: 1}}}
}

func TestPickSphereHit(t *testing.T) {
	m := rmarch.Marcher{MaxDistance: 80, Epsilon: 0.001}
	ray := rmarch.Ray{Origin: ms3.Vec{Z: 5}, Dir: ms3.Vec{Z: -1}}
	hit, ok := m.Pick(unitSphereScene(), ray)
	if !ok {
		t.Fatal("expected hit")
	}
	if hit.Index != 0 {
		t.Errorf("want index 0, got %d", hit.Index)
	}
	want := ms3.Vec{Z: 1}
	if ms3.Norm(ms3.Sub(hit.Point, want)) > 0.001 {
		t.Errorf("want hit point %v, got %v", want, hit.Point)
	}
	if !equalWithin(hit.Traveled, 4, 0.001) {
		t.Errorf("want traveled 4, got %g", hit.Traveled)
	}
}

func TestPickMiss(t *testing.T) {
	m := rmarch.DefaultMarcher()
	ray := rmarch.Ray{Origin: ms3.Vec{Z: 5}, Dir: ms3.Vec{X: 1}}
	hit, ok := m.Pick(unitSphereScene(), ray)
	if ok {
		t.Fatalf("expected miss, got %+v", hit)
	}
	if hit.Index != -1 {
		t.Errorf("miss should report index -1, got %d", hit.Index)
	}
	_, ok = m.Pick(nil, ray)
	if ok {
		t.Error("empty scene should never be hit")
	}
}

func TestPickNearestShape(t *testing.T) {
	shapes := []rmarch.Shape{
		{Type: rmarch.Sphere, Size: [4]float32{1}, Position: ms3.Vec{Z: -4}},
		{Type: rmarch.Box, Size: [4]float32{0.5, 0.5, 0.5}},
	}
	m := rmarch.DefaultMarcher()
	hit, ok := m.Pick(shapes, rmarch.Ray{Origin: ms3.Vec{Z: 5}, Dir: ms3.Vec{Z: -1}})
	if !ok || hit.Index != 1 {
		t.Fatalf("want box (index 1) picked first, got ok=%v index=%d", ok, hit.Index)
	}
	if !equalWithin(hit.Point.Z, 0.5, 0.001) {
		t.Errorf("want hit on box front face z=0.5, got %v", hit.Point)
	}
}

func TestPickIgnoresOperators(t *testing.T) {
	// A cut sphere is invisible on its own yet still pickable.
	shapes := []rmarch.Shape{
		{Type: rmarch.Sphere, Size: [4]float32{1}, Operation: rmarch.OpCut},
	}
	m := rmarch.DefaultMarcher()
	ray := rmarch.Ray{Origin: ms3.Vec{Z: 5}, Dir: ms3.Vec{Z: -1}}
	if _, ok := m.Pick(shapes, ray); !ok {
		t.Error("pick should use raw shape distances")
	}
	if _, ok := m.March(shapes, ray); ok {
		t.Error("march should use the combined field where a lone cut shape is empty")
	}
}

func TestMarchSphereColor(t *testing.T) {
	m := rmarch.DefaultMarcher()
	ray := rmarch.Ray{Origin: ms3.Vec{Z: 5}, Dir: ms3.Vec{Z: -1}}
	hit, ok := m.March(unitSphereScene(), ray)
	if !ok {
		t.Fatal("expected hit")
	}
	if hit.Color != (ms3.Vec{X: 1}) {
		t.Errorf("want red, got %v", hit.Color)
	}
	if hit.Index != -1 {
		t.Errorf("march does not attribute shapes, got index %d", hit.Index)
	}
	n := rmarch.Normal(unitSphereScene(), hit.Point, m.Epsilon, m.MaxDistance)
	if ms3.Norm(ms3.Sub(n, ms3.Vec{Z: 1})) > 0.01 {
		t.Errorf("want normal +Z, got %v", n)
	}
}

func TestMarcherValidate(t *testing.T) {
	var tests = []struct {
		m    rmarch.Marcher
		want error
	}{
		{m: rmarch.DefaultMarcher(), want: nil},
		{m: rmarch.Marcher{MaxDistance: 10, Epsilon: 0}, want: rmarch.ErrBadEpsilon},
		{m: rmarch.Marcher{MaxDistance: 10, Epsilon: -1}, want: rmarch.ErrBadEpsilon},
		{m: rmarch.Marcher{MaxDistance: 10, Epsilon: math32.NaN()}, want: rmarch.ErrBadEpsilon},
		{m: rmarch.Marcher{MaxDistance: 0.0001, Epsilon: 0.001}, want: rmarch.ErrBadMaxDistance},
	}
	for i, test := range tests {
		err := test.m.Validate()
		if !errors.Is(err, test.want) {
			t.Errorf("test %d: want %v, got %v", i, test.want, err)
		}
	}
	// Invalid marchers never loop.
	bad := rmarch.Marcher{MaxDistance: 10}
	if _, ok := bad.Pick(unitSphereScene(), rmarch.Ray{Dir: ms3.Vec{Z: 1}}); ok {
		t.Error("invalid marcher should not report hits")
	}
}

func TestShadow(t *testing.T) {
	m := rmarch.DefaultMarcher()
	shapes := unitSphereScene()
	// Ray towards light blocked by the sphere.
	blocked := m.Shadow(shapes, rmarch.Ray{Origin: ms3.Vec{Z: 5}, Dir: ms3.Vec{Z: -1}}, m.MaxDistance)
	if blocked != 0.2 {
		t.Errorf("blocked shadow ray: want 0.2, got %g", blocked)
	}
	// Ray going away from the sphere is fully lit.
	lit := m.Shadow(shapes, rmarch.Ray{Origin: ms3.Vec{Z: 5}, Dir: ms3.Vec{Z: 1}}, m.MaxDistance)
	if !equalWithin(lit, 1, tol) {
		t.Errorf("unobstructed shadow ray: want 1, got %g", lit)
	}
	// Point light between origin and sphere: sphere is beyond the light.
	short := m.Shadow(shapes, rmarch.Ray{Origin: ms3.Vec{Z: 5}, Dir: ms3.Vec{Z: -1}}, 2)
	if !equalWithin(short, 1, tol) {
		t.Errorf("shadow ray limited before obstacle: want 1, got %g", short)
	}
}
