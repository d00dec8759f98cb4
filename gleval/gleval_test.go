package gleval_test

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/rmarch"
	"github.com/soypat/rmarch/gleval"
)

func sphereScene(t *testing.T) *gleval.Scene {
	t.Helper()
	scene, err := gleval.NewScene([]rmarch.Shape{
		{Type: rmarch.Sphere, Size: [4]float32{1}, Color: ms3.Vec{X: 1}},
		{Type: rmarch.Box, Position: ms3.Vec{X: 3}, Size: [4]float32{0.5, 0.5, 0.5}, Color: ms3.Vec{Z: 1}},
	}, rmarch.DefaultMarcher())
	if err != nil {
		t.Fatal(err)
	}
	return scene
}

func TestSceneEvaluate(t *testing.T) {
	scene := sphereScene(t)
	pos := []ms3.Vec{{}, {X: 2}, {Y: 3}, {X: 3, Y: 1}}
	dist := make([]float32, len(pos))
	col := make([]ms3.Vec, len(pos))
	if err := scene.EvaluateColor(pos, dist, col); err != nil {
		t.Fatal(err)
	}
	want := []float32{-1, 0.5, 2, 0.5}
	for i, d := range dist {
		if math32.Abs(d-want[i]) > 1e-5 {
			t.Errorf("pos %v: want distance %g, got %g", pos[i], want[i], d)
		}
	}
	if col[0] != (ms3.Vec{X: 1}) || col[3] != (ms3.Vec{Z: 1}) {
		t.Errorf("unexpected colors %v", col)
	}
	dist2 := make([]float32, len(pos))
	if err := scene.Evaluate(pos, dist2); err != nil {
		t.Fatal(err)
	}
	for i := range dist {
		if dist[i] != dist2[i] {
			t.Errorf("Evaluate and EvaluateColor disagree at %v", pos[i])
		}
	}
	if err := scene.Evaluate(pos, dist[:1]); err == nil {
		t.Error("expected length mismatch error")
	}
	if err := scene.Evaluate(nil, nil); err == nil {
		t.Error("expected empty buffer error")
	}
}

func TestSceneSelectHighlight(t *testing.T) {
	scene := sphereScene(t)
	pos := []ms3.Vec{{}}
	dist := make([]float32, 1)
	col := make([]ms3.Vec, 1)
	if err := scene.Select(0); err != nil {
		t.Fatal(err)
	}
	scene.EvaluateColor(pos, dist, col)
	if want := rmarch.Highlight(ms3.Vec{X: 1}); col[0] != want {
		t.Errorf("selected color: want %v, got %v", want, col[0])
	}
	if scene.Shapes()[0].Color != (ms3.Vec{X: 1}) {
		t.Error("selection modified the scene's shapes")
	}
	scene.Select(-1)
	scene.EvaluateColor(pos, dist, col)
	if col[0] != (ms3.Vec{X: 1}) {
		t.Errorf("deselected color: got %v", col[0])
	}
	if scene.Selected() != -1 {
		t.Errorf("want no selection, got %d", scene.Selected())
	}
	if err := scene.Select(2); err == nil {
		t.Error("expected out of range selection error")
	}
}

func TestNewSceneBadMarcher(t *testing.T) {
	_, err := gleval.NewScene(nil, rmarch.Marcher{MaxDistance: 1})
	if !errors.Is(err, rmarch.ErrBadEpsilon) {
		t.Errorf("want ErrBadEpsilon, got %v", err)
	}
}

func TestNormalEstimator(t *testing.T) {
	scene := sphereScene(t)
	pos := []ms3.Vec{{X: 1}, {Y: -1}, {Z: 1}}
	normals := make([]ms3.Vec, len(pos))
	var ne gleval.NormalEstimator
	err := ne.Normals(scene, pos, normals, 1e-3)
	if err != nil {
		t.Fatal(err)
	}
	for i, n := range normals {
		if ms3.Norm(ms3.Sub(n, pos[i])) > 1e-3 {
			t.Errorf("normal at %v: got %v", pos[i], n)
		}
	}
	// Buffers are reused for a smaller batch.
	err = ne.Normals(scene, pos[:1], normals[:1], 1e-3)
	if err != nil {
		t.Fatal(err)
	}
	if ms3.Norm(ms3.Sub(normals[0], pos[0])) > 1e-3 {
		t.Errorf("reused estimator: got %v", normals[0])
	}
	if err := ne.Normals(scene, pos, normals, 0); err == nil {
		t.Error("expected invalid step error")
	}
	if err := ne.Normals(scene, pos, normals[:1], 1e-3); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestGridCache(t *testing.T) {
	scene := sphereScene(t)
	var cache gleval.GridCache
	if err := cache.Reset(scene, 0.5); err != nil {
		t.Fatal(err)
	}
	// First two positions share the cell centered at (0.25,0.25,0.25).
	pos := []ms3.Vec{{X: 0.1}, {X: 0.2}, {X: 0.7}}
	dist := make([]float32, len(pos))
	if err := cache.Evaluate(pos, dist); err != nil {
		t.Fatal(err)
	}
	want := math32.Sqrt(3*0.25*0.25) - 1
	if math32.Abs(dist[0]-want) > 1e-5 || dist[1] != dist[0] {
		t.Errorf("want cell distance %g, got %v", want, dist)
	}
	if cache.Hits() != 1 || cache.Evaluations() != 3 {
		t.Errorf("want 1 hit of 3 evaluations, got %d of %d", cache.Hits(), cache.Evaluations())
	}
	if err := cache.Evaluate(pos, dist); err != nil {
		t.Fatal(err)
	}
	if cache.Hits() != 4 || cache.Evaluations() != 6 {
		t.Errorf("want 4 hits of 6 evaluations, got %d of %d", cache.Hits(), cache.Evaluations())
	}
	if cache.Bounds() != scene.Bounds() {
		t.Error("cache bounds differ from scene bounds")
	}
	if err := cache.Reset(scene, 0.5); err != nil {
		t.Fatal(err)
	}
	if cache.Hits() != 0 || cache.Evaluations() != 0 {
		t.Error("reset should clear statistics")
	}
	if err := cache.Reset(scene, 0); err == nil {
		t.Error("expected invalid cell size error")
	}
}
