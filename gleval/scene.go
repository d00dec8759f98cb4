package gleval

import (
	"fmt"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/rmarch"
)

// Scene evaluates the combined field of a shape list on the CPU the same way
// the fragment shader does, including the highlight of the selected shape.
type Scene struct {
	shapes []rmarch.Shape
	// tinted is shapes with the selected shape's color highlighted.
	tinted   []rmarch.Shape
	selected int
	marcher  rmarch.Marcher
	bb       ms3.Box
}

var _ ColorSDF3 = (*Scene)(nil)

// NewScene copies shapes into a new Scene evaluated with marcher's limits.
func NewScene(shapes []rmarch.Shape, marcher rmarch.Marcher) (*Scene, error) {
	if err := marcher.Validate(); err != nil {
		return nil, fmt.Errorf("scene marcher: %w", err)
	}
	s := &Scene{
		shapes:   append([]rmarch.Shape(nil), shapes...),
		selected: -1,
		marcher:  marcher,
		bb:       rmarch.Bounds(shapes),
	}
	s.tinted = append([]rmarch.Shape(nil), s.shapes...)
	return s, nil
}

// Shapes returns the scene's shapes. The returned slice must not be modified.
func (s *Scene) Shapes() []rmarch.Shape { return s.shapes }

// Marcher returns the march limits of the scene.
func (s *Scene) Marcher() rmarch.Marcher { return s.marcher }

// Select highlights the i'th shape. Negative values clear the selection.
func (s *Scene) Select(i int) error {
	if i >= len(s.shapes) {
		return fmt.Errorf("selecting shape %d of %d: out of range", i, len(s.shapes))
	}
	if s.selected >= 0 {
		s.tinted[s.selected].Color = s.shapes[s.selected].Color
	}
	if i < 0 {
		s.selected = -1
		return nil
	}
	s.selected = i
	s.tinted[i].Color = rmarch.Highlight(s.shapes[i].Color)
	return nil
}

// Selected returns the index of the highlighted shape or -1.
func (s *Scene) Selected() int { return s.selected }

// Bounds returns a box containing all of the scene's shapes.
func (s *Scene) Bounds() ms3.Box { return s.bb }

// Evaluate implements [SDF3].
func (s *Scene) Evaluate(pos []ms3.Vec, dist []float32) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	maxDist := s.marcher.MaxDistance
	for i, p := range pos {
		dist[i], _ = rmarch.SceneField(s.shapes, p, maxDist)
	}
	return nil
}

// EvaluateColor implements [ColorSDF3].
func (s *Scene) EvaluateColor(pos []ms3.Vec, dist []float32, col []ms3.Vec) error {
	if len(pos) != len(dist) || len(pos) != len(col) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	maxDist := s.marcher.MaxDistance
	for i, p := range pos {
		dist[i], col[i] = rmarch.SceneField(s.tinted, p, maxDist)
	}
	return nil
}

// March marches a single ray through the scene field. Hit colors include the
// selection highlight.
func (s *Scene) March(ray rmarch.Ray) (rmarch.Hit, bool) {
	return s.marcher.March(s.tinted, ray)
}

// Shadow returns the light attenuation along ray, see [rmarch.Marcher.Shadow].
func (s *Scene) Shadow(ray rmarch.Ray, maxDist float32) float32 {
	return s.marcher.Shadow(s.shapes, ray, maxDist)
}

// Pick returns the index of the shape hit first by ray.
func (s *Scene) Pick(ray rmarch.Ray) (rmarch.Hit, bool) {
	return s.marcher.Pick(s.shapes, ray)
}
