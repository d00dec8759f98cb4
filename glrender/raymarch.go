package glrender

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/rmarch"
	"github.com/soypat/rmarch/camera"
	"github.com/soypat/rmarch/gleval"
)

// ImageRenderer sphere traces a scene through a perspective camera. Rays of
// an image row are marched together so every step is a single batched
// evaluation of the scene field. Hits are shaded like the fragment shader:
// lambert lighting of a single light, a hard shadow with soft edges and an
// ambient term. Misses are black.
type ImageRenderer struct {
	light   rmarch.Light
	ambient ms3.Vec

	rays     []rmarch.Ray
	traveled []float32
	hit      []bool
	done     []bool
	pos      []ms3.Vec
	dist     []float32
	col      []ms3.Vec
	colors   []ms3.Vec
	idx      []int
	normals  []ms3.Vec
	normEst  gleval.NormalEstimator
}

// NewImageRenderer returns an ImageRenderer able to render images at most
// maxWidth pixels wide.
func NewImageRenderer(maxWidth int) (*ImageRenderer, error) {
	if maxWidth < minRowBuffer {
		maxWidth = minRowBuffer
	}
	ir := &ImageRenderer{
		light:    rmarch.DirectionalLight(ms3.Vec{X: -1, Y: -1, Z: -1}),
		ambient:  ms3.Vec{X: 0.08, Y: 0.08, Z: 0.08},
		rays:     make([]rmarch.Ray, maxWidth),
		traveled: make([]float32, maxWidth),
		hit:      make([]bool, maxWidth),
		done:     make([]bool, maxWidth),
		pos:      make([]ms3.Vec, maxWidth),
		dist:     make([]float32, maxWidth),
		col:      make([]ms3.Vec, maxWidth),
		colors:   make([]ms3.Vec, maxWidth),
		idx:      make([]int, maxWidth),
		normals:  make([]ms3.Vec, maxWidth),
	}
	return ir, nil
}

// SetLight sets the light used for shading.
func (ir *ImageRenderer) SetLight(l rmarch.Light) { ir.light = l }

// SetAmbient sets the ambient color added to lit surfaces.
func (ir *ImageRenderer) SetAmbient(c ms3.Vec) { ir.ambient = c }

// Render renders scene as seen by cam into img. The camera's matrices are
// refreshed before rendering. The camera's aspect ratio is not changed to
// match the image.
func (ir *ImageRenderer) Render(scene *gleval.Scene, cam *camera.Perspective, img setImage) error {
	if scene == nil || cam == nil {
		return errors.New("nil scene or camera")
	}
	bb := img.Bounds()
	w, h := bb.Dx(), bb.Dy()
	if w > len(ir.rays) {
		return fmt.Errorf("image width %d exceeds renderer row buffer %d", w, len(ir.rays))
	} else if w == 0 || h == 0 {
		return nil
	}
	cam.Refresh()
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			ndc := camera.PixelToNDC(float32(i)+0.5, float32(j)+0.5, float32(w), float32(h))
			ir.rays[i] = cam.CastRay(ndc)
		}
		err := ir.renderRow(scene, w)
		if err != nil {
			return fmt.Errorf("rendering row %d: %w", j, err)
		}
		for i := 0; i < w; i++ {
			img.Set(bb.Min.X+i, bb.Min.Y+j, toRGBA(ir.colors[i]))
		}
	}
	return nil
}

func (ir *ImageRenderer) renderRow(scene *gleval.Scene, w int) error {
	m := scene.Marcher()
	for i := 0; i < w; i++ {
		ir.traveled[i] = 0
		ir.hit[i] = false
		ir.done[i] = false
		ir.colors[i] = ms3.Vec{}
	}
	// March all rays of the row in lockstep, evaluating only live rays.
	for {
		n := 0
		for i := 0; i < w; i++ {
			if ir.done[i] {
				continue
			}
			if !(ir.traveled[i] < m.MaxDistance) {
				ir.done[i] = true
				continue
			}
			ir.idx[n] = i
			ir.pos[n] = ir.rays[i].At(ir.traveled[i])
			n++
		}
		if n == 0 {
			break
		}
		err := scene.EvaluateColor(ir.pos[:n], ir.dist[:n], ir.col[:n])
		if err != nil {
			return err
		}
		for k, i := range ir.idx[:n] {
			d := ir.dist[k]
			if math32.IsNaN(d) {
				// Malformed scene data: count the pixel as a miss.
				ir.done[i] = true
				continue
			}
			ir.traveled[i] += d
			if d <= m.Epsilon {
				ir.hit[i] = true
				ir.done[i] = true
				ir.colors[i] = ir.col[k]
			}
		}
	}

	// Normals of all hits in a single batch.
	n := 0
	for i := 0; i < w; i++ {
		if !ir.hit[i] {
			continue
		}
		ir.idx[n] = i
		ir.pos[n] = ir.rays[i].At(ir.traveled[i] - m.Epsilon)
		n++
	}
	if n == 0 {
		return nil
	}
	err := ir.normEst.Normals(scene, ir.pos[:n], ir.normals[:n], 2*m.Epsilon)
	if err != nil {
		return err
	}
	bias := 50 * m.Epsilon
	for k, i := range ir.idx[:n] {
		normal := ir.normals[k]
		hit := ir.rays[i].At(ir.traveled[i])
		toLight, lightDst := ir.light.ToLight(hit, m.MaxDistance)
		lighting := ms1.Clamp(ms3.Dot(normal, toLight), 0, 1)
		shadow := scene.Shadow(rmarch.Ray{Origin: ms3.Add(hit, ms3.Scale(bias, normal)), Dir: toLight}, lightDst)
		ir.colors[i] = ms3.Add(ms3.Scale(lighting*shadow, ir.colors[i]), ir.ambient)
	}
	return nil
}
