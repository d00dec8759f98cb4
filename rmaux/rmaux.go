// Package rmaux contains auxiliary functions to get started quickly with
// rmarch: an interactive viewer, picking, and PNG rendering of scenes.
package rmaux

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/rmarch"
	"github.com/soypat/rmarch/camera"
	"github.com/soypat/rmarch/glbuild"
	"github.com/soypat/rmarch/gleval"
	"github.com/soypat/rmarch/glrender"
	"github.com/soypat/rmarch/orbit"
	"golang.org/x/image/draw"
)

// UIConfig configures the interactive viewer started by [UI].
type UIConfig struct {
	Width, Height int
	Title         string
	// Context cancels the viewer's render loop when done.
	Context context.Context
	// Logger receives viewer events such as picked shapes. Defaults to [slog.Default].
	Logger  *slog.Logger
	Marcher rmarch.Marcher
	Ambient ms3.Vec
	Light   rmarch.Light
	// LightSpin is the angular speed in radians per second the light
	// rotates about the vertical axis.
	LightSpin float32
	Camera    camera.Config
	Bindings  orbit.Bindings
}

// DefaultUIConfig returns the configuration of the demo viewer.
func DefaultUIConfig() UIConfig {
	cam := camera.DefaultConfig()
	cam.Position = ms3.Vec{X: 2, Y: 1.5, Z: 4}
	cam.Target = ms3.Vec{Z: -1}
	return UIConfig{
		Width:     800,
		Height:    600,
		Title:     "rmarch",
		Marcher:   rmarch.DefaultMarcher(),
		Ambient:   ms3.Vec{X: 0.08, Y: 0.08, Z: 0.08},
		Light:     rmarch.DirectionalLight(ms3.Vec{X: -1, Y: -1, Z: -1}),
		LightSpin: 0.1 * math32.Pi,
		Camera:    cam,
		Bindings:  orbit.DefaultBindings(),
	}
}

// UI opens a window and ray marches shapes on the GPU. The camera orbits its
// target with the mouse: bound buttons rotate or pan and the wheel zooms.
// A left click without dragging picks the shape under the cursor and
// highlights it. UI must be called from the main goroutine with the OS
// thread locked and returns when the window closes, Escape is pressed or
// the configured context is done.
func UI(shapes []rmarch.Shape, cfg UIConfig) error {
	if len(shapes) > glbuild.MaxShapes {
		return fmt.Errorf("viewer scene of %d shapes: %w", len(shapes), glbuild.ErrCapacity)
	} else if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("viewer requires positive window dimensions")
	}
	if err := cfg.Marcher.Validate(); err != nil {
		return err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Title == "" {
		cfg.Title = "rmarch"
	}
	return ui(shapes, cfg)
}

// PickPixel returns the shape under pixel (px, py) of a width×height
// viewport with origin at the top left corner. The camera's matrices should
// be refreshed. It reports false when the ray leaves the scene.
func PickPixel(cam *camera.Perspective, shapes []rmarch.Shape, px, py float32, width, height int, marcher rmarch.Marcher) (rmarch.Hit, bool) {
	if width <= 0 || height <= 0 {
		return rmarch.Hit{Index: -1}, false
	}
	ndc := camera.PixelToNDC(px, py, float32(width), float32(height))
	return marcher.Pick(shapes, cam.CastRay(ndc))
}

// RenderConfig configures CPU rendering of a scene to an image.
type RenderConfig struct {
	Width, Height int
	// Supersample renders the scene at Supersample times the resolution
	// and downscales the result, anti-aliasing edges. Values below 2 disable it.
	Supersample int
	// Marcher defaults to [rmarch.DefaultMarcher] when zero.
	Marcher     rmarch.Marcher
	Ambient     ms3.Vec
	Light       rmarch.Light
	Camera      camera.Config
	// Selected is the index of the highlighted shape, negative for none.
	Selected int
}

// RenderConfigFromUI returns a RenderConfig reproducing the first frame of
// the viewer configured by cfg.
func RenderConfigFromUI(cfg UIConfig) RenderConfig {
	return RenderConfig{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Marcher:  cfg.Marcher,
		Ambient:  cfg.Ambient,
		Light:    cfg.Light,
		Camera:   cfg.Camera,
		Selected: -1,
	}
}

// RenderImage ray marches shapes on the CPU as the viewer would display them.
func RenderImage(shapes []rmarch.Shape, cfg RenderConfig) (*image.RGBA, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, errors.New("render requires positive image dimensions")
	}
	if cfg.Marcher == (rmarch.Marcher{}) {
		cfg.Marcher = rmarch.DefaultMarcher()
	}
	scene, err := gleval.NewScene(shapes, cfg.Marcher)
	if err != nil {
		return nil, err
	}
	if cfg.Selected >= 0 {
		err = scene.Select(cfg.Selected)
		if err != nil {
			return nil, err
		}
	}
	ss := max(cfg.Supersample, 1)
	w, h := cfg.Width*ss, cfg.Height*ss
	renderer, err := glrender.NewImageRenderer(w)
	if err != nil {
		return nil, err
	}
	renderer.SetAmbient(cfg.Ambient)
	renderer.SetLight(cfg.Light)
	cam := camera.New(cfg.Camera)
	cam.SetViewport(w, h)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	err = renderer.Render(scene, cam, img)
	if err != nil {
		return nil, err
	}
	if ss == 1 {
		return img, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

// RenderPNGFile renders shapes on the CPU and saves the result to a PNG file with said filename.
func RenderPNGFile(filename string, shapes []rmarch.Shape, cfg RenderConfig) error {
	img, err := RenderImage(shapes, cfg)
	if err != nil {
		return err
	}
	return writePNG(filename, img)
}

// SliceConfig configures a distance field slice rendered by [RenderSlicePNG].
type SliceConfig struct {
	// Z is the height of the XY slicing plane.
	Z float32
	// Height of the image in pixels. The width is sized to preserve the
	// aspect ratio of the scene's bounds.
	Height int
	// CellSize, when positive, caches distances over cubes of this size so
	// that pixels falling in the same cube share a distance. Cells larger
	// than a pixel trade detail for fewer evaluations.
	CellSize float32
	// ColorConversion maps distances to colors. If nil one is chosen
	// automatically.
	ColorConversion func(float32) color.Color
}

// RenderSlicePNG renders the distance field of shapes over an XY plane,
// spanning the scene's bounds, and saves it to a PNG file.
func RenderSlicePNG(filename string, shapes []rmarch.Shape, cfg SliceConfig) error {
	scene, err := gleval.NewScene(shapes, rmarch.DefaultMarcher())
	if err != nil {
		return err
	}
	bb := scene.Bounds()
	sz := bb.Size()
	if sz.X <= 0 || sz.Y <= 0 {
		return errors.New("empty scene bounds")
	} else if cfg.Height <= 0 {
		return errors.New("non-positive image height")
	}
	colorConversion := cfg.ColorConversion
	if colorConversion == nil {
		colorConversion = ColorConversionInigoQuilez(bb.Diagonal() / 3)
	}
	pixPerUnit := float64(cfg.Height) / float64(sz.Y)
	picWidth := max(1, int(pixPerUnit*float64(sz.X)))
	img := image.NewRGBA(image.Rect(0, 0, picWidth, cfg.Height))
	renderer, err := glrender.NewSliceRenderer(max(4096, picWidth), colorConversion)
	if err != nil {
		return err
	}
	var sdf gleval.SDF3 = scene
	if cfg.CellSize > 0 {
		var cache gleval.GridCache
		err = cache.Reset(scene, cfg.CellSize)
		if err != nil {
			return err
		}
		sdf = &cache
	}
	err = renderer.Render(sdf, cfg.Z, img)
	if err != nil {
		return err
	}
	return writePNG(filename, img)
}

func writePNG(filename string, img image.Image) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	err = png.Encode(fp, img)
	if err != nil {
		return err
	}
	return fp.Sync()
}
