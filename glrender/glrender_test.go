package glrender

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/rmarch"
	"github.com/soypat/rmarch/camera"
	"github.com/soypat/rmarch/gleval"
)

func redSphereScene(t *testing.T) *gleval.Scene {
	t.Helper()
	scene, err := gleval.NewScene([]rmarch.Shape{
		{Type: rmarch.Sphere, Size: [4]float32{1}, Color: ms3.Vec{X: 1}},
	}, rmarch.DefaultMarcher())
	if err != nil {
		t.Fatal(err)
	}
	return scene
}

func TestImageRendererSphere(t *testing.T) {
	const size = 32
	scene := redSphereScene(t)
	cam := camera.New(camera.DefaultConfig())
	ir, err := NewImageRenderer(size)
	if err != nil {
		t.Fatal(err)
	}
	// Light shines from the camera so the sphere's center faces it.
	ir.SetLight(rmarch.DirectionalLight(ms3.Vec{Z: -1}))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	err = ir.Render(scene, cam, img)
	if err != nil {
		t.Fatal(err)
	}
	center := img.RGBAAt(size/2, size/2)
	if center.R < 240 || center.G > 40 || center.B > 40 {
		t.Errorf("center pixel should be lit red, got %v", center)
	}
	black := color.RGBA{A: 255}
	for _, corner := range [][2]int{{0, 0}, {size - 1, 0}, {0, size - 1}, {size - 1, size - 1}} {
		if got := img.RGBAAt(corner[0], corner[1]); got != black {
			t.Errorf("corner %v should be clear color, got %v", corner, got)
		}
	}
}

func TestImageRendererShadowSide(t *testing.T) {
	const size = 16
	scene := redSphereScene(t)
	cam := camera.New(camera.DefaultConfig())
	ir, _ := NewImageRenderer(size)
	// Light from behind the sphere leaves the visible side with ambient only.
	ir.SetLight(rmarch.DirectionalLight(ms3.Vec{Z: 1}))
	ir.SetAmbient(ms3.Vec{X: 0.1, Y: 0.1, Z: 0.1})
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if err := ir.Render(scene, cam, img); err != nil {
		t.Fatal(err)
	}
	want := toRGBA(ms3.Vec{X: 0.1, Y: 0.1, Z: 0.1})
	if got := img.RGBAAt(size/2, size/2); got != want {
		t.Errorf("unlit center: want ambient %v, got %v", want, got)
	}
}

func TestImageRendererSelection(t *testing.T) {
	const size = 16
	scene := redSphereScene(t)
	cam := camera.New(camera.DefaultConfig())
	ir, _ := NewImageRenderer(size)
	ir.SetLight(rmarch.DirectionalLight(ms3.Vec{Z: -1}))
	if err := scene.Select(0); err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	if err := ir.Render(scene, cam, img); err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(size/2, size/2); got.G < 100 {
		t.Errorf("selected sphere should be tinted towards yellow, got %v", got)
	}
}

func TestImageRendererTooWide(t *testing.T) {
	ir, _ := NewImageRenderer(minRowBuffer)
	img := image.NewRGBA(image.Rect(0, 0, minRowBuffer+1, 1))
	err := ir.Render(redSphereScene(t), camera.New(camera.DefaultConfig()), img)
	if err == nil {
		t.Error("expected error for image wider than row buffer")
	}
}

func TestSliceRenderer(t *testing.T) {
	const size = 64
	scene := redSphereScene(t)
	sr, err := NewSliceRenderer(size, nil)
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewGray(image.Rect(0, 0, size, size))
	err = sr.Render(scene, 0, img)
	if err != nil {
		t.Fatal(err)
	}
	// Bounds of a lone sphere are its circumscribed box: center inside, corners outside.
	if got := img.GrayAt(size/2, size/2).Y; got != 0 {
		t.Errorf("center of slice should be interior (black), got %d", got)
	}
	if got := img.GrayAt(0, 0).Y; got != 255 {
		t.Errorf("corner of slice should be exterior (white), got %d", got)
	}
	// Several rows per batch must render the same image.
	wide, err := NewSliceRenderer(5*size/2, nil)
	if err != nil {
		t.Fatal(err)
	}
	img2 := image.NewGray(image.Rect(0, 0, size, size))
	err = wide.Render(scene, 0, img2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(img.Pix, img2.Pix) {
		t.Error("batched rows rendered a different image")
	}
	if _, err := NewSliceRenderer(8, nil); err == nil {
		t.Error("expected error for small buffer")
	}
}

func TestImageRendererNaNField(t *testing.T) {
	const size = 8
	scene, err := gleval.NewScene([]rmarch.Shape{
		{Type: rmarch.Sphere, Size: [4]float32{1}, Color: ms3.Vec{X: 1}},
		{Type: rmarch.Sphere, Size: [4]float32{float32(math.NaN())}, Operation: rmarch.OpBlend, BlendStrength: 0.5},
	}, rmarch.DefaultMarcher())
	if err != nil {
		t.Fatal(err)
	}
	ir, err := NewImageRenderer(size)
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	done := make(chan error, 1)
	go func() {
		done <- ir.Render(scene, camera.New(camera.DefaultConfig()), img)
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("render did not terminate on a NaN distance field")
	}
}
