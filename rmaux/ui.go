//go:build !tinygo && cgo

package rmaux

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.1-core/glgl"
	"github.com/soypat/rmarch"
	"github.com/soypat/rmarch/camera"
	"github.com/soypat/rmarch/glbuild"
	"github.com/soypat/rmarch/glbuild/glsllib"
	"github.com/soypat/rmarch/gleval"
	"github.com/soypat/rmarch/orbit"
)

// Pointer travel in pixels below which a left press and release is a click.
const clickSlop = 3

// sceneBinding is the uniform buffer binding point of the scene block.
const sceneBinding = 0

func ui(shapes []rmarch.Shape, cfg UIConfig) error {
	log := cfg.Logger
	window, term, err := startGLFW(cfg.Width, cfg.Height, cfg.Title)
	if err != nil {
		return err
	}
	defer term()

	programmer := glbuild.NewDefaultProgrammer()
	err = programmer.SetMarcher(cfg.Marcher)
	if err != nil {
		return err
	}
	var vertSrc, fragSrc bytes.Buffer
	_, err = programmer.WriteVertexShader(&vertSrc)
	if err != nil {
		return err
	}
	_, err = programmer.WriteFragmentShader(&fragSrc, glsllib.SceneFunctions())
	if err != nil {
		return err
	}
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vertSrc.String() + "\x00",
		Fragment: fragSrc.String() + "\x00",
	})
	if err != nil {
		return fmt.Errorf("%s\n\n%w", fragSrc.String(), err)
	}
	defer prog.Delete()
	prog.Bind()

	sb := glbuild.NewSceneBuffer()
	err = sb.SetShapes(shapes)
	if err != nil {
		return err
	}
	light := cfg.Light
	sb.SetAmbient(cfg.Ambient)
	sb.SetLight(light)

	width, height := window.GetSize()
	cam := camera.New(cfg.Camera)
	cam.SetViewport(width, height)
	cam.Refresh()
	sb.SetCamera(cam.InvWorld(), cam.InvProjection())

	ubo, err := gleval.NewUniformBuffer(prog.ID(), glbuild.SceneBlockName, sceneBinding, sb.Bytes())
	if err != nil {
		return err
	}
	defer ubo.Delete()
	// Buffer was created with the full block, nothing is pending.
	err = sb.Flush(discardUploader{})
	if err != nil {
		return err
	}
	log.Info("viewer started",
		slog.String("gl", gl.GoStr(gl.GetString(gl.VERSION))),
		slog.Int("shapes", sb.NumShapes()),
		slog.Int("sceneBytes", glbuild.SceneBytes),
	)

	controls := orbit.New(cam)
	controls.Bindings = cfg.Bindings
	controls.SetViewport(width, height)

	// The full screen quad is generated from gl_VertexID, an empty VAO is
	// still required by core profiles.
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	defer gl.DeleteVertexArrays(1, &vao)

	var (
		lastX, lastY   float64
		pressX, pressY float64
		dragged        float64
		leftDown       bool
	)
	lastX, lastY = window.GetCursorPos()
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		dx, dy := xpos-lastX, ypos-lastY
		lastX, lastY = xpos, ypos
		if controls.State() == orbit.Idle {
			return
		}
		dragged += abs(dx) + abs(dy)
		controls.PointerMove(float32(dx), float32(dy))
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		btn, ok := mouseButton(button)
		if !ok {
			return
		}
		switch action {
		case glfw.Press:
			if btn == orbit.ButtonLeft {
				leftDown = true
				pressX, pressY = lastX, lastY
				dragged = 0
			}
			controls.PointerDown(btn)
			if controls.State() != orbit.Idle {
				window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
			}
		case glfw.Release:
			controls.PointerUp()
			window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
			if btn != orbit.ButtonLeft || !leftDown {
				return
			}
			leftDown = false
			if dragged > clickSlop {
				return
			}
			cam.Refresh()
			width, height := w.GetSize()
			hit, ok := PickPixel(cam, shapes, float32(pressX), float32(pressY), width, height, cfg.Marcher)
			if !ok {
				sb.SetSelected(-1)
				log.Info("pick missed")
				return
			}
			sb.SetSelected(hit.Index)
			log.Info("picked shape",
				slog.Int("index", hit.Index),
				slog.String("type", shapes[hit.Index].Type.String()),
				slog.Any("point", hit.Point),
				slog.Float64("distance", float64(hit.Traveled)),
			)
		}
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		// Scrolling up zooms in.
		controls.Wheel(float32(-yoff))
	})

	window.SetCursorEnterCallback(func(w *glfw.Window, entered bool) {
		if !entered {
			controls.PointerLeave()
			leftDown = false
			window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
		}
	})

	window.SetSizeCallback(func(w *glfw.Window, width, height int) {
		cam.SetViewport(width, height)
		controls.SetViewport(width, height)
	})

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	// Main render loop
	previousTime := glfw.GetTime()
	ctx := cfg.Context
	for !window.ShouldClose() {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		currentTime := glfw.GetTime()
		elapsedTime := float32(currentTime - previousTime)
		previousTime = currentTime

		if cfg.LightSpin != 0 {
			light = light.RotateY(cfg.LightSpin * elapsedTime)
			sb.SetLight(light)
		}
		if cam.Refresh() {
			sb.SetCamera(cam.InvWorld(), cam.InvProjection())
		}
		err = sb.Flush(ubo)
		if err != nil {
			return err
		}

		gl.ClearColor(0.0, 0.0, 0.0, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT)
		prog.Bind()
		gl.BindVertexArray(vao)
		gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
		err = glgl.Err()
		if err != nil {
			return fmt.Errorf("drawing frame: %w", err)
		}
		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

// discardUploader marks scene bytes as uploaded without copying them.
type discardUploader struct{}

func (discardUploader) Upload(int, []byte) error { return nil }

func mouseButton(b glfw.MouseButton) (orbit.MouseButton, bool) {
	switch b {
	case glfw.MouseButtonLeft:
		return orbit.ButtonLeft, true
	case glfw.MouseButtonMiddle:
		return orbit.ButtonMiddle, true
	case glfw.MouseButtonRight:
		return orbit.ButtonRight, true
	}
	return 0, false
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func startGLFW(width, height int, title string) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}

	// Create GLFW window
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err = glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating GLFW window: %w", err)
	}
	window.MakeContextCurrent()

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	fbw, fbh := window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbw), int32(fbh))
	return window, glfw.Terminate, nil
}
