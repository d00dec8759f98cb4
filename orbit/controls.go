// Package orbit converts pointer and wheel input into the pose of a camera
// orbiting a target point.
package orbit

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/rmarch/camera"
)

// State is the interaction state of the controls.
type State uint8

const (
	Idle State = iota
	Rotating
	Panning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rotating:
		return "rotating"
	case Panning:
		return "panning"
	}
	return "unknown"
}

// Action is what a mouse button does while held down.
type Action uint8

const (
	ActionNone Action = iota
	ActionPan
	ActionRotate
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionPan:
		return "pan"
	case ActionRotate:
		return "rotate"
	}
	return "unknown"
}

// MouseButton identifies a pointer button.
type MouseButton uint8

const (
	ButtonLeft MouseButton = iota
	ButtonMiddle
	ButtonRight
	numButtons
)

// Bindings maps mouse buttons to actions.
type Bindings [numButtons]Action

// DefaultBindings rotates with the left button and pans with the right one.
func DefaultBindings() Bindings {
	var b Bindings
	b[ButtonLeft] = ActionRotate
	b[ButtonMiddle] = ActionNone
	b[ButtonRight] = ActionPan
	return b
}

// Action returns the action bound to button.
func (b Bindings) Action(button MouseButton) Action {
	if button >= numButtons {
		return ActionNone
	}
	return b[button]
}

// Default control speeds.
const (
	DefaultRotateSpeed = math32.Pi
	DefaultPanSpeed    = 1
	DefaultZoomStep    = 0.8
)

// Controls orbits a camera around its target. The spherical coordinates of
// the camera relative to the target are derived once at construction and are
// the source of truth for the camera position afterwards.
//
// Controls are not safe for concurrent use. Input events are expected to be
// delivered from the render loop goroutine.
type Controls struct {
	cam      *camera.Perspective
	target   ms3.Vec
	sph      camera.Spherical
	state    State
	width    float32
	height   float32
	Bindings Bindings
	// RotateSpeed scales rotation. A drag across half the viewport rotates
	// RotateSpeed radians.
	RotateSpeed float32
	// PanSpeed scales panning. A drag across half the viewport pans PanSpeed
	// world units.
	PanSpeed float32
	// ZoomStep is the change of orbit radius per wheel notch.
	ZoomStep float32
	// OnChange is called after every change to the camera pose.
	OnChange func()
}

// New returns controls orbiting cam around its current target. The viewport
// defaults to 1x1 pixels until [Controls.SetViewport] is called.
func New(cam *camera.Perspective) *Controls {
	c := &Controls{
		cam:         cam,
		target:      cam.Target(),
		width:       1,
		height:      1,
		Bindings:    DefaultBindings(),
		RotateSpeed: DefaultRotateSpeed,
		PanSpeed:    DefaultPanSpeed,
		ZoomStep:    DefaultZoomStep,
	}
	c.sph = camera.FromCartesian(ms3.Sub(cam.Position(), c.target)).MakeSafe()
	c.update()
	return c
}

// State returns the current interaction state.
func (c *Controls) State() State { return c.state }

// Spherical returns the camera position relative to the target.
func (c *Controls) Spherical() camera.Spherical { return c.sph }

// Target returns the orbit center.
func (c *Controls) Target() ms3.Vec { return c.target }

// Camera returns the controlled camera.
func (c *Controls) Camera() *camera.Perspective { return c.cam }

// SetViewport sets the size in pixels used to normalize pointer movement.
func (c *Controls) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width = float32(width)
	c.height = float32(height)
}

// PointerDown starts the action bound to button. Presses with another
// action in progress are ignored.
func (c *Controls) PointerDown(button MouseButton) {
	if c.state != Idle {
		return
	}
	switch c.Bindings.Action(button) {
	case ActionRotate:
		c.state = Rotating
	case ActionPan:
		c.state = Panning
	}
}

// PointerUp ends the action in progress.
func (c *Controls) PointerUp() { c.state = Idle }

// PointerLeave ends the action in progress when the pointer leaves the viewport.
func (c *Controls) PointerLeave() { c.state = Idle }

// PointerMove applies pointer movement in pixels to the action in progress.
func (c *Controls) PointerMove(dx, dy float32) {
	if c.state == Idle || (dx == 0 && dy == 0) {
		return
	}
	switch c.state {
	case Rotating:
		mx := dx / (c.width * 0.5) * c.RotateSpeed
		my := dy / (c.height * 0.5) * c.RotateSpeed
		c.Rotate(mx, my)
	case Panning:
		mx := dx / (c.width * 0.5) * c.PanSpeed
		my := dy / (c.height * 0.5) * c.PanSpeed
		c.Pan(mx, my)
	}
}

// Wheel zooms by one ZoomStep per call. Positive deltaY zooms out. The
// orbit radius never drops below the camera's near plane.
func (c *Controls) Wheel(deltaY float32) {
	switch {
	case deltaY > 0:
		c.sph.Radius += c.ZoomStep
	case deltaY < 0:
		c.sph.Radius -= c.ZoomStep
	default:
		return
	}
	c.sph.Radius = math32.Max(c.sph.Radius, c.cam.Near())
	c.update()
}

// Rotate subtracts dAzimuth and dInclination (radians) from the orbit angles.
// The inclination stays off the poles and the azimuth is wrapped into (-π, π].
func (c *Controls) Rotate(dAzimuth, dInclination float32) {
	c.sph.Theta = camera.WrapAngle(c.sph.Theta - dAzimuth)
	c.sph.Phi = ms1.Clamp(c.sph.Phi-dInclination, camera.PolarEpsilon, math32.Pi-camera.PolarEpsilon)
	c.update()
}

// Pan translates camera and target in the plane perpendicular to the camera
// up vector: dx moves opposite to the camera right direction and dy moves
// along the horizontal view direction. Looking straight along the up vector
// pans nothing.
func (c *Controls) Pan(dx, dy float32) {
	up := c.cam.Up()
	if ms3.Norm(up) == 0 {
		return
	}
	up = ms3.Unit(up)
	fwd := ms3.Sub(c.target, c.cam.Position())
	fwd = ms3.Sub(fwd, ms3.Scale(ms3.Dot(fwd, up), up))
	if ms3.Norm(fwd) < 1e-6 {
		return
	}
	fwd = ms3.Unit(fwd)
	right := ms3.Cross(fwd, up)
	delta := ms3.Add(ms3.Scale(-dx, right), ms3.Scale(dy, fwd))
	c.target = ms3.Add(c.target, delta)
	c.cam.SetTarget(c.target)
	c.update()
}

// update places the camera from the spherical coordinates.
func (c *Controls) update() {
	c.cam.SetPosition(ms3.Add(c.target, c.sph.Cartesian()))
	if c.OnChange != nil {
		c.OnChange()
	}
}
