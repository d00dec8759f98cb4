// Package camera implements a perspective camera whose matrices are
// recomputed lazily, and spherical coordinates used to orbit it.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/rmarch"
)

// Default camera parameters.
const (
	DefaultFovY   = 75 * math32.Pi / 180
	DefaultAspect = 1
	DefaultNear   = 0.01
	DefaultFar    = 1000
)

// Config configures a [Perspective] camera. Zero fields take the defaults
// given by [DefaultConfig], except Position and Target which may legitimately be zero
// as long as they differ.
type Config struct {
	Position ms3.Vec
	Target   ms3.Vec
	Up       ms3.Vec
	// FovY is the vertical field of view in radians.
	FovY float32
	// FovX is the horizontal field of view in radians. If set the vertical
	// field of view is derived from it as FovX/Aspect and FovY is ignored.
	FovX   float32
	Aspect float32
	Near   float32
	Far    float32
}

// DefaultConfig returns a camera at (0,0,4) looking at the origin with +Y up.
func DefaultConfig() Config {
	return Config{
		Position: ms3.Vec{Z: 4},
		Up:       ms3.Vec{Y: 1},
		FovY:     DefaultFovY,
		Aspect:   DefaultAspect,
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
}

// Perspective is a perspective projection camera. Mutations mark the world
// or projection matrices as stale; call [Perspective.Refresh] before reading
// matrices after a change.
type Perspective struct {
	pos, target, up ms3.Vec
	fov             float32
	fovIsX          bool
	aspect          float32
	near, far       float32

	worldDirty bool
	projDirty  bool

	world    ms3.Mat4 // world to camera (view).
	invWorld ms3.Mat4 // camera to world.
	proj     ms3.Mat4
	invProj  ms3.Mat4
}

// New returns a camera configured by cfg with its matrices computed.
func New(cfg Config) *Perspective {
	def := DefaultConfig()
	if cfg.Up == (ms3.Vec{}) {
		cfg.Up = def.Up
	}
	if cfg.Position == cfg.Target {
		cfg.Position = ms3.Add(cfg.Target, def.Position)
	}
	if cfg.Aspect <= 0 {
		cfg.Aspect = def.Aspect
	}
	if cfg.Near <= 0 {
		cfg.Near = def.Near
	}
	if cfg.Far <= cfg.Near {
		cfg.Far = def.Far
	}
	c := &Perspective{
		pos:    cfg.Position,
		target: cfg.Target,
		up:     cfg.Up,
		aspect: cfg.Aspect,
		near:   cfg.Near,
		far:    cfg.Far,
		fov:    cfg.FovY,
	}
	if cfg.FovX > 0 {
		c.fov = cfg.FovX
		c.fovIsX = true
	} else if cfg.FovY <= 0 {
		c.fov = def.FovY
	}
	c.worldDirty = true
	c.projDirty = true
	c.Refresh()
	return c
}

// Position returns the camera position in world coordinates.
func (c *Perspective) Position() ms3.Vec { return c.pos }

// Target returns the point the camera looks at.
func (c *Perspective) Target() ms3.Vec { return c.target }

// Up returns the up vector used to orient the camera.
func (c *Perspective) Up() ms3.Vec { return c.up }

// Aspect returns the width/height ratio of the viewport.
func (c *Perspective) Aspect() float32 { return c.aspect }

// Near returns the near clipping plane distance.
func (c *Perspective) Near() float32 { return c.near }

// Far returns the far clipping plane distance.
func (c *Perspective) Far() float32 { return c.far }

// FovY returns the effective vertical field of view in radians.
func (c *Perspective) FovY() float32 {
	if c.fovIsX {
		return c.fov / c.aspect
	}
	return c.fov
}

// Forward returns the unit view direction.
func (c *Perspective) Forward() ms3.Vec {
	d := ms3.Sub(c.target, c.pos)
	if ms3.Norm(d) == 0 {
		return ms3.Vec{Z: -1}
	}
	return ms3.Unit(d)
}

// SetPosition moves the camera keeping the target.
func (c *Perspective) SetPosition(p ms3.Vec) {
	c.pos = p
	c.worldDirty = true
}

// SetTarget points the camera at t keeping its position.
func (c *Perspective) SetTarget(t ms3.Vec) {
	c.target = t
	c.worldDirty = true
}

// LookAt sets both position and target.
func (c *Perspective) LookAt(position, target ms3.Vec) {
	c.pos = position
	c.target = target
	c.worldDirty = true
}

// SetUp sets the up vector. A zero vector is ignored.
func (c *Perspective) SetUp(up ms3.Vec) {
	if up == (ms3.Vec{}) {
		return
	}
	c.up = up
	c.worldDirty = true
}

// SetAspect sets the width/height ratio. Non-positive values are ignored.
func (c *Perspective) SetAspect(aspect float32) {
	if !(aspect > 0) {
		return
	}
	c.aspect = aspect
	c.projDirty = true
}

// SetViewport sets the aspect ratio from a viewport size in pixels.
func (c *Perspective) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.SetAspect(float32(width) / float32(height))
}

// SetFovY sets the vertical field of view in radians.
func (c *Perspective) SetFovY(fovy float32) {
	if !(fovy > 0) {
		return
	}
	c.fov = fovy
	c.fovIsX = false
	c.projDirty = true
}

// SetFovX sets the horizontal field of view in radians. The vertical field
// of view then follows the aspect ratio as fovx/aspect.
func (c *Perspective) SetFovX(fovx float32) {
	if !(fovx > 0) {
		return
	}
	c.fov = fovx
	c.fovIsX = true
	c.projDirty = true
}

// SetNear sets the near clipping plane distance. Values not strictly between
// zero and the far plane are ignored.
func (c *Perspective) SetNear(near float32) {
	if !(near > 0 && near < c.far) {
		return
	}
	c.near = near
	c.projDirty = true
}

// SetFar sets the far clipping plane distance. Values not beyond the near
// plane are ignored.
func (c *Perspective) SetFar(far float32) {
	if !(far > c.near) {
		return
	}
	c.far = far
	c.projDirty = true
}

// Refresh recomputes stale matrices and reports whether any changed.
func (c *Perspective) Refresh() bool {
	changed := c.worldDirty || c.projDirty
	if c.worldDirty {
		c.world = lookAt(c.pos, c.target, c.up)
		c.invWorld = c.world.Inverse()
		c.worldDirty = false
	}
	if c.projDirty {
		c.proj = perspective(c.FovY(), c.aspect, c.near, c.far)
		c.invProj = c.proj.Inverse()
		c.projDirty = false
	}
	return changed
}

// World returns the world to camera (view) matrix.
func (c *Perspective) World() ms3.Mat4 { return c.world }

// InvWorld returns the camera to world matrix.
func (c *Perspective) InvWorld() ms3.Mat4 { return c.invWorld }

// Projection returns the projection matrix.
func (c *Perspective) Projection() ms3.Mat4 { return c.proj }

// InvProjection returns the inverse of the projection matrix.
func (c *Perspective) InvProjection() ms3.Mat4 { return c.invProj }

// CastRay returns the world space ray leaving the camera through the point
// ndc in normalized device coordinates, where (-1,-1) is the bottom left
// corner and (1,1) the top right. Matrices should be refreshed.
func (c *Perspective) CastRay(ndc ms2.Vec) rmarch.Ray {
	origin := mulVec4(c.invWorld, [4]float32{0, 0, 0, 1})
	v := mulVec4(c.invProj, [4]float32{ndc.X, ndc.Y, 0, 1})
	d := mulVec4(c.invWorld, [4]float32{v[0], v[1], v[2], 0})
	dir := ms3.Vec{X: d[0], Y: d[1], Z: d[2]}
	if n := ms3.Norm(dir); n > 0 {
		dir = ms3.Scale(1/n, dir)
	}
	return rmarch.Ray{
		Origin: ms3.Vec{X: origin[0], Y: origin[1], Z: origin[2]},
		Dir:    dir,
	}
}

// PixelToNDC converts pixel coordinates with origin at the top left corner
// to normalized device coordinates.
func PixelToNDC(px, py, width, height float32) ms2.Vec {
	return ms2.Vec{
		X: px/width*2 - 1,
		Y: (1-py/height)*2 - 1,
	}
}

// lookAt returns the view matrix of a camera at eye looking at center.
func lookAt(eye, center, up ms3.Vec) ms3.Mat4 {
	z := ms3.Sub(eye, center)
	if ms3.Norm(z) == 0 {
		return ms3.ScalingMat4(ms3.Vec{X: 1, Y: 1, Z: 1})
	}
	z = ms3.Unit(z)
	x := ms3.Cross(up, z)
	if ms3.Norm(x) < 1e-6 {
		// Up parallel to view direction, pick any perpendicular axis.
		alt := ms3.Vec{Z: 1}
		if math32.Abs(z.Z) > 0.9 {
			alt = ms3.Vec{X: 1}
		}
		x = ms3.Cross(alt, z)
	}
	x = ms3.Unit(x)
	y := ms3.Cross(z, x)
	return ms3.NewMat4([]float32{
		x.X, x.Y, x.Z, -ms3.Dot(x, eye),
		y.X, y.Y, y.Z, -ms3.Dot(y, eye),
		z.X, z.Y, z.Z, -ms3.Dot(z, eye),
		0, 0, 0, 1,
	})
}

// perspective returns the OpenGL projection matrix mapping the view frustum
// to clip space with depth in [-1, 1].
func perspective(fovy, aspect, near, far float32) ms3.Mat4 {
	f := 1 / math32.Tan(fovy/2)
	nf := 1 / (near - far)
	return ms3.NewMat4([]float32{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	})
}

// mulVec4 returns m·v with m in row-major order.
func mulVec4(m ms3.Mat4, v [4]float32) (r [4]float32) {
	a := m.Array()
	for i := 0; i < 4; i++ {
		r[i] = a[4*i]*v[0] + a[4*i+1]*v[1] + a[4*i+2]*v[2] + a[4*i+3]*v[3]
	}
	return r
}
