package rmaux

import (
	"fmt"
	"io"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/rmarch"
	"github.com/soypat/rmarch/orbit"
)

// Viewer configuration file. Every key is optional; absent keys keep the
// value of the base configuration.
//
//	[window]
//	width = 800
//	height = 600
//	title = "rmarch"
//
//	[march]
//	max_distance = 80.0
//	epsilon = 0.001
//
//	[light]
//	kind = "directional" # or "point"
//	vector = [-1.0, -1.0, -1.0]
//	spin = 0.314 # radians per second
//	ambient = "#141414"
//
//	[camera]
//	position = [2.0, 1.5, 4.0]
//	target = [0.0, 0.0, -1.0]
//	fov_deg = 75.0
//	near = 0.01
//	far = 1000.0
//
//	[mouse]
//	left = "rotate"
//	middle = "none"
//	right = "pan"
type fileConfig struct {
	Window struct {
		Width  *int    `toml:"width"`
		Height *int    `toml:"height"`
		Title  *string `toml:"title"`
	} `toml:"window"`
	March struct {
		MaxDistance *float32 `toml:"max_distance"`
		Epsilon     *float32 `toml:"epsilon"`
	} `toml:"march"`
	Light struct {
		Kind    *string     `toml:"kind"`
		Vector  *[3]float32 `toml:"vector"`
		Spin    *float32    `toml:"spin"`
		Ambient *string     `toml:"ambient"`
	} `toml:"light"`
	Camera struct {
		Position *[3]float32 `toml:"position"`
		Target   *[3]float32 `toml:"target"`
		FovDeg   *float32    `toml:"fov_deg"`
		Near     *float32    `toml:"near"`
		Far      *float32    `toml:"far"`
	} `toml:"camera"`
	Mouse struct {
		Left   *string `toml:"left"`
		Middle *string `toml:"middle"`
		Right  *string `toml:"right"`
	} `toml:"mouse"`
}

// LoadUIConfig decodes a TOML viewer configuration from r and applies it over
// base. Unknown keys are rejected.
func LoadUIConfig(r io.Reader, base UIConfig) (UIConfig, error) {
	var fc fileConfig
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	err := dec.Decode(&fc)
	if err != nil {
		return base, fmt.Errorf("decoding viewer config: %w", err)
	}
	cfg := base
	setIf(&cfg.Width, fc.Window.Width)
	setIf(&cfg.Height, fc.Window.Height)
	setIf(&cfg.Title, fc.Window.Title)
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return base, fmt.Errorf("invalid window size %dx%d", cfg.Width, cfg.Height)
	}

	setIf(&cfg.Marcher.MaxDistance, fc.March.MaxDistance)
	setIf(&cfg.Marcher.Epsilon, fc.March.Epsilon)
	if err = cfg.Marcher.Validate(); err != nil {
		return base, err
	}

	if fc.Light.Kind != nil || fc.Light.Vector != nil {
		kind := cfg.Light.Kind()
		if fc.Light.Kind != nil {
			kind, err = parseLightKind(*fc.Light.Kind)
			if err != nil {
				return base, err
			}
		}
		v := cfg.Light.Vec()
		if fc.Light.Vector != nil {
			v = vec(*fc.Light.Vector)
		}
		switch kind {
		case rmarch.LightPoint:
			cfg.Light = rmarch.PointLight(v)
		default:
			cfg.Light = rmarch.DirectionalLight(v)
		}
	}
	setIf(&cfg.LightSpin, fc.Light.Spin)
	if fc.Light.Ambient != nil {
		cfg.Ambient, err = ParseHexColor(*fc.Light.Ambient)
		if err != nil {
			return base, err
		}
	}

	if fc.Camera.Position != nil {
		cfg.Camera.Position = vec(*fc.Camera.Position)
	}
	if fc.Camera.Target != nil {
		cfg.Camera.Target = vec(*fc.Camera.Target)
	}
	if fc.Camera.FovDeg != nil {
		cfg.Camera.FovY = *fc.Camera.FovDeg * math32.Pi / 180
		cfg.Camera.FovX = 0
	}
	setIf(&cfg.Camera.Near, fc.Camera.Near)
	setIf(&cfg.Camera.Far, fc.Camera.Far)
	if cfg.Camera.Position == cfg.Camera.Target {
		return base, fmt.Errorf("camera position and target coincide at %v", cfg.Camera.Position)
	}

	for button, name := range map[orbit.MouseButton]*string{
		orbit.ButtonLeft:   fc.Mouse.Left,
		orbit.ButtonMiddle: fc.Mouse.Middle,
		orbit.ButtonRight:  fc.Mouse.Right,
	} {
		if name == nil {
			continue
		}
		cfg.Bindings[button], err = parseAction(*name)
		if err != nil {
			return base, err
		}
	}
	return cfg, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func vec(a [3]float32) ms3.Vec { return ms3.Vec{X: a[0], Y: a[1], Z: a[2]} }

func parseLightKind(s string) (rmarch.LightKind, error) {
	for _, k := range []rmarch.LightKind{rmarch.LightDirectional, rmarch.LightPoint} {
		if s == k.String() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown light kind %q", s)
}

func parseAction(s string) (orbit.Action, error) {
	for _, a := range []orbit.Action{orbit.ActionNone, orbit.ActionPan, orbit.ActionRotate} {
		if s == a.String() {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown mouse action %q", s)
}
