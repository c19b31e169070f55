package engine

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/math"
)

type CameraConfig struct {
	// Vertical field of view in degrees.
	Fov      float32   `toml:"fov"`
	Near     float32   `toml:"near"`
	Far      float32   `toml:"far"`
	Position math.Vec3 `toml:"position"`
}

type ControlsConfig struct {
	MinDistance float32 `toml:"min_distance"`
	MaxDistance float32 `toml:"max_distance"`
	RotateSpeed float32 `toml:"rotate_speed"`
	PanSpeed    float32 `toml:"pan_speed"`
	ZoomSpeed   float32 `toml:"zoom_speed"`
}

type OverlayConfig struct {
	// Seconds between the start of the disappear transition and the usage hint.
	DisappearDelay float64 `toml:"disappear_delay"`
	// Optional AngelCode .fnt used to lay out the loading text.
	FontPath string `toml:"font_path"`
	HintText string `toml:"hint_text"`
}

type AssetConfig struct {
	Path  string  `toml:"path"`
	Scale float32 `toml:"scale"`
}

type AssetsConfig struct {
	// Directory indexed and watched for changes. Empty disables watching.
	Dir    string      `toml:"dir"`
	Skybox AssetConfig `toml:"skybox"`
	Model  AssetConfig `toml:"model"`
}

type JobsConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

type RendererConfig struct {
	Headless bool `toml:"headless"`
	// When set, frame SnapshotFrame is written there as a PNG.
	SnapshotPath  string `toml:"snapshot_path"`
	SnapshotFrame uint64 `toml:"snapshot_frame"`
}

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// The application name used in windowing, if applicable.
	Name     string        `toml:"name"`
	LogLevel core.LogLevel `toml:"log_level"`
	// Frames per second the loop aims for.
	TargetFPS float64 `toml:"target_fps"`

	Camera    CameraConfig   `toml:"camera"`
	Controls  ControlsConfig `toml:"controls"`
	PanLimits math.Extents3D `toml:"pan_limits"`
	Overlay   OverlayConfig  `toml:"overlay"`
	Assets    AssetsConfig   `toml:"assets"`
	Jobs      JobsConfig     `toml:"jobs"`
	Renderer  RendererConfig `toml:"renderer"`
}

// DefaultApplicationConfig is the viewer as shipped: a 1280x720 window, the
// sky and the low poly scene, and a target clamped to a 4 unit cube.
func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		Name:        "Skyview",
		LogLevel:    core.LogLevelInfo,
		TargetFPS:   60,
		Camera: CameraConfig{
			Fov:      75,
			Near:     0.1,
			Far:      1000,
			Position: math.NewVec3(0, 6.5, 9),
		},
		Controls: ControlsConfig{
			MinDistance: 6,
			MaxDistance: 25,
			RotateSpeed: 1,
			PanSpeed:    1,
			ZoomSpeed:   1,
		},
		PanLimits: math.NewExtents3D(math.NewVec3(-2, -2, -2), math.NewVec3(2, 2, 2)),
		Overlay: OverlayConfig{
			DisappearDelay: 2,
		},
		Assets: AssetsConfig{
			Dir:    "./models",
			Skybox: AssetConfig{Path: "./models/sky.glb", Scale: 0.05},
			Model:  AssetConfig{Path: "./models/free_low_poly_game_assets.glb", Scale: 1},
		},
		Jobs: JobsConfig{
			Workers:   2,
			QueueSize: 8,
		},
	}
}

// LoadConfig reads a TOML file over the defaults. A missing file is not an
// error: the defaults are returned as they are.
func LoadConfig(path string) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			core.LogInfo("No config at %s, using defaults.", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := ParseConfig(raw, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes raw TOML into cfg and validates the result.
func ParseConfig(raw []byte, cfg *ApplicationConfig) error {
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	return cfg.Validate()
}

func (c *ApplicationConfig) Validate() error {
	switch {
	case c.StartWidth == 0 || c.StartHeight == 0:
		return fmt.Errorf("%w: window size %dx%d", core.ErrInvalidConfig, c.StartWidth, c.StartHeight)
	case c.TargetFPS <= 0:
		return fmt.Errorf("%w: target_fps must be positive", core.ErrInvalidConfig)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera near/far %g/%g", core.ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	case c.Camera.Fov <= 0 || c.Camera.Fov >= 180:
		return fmt.Errorf("%w: camera fov %g", core.ErrInvalidConfig, c.Camera.Fov)
	case c.Controls.MinDistance <= 0 || c.Controls.MaxDistance < c.Controls.MinDistance:
		return fmt.Errorf("%w: controls distance %g..%g", core.ErrInvalidConfig, c.Controls.MinDistance, c.Controls.MaxDistance)
	case !c.PanLimits.IsValid():
		return fmt.Errorf("%w: pan_limits min exceeds max", core.ErrInvalidConfig)
	case c.Overlay.DisappearDelay < 0:
		return fmt.Errorf("%w: overlay disappear_delay is negative", core.ErrInvalidConfig)
	case c.Jobs.Workers <= 0 || c.Jobs.QueueSize < 0:
		return fmt.Errorf("%w: jobs workers %d, queue %d", core.ErrInvalidConfig, c.Jobs.Workers, c.Jobs.QueueSize)
	case c.Assets.Skybox.Path == "" || c.Assets.Model.Path == "":
		return fmt.Errorf("%w: both assets need a path", core.ErrInvalidConfig)
	}
	return nil
}
