package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/math"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultApplicationConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, math.NewVec3(0, 6.5, 9), cfg.Camera.Position)
	assert.Equal(t, float32(75), cfg.Camera.Fov)
	assert.Equal(t, float32(6), cfg.Controls.MinDistance)
	assert.Equal(t, float32(25), cfg.Controls.MaxDistance)
	assert.Equal(t, math.NewVec3(2, 2, 2), cfg.PanLimits.Max)
	assert.Equal(t, float32(0.05), cfg.Assets.Skybox.Scale)
	assert.Equal(t, "./models/free_low_poly_game_assets.glb", cfg.Assets.Model.Path)
	assert.Equal(t, 2.0, cfg.Overlay.DisappearDelay)
}

func TestParseConfigOverridesDefaults(t *testing.T) {
	raw := []byte(`
name = "Test"
log_level = "debug"

[camera]
fov = 60

[pan_limits]
min = { x = -1, y = 0, z = -1 }
max = { x = 1, y = 3, z = 1 }

[assets.model]
path = "https://example.com/scene.glb"
`)
	cfg := DefaultApplicationConfig()
	require.NoError(t, ParseConfig(raw, cfg))

	assert.Equal(t, "Test", cfg.Name)
	assert.Equal(t, core.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, float32(60), cfg.Camera.Fov)
	// untouched keys keep their defaults
	assert.Equal(t, float32(1000), cfg.Camera.Far)
	assert.Equal(t, math.NewVec3(1, 3, 1), cfg.PanLimits.Max)
	assert.Equal(t, "https://example.com/scene.glb", cfg.Assets.Model.Path)
	assert.Equal(t, float32(1), cfg.Assets.Model.Scale)
}

func TestParseConfigRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"syntax":   `name = `,
		"limits":   "[pan_limits]\nmin = { x = 5, y = 0, z = 0 }",
		"distance": "[controls]\nmin_distance = 30",
		"fps":      "target_fps = 0",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			err := ParseConfig([]byte(raw), DefaultApplicationConfig())
			assert.ErrorIs(t, err, core.ErrInvalidConfig)
		})
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "viewer.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultApplicationConfig(), cfg)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte("start_width = 640\nstart_height = 480\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(640), cfg.StartWidth)
	assert.Equal(t, uint32(480), cfg.StartHeight)
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "viewer.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultApplicationConfig(), cfg)
}
