package viewer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/skyview/engine"
	"github.com/spaghettifunk/skyview/engine/animation"
	"github.com/spaghettifunk/skyview/engine/assets"
	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/spaghettifunk/skyview/engine/platform"
	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
	"github.com/spaghettifunk/skyview/engine/renderer/software"
	"github.com/spaghettifunk/skyview/engine/scene"
	"github.com/spaghettifunk/skyview/engine/ui"
)

// newTestViewer starts an engine whose queued loads never get drained, so
// results can be fed to OnAssetLoaded in a chosen order.
func newTestViewer(t *testing.T) (*Viewer, *engine.Engine) {
	t.Helper()
	cfg := engine.DefaultApplicationConfig()
	cfg.StartWidth, cfg.StartHeight = 320, 240
	cfg.Assets.Dir = ""
	dir := t.TempDir()
	cfg.Assets.Skybox.Path = filepath.Join(dir, "sky.glb")
	cfg.Assets.Model.Path = filepath.Join(dir, "scene.glb")

	v := New(cfg)
	events := core.NewEventSystem()
	e, err := engine.New(v.Game, events, platform.NewHeadless(events), software.New())
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })
	return v, e
}

func modelResult(name string, checks bool, scale float32, animated bool) assets.LoadResult {
	root := scene.NewNode(name)
	child := scene.NewNode("part")
	root.Add(child)
	data := &metadata.ModelResourceData{Root: root}
	if animated {
		data.Animations = []*animation.Clip{animation.NewClip("bob", []*animation.Channel{{
			Target: child,
			Path:   animation.PathTranslation,
			Times:  []float32{0, 1},
			Values: []float32{0, 0, 0, 0, 1, 0},
		}})}
	}
	return assets.LoadResult{
		Request:  assets.LoadRequest{Name: name, Scale: scale, ChecksCompletion: checks},
		Resource: &metadata.Resource{Name: name, Data: data},
	}
}

func TestInitializeQueuesBothAssets(t *testing.T) {
	_, e := newTestViewer(t)
	assert.Equal(t, 2, e.Progress().Counter().Total)
	assert.Equal(t, 0, e.Progress().Counter().Loaded)
}

func TestSkyboxThenModelHidesOverlay(t *testing.T) {
	v, e := newTestViewer(t)

	require.NoError(t, v.OnAssetLoaded(modelResult(SkyboxName, false, 0.05, false)))
	assert.Equal(t, "Loading... 50%", e.Overlay().LoadingText())
	require.NoError(t, v.OnAssetLoaded(modelResult(ModelName, true, 1, true)))

	assert.Equal(t, "Loading... 100%", e.Overlay().LoadingText())
	assert.Equal(t, ui.OverlayStateDisappearing, e.Overlay().State())
	assert.Equal(t, math.NewVec3(0.05, 0.05, 0.05), v.Skybox().Transform.Scale)
	assert.Equal(t, math.NewVec3One(), v.Model().Transform.Scale)
	assert.Len(t, e.Scene().Root.Children, 2)
}

func TestModelThenSkyboxKeepsOverlay(t *testing.T) {
	v, e := newTestViewer(t)

	require.NoError(t, v.OnAssetLoaded(modelResult(ModelName, true, 1, true)))
	require.NoError(t, v.OnAssetLoaded(modelResult(SkyboxName, false, 0.05, false)))

	assert.True(t, e.Progress().Complete())
	assert.Equal(t, "Loading... 100%", e.Overlay().LoadingText())
	assert.Equal(t, ui.OverlayStateVisible, e.Overlay().State())
}

func TestModelAnimationsLoopForever(t *testing.T) {
	v, e := newTestViewer(t)
	require.NoError(t, v.OnAssetLoaded(modelResult(ModelName, true, 1, true)))

	require.NotNil(t, v.Mixer())
	require.Len(t, e.Mixers(), 1)
	actions := v.Mixer().Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, animation.LoopRepeat, actions[0].Loop)
	assert.Equal(t, animation.Infinite, actions[0].Repetitions)
	assert.False(t, actions[0].ClampWhenFinished)
	assert.True(t, actions[0].IsRunning())

	part := v.Model().Find("part")
	require.NoError(t, e.RunFrame(0.5))
	assert.InDelta(t, 0.5, part.Transform.Position.Y, 1e-4)
	require.NoError(t, e.RunFrame(1.0))
	// wrapped around to 1.5 mod 1
	assert.InDelta(t, 0.5, part.Transform.Position.Y, 1e-4)
}

func TestModelWithoutAnimationsIsShownButNotCounted(t *testing.T) {
	v, e := newTestViewer(t)

	require.NoError(t, v.OnAssetLoaded(modelResult(SkyboxName, false, 0.05, false)))
	require.NoError(t, v.OnAssetLoaded(modelResult(ModelName, true, 1, false)))

	assert.Nil(t, v.Mixer())
	assert.NotNil(t, v.Model())
	assert.Len(t, e.Scene().Root.Children, 2)
	assert.Equal(t, 1, e.Progress().Counter().Loaded)
	assert.Equal(t, "Loading... 50%", e.Overlay().LoadingText())
	assert.Equal(t, ui.OverlayStateVisible, e.Overlay().State())
}

func TestNonModelResourceRejected(t *testing.T) {
	v, e := newTestViewer(t)
	err := v.OnAssetLoaded(assets.LoadResult{
		Request:  assets.LoadRequest{Name: ModelName},
		Resource: &metadata.Resource{Data: &metadata.BitmapFontResourceData{}},
	})
	assert.ErrorIs(t, err, core.ErrUnsupportedAsset)
	assert.Equal(t, 0, e.Progress().Counter().Loaded)
}

func TestResizeIsForwarded(t *testing.T) {
	v, _ := newTestViewer(t)
	w, h := v.Size()
	assert.Equal(t, uint32(320), w)
	assert.Equal(t, uint32(240), h)
}
