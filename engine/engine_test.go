package engine

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/png"
	gomath "math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/skyview/engine/assets"
	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/spaghettifunk/skyview/engine/platform"
	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
	"github.com/spaghettifunk/skyview/engine/renderer/software"
	"github.com/spaghettifunk/skyview/engine/ui"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeTestGLB(t *testing.T, name string) string {
	t.Helper()
	buf := make([]byte, 0, 36)
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		buf = binary.LittleEndian.AppendUint32(buf, gomath.Float32bits(v))
	}
	zero := 0
	doc := &gltf.Document{
		Asset:       gltf.Asset{Version: "2.0"},
		Scene:       &zero,
		Scenes:      []*gltf.Scene{{Nodes: []int{0}}},
		Nodes:       []*gltf.Node{{Name: name, Mesh: &zero}},
		Buffers:     []*gltf.Buffer{{ByteLength: len(buf), Data: buf}},
		BufferViews: []*gltf.BufferView{{Buffer: 0, ByteLength: len(buf)}},
		Accessors: []*gltf.Accessor{
			{BufferView: &zero, ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
		},
		Meshes: []*gltf.Mesh{{Primitives: []*gltf.Primitive{{Attributes: map[string]int{"POSITION": 0}}}}},
	}
	path := filepath.Join(t.TempDir(), name+".glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

// writeWideLFont writes a one-page font where only 'L' has a metric.
func writeWideLFont(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	fnt := "info face=\"Wide\" size=8 padding=0,0,0,0 spacing=0,0\n" +
		"common lineHeight=10 base=8 scaleW=8 scaleH=8 pages=1\n" +
		"page id=0 file=\"wide_0.png\"\n" +
		"char id=76 x=0 y=0 width=8 height=8 xoffset=0 yoffset=0 xadvance=50 page=0 chnl=15\n"
	path := filepath.Join(dir, "wide.fnt")
	require.NoError(t, os.WriteFile(path, []byte(fnt), 0o644))
	f, err := os.Create(filepath.Join(dir, "wide_0.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewAlpha(image.Rect(0, 0, 8, 8))))
	require.NoError(t, f.Close())
	return path
}

func testConfig() *ApplicationConfig {
	cfg := DefaultApplicationConfig()
	cfg.StartWidth, cfg.StartHeight = 320, 240
	cfg.Assets.Dir = ""
	cfg.Jobs.Workers = 1
	return cfg
}

func newTestEngine(t *testing.T, g *Game) (*Engine, *platform.Headless) {
	t.Helper()
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = testConfig()
	}
	events := core.NewEventSystem()
	p := platform.NewHeadless(events)
	e, err := New(g, events, p, software.New())
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })
	return e, p
}

func TestFrameHandlerOrder(t *testing.T) {
	e, _ := newTestEngine(t, &Game{})
	expected := []string{"platform", "assets", "overlay", "animation", "controls", "constraints", "render"}
	assert.Equal(t, expected, e.FrameHandlerNames())

	var ran []string
	e.onHandler = func(name string) { ran = append(ran, name) }
	require.NoError(t, e.RunFrame(1.0/60.0))
	assert.Equal(t, expected, ran)
	assert.Equal(t, uint64(1), e.Renderer().FrameNumber())
}

func TestMinimizedWindowOnlyPumps(t *testing.T) {
	e, p := newTestEngine(t, &Game{})
	require.NoError(t, p.Resize(0, 0))

	var ran []string
	e.onHandler = func(name string) { ran = append(ran, name) }
	require.NoError(t, e.RunFrame(0.016))
	require.NoError(t, e.RunFrame(0.016))
	assert.Equal(t, []string{"platform", "assets", "platform", "assets"}, ran)

	w, h := e.GetFramebufferSize()
	assert.Equal(t, uint32(320), w)
	assert.Equal(t, uint32(240), h)
}

func TestResizeUpdatesAspectNotPosition(t *testing.T) {
	var resized [2]uint32
	e, p := newTestEngine(t, &Game{FnOnResize: func(w, h uint32) error {
		resized = [2]uint32{w, h}
		return nil
	}})
	require.NoError(t, e.RunFrame(0.016))
	before := e.Camera().GetPosition()

	require.NoError(t, p.Resize(800, 400))
	require.NoError(t, e.RunFrame(0.016))

	assert.InDelta(t, 2.0, e.Camera().Aspect, 1e-6)
	after := e.Camera().GetPosition()
	assert.InDelta(t, before.X, after.X, 1e-4)
	assert.InDelta(t, before.Y, after.Y, 1e-4)
	assert.InDelta(t, before.Z, after.Z, 1e-4)
	assert.Equal(t, [2]uint32{800, 400}, resized)

	w, h := e.Renderer().Size()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(400), h)
}

func TestPanLimitsAppliedEveryFrame(t *testing.T) {
	e, _ := newTestEngine(t, &Game{})
	e.Controls().Target = math.NewVec3(10, 10, 10)
	require.NoError(t, e.RunFrame(0.016))
	assert.Equal(t, math.NewVec3(2, 2, 2), e.Controls().Target)
}

func queueTestAssets(t *testing.T, e *Engine) {
	e.QueueLoad(assets.LoadRequest{Name: "sky", Path: writeTestGLB(t, "sky"), Type: metadata.ResourceTypeModel, Scale: 0.05})
	e.QueueLoad(assets.LoadRequest{Name: "model", Path: writeTestGLB(t, "model"), Type: metadata.ResourceTypeModel, Scale: 1, ChecksCompletion: true})
}

func TestLoadsCompleteAndOverlayDisappears(t *testing.T) {
	var loaded []string
	g := &Game{}
	e, _ := newTestEngine(t, g)
	g.FnOnAssetLoaded = func(r assets.LoadResult) error {
		model := r.Resource.Data.(*metadata.ModelResourceData)
		e.Scene().Add(model.Root)
		loaded = append(loaded, r.Request.Name)
		e.Progress().OnAssetLoaded(r.Request.Name, r.Request.ChecksCompletion)
		return nil
	}
	queueTestAssets(t, e)

	require.Eventually(t, func() bool {
		return e.RunFrame(0.016) == nil && e.Progress().Complete()
	}, 5*time.Second, 10*time.Millisecond)

	assert.ElementsMatch(t, []string{"sky", "model"}, loaded)
	assert.Equal(t, "Loading... 100%", e.Overlay().LoadingText())
	assert.Equal(t, 2, len(e.Scene().Root.Children))

	// Completion order decides whether the overlay goes away.
	if loaded[1] == "model" {
		assert.Equal(t, ui.OverlayStateDisappearing, e.Overlay().State())
		require.NoError(t, e.RunFrame(2))
		assert.Equal(t, ui.OverlayStateHidden, e.Overlay().State())
		assert.True(t, e.Overlay().IconVisible())
	} else {
		assert.Equal(t, ui.OverlayStateVisible, e.Overlay().State())
	}
}

func TestFailedLoadIsLoggedNotCounted(t *testing.T) {
	out := &syncBuffer{}
	core.SetLogOutput(out)
	t.Cleanup(func() { core.SetLogOutput(os.Stderr) })

	e, _ := newTestEngine(t, &Game{})
	e.QueueLoad(assets.LoadRequest{Name: "sky", Path: filepath.Join(t.TempDir(), "missing.glb"), Type: metadata.ResourceTypeModel})

	require.Eventually(t, func() bool {
		return e.RunFrame(0.016) == nil && strings.Contains(out.String(), "Failed to load asset 'sky'")
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, e.Progress().Counter().Loaded)
	assert.Equal(t, 1, e.Progress().Counter().Total)
	assert.Equal(t, ui.OverlayStateVisible, e.Overlay().State())
}

func TestOverlayFontChangesTextLayout(t *testing.T) {
	plain, _ := newTestEngine(t, &Game{})
	assert.Equal(t, "Loading... 0%", plain.Overlay().LoadingText())
	// 13 glyphs at the fixed advance of 7
	assert.Equal(t, 114, plain.Overlay().RenderData().TextX)

	cfg := testConfig()
	cfg.Overlay.FontPath = writeWideLFont(t)
	withFont, _ := newTestEngine(t, &Game{ApplicationConfig: cfg})
	// 'L' measures 50, the other 12 fall back to 7
	assert.Equal(t, 134, withFont.Overlay().TextWidth("Loading... 0%"))
	assert.Equal(t, 93, withFont.Overlay().RenderData().TextX)
}

func TestMissingOverlayFontKeepsFixedAdvance(t *testing.T) {
	cfg := testConfig()
	cfg.Overlay.FontPath = filepath.Join(t.TempDir(), "none.fnt")
	e, _ := newTestEngine(t, &Game{ApplicationConfig: cfg})
	assert.Equal(t, 114, e.Overlay().RenderData().TextX)
}

func TestLoadLogLinesCarryRequestID(t *testing.T) {
	out := &syncBuffer{}
	core.SetLogOutput(out)
	core.SetLogLevel(core.LogLevelDebug)
	t.Cleanup(func() {
		core.SetLogLevel(core.LogLevelInfo)
		core.SetLogOutput(os.Stderr)
	})

	e, _ := newTestEngine(t, &Game{})
	okID := e.QueueLoad(assets.LoadRequest{Name: "model", Path: writeTestGLB(t, "model"), Type: metadata.ResourceTypeModel, ChecksCompletion: true})
	badID := e.QueueLoad(assets.LoadRequest{Name: "sky", Path: filepath.Join(t.TempDir(), "missing.glb"), Type: metadata.ResourceTypeModel})
	require.NotEqual(t, okID, badID)

	require.Eventually(t, func() bool {
		if e.RunFrame(0.016) != nil {
			return false
		}
		logs := out.String()
		return strings.Contains(logs, okID.String()) && strings.Contains(logs, badID.String())
	}, 5*time.Second, 10*time.Millisecond)

	assert.Contains(t, out.String(), "Failed to load asset 'sky' (request "+badID.String()+")")
	assert.Contains(t, out.String(), "Load request "+okID.String()+" for 'model' finished")
}

func TestRunFeedsFrameMetrics(t *testing.T) {
	e, _ := newTestEngine(t, &Game{})
	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()
	require.NoError(t, e.Run(ctx))

	// a full second of frames has been averaged and counted
	assert.Positive(t, e.Metrics().FrameTime())
	assert.Positive(t, e.Metrics().FramesPerSecond())
}

func TestClickRoutesToOverlay(t *testing.T) {
	e, p := newTestEngine(t, &Game{})
	e.Overlay().Hide()
	require.NoError(t, e.RunFrame(2))
	require.True(t, e.Overlay().HintVisible())

	click := func(x, y float64) {
		require.NoError(t, p.Push(core.EventContext{Type: core.EVENT_CODE_BUTTON_PRESSED, Data: &core.MouseButtonEvent{Button: core.BUTTON_LEFT, X: x, Y: y}}))
		require.NoError(t, p.Push(core.EventContext{Type: core.EVENT_CODE_BUTTON_RELEASED, Data: &core.MouseButtonEvent{Button: core.BUTTON_LEFT, X: x, Y: y}}))
		require.NoError(t, e.RunFrame(0.016))
	}

	click(5, 5)
	assert.False(t, e.Overlay().HintVisible())

	icon := e.Overlay().IconBounds()
	click(float64(icon.X+2), float64(icon.Y+2))
	assert.True(t, e.Overlay().HintVisible())
}

func TestRunStopsOnCancel(t *testing.T) {
	e, _ := newTestEngine(t, &Game{})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.Equal(t, EngineStageInitialized, e.Stage())
	require.NoError(t, e.Run(ctx))
	assert.Equal(t, EngineStageStopped, e.Stage())
	assert.Positive(t, e.Renderer().FrameNumber())

	assert.ErrorIs(t, e.Run(context.Background()), core.ErrEngineStopped)
}

func TestEscapeStopsRun(t *testing.T) {
	e, p := newTestEngine(t, &Game{})
	require.NoError(t, p.Push(core.EventContext{Type: core.EVENT_CODE_KEY_PRESSED, Data: &core.KeyEvent{KeyCode: core.KEY_ESCAPE}}))

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		e.Stop()
		t.Fatal("engine did not stop on escape")
	}
}

func TestWindowCloseStopsRun(t *testing.T) {
	e, p := newTestEngine(t, &Game{})
	p.Close()
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, uint64(0), e.Renderer().FrameNumber())
}
