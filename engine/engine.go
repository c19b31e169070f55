package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spaghettifunk/skyview/engine/animation"
	"github.com/spaghettifunk/skyview/engine/assets"
	"github.com/spaghettifunk/skyview/engine/assets/loaders"
	"github.com/spaghettifunk/skyview/engine/controls"
	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/spaghettifunk/skyview/engine/platform"
	"github.com/spaghettifunk/skyview/engine/renderer"
	"github.com/spaghettifunk/skyview/engine/renderer/components"
	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
	"github.com/spaghettifunk/skyview/engine/scene"
	"github.com/spaghettifunk/skyview/engine/systems"
	"github.com/spaghettifunk/skyview/engine/ui"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine initialization is complete, no frame ran yet
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine was stopped and cannot run again
	EngineStageStopped
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageInitialized:
		return "idle"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting down"
	case EngineStageStopped:
		return "stopped"
	default:
		return fmt.Sprintf("Stage(%d)", s)
	}
}

// errStopRequested ends the loop without reporting a failure.
var errStopRequested = errors.New("stop requested")

// FrameHandler is one step of a frame. Handlers run in slice order.
type FrameHandler struct {
	Name string
	Fn   func(deltaTime float64) error
	// RunWhenSuspended keeps the handler running while the window is minimized.
	RunWhenSuspended bool
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig
	isSuspended  bool
	width        uint32
	height       uint32

	platform      platform.Platform
	events        *core.EventSystem
	input         *core.InputState
	clock         *core.Clock
	metrics       *core.Metrics
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	renderer      *renderer.Renderer

	scene    *scene.Scene
	overlay  *ui.Overlay
	controls *controls.OrbitControls
	mixers   []*animation.Mixer
	handlers []FrameHandler

	stopCh       chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once

	// onHandler, when set, is told the name of every handler before it runs.
	onHandler func(name string)
}

/**
 * @brief Builds the engine and its systems. Nothing touches the platform
 * until Initialize.
 * @param g The application hooks and configuration.
 * @param events The bus the platform fires window events on.
 * @param p The window platform.
 * @param backend The render backend.
 */
func New(g *Game, events *core.EventSystem, p platform.Platform, backend renderer.RendererBackend) (*Engine, error) {
	cfg := g.ApplicationConfig
	if cfg == nil {
		cfg = DefaultApplicationConfig()
		g.ApplicationConfig = cfg
	}
	if err := cfg.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	core.SetLogLevel(cfg.LogLevel)

	overlay := ui.NewOverlay(ui.OverlayConfig{
		DisappearDelay: cfg.Overlay.DisappearDelay,
		HintText:       cfg.Overlay.HintText,
		InitialText:    fmt.Sprintf(systems.LoadingTextFormat, 0),
	}, cfg.StartWidth, cfg.StartHeight)

	sm, err := systems.NewSystemManager(&systems.SystemManagerConfig{
		Camera: systems.CameraSystemConfig{
			MaxCameraCount: 4,
			Fov:            cfg.Camera.Fov,
			Aspect:         float32(cfg.StartWidth) / float32(cfg.StartHeight),
			Near:           cfg.Camera.Near,
			Far:            cfg.Camera.Far,
			StartPosition:  cfg.Camera.Position,
			PanLimits:      cfg.PanLimits,
		},
		JobWorkers:   cfg.Jobs.Workers,
		JobQueueSize: cfg.Jobs.QueueSize,
	}, overlay)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am, err := assets.NewAssetManager(sm.JobSystem, cfg.Jobs.QueueSize+1)
	if err != nil {
		core.LogError(err.Error())
		_ = sm.Shutdown()
		return nil, err
	}

	oc := controls.NewOrbitControls(sm.CameraSystem.GetDefault(), controls.OrbitConfig{
		MinDistance:   cfg.Controls.MinDistance,
		MaxDistance:   cfg.Controls.MaxDistance,
		MinPolarAngle: 0,
		MaxPolarAngle: math.K_PI,
		RotateSpeed:   cfg.Controls.RotateSpeed,
		PanSpeed:      cfg.Controls.PanSpeed,
		ZoomSpeed:     cfg.Controls.ZoomSpeed,
	}, cfg.StartHeight)

	e := &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		config:        cfg,
		width:         cfg.StartWidth,
		height:        cfg.StartHeight,
		platform:      p,
		events:        events,
		input:         core.NewInputState(),
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
		assetManager:  am,
		systemManager: sm,
		renderer:      renderer.New(backend),
		scene:         scene.New(),
		overlay:       overlay,
		controls:      oc,
		stopCh:        make(chan struct{}),
	}
	e.handlers = e.frameHandlers()
	return e, nil
}

// frameHandlers is the fixed order of every frame.
func (e *Engine) frameHandlers() []FrameHandler {
	return []FrameHandler{
		{Name: "platform", Fn: e.pumpMessages, RunWhenSuspended: true},
		{Name: "assets", Fn: e.drainLoads, RunWhenSuspended: true},
		{Name: "overlay", Fn: e.updateOverlay},
		{Name: "animation", Fn: e.updateAnimation},
		{Name: "controls", Fn: e.updateControls},
		{Name: "constraints", Fn: e.enforceConstraints},
		{Name: "render", Fn: e.render},
	}
}

// FrameHandlerNames lists the per-frame steps in execution order.
func (e *Engine) FrameHandlerNames() []string {
	names := make([]string, len(e.handlers))
	for i, h := range e.handlers {
		names[i] = h.Name
	}
	return names
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("initialize in stage %s: %w", e.currentStage, core.ErrEngineRunning)
	}

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e.onResized)
	e.events.Register(core.EVENT_CODE_BUTTON_PRESSED, e.onButton)
	e.events.Register(core.EVENT_CODE_BUTTON_RELEASED, e.onButton)
	e.events.Register(core.EVENT_CODE_MOUSE_MOVED, e.onMouseMove)
	e.events.Register(core.EVENT_CODE_CLICK, e.onClick)
	e.controls.Register(e.events)

	cfg := e.config
	if err := e.platform.Startup(cfg.Name, cfg.StartPosX, cfg.StartPosY, cfg.StartWidth, cfg.StartHeight); err != nil {
		return err
	}

	if err := e.renderer.Initialize(cfg.Name, e.width, e.height); err != nil {
		return err
	}

	modelLoader := &loaders.ModelLoader{OnProgress: newDownloadLogger()}
	if err := e.assetManager.Initialize(e.watchDir(), modelLoader); err != nil {
		return err
	}

	if cfg.Overlay.FontPath != "" {
		res, err := e.assetManager.LoadAsset(cfg.Overlay.FontPath, metadata.ResourceTypeBitmapFont, nil)
		if err != nil {
			core.LogWarn("Overlay font unavailable, using fixed advance: %s", err)
		} else {
			e.overlay.SetFont(res.Data.(*metadata.BitmapFontResourceData))
		}
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return err
		}
	}

	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// watchDir returns the asset directory to index, or "" when it does not exist.
func (e *Engine) watchDir() string {
	dir := e.config.Assets.Dir
	if dir == "" {
		return ""
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		core.LogWarn("Asset directory %s not found, not watching it.", dir)
		return ""
	}
	return dir
}

/**
 * @brief Runs frames until ctx is cancelled, Stop is called, the window
 * closes or a frame fails.
 */
func (e *Engine) Run(ctx context.Context) error {
	switch e.currentStage {
	case EngineStageInitialized:
	case EngineStageRunning:
		return core.ErrEngineRunning
	default:
		return fmt.Errorf("run in stage %s: %w", e.currentStage, core.ErrEngineStopped)
	}
	e.currentStage = EngineStageRunning
	defer func() {
		e.currentStage = EngineStageStopped
		e.clock.Stop()
	}()

	e.clock.Start()

	frameTime := time.Duration(float64(time.Second) / e.config.TargetFPS)
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			core.LogInfo("Context cancelled, stopping.")
			return nil
		case <-e.stopCh:
			return nil
		default:
		}

		// delta spans the previous frame start to this one, ticker wait included
		delta := e.clock.Delta()
		if err := e.RunFrame(delta); err != nil {
			if errors.Is(err, errStopRequested) {
				return nil
			}
			core.LogError("Frame failed, shutting down: %s", err)
			return err
		}
		if e.metrics.Update(delta) {
			core.LogDebug("%.0f fps, %.2f ms/frame", e.metrics.FramesPerSecond(), e.metrics.FrameTime())
		}

		// Give the rest of the frame back until the next tick.
		select {
		case <-ticker.C:
		case <-ctx.Done():
		case <-e.stopCh:
		}
	}
}

// RunFrame runs every frame handler once, in order.
func (e *Engine) RunFrame(deltaTime float64) error {
	for _, h := range e.handlers {
		if e.isSuspended && !h.RunWhenSuspended {
			continue
		}
		if e.onHandler != nil {
			e.onHandler(h.Name)
		}
		if err := h.Fn(deltaTime); err != nil {
			if errors.Is(err, errStopRequested) {
				return err
			}
			return fmt.Errorf("%s: %w", h.Name, err)
		}
	}
	return nil
}

// Stop asks the loop to end after the current frame. Safe from any goroutine.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
	})
}

func (e *Engine) pumpMessages(float64) error {
	if !e.platform.PumpMessages() {
		core.LogInfo("Window closed, shutting down.")
		return errStopRequested
	}
	return nil
}

func (e *Engine) drainLoads(float64) error {
	e.assetManager.Drain(e.onLoadResult)
	return nil
}

func (e *Engine) onLoadResult(result assets.LoadResult) {
	if result.Err != nil {
		e.systemManager.ProgressSystem.OnAssetFailed(result.Request.Name, result.Request.ID, result.Err)
		return
	}
	core.LogDebug("Load request %s for '%s' finished (%s).", result.Request.ID, result.Request.Name, result.Resource.FullPath)
	if e.gameInstance.FnOnAssetLoaded == nil {
		e.systemManager.ProgressSystem.OnAssetLoaded(result.Request.Name, result.Request.ChecksCompletion)
		return
	}
	if err := e.gameInstance.FnOnAssetLoaded(result); err != nil {
		core.LogError("Asset '%s' could not be added: %s", result.Request.Name, err)
	}
}

func (e *Engine) updateOverlay(deltaTime float64) error {
	e.overlay.Update(deltaTime)
	return nil
}

func (e *Engine) updateAnimation(deltaTime float64) error {
	for _, m := range e.mixers {
		m.Update(deltaTime)
	}
	return nil
}

func (e *Engine) updateControls(float64) error {
	e.controls.Update()
	return nil
}

func (e *Engine) enforceConstraints(float64) error {
	systems.EnforcePanLimits(&e.controls.Target, e.systemManager.CameraSystem.PanLimits)
	return nil
}

func (e *Engine) render(deltaTime float64) error {
	err := e.renderer.Render(e.scene, e.systemManager.CameraSystem.GetDefault(), e.overlay.RenderData(), deltaTime)
	// NOTE: Input state copying should always be handled after any input
	// should be recorded; I.E. as the last thing of the frame.
	e.input.Update()
	return err
}

// QueueLoad counts req as expected and loads it in the background. Its
// result reaches FnOnAssetLoaded on a later frame.
func (e *Engine) QueueLoad(req assets.LoadRequest) uuid.UUID {
	e.systemManager.ProgressSystem.Expect(req.Name)
	return e.assetManager.LoadAsync(req)
}

// AddMixer makes the loop advance m every frame.
func (e *Engine) AddMixer(m *animation.Mixer) {
	e.mixers = append(e.mixers, m)
}

// Shutdown releases every system. Calls after the first are no-ops.
func (e *Engine) Shutdown() error {
	var err error
	e.shutdownOnce.Do(func() {
		e.Stop()
		e.currentStage = EngineStageShuttingDown
		defer func() { e.currentStage = EngineStageStopped }()

		var errs []error
		if e.gameInstance.FnShutdown != nil {
			errs = append(errs, e.gameInstance.FnShutdown())
		}
		errs = append(errs,
			e.assetManager.Shutdown(),
			e.systemManager.Shutdown(),
			e.renderer.Shutdown(),
			e.platform.Shutdown(),
			e.events.Shutdown(),
		)
		err = errors.Join(errs...)
	})
	return err
}

func (e *Engine) Stage() Stage                        { return e.currentStage }
func (e *Engine) Config() *ApplicationConfig          { return e.config }
func (e *Engine) Events() *core.EventSystem           { return e.events }
func (e *Engine) Scene() *scene.Scene                 { return e.scene }
func (e *Engine) Overlay() *ui.Overlay                { return e.overlay }
func (e *Engine) Controls() *controls.OrbitControls   { return e.controls }
func (e *Engine) Progress() *systems.ProgressSystem   { return e.systemManager.ProgressSystem }
func (e *Engine) Assets() *assets.AssetManager        { return e.assetManager }
func (e *Engine) Renderer() *renderer.Renderer        { return e.renderer }
func (e *Engine) Metrics() *core.Metrics              { return e.metrics }
func (e *Engine) Camera() *components.Camera          { return e.systemManager.CameraSystem.GetDefault() }
func (e *Engine) Mixers() []*animation.Mixer          { return e.mixers }
func (e *Engine) CameraSystem() *systems.CameraSystem { return e.systemManager.CameraSystem }

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		{
			core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
			e.Stop()
			return true
		}
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_APPLICATION_QUIT,
		})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onButton(context core.EventContext) bool {
	be, ok := context.Data.(*core.MouseButtonEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	pressed := context.Type == core.EVENT_CODE_BUTTON_PRESSED
	wasDown := e.input.IsButtonDown(be.Button)
	e.input.ProcessMouseMove(be.X, be.Y)
	e.input.ProcessButton(be.Button, pressed)

	// A left press then release inside the window is a click.
	if !pressed && wasDown && be.Button == core.BUTTON_LEFT {
		e.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_CLICK,
			Data: &core.MouseButtonEvent{Button: be.Button, X: be.X, Y: be.Y},
		})
	}
	return false
}

func (e *Engine) onMouseMove(context core.EventContext) bool {
	me, ok := context.Data.(*core.MouseMoveEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	e.input.ProcessMouseMove(me.X, me.Y)
	return false
}

func (e *Engine) onClick(context core.EventContext) bool {
	be, ok := context.Data.(*core.MouseButtonEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	return e.overlay.HandleClick(be.X, be.Y)
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	width := se.WindowWidth
	height := se.WindowHeight

	// Handle minimization
	if width == 0 || height == 0 {
		if !e.isSuspended {
			core.LogInfo("Window minimized, suspending application.")
			e.isSuspended = true
		}
		return false
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	e.systemManager.OnResize(width, height)
	if err := e.renderer.OnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	e.overlay.Resize(width, height)
	e.controls.SetViewportHeight(height)
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	return false
}

// newDownloadLogger logs whole percent steps of every download.
func newDownloadLogger() loaders.ProgressFunc {
	var mu sync.Mutex
	last := map[string]int64{}
	return func(name string, loaded, total int64) {
		if total <= 0 {
			return
		}
		pct := loaded * 100 / total
		mu.Lock()
		defer mu.Unlock()
		if prev, ok := last[name]; ok && prev == pct {
			return
		}
		last[name] = pct
		core.LogInfo("%s: %d%% loaded", name, pct)
	}
}
