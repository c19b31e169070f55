// Package viewer is the skybox and animated model scene shown by the binary.
package viewer

import (
	"fmt"

	"github.com/spaghettifunk/skyview/engine"
	"github.com/spaghettifunk/skyview/engine/animation"
	"github.com/spaghettifunk/skyview/engine/assets"
	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
	"github.com/spaghettifunk/skyview/engine/scene"
)

const (
	SkyboxName = "skybox"
	ModelName  = "model"
)

type Viewer struct {
	*engine.Game

	engine *engine.Engine
}

type viewerState struct {
	skybox *scene.Node
	model  *scene.Node
	mixer  *animation.Mixer

	width  uint32
	height uint32
}

func New(config *engine.ApplicationConfig) *Viewer {
	v := &Viewer{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &viewerState{},
		},
	}

	v.FnInitialize = v.Initialize
	v.FnOnAssetLoaded = v.OnAssetLoaded
	v.FnOnResize = v.OnResize
	v.FnShutdown = v.Shutdown

	return v
}

func (v *Viewer) state() *viewerState {
	return v.State.(*viewerState)
}

// Initialize queues both assets. They load in the background and arrive
// through OnAssetLoaded in whatever order they finish.
func (v *Viewer) Initialize(e *engine.Engine) error {
	core.LogDebug("Viewer Initialize fn....")
	v.engine = e

	config := v.ApplicationConfig.Assets
	e.QueueLoad(assets.LoadRequest{
		Name:     SkyboxName,
		Path:     config.Skybox.Path,
		Type:     metadata.ResourceTypeModel,
		Scale:    config.Skybox.Scale,
		Position: math.NewVec3Zero(),
	})
	e.QueueLoad(assets.LoadRequest{
		Name:             ModelName,
		Path:             config.Model.Path,
		Type:             metadata.ResourceTypeModel,
		Scale:            config.Model.Scale,
		Position:         math.NewVec3Zero(),
		ChecksCompletion: true,
	})
	return nil
}

/**
 * @brief Adds a loaded asset to the scene and reports it to the progress
 * system. The animated model starts its clips looping forever. A model
 * without clips is still shown but never counted, so the overlay stays.
 */
func (v *Viewer) OnAssetLoaded(result assets.LoadResult) error {
	if v.engine == nil {
		return fmt.Errorf("asset '%s' arrived before initialize: %w", result.Request.Name, core.ErrEngineStopped)
	}
	data, ok := result.Resource.Data.(*metadata.ModelResourceData)
	if !ok {
		return fmt.Errorf("asset '%s': %w", result.Request.Name, core.ErrUnsupportedAsset)
	}
	state := v.state()

	root := data.Root
	scale := result.Request.Scale
	if scale == 0 {
		scale = 1
	}
	root.Transform.SetScale(math.NewVec3(scale, scale, scale))
	root.Transform.SetPosition(result.Request.Position)
	v.engine.Scene().Add(root)

	switch result.Request.Name {
	case SkyboxName:
		state.skybox = root
	case ModelName:
		state.model = root
		if len(data.Animations) == 0 {
			core.LogWarn("No animations found in the model.")
			return nil
		}
		state.mixer = animation.NewMixer()
		for _, clip := range data.Animations {
			action := state.mixer.ClipAction(clip)
			action.SetLoop(animation.LoopRepeat, animation.Infinite)
			action.ClampWhenFinished = false
			action.Play()
		}
		v.engine.AddMixer(state.mixer)
		core.LogInfo("Playing %d animation(s) of '%s'.", len(data.Animations), result.Request.Name)
	}

	v.engine.Progress().OnAssetLoaded(result.Request.Name, result.Request.ChecksCompletion)
	return nil
}

func (v *Viewer) OnResize(width uint32, height uint32) error {
	state := v.state()
	state.width = width
	state.height = height
	return nil
}

func (v *Viewer) Shutdown() error {
	core.LogDebug("Viewer shutting down.")
	state := v.state()
	state.mixer = nil
	return nil
}

func (v *Viewer) Skybox() *scene.Node     { return v.state().skybox }
func (v *Viewer) Model() *scene.Node      { return v.state().model }
func (v *Viewer) Mixer() *animation.Mixer { return v.state().mixer }
func (v *Viewer) Size() (uint32, uint32)  { return v.state().width, v.state().height }
