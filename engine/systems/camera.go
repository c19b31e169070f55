package systems

import (
	"fmt"

	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/spaghettifunk/skyview/engine/renderer/components"
)

type CameraSystem struct {
	Config  *CameraSystemConfig
	Cameras map[string]*components.Camera
	// A default, non-registered camera that always exists as a fallback.
	DefaultCamera *components.Camera
	// PanLimits bounds the orbit target of every controlled camera.
	PanLimits math.Extents3D
}

/** @brief The camera system configuration. */
type CameraSystemConfig struct {
	/** @brief The maximum number of named cameras that can be managed by the system. */
	MaxCameraCount uint16
	Fov            float32
	Aspect         float32
	Near           float32
	Far            float32
	StartPosition  math.Vec3
	PanLimits      math.Extents3D
}

/**
 * @brief Initializes the camera system and its default camera.
 * @param config The configuration for this system.
 */
func NewCameraSystem(config *CameraSystemConfig) (*CameraSystem, error) {
	if config.MaxCameraCount == 0 {
		err := fmt.Errorf("func NewCameraSystem - config.MaxCameraCount must be > 0: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	if !config.PanLimits.IsValid() {
		err := fmt.Errorf("func NewCameraSystem - pan limits min must not exceed max: %w", core.ErrInvalidConfig)
		core.LogError(err.Error())
		return nil, err
	}
	cs := &CameraSystem{
		Config:    config,
		Cameras:   make(map[string]*components.Camera, config.MaxCameraCount),
		PanLimits: config.PanLimits,
	}
	// Setup default camera.
	cs.DefaultCamera = cs.newCamera()
	return cs, nil
}

func (cs *CameraSystem) newCamera() *components.Camera {
	c := components.NewCamera(cs.Config.Fov, cs.Config.Aspect, cs.Config.Near, cs.Config.Far)
	c.SetPosition(cs.Config.StartPosition)
	return c
}

/**
 * @brief Shuts down the camera system.
 */
func (cs *CameraSystem) Shutdown() error {
	cs.Cameras = nil
	return nil
}

/**
 * @brief Acquires a camera by name. If one is not found, a new one is created and returned.
 *
 * @param name The name of the camera to acquire.
 */
func (cs *CameraSystem) Acquire(name string) (*components.Camera, error) {
	if name == components.DEFAULT_CAMERA_NAME {
		return cs.DefaultCamera, nil
	}
	if c, ok := cs.Cameras[name]; ok {
		return c, nil
	}
	if len(cs.Cameras) >= int(cs.Config.MaxCameraCount) {
		err := fmt.Errorf("func CameraSystemAcquire failed to acquire new slot. Adjust camera system config to allow more")
		core.LogError(err.Error())
		return nil, err
	}
	core.LogDebug("Creating new camera named '%s'...", name)
	c := cs.newCamera()
	cs.Cameras[name] = c
	return c, nil
}

/**
 * @brief Releases a camera with the given name.
 */
func (cs *CameraSystem) Release(name string) {
	if name == components.DEFAULT_CAMERA_NAME {
		core.LogDebug("Cannot release default camera. Nothing was done.")
		return
	}
	if _, ok := cs.Cameras[name]; !ok {
		core.LogWarn("CameraSystemRelease failed lookup. Nothing was done.")
		return
	}
	delete(cs.Cameras, name)
}

/**
 * @brief Gets a pointer to the default camera.
 */
func (cs *CameraSystem) GetDefault() *components.Camera {
	return cs.DefaultCamera
}

// OnResize updates the aspect ratio of every camera. The camera positions
// are left untouched. Zero sized surfaces are ignored.
func (cs *CameraSystem) OnResize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	aspect := float32(width) / float32(height)
	apply := func(c *components.Camera) {
		c.SetAspect(aspect)
		c.UpdateProjectionMatrix()
	}
	apply(cs.DefaultCamera)
	for _, c := range cs.Cameras {
		apply(c)
	}
}

// EnforcePanLimits clamps each axis of target into limits, in place.
func EnforcePanLimits(target *math.Vec3, limits math.Extents3D) {
	if target == nil {
		return
	}
	*target = limits.ClampPoint(*target)
}
