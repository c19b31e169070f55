// Package controls moves the camera from mouse input.
package controls

import (
	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/spaghettifunk/skyview/engine/renderer/components"
)

type OrbitConfig struct {
	MinDistance float32
	MaxDistance float32
	// Polar angle limits in radians, measured from +Y.
	MinPolarAngle float32
	MaxPolarAngle float32
	RotateSpeed   float32
	PanSpeed      float32
	ZoomSpeed     float32
}

// DefaultOrbitConfig keeps the camera between 6 and 25 units away.
func DefaultOrbitConfig() OrbitConfig {
	return OrbitConfig{
		MinDistance:   6,
		MaxDistance:   25,
		MinPolarAngle: 0,
		MaxPolarAngle: math.K_PI,
		RotateSpeed:   1,
		PanSpeed:      1,
		ZoomSpeed:     1,
	}
}

// polarEpsilon keeps the camera off the poles where the up vector flips.
const polarEpsilon float32 = 1e-4

/**
 * @brief Orbits a camera around Target. Input accumulates between frames and
 * is applied by Update.
 */
type OrbitControls struct {
	// Target is the point orbited around. Callers may clamp it between updates.
	Target  math.Vec3
	Enabled bool

	camera *components.Camera
	config OrbitConfig

	thetaDelta float32
	phiDelta   float32
	scale      float32
	panOffset  math.Vec3

	height   float32
	rotating bool
	panning  bool
	lastX    float64
	lastY    float64
}

func NewOrbitControls(camera *components.Camera, config OrbitConfig, viewportHeight uint32) *OrbitControls {
	if config.MaxDistance < config.MinDistance {
		config.MaxDistance = config.MinDistance
	}
	oc := &OrbitControls{
		Target:  math.NewVec3Zero(),
		Enabled: true,
		camera:  camera,
		config:  config,
		scale:   1,
		height:  1,
	}
	oc.SetViewportHeight(viewportHeight)
	return oc
}

func (oc *OrbitControls) SetViewportHeight(height uint32) {
	if height == 0 {
		return
	}
	oc.height = float32(height)
}

// Rotate orbits by a mouse movement of dx, dy pixels.
func (oc *OrbitControls) Rotate(dx, dy float32) {
	oc.thetaDelta -= math.K_PI_2 * dx / oc.height * oc.config.RotateSpeed
	oc.phiDelta -= math.K_PI_2 * dy / oc.height * oc.config.RotateSpeed
}

// Pan moves the target in the camera plane by a mouse movement of dx, dy pixels.
func (oc *OrbitControls) Pan(dx, dy float32) {
	offset := oc.camera.GetPosition().Sub(oc.Target)
	// Scale so the point under the cursor follows it at the target distance.
	visible := offset.Length() * math.Tan(math.DegToRad(oc.camera.Fov)*0.5)
	forward := offset.MulScalar(-1).Normalize()
	right := forward.Cross(math.NewVec3Up()).Normalize()
	up := right.Cross(forward)

	moveX := -2 * dx * visible / oc.height * oc.config.PanSpeed
	moveY := 2 * dy * visible / oc.height * oc.config.PanSpeed
	oc.panOffset = oc.panOffset.Add(right.MulScalar(moveX)).Add(up.MulScalar(moveY))
}

// Zoom dollies in for positive steps and out for negative ones.
func (oc *OrbitControls) Zoom(steps float32) {
	factor := math.Pow(0.95, oc.config.ZoomSpeed*math.Clamp(steps, -10, 10))
	oc.scale *= factor
}

/**
 * @brief Applies accumulated input and moves the camera to look at Target.
 */
func (oc *OrbitControls) Update() {
	offset := oc.camera.GetPosition().Sub(oc.Target)

	radius := offset.Length()
	theta := math.Atan2(offset.X, offset.Z)
	var phi float32 = math.K_HALF_PI
	if radius > 0 {
		phi = math.Acos(offset.Y / radius)
	}

	if oc.Enabled {
		theta += oc.thetaDelta
		phi += oc.phiDelta
		radius *= oc.scale
		oc.Target = oc.Target.Add(oc.panOffset)
	}

	minPolar := math.Clamp(oc.config.MinPolarAngle, polarEpsilon, math.K_PI-polarEpsilon)
	maxPolar := math.Clamp(oc.config.MaxPolarAngle, minPolar, math.K_PI-polarEpsilon)
	phi = math.Clamp(phi, minPolar, maxPolar)
	radius = math.Clamp(radius, oc.config.MinDistance, oc.config.MaxDistance)

	sinPhi := math.Sin(phi)
	offset = math.NewVec3(
		radius*sinPhi*math.Sin(theta),
		radius*math.Cos(phi),
		radius*sinPhi*math.Cos(theta),
	)

	oc.camera.SetPosition(oc.Target.Add(offset))
	oc.camera.LookAt(oc.Target)

	oc.thetaDelta = 0
	oc.phiDelta = 0
	oc.scale = 1
	oc.panOffset = math.NewVec3Zero()
}

// Distance between the camera and the target.
func (oc *OrbitControls) Distance() float32 {
	return oc.camera.GetPosition().Distance(oc.Target)
}

// OnButton starts or ends a drag. Left rotates, right pans.
func (oc *OrbitControls) OnButton(context core.EventContext) bool {
	be, ok := context.Data.(*core.MouseButtonEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	pressed := context.Type == core.EVENT_CODE_BUTTON_PRESSED
	switch be.Button {
	case core.BUTTON_LEFT:
		oc.rotating = pressed
	case core.BUTTON_RIGHT, core.BUTTON_MIDDLE:
		oc.panning = pressed
	}
	oc.lastX, oc.lastY = be.X, be.Y
	return false
}

func (oc *OrbitControls) OnMouseMove(context core.EventContext) bool {
	me, ok := context.Data.(*core.MouseMoveEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	dx := float32(me.X - oc.lastX)
	dy := float32(me.Y - oc.lastY)
	oc.lastX, oc.lastY = me.X, me.Y
	if !oc.Enabled {
		return false
	}
	if oc.rotating {
		oc.Rotate(dx, dy)
	} else if oc.panning {
		oc.Pan(dx, dy)
	}
	return false
}

func (oc *OrbitControls) OnMouseWheel(context core.EventContext) bool {
	we, ok := context.Data.(*core.MouseWheelEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if oc.Enabled {
		oc.Zoom(float32(we.Delta))
	}
	return false
}

// Register subscribes the controls to mouse events on es.
func (oc *OrbitControls) Register(es *core.EventSystem) {
	es.Register(core.EVENT_CODE_BUTTON_PRESSED, oc.OnButton)
	es.Register(core.EVENT_CODE_BUTTON_RELEASED, oc.OnButton)
	es.Register(core.EVENT_CODE_MOUSE_MOVED, oc.OnMouseMove)
	es.Register(core.EVENT_CODE_MOUSE_WHEEL, oc.OnMouseWheel)
}
