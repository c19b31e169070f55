package components

import (
	"github.com/spaghettifunk/skyview/engine/math"
)

/**
 * @brief Represents a perspective camera looking at a point.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position math.Vec3
	/** @brief The point the camera looks at. */
	LookTarget math.Vec3
	/** @brief Vertical field of view in degrees. */
	Fov float32
	/** @brief Width over height of the surface. */
	Aspect float32
	Near   float32
	Far    float32
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool

	viewMatrix       math.Mat4
	projectionMatrix math.Mat4
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera(fov, aspect, near, far float32) *Camera {
	camera := &Camera{
		Fov:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
	camera.Reset()
	camera.UpdateProjectionMatrix()
	return camera
}

func (c *Camera) Reset() {
	c.Position = math.NewVec3Zero()
	c.LookTarget = math.NewVec3(0, 0, -1)
	c.IsDirty = true
	c.viewMatrix = math.NewMat4Identity()
}

func (c *Camera) GetPosition() math.Vec3 {
	return c.Position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.Position = position
	c.IsDirty = true
}

// LookAt points the camera at target.
func (c *Camera) LookAt(target math.Vec3) {
	c.LookTarget = target
	c.IsDirty = true
}

// SetAspect changes the aspect ratio. Call UpdateProjectionMatrix afterwards.
func (c *Camera) SetAspect(aspect float32) {
	c.Aspect = aspect
}

// UpdateProjectionMatrix rebuilds the projection from Fov, Aspect, Near and Far.
func (c *Camera) UpdateProjectionMatrix() {
	c.projectionMatrix = math.NewMat4Perspective(math.DegToRad(c.Fov), c.Aspect, c.Near, c.Far)
}

func (c *Camera) GetView() math.Mat4 {
	if c.IsDirty {
		c.viewMatrix = math.NewMat4LookAt(c.Position, c.LookTarget, math.NewVec3Up())
		c.IsDirty = false
	}
	return c.viewMatrix
}

func (c *Camera) GetProjection() math.Mat4 {
	return c.projectionMatrix
}

// GetViewProjection returns view * projection for row vectors.
func (c *Camera) GetViewProjection() math.Mat4 {
	return c.GetView().Mul(c.projectionMatrix)
}
