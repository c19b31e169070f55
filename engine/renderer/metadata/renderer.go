package metadata

import (
	"github.com/spaghettifunk/skyview/engine/math"
)

/**
 * @brief The data needed to draw one node's geometry.
 */
type GeometryRenderData struct {
	Name      string
	Model     math.Mat4
	Positions []math.Vec3
}

/**
 * @brief The overlay UI layers, drawn on top of the scene.
 */
type OverlayRenderData struct {
	/** @brief Loading overlay opacity, 0 when removed. */
	Opacity     float32
	LoadingText string
	/** @brief Horizontal offset of the loading text, in pixels. */
	TextX       int
	HintVisible bool
	HintText    string
	IconVisible bool
	IconBounds  Rect
}

// Rect is a rectangle in window pixels.
type Rect struct {
	X, Y, Width, Height int
}

func (r Rect) Contains(x, y float64) bool {
	return x >= float64(r.X) && x < float64(r.X+r.Width) &&
		y >= float64(r.Y) && y < float64(r.Y+r.Height)
}

/**
 * @brief A structure which is generated by the application and sent once
 * to the renderer to render a given frame.
 */
type RenderPacket struct {
	DeltaTime      float64
	ViewProjection math.Mat4
	Geometries     []GeometryRenderData
	Overlay        *OverlayRenderData
}
