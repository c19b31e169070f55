package renderer

import (
	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
)

// RendererBackend receives one packet per frame. GPU backends plug in here.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	DrawGeometry(viewProjection math.Mat4, data *metadata.GeometryRenderData)
	DrawOverlay(data *metadata.OverlayRenderData)
	EndFrame(deltaTime float64) error
}
