package renderer

import (
	"fmt"

	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/renderer/components"
	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
	"github.com/spaghettifunk/skyview/engine/scene"
)

// Renderer is the frontend: it turns the scene graph and camera into a
// RenderPacket and feeds it to the backend.
type Renderer struct {
	backend     RendererBackend
	width       uint32
	height      uint32
	frameNumber uint64
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize(appName string, width, height uint32) error {
	if err := r.backend.Initialize(appName, width, height); err != nil {
		return fmt.Errorf("renderer backend initialize: %w", err)
	}
	r.width, r.height = width, height
	core.LogInfo("Renderer initialized (%dx%d).", width, height)
	return nil
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

// OnResize resizes the drawing surface. A zero dimension is ignored.
func (r *Renderer) OnResize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	r.width, r.height = width, height
	return r.backend.Resized(width, height)
}

func (r *Renderer) Size() (uint32, uint32) {
	return r.width, r.height
}

func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

// BuildPacket collects every node carrying a mesh with its world matrix.
func (r *Renderer) BuildPacket(s *scene.Scene, camera *components.Camera, overlay *metadata.OverlayRenderData, deltaTime float64) *metadata.RenderPacket {
	packet := &metadata.RenderPacket{
		DeltaTime:      deltaTime,
		ViewProjection: camera.GetViewProjection(),
		Overlay:        overlay,
	}
	s.Walk(func(n *scene.Node) bool {
		if n.Mesh != nil {
			packet.Geometries = append(packet.Geometries, metadata.GeometryRenderData{
				Name:      n.Name,
				Model:     n.Transform.GetWorld(),
				Positions: n.Mesh.Positions,
			})
		}
		return true
	})
	return packet
}

// DrawFrame hands the packet to the backend.
func (r *Renderer) DrawFrame(packet *metadata.RenderPacket) error {
	if err := r.backend.BeginFrame(packet.DeltaTime); err != nil {
		return err
	}
	for i := range packet.Geometries {
		r.backend.DrawGeometry(packet.ViewProjection, &packet.Geometries[i])
	}
	if packet.Overlay != nil {
		r.backend.DrawOverlay(packet.Overlay)
	}
	if err := r.backend.EndFrame(packet.DeltaTime); err != nil {
		return err
	}
	r.frameNumber++
	return nil
}

// Render builds and draws one frame.
func (r *Renderer) Render(s *scene.Scene, camera *components.Camera, overlay *metadata.OverlayRenderData, deltaTime float64) error {
	return r.DrawFrame(r.BuildPacket(s, camera, overlay, deltaTime))
}
