// Package software is a CPU render backend. It plots projected vertices and
// the overlay into an RGBA frame, which can be written out as a PNG.
package software

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
)

var (
	clearColour   = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
	vertexColour  = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	overlayColour = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
	hintColour    = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xd0}
	iconColour    = color.RGBA{R: 0xf0, G: 0xc0, B: 0x20, A: 0xff}
)

// Presenter shows a finished frame, usually on a window surface. The frame
// is reused by the next BeginFrame.
type Presenter interface {
	Present(frame *image.RGBA) error
}

type Backend struct {
	// SnapshotPath, when set, receives a PNG of frame SnapshotFrame.
	SnapshotPath  string
	SnapshotFrame uint64
	// Presenter, when set, receives every frame at EndFrame.
	Presenter Presenter

	frame       *image.RGBA
	frameNumber uint64
	drawnPoints int
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	if appWidth == 0 || appHeight == 0 {
		return fmt.Errorf("software backend for %s: %w: zero sized surface", appName, core.ErrInvalidConfig)
	}
	b.frame = image.NewRGBA(image.Rect(0, 0, int(appWidth), int(appHeight)))
	return nil
}

func (b *Backend) Shutdown() error {
	b.frame = nil
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	b.frame = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	core.LogDebug("software backend resized to %dx%d", width, height)
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	if b.frame == nil {
		return core.ErrPlatformNotStarted
	}
	draw.Draw(b.frame, b.frame.Bounds(), image.NewUniform(clearColour), image.Point{}, draw.Src)
	b.drawnPoints = 0
	return nil
}

func (b *Backend) DrawGeometry(viewProjection math.Mat4, data *metadata.GeometryRenderData) {
	mvp := data.Model.Mul(viewProjection)
	bounds := b.frame.Bounds()
	w, h := float32(bounds.Dx()), float32(bounds.Dy())
	for _, p := range data.Positions {
		clip := p.Project(mvp)
		if clip.W <= 0 {
			continue
		}
		nx, ny := clip.X/clip.W, clip.Y/clip.W
		if nx < -1 || nx > 1 || ny < -1 || ny > 1 {
			continue
		}
		x := int((nx + 1) * 0.5 * w)
		y := int((1 - ny) * 0.5 * h)
		b.frame.SetRGBA(x, y, vertexColour)
		b.drawnPoints++
	}
}

func (b *Backend) DrawOverlay(data *metadata.OverlayRenderData) {
	bounds := b.frame.Bounds()
	if data.Opacity > 0 {
		mask := image.NewUniform(color.Alpha{A: uint8(math.Clamp(data.Opacity, 0, 1) * 255)})
		draw.DrawMask(b.frame, bounds, image.NewUniform(overlayColour), image.Point{}, mask, image.Point{}, draw.Over)
		b.drawText(data.LoadingText, data.TextX, bounds.Dy()/2)
	}
	if data.HintVisible {
		box := image.Rect(bounds.Dx()/2-160, bounds.Dy()-80, bounds.Dx()/2+160, bounds.Dy()-40)
		draw.Draw(b.frame, box, image.NewUniform(hintColour), image.Point{}, draw.Over)
		b.drawText(data.HintText, box.Min.X+8, box.Min.Y+24)
	}
	if data.IconVisible {
		r := data.IconBounds
		draw.Draw(b.frame, image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height), image.NewUniform(iconColour), image.Point{}, draw.Src)
	}
}

func (b *Backend) drawText(text string, x, y int) {
	d := &font.Drawer{
		Dst:  b.frame,
		Src:  image.White,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func (b *Backend) EndFrame(deltaTime float64) error {
	if b.SnapshotPath != "" && b.frameNumber == b.SnapshotFrame {
		if err := b.writeSnapshot(b.SnapshotPath); err != nil {
			return err
		}
	}
	if b.Presenter != nil {
		if err := b.Presenter.Present(b.frame); err != nil {
			return fmt.Errorf("present frame %d: %w", b.frameNumber, err)
		}
	}
	b.frameNumber++
	return nil
}

func (b *Backend) writeSnapshot(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, b.frame); err != nil {
		return fmt.Errorf("snapshot encode: %w", err)
	}
	core.LogInfo("Wrote frame %d to %s", b.frameNumber, path)
	return nil
}

// Frame returns the last drawn frame.
func (b *Backend) Frame() *image.RGBA {
	return b.frame
}

// DrawnPoints is the number of vertices that landed on screen last frame.
func (b *Backend) DrawnPoints() int {
	return b.drawnPoints
}

// TextWidth measures text in the backend's fallback face.
func TextWidth(text string) int {
	return font.MeasureString(basicfont.Face7x13, text).Round()
}
