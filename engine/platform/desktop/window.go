// Package desktop is the glfw window platform.
package desktop

import (
	"fmt"
	"image"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/platform"
	"github.com/spaghettifunk/skyview/engine/renderer/software"
)

var (
	_ platform.Platform  = (*Window)(nil)
	_ software.Presenter = (*Window)(nil)
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

type Window struct {
	Window *glfw.Window
	events *core.EventSystem

	// frame upload target, read back through fbo by a blit
	texture     uint32
	fbo         uint32
	textureSize image.Point
}

func NewWindow(events *core.EventSystem) *Window {
	return &Window{
		Window: nil,
		events: events,
	}
}

func (p *Window) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return fmt.Errorf("%w: %w", core.ErrPlatformNotStarted, err)
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return fmt.Errorf("%w: %w", core.ErrPlatformNotStarted, err)
	}
	p.Window = window

	if err := p.initSurface(); err != nil {
		core.LogError("failed to initialize the frame surface: %s", err)
		p.Window.Destroy()
		p.Window = nil
		glfw.Terminate()
		return fmt.Errorf("%w: %w", core.ErrPlatformNotStarted, err)
	}

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	return nil
}

// initSurface makes the context current and creates the texture frames are
// uploaded to, attached to a framebuffer that Present blits from.
func (p *Window) initSurface() error {
	p.Window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return err
	}
	// the engine loop paces frames itself
	glfw.SwapInterval(0)
	core.LogDebug("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	gl.GenTextures(1, &p.texture)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	gl.GenFramebuffers(1, &p.fbo)
	return nil
}

/**
 * @brief Uploads frame and blits it over the whole framebuffer, flipping it
 * so row 0 of the image ends up at the top of the window.
 */
func (p *Window) Present(frame *image.RGBA) error {
	if p.Window == nil {
		return core.ErrPlatformNotStarted
	}
	size := frame.Bounds().Size()
	if size.X == 0 || size.Y == 0 {
		return nil
	}

	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(frame.Stride/4))
	if size != p.textureSize {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(size.X), int32(size.Y), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(frame.Pix))
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, p.fbo)
		gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, p.texture, 0)
		if status := gl.CheckFramebufferStatus(gl.READ_FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
			return fmt.Errorf("frame surface incomplete: 0x%x", status)
		}
		p.textureSize = size
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(size.X), int32(size.Y), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(frame.Pix))
	}

	fbw, fbh := p.Window.GetFramebufferSize()
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, p.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, int32(size.X), int32(size.Y), 0, int32(fbh), int32(fbw), 0, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	p.Window.SwapBuffers()
	return nil
}

func (p *Window) Shutdown() error {
	if p.Window != nil {
		if p.fbo != 0 {
			gl.DeleteFramebuffers(1, &p.fbo)
			p.fbo = 0
		}
		if p.texture != 0 {
			gl.DeleteTextures(1, &p.texture)
			p.texture = 0
		}
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

func (p *Window) PumpMessages() bool {
	if p.Window == nil {
		return false
	}
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

func (p *Window) FramebufferSize() (uint32, uint32) {
	if p.Window == nil {
		return 0, 0
	}
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

func translateKey(key glfw.Key) core.KeyCode {
	switch key {
	case glfw.KeyEscape:
		return core.KEY_ESCAPE
	case glfw.KeySpace:
		return core.KEY_SPACE
	default:
		// Printable keys share their ASCII code.
		return core.KeyCode(key)
	}
}

func (p *Window) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code := core.EVENT_CODE_KEY_PRESSED
	switch action {
	case glfw.Release:
		code = core.EVENT_CODE_KEY_RELEASED
	case glfw.Repeat:
		return
	}
	p.events.Fire(core.EventContext{Type: code, Data: &core.KeyEvent{KeyCode: translateKey(key)}})
}

func (p *Window) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	var b core.Button
	switch button {
	case glfw.MouseButtonLeft:
		b = core.BUTTON_LEFT
	case glfw.MouseButtonRight:
		b = core.BUTTON_RIGHT
	case glfw.MouseButtonMiddle:
		b = core.BUTTON_MIDDLE
	default:
		return
	}
	code := core.EVENT_CODE_BUTTON_PRESSED
	if action == glfw.Release {
		code = core.EVENT_CODE_BUTTON_RELEASED
	}
	x, y := w.GetCursorPos()
	p.events.Fire(core.EventContext{Type: code, Data: &core.MouseButtonEvent{Button: b, X: x, Y: y}})
}

func (p *Window) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	p.events.Fire(core.EventContext{Type: core.EVENT_CODE_MOUSE_MOVED, Data: &core.MouseMoveEvent{X: xpos, Y: ypos}})
}

func (p *Window) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	p.events.Fire(core.EventContext{Type: core.EVENT_CODE_MOUSE_WHEEL, Data: &core.MouseWheelEvent{Delta: yoff}})
}

func (p *Window) framebufferSizeCallback(w *glfw.Window, width, height int) {
	platform.FireResize(p.events, uint32(width), uint32(height))
}
