package platform

import "github.com/spaghettifunk/skyview/engine/core"

// Platform owns the window surface and turns its input into engine events.
type Platform interface {
	Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error
	Shutdown() error
	// PumpMessages fires pending window events. It returns false once the
	// window has been asked to close.
	PumpMessages() bool
	FramebufferSize() (uint32, uint32)
}

// FireResize notifies listeners of a new framebuffer size.
func FireResize(events *core.EventSystem, width, height uint32) {
	events.Fire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: width, WindowHeight: height},
	})
}
