package platform

import (
	"sync"

	"github.com/spaghettifunk/skyview/engine/containers"
	"github.com/spaghettifunk/skyview/engine/core"
)

// HeadlessQueueSize is how many events may wait for the next pump.
const HeadlessQueueSize = 256

// Headless is a window-less platform. Events queued with Push are fired on
// the next PumpMessages, on the goroutine that pumps.
type Headless struct {
	events *core.EventSystem

	mu      sync.Mutex
	queue   *containers.RingQueue[core.EventContext]
	width   uint32
	height  uint32
	closed  bool
	started bool
}

func NewHeadless(events *core.EventSystem) *Headless {
	return &Headless{
		events: events,
		queue:  containers.NewRingQueue[core.EventContext](HeadlessQueueSize),
	}
}

func (h *Headless) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width, h.height = width, height
	h.started = true
	core.LogDebug("Headless platform started for '%s' at %dx%d.", applicationName, width, height)
	return nil
}

func (h *Headless) Shutdown() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = false
	h.queue.Reset()
	return nil
}

// Push queues an event. Safe to call from any goroutine. Fails with
// containers.ErrQueueFull when HeadlessQueueSize events are already waiting.
func (h *Headless) Push(context core.EventContext) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queue.Enqueue(context)
}

// Resize queues a resize to width x height.
func (h *Headless) Resize(width, height uint32) error {
	return h.Push(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: width, WindowHeight: height},
	})
}

// Close makes the next PumpMessages report a closed window.
func (h *Headless) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}

func (h *Headless) PumpMessages() bool {
	h.mu.Lock()
	pending := make([]core.EventContext, 0, h.queue.Len())
	for !h.queue.IsEmpty() {
		e, _ := h.queue.Dequeue()
		pending = append(pending, e)
	}
	closed := h.closed || !h.started
	h.mu.Unlock()

	for _, e := range pending {
		if e.Type == core.EVENT_CODE_RESIZED {
			if se, ok := e.Data.(*core.SystemEvent); ok {
				h.mu.Lock()
				h.width, h.height = se.WindowWidth, se.WindowHeight
				h.mu.Unlock()
				FireResize(h.events, se.WindowWidth, se.WindowHeight)
				continue
			}
		}
		h.events.Fire(e)
	}
	return !closed
}

func (h *Headless) FramebufferSize() (uint32, uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}
