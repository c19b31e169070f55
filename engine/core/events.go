package core

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed. Data: *KeyEvent
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released. Data: *KeyEvent
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Mouse button pressed. Data: *MouseButtonEvent
	EVENT_CODE_BUTTON_PRESSED SystemEventCode = 0x04

	// Mouse button released. Data: *MouseButtonEvent
	EVENT_CODE_BUTTON_RELEASED SystemEventCode = 0x05

	// Mouse moved. Data: *MouseMoveEvent
	EVENT_CODE_MOUSE_MOVED SystemEventCode = 0x06

	// Mouse wheel. Data: *MouseWheelEvent
	EVENT_CODE_MOUSE_WHEEL SystemEventCode = 0x07

	// Resized/resolution changed from the OS. Data: *SystemEvent
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// A press and release of the left button without dragging. Data: *MouseButtonEvent
	EVENT_CODE_CLICK SystemEventCode = 0x09

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventContext struct {
	Type SystemEventCode
	Data interface{}
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

type KeyEvent struct {
	KeyCode KeyCode
}

type MouseButtonEvent struct {
	Button Button
	X, Y   float64
}

type MouseMoveEvent struct {
	X, Y float64
}

type MouseWheelEvent struct {
	Delta float64
}

// Should return true if handled. Handled events are not passed on.
type FnOnEvent func(context EventContext) bool

type registeredEvent struct {
	id       uint64
	callback FnOnEvent
}

// EventSystem dispatches events synchronously, in registration order, on
// the goroutine calling Fire. The engine only fires from the loop goroutine.
type EventSystem struct {
	registered map[SystemEventCode][]registeredEvent
	nextID     uint64
}

func NewEventSystem() *EventSystem {
	return &EventSystem{
		registered: make(map[SystemEventCode][]registeredEvent),
	}
}

// Register adds a listener for code and returns a handle for Unregister.
func (es *EventSystem) Register(code SystemEventCode, onEvent FnOnEvent) uint64 {
	es.nextID++
	es.registered[code] = append(es.registered[code], registeredEvent{
		id:       es.nextID,
		callback: onEvent,
	})
	return es.nextID
}

// Unregister removes the listener identified by handle. Returns false when
// nothing matched.
func (es *EventSystem) Unregister(code SystemEventCode, handle uint64) bool {
	events := es.registered[code]
	for i, e := range events {
		if e.id == handle {
			es.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// Fire sends the event to listeners of its code. Returns true if handled.
func (es *EventSystem) Fire(context EventContext) bool {
	for _, e := range es.registered[context.Type] {
		if e.callback(context) {
			// Message has been handled, do not send to other listeners.
			return true
		}
	}
	return false
}

// Shutdown drops every registration.
func (es *EventSystem) Shutdown() error {
	es.registered = make(map[SystemEventCode][]registeredEvent)
	return nil
}
