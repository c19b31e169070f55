package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

type KeyCode uint16

const (
	KEY_ESCAPE KeyCode = 0x1B
	KEY_SPACE  KeyCode = 0x20
)

type MouseState struct {
	X       float64
	Y       float64
	Buttons [BUTTON_MAX_BUTTONS]bool // button states (pressed/released)
}

// InputState keeps the mouse state of this frame and the previous one.
type InputState struct {
	MouseCurrent  MouseState
	MousePrevious MouseState
}

func NewInputState() *InputState {
	return &InputState{}
}

// Update copies the current state into the previous one. Call it once
// every input of the frame has been recorded.
func (is *InputState) Update() {
	is.MousePrevious = is.MouseCurrent
}

func (is *InputState) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS {
		return
	}
	is.MouseCurrent.Buttons[button] = pressed
}

func (is *InputState) ProcessMouseMove(x, y float64) {
	is.MouseCurrent.X = x
	is.MouseCurrent.Y = y
}

func (is *InputState) IsButtonDown(button Button) bool {
	return button < BUTTON_MAX_BUTTONS && is.MouseCurrent.Buttons[button]
}

func (is *InputState) WasButtonDown(button Button) bool {
	return button < BUTTON_MAX_BUTTONS && is.MousePrevious.Buttons[button]
}

// MouseDelta is how far the cursor moved since the last Update.
func (is *InputState) MouseDelta() (float64, float64) {
	return is.MouseCurrent.X - is.MousePrevious.X, is.MouseCurrent.Y - is.MousePrevious.Y
}
