package ui

import (
	"fmt"

	"github.com/spaghettifunk/skyview/engine/core"
	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
)

type OverlayState uint8

const (
	// The loading overlay covers the window.
	OverlayStateVisible OverlayState = iota
	// The overlay is fading out.
	OverlayStateDisappearing
	// The overlay is gone; hint and icon may show.
	OverlayStateHidden
)

func (s OverlayState) String() string {
	switch s {
	case OverlayStateVisible:
		return "visible"
	case OverlayStateDisappearing:
		return "disappearing"
	case OverlayStateHidden:
		return "hidden"
	default:
		return fmt.Sprintf("OverlayState(%d)", s)
	}
}

const (
	DefaultHintText     = "Left drag: rotate   Right drag: pan   Wheel: zoom"
	DefaultGlyphAdvance = 7
	iconSize            = 32
	iconMargin          = 16
)

type OverlayConfig struct {
	// DisappearDelay is how long, in seconds, the overlay fades before it is removed.
	DisappearDelay float64
	HintText       string
	InitialText    string
	// Font, when set, is used to measure text. Otherwise every glyph
	// advances GlyphAdvance pixels.
	Font         *metadata.BitmapFontResourceData
	GlyphAdvance int
}

/**
 * @brief The loading overlay, the one-time usage hint and its icon.
 * Owned by the frame loop goroutine.
 */
type Overlay struct {
	config OverlayConfig

	state       OverlayState
	elapsed     float64
	loadingText string
	hintVisible bool
	iconVisible bool

	width  uint32
	height uint32
	icon   metadata.Rect
}

func NewOverlay(config OverlayConfig, width, height uint32) *Overlay {
	if config.HintText == "" {
		config.HintText = DefaultHintText
	}
	if config.GlyphAdvance <= 0 {
		config.GlyphAdvance = DefaultGlyphAdvance
	}
	if config.DisappearDelay < 0 {
		config.DisappearDelay = 0
	}
	o := &Overlay{
		config:      config,
		state:       OverlayStateVisible,
		loadingText: config.InitialText,
	}
	o.Resize(width, height)
	return o
}

func (o *Overlay) State() OverlayState { return o.state }
func (o *Overlay) LoadingText() string { return o.loadingText }
func (o *Overlay) HintVisible() bool   { return o.hintVisible }
func (o *Overlay) IconVisible() bool   { return o.iconVisible }
func (o *Overlay) IconBounds() metadata.Rect {
	return o.icon
}

// SetFont switches text measurement to f. Nil restores the fixed advance.
func (o *Overlay) SetFont(f *metadata.BitmapFontResourceData) {
	o.config.Font = f
}

func (o *Overlay) SetLoadingText(text string) {
	o.loadingText = text
}

// Hide starts the disappear transition. Calls after the first one are ignored.
func (o *Overlay) Hide() {
	if o.state != OverlayStateVisible {
		return
	}
	core.LogDebug("Loading overlay disappearing over %.1fs.", o.config.DisappearDelay)
	o.state = OverlayStateDisappearing
	o.elapsed = 0
	if o.config.DisappearDelay == 0 {
		o.finish()
	}
}

// Update advances the disappear transition by delta seconds.
func (o *Overlay) Update(delta float64) {
	if o.state != OverlayStateDisappearing {
		return
	}
	o.elapsed += delta
	if o.elapsed >= o.config.DisappearDelay {
		o.finish()
	}
}

func (o *Overlay) finish() {
	o.state = OverlayStateHidden
	o.hintVisible = true
	o.iconVisible = true
	core.LogDebug("Loading overlay removed, showing usage hint.")
}

// Opacity of the loading overlay: 1 while visible, fading to 0.
func (o *Overlay) Opacity() float32 {
	switch o.state {
	case OverlayStateVisible:
		return 1
	case OverlayStateDisappearing:
		if o.config.DisappearDelay <= 0 {
			return 0
		}
		return float32(1 - o.elapsed/o.config.DisappearDelay)
	default:
		return 0
	}
}

/**
 * @brief Routes a click anywhere in the window. A click on the visible icon
 * shows the hint; any other click hides it.
 * @return True if the click landed on the icon.
 */
func (o *Overlay) HandleClick(x, y float64) bool {
	if o.iconVisible && o.icon.Contains(x, y) {
		o.hintVisible = true
		return true
	}
	o.hintVisible = false
	return false
}

// Resize keeps the icon anchored to the bottom right corner.
func (o *Overlay) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	o.width, o.height = width, height
	o.icon = metadata.Rect{
		X:      int(width) - iconSize - iconMargin,
		Y:      int(height) - iconSize - iconMargin,
		Width:  iconSize,
		Height: iconSize,
	}
}

// TextWidth measures text with the configured font, kerning included.
func (o *Overlay) TextWidth(text string) int {
	f := o.config.Font
	if f == nil {
		return len([]rune(text)) * o.config.GlyphAdvance
	}
	width := 0
	var prev rune
	for i, r := range text {
		adv, ok := f.Advances[r]
		if !ok {
			adv = int16(o.config.GlyphAdvance)
		}
		width += int(adv)
		if i > 0 {
			width += int(f.Kernings[[2]rune{prev, r}])
		}
		prev = r
	}
	return width
}

// RenderData snapshots the overlay for the renderer.
func (o *Overlay) RenderData() *metadata.OverlayRenderData {
	return &metadata.OverlayRenderData{
		Opacity:     o.Opacity(),
		LoadingText: o.loadingText,
		TextX:       (int(o.width) - o.TextWidth(o.loadingText)) / 2,
		HintVisible: o.hintVisible,
		HintText:    o.config.HintText,
		IconVisible: o.iconVisible,
		IconBounds:  o.icon,
	}
}
