package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/skyview/engine/renderer/metadata"
)

func newTestOverlay() *Overlay {
	return NewOverlay(OverlayConfig{DisappearDelay: 2, InitialText: "Loading... 0%"}, 800, 600)
}

func TestOverlayDisappearsAfterDelay(t *testing.T) {
	o := newTestOverlay()
	assert.Equal(t, OverlayStateVisible, o.State())
	assert.Equal(t, float32(1), o.Opacity())

	o.Update(5)
	assert.Equal(t, OverlayStateVisible, o.State())

	o.Hide()
	assert.Equal(t, OverlayStateDisappearing, o.State())
	o.Update(1)
	assert.InDelta(t, 0.5, o.Opacity(), 1e-6)
	assert.False(t, o.HintVisible())
	assert.False(t, o.IconVisible())

	o.Update(1)
	assert.Equal(t, OverlayStateHidden, o.State())
	assert.Equal(t, float32(0), o.Opacity())
	assert.True(t, o.HintVisible())
	assert.True(t, o.IconVisible())
}

func TestOverlayHideTwiceKeepsTimer(t *testing.T) {
	o := newTestOverlay()
	o.Hide()
	o.Update(1.5)
	o.Hide()
	o.Update(0.5)
	assert.Equal(t, OverlayStateHidden, o.State())
}

func TestOverlayZeroDelayHidesImmediately(t *testing.T) {
	o := NewOverlay(OverlayConfig{}, 800, 600)
	o.Hide()
	assert.Equal(t, OverlayStateHidden, o.State())
	assert.True(t, o.IconVisible())
}

func TestOverlayClickRouting(t *testing.T) {
	o := newTestOverlay()
	icon := o.IconBounds()
	onIcon := func() bool {
		return o.HandleClick(float64(icon.X+1), float64(icon.Y+1))
	}

	// The icon does nothing before it is revealed.
	assert.False(t, onIcon())
	assert.False(t, o.HintVisible())

	o.Hide()
	o.Update(2)
	assert.True(t, o.HintVisible())

	assert.False(t, o.HandleClick(10, 10))
	assert.False(t, o.HintVisible())

	assert.True(t, onIcon())
	assert.True(t, o.HintVisible())

	// Clicking the icon again keeps the hint up.
	assert.True(t, onIcon())
	assert.True(t, o.HintVisible())
}

func TestOverlayIconFollowsResize(t *testing.T) {
	o := newTestOverlay()
	o.Resize(1024, 768)
	assert.Equal(t, metadata.Rect{X: 1024 - 48, Y: 768 - 48, Width: 32, Height: 32}, o.IconBounds())

	o.Resize(0, 0)
	assert.Equal(t, 1024-48, o.IconBounds().X)
}

func TestOverlayTextCentering(t *testing.T) {
	o := newTestOverlay()
	o.SetLoadingText("Loading... 50%")
	data := o.RenderData()
	assert.Equal(t, "Loading... 50%", data.LoadingText)
	assert.Equal(t, (800-14*DefaultGlyphAdvance)/2, data.TextX)
	assert.Equal(t, DefaultHintText, data.HintText)
}

func TestOverlayTextWidthWithFont(t *testing.T) {
	font := &metadata.BitmapFontResourceData{
		Advances: map[rune]int16{'A': 10, 'V': 9},
		Kernings: map[[2]rune]int16{{'A', 'V'}: -2},
	}
	o := NewOverlay(OverlayConfig{Font: font}, 800, 600)
	assert.Equal(t, 17, o.TextWidth("AV"))
	// unknown glyphs fall back to the fixed advance
	assert.Equal(t, 10+DefaultGlyphAdvance, o.TextWidth("A?"))
}

func TestOverlayStateString(t *testing.T) {
	assert.Equal(t, "disappearing", OverlayStateDisappearing.String())
}
