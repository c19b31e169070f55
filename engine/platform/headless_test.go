package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/skyview/engine/containers"
	"github.com/spaghettifunk/skyview/engine/core"
)

func TestHeadlessFiresQueuedEvents(t *testing.T) {
	es := core.NewEventSystem()
	h := NewHeadless(es)
	require.NoError(t, h.Startup("test", 0, 0, 640, 480))

	var sizes [][2]uint32
	var clicks int
	es.Register(core.EVENT_CODE_RESIZED, func(c core.EventContext) bool {
		se := c.Data.(*core.SystemEvent)
		sizes = append(sizes, [2]uint32{se.WindowWidth, se.WindowHeight})
		return false
	})
	es.Register(core.EVENT_CODE_CLICK, func(core.EventContext) bool {
		clicks++
		return true
	})

	require.NoError(t, h.Resize(800, 600))
	require.NoError(t, h.Push(core.EventContext{Type: core.EVENT_CODE_CLICK, Data: &core.MouseButtonEvent{X: 1, Y: 2}}))
	assert.Empty(t, sizes)

	assert.True(t, h.PumpMessages())
	assert.Equal(t, [][2]uint32{{800, 600}}, sizes)
	assert.Equal(t, 1, clicks)

	w, ht := h.FramebufferSize()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), ht)

	h.Close()
	assert.False(t, h.PumpMessages())
}

func TestHeadlessNotStartedReportsClosed(t *testing.T) {
	h := NewHeadless(core.NewEventSystem())
	assert.False(t, h.PumpMessages())
}

func TestHeadlessQueueIsBounded(t *testing.T) {
	h := NewHeadless(core.NewEventSystem())
	require.NoError(t, h.Startup("test", 0, 0, 1, 1))
	for i := 0; i < HeadlessQueueSize; i++ {
		require.NoError(t, h.Push(core.EventContext{Type: core.EVENT_CODE_CLICK}))
	}
	assert.ErrorIs(t, h.Push(core.EventContext{Type: core.EVENT_CODE_CLICK}), containers.ErrQueueFull)

	assert.True(t, h.PumpMessages())
	assert.NoError(t, h.Push(core.EventContext{Type: core.EVENT_CODE_CLICK}))
}
