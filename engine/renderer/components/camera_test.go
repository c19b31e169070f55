package components

import (
	"testing"

	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/stretchr/testify/assert"
)

func TestCameraLooksDownNegativeZ(t *testing.T) {
	c := NewCamera(75, 16.0/9.0, 0.1, 1000)
	c.SetPosition(math.NewVec3(0, 0, 5))
	c.LookAt(math.NewVec3Zero())

	inView := math.NewVec3Zero().Transform(c.GetView())
	assert.True(t, inView.Compare(math.NewVec3(0, 0, -5), 1e-5), "got %+v", inView)

	clip := math.NewVec3Zero().Project(c.GetViewProjection())
	assert.InDelta(t, 5.0, clip.W, 1e-4)
	assert.InDelta(t, 0.0, clip.X/clip.W, 1e-5)
}

func TestCameraAspectChangesProjectionOnly(t *testing.T) {
	c := NewCamera(75, 1, 0.1, 1000)
	c.SetPosition(math.NewVec3(0, 6.5, 9))
	before := c.GetProjection()

	c.SetAspect(2)
	c.UpdateProjectionMatrix()

	after := c.GetProjection()
	assert.InDelta(t, before.Data[0]/2, after.Data[0], 1e-5)
	assert.Equal(t, before.Data[5], after.Data[5])
	assert.Equal(t, math.NewVec3(0, 6.5, 9), c.GetPosition())
}
