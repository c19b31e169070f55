package scene

import (
	"testing"

	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddParentsTransforms(t *testing.T) {
	s := New()
	parent := NewNode("parent")
	child := NewNode("child")
	parent.Add(child)
	s.Add(parent)

	parent.Transform.SetPosition(math.NewVec3(1, 2, 3))
	child.Transform.SetPosition(math.NewVec3(1, 0, 0))

	world := math.NewVec3Zero().Transform(child.Transform.GetWorld())
	assert.True(t, world.Compare(math.NewVec3(2, 2, 3), 1e-5), "got %+v", world)
	assert.Equal(t, 2, s.NodeCount())
}

func TestReparentDetaches(t *testing.T) {
	a := NewNode("a")
	b := NewNode("b")
	c := NewNode("c")
	a.Add(c)
	b.Add(c)

	assert.Empty(t, a.Children)
	require.Len(t, b.Children, 1)
	assert.Same(t, b, c.Parent)
	assert.Same(t, b.Transform, c.Transform.Parent)
}

func TestFind(t *testing.T) {
	s := New()
	a := NewNode("a")
	a.Add(NewNode("leaf"))
	s.Add(a)

	assert.NotNil(t, s.Root.Find("leaf"))
	assert.Nil(t, s.Root.Find("missing"))
	assert.False(t, a.Remove(NewNode("other")))
}
