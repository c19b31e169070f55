// Package animation plays keyframed clips on scene graph nodes.
package animation

import (
	"sort"

	"github.com/spaghettifunk/skyview/engine/math"
	"github.com/spaghettifunk/skyview/engine/scene"
)

type TargetPath uint8

const (
	PathTranslation TargetPath = iota
	PathRotation
	PathScale
)

type Interpolation uint8

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
)

// Channel drives one property of one node. Values holds 3 components per
// keyframe for translation and scale, 4 for rotation.
type Channel struct {
	Target        *scene.Node
	Path          TargetPath
	Interpolation Interpolation
	Times         []float32
	Values        []float32
}

func (c *Channel) components() int {
	if c.Path == PathRotation {
		return 4
	}
	return 3
}

// Clip is a named set of channels. Duration is the last keyframe time over
// every channel.
type Clip struct {
	Name     string
	Duration float32
	Channels []*Channel
}

func NewClip(name string, channels []*Channel) *Clip {
	c := &Clip{Name: name, Channels: channels}
	for _, ch := range channels {
		if n := len(ch.Times); n > 0 && ch.Times[n-1] > c.Duration {
			c.Duration = ch.Times[n-1]
		}
	}
	return c
}

// keyframe returns the index of the keyframe at or before t and the blend
// factor towards the next keyframe.
func (c *Channel) keyframe(t float32) (int, float32) {
	n := len(c.Times)
	if n == 0 || t <= c.Times[0] {
		return 0, 0
	}
	if t >= c.Times[n-1] {
		return n - 1, 0
	}
	i := sort.Search(n, func(i int) bool { return c.Times[i] > t }) - 1
	span := c.Times[i+1] - c.Times[i]
	if span <= 0 || c.Interpolation == InterpolationStep {
		return i, 0
	}
	return i, (t - c.Times[i]) / span
}

func (c *Channel) vec3(i int) math.Vec3 {
	o := i * 3
	return math.NewVec3(c.Values[o], c.Values[o+1], c.Values[o+2])
}

func (c *Channel) quat(i int) math.Quaternion {
	o := i * 4
	return math.Quaternion{X: c.Values[o], Y: c.Values[o+1], Z: c.Values[o+2], W: c.Values[o+3]}
}

// Apply samples the channel at time t and writes the result to the target.
func (c *Channel) Apply(t float32) {
	if c.Target == nil || len(c.Times) == 0 || len(c.Values) < len(c.Times)*c.components() {
		return
	}
	i, f := c.keyframe(t)
	next := i
	if f > 0 {
		next = i + 1
	}
	switch c.Path {
	case PathTranslation:
		c.Target.Transform.SetPosition(c.vec3(i).Lerp(c.vec3(next), f))
	case PathScale:
		c.Target.Transform.SetScale(c.vec3(i).Lerp(c.vec3(next), f))
	case PathRotation:
		c.Target.Transform.SetRotation(c.quat(i).Slerp(c.quat(next), f))
	}
}
