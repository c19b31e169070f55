// Package scene holds the hierarchy of renderable nodes.
package scene

import (
	"github.com/spaghettifunk/skyview/engine/math"
)

// Mesh is the CPU-side geometry attached to a node. Only vertex positions
// are kept; the render backend decides how to draw them.
type Mesh struct {
	Name      string
	Positions []math.Vec3
}

// Node is one element of the scene graph. Its Transform is parented to its
// parent's Transform, so world matrices compose automatically.
type Node struct {
	Name      string
	Transform *math.Transform
	Mesh      *Mesh
	Children  []*Node
	Parent    *Node
}

func NewNode(name string) *Node {
	return &Node{
		Name:      name,
		Transform: math.TransformCreate(),
	}
}

// Add attaches child to n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child.Parent != nil {
		child.Parent.Remove(child)
	}
	child.Parent = n
	child.Transform.Parent = n.Transform
	n.Children = append(n.Children, child)
}

// Remove detaches child from n. Returns false if child was not a direct child.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.Transform.Parent = nil
			return true
		}
	}
	return false
}

// Walk visits n and every descendant depth-first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the first node in the subtree named name.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// Scene is the root of the graph.
type Scene struct {
	Root *Node
}

func New() *Scene {
	return &Scene{Root: NewNode("root")}
}

func (s *Scene) Add(node *Node) {
	s.Root.Add(node)
}

// Walk visits every node below the root.
func (s *Scene) Walk(fn func(*Node) bool) {
	for _, c := range s.Root.Children {
		c.Walk(fn)
	}
}

// NodeCount returns the number of nodes below the root.
func (s *Scene) NodeCount() int {
	count := 0
	s.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}
