package layer

import (
	"fmt"
	"image"
)

// Kind discriminates the two node variants of a layer tree.
type Kind uint8

const (
	KindLeaf  Kind = iota // pixel, shape or text layer
	KindGroup             // container holding other nodes
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindGroup:
		return "group"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Box is the rectangular extent of a leaf in document coordinates.
// X2 and Y2 are exclusive, so the span is X2-X1 by Y2-Y1.
type Box struct {
	X1, Y1, X2, Y2 int
}

// Width returns X2 - X1.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Box) Height() int { return b.Y2 - b.Y1 }

// Rect returns the box as an image.Rectangle.
func (b Box) Rect() image.Rectangle { return image.Rect(b.X1, b.Y1, b.X2, b.Y2) }

// BoxFromRect converts a decoder rectangle into a Box.
// An empty rectangle means the layer has no pixels and yields nil.
func BoxFromRect(r image.Rectangle) *Box {
	if r.Empty() {
		return nil
	}
	return &Box{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Node is one entry of a layer tree.
type Node struct {
	Kind    Kind
	Name    string
	Visible bool

	// Opacity scales the node's alpha, 0 (transparent) to 255 (opaque).
	// For groups it applies to the whole subtree.
	Opacity uint8

	// Group only.
	Children []*Node

	// Leaf only.
	Bounds *Box
	Image  image.Image // positioned in document coordinates
	Blend  BlendMode
}

// NewGroup returns a visible, opaque group holding children.
func NewGroup(name string, children ...*Node) *Node {
	return &Node{Kind: KindGroup, Name: name, Visible: true, Opacity: 255, Children: children}
}

// NewLeaf returns a visible, opaque leaf with the given bounds (nil for none).
func NewLeaf(name string, bounds *Box) *Node {
	return &Node{Kind: KindLeaf, Name: name, Visible: true, Opacity: 255, Bounds: bounds}
}

// Hidden clears the visible flag and returns n, for building trees inline.
func (n *Node) Hidden() *Node {
	n.Visible = false
	return n
}

// IsGroup reports whether n is a container.
func (n *Node) IsGroup() bool { return n.Kind == KindGroup }

// Walk visits every descendant of n in depth-first pre-order. n itself is
// not visited. Walk stops early when fn returns false.
func (n *Node) Walk(fn func(*Node) bool) {
	n.walk(fn)
}

func (n *Node) walk(fn func(*Node) bool) bool {
	for _, c := range n.Children {
		if !fn(c) {
			return false
		}
		if c.IsGroup() && !c.walk(fn) {
			return false
		}
	}
	return true
}

// contains reports whether target is n or one of its descendants.
func (n *Node) contains(target *Node) bool {
	if n == target {
		return true
	}
	found := false
	n.Walk(func(c *Node) bool {
		found = c == target
		return !found
	})
	return found
}

// Document is a decoded layered image.
type Document struct {
	// Bounds is the canvas rectangle, normally anchored at (0,0).
	Bounds image.Rectangle

	// Root is an unnamed group holding the top-level layers. It is never
	// reported by Walk, FindGroup or GroupNames.
	Root *Node

	consumed bool
}

// NewDocument returns a document of the given canvas size holding layers.
func NewDocument(width, height int, layers ...*Node) *Document {
	return &Document{
		Bounds: image.Rect(0, 0, width, height),
		Root:   NewGroup("", layers...),
	}
}

// Consumed reports whether Flatten has already been called.
func (d *Document) Consumed() bool { return d.consumed }
