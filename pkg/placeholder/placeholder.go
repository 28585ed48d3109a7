// Package placeholder extracts photo placeholder regions from a layer group.
//
// Each visible leaf with a bounding box inside the group becomes one
// [Placeholder], in the group's depth-first traversal order. That order is
// what later correlates a fresh extraction with the merge definitions
// already stored in a collage configuration, so it must be stable: the
// same document always yields the same list.
package placeholder

import (
	"github.com/matzehuels/psdlayout/pkg/layer"
)

// DefaultImageFilter is the filter assigned to freshly extracted placeholders.
const DefaultImageFilter = "original"

// Placeholder is one rectangular photo slot of a collage.
// Field order matches the key order of the positions file.
type Placeholder struct {
	Description     string  `json:"description" yaml:"description"`
	PosX            int     `json:"pos_x" yaml:"pos_x"`
	PosY            int     `json:"pos_y" yaml:"pos_y"`
	Width           int     `json:"width" yaml:"width"`
	Height          int     `json:"height" yaml:"height"`
	Rotate          int     `json:"rotate" yaml:"rotate"`
	PredefinedImage *string `json:"predefined_image" yaml:"predefined_image"`
	ImageFilter     string  `json:"image_filter" yaml:"image_filter"`
}

// FromLeaf converts a leaf's bounding box into a placeholder with default
// rotation, no predefined image and the default filter.
func FromLeaf(name string, box layer.Box) Placeholder {
	return Placeholder{
		Description: name,
		PosX:        box.X1,
		PosY:        box.Y1,
		Width:       box.Width(),
		Height:      box.Height(),
		Rotate:      0,
		ImageFilter: DefaultImageFilter,
	}
}

// Extract walks every descendant of group and returns one placeholder per
// visible leaf that has a bounding box. A leaf counts as visible only when
// it and every group above it, up to and including group, are visible.
// Groups, hidden leaves and leaves without pixels are skipped. The result
// is never nil; an empty list is a valid (if suspicious) extraction.
func Extract(group *layer.Node) []Placeholder {
	out := []Placeholder{}
	if group == nil || !group.Visible {
		return out
	}
	return collect(group, out)
}

// collect appends the placeholders under n in depth-first order, skipping
// the subtree of every hidden group.
func collect(n *layer.Node, out []Placeholder) []Placeholder {
	for _, c := range n.Children {
		switch {
		case c.IsGroup():
			if c.Visible {
				out = collect(c, out)
			}
		case c.Visible && c.Bounds != nil:
			out = append(out, FromLeaf(c.Name, *c.Bounds))
		}
	}
	return out
}
