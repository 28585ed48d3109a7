package layer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
)

// BlendMode specifies how a leaf is combined with what lies beneath it.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDifference
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	case BlendScreen:
		return "Screen"
	case BlendOverlay:
		return "Overlay"
	case BlendDifference:
		return "Difference"
	default:
		return "Unknown"
	}
}

// ErrConsumed is returned by Flatten when the document was already rendered.
var ErrConsumed = errors.New("document already flattened")

// Flatten hides group, composites every visible leaf of the document and
// returns the resulting canvas. The document is consumed: group stays
// hidden and any later call returns ErrConsumed.
//
// group must belong to the document. A nil group flattens without hiding
// anything.
func (d *Document) Flatten(group *Node) (*image.NRGBA, error) {
	if d.consumed {
		return nil, ErrConsumed
	}
	if group != nil {
		if !group.IsGroup() {
			return nil, fmt.Errorf("flatten: %q is a %s, not a group", group.Name, group.Kind)
		}
		if !d.Root.contains(group) {
			return nil, fmt.Errorf("flatten: group %q does not belong to this document", group.Name)
		}
	}
	d.consumed = true

	if group != nil {
		group.Visible = false
	}
	canvas := image.NewNRGBA(d.Bounds)
	compositeChildren(canvas, d.Root, 1)
	return canvas, nil
}

// compositeChildren draws n's children bottom-most first. Groups pass their
// scaled opacity through to their subtree.
func compositeChildren(dst *image.NRGBA, n *Node, opacity float64) {
	for _, c := range n.Children {
		if !c.Visible {
			continue
		}
		o := opacity * float64(c.Opacity) / 255
		if c.IsGroup() {
			compositeChildren(dst, c, o)
			continue
		}
		if c.Image == nil || o == 0 {
			continue
		}
		compositeLeaf(dst, c, o)
	}
}

// compositeLeaf blends a single leaf onto dst.
func compositeLeaf(dst *image.NRGBA, leaf *Node, opacity float64) {
	r := leaf.Image.Bounds().Intersect(dst.Bounds())
	if r.Empty() {
		return
	}

	if leaf.Blend == BlendNormal {
		mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
		xdraw.DrawMask(dst, r, leaf.Image, r.Min, mask, image.Point{}, xdraw.Over)
		return
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			s := color.NRGBAModel.Convert(leaf.Image.At(x, y)).(color.NRGBA)
			if s.A == 0 {
				continue
			}
			dst.SetNRGBA(x, y, blend(dst.NRGBAAt(x, y), s, leaf.Blend, opacity))
		}
	}
}

// blend composites src over dst with a separable blend mode:
//
//	co = sa*(1-da)*cs + sa*da*B(cd,cs) + (1-sa)*da*cd
//	ao = sa + da*(1-sa)
func blend(dst, src color.NRGBA, mode BlendMode, opacity float64) color.NRGBA {
	sa := float64(src.A) / 255 * opacity
	da := float64(dst.A) / 255
	ao := sa + da*(1-sa)
	if ao == 0 {
		return color.NRGBA{}
	}

	s := [3]float64{float64(src.R) / 255, float64(src.G) / 255, float64(src.B) / 255}
	d := [3]float64{float64(dst.R) / 255, float64(dst.G) / 255, float64(dst.B) / 255}

	var out [3]uint8
	for i := 0; i < 3; i++ {
		b := blendChannel(d[i], s[i], mode)
		co := sa*(1-da)*s[i] + sa*da*b + (1-sa)*da*d[i]
		out[i] = toByte(co / ao)
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: toByte(ao)}
}

func blendChannel(cd, cs float64, mode BlendMode) float64 {
	switch mode {
	case BlendMultiply:
		return cs * cd
	case BlendScreen:
		return 1 - (1-cs)*(1-cd)
	case BlendOverlay:
		if cd < 0.5 {
			return 2 * cs * cd
		}
		return 1 - 2*(1-cs)*(1-cd)
	case BlendDifference:
		return math.Abs(cs - cd)
	default:
		return cs
	}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
