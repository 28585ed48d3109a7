package layer

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
)

// solidLeaf returns a leaf filled with c over box.
func solidLeaf(name string, box Box, c color.Color) *Node {
	img := image.NewNRGBA(box.Rect())
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	leaf := NewLeaf(name, &box)
	leaf.Image = img
	return leaf
}

var (
	white = color.NRGBA{255, 255, 255, 255}
	red   = color.NRGBA{255, 0, 0, 255}
	gray  = color.NRGBA{128, 128, 128, 255}
)

func newTestDocument() (*Document, *Node) {
	slots := NewGroup("photobooth_images",
		solidLeaf("slot1", Box{2, 2, 4, 4}, red),
	)
	doc := NewDocument(8, 8,
		solidLeaf("Background", Box{0, 0, 8, 8}, white),
		slots,
	)
	return doc, slots
}

func TestFlattenHidesGroup(t *testing.T) {
	doc, slots := newTestDocument()

	img, err := doc.Flatten(slots)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if got := img.NRGBAAt(3, 3); got != white {
		t.Errorf("pixel under hidden group = %v, want %v", got, white)
	}
	if slots.Visible {
		t.Error("group still visible after Flatten")
	}
	if img.Bounds() != image.Rect(0, 0, 8, 8) {
		t.Errorf("canvas bounds = %v", img.Bounds())
	}
}

func TestFlattenWithoutGroup(t *testing.T) {
	doc, _ := newTestDocument()
	img, err := doc.Flatten(nil)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if got := img.NRGBAAt(3, 3); got != red {
		t.Errorf("pixel = %v, want %v", got, red)
	}
	if got := img.NRGBAAt(0, 0); got != white {
		t.Errorf("pixel = %v, want %v", got, white)
	}
}

func TestFlattenConsumesDocument(t *testing.T) {
	doc, slots := newTestDocument()
	if _, err := doc.Flatten(slots); err != nil {
		t.Fatalf("first Flatten() error = %v", err)
	}
	if !doc.Consumed() {
		t.Error("Consumed() = false after Flatten")
	}
	if _, err := doc.Flatten(slots); !errors.Is(err, ErrConsumed) {
		t.Errorf("second Flatten() error = %v, want ErrConsumed", err)
	}
}

func TestFlattenRejectsForeignGroup(t *testing.T) {
	doc, _ := newTestDocument()
	if _, err := doc.Flatten(NewGroup("photobooth_images")); err == nil {
		t.Error("Flatten() accepted a group from another tree")
	}
	if doc.Consumed() {
		t.Error("rejected Flatten consumed the document")
	}
}

func TestFlattenRejectsLeaf(t *testing.T) {
	doc, slots := newTestDocument()
	if _, err := doc.Flatten(slots.Children[0]); err == nil {
		t.Error("Flatten() accepted a leaf")
	}
}

func TestFlattenSkipsHiddenAndTransparent(t *testing.T) {
	hidden := solidLeaf("hidden", Box{0, 0, 4, 4}, red).Hidden()
	faded := solidLeaf("clear", Box{4, 4, 8, 8}, red)
	faded.Opacity = 0
	doc := NewDocument(8, 8, solidLeaf("Background", Box{0, 0, 8, 8}, white), hidden, faded)

	img, err := doc.Flatten(nil)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	for _, p := range []image.Point{{1, 1}, {6, 6}} {
		if got := img.NRGBAAt(p.X, p.Y); got != white {
			t.Errorf("pixel %v = %v, want %v", p, got, white)
		}
	}
}

func TestFlattenGroupOpacity(t *testing.T) {
	black := color.NRGBA{0, 0, 0, 255}
	group := NewGroup("shade", solidLeaf("fill", Box{0, 0, 2, 2}, black))
	group.Opacity = 128
	doc := NewDocument(2, 2, solidLeaf("Background", Box{0, 0, 2, 2}, white), group)

	img, err := doc.Flatten(nil)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	got := img.NRGBAAt(0, 0)
	if got.A != 255 || got.R < 120 || got.R > 135 {
		t.Errorf("half-opaque black over white = %v, want mid gray", got)
	}
}

func TestBlendModes(t *testing.T) {
	tests := []struct {
		mode BlendMode
		dst  color.NRGBA
		src  color.NRGBA
		want color.NRGBA
	}{
		{BlendMultiply, white, red, red},
		{BlendMultiply, gray, white, gray},
		{BlendScreen, red, color.NRGBA{0, 0, 255, 255}, color.NRGBA{255, 0, 255, 255}},
		{BlendDifference, white, white, color.NRGBA{0, 0, 0, 255}},
		{BlendOverlay, white, red, color.NRGBA{255, 255, 255, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if got := blend(tt.dst, tt.src, tt.mode, 1); got != tt.want {
				t.Errorf("blend(%v, %v) = %v, want %v", tt.dst, tt.src, got, tt.want)
			}
		})
	}
}

func TestBlendOntoTransparent(t *testing.T) {
	got := blend(color.NRGBA{}, red, BlendMultiply, 1)
	if got != red {
		t.Errorf("multiply onto transparent = %v, want source %v", got, red)
	}
	if got := blend(color.NRGBA{}, color.NRGBA{}, BlendScreen, 1); got != (color.NRGBA{}) {
		t.Errorf("transparent onto transparent = %v", got)
	}
}

func TestMultiplyLeafComposite(t *testing.T) {
	tint := solidLeaf("tint", Box{0, 0, 2, 2}, red)
	tint.Blend = BlendMultiply
	doc := NewDocument(2, 2, solidLeaf("Background", Box{0, 0, 2, 2}, gray), tint)

	img, err := doc.Flatten(nil)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}
	if got, want := img.NRGBAAt(1, 1), (color.NRGBA{128, 0, 0, 255}); got != want {
		t.Errorf("multiply pixel = %v, want %v", got, want)
	}
}
