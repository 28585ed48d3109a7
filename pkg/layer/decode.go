package layer

import (
	"fmt"
	"io"
	"os"

	"github.com/oov/psd"

	"github.com/matzehuels/psdlayout/pkg/errors"
)

// DecodeOptions controls how much of a PSD file is decoded.
type DecodeOptions struct {
	// SkipPixels decodes only the layer structure. Documents decoded this
	// way can be searched and extracted but flatten to a blank canvas.
	SkipPixels bool
}

// blendModes maps PSD blend mode keys to the modes the compositor supports.
// Anything else is composited as normal.
var blendModes = map[string]BlendMode{
	"norm": BlendNormal,
	"mul ": BlendMultiply,
	"scrn": BlendScreen,
	"over": BlendOverlay,
	"diff": BlendDifference,
}

// Open decodes the PSD file at path.
// Any failure is reported as a DOCUMENT_OPEN error.
func Open(path string, opts DecodeOptions) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDocumentOpen, err, "open %s", path)
	}
	defer f.Close()

	doc, err := Decode(f, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDocumentOpen, err, "decode %s", path)
	}
	return doc, nil
}

// Decode reads a PSD document from r and converts its layer records into a
// layer tree.
func Decode(r io.Reader, opts DecodeOptions) (*Document, error) {
	img, _, err := psd.Decode(r, &psd.DecodeOptions{
		SkipLayerImage:  opts.SkipPixels,
		SkipMergedImage: true,
	})
	if err != nil {
		return nil, fmt.Errorf("decode psd: %w", err)
	}

	root := NewGroup("")
	root.Children = convertLayers(img.Layer)
	return &Document{Bounds: img.Config.Rect, Root: root}, nil
}

func convertLayers(layers []psd.Layer) []*Node {
	nodes := make([]*Node, 0, len(layers))
	for i := range layers {
		nodes = append(nodes, convertLayer(&layers[i]))
	}
	return nodes
}

func convertLayer(l *psd.Layer) *Node {
	name := l.UnicodeName
	if name == "" {
		name = l.Name
	}
	if l.Folder() {
		return &Node{
			Kind:     KindGroup,
			Name:     name,
			Visible:  l.Visible(),
			Opacity:  l.Opacity,
			Children: convertLayers(l.Layer),
		}
	}
	return &Node{
		Kind:    KindLeaf,
		Name:    name,
		Visible: l.Visible(),
		Opacity: l.Opacity,
		Bounds:  BoxFromRect(l.Rect),
		Image:   l.Picture,
		Blend:   blendModes[string(l.BlendMode)],
	}
}
