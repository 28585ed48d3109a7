package pipeline

import (
	"github.com/matzehuels/psdlayout/pkg/layer"
	"github.com/matzehuels/psdlayout/pkg/placeholder"
)

// GroupSummary describes one layer group of a document.
type GroupSummary struct {
	Name  string
	Depth int // 0 for top-level groups

	// Placeholders is what extracting this group would produce.
	Placeholders []placeholder.Placeholder
}

// Inspect opens the document at path without pixel data and summarizes
// every group in traversal order.
func Inspect(path string) ([]GroupSummary, error) {
	doc, err := layer.Open(path, layer.DecodeOptions{SkipPixels: true})
	if err != nil {
		return nil, err
	}
	return Summarize(doc), nil
}

// Summarize lists every group of doc in depth-first order with the
// placeholders it holds.
func Summarize(doc *layer.Document) []GroupSummary {
	out := []GroupSummary{}
	var visit func(n *layer.Node, depth int)
	visit = func(n *layer.Node, depth int) {
		for _, c := range n.Children {
			if !c.IsGroup() {
				continue
			}
			out = append(out, GroupSummary{
				Name:         c.Name,
				Depth:        depth,
				Placeholders: placeholder.Extract(c),
			})
			visit(c, depth+1)
		}
	}
	visit(doc.Root, 0)
	return out
}
