package collage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/psdlayout/pkg/errors"
)

// Format is the serialisation of a configuration document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the format from the file extension, looking through
// the UpdatedSuffix of merged copies so config.yaml.updated stays YAML.
// .yaml and .yml are YAML; anything else is treated as JSON.
func FormatForPath(path string) Format {
	for strings.HasSuffix(path, UpdatedSuffix) {
		path = strings.TrimSuffix(path, UpdatedSuffix)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is a parsed configuration that preserves key order.
type Document struct {
	Format Format
	root   *yaml.Node
}

// Parse decodes data in the given format.
// Syntax errors are reported as CONFIG_PARSE errors.
func Parse(data []byte, format Format) (*Document, error) {
	root, err := decode(data, format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigParse, err, "parse %s config", format)
	}
	return &Document{Format: format, root: root}, nil
}

// Load reads and parses the configuration at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigParse, err, "read %s", path)
	}
	format := FormatForPath(path)
	root, err := decode(data, format)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigParse, err, "parse %s", path)
	}
	return &Document{Format: format, root: root}, nil
}

func decode(data []byte, format Format) (*yaml.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
			return nil, fmt.Errorf("document is empty")
		}
		return doc.Content[0], nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Root returns the top-level node of the document.
func (d *Document) Root() *yaml.Node { return d.root }

// Encode writes the document to w in its own format with 2-space indent.
func (d *Document) Encode(w io.Writer) error {
	switch d.Format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d.root); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		var buf bytes.Buffer
		if err := encodeJSON(&buf, d.root, 0); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		buf.WriteByte('\n')
		_, err := w.Write(buf.Bytes())
		return err
	}
}

// Save writes the document to path, replacing any existing file.
func (d *Document) Save(path string) error {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// Node helpers
// =============================================================================

// resolve follows alias nodes to their anchor.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// lookup returns the value stored under key in a mapping node, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	m = resolve(m)
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolve(m.Content[i+1])
		}
	}
	return nil
}

// set stores value under key in a mapping node, replacing an existing
// value in place or appending a new pair at the end.
func set(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, strNode(key), value)
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func intNode(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(v)}
}

func boolNode(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprint(v)}
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// clone deep-copies a node so that one value can be placed in several
// mappings without sharing.
func clone(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Kind == yaml.AliasNode {
		return clone(n.Alias)
	}
	c.Anchor = ""
	c.Content = make([]*yaml.Node, len(n.Content))
	for i, child := range n.Content {
		c.Content[i] = clone(child)
	}
	return &c
}
