package collage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// decodeJSON parses a single JSON value into a yaml.Node tree, keeping
// object key order and the literal text of numbers. A repeated key keeps
// its first position and its last value.
func decodeJSON(data []byte) (*yaml.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := readValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
		}
		return nil, err
	}
	return n, nil
}

func readValue(dec *json.Decoder) (*yaml.Node, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readObject(dec)
		case '[':
			return readArray(dec)
		default:
			return nil, fmt.Errorf("unexpected %q at offset %d", t, dec.InputOffset())
		}
	case string:
		return strNode(t), nil
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(string(t), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: string(t)}, nil
	case bool:
		return boolNode(t), nil
	case nil:
		return nullNode(), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func readObject(dec *json.Decoder) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		val, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		set(m, key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func readArray(dec *json.Decoder) (*yaml.Node, error) {
	s := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for dec.More() {
		val, err := readValue(dec)
		if err != nil {
			return nil, err
		}
		s.Content = append(s.Content, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return s, nil
}

// encodeJSON writes n as JSON indented by two spaces per level, the layout
// of Python's json.dump(indent=2) that photobooth configs are written with.
func encodeJSON(buf *bytes.Buffer, n *yaml.Node, depth int) error {
	n = resolve(n)
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return encodeJSON(buf, n.Content[0], depth)

	case yaml.MappingNode:
		if len(n.Content) == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i := 0; i+1 < len(n.Content); i += 2 {
			indent(buf, depth+1)
			writeString(buf, n.Content[i].Value)
			buf.WriteString(": ")
			if err := encodeJSON(buf, n.Content[i+1], depth+1); err != nil {
				return err
			}
			if i+2 < len(n.Content) {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		indent(buf, depth)
		buf.WriteByte('}')
		return nil

	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range n.Content {
			indent(buf, depth+1)
			if err := encodeJSON(buf, item, depth+1); err != nil {
				return err
			}
			if i+1 < len(n.Content) {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		indent(buf, depth)
		buf.WriteByte(']')
		return nil

	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			buf.WriteString("null")
		case "!!bool", "!!int", "!!float":
			buf.WriteString(n.Value)
		default:
			writeString(buf, n.Value)
		}
		return nil

	default:
		return fmt.Errorf("cannot encode node kind %v as JSON", n.Kind)
	}
}

func indent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}

func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1) // Encode appends a newline
}
