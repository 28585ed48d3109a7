package placeholder

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteJSON encodes placeholders as an indented JSON array and writes it to w.
// A nil or empty list is written as [].
func WriteJSON(list []Placeholder, w io.Writer) error {
	if list == nil {
		list = []Placeholder{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(list); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes placeholders to a JSON file at path, replacing any
// existing file.
func ExportJSON(list []Placeholder, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(list, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadJSON decodes a positions file written by WriteJSON.
func ReadJSON(r io.Reader) ([]Placeholder, error) {
	var list []Placeholder
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return list, nil
}

// ImportJSON reads the positions file at path.
func ImportJSON(path string) ([]Placeholder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
