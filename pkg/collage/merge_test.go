package collage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/psdlayout/pkg/errors"
	"github.com/matzehuels/psdlayout/pkg/layer"
	"github.com/matzehuels/psdlayout/pkg/placeholder"
)

func twoSlots() []placeholder.Placeholder {
	return []placeholder.Placeholder{
		placeholder.FromLeaf("slot1", layer.Box{X1: 10, Y1: 10, X2: 110, Y2: 210}),
		placeholder.FromLeaf("slot2", layer.Box{X1: 150, Y1: 10, X2: 250, Y2: 210}),
	}
}

// copyFixture copies a testdata file into a temp dir and returns its path.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// decodeDefinitions reads merge_definition of collage action i back into
// placeholders.
func decodeDefinitions(t *testing.T, doc *Document, i int) []placeholder.Placeholder {
	t.Helper()
	collage := lookup(lookup(doc.Root(), "actions"), "collage")
	defs := lookup(lookup(collage.Content[i], "processing"), "merge_definition")
	if defs == nil {
		t.Fatalf("action %d has no merge_definition", i)
	}
	var out []placeholder.Placeholder
	if err := defs.Decode(&out); err != nil {
		t.Fatalf("decode merge_definition: %v", err)
	}
	return out
}

func ptr(s string) *string { return &s }

func TestMergeCarryForward(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "config.json"))
	if err != nil {
		t.Fatal(err)
	}

	stats, err := Merge(doc, twoSlots(), "canvas_front.png")
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	want := MergeStats{UpdatedActions: 2, Mismatched: 1, CanvasActions: 3}
	if stats != want {
		t.Errorf("Merge() stats = %+v, want %+v", stats, want)
	}

	// Equal length: filters carried by index, geometry from the extraction.
	got := decodeDefinitions(t, doc, 0)
	wantDefs := []placeholder.Placeholder{
		{Description: "slot1", PosX: 10, PosY: 10, Width: 100, Height: 200, ImageFilter: "sepia"},
		{Description: "slot2", PosX: 150, PosY: 10, Width: 100, Height: 200, PredefinedImage: ptr("userdata/logo.png"), ImageFilter: "bw"},
	}
	if diff := cmp.Diff(wantDefs, got); diff != "" {
		t.Errorf("carried definitions mismatch (-want +got):\n%s", diff)
	}

	// Different length: nothing carried.
	got = decodeDefinitions(t, doc, 1)
	if diff := cmp.Diff(twoSlots(), got); diff != "" {
		t.Errorf("mismatched definitions mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDefaultsWhenOldEntryLacksKeys(t *testing.T) {
	src := `{"actions": {"collage": [{"processing": {"merge_definition": [{}, {"image_filter": "bw"}]}}]}}`
	doc, err := Parse([]byte(src), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Merge(doc, twoSlots(), "canvas_front.png"); err != nil {
		t.Fatal(err)
	}
	got := decodeDefinitions(t, doc, 0)
	if got[0].ImageFilter != "original" || got[0].PredefinedImage != nil {
		t.Errorf("entry 0 = %+v, want defaults", got[0])
	}
	if got[1].ImageFilter != "bw" || got[1].PredefinedImage != nil {
		t.Errorf("entry 1 = %+v, want bw filter and no image", got[1])
	}
}

func TestMergeActionsDoNotShareLists(t *testing.T) {
	src := `{"actions": {"collage": [
		{"processing": {"merge_definition": [{"image_filter": "a"}, {"image_filter": "b"}]}},
		{"processing": {"merge_definition": [{"image_filter": "c"}, {"image_filter": "d"}]}}
	]}}`
	doc, err := Parse([]byte(src), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Merge(doc, twoSlots(), "canvas_front.png"); err != nil {
		t.Fatal(err)
	}
	first := decodeDefinitions(t, doc, 0)
	second := decodeDefinitions(t, doc, 1)
	if first[0].ImageFilter != "a" || first[1].ImageFilter != "b" {
		t.Errorf("first action filters = %q, %q", first[0].ImageFilter, first[1].ImageFilter)
	}
	if second[0].ImageFilter != "c" || second[1].ImageFilter != "d" {
		t.Errorf("second action filters = %q, %q", second[0].ImageFilter, second[1].ImageFilter)
	}
}

func TestMergeSharedProcessingCountedOnce(t *testing.T) {
	src := `shared: &booth
  merge_definition:
    - image_filter: sepia
    - image_filter: bw
actions:
  collage:
    - name: front
      processing: *booth
    - name: back
      processing: *booth
`
	doc, err := Parse([]byte(src), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	stats, err := Merge(doc, twoSlots(), "canvas_front.png")
	if err != nil {
		t.Fatal(err)
	}
	if want := (MergeStats{UpdatedActions: 1, CanvasActions: 1}); stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
	for i := 0; i < 2; i++ {
		got := decodeDefinitions(t, doc, i)
		if got[0].ImageFilter != "sepia" || got[1].ImageFilter != "bw" {
			t.Errorf("action %d filters = %q, %q", i, got[0].ImageFilter, got[1].ImageFilter)
		}
	}

	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "*booth") {
		t.Errorf("alias lost on encode:\n%s", buf.String())
	}
}

func TestMergeCanvasSettings(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	const canvas = "../shared/canvas_front.png"
	if _, err := Merge(doc, twoSlots(), canvas); err != nil {
		t.Fatal(err)
	}

	collage := lookup(lookup(doc.Root(), "actions"), "collage")
	for i, action := range collage.Content {
		processing := lookup(action, "processing")
		if processing == nil {
			continue
		}
		if v := lookup(processing, "canvas_img_front_enable"); v == nil || v.Value != "true" {
			t.Errorf("action %d canvas_img_front_enable = %v, want true", i, v)
		}
		if v := lookup(processing, "canvas_img_front_file"); v == nil || v.Value != canvas {
			t.Errorf("action %d canvas_img_front_file = %v, want %q", i, v, canvas)
		}
	}
	if lookup(collage.Content[3], "processing") != nil {
		t.Error("action without processing gained a processing record")
	}
}

func TestMergeRejectsMalformedDefinitions(t *testing.T) {
	tests := map[string]string{
		"not a list":      `{"actions": {"collage": [{"processing": {"merge_definition": "slots"}}]}}`,
		"entry not a map": `{"actions": {"collage": [{"processing": {"merge_definition": [1, 2]}}]}}`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse([]byte(src), FormatJSON)
			if err != nil {
				t.Fatal(err)
			}
			var before bytes.Buffer
			_ = doc.Encode(&before)

			_, err = Merge(doc, twoSlots(), "canvas_front.png")
			if !errors.Is(err, errors.ErrCodeConfigMerge) {
				t.Fatalf("Merge() error = %v, want CONFIG_MERGE", err)
			}
			var after bytes.Buffer
			_ = doc.Encode(&after)
			if before.String() != after.String() {
				t.Error("failed Merge() modified the document")
			}
		})
	}
}

func TestMergeIgnoresUnexpectedShapes(t *testing.T) {
	for _, src := range []string{
		`[]`,
		`{"actions": []}`,
		`{"actions": {"collage": {"processing": {}}}}`,
		`{"actions": {"collage": ["x", {"processing": "y"}]}}`,
	} {
		doc, err := Parse([]byte(src), FormatJSON)
		if err != nil {
			t.Fatal(err)
		}
		stats, err := Merge(doc, twoSlots(), "canvas_front.png")
		if err != nil {
			t.Errorf("Merge(%s) error = %v", src, err)
		}
		if stats != (MergeStats{}) {
			t.Errorf("Merge(%s) stats = %+v, want zero", src, stats)
		}
	}
}

func TestMergeFileSkips(t *testing.T) {
	result, err := MergeFile("", twoSlots(), "canvas_front.png")
	if err != nil || !result.Skipped || result.Reason != ReasonNoConfig {
		t.Errorf("MergeFile(\"\") = %+v, %v", result, err)
	}

	dir := t.TempDir()
	result, err = MergeFile(filepath.Join(dir, "missing.json"), twoSlots(), "canvas_front.png")
	if err != nil || !result.Skipped || result.Reason != ReasonConfigNotFound {
		t.Errorf("MergeFile(missing) = %+v, %v", result, err)
	}

	result, err = MergeFile(dir, twoSlots(), "canvas_front.png")
	if err != nil || !result.Skipped || result.Reason != ReasonConfigNotFound {
		t.Errorf("MergeFile(dir) = %+v, %v", result, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("skipped merge wrote files: %v", entries)
	}
}

func TestMergeFileLeavesOriginalUntouched(t *testing.T) {
	path := copyFixture(t, "config.json")
	before, _ := os.ReadFile(path)

	result, err := MergeFile(path, twoSlots(), "canvas_front.png")
	if err != nil {
		t.Fatalf("MergeFile() error = %v", err)
	}
	if result.OutputPath != path+".updated" {
		t.Errorf("OutputPath = %q, want %q", result.OutputPath, path+".updated")
	}
	if result.UpdatedActions != 2 || result.Mismatched != 1 {
		t.Errorf("result = %+v", result)
	}

	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Error("original config was modified")
	}
	if _, err := Load(result.OutputPath); err != nil {
		t.Errorf("merged config does not parse: %v", err)
	}
}

func TestMergeFileParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"actions": {`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := MergeFile(path, twoSlots(), "canvas_front.png")
	if !errors.Is(err, errors.ErrCodeConfigParse) {
		t.Fatalf("MergeFile() error = %v, want CONFIG_PARSE", err)
	}
	if _, err := os.Stat(UpdatedPath(path)); !os.IsNotExist(err) {
		t.Error("failed merge wrote an updated config")
	}
}

func TestMergeFileYAML(t *testing.T) {
	path := copyFixture(t, "config.yaml")

	result, err := MergeFile(path, twoSlots(), "canvas_front.png")
	if err != nil {
		t.Fatalf("MergeFile() error = %v", err)
	}
	doc, err := Load(result.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatYAML {
		t.Errorf("Format = %q, want yaml", doc.Format)
	}
	got := decodeDefinitions(t, doc, 0)
	if got[0].ImageFilter != "sepia" || got[1].PredefinedImage == nil || *got[1].PredefinedImage != "userdata/logo.png" {
		t.Errorf("carried definitions = %+v", got)
	}

	data, _ := os.ReadFile(result.OutputPath)
	if !strings.Contains(string(data), "canvas_img_front_file: canvas_front.png") {
		t.Errorf("canvas settings missing from YAML output:\n%s", data)
	}
	if strings.Index(string(data), "canvas_width") > strings.Index(string(data), "merge_definition") {
		t.Errorf("key order not preserved:\n%s", data)
	}
}

func TestMergeFileRemergesUpdatedYAML(t *testing.T) {
	path := copyFixture(t, "config.yaml")

	first, err := MergeFile(path, twoSlots(), "canvas_front.png")
	if err != nil {
		t.Fatalf("MergeFile() error = %v", err)
	}
	second, err := MergeFile(first.OutputPath, twoSlots(), "canvas_back.png")
	if err != nil {
		t.Fatalf("MergeFile(%s) error = %v", first.OutputPath, err)
	}
	if want := path + UpdatedSuffix + UpdatedSuffix; second.OutputPath != want {
		t.Errorf("OutputPath = %q, want %q", second.OutputPath, want)
	}

	doc, err := Load(second.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatYAML {
		t.Errorf("Format = %q, want yaml", doc.Format)
	}
	got := decodeDefinitions(t, doc, 0)
	if len(got) != 2 || got[0].ImageFilter != "sepia" || got[1].PredefinedImage == nil {
		t.Errorf("re-merged definitions = %+v", got)
	}
	data, _ := os.ReadFile(second.OutputPath)
	if !strings.Contains(string(data), "canvas_img_front_file: canvas_back.png") {
		t.Errorf("canvas settings not updated on re-merge:\n%s", data)
	}
}
