package collage

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/psdlayout/pkg/errors"
	"github.com/matzehuels/psdlayout/pkg/placeholder"
)

// UpdatedSuffix is appended to a configuration path to name the merged copy.
const UpdatedSuffix = ".updated"

// Reasons reported when a merge is skipped.
const (
	ReasonNoConfig       = "no config specified"
	ReasonConfigNotFound = "config not found"
)

// Configuration keys the merger reads and writes.
const (
	keyActions         = "actions"
	keyCollage         = "collage"
	keyProcessing      = "processing"
	keyMergeDefinition = "merge_definition"
	keyImageFilter     = "image_filter"
	keyPredefinedImage = "predefined_image"
	keyCanvasEnable    = "canvas_img_front_enable"
	keyCanvasFile      = "canvas_img_front_file"
)

// MergeStats counts what Merge changed. Actions sharing one processing
// mapping through a YAML alias count once.
type MergeStats struct {
	// UpdatedActions is the number of collage actions whose
	// merge_definition was replaced.
	UpdatedActions int

	// Mismatched is the number of updated actions whose previous
	// merge_definition had a different length, so no image_filter or
	// predefined_image could be carried forward.
	Mismatched int

	// CanvasActions is the number of actions whose canvas front image
	// settings were set.
	CanvasActions int
}

// MergeResult describes the outcome of MergeFile.
type MergeResult struct {
	MergeStats

	// Skipped is true when no configuration was merged; Reason says why.
	Skipped bool
	Reason  string

	ConfigPath string // configuration that was read
	OutputPath string // merged copy that was written
}

// UpdatedPath returns the path the merged copy of configPath is written to.
func UpdatedPath(configPath string) string {
	return configPath + UpdatedSuffix
}

// MergeFile merges placeholders into the configuration at configPath and
// writes the result to UpdatedPath(configPath). canvasFile is stored
// verbatim as every collage action's canvas_img_front_file.
//
// An empty configPath, or one that does not name an existing file, skips
// the merge and returns a result with Skipped set and a nil error. Parse
// failures are CONFIG_PARSE errors; failures while updating or writing are
// CONFIG_MERGE errors. The file at configPath is only ever read.
func MergeFile(configPath string, placeholders []placeholder.Placeholder, canvasFile string) (*MergeResult, error) {
	result := &MergeResult{ConfigPath: configPath}
	if configPath == "" {
		result.Skipped, result.Reason = true, ReasonNoConfig
		return result, nil
	}
	info, err := os.Stat(configPath)
	if os.IsNotExist(err) || (err == nil && info.IsDir()) {
		result.Skipped, result.Reason = true, ReasonConfigNotFound
		return result, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigParse, err, "stat %s", configPath)
	}

	doc, err := Load(configPath)
	if err != nil {
		return nil, err
	}

	stats, err := Merge(doc, placeholders, canvasFile)
	if err != nil {
		return nil, err
	}
	result.MergeStats = stats

	result.OutputPath = UpdatedPath(configPath)
	if err := doc.Save(result.OutputPath); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigMerge, err, "save merged config")
	}
	return result, nil
}

// Merge replaces the merge_definition of every collage action that already
// has one and points every action's canvas front image at canvasFile.
//
// Each updated action receives its own copy of the list. Carry-forward is
// positional and all-or-nothing: with equal lengths, image_filter and
// predefined_image of entry i come from the old entry i (defaults when the
// old entry lacks the key); with different lengths every entry keeps its
// defaults.
//
// Merge validates every action before changing any, so a CONFIG_MERGE
// error leaves doc untouched.
func Merge(doc *Document, placeholders []placeholder.Placeholder, canvasFile string) (MergeStats, error) {
	var stats MergeStats
	actions := collageActions(doc.Root())

	for i, processing := range actions {
		existing := lookup(processing, keyMergeDefinition)
		if existing == nil {
			continue
		}
		if existing.Kind != yaml.SequenceNode {
			return MergeStats{}, errors.New(errors.ErrCodeConfigMerge,
				"collage action %d: merge_definition is not a list", i)
		}
		if len(existing.Content) != len(placeholders) {
			continue
		}
		for j, entry := range existing.Content {
			if resolve(entry).Kind != yaml.MappingNode {
				return MergeStats{}, errors.New(errors.ErrCodeConfigMerge,
					"collage action %d: merge_definition entry %d is not an object", i, j)
			}
		}
	}

	for _, processing := range actions {
		existing := lookup(processing, keyMergeDefinition)
		if existing != nil {
			definitions := definitionsNode(placeholders)
			if len(existing.Content) == len(placeholders) {
				carryForward(definitions, existing)
			} else {
				stats.Mismatched++
			}
			set(processing, keyMergeDefinition, definitions)
			stats.UpdatedActions++
		}

		set(processing, keyCanvasEnable, boolNode(true))
		set(processing, keyCanvasFile, strNode(canvasFile))
		stats.CanvasActions++
	}
	return stats, nil
}

// collageActions returns the processing mapping of every collage action
// that has one, in document order. A mapping shared through a YAML alias
// is returned once. Anything that does not have the expected shape is
// ignored.
func collageActions(root *yaml.Node) []*yaml.Node {
	collage := lookup(lookup(root, keyActions), keyCollage)
	if collage == nil || collage.Kind != yaml.SequenceNode {
		return nil
	}
	var out []*yaml.Node
	seen := make(map[*yaml.Node]bool)
	for _, action := range collage.Content {
		processing := lookup(action, keyProcessing)
		if processing == nil || processing.Kind != yaml.MappingNode || seen[processing] {
			continue
		}
		seen[processing] = true
		out = append(out, processing)
	}
	return out
}

// carryForward copies image_filter and predefined_image from old[i] into
// fresh[i]. Both sequences have the same length. A key missing from the old
// entry keeps the fresh default.
func carryForward(fresh, old *yaml.Node) {
	for i, entry := range old.Content {
		for _, key := range []string{keyImageFilter, keyPredefinedImage} {
			if v := lookup(entry, key); v != nil {
				set(fresh.Content[i], key, clone(v))
			}
		}
	}
}

// definitionsNode converts placeholders into a sequence of mappings with
// the positions-file key order.
func definitionsNode(placeholders []placeholder.Placeholder) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, p := range placeholders {
		predefined := nullNode()
		if p.PredefinedImage != nil {
			predefined = strNode(*p.PredefinedImage)
		}
		entry := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		entry.Content = []*yaml.Node{
			strNode("description"), strNode(p.Description),
			strNode("pos_x"), intNode(p.PosX),
			strNode("pos_y"), intNode(p.PosY),
			strNode("width"), intNode(p.Width),
			strNode("height"), intNode(p.Height),
			strNode("rotate"), intNode(p.Rotate),
			strNode(keyPredefinedImage), predefined,
			strNode(keyImageFilter), strNode(p.ImageFilter),
		}
		seq.Content = append(seq.Content, entry)
	}
	return seq
}
