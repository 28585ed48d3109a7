package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/psdlayout/pkg/collage"
	"github.com/matzehuels/psdlayout/pkg/errors"
	"github.com/matzehuels/psdlayout/pkg/layer"
	"github.com/matzehuels/psdlayout/pkg/observability"
	"github.com/matzehuels/psdlayout/pkg/placeholder"
)

// Output kinds reported to observability.OutputHooks.
const (
	outputPositions = "positions"
	outputConfig    = "config"
	outputImage     = "image"
)

// process runs locate, extract, positions, merge and render on doc.
func (r *run) process(doc *layer.Document) (*Result, error) {
	opts := r.opts
	res := r.result

	// Stage: locate
	var group *layer.Node
	r.emit(StageLocate, "Scanning document structure...", 20)
	_, err := r.stage(StageLocate, func() error {
		res.Groups = layer.GroupNames(doc.Root)
		var err error
		group, err = layer.FindGroup(doc.Root, opts.GroupName)
		return err
	})
	if err != nil {
		return r.fail(err)
	}
	r.log.Debug("located group", "group", opts.GroupName, "groups", len(res.Groups))

	// Stage: extract
	r.emit(StageExtract, fmt.Sprintf("Found group: %s. Extracting positions...", opts.GroupName), 30)
	d, err := r.stage(StageExtract, func() error {
		res.Placeholders = placeholder.Extract(group)
		return nil
	})
	if err != nil {
		return r.fail(err)
	}
	res.Stats.ExtractTime = d
	if len(res.Placeholders) == 0 {
		r.warn(StageExtract, errors.New(errors.ErrCodeEmptyExtraction,
			"no visible placeholders with bounds in group %q", opts.GroupName))
		r.emit(StageExtract, "Warning: No positions found", 40)
	} else {
		r.log.Info("extracted placeholders", "count", len(res.Placeholders), "duration", d)
		r.emit(StageExtract, fmt.Sprintf("Found %d image positions", len(res.Placeholders)), 40)
	}

	// Stage: positions
	_, err = r.stage(StagePositions, func() error {
		return writePositions(r, res.Placeholders, opts.OutputJSON)
	})
	if err != nil {
		return r.fail(err)
	}
	r.log.Info("wrote positions", "path", opts.OutputJSON)

	// Stage: merge
	r.emit(StageMerge, "Processing config...", 50)
	d, err = r.stage(StageMerge, func() error {
		merged, err := collage.MergeFile(opts.ConfigPath, res.Placeholders, opts.OutputImage)
		if err != nil {
			return err
		}
		res.Merge = merged
		return nil
	})
	res.Stats.MergeTime = d
	switch {
	case err != nil && r.ctx.Err() != nil:
		return r.fail(err)
	case err != nil:
		r.warn(StageMerge, err)
		r.emit(StageMerge, fmt.Sprintf("Error updating config: %s", errors.UserMessage(err)), 60)
	case res.Merge.Skipped:
		r.logSkip(res.Merge)
	default:
		r.reportMerge(res.Merge)
	}

	// Stage: render
	r.emit(StageRender, "Rendering background image...", 70)
	d, err = r.stage(StageRender, func() error {
		return render(r, doc, group, opts.OutputImage)
	})
	if err != nil {
		return r.fail(err)
	}
	res.Stats.RenderTime = d
	r.log.Info("rendered background", "path", opts.OutputImage, "duration", d)

	return r.succeed()
}

func (r *run) logSkip(m *collage.MergeResult) {
	switch m.Reason {
	case collage.ReasonConfigNotFound:
		r.log.Warn("config not found, skipping config update", "path", m.ConfigPath)
		r.emit(StageMerge, "Config file not found, skipping config update", 60)
	default:
		r.log.Info("no config specified, skipping config update")
		r.emit(StageMerge, "No config file specified, skipping config update", 60)
	}
}

func (r *run) reportMerge(m *collage.MergeResult) {
	r.log.Info("updated config",
		"actions", m.UpdatedActions,
		"mismatched", m.Mismatched,
		"path", m.OutputPath)
	if m.Mismatched > 0 {
		r.log.Warn("placeholder count changed; image filters were reset",
			"actions", m.Mismatched)
	}
	if info, err := os.Stat(m.OutputPath); err == nil {
		observability.Output().OnWrite(r.ctx, outputConfig, m.OutputPath, info.Size())
	}
	r.emit(StageMerge, fmt.Sprintf("Updated %d collage actions in config", m.UpdatedActions), 60)
}

// writePositions writes the positions file, creating its directory.
func writePositions(r *run, list []placeholder.Placeholder, path string) error {
	err := ensureDir(path)
	if err == nil {
		err = placeholder.ExportJSON(list, path)
	}
	if err != nil {
		observability.Output().OnWriteError(r.ctx, outputPositions, path, err)
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "write positions file")
	}
	if info, err := os.Stat(path); err == nil {
		observability.Output().OnWrite(r.ctx, outputPositions, path, info.Size())
	}
	return nil
}

// render hides group, flattens doc and writes the background image.
func render(r *run, doc *layer.Document, group *layer.Node, path string) error {
	canvas, err := doc.Flatten(group)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "flatten document")
	}
	if err := ensureDir(path); err != nil {
		return errors.Wrap(errors.ErrCodeRender, err, "write background image")
	}
	if err := layer.WriteImage(path, canvas); err != nil {
		observability.Output().OnWriteError(r.ctx, outputImage, path, err)
		return errors.Wrap(errors.ErrCodeRender, err, "write background image")
	}
	if info, err := os.Stat(path); err == nil {
		observability.Output().OnWrite(r.ctx, outputImage, path, info.Size())
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}
