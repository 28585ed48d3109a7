// Package pipeline provides the core extraction pipeline for psdlayout.
//
// This package implements the complete open → locate → extract → merge →
// render pipeline used by every CLI command. By centralizing this logic the
// plain and the interactive front ends report the same stages, warnings and
// errors.
//
// # Architecture
//
// The pipeline consists of six stages:
//
//  1. Open: Decode the layered document
//  2. Locate: Find the placeholder group by name
//  3. Extract: Turn the group's visible leaves into placeholders
//  4. Positions: Write the placeholders to the positions file
//  5. Merge: Update the collage configuration, if one was given
//  6. Render: Hide the placeholder group and write the background image
//
// Opening, locating, writing positions and rendering are fatal on failure.
// An empty extraction and any merge problem are collected as warnings.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    PSDPath:    "template.psd",
//	    ConfigPath: "config.json",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(result.Placeholders), "placeholders")
package pipeline

import (
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/psdlayout/pkg/collage"
	"github.com/matzehuels/psdlayout/pkg/errors"
	"github.com/matzehuels/psdlayout/pkg/placeholder"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and settings
// =============================================================================

const (
	// DefaultGroup is the layer group that holds the placeholders.
	DefaultGroup = "photobooth_images"

	// DefaultOutputImage is the background image written by the render stage.
	DefaultOutputImage = "canvas_front.png"

	// DefaultPositionsFile is the positions file name, placed next to the
	// output image unless OutputJSON is set.
	DefaultPositionsFile = "merge_definitions.json"
)

// =============================================================================
// Stages and Status
// =============================================================================

// Stage names a pipeline step.
type Stage string

const (
	StageStart     Stage = "start"
	StageOpen      Stage = "open"
	StageLocate    Stage = "locate"
	StageExtract   Stage = "extract"
	StagePositions Stage = "positions"
	StageMerge     Stage = "merge"
	StageRender    Stage = "render"
	StageDone      Stage = "done"
)

// Status is a progress event. Events are emitted in stage order and Percent
// never decreases within a run.
type Status struct {
	Stage   Stage
	Message string
	Percent int
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// PSDPath is the layered document to read. Required.
	PSDPath string

	// ConfigPath is the collage configuration to merge into. Optional; when
	// empty or missing the merge is skipped.
	ConfigPath string

	// GroupName is the layer group holding the placeholders.
	GroupName string

	// OutputImage is the background image path. It is also written verbatim
	// into the configuration as canvas_img_front_file.
	OutputImage string

	// OutputJSON is the positions file path. Defaults to
	// merge_definitions.json in OutputImage's directory.
	OutputJSON string

	// Runtime options
	Logger   *log.Logger
	OnStatus func(Status)

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and hooks.
	RunID string

	// Groups lists every group in the document, in traversal order.
	Groups []string

	// Placeholders is the extracted list, in traversal order. Never nil.
	Placeholders []placeholder.Placeholder

	// Merge describes the configuration merge. Nil when the merge failed.
	Merge *collage.MergeResult

	// Warnings holds the non-fatal problems of the run, in the order they
	// occurred.
	Warnings []error

	// OutputImage and OutputJSON are the files that were written.
	OutputImage string
	OutputJSON  string

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	OpenTime    time.Duration
	ExtractTime time.Duration
	MergeTime   time.Duration
	RenderTime  time.Duration
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once. Every failure is an INVALID_INPUT error.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.PSDPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "document path is required")
	}
	if err := o.validateOutputs(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// validateOutputs applies the defaults shared by Execute and
// ExecuteDocument and validates everything but the document path.
func (o *Options) validateOutputs() error {
	if o.GroupName == "" {
		o.GroupName = DefaultGroup
	}
	if o.OutputImage == "" {
		o.OutputImage = DefaultOutputImage
	}
	if o.OutputJSON == "" {
		o.OutputJSON = PositionsPath(o.OutputImage)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := errors.ValidateGroupName(o.GroupName); err != nil {
		return err
	}
	if err := errors.ValidateOutputPath("output image", o.OutputImage); err != nil {
		return err
	}
	if err := errors.ValidateOutputPath("positions file", o.OutputJSON); err != nil {
		return err
	}
	if filepath.Clean(o.OutputImage) == filepath.Clean(o.OutputJSON) {
		return errors.New(errors.ErrCodeInvalidInput, "output image and positions file must differ")
	}
	return nil
}

// PositionsPath returns the default positions file for an output image.
func PositionsPath(outputImage string) string {
	return filepath.Join(filepath.Dir(outputImage), DefaultPositionsFile)
}
