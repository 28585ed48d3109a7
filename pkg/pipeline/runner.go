package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/psdlayout/pkg/errors"
	"github.com/matzehuels/psdlayout/pkg/layer"
	"github.com/matzehuels/psdlayout/pkg/observability"
)

// Runner executes the pipeline.
//
// The Runner is stateless except for the logger and opener - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Logger *log.Logger

	// Open decodes the document at a path. Defaults to layer.Open with
	// pixel data.
	Open func(path string) (*layer.Document, error)
}

// NewRunner creates a runner that logs to logger.
// If logger is nil, the default charmbracelet logger is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute opens opts.PSDPath and runs the complete pipeline on it.
//
// Fatal failures are returned wrapped with the stage name ("locate: ...")
// and keep their error code. Non-fatal problems are collected in
// Result.Warnings. The context is checked between stages; a cancelled
// context stops the run before the next stage starts and outputs already
// written stay on disk.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	run := r.begin(ctx, opts, opts.PSDPath)
	run.emit(StageStart, "Starting...", 0)

	var doc *layer.Document
	run.emit(StageOpen, fmt.Sprintf("Opening document %s...", opts.PSDPath), 10)
	d, err := run.stage(StageOpen, func() error {
		var err error
		doc, err = r.open(opts.PSDPath)
		return err
	})
	if err != nil {
		return run.fail(err)
	}
	run.result.Stats.OpenTime = d
	opts.Logger.Info("opened document",
		"path", opts.PSDPath,
		"width", doc.Bounds.Dx(),
		"height", doc.Bounds.Dy(),
		"duration", d)

	return run.process(doc)
}

// ExecuteDocument runs every stage after open on an already decoded
// document. opts.PSDPath is not required. doc is consumed by the render
// stage and cannot be executed twice.
func (r *Runner) ExecuteDocument(ctx context.Context, doc *layer.Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	if err := opts.validateOutputs(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	run := r.begin(ctx, opts, opts.PSDPath)
	run.emit(StageStart, "Starting...", 0)
	return run.process(doc)
}

func (r *Runner) open(path string) (*layer.Document, error) {
	if r.Open != nil {
		return r.Open(path)
	}
	return layer.Open(path, layer.DecodeOptions{})
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// =============================================================================
// Run state
// =============================================================================

// run carries the state of one Execute call through the stages.
type run struct {
	ctx    context.Context
	opts   Options
	log    *log.Logger
	start  time.Time
	result *Result
}

func (r *Runner) begin(ctx context.Context, opts Options, document string) *run {
	id := uuid.NewString()
	observability.Pipeline().OnRunStart(ctx, id, document)
	return &run{
		ctx:   ctx,
		opts:  opts,
		log:   opts.Logger.With("run", id[:8]),
		start: time.Now(),
		result: &Result{
			RunID:       id,
			OutputImage: opts.OutputImage,
			OutputJSON:  opts.OutputJSON,
		},
	}
}

// emit reports a status event to the caller's callback, if any.
func (r *run) emit(stage Stage, message string, percent int) {
	r.log.Debug(message, "stage", stage, "percent", percent)
	if r.opts.OnStatus != nil {
		r.opts.OnStatus(Status{Stage: stage, Message: message, Percent: percent})
	}
}

// stage runs fn as the named stage after checking for cancellation.
func (r *run) stage(s Stage, fn func() error) (time.Duration, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	hooks := observability.Pipeline()
	hooks.OnStageStart(r.ctx, string(s))
	start := time.Now()
	err := fn()
	d := time.Since(start)
	hooks.OnStageComplete(r.ctx, string(s), d, err)
	if err != nil {
		return d, fmt.Errorf("%s: %w", s, err)
	}
	return d, nil
}

// warn records a non-fatal problem.
func (r *run) warn(s Stage, err error) {
	r.log.Warn(errors.UserMessage(err), "stage", s, "code", errors.GetCode(err))
	observability.Pipeline().OnWarning(r.ctx, string(s), err)
	r.result.Warnings = append(r.result.Warnings, err)
}

// fail ends the run with a fatal error.
func (r *run) fail(err error) (*Result, error) {
	observability.Pipeline().OnRunComplete(r.ctx, r.result.RunID, time.Since(r.start), err)
	return nil, err
}

// succeed ends the run successfully.
func (r *run) succeed() (*Result, error) {
	r.emit(StageDone, "Process completed successfully!", 100)
	observability.Pipeline().OnRunComplete(r.ctx, r.result.RunID, time.Since(r.start), nil)
	return r.result, nil
}
