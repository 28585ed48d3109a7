package cli

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/psdlayout/pkg/errors"
	"github.com/matzehuels/psdlayout/pkg/observability"
)

// LogHooks logs pipeline and output events at debug level. It is
// registered by main when --verbose is set.
type LogHooks struct {
	logger *log.Logger
}

var (
	_ observability.PipelineHooks = (*LogHooks)(nil)
	_ observability.OutputHooks   = (*LogHooks)(nil)
)

// NewLogHooks returns hooks that write to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) OnRunStart(_ context.Context, runID, document string) {
	h.logger.Debug("run start", "run", runID, "document", document)
}

func (h *LogHooks) OnRunComplete(_ context.Context, runID string, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("run failed", "run", runID, "duration", d.Round(time.Millisecond), "code", errors.GetCode(err))
		return
	}
	h.logger.Debug("run complete", "run", runID, "duration", d.Round(time.Millisecond))
}

func (h *LogHooks) OnStageStart(_ context.Context, stage string) {
	h.logger.Debug("stage start", "stage", stage)
}

func (h *LogHooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	h.logger.Debug("stage complete", "stage", stage, "duration", d.Round(time.Millisecond), "ok", err == nil)
}

func (h *LogHooks) OnWarning(_ context.Context, stage string, err error) {
	h.logger.Debug("warning", "stage", stage, "code", errors.GetCode(err))
}

func (h *LogHooks) OnWrite(_ context.Context, kind, path string, size int64) {
	h.logger.Debug("wrote", "kind", kind, "path", path, "size", formatSize(size))
}

func (h *LogHooks) OnWriteError(_ context.Context, kind, path string, err error) {
	h.logger.Debug("write failed", "kind", kind, "path", path, "err", err)
}

// Exit statuses returned by ExitCode.
const (
	ExitFailure     = 1
	ExitUsage       = 2   // bad arguments or a group the document lacks
	ExitInterrupted = 130 // SIGINT, shell convention
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, errors.ErrCodeInvalidInput), errors.Is(err, errors.ErrCodeGroupNotFound):
		return ExitUsage
	default:
		return ExitFailure
	}
}
