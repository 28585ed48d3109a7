package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/psdlayout/pkg/errors"
)

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(newLogger(&buf, LogDebug))
	ctx := context.Background()

	h.OnRunStart(ctx, "run-1", "template.psd")
	h.OnStageStart(ctx, "render")
	h.OnStageComplete(ctx, "render", 1500*time.Microsecond, nil)
	h.OnWarning(ctx, "merge", errors.New(errors.ErrCodeConfigParse, "bad config"))
	h.OnWrite(ctx, "image", "canvas_front.png", 2048)
	h.OnRunComplete(ctx, "run-1", time.Second, nil)

	out := buf.String()
	for _, want := range []string{
		"hooks", "run=run-1", "document=template.psd",
		"stage=render", "duration=2ms",
		"code=CONFIG_PARSE",
		"kind=image", "path=canvas_front.png", `size="2.0 KiB"`,
		"run complete",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("hook log missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksSilentAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(newLogger(&buf, LogInfo))
	h.OnStageStart(context.Background(), "open")
	if buf.Len() != 0 {
		t.Errorf("hooks logged at info level: %q", buf.String())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"interrupted", fmt.Errorf("open: %w", context.Canceled), ExitInterrupted},
		{"bad input", errors.New(errors.ErrCodeInvalidInput, "group name is required"), ExitUsage},
		{"unknown group", fmt.Errorf("locate: %w", errors.Wrap(errors.ErrCodeGroupNotFound,
			&errors.GroupNotFoundError{Name: "x"}, "locate group")), ExitUsage},
		{"render", fmt.Errorf("render: %w", errors.New(errors.ErrCodeRender, "composite")), ExitFailure},
		{"plain", fmt.Errorf("boom"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
