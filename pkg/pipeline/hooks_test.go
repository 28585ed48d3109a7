package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/psdlayout/pkg/observability"
)

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopOutputHooks

	mu       sync.Mutex
	stages   []string
	warnings []string
	writes   []string
	finished bool
}

func (h *recordingHooks) OnStageStart(_ context.Context, stage string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages = append(h.stages, stage)
}

func (h *recordingHooks) OnWarning(_ context.Context, stage string, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.warnings = append(h.warnings, stage)
}

func (h *recordingHooks) OnWrite(_ context.Context, kind, _ string, _ int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writes = append(h.writes, kind)
}

func (h *recordingHooks) OnRunComplete(context.Context, string, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finished = true
}

func TestExecuteDocumentReportsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetOutputHooks(hooks)
	defer observability.Reset()

	dir := t.TempDir()
	opts := outputs(dir)
	opts.ConfigPath = filepath.Join(dir, "missing.json")
	if _, err := NewRunner(nil).ExecuteDocument(context.Background(), boothDocument(), opts); err != nil {
		t.Fatal(err)
	}

	wantStages := []string{"locate", "extract", "positions", "merge", "render"}
	if diff := cmp.Diff(wantStages, hooks.stages); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"positions", "image"}, hooks.writes); diff != "" {
		t.Errorf("writes mismatch (-want +got):\n%s", diff)
	}
	if len(hooks.warnings) != 0 {
		t.Errorf("warnings = %v, want none", hooks.warnings)
	}
	if !hooks.finished {
		t.Error("OnRunComplete not called")
	}
}
