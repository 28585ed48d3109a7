// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about pipeline stages and the files a run writes.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the core packages stay
// free of observability frameworks and import cycles.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetOutputHooks(&myOutputHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnStageStart(ctx, "extract")
//	// ... extract placeholders ...
//	observability.Pipeline().OnStageComplete(ctx, "extract", duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the extraction pipeline.
type PipelineHooks interface {
	// Run events. runID identifies one execution.
	OnRunStart(ctx context.Context, runID, document string)
	OnRunComplete(ctx context.Context, runID string, duration time.Duration, err error)

	// Stage events: open, locate, extract, positions, merge, render.
	OnStageStart(ctx context.Context, stage string)
	OnStageComplete(ctx context.Context, stage string, duration time.Duration, err error)

	// OnWarning records a non-fatal condition collected during the run.
	OnWarning(ctx context.Context, stage string, err error)
}

// =============================================================================
// Output Hooks
// =============================================================================

// OutputHooks receives events for files written by a run.
type OutputHooks interface {
	// OnWrite records a file written to disk. kind is "positions",
	// "config" or "image".
	OnWrite(ctx context.Context, kind, path string, size int64)

	// OnWriteError records a failed write.
	OnWriteError(ctx context.Context, kind, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRunStart(context.Context, string, string)                    {}
func (NoopPipelineHooks) OnRunComplete(context.Context, string, time.Duration, error)   {}
func (NoopPipelineHooks) OnStageStart(context.Context, string)                          {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, time.Duration, error) {}
func (NoopPipelineHooks) OnWarning(context.Context, string, error)                      {}

// NoopOutputHooks is a no-op implementation of OutputHooks.
type NoopOutputHooks struct{}

func (NoopOutputHooks) OnWrite(context.Context, string, string, int64)      {}
func (NoopOutputHooks) OnWriteError(context.Context, string, string, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	outputHooks   OutputHooks   = NoopOutputHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetOutputHooks registers custom output hooks.
func SetOutputHooks(h OutputHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		outputHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Output returns the registered output hooks.
func Output() OutputHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return outputHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	outputHooks = NoopOutputHooks{}
}
