package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on stderr while a document is read.
// It stops when Stop is called or its context ends.
type Spinner struct {
	w       io.Writer
	message string
	start   time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	mu    sync.Mutex
	width int // widest line written so far
	once  sync.Once
}

// newDocumentSpinner creates a spinner announcing that the document at path
// is being read, with its size when the file can be stat'ed.
func newDocumentSpinner(ctx context.Context, path string) *Spinner {
	msg := "Reading " + filepath.Base(path)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		msg += " (" + formatSize(info.Size()) + ")"
	}
	return newSpinner(ctx, os.Stderr, msg)
}

func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		message: message,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.start = time.Now()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	elapsed := time.Since(s.start).Truncate(100 * time.Millisecond)
	line := fmt.Sprintf("%s %s %s", frame, s.message, elapsed)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(line))
	fmt.Fprintf(s.w, "\r%s %s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message), StyleDim.Render(elapsed.String()))
}

// Stop ends the animation and clears the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		if !s.start.IsZero() {
			<-s.stopped
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// formatSize renders a byte count with a binary unit, e.g. "12.4 MiB".
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
