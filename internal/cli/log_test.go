package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, LogInfo)
	logger.Info("Opened document", "path", "template.psd", "layers", 12)

	line := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(line) {
		t.Errorf("missing HH:MM:SS.ms timestamp: %q", line)
	}
	for _, want := range []string{"Opened document", "path=template.psd", "layers=12"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line missing %q: %q", want, line)
		}
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("stage start", "stage", "locate")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("stage start", "stage", "locate")
	if !strings.Contains(buf.String(), "stage=locate") {
		t.Errorf("debug line missing after -v: %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))
	prog.start = prog.start.Add(-1500 * time.Millisecond)

	prog.done("Extraction finished")

	if !regexp.MustCompile(`Extraction finished \(1\.5\d*s\)`).MatchString(buf.String()) {
		t.Errorf("progress line = %q, want message with elapsed time", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() without a logger should fall back to log.Default()")
	}

	c := New(&bytes.Buffer{}, LogInfo)
	ctx := withLogger(context.Background(), c.Logger)
	if loggerFromContext(ctx) != c.Logger {
		t.Error("loggerFromContext() did not return the attached logger")
	}
}
