package cli

import (
	"bytes"
	"testing"
)

// captureStdout redirects status output into a buffer for the rest of the
// test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}
