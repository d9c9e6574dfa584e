package cli

import (
	"strings"

	"github.com/haivivi/muse/pkg/buffer"
)

// LogWriter is an io.Writer that retains the most recent log lines for
// display in a Panel section. The demo command points slog at one so
// agent diagnostics land inside the status panel instead of
// interleaving with report output.
type LogWriter struct {
	buf *buffer.Ring[string]
}

// NewLogWriter returns a writer retaining the last maxLines lines.
func NewLogWriter(maxLines int) *LogWriter {
	return &LogWriter{buf: buffer.NewRing[string](maxLines)}
}

// Write splits p into lines and appends each to the ring. A chunk from
// slog normally carries one record with a trailing newline.
func (w *LogWriter) Write(p []byte) (n int, err error) {
	text := strings.TrimRight(string(p), "\n")
	for _, line := range strings.Split(text, "\n") {
		w.buf.Add(line)
	}
	return len(p), nil
}

// Lines returns the retained lines, oldest first.
func (w *LogWriter) Lines() []string {
	return w.buf.Items()
}
