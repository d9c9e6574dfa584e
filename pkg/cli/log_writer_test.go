package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"testing"
)

func TestLogWriterSplitsLines(t *testing.T) {
	w := NewLogWriter(10)

	fmt.Fprintf(w, "one\ntwo\n")
	fmt.Fprintf(w, "three\n")

	got := w.Lines()
	if !slices.Equal(got, []string{"one", "two", "three"}) {
		t.Errorf("got=%v", got)
	}
}

func TestLogWriterKeepsRecent(t *testing.T) {
	w := NewLogWriter(3)

	for i := range 10 {
		fmt.Fprintf(w, "line %d\n", i)
	}

	got := w.Lines()
	if !slices.Equal(got, []string{"line 7", "line 8", "line 9"}) {
		t.Errorf("got=%v", got)
	}
}

func TestLogWriterAsSlogTarget(t *testing.T) {
	w := NewLogWriter(20)
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Debug("agent ready", "tools", 3)
	logger.Warn("state missing")

	lines := w.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines=%d", len(lines))
	}
	if !strings.Contains(lines[0], "agent ready") {
		t.Errorf("lines[0]=%q", lines[0])
	}
	if !strings.Contains(lines[1], "state missing") {
		t.Errorf("lines[1]=%q", lines[1])
	}
}
