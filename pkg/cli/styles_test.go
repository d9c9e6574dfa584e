package cli

import (
	"strings"
	"testing"
)

func TestHighlightPreservesContent(t *testing.T) {
	report := strings.Join([]string{
		"# 🧠 Enhanced Thinking Response",
		"",
		"## 📝 Summary",
		"Direct factual answer expected.",
		"   *Confidence: 85.0%*",
		"---",
		"- **Time:** 2025-06-15 10:30:00",
	}, "\n")

	st := NewStyles(DefaultTheme)
	out := Highlight(report, st)

	outLines := strings.Split(out, "\n")
	inLines := strings.Split(report, "\n")
	if len(outLines) != len(inLines) {
		t.Fatalf("line count changed: got %d, want %d", len(outLines), len(inLines))
	}
	for i, in := range inLines {
		if !strings.Contains(outLines[i], in) {
			t.Errorf("line %d: %q does not contain original %q", i, outLines[i], in)
		}
	}
}
