package muse

import (
	"context"
	"math"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, Config{})
	if _, err := a.Think(ctx, "What broke the deploy"); err != nil {
		t.Fatalf("Think: %v", err)
	}
	if _, err := a.AnalyzeTask(ctx, "search the web", nil); err != nil {
		t.Fatalf("AnalyzeTask: %v", err)
	}

	snap := a.Snapshot()
	if snap.SavedAt.UnixMilli() != testTime.UnixMilli() {
		t.Errorf("SavedAt = %d, want %d", snap.SavedAt.UnixMilli(), testTime.UnixMilli())
	}

	raw, err := msgpack.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded State
	if err := msgpack.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	b := newTestAgent(t, Config{})
	b.Restore(decoded)

	if got, want := len(b.History()), len(a.History()); got != want {
		t.Fatalf("restored history = %d steps, want %d", got, want)
	}
	first, orig := b.History()[0], a.History()[0]
	if first.ID != orig.ID || first.Content != orig.Content ||
		first.Timestamp.UnixMilli() != orig.Timestamp.UnixMilli() {
		t.Errorf("restored step = %+v, want %+v", first, orig)
	}
	if got, want := len(b.Patterns()), len(a.Patterns()); got != want {
		t.Fatalf("restored patterns = %d, want %d", got, want)
	}
	ws := b.Tools()[0]
	if ws.Name != ToolWebSearch || math.Abs(ws.Effectiveness-0.1) > 1e-9 {
		t.Errorf("restored web_search = %+v, want effectiveness 0.1", ws)
	}
	if ws.Schema == nil {
		t.Error("restored web_search lost its schema")
	}

	if b.Info() != a.Info() {
		t.Errorf("restored agent reports differently:\n%s\n---\n%s", b.Info(), a.Info())
	}
}

func TestSnapshotIsolation(t *testing.T) {
	a := newTestAgent(t, Config{})
	if _, err := a.Think(context.Background(), "Check the cache"); err != nil {
		t.Fatalf("Think: %v", err)
	}

	snap := a.Snapshot()
	snap.History[0].Content = "tampered"
	snap.Tools[0].Effectiveness = 0.9
	for i := range snap.Patterns {
		snap.Patterns[i].Observations[0].StepsTaken = 99
	}

	if got := a.History()[0].Content; got == "tampered" {
		t.Error("snapshot shares history with the agent")
	}
	if got := a.Tools()[0].Effectiveness; got == 0.9 {
		t.Error("snapshot shares tools with the agent")
	}
	if got := a.Patterns()[0].Observations[0].StepsTaken; got == 99 {
		t.Error("snapshot shares observations with the agent")
	}
}

func TestRestoreKeepsBuiltins(t *testing.T) {
	a := newTestAgent(t, Config{})
	a.Restore(State{Tools: []Tool{{
		Name:          "legacy_probe",
		Description:   "Poll the legacy status endpoint",
		Effectiveness: 0.4,
	}}})

	tools := a.Tools()
	if len(tools) != 4 {
		t.Fatalf("tools = %d, want builtins plus the restored one", len(tools))
	}
	if tools[3].Name != "legacy_probe" {
		t.Errorf("tools[3] = %q, want legacy_probe", tools[3].Name)
	}
	if tools[0].Name != ToolWebSearch {
		t.Errorf("tools[0] = %q, builtins must keep their slots", tools[0].Name)
	}
}

func TestRestoreReplacesHistory(t *testing.T) {
	a := newTestAgent(t, Config{})
	if _, err := a.Think(context.Background(), "Check the cache"); err != nil {
		t.Fatalf("Think: %v", err)
	}

	a.Restore(State{})
	if got := len(a.History()); got != 0 {
		t.Errorf("history = %d, want 0 after restoring an empty snapshot", got)
	}
	if got := len(a.Patterns()); got != 0 {
		t.Errorf("patterns = %d, want 0 after restoring an empty snapshot", got)
	}
	if got := len(a.Tools()); got != 3 {
		t.Errorf("tools = %d, want builtins untouched", got)
	}
}
