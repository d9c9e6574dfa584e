package muse

import (
	"slices"
	"strings"

	"github.com/haivivi/muse/pkg/jsontime"
)

// State is a snapshot of everything an agent accumulates at runtime. It
// serializes with msgpack and JSON so a host process can persist
// continuity between runs; the agent itself never touches disk.
type State struct {
	// SavedAt is the snapshot time, carried as Unix milliseconds.
	SavedAt jsontime.Milli `json:"saved_at" msgpack:"saved_at"`

	// History is the reasoning history, oldest first.
	History []Step `json:"history" msgpack:"history"`

	// Patterns are the learned patterns, sorted by key.
	Patterns []Pattern `json:"patterns" msgpack:"patterns"`

	// Tools are the registered tools with their usage statistics, in
	// registration order.
	Tools []Tool `json:"tools" msgpack:"tools"`
}

// Snapshot captures the agent state for persistence. The snapshot owns
// its slices; later agent activity does not leak into it.
func (a *Agent) Snapshot() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return State{
		SavedAt:  jsontime.Milli(a.now()),
		History:  copySteps(a.history),
		Patterns: a.patternList(),
		Tools:    a.toolList(),
	}
}

// Restore merges a snapshot back into the agent. History and patterns
// replace the current collections; tools merge by name, so built-ins
// added after the snapshot was taken survive a restore.
func (a *Agent) Restore(st State) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = copySteps(st.History)
	a.patterns = make(map[string]*Pattern, len(st.Patterns))
	for _, p := range st.Patterns {
		if p.Key == "" {
			continue
		}
		cp := copyPattern(p)
		a.patterns[p.Key] = &cp
	}
	for _, t := range st.Tools {
		a.register(copyTool(t))
	}
}

// History returns a copy of the reasoning history, oldest first.
func (a *Agent) History() []Step {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copySteps(a.history)
}

// Patterns returns a copy of the learned patterns, sorted by key.
func (a *Agent) Patterns() []Pattern {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.patternList()
}

// Tools returns a copy of the registered tools in registration order.
func (a *Agent) Tools() []Tool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.toolList()
}

// patternList copies the pattern map into key order. Callers must hold
// a.mu.
func (a *Agent) patternList() []Pattern {
	out := make([]Pattern, 0, len(a.patterns))
	for _, p := range a.patterns {
		out = append(out, copyPattern(*p))
	}
	slices.SortFunc(out, func(x, y Pattern) int {
		return strings.Compare(x.Key, y.Key)
	})
	return out
}

// toolList copies the tool slice. Callers must hold a.mu.
func (a *Agent) toolList() []Tool {
	out := make([]Tool, 0, len(a.tools))
	for _, t := range a.tools {
		out = append(out, copyTool(*t))
	}
	return out
}

func copySteps(steps []Step) []Step {
	out := slices.Clone(steps)
	for i := range out {
		out[i].DependsOn = slices.Clone(out[i].DependsOn)
	}
	return out
}

func copyPattern(p Pattern) Pattern {
	p.Observations = slices.Clone(p.Observations)
	if p.Profile != nil {
		prof := *p.Profile
		prof.SuccessfulTools = slices.Clone(prof.SuccessfulTools)
		p.Profile = &prof
	}
	return p
}

// copyTool copies a tool. The schema pointer is shared; schemas are
// treated as immutable once registered.
func copyTool(t Tool) Tool {
	t.Examples = slices.Clone(t.Examples)
	return t
}
