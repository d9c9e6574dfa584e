package muse

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/haivivi/muse/pkg/catalog"
	"github.com/haivivi/muse/pkg/jsontime"
)

// maxMatchedTools caps how many tools one task analysis selects.
const maxMatchedTools = 5

// toolScore is one tool matched to a task.
type toolScore struct {
	Name        string
	Description string
	Score       float64
}

// AnalyzeTask matches the task against registered and declared tools,
// simulates using every match, and renders the tool usage report.
// Declared tools from a catalog participate in matching only; usage
// statistics are tracked for registered tools alone.
//
// Like the other entry points it degrades instead of failing: a task
// with no matching tools still produces a full report.
func (a *Agent) AnalyzeTask(ctx context.Context, task string, declared []catalog.Decl) (report string, err error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("muse: analyze task: %w", err)
	}
	defer a.guard("Tool discovery and usage failed", &report)

	a.mu.Lock()
	defer a.mu.Unlock()

	matched := a.matchTools(task, declared)
	use := a.useTools(task, matched)
	a.logger.Debug("task analyzed", "matched", len(matched), "new_patterns", use.NewPatterns)
	return renderTaskReport(task, matched, use), nil
}

// matchTools scores tools by keyword overlap between the task text and
// tool descriptions. Registered tools with a proven track record get a
// small bonus, so an often-used tool can surface even without a keyword
// hit. The best five win, ties keep registration order. Callers must
// hold a.mu.
func (a *Agent) matchTools(task string, declared []catalog.Decl) []toolScore {
	keywords := strings.Fields(strings.ToLower(task))

	var matched []toolScore
	for _, t := range a.tools {
		s := keywordHits(keywords, t.Description)
		if t.Effectiveness > 0.5 {
			s += 0.5
		}
		if s > 0 {
			matched = append(matched, toolScore{Name: t.Name, Description: t.Description, Score: s})
		}
	}
	for _, d := range declared {
		if s := keywordHits(keywords, d.Description); s > 0 {
			matched = append(matched, toolScore{Name: d.Name, Description: d.Description, Score: s})
		}
	}

	slices.SortStableFunc(matched, func(x, y toolScore) int {
		return cmp.Compare(y.Score, x.Score)
	})
	if len(matched) > maxMatchedTools {
		matched = matched[:maxMatchedTools]
	}
	return matched
}

func keywordHits(keywords []string, description string) float64 {
	desc := strings.ToLower(description)
	hits := 0.0
	for _, kw := range keywords {
		if strings.Contains(desc, kw) {
			hits++
		}
	}
	return hits
}

// useResult summarizes simulated tool usage.
type useResult struct {
	Summary     string
	SuccessRate float64
	NewPatterns int
}

// useTools simulates using every matched tool and updates the usage
// statistics of registered ones: effectiveness climbs by 0.1 per use up
// to 1. The task's pattern bucket learns a profile on first sight.
// Callers must hold a.mu.
func (a *Agent) useTools(task string, matched []toolScore) useResult {
	used := make([]string, 0, len(matched))
	for _, m := range matched {
		used = append(used, m.Name)
		if t := a.findTool(m.Name); t != nil {
			t.Effectiveness = clamp01(t.Effectiveness + 0.1)
			t.LastUsed = jsontime.Milli(a.now())
			t.Uses++
			t.Successes++
		}
	}

	// Simulated uses always succeed.
	rate := 0.0
	if len(matched) > 0 {
		rate = float64(len(used)) / float64(len(matched))
	}

	newPatterns := a.recordTaskProfile(task, TaskProfile{
		SuccessfulTools: used,
		TaskComplexity:  len(matched),
		SuccessRate:     rate,
	})

	return useResult{
		Summary:     fmt.Sprintf("%d/%d tools used successfully", len(used), len(matched)),
		SuccessRate: rate,
		NewPatterns: newPatterns,
	}
}
