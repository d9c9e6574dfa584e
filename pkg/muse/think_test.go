package muse

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestThinkSimpleQuestion(t *testing.T) {
	a := newTestAgent(t, Config{})

	report, err := a.Think(context.Background(), "What time does the library open today?")
	if err != nil {
		t.Fatalf("Think: %v", err)
	}

	wantContains(t, report,
		"# 🧠 Enhanced Thinking Response",
		"## 📝 Summary",
		"All steps completed successfully. Comprehensive analysis and evaluation produced a reliable conclusion.",
		"**Overall Confidence Score:** 93.0%",
		"## 🔄 Thinking Process",
		"## 📊 Detailed Analysis",
		"Query analysis: question type, simple complexity. Key concepts identified: What, time, does, the, library",
		"Execution plan: 2-step approach. Required steps: Formulate a direct answer, Verify the answer",
		"Plan execution result: 2 steps completed",
		"Critical evaluation: ✓ Plan executed successfully; ✓ Concrete answer obtained; ✓ High confidence level",
		"Lessons learned: Steps completed with generally high confidence",
		"- **Time:** 2025-06-15 10:30:00",
	)

	steps := a.History()
	if len(steps) != 5 {
		t.Fatalf("history = %d steps, want 5", len(steps))
	}
	wantPhases := []Phase{PhaseAnalysis, PhasePlanning, PhaseExecution, PhaseEvaluation, PhaseReflection}
	for i, p := range wantPhases {
		if steps[i].Phase != p {
			t.Errorf("steps[%d].Phase = %q, want %q", i, steps[i].Phase, p)
		}
	}
}

func TestThinkComplexityGrades(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "keyword promotes to complex",
			query: "Run a full analysis of the cache hit rate",
			want:  "Execution plan: 4-step approach",
		},
		{
			name:  "length promotes to medium",
			query: "The team wants to know which rollout order makes the deploy safer for everyone involved",
			want:  "Execution plan: 3-step approach",
		},
		{
			name:  "short statement stays simple",
			query: "Check the cache",
			want:  "Execution plan: 2-step approach",
		},
		{
			name:  "empty query degrades to simple statement",
			query: "",
			want:  "Query analysis: statement type, simple complexity",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAgent(t, Config{})
			report, err := a.Think(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Think: %v", err)
			}
			wantContains(t, report, tt.want)
		})
	}
}

func TestThinkWithoutCriticalThinking(t *testing.T) {
	a := newTestAgent(t, Config{DisableCriticalThinking: true})

	report, err := a.Think(context.Background(), "Check the cache")
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if strings.Contains(report, "Critical evaluation:") {
		t.Error("report contains an evaluation step with critical thinking disabled")
	}
	wantContains(t, report,
		"**Overall Confidence Score:** 90.5%",
		"Lessons learned: Process went as expected",
	)
	if got := len(a.History()); got != 4 {
		t.Errorf("history = %d steps, want 4", got)
	}

	// Without the evaluation step nothing in the chain announces
	// success, and the recorded observation reflects that.
	pats := a.Patterns()
	if len(pats) != 1 || len(pats[0].Observations) != 1 {
		t.Fatalf("patterns = %+v, want one bucket with one observation", pats)
	}
	obs := pats[0].Observations[0]
	if obs.Success {
		t.Error("observation success = true, want false")
	}
	if obs.StepsTaken != 3 {
		t.Errorf("observation steps = %d, want 3 at reflection time", obs.StepsTaken)
	}
}

func TestThinkRecordsObservation(t *testing.T) {
	a := newTestAgent(t, Config{})

	query := "Would splitting the cache help"
	if _, err := a.Think(context.Background(), query); err != nil {
		t.Fatalf("Think: %v", err)
	}

	pats := a.Patterns()
	if len(pats) != 1 {
		t.Fatalf("patterns = %d, want 1", len(pats))
	}
	if pats[0].Key != "query_type_5_words" {
		t.Errorf("pattern key = %q, want query_type_5_words", pats[0].Key)
	}
	obs := pats[0].Observations[0]
	if want := len([]rune(query)); obs.QueryLength != want {
		t.Errorf("QueryLength = %d, want %d", obs.QueryLength, want)
	}
	if obs.StepsTaken != 4 {
		t.Errorf("StepsTaken = %d, want 4 at reflection time", obs.StepsTaken)
	}
	if !obs.Success {
		t.Error("Success = false, want true with the evaluation step in the chain")
	}
	if obs.Timestamp.UnixMilli() != testTime.UnixMilli() {
		t.Errorf("Timestamp = %d, want %d", obs.Timestamp.UnixMilli(), testTime.UnixMilli())
	}

	// The same bucket accumulates; it never resets.
	if _, err := a.Think(context.Background(), "Could the index fit memory"); err != nil {
		t.Fatalf("Think: %v", err)
	}
	pats = a.Patterns()
	if len(pats) != 1 || len(pats[0].Observations) != 2 {
		t.Fatalf("patterns/observations = %d/%d, want 1/2", len(pats), len(pats[0].Observations))
	}
}

func TestThinkDeterministic(t *testing.T) {
	const query = "How should we verify the migration"
	r1, err := newTestAgent(t, Config{}).Think(context.Background(), query)
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	r2, err := newTestAgent(t, Config{}).Think(context.Background(), query)
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if r1 != r2 {
		t.Errorf("reports differ for identical agents and clock:\n%s\n---\n%s", r1, r2)
	}
}

func TestChainDependencies(t *testing.T) {
	a := newTestAgent(t, Config{})
	if _, err := a.Think(context.Background(), "Check the cache"); err != nil {
		t.Fatalf("Think: %v", err)
	}

	steps := a.History()
	if len(steps[0].DependsOn) != 0 {
		t.Errorf("first step DependsOn = %v, want none", steps[0].DependsOn)
	}
	for i := 1; i < len(steps); i++ {
		if len(steps[i].DependsOn) != 1 || steps[i].DependsOn[0] != steps[i-1].ID {
			t.Errorf("steps[%d].DependsOn = %v, want [%s]", i, steps[i].DependsOn, steps[i-1].ID)
		}
	}
	seen := make(map[string]bool)
	for _, s := range steps {
		if s.ID == "" || seen[s.ID] {
			t.Errorf("step ID %q empty or duplicated", s.ID)
		}
		seen[s.ID] = true
	}
}

func TestExecuteChain(t *testing.T) {
	a := newTestAgent(t, Config{})

	steps := []string{"Check the logs for clues", "Verify the fix"}
	report, err := a.ExecuteChain(context.Background(), "investigate the outage", steps)
	if err != nil {
		t.Fatalf("ExecuteChain: %v", err)
	}
	wantContains(t, report,
		"Plan execution result: 2 steps completed",
		"Critical evaluation:",
		"Lessons learned:",
		"**Overall Confidence Score:** 86.0%",
	)
	if strings.Contains(report, "Execution plan:") {
		t.Error("caller-supplied steps must skip the planning phase")
	}
	if got := len(a.History()); got != 3 {
		t.Errorf("history = %d steps, want 3", got)
	}
}

func TestExecuteChainDerivesPlan(t *testing.T) {
	a := newTestAgent(t, Config{})

	report, err := a.ExecuteChain(context.Background(), "What changed in the deploy", nil)
	if err != nil {
		t.Fatalf("ExecuteChain: %v", err)
	}
	wantContains(t, report, "Query analysis:", "Execution plan:")
	if got := len(a.History()); got != 5 {
		t.Errorf("history = %d steps, want 5", got)
	}
}

func TestAnalyzeQuery(t *testing.T) {
	a := newTestAgent(t, Config{})

	got := a.analyzeQuery("Why does the comparison of both backends favor the simpler one here")
	if got.QueryType != "question" {
		t.Errorf("query type = %q, want question", got.QueryType)
	}
	if got.Complexity != "complex" {
		t.Errorf("complexity = %q, want complex", got.Complexity)
	}
	if want := []string{"Why", "does", "the", "comparison", "both"}; !slices.Equal(got.KeyConcepts, want) {
		t.Errorf("concepts = %v, want %v", got.KeyConcepts, want)
	}
	if got.Confidence != analysisConfidence {
		t.Errorf("confidence = %v, want %v", got.Confidence, analysisConfidence)
	}
}

func TestBuildExecutionPlan(t *testing.T) {
	a := newTestAgent(t, Config{})
	tests := []struct {
		complexity string
		steps      int
		tools      int
		estimated  time.Duration
	}{
		{"complex", 4, 3, 120 * time.Second},
		{"medium", 3, 2, 90 * time.Second},
		{"simple", 2, 1, 60 * time.Second},
		{"unheard-of", 2, 1, 60 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.complexity, func(t *testing.T) {
			plan := a.buildExecutionPlan(tt.complexity)
			if len(plan.Steps) != tt.steps {
				t.Errorf("steps = %d, want %d", len(plan.Steps), tt.steps)
			}
			if len(plan.RequiredTools) != tt.tools {
				t.Errorf("tools = %d, want %d", len(plan.RequiredTools), tt.tools)
			}
			if plan.EstimatedTime != tt.estimated {
				t.Errorf("estimated = %v, want %v", plan.EstimatedTime, tt.estimated)
			}
			if want := fmt.Sprintf("%d-step approach", tt.steps); plan.Strategy != want {
				t.Errorf("strategy = %q, want %q", plan.Strategy, want)
			}
		})
	}
}

func TestExecuteStep(t *testing.T) {
	a := newTestAgent(t, Config{})
	tests := []struct {
		step string
		want string
	}{
		{"Gather sources for each part", "Relevant sources identified and accessed"},
		{"Synthesize the information", "Relevant sources identified and accessed"},
		{"Analyze the dataset", "Detailed analysis completed"},
		{"Evaluate the options", "Evaluation criteria applied"},
		{"Validate the output", "Results verified and confirmed"},
		{"Ship it", "Step completed successfully: Ship it"},
	}
	for _, tt := range tests {
		if got := a.executeStep(tt.step); got != tt.want {
			t.Errorf("executeStep(%q) = %q, want %q", tt.step, got, tt.want)
		}
	}
}

func TestExecutePlanOutcomes(t *testing.T) {
	a := newTestAgent(t, Config{})

	exec := a.executePlan(a.buildExecutionPlan("simple"))
	if len(exec.Steps) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(exec.Steps))
	}
	if exec.Steps[0].Step != 1 || exec.Steps[0].Result != "Step completed successfully: Formulate a direct answer" {
		t.Errorf("first outcome = %+v", exec.Steps[0])
	}
	if exec.Steps[1].Result != "Results verified and confirmed" {
		t.Errorf("second outcome = %+v", exec.Steps[1])
	}
	if !exec.Success || exec.Confidence != executionConfidence {
		t.Errorf("success/confidence = %v/%v", exec.Success, exec.Confidence)
	}
	if exec.Summary != "2 steps completed" {
		t.Errorf("summary = %q", exec.Summary)
	}
}

func TestEvaluateExecution(t *testing.T) {
	tests := []struct {
		name        string
		exec        executionResult
		want        string
		improvement bool
	}{
		{
			name:        "clean run",
			exec:        executionResult{Success: true, Answer: "done", Confidence: 0.8},
			want:        "✓ Plan executed successfully; ✓ Concrete answer obtained; ✓ High confidence level",
			improvement: false,
		},
		{
			name:        "troubled run",
			exec:        executionResult{Success: false, Answer: "", Confidence: 0.4},
			want:        "⚠ Plan execution ran into problems; ⚠ Answer remained unclear; ⚠ Low confidence level",
			improvement: true,
		},
		{
			name:        "middling confidence",
			exec:        executionResult{Success: true, Answer: "done", Confidence: 0.55},
			want:        "✓ Plan executed successfully; ✓ Concrete answer obtained; ◐ Medium confidence level",
			improvement: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := evaluateExecution(tt.exec)
			if ev.Assessment != tt.want {
				t.Errorf("assessment = %q, want %q", ev.Assessment, tt.want)
			}
			if ev.NeedsImprovement != tt.improvement {
				t.Errorf("needs improvement = %v, want %v", ev.NeedsImprovement, tt.improvement)
			}
		})
	}
}

func TestReflectionInsights(t *testing.T) {
	a := newTestAgent(t, Config{})

	chain := []Step{
		{Content: "step one", Confidence: 0.5},
		{Content: "an error occurred upstream", Confidence: 0.5},
		{Content: "step three", Confidence: 0.5},
		{Content: "step four", Confidence: 0.5},
		{Content: "step five", Confidence: 0.5},
		{Content: "step six", Confidence: 0.5},
	}
	a.mu.Lock()
	refl := a.reflectAndLearn(chain, "long troubled query")
	a.mu.Unlock()

	want := "Error handling processes could be improved; The multi-step approach is effective for complex queries"
	if refl.Insights != want {
		t.Errorf("insights = %q, want %q", refl.Insights, want)
	}
	if refl.PatternsLearned != 1 {
		t.Errorf("patterns learned = %d, want 1", refl.PatternsLearned)
	}
}

func TestOverallConfidence(t *testing.T) {
	step := func(c float64) Step { return Step{Confidence: c} }
	tests := []struct {
		name  string
		chain []Step
		want  float64
	}{
		{"empty chain", nil, 0},
		{"single step", []Step{step(0.8)}, 0.82},
		{
			"bonus caps at a tenth",
			[]Step{step(0.9), step(0.9), step(0.9), step(0.9), step(0.9), step(0.9)},
			1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overallConfidence(tt.chain); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("overallConfidence = %v, want %v", got, tt.want)
			}
		})
	}
}
