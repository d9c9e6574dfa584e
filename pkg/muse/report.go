package muse

import (
	"fmt"
	"strings"
	"time"

	"github.com/haivivi/muse/pkg/jsontime"
)

// percent renders a [0, 1] score the way the chat host displays it.
func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", clamp01(v)*100)
}

// stepTime renders a step timestamp for the detailed analysis section.
func stepTime(at jsontime.Milli) string {
	return at.Time().UTC().Format(time.DateTime)
}

// countNoun renders "1 step" or "3 steps".
func countNoun(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// renderProcess builds the inline thinking process block shared by the
// thinking report and the history report.
func renderProcess(steps []Step) string {
	var sb strings.Builder
	sb.WriteString("🧠 **Thinking Process:**\n\n")
	for i, s := range steps {
		fmt.Fprintf(&sb, "%s **Step %d - %s:** %s\n", s.Phase.emoji(), i+1, s.Phase.Title(), s.Content)
		fmt.Fprintf(&sb, "   *Confidence: %s*\n\n", percent(s.Confidence))
	}
	return sb.String()
}

func renderThinkReport(res chainResult) string {
	var sb strings.Builder
	sb.WriteString("# 🧠 Enhanced Thinking Response\n\n")

	sb.WriteString("## 📝 Summary\n")
	sb.WriteString(res.Answer)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "**Overall Confidence Score:** %s\n\n", percent(res.Confidence))

	sb.WriteString("## 🔄 Thinking Process\n")
	sb.WriteString(renderProcess(res.Chain))

	sb.WriteString("\n## 📊 Detailed Analysis\n")
	for i, s := range res.Chain {
		fmt.Fprintf(&sb, "\n### Step %d: %s\n", i+1, s.Phase.Title())
		fmt.Fprintf(&sb, "- **Content:** %s\n", s.Content)
		fmt.Fprintf(&sb, "- **Confidence:** %s\n", percent(s.Confidence))
		fmt.Fprintf(&sb, "- **Time:** %s\n", stepTime(s.Timestamp))
	}
	return sb.String()
}

func renderTaskReport(task string, matched []toolScore, use useResult) string {
	var sb strings.Builder
	sb.WriteString("# 🛠️ Intelligent Tool Usage\n\n")

	sb.WriteString("## 📋 Task\n")
	sb.WriteString(task)
	sb.WriteString("\n\n")

	sb.WriteString("## 🔧 Identified Tools\n")
	for _, m := range matched {
		fmt.Fprintf(&sb, "- **%s**: %s\n", m.Name, m.Description)
	}

	sb.WriteString("\n## ⚡ Usage Results\n")
	sb.WriteString(use.Summary)
	sb.WriteString("\n\n")

	sb.WriteString("## 📊 Performance\n")
	fmt.Fprintf(&sb, "- **Tools Used:** %d\n", len(matched))
	fmt.Fprintf(&sb, "- **Success Rate:** %s\n", percent(use.SuccessRate))
	fmt.Fprintf(&sb, "- **New Patterns Learned:** %d\n", use.NewPatterns)
	return sb.String()
}

func renderPlanReport(goal goalAnalysis, plan strategicPlan, risks riskAssessment) string {
	var sb strings.Builder
	sb.WriteString("# 🎯 Agentic Planning Response\n\n")

	sb.WriteString("## 🎪 Goal Analysis\n")
	sb.WriteString(goal.Interpretation)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "**Complexity Level:** %s\n", goal.Complexity)
	fmt.Fprintf(&sb, "**Estimated Duration:** %s\n\n", goal.EstimatedDuration)

	sb.WriteString("## 📋 Strategic Plan\n\n### Main Steps:\n")
	for i, s := range plan.Steps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s.Title)
		fmt.Fprintf(&sb, "   - %s\n", s.Description)
		fmt.Fprintf(&sb, "   - Duration: %s\n", s.Duration)
		fmt.Fprintf(&sb, "   - Priority: %s\n\n", s.Priority)
	}

	sb.WriteString("## ⚠️ Risk Analysis\n")
	sb.WriteString(risks.Summary)
	sb.WriteString("\n\n### Identified Risks:\n")
	for _, r := range risks.Risks {
		fmt.Fprintf(&sb, "- **%s**: %s (Probability: %s)\n", r.Type, r.Description, percent(r.Probability))
	}

	sb.WriteString("\n## 🔄 Monitoring and Adaptation Strategy\n")
	fmt.Fprintf(&sb, "- **Progress Metrics:** %s\n", strings.Join(plan.ProgressMetrics, ", "))
	fmt.Fprintf(&sb, "- **Checkpoints:** %s\n", strings.Join(plan.Checkpoints, ", "))
	fmt.Fprintf(&sb, "- **Adaptation Triggers:** %s\n", strings.Join(plan.AdaptationTriggers, ", "))
	return sb.String()
}

func renderAdaptReport(analysis contextAnalysis, plan adaptationPlan, learning learningPlan) string {
	var sb strings.Builder
	sb.WriteString("# 🌍 Real-World Adaptation Analysis\n\n")

	sb.WriteString("## 🔍 Context Analysis\n")
	sb.WriteString(analysis.Interpretation)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "**Identified Patterns:** %s\n", strings.Join(analysis.patternLabels(), ", "))
	fmt.Fprintf(&sb, "**Critical Factors:** %s\n\n", strings.Join(analysis.CriticalFactors, ", "))

	sb.WriteString("## 🎯 Adaptation Strategies\n\n### Recommended Approaches:\n")
	for i, ap := range plan.Approaches {
		fmt.Fprintf(&sb, "\n#### %d. %s\n", i+1, ap.Name)
		fmt.Fprintf(&sb, "- **Description:** %s\n", ap.Description)
		fmt.Fprintf(&sb, "- **Implementation:** %s\n", ap.Implementation)
		fmt.Fprintf(&sb, "- **Expected Benefit:** %s\n", ap.ExpectedBenefit)
		fmt.Fprintf(&sb, "- **Risk Level:** %s\n", ap.RiskLevel)
	}

	sb.WriteString("\n## 📚 Learning and Improvement\n\n### Recommendations:\n")
	for _, r := range learning.Recommendations {
		fmt.Fprintf(&sb, "- **%s**: %s\n", r.Category, r.Suggestion)
	}
	sb.WriteString("\n### Continuous Improvement Cycle:\n")
	fmt.Fprintf(&sb, "1. **Observation:** %s\n", learning.ObservationStrategy)
	fmt.Fprintf(&sb, "2. **Analysis:** %s\n", learning.AnalysisMethod)
	fmt.Fprintf(&sb, "3. **Implementation:** %s\n", learning.ImplementationApproach)
	fmt.Fprintf(&sb, "4. **Evaluation:** %s\n", learning.EvaluationCriteria)

	sb.WriteString("\n## 📊 Adaptation Success Criteria\n")
	fmt.Fprintf(&sb, "- **Short-Term Goals:** %s\n", strings.Join(plan.ShortTermMetrics, ", "))
	fmt.Fprintf(&sb, "- **Long-Term Goals:** %s\n", strings.Join(plan.LongTermMetrics, ", "))
	fmt.Fprintf(&sb, "- **Learning Speed Indicators:** %s\n", strings.Join(learning.SpeedIndicators, ", "))
	return sb.String()
}

// Info renders the agent capability and status report.
func (a *Agent) Info() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("# 🧠 Muse Reasoning Agent\n\n")
	fmt.Fprintf(&sb, "Version %s\n\n", Version)

	sb.WriteString("## 📋 Capabilities\n")
	sb.WriteString("- **Chain-of-Thought Reasoning**: staged thinking chains over free-form queries\n")
	sb.WriteString("- **Dynamic Tool Discovery**: matching and exercising tools against task descriptions\n")
	sb.WriteString("- **Critical Thinking**: self-assessment of every reasoning chain\n")
	sb.WriteString("- **Agentic Planning**: goal analysis and strategic plans with risk assessment\n")
	sb.WriteString("- **Real-World Adaptation**: strategy adjustment for changing situations\n\n")

	sb.WriteString("## 🛠️ Operations\n")
	sb.WriteString("1. `Think` - staged reasoning over a query\n")
	sb.WriteString("2. `AnalyzeTask` - tool matching and simulated usage\n")
	sb.WriteString("3. `Plan` - strategic planning\n")
	sb.WriteString("4. `Adapt` - real-world adaptation\n\n")

	sb.WriteString("## 📊 Status\n")
	sb.WriteString("- **Agent Status**: active\n")
	fmt.Fprintf(&sb, "- **Learned Patterns**: %d\n", len(a.patterns))
	fmt.Fprintf(&sb, "- **Available Tools**: %d\n", len(a.tools))
	fmt.Fprintf(&sb, "- **Thinking History**: %s\n", countNoun(len(a.history), "step", "steps"))
	fmt.Fprintf(&sb, "- **Reasoning Depth**: %d\n", a.depth)
	fmt.Fprintf(&sb, "- **Critical Thinking**: %s\n", enabledDisabled(a.critical))
	return sb.String()
}

// HistoryReport renders the recorded reasoning history as a process
// block.
func (a *Agent) HistoryReport() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("# 🧠 Thinking History\n\n")
	fmt.Fprintf(&sb, "%s recorded\n\n", countNoun(len(a.history), "step", "steps"))
	if len(a.history) > 0 {
		sb.WriteString(renderProcess(a.history))
	}
	return sb.String()
}

func enabledDisabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
