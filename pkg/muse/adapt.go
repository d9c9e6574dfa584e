package muse

import (
	"context"
	"fmt"

	"github.com/haivivi/muse/pkg/rules"
)

// Adapt analyzes a changing situation and renders the adaptation
// report: context patterns found in the situation text, critical
// factors found in the environment list, the strategies matching those
// patterns, and learning recommendations.
//
// Like [Agent.Plan] it records nothing on the agent.
func (a *Agent) Adapt(ctx context.Context, situation string, environment []string) (report string, err error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("muse: adapt: %w", err)
	}
	defer a.guard("Real-world adaptation failed", &report)

	analysis := a.analyzeContext(situation, environment)
	plan := developStrategies(analysis)
	learning := buildLearningPlan(analysis, plan)
	a.logger.Debug("adaptation built", "patterns", len(analysis.Patterns), "approaches", len(plan.Approaches))
	return renderAdaptReport(analysis, plan, learning), nil
}

// contextAnalysis is the outcome of situation analysis.
type contextAnalysis struct {
	Interpretation  string
	Patterns        []rules.Match
	CriticalFactors []string
}

// analyzeContext collects every context pattern the situation text
// triggers and grades each environment factor against the environment
// rules. Factors that trigger nothing are dropped.
func (a *Agent) analyzeContext(situation string, environment []string) contextAnalysis {
	patterns := a.contexts.MatchAll(rules.Input{Text: situation})

	var critical []string
	for _, f := range environment {
		if m := a.environment.Match(rules.Input{Text: f}); m.Verdict != "" {
			critical = append(critical, m.Verdict)
		}
	}

	return contextAnalysis{
		Interpretation: fmt.Sprintf("Context analysis: %s, %s",
			countNoun(len(patterns), "main pattern", "main patterns"),
			countNoun(len(critical), "critical factor", "critical factors")),
		Patterns:        patterns,
		CriticalFactors: critical,
	}
}

func (c contextAnalysis) patternLabels() []string {
	labels := make([]string, 0, len(c.Patterns))
	for _, m := range c.Patterns {
		labels = append(labels, m.Verdict)
	}
	return labels
}

// approach is one canned adaptation strategy.
type approach struct {
	Name            string
	Description     string
	Implementation  string
	ExpectedBenefit string
	RiskLevel       string
}

// approachFor maps a context rule name to its adaptation strategy.
// Custom rule files reuse these names to keep the strategies; rules
// with new names identify patterns without recommending an approach.
func approachFor(rule string) (approach, bool) {
	switch rule {
	case "change_driven":
		return approach{
			Name:            "Flexible Adaptation",
			Description:     "A strategy of rapid adjustment to changing conditions",
			Implementation:  "Continuous tuning through a modular approach",
			ExpectedBenefit: "Fast reaction to change",
			RiskLevel:       "medium",
		}, true
	case "problem_solving":
		return approach{
			Name:            "Systematic Problem Solving",
			Description:     "Step-by-step problem analysis and resolution",
			Implementation:  "Root cause analysis and iterative solutions",
			ExpectedBenefit: "Lasting solutions",
			RiskLevel:       "low",
		}, true
	case "opportunity":
		return approach{
			Name:            "Proactive Opportunity Assessment",
			Description:     "Identifying and evaluating opportunities early",
			Implementation:  "Continuous scanning and fast evaluation",
			ExpectedBenefit: "Competitive advantage",
			RiskLevel:       "medium-high",
		}, true
	}
	return approach{}, false
}

// adaptationPlan is the strategy set developed for a situation.
type adaptationPlan struct {
	Approaches       []approach
	ShortTermMetrics []string
	LongTermMetrics  []string
}

func developStrategies(analysis contextAnalysis) adaptationPlan {
	var approaches []approach
	for _, p := range analysis.Patterns {
		if ap, ok := approachFor(p.Rule); ok {
			approaches = append(approaches, ap)
		}
	}
	return adaptationPlan{
		Approaches:       approaches,
		ShortTermMetrics: []string{"Adjustment speed", "First results", "Resource usage"},
		LongTermMetrics:  []string{"Sustainability", "Learning rate", "Performance improvement"},
	}
}

// recommendation is one learning recommendation.
type recommendation struct {
	Category   string
	Suggestion string
}

// learningPlan is the continuous improvement guidance for a situation.
type learningPlan struct {
	Recommendations        []recommendation
	ObservationStrategy    string
	AnalysisMethod         string
	ImplementationApproach string
	EvaluationCriteria     string
	SpeedIndicators        []string
}

func buildLearningPlan(analysis contextAnalysis, plan adaptationPlan) learningPlan {
	var recs []recommendation
	if len(analysis.CriticalFactors) > 0 {
		recs = append(recs, recommendation{
			Category:   "Critical Factor Management",
			Suggestion: "Set up dedicated monitoring for the identified critical factors",
		})
	}
	if len(plan.Approaches) > 2 {
		recs = append(recs, recommendation{
			Category:   "Strategy Diversity",
			Suggestion: "Parallel testing and evaluation of the multi-strategy approach",
		})
	}
	recs = append(recs, recommendation{
		Category:   "Continuous Improvement",
		Suggestion: "Regular feedback loops and performance metric tracking",
	})
	return learningPlan{
		Recommendations:        recs,
		ObservationStrategy:    "Systematic data collection and trend analysis",
		AnalysisMethod:         "Statistical evaluation and pattern recognition",
		ImplementationApproach: "Phased rollout and A/B testing",
		EvaluationCriteria:     "Objective metrics and subjective assessments",
		SpeedIndicators:        []string{"Speed of new pattern recognition", "Adaptation time", "Error reduction rate"},
	}
}
