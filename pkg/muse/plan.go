package muse

import (
	"context"
	"fmt"
	"slices"

	"github.com/haivivi/muse/pkg/rules"
)

// Horizon is the planning time horizon.
type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

// priority grades a strategic plan step.
type priority string

const (
	priorityLow      priority = "low"
	priorityMedium   priority = "medium"
	priorityHigh     priority = "high"
	priorityCritical priority = "critical"
)

// planStep is one step of a strategic plan.
type planStep struct {
	Title       string
	Description string

	// Duration is the display estimate. Ongoing steps have no end.
	Duration string
	Ongoing  bool

	Priority priority
}

// Plan analyzes a goal under constraints and renders the strategic plan
// report: a complexity and duration estimate, the step sequence for
// that complexity, a risk assessment, and monitoring guidance.
//
// Plan records nothing on the agent; it is a pure report.
func (a *Agent) Plan(ctx context.Context, objective string, constraints []string, horizon Horizon) (report string, err error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("muse: plan: %w", err)
	}
	defer a.guard("Agentic planning failed", &report)

	goal := a.analyzeObjective(objective, constraints, horizon)
	plan := buildStrategicPlan(goal.Complexity)
	risks := assessRisks(plan)
	a.logger.Debug("plan built", "complexity", goal.Complexity, "steps", len(plan.Steps), "risks", len(risks.Risks))
	return renderPlanReport(goal, plan, risks), nil
}

// goalAnalysis is the outcome of objective analysis.
type goalAnalysis struct {
	Interpretation    string
	Complexity        string
	EstimatedDuration string
	ConstraintImpact  string
}

// horizonMultipliers scale the duration estimate. Unknown horizons
// count as short term.
var horizonMultipliers = map[Horizon]int{
	HorizonShort:  1,
	HorizonMedium: 3,
	HorizonLong:   10,
}

// complexityBaseDays is the single-multiplier duration estimate per
// complexity grade.
var complexityBaseDays = map[string]int{
	"simple":  1,
	"medium":  3,
	"complex": 7,
}

func (a *Agent) analyzeObjective(objective string, constraints []string, horizon Horizon) goalAnalysis {
	complexity := a.planComplexity.Match(rules.Input{
		Text:  objective,
		Items: len(constraints),
	}).Verdict

	mult, ok := horizonMultipliers[horizon]
	if !ok {
		mult = 1
	}
	base, ok := complexityBaseDays[complexity]
	if !ok {
		base = 1
	}

	impact := "low"
	if len(constraints) > 2 {
		impact = "high"
	}

	return goalAnalysis{
		Interpretation:    fmt.Sprintf("Goal analysis completed: %s complexity, %s horizon", complexity, horizon),
		Complexity:        complexity,
		EstimatedDuration: countNoun(base*mult, "day", "days"),
		ConstraintImpact:  impact,
	}
}

// strategicPlan is the canned plan for one complexity grade.
type strategicPlan struct {
	Steps              []planStep
	ProgressMetrics    []string
	Checkpoints        []string
	AdaptationTriggers []string
}

func buildStrategicPlan(complexity string) strategicPlan {
	var steps []planStep
	switch complexity {
	case "complex":
		steps = []planStep{
			{
				Title:       "Detailed Planning",
				Description: "Comprehensive analysis and sub-goal definition",
				Duration:    "2 days",
				Priority:    priorityHigh,
			},
			{
				Title:       "Resource Gathering",
				Description: "Collecting the required tools and information",
				Duration:    "1 day",
				Priority:    priorityHigh,
			},
			{
				Title:       "Step-by-Step Execution",
				Description: "Systematic execution of the plan",
				Duration:    "3-5 days",
				Priority:    priorityCritical,
			},
			{
				Title:       "Monitoring and Adjustment",
				Description: "Tracking progress and correcting course",
				Duration:    "ongoing",
				Ongoing:     true,
				Priority:    priorityMedium,
			},
		}
	case "medium":
		steps = []planStep{
			{
				Title:       "Preparation",
				Description: "Base planning and resource identification",
				Duration:    "1 day",
				Priority:    priorityHigh,
			},
			{
				Title:       "Execution",
				Description: "Realizing the main objective",
				Duration:    "2 days",
				Priority:    priorityCritical,
			},
			{
				Title:       "Evaluation",
				Description: "Checking the results",
				Duration:    "0.5 days",
				Priority:    priorityMedium,
			},
		}
	default:
		steps = []planStep{
			{
				Title:       "Direct Execution",
				Description: "Realizing the objective directly",
				Duration:    "1 day",
				Priority:    priorityCritical,
			},
			{
				Title:       "Verification",
				Description: "Checking the result",
				Duration:    "0.2 days",
				Priority:    priorityLow,
			},
		}
	}
	return strategicPlan{
		Steps:              steps,
		ProgressMetrics:    []string{"Percentage of steps completed", "Quality score", "Schedule adherence"},
		Checkpoints:        []string{"After each step", "Major milestones"},
		AdaptationTriggers: []string{"Unexpected obstacles", "Resource changes", "Priority shifts"},
	}
}

// planRisk is one identified risk category.
type planRisk struct {
	Type        string
	Description string
	Probability float64
}

// riskAssessment is the outcome of plan risk analysis.
type riskAssessment struct {
	Summary   string
	Risks     []planRisk
	RiskLevel string
}

func assessRisks(plan strategicPlan) riskAssessment {
	var risks []planRisk
	if len(plan.Steps) > 3 {
		risks = append(risks, planRisk{
			Type:        "Complexity Risk",
			Description: "A plan with many steps can create coordination difficulties",
			Probability: 0.3,
		})
	}
	if slices.ContainsFunc(plan.Steps, func(s planStep) bool { return s.Priority == priorityCritical }) {
		risks = append(risks, planRisk{
			Type:        "Critical Point Risk",
			Description: "A delay in a critical step can affect the whole plan",
			Probability: 0.4,
		})
	}
	if slices.ContainsFunc(plan.Steps, func(s planStep) bool { return s.Ongoing }) {
		risks = append(risks, planRisk{
			Type:        "Continuous Monitoring Risk",
			Description: "Long-term monitoring requirements can consume resources",
			Probability: 0.2,
		})
	}

	level := "low"
	if len(risks) > 1 {
		level = "medium"
	}
	return riskAssessment{
		Summary:   countNoun(len(risks), "main risk category", "main risk categories") + " identified",
		Risks:     risks,
		RiskLevel: level,
	}
}
