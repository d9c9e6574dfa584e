package muse

import (
	"github.com/google/uuid"

	"github.com/haivivi/muse/pkg/jsontime"
)

// Phase identifies the pipeline stage that produced a reasoning step.
type Phase string

const (
	PhaseAnalysis   Phase = "analysis"
	PhasePlanning   Phase = "planning"
	PhaseExecution  Phase = "execution"
	PhaseEvaluation Phase = "evaluation"
	PhaseReflection Phase = "reflection"
)

// Title returns the display name used in report sections.
func (p Phase) Title() string {
	switch p {
	case PhaseAnalysis:
		return "Analysis"
	case PhasePlanning:
		return "Planning"
	case PhaseExecution:
		return "Execution"
	case PhaseEvaluation:
		return "Evaluation"
	case PhaseReflection:
		return "Reflection"
	default:
		return "Step"
	}
}

// emoji returns the marker shown next to the phase in process blocks.
func (p Phase) emoji() string {
	switch p {
	case PhaseAnalysis:
		return "🔍"
	case PhasePlanning:
		return "📋"
	case PhaseExecution:
		return "⚡"
	case PhaseEvaluation:
		return "🎯"
	case PhaseReflection:
		return "🪞"
	default:
		return "📝"
	}
}

// Step is one recorded reasoning step. Steps are append-only; the
// history never rewrites or drops entries within a process lifetime.
type Step struct {
	// ID identifies the step across exports.
	ID string `json:"id" msgpack:"id"`

	// Phase is the pipeline stage that produced the step.
	Phase Phase `json:"phase" msgpack:"phase"`

	// Content is the single-line narration of what the stage found.
	Content string `json:"content" msgpack:"content"`

	// Timestamp is the step time, carried as Unix milliseconds.
	Timestamp jsontime.Milli `json:"ts" msgpack:"ts"`

	// Confidence is the stage confidence in [0, 1].
	Confidence float64 `json:"confidence" msgpack:"confidence"`

	// DependsOn lists the IDs of steps this one builds on, usually the
	// immediately preceding step of the same chain.
	DependsOn []string `json:"depends_on,omitempty" msgpack:"depends_on,omitempty"`
}

// appendStep records a step in the agent history and returns it.
// Callers must hold a.mu.
func (a *Agent) appendStep(phase Phase, content string, confidence float64, dependsOn ...string) Step {
	s := Step{
		ID:         uuid.NewString(),
		Phase:      phase,
		Content:    content,
		Timestamp:  jsontime.Milli(a.now()),
		Confidence: clamp01(confidence),
		DependsOn:  dependsOn,
	}
	a.history = append(a.history, s)
	return s
}
