// Package muse implements a deterministic reasoning companion: a small
// agent that turns queries, tasks, goals, and situation reports into
// structured multi-section markdown analyses for a chat host.
//
// There is no model behind it. Every report is assembled from canned
// templates selected by keyword rules and word-count grading, so output
// is reproducible and fully offline. The rules live in
// [github.com/haivivi/muse/pkg/rules] and can be replaced per
// deployment without rebuilding.
//
// One [Agent] accumulates state across calls: an append-only history of
// reasoning steps, tool descriptors whose effectiveness grows with
// simulated use, and pattern buckets keyed by input word count.
//
// # Entry points
//
//   - [Agent.Think]: five-phase reasoning chain over a query.
//   - [Agent.AnalyzeTask]: match and exercise tools against a task.
//   - [Agent.Plan]: strategic plan with risk assessment for a goal.
//   - [Agent.Adapt]: adaptation strategies for a changing situation.
//
// Entry points return markdown and never surface internal failures as
// Go errors: a panic during report assembly folds into a report line
// prefixed "❌". The error return carries context cancellation only.
package muse

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/haivivi/muse/pkg/rules"
)

// Version is reported by [Agent.Info].
const Version = "1.0.0"

// DefaultDepth is the reasoning depth used when Config.Depth is zero.
const DefaultDepth = 3

// Rule set names the agent consumes. Custom rule files may override any
// of them by name.
const (
	RuleSetComplexity     = "complexity"
	RuleSetPlanComplexity = "plan_complexity"
	RuleSetQueryType      = "query_type"
	RuleSetContext        = "context"
	RuleSetEnvironment    = "environment"
	RuleSetStepResult     = "step_result"
)

// Agent is the reasoning companion. One Agent accumulates reasoning
// history, learned patterns, and tool usage statistics across calls; a
// single mutex guards that state, so concurrent calls are safe and each
// call sees a consistent snapshot.
//
// Reports are deterministic for a given agent state, input, and clock.
type Agent struct {
	logger *slog.Logger
	now    func() time.Time

	complexity     *rules.Matcher
	planComplexity *rules.Matcher
	queryType      *rules.Matcher
	contexts       *rules.Matcher
	environment    *rules.Matcher
	stepResult     *rules.Matcher

	mu       sync.Mutex
	history  []Step
	patterns map[string]*Pattern
	tools    []*Tool
	depth    int
	critical bool
}

// Config configures a new [Agent]. The zero value is usable: built-in
// rule sets, the default tool set, slog.Default(), time.Now.
type Config struct {
	// Logger receives diagnostics. Optional; defaults to slog.Default().
	Logger *slog.Logger

	// Clock supplies step timestamps. Optional; defaults to time.Now.
	// Tests inject a fixed clock for reproducible reports.
	Clock func() time.Time

	// Rules overrides built-in classifier rule sets by name (see the
	// RuleSet* constants). Names not present fall back to the embedded
	// defaults; nil entries are ignored.
	Rules map[string]*rules.Set

	// Depth is the initial reasoning depth, clamped to [1, 5]. Zero
	// means DefaultDepth. The depth is recorded and reported but does
	// not change the pipeline.
	Depth int

	// DisableCriticalThinking starts the agent with the evaluation
	// phase turned off. Calls can toggle it with WithCriticalThinking.
	DisableCriticalThinking bool

	// Tools registers extra tools alongside the built-ins. A tool with
	// a built-in name replaces the built-in.
	Tools []Tool
}

// New creates an Agent.
func New(cfg Config) (*Agent, error) {
	sets, err := rules.DefaultSets()
	if err != nil {
		return nil, fmt.Errorf("muse: default rules: %w", err)
	}
	for name, s := range cfg.Rules {
		if s == nil {
			continue
		}
		sets[name] = s
	}

	a := &Agent{
		logger:   cfg.Logger,
		now:      cfg.Clock,
		patterns: make(map[string]*Pattern),
		tools:    defaultTools(),
		depth:    DefaultDepth,
		critical: !cfg.DisableCriticalThinking,
	}
	if cfg.Depth != 0 {
		a.depth = clampDepth(cfg.Depth)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}

	compile := func(dst **rules.Matcher, name string) {
		if err != nil {
			return
		}
		s, ok := sets[name]
		if !ok {
			err = fmt.Errorf("rule set %q missing", name)
			return
		}
		*dst, err = s.Compile()
	}
	compile(&a.complexity, RuleSetComplexity)
	compile(&a.planComplexity, RuleSetPlanComplexity)
	compile(&a.queryType, RuleSetQueryType)
	compile(&a.contexts, RuleSetContext)
	compile(&a.environment, RuleSetEnvironment)
	compile(&a.stepResult, RuleSetStepResult)
	if err != nil {
		return nil, fmt.Errorf("muse: compile rules: %w", err)
	}

	for _, t := range cfg.Tools {
		a.register(t)
	}
	return a, nil
}

// CallOption adjusts the reasoning knobs for one entry-point call. The
// resolved values become the agent's new defaults, the way a chat host
// passes the knobs along on every invocation.
type CallOption func(*callConfig)

type callConfig struct {
	depth    int
	critical bool
}

// WithDepth sets the reasoning depth, clamped to [1, 5].
func WithDepth(n int) CallOption {
	return func(c *callConfig) { c.depth = clampDepth(n) }
}

// WithCriticalThinking toggles the evaluation phase of the chain.
func WithCriticalThinking(enabled bool) CallOption {
	return func(c *callConfig) { c.critical = enabled }
}

// call resolves per-call options against the stored knobs and persists
// the result. Callers must hold a.mu.
func (a *Agent) call(opts []CallOption) callConfig {
	c := callConfig{depth: a.depth, critical: a.critical}
	for _, opt := range opts {
		opt(&c)
	}
	a.depth = c.depth
	a.critical = c.critical
	return c
}

// guard folds a panic during report assembly into the chat-facing
// failure line. The host renders whatever string comes back, so entry
// points degrade to an error report instead of propagating.
func (a *Agent) guard(op string, report *string) {
	if r := recover(); r != nil {
		a.logger.Error("report assembly panicked", "op", op, "panic", r)
		*report = fmt.Sprintf("❌ %s: %v", op, r)
	}
}

func clampDepth(n int) int {
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
