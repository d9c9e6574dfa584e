// Package rules compiles keyword classifier rules into reusable
// matchers. The report engine's heuristics (complexity grading, query
// typing, adaptation triggers, canned step outcomes) are YAML data
// compiled through this package rather than switch statements, so
// deployments can override them with their own rule files.
package rules

import (
	"fmt"
	"log/slog"
	"strings"
)

// Input is a unit of text being classified.
type Input struct {
	// Text is matched lowercased against rule keywords.
	Text string

	// Items is an auxiliary count (e.g. number of constraints on a
	// planning goal) tested by MinItems rules.
	Items int
}

// Match is the outcome of classifying an Input.
type Match struct {
	// Rule is the name of the rule that fired. Empty when no rule
	// fired and a set fallback was used.
	Rule string

	// Verdict is the classification. For fallback matches this is the
	// set's fallback verdict.
	Verdict string
}

// Matcher is a compiled rule set.
type Matcher struct {
	rules    []Rule
	fallback string
}

// Option configures Compile behavior.
type Option func(*compileConfig)

type compileConfig struct {
	fallback string
}

// WithFallback sets the verdict returned when no rule fires.
func WithFallback(verdict string) Option {
	return func(c *compileConfig) {
		c.fallback = verdict
	}
}

// Compile compiles rules into a reusable Matcher. Rules are tried in
// order; duplicate names are skipped with a warning.
func Compile(rules []*Rule, opts ...Option) (*Matcher, error) {
	cfg := &compileConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	seen := make(map[string]struct{}, len(rules))
	compiled := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r == nil {
			continue
		}
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
		if _, dup := seen[r.Name]; dup {
			slog.Warn("rules: duplicate rule name, skipping", "name", r.Name)
			continue
		}
		seen[r.Name] = struct{}{}
		compiled = append(compiled, *r)
	}

	return &Matcher{rules: compiled, fallback: cfg.fallback}, nil
}

// Match returns the first rule that fires, or the fallback verdict with
// an empty rule name when none does.
func (m *Matcher) Match(in Input) Match {
	n := normalize(in)
	for i := range m.rules {
		if m.rules[i].fires(n) {
			return Match{Rule: m.rules[i].Name, Verdict: m.rules[i].verdict()}
		}
	}
	return Match{Verdict: m.fallback}
}

// MatchAll returns every rule that fires, in rule order. The fallback
// does not apply; an input matching nothing yields an empty slice.
func (m *Matcher) MatchAll(in Input) []Match {
	n := normalize(in)
	var out []Match
	for i := range m.rules {
		if m.rules[i].fires(n) {
			out = append(out, Match{Rule: m.rules[i].Name, Verdict: m.rules[i].verdict()})
		}
	}
	return out
}

// Len returns the number of compiled rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

// normalized is the preprocessed form of an Input shared by all rules.
type normalized struct {
	text  string
	words map[string]struct{}
	count int
	items int
}

func (r *Rule) fires(n normalized) bool {
	for _, kw := range r.Any {
		if strings.Contains(n.text, kw) {
			return true
		}
	}
	for _, kw := range r.Words {
		if _, ok := n.words[kw]; ok {
			return true
		}
	}
	if r.MinWords > 0 && n.count > r.MinWords {
		return true
	}
	if r.MinItems > 0 && n.items > r.MinItems {
		return true
	}
	return false
}

// normalize lowercases the text and builds the whole-word lookup.
// Words are split on whitespace with surrounding punctuation trimmed,
// so "What.", "what?" and "what" all count as the word "what".
func normalize(in Input) normalized {
	lower := strings.ToLower(in.Text)
	fields := strings.Fields(lower)
	words := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()")
		if f != "" {
			words[f] = struct{}{}
		}
	}
	return normalized{text: lower, words: words, count: len(fields), items: in.Items}
}
