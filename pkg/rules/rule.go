package rules

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Keywords is a list of lowercase keyword alternatives.
//
// JSON/YAML supports:
//   - "change"            (scalar)
//   - [problem, issue]    (array)
type Keywords []string

func (k Keywords) MarshalJSON() ([]byte, error) {
	// Keep output compact: scalar for a single keyword.
	if len(k) == 1 {
		return json.Marshal(k[0])
	}
	return json.Marshal([]string(k))
}

func (k *Keywords) UnmarshalJSON(b []byte) error {
	if k == nil {
		return fmt.Errorf("keywords is nil")
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*k = Keywords{s}
		return nil
	}
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*k = Keywords(arr)
		return nil
	}
	return fmt.Errorf("keywords must be string or string array")
}

// Rule is a schema-driven classifier rule that corresponds to JSON/YAML
// data on disk. A rule fires when ANY of its conditions holds:
//
//   - a keyword in Any occurs as a substring of the lowercased input,
//   - a keyword in Words occurs as a whole word of the input,
//   - the input has more than MinWords words (when MinWords > 0),
//   - the input carries more than MinItems auxiliary items
//     (when MinItems > 0).
type Rule struct {
	Name string `json:"name" yaml:"name"`

	// Any lists substring keywords. Matching is case-insensitive.
	Any Keywords `json:"any,omitempty" yaml:"any,omitempty"`

	// Words lists whole-word keywords. Use these for short function
	// words ("is", "do") that would over-match as substrings.
	Words Keywords `json:"words,omitempty" yaml:"words,omitempty"`

	// MinWords fires the rule when the input word count exceeds it.
	MinWords int `json:"min_words,omitempty" yaml:"min_words,omitempty"`

	// MinItems fires the rule when Input.Items exceeds it.
	MinItems int `json:"min_items,omitempty" yaml:"min_items,omitempty"`

	// Verdict is the classification this rule produces. Empty means
	// the rule name itself.
	Verdict string `json:"verdict,omitempty" yaml:"verdict,omitempty"`
}

// verdict returns the effective verdict for this rule.
func (r *Rule) verdict() string {
	if r.Verdict != "" {
		return r.Verdict
	}
	return r.Name
}

// validate checks the rule is well formed.
func (r *Rule) validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule has no name")
	}
	if len(r.Any) == 0 && len(r.Words) == 0 && r.MinWords <= 0 && r.MinItems <= 0 {
		return fmt.Errorf("rule %q has no conditions", r.Name)
	}
	for _, kw := range r.Any {
		if kw == "" {
			return fmt.Errorf("rule %q: empty keyword in any", r.Name)
		}
		if kw != strings.ToLower(kw) {
			return fmt.Errorf("rule %q: keyword %q must be lowercase", r.Name, kw)
		}
	}
	for _, kw := range r.Words {
		if kw == "" {
			return fmt.Errorf("rule %q: empty keyword in words", r.Name)
		}
		if kw != strings.ToLower(kw) {
			return fmt.Errorf("rule %q: keyword %q must be lowercase", r.Name, kw)
		}
	}
	return nil
}
