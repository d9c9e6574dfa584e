package rules

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	_ "embed"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Set is a named rule set as written in YAML rule files.
type Set struct {
	Name     string  `json:"name" yaml:"name"`
	Fallback string  `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	Rules    []*Rule `json:"rules" yaml:"rules"`
}

// Compile compiles the set into a Matcher, applying its fallback.
func (s *Set) Compile(opts ...Option) (*Matcher, error) {
	if s.Fallback != "" {
		opts = append([]Option{WithFallback(s.Fallback)}, opts...)
	}
	m, err := Compile(s.Rules, opts...)
	if err != nil {
		return nil, fmt.Errorf("set %q: %w", s.Name, err)
	}
	return m, nil
}

// UnmarshalYAML implements yaml.Unmarshaler for Keywords.
// Supports:
//   - scalar string: "change"
//   - array: [problem, issue]
func (k *Keywords) UnmarshalYAML(b []byte) error {
	if k == nil {
		return fmt.Errorf("keywords is nil")
	}

	// Try scalar string first
	var s string
	if err := yaml.Unmarshal(b, &s); err == nil {
		*k = Keywords{s}
		return nil
	}

	var arr []string
	if err := yaml.Unmarshal(b, &arr); err == nil {
		*k = Keywords(arr)
		return nil
	}

	return fmt.Errorf("keywords must be string or string array")
}

// ParseSetsYAML parses named rule sets from YAML bytes. The document
// shape is:
//
//	sets:
//	  - name: complexity
//	    fallback: simple
//	    rules: [...]
func ParseSetsYAML(data []byte) (map[string]*Set, error) {
	var doc struct {
		Sets []*Set `yaml:"sets"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	out := make(map[string]*Set, len(doc.Sets))
	for _, s := range doc.Sets {
		if s == nil || s.Name == "" {
			return nil, fmt.Errorf("rule set with no name")
		}
		if _, dup := out[s.Name]; dup {
			return nil, fmt.Errorf("duplicate rule set %q", s.Name)
		}
		out[s.Name] = s
	}
	return out, nil
}

// LoadSets reads rule sets from a YAML file.
func LoadSets(path string) (map[string]*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseSetsYAML(data)
}

// DefaultSets returns the built-in rule sets parsed from the embedded
// defaults. Callers own the returned map and may override entries.
func DefaultSets() (map[string]*Set, error) {
	return ParseSetsYAML(defaultsYAML)
}
