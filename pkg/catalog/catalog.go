package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sentinel errors.
var (
	// ErrNoSelector is returned by Extract when no jq selector is given.
	ErrNoSelector = errors.New("catalog: no selector")
)

// Decl declares one tool offered for task matching. Runtime state
// (effectiveness, usage counts) lives with the agent, not here.
type Decl struct {
	// Name identifies the tool. Required.
	Name string `json:"name" yaml:"name"`

	// Description is the capability text keyword matching runs against.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Schema describes the tool's parameters.
	Schema *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`

	// Examples are short usage examples surfaced in reports.
	Examples []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// Catalog is a named list of tool declarations.
type Catalog struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Selector optionally extracts declarations from foreign JSON via
	// Extract instead of listing Tools inline.
	Selector *JQExpr `json:"selector,omitempty" yaml:"selector,omitempty"`

	Tools []Decl `json:"tools,omitempty" yaml:"tools,omitempty"`
}

// validate checks declarations are usable for matching.
func (c *Catalog) validate() error {
	for i, d := range c.Tools {
		if d.Name == "" {
			return fmt.Errorf("catalog %q: tool[%d] has no name", c.Name, i)
		}
	}
	return nil
}

// Parse parses a catalog from YAML or JSON bytes. JSON documents are
// detected by a leading '{' or '[' and go through the repairing
// unmarshal; everything else is treated as YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		if err := unmarshalJSON(data, &c); err != nil {
			return nil, fmt.Errorf("catalog: parse json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("catalog: parse yaml: %w", err)
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads a catalog file. The extension picks the format: .json uses
// the repairing JSON parser, anything else is YAML.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read: %w", err)
	}
	if filepath.Ext(path) == ".json" {
		var c Catalog
		if err := unmarshalJSON(data, &c); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return &c, nil
	}
	return Parse(data)
}

// Extract pulls tool declarations out of arbitrary vendor JSON using a
// jq selector. Each value the selector produces must be an object
// carrying at least a "name"; unknown fields are ignored.
//
// Example selector for an OpenAPI-ish dump:
//
//	.paths | to_entries[] | {name: .key, description: .value.summary}
func Extract(data []byte, sel *JQExpr) ([]Decl, error) {
	if sel == nil || sel.Query == nil {
		return nil, ErrNoSelector
	}
	var input any
	if err := unmarshalJSON(data, &input); err != nil {
		return nil, fmt.Errorf("catalog: parse source: %w", err)
	}
	results, err := sel.Run(input)
	if err != nil {
		return nil, fmt.Errorf("catalog: selector: %w", err)
	}

	decls := make([]Decl, 0, len(results))
	for i, v := range results {
		// jq yields map[string]any; round-trip through JSON to apply
		// the Decl field tags.
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("catalog: encode result[%d]: %w", i, err)
		}
		var d Decl
		if err := json.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("catalog: decode result[%d]: %w", i, err)
		}
		if d.Name == "" {
			return nil, fmt.Errorf("catalog: result[%d] has no name", i)
		}
		decls = append(decls, d)
	}
	return decls, nil
}

// Resolve returns the catalog's declarations, applying the selector to
// src when one is configured.
func (c *Catalog) Resolve(src []byte) ([]Decl, error) {
	if c.Selector != nil && c.Selector.Query != nil {
		if len(src) == 0 {
			return nil, fmt.Errorf("catalog %q: selector configured but no source given", c.Name)
		}
		return Extract(src, c.Selector)
	}
	return c.Tools, nil
}
