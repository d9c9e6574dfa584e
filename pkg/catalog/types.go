// Package catalog loads declared tool catalogs. A catalog file lists
// tools a deployment wants considered during task analysis, either in
// the native YAML/JSON shape or extracted out of arbitrary vendor JSON
// with a jq selector.
package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/itchyny/gojq"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Schema wraps jsonschema.Schema with efficient msgpack serialization.
// Direct msgpack serialization of jsonschema.Schema produces large
// output because all zero-value fields are encoded; round-tripping
// through map[string]any keeps snapshots compact.
type Schema struct {
	*jsonschema.Schema
}

// MarshalJSON implements json.Marshaler.
func (s Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Schema)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Schema) UnmarshalJSON(data []byte) error {
	s.Schema = &jsonschema.Schema{}
	return json.Unmarshal(data, s.Schema)
}

// MarshalYAML implements yaml.Marshaler.
func (s Schema) MarshalYAML() (any, error) {
	if s.Schema == nil {
		return nil, nil
	}
	jsonData, err := json.Marshal(s.Schema)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(jsonData, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	jsonData, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.Schema = &jsonschema.Schema{}
	return json.Unmarshal(jsonData, s.Schema)
}

// MarshalMsgpack implements msgpack.Marshaler with compact output.
func (s Schema) MarshalMsgpack() ([]byte, error) {
	if s.Schema == nil {
		return msgpack.Marshal(nil)
	}
	jsonData, err := json.Marshal(s.Schema)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(jsonData, &v); err != nil {
		return nil, err
	}
	return msgpack.Marshal(v)
}

// UnmarshalMsgpack implements msgpack.Unmarshaler.
func (s *Schema) UnmarshalMsgpack(data []byte) error {
	var v any
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		s.Schema = nil
		return nil
	}
	jsonData, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.Schema = &jsonschema.Schema{}
	return json.Unmarshal(jsonData, s.Schema)
}

// JQExpr wraps a jq expression with pre-parsed query.
// The expression is parsed during deserialization to catch errors early
// and avoid repeated parsing at runtime.
type JQExpr struct {
	Expr  string      // original expression string
	Query *gojq.Query // pre-parsed query (not serialized)
}

// ParseJQ parses a jq expression.
func ParseJQ(expr string) (JQExpr, error) {
	e := JQExpr{Expr: expr}
	if expr == "" {
		return e, nil
	}
	query, err := gojq.Parse(expr)
	if err != nil {
		return JQExpr{}, fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}
	e.Query = query
	return e, nil
}

// MarshalJSON implements json.Marshaler.
func (e JQExpr) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Expr)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *JQExpr) UnmarshalJSON(data []byte) error {
	var expr string
	if err := json.Unmarshal(data, &expr); err != nil {
		return err
	}
	parsed, err := ParseJQ(expr)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (e JQExpr) MarshalYAML() (any, error) {
	return e.Expr, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *JQExpr) UnmarshalYAML(node *yaml.Node) error {
	var expr string
	if err := node.Decode(&expr); err != nil {
		return err
	}
	parsed, err := ParseJQ(expr)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Run executes the jq query on the input and returns all results.
// A nil or empty expression returns nil results.
func (e *JQExpr) Run(input any) ([]any, error) {
	if e == nil || e.Query == nil {
		return nil, nil
	}
	var out []any
	iter := e.Query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("jq error: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}
