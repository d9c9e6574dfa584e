package muse

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/haivivi/muse/pkg/catalog"
	"github.com/haivivi/muse/pkg/jsontime"
)

// Built-in tool names.
const (
	ToolWebSearch    = "web_search"
	ToolCodeAnalysis = "code_analysis"
	ToolPlanning     = "planning"
)

// Tool describes a capability the agent can match against tasks. Tools
// are never invoked for real; usage is simulated and tracked, so tools
// that keep getting picked rank higher in later analyses.
type Tool struct {
	// Name identifies the tool.
	Name string `json:"name" msgpack:"name"`

	// Description is the text task keywords are matched against.
	Description string `json:"description" msgpack:"description"`

	// Schema describes the tool parameters.
	Schema *catalog.Schema `json:"schema,omitempty" msgpack:"schema,omitempty"`

	// Examples are short usage hints.
	Examples []string `json:"examples,omitempty" msgpack:"examples,omitempty"`

	// Effectiveness grows with simulated use, in [0, 1].
	Effectiveness float64 `json:"effectiveness" msgpack:"effectiveness"`

	// LastUsed is the time of the last simulated use, zero if never
	// used. It serializes as Unix milliseconds.
	LastUsed jsontime.Milli `json:"last_used" msgpack:"last_used"`

	// Uses counts simulated invocations.
	Uses int `json:"uses,omitempty" msgpack:"uses,omitempty"`

	// Successes counts simulated invocations that succeeded.
	Successes int `json:"successes,omitempty" msgpack:"successes,omitempty"`
}

// defaultTools returns the tool set every agent starts with.
func defaultTools() []*Tool {
	return []*Tool{
		{
			Name:        ToolWebSearch,
			Description: "Search the web for information",
			Schema: &catalog.Schema{Schema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"query":       {Type: "string"},
					"max_results": {Type: "integer"},
				},
				Required: []string{"query"},
			}},
			Examples: []string{"Current news search", "Technical research"},
		},
		{
			Name:        ToolCodeAnalysis,
			Description: "Code analysis and improvement suggestions",
			Schema: &catalog.Schema{Schema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"code":     {Type: "string"},
					"language": {Type: "string"},
				},
				Required: []string{"code"},
			}},
			Examples: []string{"Bug detection", "Performance analysis"},
		},
		{
			Name:        ToolPlanning,
			Description: "Task planning and strategic thinking",
			Schema: &catalog.Schema{Schema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"objective":   {Type: "string"},
					"constraints": {Type: "array"},
				},
				Required: []string{"objective"},
			}},
			Examples: []string{"Project planning", "Problem solving strategy"},
		},
	}
}

// findTool returns the registered tool by name, nil if absent. Callers
// must hold a.mu.
func (a *Agent) findTool(name string) *Tool {
	for _, t := range a.tools {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// register adds a tool, replacing any registered tool with the same
// name. Registration order is preserved so reports stay stable. Callers
// must hold a.mu or otherwise have the agent to themselves.
func (a *Agent) register(t Tool) {
	t.Effectiveness = clamp01(t.Effectiveness)
	if existing := a.findTool(t.Name); existing != nil {
		*existing = t
		return
	}
	a.tools = append(a.tools, &t)
}
