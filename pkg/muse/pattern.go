package muse

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/haivivi/muse/pkg/jsontime"
)

// Pattern is one learned bucket. Keys group inputs by kind and word
// count ("query_type_7_words", "task_type_4_words"), which is crude but
// cheap and keeps the store bounded by input shape rather than content.
type Pattern struct {
	// Key is the bucket key.
	Key string `json:"key" msgpack:"key"`

	// Observations accumulate one record per thinking run over this
	// bucket. Only query buckets carry observations.
	Observations []Observation `json:"observations,omitempty" msgpack:"observations,omitempty"`

	// Profile is set once, on first sight of a task bucket.
	Profile *TaskProfile `json:"profile,omitempty" msgpack:"profile,omitempty"`
}

// Observation records the outcome of one thinking run.
type Observation struct {
	// QueryLength is the query length in characters.
	QueryLength int `json:"query_length" msgpack:"query_length"`

	// StepsTaken is the chain length at reflection time.
	StepsTaken int `json:"steps_taken" msgpack:"steps_taken"`

	// Success reports whether any chain step announced success.
	Success bool `json:"success" msgpack:"success"`

	// Timestamp is the observation time, carried as Unix milliseconds.
	Timestamp jsontime.Milli `json:"ts" msgpack:"ts"`
}

// TaskProfile summarizes the first tool analysis of a task bucket.
type TaskProfile struct {
	// SuccessfulTools lists the tools that were used successfully.
	SuccessfulTools []string `json:"successful_tools" msgpack:"successful_tools"`

	// TaskComplexity is the number of tools matched to the task.
	TaskComplexity int `json:"task_complexity" msgpack:"task_complexity"`

	// SuccessRate is the fraction of tool uses that succeeded.
	SuccessRate float64 `json:"success_rate" msgpack:"success_rate"`
}

// queryPatternKey buckets queries by word count.
func queryPatternKey(query string) string {
	return fmt.Sprintf("query_type_%d_words", len(strings.Fields(query)))
}

// taskPatternKey buckets tasks by word count.
func taskPatternKey(task string) string {
	return fmt.Sprintf("task_type_%d_words", len(strings.Fields(task)))
}

// recordQueryObservation appends an observation of the finished chain
// to the query's bucket. Callers must hold a.mu.
func (a *Agent) recordQueryObservation(query string, chain []Step) {
	key := queryPatternKey(query)
	p := a.patterns[key]
	if p == nil {
		p = &Pattern{Key: key}
		a.patterns[key] = p
	}
	p.Observations = append(p.Observations, Observation{
		QueryLength: utf8.RuneCountInString(query),
		StepsTaken:  len(chain),
		Success:     chainContains(chain, "success"),
		Timestamp:   jsontime.Milli(a.now()),
	})
}

// recordTaskProfile stores the task bucket profile on first sight and
// reports how many new buckets were learned (0 or 1). Later analyses of
// the same bucket keep the original profile. Callers must hold a.mu.
func (a *Agent) recordTaskProfile(task string, profile TaskProfile) int {
	key := taskPatternKey(task)
	if _, ok := a.patterns[key]; ok {
		return 0
	}
	a.patterns[key] = &Pattern{Key: key, Profile: &profile}
	return 1
}
