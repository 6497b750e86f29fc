package config

import "github.com/zclconf/go-cty/cty"

// Model is the unified representation of the entire plan: every task from
// every loaded file, plus the evaluated variable values.
type Model struct {
	Vars  map[string]cty.Value
	Tasks []*Task
}

// Task is the format-agnostic representation of a `task` block. Exactly one
// of Command or Stages is populated: a task either runs a command itself or
// expands into its stage graph.
type Task struct {
	Name      string
	Command   string
	DependsOn []string
	Stages    []*Stage
	Finally   []*Stage
}

// Compound reports whether the task expands into a stage graph.
func (t *Task) Compound() bool {
	return len(t.Stages) > 0
}

// Stage is the format-agnostic representation of a `stage` or `finally`
// block.
type Stage struct {
	Name    string
	Command string
	After   []string
}
