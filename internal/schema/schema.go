package schema

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Stage represents a `stage` or `finally` block within a task. Stages form
// the task's inner graph; `after` names sibling stages that must finish
// first.
type Stage struct {
	Name  string         `hcl:"name,label"`
	Run   hcl.Expression `hcl:"run"`
	After []string       `hcl:"after,optional"`
}

// Task represents a `task` block from a user's plan file. A task either has
// a `run` command of its own, or expands into `stage` blocks (optionally
// with `finally` blocks that execute regardless of stage outcome).
type Task struct {
	Name      string         `hcl:"name,label"`
	Run       hcl.Expression `hcl:"run,optional"`
	DependsOn []string       `hcl:"depends_on,optional"`
	Stages    []*Stage       `hcl:"stage,block"`
	Finally   []*Stage       `hcl:"finally,block"`
}

// Variable represents a `variable` block. Its default is available to every
// `run` expression as `var.<name>`.
type Variable struct {
	Name    string    `hcl:"name,label"`
	Default cty.Value `hcl:"default"`
}

// PlanConfig represents the top-level structure of a plan file.
type PlanConfig struct {
	Variables []*Variable `hcl:"variable,block"`
	Tasks     []*Task     `hcl:"task,block"`
	Body      hcl.Body    `hcl:",remain"`
}
