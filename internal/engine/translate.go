package engine

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskforge/internal/config"
	"github.com/vk/taskforge/internal/ctxlog"
	"github.com/vk/taskforge/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Translate merges decoded plan files into the agnostic model, evaluating
// every `run` expression against the combined variable scope and validating
// the task and stage references.
func Translate(ctx context.Context, configs ...*schema.PlanConfig) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting plan translation.", "files", len(configs))

	vars := make(map[string]cty.Value)
	for _, cfg := range configs {
		for _, v := range cfg.Variables {
			if _, exists := vars[v.Name]; exists {
				return nil, fmt.Errorf("duplicate variable %q", v.Name)
			}
			vars[v.Name] = v.Default
		}
	}

	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{}}
	if len(vars) > 0 {
		evalCtx.Variables["var"] = cty.ObjectVal(vars)
	}

	model := &config.Model{Vars: vars}
	byName := make(map[string]*config.Task)
	for _, cfg := range configs {
		for _, t := range cfg.Tasks {
			task, err := translateTask(ctx, t, evalCtx)
			if err != nil {
				return nil, err
			}
			if _, exists := byName[task.Name]; exists {
				return nil, fmt.Errorf("duplicate task %q", task.Name)
			}
			byName[task.Name] = task
			model.Tasks = append(model.Tasks, task)
		}
	}

	if err := validateReferences(model, byName); err != nil {
		return nil, err
	}

	logger.Debug("Plan translation finished.", "tasks", len(model.Tasks), "variables", len(vars))
	return model, nil
}

// translateTask converts one HCL task block, evaluating its command
// expressions.
func translateTask(ctx context.Context, t *schema.Task, evalCtx *hcl.EvalContext) (*config.Task, error) {
	task := &config.Task{
		Name:      t.Name,
		DependsOn: t.DependsOn,
	}

	command, hasRun, err := evalCommand(t.Run, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("task %q: %w", t.Name, err)
	}

	switch {
	case hasRun && len(t.Stages) > 0:
		return nil, fmt.Errorf("task %q: cannot have both 'run' and 'stage' blocks", t.Name)
	case !hasRun && len(t.Stages) == 0:
		return nil, fmt.Errorf("task %q: needs either 'run' or at least one 'stage' block", t.Name)
	case len(t.Finally) > 0 && len(t.Stages) == 0:
		return nil, fmt.Errorf("task %q: 'finally' requires 'stage' blocks", t.Name)
	}
	task.Command = command

	seen := make(map[string]struct{})
	for _, s := range t.Stages {
		stage, err := translateStage(s, evalCtx, seen)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", t.Name, err)
		}
		task.Stages = append(task.Stages, stage)
	}
	for _, s := range t.Finally {
		stage, err := translateStage(s, evalCtx, seen)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", t.Name, err)
		}
		if len(stage.After) > 0 {
			return nil, fmt.Errorf("task %q: finally %q: 'after' is not allowed on finally blocks", t.Name, stage.Name)
		}
		task.Finally = append(task.Finally, stage)
	}

	ctxlog.FromContext(ctx).Debug("Translated task.", "task", task.Name, "stages", len(task.Stages), "finally", len(task.Finally))
	return task, nil
}

// translateStage converts one stage/finally block, enforcing unique names
// within the owning task.
func translateStage(s *schema.Stage, evalCtx *hcl.EvalContext, seen map[string]struct{}) (*config.Stage, error) {
	if _, dup := seen[s.Name]; dup {
		return nil, fmt.Errorf("duplicate stage %q", s.Name)
	}
	seen[s.Name] = struct{}{}

	command, hasRun, err := evalCommand(s.Run, evalCtx)
	if err != nil {
		return nil, fmt.Errorf("stage %q: %w", s.Name, err)
	}
	if !hasRun {
		return nil, fmt.Errorf("stage %q: 'run' is required", s.Name)
	}
	return &config.Stage{Name: s.Name, Command: command, After: s.After}, nil
}

// evalCommand evaluates a `run` expression to a string. Optional attributes
// decode to a non-nil expression whose value is null when absent.
func evalCommand(expr hcl.Expression, evalCtx *hcl.EvalContext) (string, bool, error) {
	if expr == nil {
		return "", false, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", false, fmt.Errorf("evaluating 'run': %s", diags.Error())
	}
	if val.IsNull() {
		return "", false, nil
	}
	if val.Type() != cty.String {
		return "", false, fmt.Errorf("'run' must be a string, got %s", val.Type().FriendlyName())
	}
	return val.AsString(), true, nil
}

// validateReferences checks that every depends_on and after reference names
// something that exists.
func validateReferences(model *config.Model, byName map[string]*config.Task) error {
	for _, task := range model.Tasks {
		for _, dep := range task.DependsOn {
			if _, ok := byName[dep]; !ok {
				return fmt.Errorf("task %q depends on unknown task %q", task.Name, dep)
			}
			if dep == task.Name {
				return fmt.Errorf("task %q depends on itself", task.Name)
			}
		}
		stages := make(map[string]struct{}, len(task.Stages))
		for _, s := range task.Stages {
			stages[s.Name] = struct{}{}
		}
		for _, s := range task.Stages {
			for _, after := range s.After {
				if _, ok := stages[after]; !ok {
					return fmt.Errorf("task %q: stage %q runs after unknown stage %q", task.Name, s.Name, after)
				}
				if after == s.Name {
					return fmt.Errorf("task %q: stage %q runs after itself", task.Name, s.Name)
				}
			}
		}
	}
	return nil
}
