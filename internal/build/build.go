package build

import (
	"context"
	"fmt"

	"github.com/vk/taskforge/internal/config"
	"github.com/vk/taskforge/internal/ctxlog"
	"github.com/vk/taskforge/internal/dag"
)

// FromPlan constructs the executable work graph for a plan model and returns
// its root. Plans with several sink tasks get a synthetic aggregate root
// depending on all of them, so the executor's single-root contract holds.
func FromPlan(ctx context.Context, model *config.Model) (dag.Work, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building work graph from plan.", "tasks", len(model.Tasks))

	// First pass: create a unit per task.
	units := make(map[string]dag.Work, len(model.Tasks))
	for _, t := range model.Tasks {
		if t.Compound() {
			cu := &CompoundUnit{Unit: Unit{name: t.Name}}
			stages, err := buildStages(t)
			if err != nil {
				return nil, err
			}
			cu.stages = stages
			for _, f := range t.Finally {
				cu.finally = append(cu.finally, NewUnit(t.Name+"."+f.Name, f.Command))
			}
			units[t.Name] = cu
		} else {
			units[t.Name] = NewUnit(t.Name, t.Command)
		}
	}

	// Second pass: link task dependencies.
	dependedOn := make(map[string]bool, len(units))
	for _, t := range model.Tasks {
		for _, dep := range t.DependsOn {
			target, ok := units[dep]
			if !ok {
				return nil, fmt.Errorf("task %q depends on unknown task %q", t.Name, dep)
			}
			dependedOn[dep] = true
			switch u := units[t.Name].(type) {
			case *CompoundUnit:
				u.dependOn(target)
			case *Unit:
				u.dependOn(target)
			}
		}
	}

	// Sinks become the root, behind a synthetic aggregate when there are
	// several.
	var sinks []dag.Work
	for _, t := range model.Tasks {
		if !dependedOn[t.Name] {
			sinks = append(sinks, units[t.Name])
		}
	}
	if len(sinks) == 0 {
		return nil, fmt.Errorf("plan has no sink task: every task is depended on")
	}

	var root dag.Work
	if len(sinks) == 1 {
		root = sinks[0]
	} else {
		all := NewUnit("all", "")
		for _, s := range sinks {
			all.dependOn(s)
		}
		root = all
		logger.Debug("Synthesized aggregate root over sink tasks.", "sinks", len(sinks))
	}

	if err := dag.DetectCycles(root); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Work graph built.", "root", WorkName(root))
	return root, nil
}

// buildStages creates the stage units for one compound task and links their
// `after` edges. Stage graphs are validated for cycles independently since
// they only materialize at expansion time.
func buildStages(t *config.Task) ([]*Unit, error) {
	stages := make([]*Unit, 0, len(t.Stages))
	byName := make(map[string]*Unit, len(t.Stages))
	for _, s := range t.Stages {
		u := NewUnit(t.Name+"."+s.Name, s.Command)
		byName[s.Name] = u
		stages = append(stages, u)
	}
	for _, s := range t.Stages {
		for _, after := range s.After {
			target, ok := byName[after]
			if !ok {
				return nil, fmt.Errorf("task %q: stage %q runs after unknown stage %q", t.Name, s.Name, after)
			}
			byName[s.Name].dependOn(target)
		}
	}

	roots := make([]dag.Work, len(stages))
	for i, u := range stages {
		roots[i] = u
	}
	if err := dag.DetectCycles(roots...); err != nil {
		return nil, fmt.Errorf("task %q: error validating stage graph: %w", t.Name, err)
	}
	return stages, nil
}
