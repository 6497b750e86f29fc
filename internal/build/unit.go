package build

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vk/taskforge/internal/ctxlog"
	"github.com/vk/taskforge/internal/dag"
	"github.com/vk/taskforge/internal/scheduler"
)

// Unit is one executable work item: a named shell command plus its
// dependency links. A unit with an empty command is an aggregate that
// succeeds trivially once its dependencies have.
type Unit struct {
	name    string
	command string
	deps    []dag.Work
}

// NewUnit creates a unit. Dependencies are linked afterwards by the builder.
func NewUnit(name, command string) *Unit {
	return &Unit{name: name, command: command}
}

// Dependencies implements dag.Work.
func (u *Unit) Dependencies() []dag.Work { return u.deps }

// String returns the unit's plan-level name.
func (u *Unit) String() string { return u.name }

func (u *Unit) dependOn(w dag.Work) { u.deps = append(u.deps, w) }

// Execute runs the unit's command through the shell, logging through the
// per-task logger installed in ctx. Aggregate units are a no-op.
func (u *Unit) Execute(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	if u.command == "" {
		logger.Debug("Nothing to run for aggregate unit.")
		return nil
	}

	logger.Info("▶️ Running", "command", u.command)
	cmd := exec.CommandContext(ctx, "sh", "-c", u.command)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		logger.Error("Command failed.", "error", err, "output", output.String())
		if tail := lastLine(output.String()); tail != "" {
			return fmt.Errorf("%s: %s", err, tail)
		}
		return err
	}

	logger.Info("✅ Finished", "command", u.command)
	return nil
}

// lastLine returns the final non-empty line of command output.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// CompoundUnit is a task that expands into a stage sub-graph. The unit's own
// command is empty: when the sub-graph succeeds the unit itself completes as
// an aggregate.
type CompoundUnit struct {
	Unit
	stages  []*Unit
	finally []*Unit
}

// SubWork implements scheduler.CompoundWork.
func (c *CompoundUnit) SubWork() scheduler.SubWork {
	return scheduler.SubWork{
		Main:    subScheduler(c.stages),
		Finally: subScheduler(c.finally),
	}
}

// subScheduler builds a critical-path scheduler over the given units.
// Returns nil when there is nothing to run.
func subScheduler(units []*Unit) scheduler.Scheduler {
	if len(units) == 0 {
		return nil
	}
	roots := make([]dag.Work, len(units))
	for i, u := range units {
		roots[i] = u
	}
	info := dag.NewInfo(roots...)
	return scheduler.NewDag(info, scheduler.NewMaxPath(info, 1))
}
