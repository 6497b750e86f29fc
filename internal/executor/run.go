package executor

import (
	"context"

	"github.com/vk/taskforge/internal/dag"
	"github.com/vk/taskforge/internal/scheduler"
)

// Run executes everything reachable from root across at most maximumTasks
// concurrent workers and returns the list of failed items. The graph is
// scheduled critical-path-first; items implementing scheduler.CompoundWork
// expand into their sub-graphs.
//
// Run returns only after all reachable work has completed, failed, or been
// invalidated by an upstream failure.
func Run(
	ctx context.Context,
	root dag.Work,
	name NameFor,
	action Action,
	maximumTasks int,
	log LoggerFor,
) []scheduler.Failure {
	info := dag.NewInfo(root)
	sched := scheduler.NewCompound(scheduler.NewDag(info, scheduler.NewMaxPath(info, 1)))
	return New(sched, action, name, maximumTasks, log).Run(ctx)
}
