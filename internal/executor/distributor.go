package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/taskforge/internal/ctxlog"
	"github.com/vk/taskforge/internal/dag"
	"github.com/vk/taskforge/internal/scheduler"
)

// Action executes one work item. A nil return is success; an error marks the
// item failed and invalidates its transitive dependents.
type Action func(ctx context.Context, w dag.Work) error

// NameFor names a work item for failure messages and logs.
type NameFor func(w dag.Work) string

// LoggerFor supplies the logger an item's action runs under. The caller must
// hand out loggers that are safe for the concurrency it requested.
type LoggerFor func(w dag.Work) *slog.Logger

// completion is the record a worker publishes when its action returns.
type completion struct {
	work dag.Work
	err  error
}

// Distributor drives a scheduler across a bounded pool of workers.
type Distributor struct {
	sched   scheduler.Scheduler
	action  Action
	name    NameFor
	log     LoggerFor
	workers int
	running int
	done    chan completion
}

// New creates a distributor. workers must be at least 1.
func New(sched scheduler.Scheduler, action Action, name NameFor, workers int, log LoggerFor) *Distributor {
	if workers < 1 {
		panic(fmt.Sprintf("executor: workers must be >= 1, got %d", workers))
	}
	return &Distributor{
		sched:   sched,
		action:  action,
		name:    name,
		log:     log,
		workers: workers,
		// At most `workers` completions can be outstanding, so this
		// capacity means workers never block on publishing.
		done: make(chan completion, workers),
	}
}

// Run executes the graph to quiescence and returns the accumulated failures.
// It blocks the calling goroutine; workers are spawned one per yielded item.
func (d *Distributor) Run(ctx context.Context) []scheduler.Failure {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Distributor loop starting.", "workers", d.workers)

	for {
		if d.running < d.workers && d.sched.HasPending() {
			available := d.workers - d.running
			batch := d.sched.Next(available)
			if len(batch) > available {
				panic(fmt.Sprintf("executor: scheduler yielded %d items for %d slots", len(batch), available))
			}
			if len(batch) == 0 && d.running == 0 {
				panic("executor: scheduler yielded nothing while idle with pending work")
			}
			for _, w := range batch {
				d.running++
				logger.Debug("Dispatching work.", "work", d.name(w), "running", d.running)
				d.spawn(ctx, w)
			}
		}

		if d.running == 0 && !d.sched.HasPending() {
			logger.Debug("Distributor loop finished.", "failures", len(d.sched.Failures()))
			return d.sched.Failures()
		}

		// Always wait for at least one completion before scheduling more,
		// so newly unblocked work is marked ready first.
		c := <-d.done
		d.running--
		logger.Debug("Work completed.", "work", d.name(c.work), "failed", c.err != nil, "running", d.running)
		d.sched.Complete(c.work, c.err)
	}
}

// spawn starts one worker goroutine for w with its own logger installed.
func (d *Distributor) spawn(ctx context.Context, w dag.Work) {
	logger := d.log(w)
	workCtx := ctxlog.WithLogger(ctx, logger)
	go func() {
		d.done <- completion{work: w, err: d.invoke(workCtx, w, logger)}
	}()
}

// invoke runs the action, trapping panics so nothing escapes the worker.
// Action errors and trapped panics both come back wrapped with the item name.
func (d *Distributor) invoke(ctx context.Context, w dag.Work, logger *slog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Task panicked.", "panic", r)
			err = fmt.Errorf("Error running %s: %v", d.name(w), r)
		}
	}()
	if actionErr := d.action(ctx, w); actionErr != nil {
		logger.Error("Task failed.", "error", actionErr)
		return fmt.Errorf("Error running %s: %s", d.name(w), actionErr)
	}
	return nil
}
