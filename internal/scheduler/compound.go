package scheduler

import (
	"errors"

	"github.com/vk/taskforge/internal/dag"
)

// ErrSubtasksFailed is the failure recorded against a compound item when any
// item in its main sub-graph fails.
var ErrSubtasksFailed = errors.New("One or more subtasks failed")

// SubWork is the expansion a compound item substitutes for itself: a main
// sub-scheduler, and a finally sub-scheduler that runs once the main one has
// drained, regardless of its outcome.
type SubWork struct {
	Main    Scheduler
	Finally Scheduler
}

// CompoundWork marks an item whose execution is replaced by a sub-graph.
// SubWork is called once, at expansion time. Main must be non-nil; Finally
// may be nil when there is nothing to defer.
type CompoundWork interface {
	dag.Work
	SubWork() SubWork
}

// expansion tags a live main sub-run with the compound item it substitutes
// and the deferred finally scheduler.
type expansion struct {
	compound dag.Work
	finally  Scheduler
}

// Compound wraps a Multi to implement sub-graph expansion. When an inner
// scheduler yields a CompoundWork item, Compound intercepts it instead of
// handing it to the distributor: the item's main sub-scheduler joins the
// composition while the item itself stays logically in flight. Once the main
// sub-graph drains, the finally sub-graph is installed and the compound item
// either becomes ready (main succeeded) or fails with ErrSubtasksFailed.
type Compound struct {
	multi *Multi
	// final holds compound items whose sub-graphs succeeded: the only thing
	// left to run for them is themselves.
	final Strategy
	// deferred counts live main sub-runs whose finally scheduler has not
	// been installed yet.
	deferred int
}

// NewCompound wraps root as the outermost sub-run of a new composition.
func NewCompound(root Scheduler) *Compound {
	c := &Compound{
		multi: NewMulti(),
		final: &fifo{},
	}
	c.multi.Add(root, nil)
	return c
}

// Next drains the final queue first, then pulls from the composition,
// expanding compound items as they surface. Expansion does not consume any
// of max; the loop keeps pulling until the budget is exhausted or nothing
// more is available, so work exposed by an expansion is reachable in the
// same call.
func (c *Compound) Next(max int) []dag.Work {
	var out []dag.Work
	for len(out) < max {
		if c.final.HasReady() {
			out = append(out, c.final.Next(max-len(out))...)
			continue
		}
		batch := c.multi.Next(max - len(out))
		if len(batch) == 0 {
			break
		}
		for _, w := range batch {
			if cw, ok := w.(CompoundWork); ok {
				c.expand(cw)
			} else {
				out = append(out, w)
			}
		}
	}
	return out
}

// expand installs cw's main sub-scheduler. The compound item remains owned
// by the sub-run that yielded it, so its eventual completion routes to the
// outer graph. A main scheduler that is already complete (an empty
// sub-graph) is settled inline.
func (c *Compound) expand(cw CompoundWork) {
	sub := cw.SubWork()
	if sub.Main.IsComplete() {
		c.multi.absorb(sub.Main.Failures())
		c.subFinished(&expansion{compound: cw, finally: sub.Finally}, sub.Main)
		return
	}
	c.multi.Add(sub.Main, &expansion{compound: cw, finally: sub.Finally})
	if sub.Finally != nil {
		c.deferred++
	}
}

// Complete routes a result into the composition. If that finishes a sub-run
// created by an expansion, the deferred finally phase starts and the
// compound item is settled.
func (c *Compound) Complete(w dag.Work, err error) {
	sub, tag, finished := c.multi.completeWork(w, err)
	if !finished {
		return
	}
	if exp, ok := tag.(*expansion); ok {
		if exp.finally != nil {
			c.deferred--
		}
		c.subFinished(exp, sub)
	}
}

// subFinished installs the finally scheduler (tag: none — its completion
// triggers nothing further) and settles the compound item: ready if the main
// sub-graph had no failures, failed with ErrSubtasksFailed otherwise. The
// finally failures, if any, surface only in the combined list.
func (c *Compound) subFinished(exp *expansion, main Scheduler) {
	if exp.finally != nil {
		if exp.finally.IsComplete() {
			c.multi.absorb(exp.finally.Failures())
		} else {
			c.multi.Add(exp.finally, nil)
		}
	}
	if len(main.Failures()) > 0 {
		c.Complete(exp.compound, ErrSubtasksFailed)
	} else {
		c.final.WorkReady(exp.compound)
	}
}

// HasPending reports ready or blocked work anywhere in the composition,
// including finally phases that have not been installed yet.
func (c *Compound) HasPending() bool {
	return c.final.HasReady() || c.deferred > 0 || c.multi.HasPending()
}

// IsComplete reports whether the whole composition has settled.
func (c *Compound) IsComplete() bool {
	return !c.final.HasReady() && c.deferred == 0 && c.multi.IsComplete()
}

// Failures returns the combined failure list across all sub-runs, finally
// phases included.
func (c *Compound) Failures() []Failure {
	return c.multi.Failures()
}
