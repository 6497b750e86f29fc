package scheduler

import (
	"fmt"

	"github.com/vk/taskforge/internal/dag"
)

// subRun is one live sub-scheduler plus the opaque tag its creator attached.
type subRun struct {
	s   Scheduler
	tag any
}

// Multi composes any number of live sub-schedulers. It records which sub-run
// yielded each item so completions route back to the owner, and removes a
// sub-run once it is complete, draining its failures into the combined list.
type Multi struct {
	runs     []*subRun
	cursor   int
	owners   map[dag.Work]*subRun
	failures []Failure
}

// NewMulti returns an empty composition.
func NewMulti() *Multi {
	return &Multi{owners: make(map[dag.Work]*subRun)}
}

// Add installs s as a live sub-run with the given tag. The caller must not
// add a scheduler that is already complete; it would never receive a
// completion and so would never be removed.
func (m *Multi) Add(s Scheduler, tag any) {
	m.runs = append(m.runs, &subRun{s: s, tag: tag})
}

// Next round-robins across the live sub-runs, accumulating up to max items
// and recording each item's owner. The rotation point advances every call so
// no sub-run can starve the others.
func (m *Multi) Next(max int) []dag.Work {
	var out []dag.Work
	n := len(m.runs)
	for i := 0; i < n && len(out) < max; i++ {
		r := m.runs[(m.cursor+i)%n]
		for _, w := range r.s.Next(max - len(out)) {
			m.owners[w] = r
			out = append(out, w)
		}
	}
	if n > 0 {
		m.cursor = (m.cursor + 1) % n
	}
	return out
}

// Complete routes the result to the owning sub-run and discards the
// finished-sub-run hook. Compound uses completeWork directly.
func (m *Multi) Complete(w dag.Work, err error) {
	m.completeWork(w, err)
}

// completeWork routes the result to the owning sub-run. If that sub-run
// became complete it is removed, its failures are drained into the combined
// list, and it is returned with its tag so the caller can act on it.
func (m *Multi) completeWork(w dag.Work, err error) (Scheduler, any, bool) {
	r, ok := m.owners[w]
	if !ok {
		panic(fmt.Sprintf("scheduler: completion for unowned work %v", w))
	}
	delete(m.owners, w)
	r.s.Complete(w, err)
	if !r.s.IsComplete() {
		return nil, nil, false
	}
	m.failures = append(m.failures, r.s.Failures()...)
	for i, run := range m.runs {
		if run == r {
			m.runs = append(m.runs[:i], m.runs[i+1:]...)
			break
		}
	}
	return r.s, r.tag, true
}

// absorb folds failures that bypassed a live sub-run (e.g. an expansion that
// finished inline) into the combined list.
func (m *Multi) absorb(fails []Failure) {
	m.failures = append(m.failures, fails...)
}

// HasPending reports whether any sub-run has pending work.
func (m *Multi) HasPending() bool {
	for _, r := range m.runs {
		if r.s.HasPending() {
			return true
		}
	}
	return false
}

// IsComplete reports whether every sub-run is complete. Finished sub-runs
// are removed as they complete, so normally this means none remain.
func (m *Multi) IsComplete() bool {
	for _, r := range m.runs {
		if !r.s.IsComplete() {
			return false
		}
	}
	return true
}

// Failures returns the combined list: drained sub-runs plus live ones.
func (m *Multi) Failures() []Failure {
	out := make([]Failure, 0, len(m.failures))
	out = append(out, m.failures...)
	for _, r := range m.runs {
		out = append(out, r.s.Failures()...)
	}
	return out
}
