package dag

// Run is the mutable, per-execution view of an Info. A single goroutine (the
// distributor's main loop) owns it; nothing here is synchronized.
//
// Invariants:
//   - an item is ready iff its remaining set is empty, at which point its key
//     is removed from the remaining map;
//   - an item's reverse entry is popped when it completes or is invalidated,
//     so later lookups observe absence.
type Run struct {
	remaining map[Work]workSet
	reverse   map[Work]workSet
}

// TakeInitialReady removes and returns every item whose dependency set is
// already empty: the starting points of the run.
func (r *Run) TakeInitialReady() []Work {
	var ready []Work
	for w, deps := range r.remaining {
		if len(deps) == 0 {
			ready = append(ready, w)
		}
	}
	for _, w := range ready {
		delete(r.remaining, w)
	}
	return ready
}

// PopDependents removes w's reverse entry and returns the items that were
// waiting on it. Returns nil if w was already popped.
func (r *Run) PopDependents(w Work) []Work {
	deps, ok := r.reverse[w]
	if !ok {
		return nil
	}
	delete(r.reverse, w)
	out := make([]Work, 0, len(deps))
	for d := range deps {
		out = append(out, d)
	}
	return out
}

// Satisfy removes dep from dependent's remaining set. If that empties the
// set, the dependent's key is removed and Satisfy reports true: the
// dependent is now ready.
func (r *Run) Satisfy(dependent, dep Work) bool {
	deps, ok := r.remaining[dependent]
	if !ok {
		return false
	}
	delete(deps, dep)
	if len(deps) > 0 {
		return false
	}
	delete(r.remaining, dependent)
	return true
}

// Clear invalidates w and, transitively, everything that depends on it.
// Cleared items never become ready. Re-clearing an already-cleared item is a
// no-op, which keeps the recursion finite on shared sub-graphs.
func (r *Run) Clear(w Work) {
	delete(r.remaining, w)
	deps, ok := r.reverse[w]
	if !ok {
		return
	}
	delete(r.reverse, w)
	for d := range deps {
		r.Clear(d)
	}
}

// HasBlocked reports whether any item is still waiting on dependencies.
func (r *Run) HasBlocked() bool {
	return len(r.remaining) > 0
}

// Settled reports whether every item has completed or been invalidated.
func (r *Run) Settled() bool {
	return len(r.reverse) == 0
}
