package dag

// workSet is a presence set over work items.
type workSet map[Work]struct{}

func (s workSet) clone() workSet {
	out := make(workSet, len(s))
	for w := range s {
		out[w] = struct{}{}
	}
	return out
}

// Info is the immutable adjacency snapshot of a work graph. It is built once
// by a single traversal from the roots and shared by every Run cloned from it.
type Info struct {
	// forward maps each item to its full dependency set.
	forward map[Work]workSet
	// reverse maps each item to the items that depend on it.
	reverse map[Work]workSet
	// ordinal records discovery order, giving every item a stable position
	// used by strategies to break cost ties into a total order.
	ordinal map[Work]int
	// order lists all items in discovery order.
	order []Work
}

// NewInfo traverses the graph reachable from the given roots and returns its
// adjacency snapshot. Items reachable via multiple paths are visited once.
// The traversal does not detect cycles; callers promise acyclicity.
func NewInfo(roots ...Work) *Info {
	info := &Info{
		forward: make(map[Work]workSet),
		reverse: make(map[Work]workSet),
		ordinal: make(map[Work]int),
	}

	var visit func(w Work)
	visit = func(w Work) {
		if _, seen := info.forward[w]; seen {
			return
		}
		info.ordinal[w] = len(info.order)
		info.order = append(info.order, w)

		deps := w.Dependencies()
		fwd := make(workSet, len(deps))
		info.forward[w] = fwd
		if _, ok := info.reverse[w]; !ok {
			info.reverse[w] = make(workSet)
		}
		for _, d := range deps {
			fwd[d] = struct{}{}
			visit(d)
			info.reverse[d][w] = struct{}{}
		}
	}
	for _, r := range roots {
		visit(r)
	}
	return info
}

// Nodes returns every discovered item in discovery order.
func (i *Info) Nodes() []Work {
	return i.order
}

// Ordinal returns the stable discovery position of w.
func (i *Info) Ordinal(w Work) int {
	return i.ordinal[w]
}

// Dependents returns the items that directly depend on w.
func (i *Info) Dependents(w Work) []Work {
	out := make([]Work, 0, len(i.reverse[w]))
	for d := range i.reverse[w] {
		out = append(out, d)
	}
	return out
}

// NewRun deep-clones the adjacency maps into a fresh mutable Run.
func (i *Info) NewRun() *Run {
	run := &Run{
		remaining: make(map[Work]workSet, len(i.forward)),
		reverse:   make(map[Work]workSet, len(i.reverse)),
	}
	for w, deps := range i.forward {
		run.remaining[w] = deps.clone()
	}
	for w, deps := range i.reverse {
		run.reverse[w] = deps.clone()
	}
	return run
}
