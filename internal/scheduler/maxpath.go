package scheduler

import "github.com/vk/taskforge/internal/dag"

// NewMaxPath builds an Ordered strategy whose cost for each item is the
// length of the longest chain of dependents hanging off it, in units of
// selfCost. Running high-cost items first shortens the critical path.
//
// Ties are broken by the item's discovery ordinal, which makes the order
// total: for distinct items a, b either a < b or b < a.
func NewMaxPath(info *dag.Info, selfCost int) *Ordered {
	costs := pathCosts(info, selfCost)
	return NewOrdered(func(a, b dag.Work) bool {
		ca, cb := costs[a], costs[b]
		if ca != cb {
			return ca < cb
		}
		return info.Ordinal(a) > info.Ordinal(b)
	})
}

// pathCosts memoizes cost(w) = selfCost + max(cost of dependents) over every
// item in a single post-order pass.
func pathCosts(info *dag.Info, selfCost int) map[dag.Work]int {
	costs := make(map[dag.Work]int, len(info.Nodes()))

	var cost func(w dag.Work) int
	cost = func(w dag.Work) int {
		if c, ok := costs[w]; ok {
			return c
		}
		c := selfCost
		for _, d := range info.Dependents(w) {
			if dc := selfCost + cost(d); dc > c {
				c = dc
			}
		}
		costs[w] = c
		return c
	}
	for _, w := range info.Nodes() {
		cost(w)
	}
	return costs
}
