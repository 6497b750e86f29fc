package scheduler

import (
	"sort"

	"github.com/vk/taskforge/internal/dag"
)

// Strategy accepts items declared ready and yields up to k of them to run.
type Strategy interface {
	// WorkReady inserts w into the ready set.
	WorkReady(w dag.Work)
	// HasReady reports whether the ready set is non-empty.
	HasReady() bool
	// Next removes and returns up to max items. Selection is deterministic
	// given the strategy's order; the order among returned items is not
	// significant.
	Next(max int) []dag.Work
}

// Ordered is a Strategy that keeps the ready set sorted by a caller-supplied
// total order and always yields from the high end. The order must be total
// over distinct items (no two items may compare equal), otherwise distinct
// equal-cost items would collapse.
type Ordered struct {
	less  func(a, b dag.Work) bool
	ready []dag.Work // sorted ascending by less
}

// NewOrdered returns an Ordered strategy over the given total order.
func NewOrdered(less func(a, b dag.Work) bool) *Ordered {
	return &Ordered{less: less}
}

// WorkReady inserts w, keeping the ready slice sorted.
func (o *Ordered) WorkReady(w dag.Work) {
	i := sort.Search(len(o.ready), func(i int) bool { return o.less(w, o.ready[i]) })
	o.ready = append(o.ready, nil)
	copy(o.ready[i+1:], o.ready[i:])
	o.ready[i] = w
}

// HasReady reports whether any work is ready.
func (o *Ordered) HasReady() bool {
	return len(o.ready) > 0
}

// Next pops up to max items from the high end of the order.
func (o *Ordered) Next(max int) []dag.Work {
	if max <= 0 || len(o.ready) == 0 {
		return nil
	}
	n := max
	if n > len(o.ready) {
		n = len(o.ready)
	}
	cut := len(o.ready) - n
	out := make([]dag.Work, n)
	copy(out, o.ready[cut:])
	for i := cut; i < len(o.ready); i++ {
		o.ready[i] = nil
	}
	o.ready = o.ready[:cut]
	return out
}

// fifo is the minimal Strategy used for compound items waiting on their
// final slot: plain arrival order, no cost metric.
type fifo struct {
	ready []dag.Work
}

func (f *fifo) WorkReady(w dag.Work) { f.ready = append(f.ready, w) }

func (f *fifo) HasReady() bool { return len(f.ready) > 0 }

func (f *fifo) Next(max int) []dag.Work {
	if max <= 0 || len(f.ready) == 0 {
		return nil
	}
	n := max
	if n > len(f.ready) {
		n = len(f.ready)
	}
	out := make([]dag.Work, n)
	copy(out, f.ready[:n])
	f.ready = append(f.ready[:0], f.ready[n:]...)
	return out
}
