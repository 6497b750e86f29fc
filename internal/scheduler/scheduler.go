package scheduler

import "github.com/vk/taskforge/internal/dag"

// Failure is the terminal record for an item whose action returned an error.
// Items invalidated because a transitive dependency failed are dropped
// silently and never appear in a failure list.
type Failure struct {
	Work    dag.Work
	Message string
}

// Scheduler is the runtime contract between the distributor and a graph.
type Scheduler interface {
	// Next removes and returns up to max items that may run now.
	Next(max int) []dag.Work
	// Complete reports the result of a previously yielded item. A nil error
	// unblocks dependents; a non-nil error records a Failure and invalidates
	// every transitive dependent.
	Complete(w dag.Work, err error)
	// HasPending reports whether anything is ready or still blocked on
	// in-flight work.
	HasPending() bool
	// IsComplete reports whether every item has completed or been
	// invalidated and nothing is ready.
	IsComplete() bool
	// Failures returns the accumulated failure records.
	Failures() []Failure
}

// Dag binds one dag.Run and a Strategy into a Scheduler.
type Dag struct {
	run      *dag.Run
	strategy Strategy
	failures []Failure
}

// NewDag seeds the strategy with the graph's starting points (items with no
// outstanding dependencies) and returns the scheduler.
func NewDag(info *dag.Info, strategy Strategy) *Dag {
	s := &Dag{
		run:      info.NewRun(),
		strategy: strategy,
	}
	for _, w := range s.run.TakeInitialReady() {
		s.strategy.WorkReady(w)
	}
	return s
}

// Next delegates to the strategy.
func (s *Dag) Next(max int) []dag.Work {
	return s.strategy.Next(max)
}

// Complete settles w. On success every dependent whose last outstanding
// dependency was w becomes ready; on failure w is recorded and its
// transitive dependents are cleared.
func (s *Dag) Complete(w dag.Work, err error) {
	if err != nil {
		s.failures = append(s.failures, Failure{Work: w, Message: err.Error()})
		s.run.Clear(w)
		return
	}
	for _, dependent := range s.run.PopDependents(w) {
		if s.run.Satisfy(dependent, w) {
			s.strategy.WorkReady(dependent)
		}
	}
}

// HasPending reports ready or blocked work. Note the asymmetry with
// IsComplete: between a dependent's last prerequisite completing and the
// strategy yielding it, the scheduler is not complete but has work ready.
func (s *Dag) HasPending() bool {
	return s.strategy.HasReady() || s.run.HasBlocked()
}

// IsComplete reports whether every item has settled.
func (s *Dag) IsComplete() bool {
	return !s.strategy.HasReady() && s.run.Settled()
}

// Failures returns the directly-failed items, in completion order.
func (s *Dag) Failures() []Failure {
	return s.failures
}
