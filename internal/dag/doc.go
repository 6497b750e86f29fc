// Package dag holds the dependency bookkeeping for a run: the immutable
// forward/reverse adjacency snapshot built from a root work item, and the
// mutable per-run clone that tracks outstanding dependencies as work
// completes or fails.
//
// The package knows nothing about scheduling policy or workers; those live
// in internal/scheduler and internal/executor.
package dag
