// Package executor owns the worker pool and the driving loop. The main loop
// is the sole mutator of scheduler and dependency state; workers only run the
// action and publish a completion record onto the completion channel. That
// one-way message passing is what keeps the scheduler single-threaded.
package executor
