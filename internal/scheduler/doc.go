// Package scheduler decides what runs next. It separates "what can run"
// from "how to run it": the executor asks a Scheduler for up to k items,
// reports each completion back, and never touches dependency state itself.
//
// The pieces compose bottom-up:
//
//   - Strategy: holds the ready set and picks items under a cost order.
//     Ordered is the sorted-set implementation; NewMaxPath wires it with
//     longest-path costs so critical-path work is preferred.
//   - Dag: binds a dag.Run and a Strategy into the Scheduler contract for
//     one graph, including failure cascade.
//   - Multi: composes several live sub-schedulers, routing completions to
//     the owning sub-run.
//   - Compound: wraps a Multi so that a CompoundWork item expands into a
//     sub-scheduler plus a mandatory finally sub-scheduler.
//
// All methods are called from a single goroutine (the distributor's main
// loop); no scheduler state is synchronized.
package scheduler
