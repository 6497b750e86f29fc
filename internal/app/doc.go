// Package app encapsulates the application's dependencies, configuration,
// and lifecycle: logger construction, plan loading, work-graph building, and
// the execution run itself.
package app
