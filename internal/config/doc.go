// Package config defines the unified, format-agnostic representation of a
// build plan. The engine package translates parsed HCL into this model; the
// build package turns it into executable work units.
package config
