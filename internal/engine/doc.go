// Package engine loads plan files: it parses and decodes HCL, evaluates
// `run` expressions against the plan's variables, and translates the result
// into the format-agnostic config model, validating references as it goes.
package engine
