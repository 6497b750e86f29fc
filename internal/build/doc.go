// Package build turns a plan model into the work units the executor runs:
// plain tasks become shell-command units, staged tasks become compound units
// that expand into a stage sub-graph plus a finally sub-graph.
package build
