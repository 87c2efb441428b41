// Package metrics records fetch and chain outcomes for Prometheus and takes
// runtime snapshots for the interactive status line.
package metrics
