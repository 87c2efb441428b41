// Package compute runs a CPU-bound task off the UI context: generating a
// large random prime. It is used to show that the UI context stays
// responsive while the work runs on a background executor.
package compute
