// Package dispatch provides the execution contexts used by postchain and the
// primitives that move work between them.
//
// There are two kinds of context:
//
//   - Loop: a single goroutine draining a FIFO queue. It is the UI-affine
//     context: the presentation sink is only ever written from it.
//   - Pool: a background context where each task runs on its own goroutine,
//     bounded by a weighted semaphore.
//
// Launch starts a sequential task confined to a home Executor. The task body
// is ordinary straight-line Go code; it only gives its executor back at
// suspension points (Suspend and WithContext). While suspended, the home
// executor keeps processing other work, so a task launched on a Loop never
// stalls the loop while it waits on I/O or on a CPU-bound computation.
//
// Every hop names its target executor explicitly; there is no notion of a
// "current" executor.
package dispatch
