// Package orchestration runs the post → author → author's posts chain and
// delivers its summary to a presentation sink. It decouples the chain logic
// from presentation via the Sink interface.
//
// Three interchangeable variants are provided:
//
//   - CallbackChain registers nested callbacks, one per fetch, and tracks its
//     progress with an explicit state machine.
//   - StructuredChain runs a sequential task on a background executor and
//     hops to the UI executor only to write the result.
//   - MainSafeChain runs a sequential task directly on the UI executor. Its
//     fetches suspend the task instead of blocking the executor.
//
// Every variant writes to the sink from the UI executor, and only after all
// three fetches have succeeded.
package orchestration
