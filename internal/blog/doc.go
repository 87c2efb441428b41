// Package blog is the client of the remote blog service: posts, their
// authors and each author's posts.
//
// The same three fetches are exposed in three shapes:
//
//   - Service: blocking calls for use off the UI context (HTTPService is the
//     net/http implementation).
//   - CallService: callback registration, delivering exactly one outcome per
//     call on a chosen executor.
//   - Suspending: calls that suspend a dispatch task and run the request on
//     an I/O executor, so they are safe to call from the UI context.
package blog
