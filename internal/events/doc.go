// Package events provides async session lifecycle event dispatch
// (Dispatcher + Sink implementations) for goSession observability.
//
// The dispatcher decouples timer callbacks from sink latency: a slow sink
// must never delay a forced logout or an expiry firing. Backpressure is
// configurable (block with context, or drop and count).
//
// # What this package must NOT do
//
//   - Import goSession or any sibling package.
//   - Block the emit path when DropIfFull is set.
package events
