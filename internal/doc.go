// Package internal groups coordination machinery that is intentionally
// private to goSession.
//
// # Sub-packages
//
//   - events — async session event dispatch (Dispatcher + Sink implementations)
//   - expiry — single-shot token-expiry scheduler with grace and re-arm
//   - idle — idle-activity monitor: warning timer, countdown, forced logout
//   - metrics — lock-free counters and latency histograms
//
// # What this package must NOT do
//
//   - Export types that appear in the public goSession API (the root package
//     re-exports aliases where needed).
//   - Be imported by any package outside the goSession module.
package internal
