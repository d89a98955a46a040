// Package goSession manages the lifecycle of an authenticated session on a
// single running instance: it holds the current bearer token, decodes its
// claims without verifying the signature, forces logout at token expiry,
// enforces an idle timeout with a pre-logout warning, and keeps multiple
// instances of the same application consistent through a shared Redis store.
//
// The package is designed for long-lived processes: Controller methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build] and [Controller.Start].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Controller], [Builder],
// [Config], and value types (Subject, Event, MetricsSnapshot, etc.). All
// internal coordination — expiry scheduling, idle monitoring, event
// dispatch — lives under internal/ and is never exported. The durable store
// and claims decoding live in their own importable sub-packages because
// middleware and host code need them directly.
//
// # What this package must NOT do
//
//   - Verify token signatures or make authorization decisions. The server
//     remains the sole authority on token validity; claims decoded here are
//     advisory scheduling input only.
//   - Acquire tokens or talk to the issuing backend directly. All network
//     credential operations go through the injected [CredentialClient].
//   - Keep timers or goroutines alive while logged out. LoggedOut means
//     zero armed timers.
//
// # Failure contract
//
// An unreachable store degrades the controller to memory-only,
// single-instance operation; it never blocks login, logout, or timer
// behavior. A failing server-side invalidation never prevents local logout.
package goSession
