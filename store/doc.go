// Package store provides the durable token store shared by every running
// instance of the application, and the cross-instance change watcher.
//
// # Design
//
// The store is the single source of truth for "am I logged in": one token
// key, one idle-timeout key, last-write-wins. Values are mirrored in memory
// so reads never touch Redis; writes go mirror-first, then write-through
// with a published [Notice] in the same pipeline. Cross-instance
// coordination is message passing over pub/sub, never shared memory —
// subscribers replay each inbound notice through the same idempotent
// re-arming logic used for local changes.
//
// # Degraded mode
//
// A nil or unreachable Redis backend silently reduces the session to
// single-instance, memory-only operation. Losing durability or peer
// visibility must never block login, logout, or the local timers.
//
// # What this package must NOT do
//
//   - Decode tokens or schedule timers (controller concerns).
//   - Surface backend failures on write paths.
//   - Import goSession or any sibling package.
package store
