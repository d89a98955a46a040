// Package idle detects user inactivity and drives the idle warning and the
// idle forced logout.
//
// # Design
//
// The monitor derives two one-shot timers from the configured idle window:
// a warning at (window - lead) and a forced logout at (window + slack).
// Every activity touch cancels and re-arms both, so timers never accumulate.
// The forced-logout path re-validates the last-activity timestamp before
// calling back, converting timer-firing races into no-ops.
//
// # Architecture boundaries
//
// This package owns activity bookkeeping and timer geometry only. What
// counts as an activity signal (pointer movement, key press, visibility
// regained, outbound API call) is the host application's decision — it calls
// [Monitor.Touch].
//
// # What this package must NOT do
//
//   - Decide session policy (the controller maps callbacks to state).
//   - Import goSession or any sibling package.
package idle
