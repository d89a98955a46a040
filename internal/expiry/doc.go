// Package expiry schedules the forced logout that fires when the current
// bearer token's embedded expiry passes, independent of user activity.
//
// # What this package must NOT do
//
//   - Inspect or decode tokens (the controller passes the decoded instant).
//   - Import goSession or any sibling package.
package expiry
