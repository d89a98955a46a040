// Package claims provides total, verification-free decoding of bearer token
// payloads into the fields the session lifecycle cares about.
//
// # Design
//
// [Decode] runs on every token read, including possibly-corrupted values
// persisted by an older application version, so it must never panic and never
// return an error: malformed input yields nil. Signature verification is the
// issuing server's responsibility — this package only reads the token's
// self-describing payload (subject, role, expiry).
//
// # What this package must NOT do
//
//   - Verify signatures or reject expired tokens (scheduling is the
//     controller's job).
//   - Import goSession or any sibling package.
package claims
