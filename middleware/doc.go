// Package middleware exposes HTTP adapters built on top of
// goSession.Controller: an outbound [Transport] that attaches the current
// bearer token to every request, and inbound guards that treat requests as
// user activity and expose the authenticated subject to handlers.
//
// # Adapters
//
//   - [Transport] — http.RoundTripper injecting "Authorization: Bearer",
//     touching the idle clock per request, with one silent refresh-and-retry
//     on a 401 response.
//   - [Activity] — marks every inbound request as user activity.
//   - [RequireSession] — rejects requests while logged out and injects the
//     subject into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Controller calls. It does NOT
// implement session logic itself — token storage, refresh, and timer
// decisions are all delegated to the Controller.
//
// # What this package must NOT do
//
//   - Decode or verify tokens (the claims package and the server own that).
//   - Retry a 401 more than once per request (no refresh loops).
//   - Access the durable store directly (the Controller handles I/O).
package middleware
