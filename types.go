package goSession

import (
	"context"
	"io"

	"github.com/MrEthical07/goSession/claims"
	internalevents "github.com/MrEthical07/goSession/internal/events"
)

// Claims is the decoded payload of interest from a bearer token. It is
// always a pure function of the current token: nil token, nil claims.
//
//	Docs: claims package
type Claims = claims.Claims

// Subject identifies the authenticated principal exposed to the rest of
// the application.
type Subject struct {
	ID   string
	Role string
}

// CredentialClient is the external collaborator contract the controller
// depends on. Implementations talk to the issuing backend; the controller
// never constructs HTTP requests itself.
//
// RefreshCredential exchanges a durable refresh mechanism (for example a
// cookie not owned by this library) for a new bearer token; it returns an
// empty token or an error on failure and must not panic into the core.
// InvalidateServerSide terminates the session server-side; it is called
// best-effort during logout and its failures are swallowed.
type CredentialClient interface {
	RefreshCredential(ctx context.Context) (string, error)
	InvalidateServerSide(ctx context.Context) error
}

// Event is a structured session lifecycle event emitted by the controller.
type Event = internalevents.Event

// EventType identifies a session lifecycle event.
type EventType = internalevents.Type

const (
	// EventAuthenticated is an exported constant used by the session controller.
	EventAuthenticated = internalevents.TypeAuthenticated
	// EventLoggedOut is an exported constant used by the session controller.
	EventLoggedOut = internalevents.TypeLoggedOut
	// EventTokenReplaced is an exported constant used by the session controller.
	EventTokenReplaced = internalevents.TypeTokenReplaced
	// EventIdleWarning is an exported constant used by the session controller.
	EventIdleWarning = internalevents.TypeIdleWarning
	// EventWarningExpired is an exported constant used by the session controller.
	EventWarningExpired = internalevents.TypeWarningExpired
	// EventSessionExtended is an exported constant used by the session controller.
	EventSessionExtended = internalevents.TypeSessionExtended
	// EventRefreshFailed is an exported constant used by the session controller.
	EventRefreshFailed = internalevents.TypeRefreshFailed
	// EventConfigChanged is an exported constant used by the session controller.
	EventConfigChanged = internalevents.TypeConfigChanged
)

// Logout reasons carried in [Event.Reason] on [EventLoggedOut].
const (
	// ReasonLogout marks an explicit local logout.
	ReasonLogout = internalevents.ReasonLogout
	// ReasonExpired marks a forced logout from token expiry.
	ReasonExpired = internalevents.ReasonExpired
	// ReasonIdle marks a forced logout from the idle timeout.
	ReasonIdle = internalevents.ReasonIdle
	// ReasonPeer marks a logout replayed from another instance.
	ReasonPeer = internalevents.ReasonPeer
)

// EventSink receives [Event] values from the controller's dispatcher.
type EventSink = internalevents.Sink

// NoOpSink is an [EventSink] that silently discards all events.
type NoOpSink = internalevents.NoOpSink

// ChannelSink is a buffered channel-based [EventSink].
type ChannelSink = internalevents.ChannelSink

// JSONWriterSink is an [EventSink] that writes JSON-encoded events to an
// [io.Writer], one object per line.
type JSONWriterSink = internalevents.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalevents.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalevents.NewJSONWriterSink(w)
}
