package events

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Type identifies a session lifecycle event.
type Type string

const (
	// TypeAuthenticated is emitted when a session becomes authenticated
	// (login or restore of a persisted token).
	TypeAuthenticated Type = "authenticated"
	// TypeLoggedOut is emitted on any transition to the logged-out state;
	// Reason distinguishes explicit logout from forced paths.
	TypeLoggedOut Type = "logged_out"
	// TypeTokenReplaced is emitted when a silent refresh or a peer instance
	// supersedes the current token.
	TypeTokenReplaced Type = "token_replaced"
	// TypeIdleWarning is emitted when the idle warning timer fires;
	// RemainingMS carries the countdown budget.
	TypeIdleWarning Type = "idle_warning"
	// TypeWarningExpired is emitted when a visible warning's countdown
	// reaches zero without an explicit extension.
	TypeWarningExpired Type = "warning_expired"
	// TypeSessionExtended is emitted after a successful refresh-and-extend.
	TypeSessionExtended Type = "session_extended"
	// TypeRefreshFailed is emitted when a refresh attempt fails; the session
	// itself is left unchanged.
	TypeRefreshFailed Type = "refresh_failed"
	// TypeConfigChanged is emitted when the idle-timeout configuration
	// changes, locally or on a peer instance.
	TypeConfigChanged Type = "config_changed"
)

// Logout reasons carried in [Event.Reason].
const (
	ReasonLogout  = "logout"
	ReasonExpired = "token_expired"
	ReasonIdle    = "idle_timeout"
	ReasonPeer    = "peer_logout"
)

// Event is the canonical session lifecycle event model used by internal
// dispatching and root APIs.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	Type        Type      `json:"type"`
	SubjectID   string    `json:"subject_id,omitempty"`
	Role        string    `json:"role,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	RemainingMS int64     `json:"remaining_ms,omitempty"`
	Peer        bool      `json:"peer,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Sink receives emitted session events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops session events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes session events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
