package goSession

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrEthical07/goSession/claims"
	"github.com/MrEthical07/goSession/internal/events"
	"github.com/MrEthical07/goSession/internal/expiry"
	"github.com/MrEthical07/goSession/internal/idle"
	internalmetrics "github.com/MrEthical07/goSession/internal/metrics"
	"github.com/MrEthical07/goSession/store"
)

// Controller is the session lifecycle facade: it owns the token store, the
// expiry scheduler, the idle monitor, and the cross-instance watcher, and is
// the only object the rest of the application talks to.
//
// Construct exactly one Controller per running instance via [Builder.Build],
// inject it where the current subject or login/logout operations are needed,
// and call [Controller.Start] once at application start. All methods are
// safe for concurrent use.
type Controller struct {
	cfg     Config
	store   *store.Store
	client  CredentialClient
	events  *events.Dispatcher
	metrics *Metrics

	mu       sync.Mutex
	state    State
	loginGen uint64
	claims   *Claims
	expiry   *expiry.Scheduler
	idle     *idle.Monitor
	watcher  *store.Watcher
	started  bool
	closed   bool
}

// Start restores a persisted session, arms timers for it, and begins
// watching for cross-instance changes. A store restore failure degrades to
// memory-only operation rather than failing startup; only a closed
// controller errors.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = true

	// Best-effort: an unreachable backend must not block the session.
	_ = c.store.Restore(ctx)

	var restored *Subject
	if tok := c.store.Token(); tok != nil {
		c.authenticateLocked(*tok)
		subj := c.subjectLocked()
		restored = &subj
	}

	c.watcher = c.store.Watch(context.Background(), store.WatchHooks{
		OnTokenChanged:  c.peerTokenChanged,
		OnConfigChanged: c.peerConfigChanged,
		OnExplicitEvent: c.peerExplicitEvent,
	})
	c.mu.Unlock()

	if restored != nil {
		c.emit(events.Event{Type: events.TypeAuthenticated, SubjectID: restored.ID, Role: restored.Role})
	}

	return nil
}

// Login writes the token as the current credential, decodes its claims,
// arms the expiry scheduler and the idle monitor, and notifies observers.
// A malformed token still authenticates — claims stay nil and no expiry
// timer can be armed, but the session is not proactively rejected.
func (c *Controller) Login(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}

	c.store.SetToken(ctx, token)
	c.authenticateLocked(token)
	subj := c.subjectLocked()
	c.mu.Unlock()

	c.metrics.Inc(internalmetrics.MetricLogin)
	c.emit(events.Event{Type: events.TypeAuthenticated, SubjectID: subj.ID, Role: subj.Role})

	return nil
}

// Logout invalidates the session server-side best-effort, then
// unconditionally clears the durable store and tears down all timers. A
// network failure must never prevent local logout: local consistency wins
// over server consistency on the path that removes access.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.state == StateLoggedOut {
		c.mu.Unlock()
		return nil
	}
	subj := c.subjectLocked()
	gen := c.loginGen
	c.mu.Unlock()

	var invalidateErr string
	if c.client != nil {
		if err := c.client.InvalidateServerSide(ctx); err != nil {
			invalidateErr = err.Error()
		}
	}

	c.mu.Lock()
	if c.state == StateLoggedOut || c.loginGen != gen {
		// While we were on the wire another path either logged out (timer,
		// peer) or started a brand-new session; this logout targeted the old
		// one and must not tear the new one down.
		c.mu.Unlock()
		return nil
	}
	c.teardownLocked()
	c.mu.Unlock()

	c.store.Clear(ctx)
	c.metrics.Inc(internalmetrics.MetricLogout)
	c.emit(events.Event{
		Type:      events.TypeLoggedOut,
		Reason:    events.ReasonLogout,
		SubjectID: subj.ID,
		Role:      subj.Role,
		Error:     invalidateErr,
	})

	return nil
}

// ReplaceToken supersedes the current token and re-arms the expiry
// scheduler from the new claims. It deliberately does not reset the idle
// clock: idle state is orthogonal to token identity.
func (c *Controller) ReplaceToken(ctx context.Context, token string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.state == StateLoggedOut {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}

	c.store.SetToken(ctx, token)
	c.adoptTokenLocked(token)
	subj := c.subjectLocked()
	c.mu.Unlock()

	c.metrics.Inc(internalmetrics.MetricTokenReplaced)
	c.emit(events.Event{Type: events.TypeTokenReplaced, SubjectID: subj.ID, Role: subj.Role})

	return nil
}

// RefreshAndExtend asks the credential client for a new token. On success
// the new token replaces the current one, any active idle warning is
// cleared, and the idle clock resets — an explicit extension is user
// activity. On failure the session state is left completely unchanged; only
// the independent expiry and idle timers can force a logout.
//
// The existing timers keep running while the refresh is on the wire: a slow
// refresh does not pause the idle or expiry clocks.
func (c *Controller) RefreshAndExtend(ctx context.Context) error {
	if c.client == nil {
		return ErrRefreshUnavailable
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.state == StateLoggedOut {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	gen := c.loginGen
	c.mu.Unlock()

	start := time.Now()
	token, err := c.client.RefreshCredential(ctx)
	c.metrics.Observe(internalmetrics.MetricRefreshLatency, time.Since(start))

	if err != nil || token == "" {
		c.metrics.Inc(internalmetrics.MetricRefreshFailure)
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		c.emit(events.Event{Type: events.TypeRefreshFailed, Error: msg})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		}
		return ErrRefreshFailed
	}

	c.mu.Lock()
	if c.closed || c.state == StateLoggedOut || c.loginGen != gen {
		// The session this refresh belonged to ended or was superseded while
		// the request was in flight; the stale token must not land on it.
		c.mu.Unlock()
		return ErrNotAuthenticated
	}

	c.store.SetToken(ctx, token)
	c.adoptTokenLocked(token)
	if c.idle != nil {
		c.idle.ClearWarning()
		c.idle.Touch()
	}
	c.state = transition(c.state, inputWarningCleared)
	subj := c.subjectLocked()
	c.mu.Unlock()

	c.store.Publish(ctx, store.KindExtend)
	c.metrics.Inc(internalmetrics.MetricRefreshSuccess)
	c.emit(events.Event{Type: events.TypeSessionExtended, SubjectID: subj.ID, Role: subj.Role})

	return nil
}

// Touch records user activity: pointer movement or press, key press, touch
// start, scroll, and — distinctly — a became-visible-again transition after
// the application was backgrounded (background throttling otherwise turns
// into a false forced logout). The host maps its own input signals onto
// this single method.
func (c *Controller) Touch() {
	c.mu.Lock()
	m := c.idle
	c.mu.Unlock()

	if m != nil {
		m.Touch()
	}
}

// SetIdleTimeout persists a new idle window to the shared store (all
// instances observe it) and re-arms the local monitor. Zero disables idle
// monitoring everywhere.
func (c *Controller) SetIdleTimeout(ctx context.Context, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: negative idle timeout", ErrInvalidConfig)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	c.store.SetIdleTimeout(ctx, d)
	if c.idle != nil {
		c.idle.Reconfigure(d)
		if d <= 0 {
			c.state = transition(c.state, inputWarningCleared)
		}
	}
	c.mu.Unlock()

	c.emit(events.Event{Type: events.TypeConfigChanged, RemainingMS: d.Milliseconds()})

	return nil
}

// Token returns the current bearer token, or false when logged out. Callers
// must treat the value as opaque and re-read it per use: a silent refresh or
// a peer instance can supersede it at any time.
func (c *Controller) Token() (string, bool) {
	tok := c.store.Token()
	if tok == nil {
		return "", false
	}

	c.mu.Lock()
	loggedOut := c.state == StateLoggedOut
	c.mu.Unlock()
	if loggedOut {
		return "", false
	}
	return *tok, true
}

// Subject returns the authenticated principal, or false when logged out or
// when the current token's claims could not be decoded.
func (c *Controller) Subject() (Subject, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateLoggedOut || c.claims == nil {
		return Subject{}, false
	}
	return c.subjectLocked(), true
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Warning reports whether an idle warning is active and its remaining
// countdown, for a UI layer rendering the dialog.
func (c *Controller) Warning() (bool, time.Duration) {
	c.mu.Lock()
	m := c.idle
	c.mu.Unlock()

	if m == nil {
		return false, 0
	}
	return m.Warning()
}

// MetricsSnapshot returns a point-in-time deep copy of all metrics.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// EventsDropped returns how many events the dispatcher dropped under
// backpressure.
func (c *Controller) EventsDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.events.Dropped()
}

// Close disposes all timers and goroutines without logging out: the
// persisted token survives for the next start. Close is idempotent.
func (c *Controller) Close() {
	if c == nil {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	watcher := c.watcher
	c.watcher = nil
	c.teardownLocked()
	c.mu.Unlock()

	if watcher != nil {
		watcher.Close()
	}
	c.events.Close()
}

/*
====================================
INTERNAL ORCHESTRATION
====================================
*/

// authenticateLocked makes token the current credential and arms both
// schedulers. Caller holds c.mu.
func (c *Controller) authenticateLocked(token string) {
	c.loginGen++
	c.adoptTokenLocked(token)
	c.state = StateAuthenticated
	c.startIdleLocked()
}

// adoptTokenLocked re-derives claims and re-arms the expiry scheduler.
// Idle state is untouched. Caller holds c.mu.
func (c *Controller) adoptTokenLocked(token string) {
	c.claims = claims.Decode(token)
	if c.claims == nil {
		c.metrics.Inc(internalmetrics.MetricDecodeFailure)
	}
	c.armExpiryLocked()
}

func (c *Controller) armExpiryLocked() {
	var expiresAt time.Time
	if c.claims.HasExpiry() {
		expiresAt = c.claims.ExpiresAt
	}
	c.expiry.Arm(expiresAt, c.onExpiry)
}

// startIdleLocked replaces any previous monitor with a fresh one. The
// shared store's idle-timeout wins over the local default so every
// instance behaves identically. Caller holds c.mu.
func (c *Controller) startIdleLocked() {
	if c.idle != nil {
		c.idle.Dispose()
	}

	timeout := c.cfg.Idle.Timeout
	if d, ok := c.store.IdleTimeout(); ok {
		timeout = d
	}

	c.idle = idle.Start(idle.Config{
		Timeout:     timeout,
		WarningLead: c.cfg.Idle.WarningLead,
		Slack:       c.cfg.Idle.Slack,
		Tick:        c.cfg.Idle.Tick,
	}, idle.Callbacks{
		OnWarning:        c.onIdleWarning,
		OnWarningExpired: c.onWarningExpired,
		OnForcedLogout:   c.onIdleForcedLogout,
	})
}

// teardownLocked cancels every outstanding timer so no leaked callback can
// fire against a torn-down session. Caller holds c.mu.
func (c *Controller) teardownLocked() {
	c.expiry.Dispose()
	if c.idle != nil {
		c.idle.Dispose()
		c.idle = nil
	}
	c.claims = nil
	c.state = transition(c.state, inputLogout)
}

func (c *Controller) subjectLocked() Subject {
	if c.claims == nil {
		return Subject{}
	}
	return Subject{ID: c.claims.SubjectID, Role: c.claims.Role}
}

func (c *Controller) emit(ev events.Event) {
	ev.Timestamp = time.Now()
	c.events.Emit(context.Background(), ev)
}

/*
====================================
TIMER CALLBACKS
====================================
*/

func (c *Controller) onExpiry() {
	c.forceLogout(events.ReasonExpired, internalmetrics.MetricForcedLogoutExpiry)
}

func (c *Controller) onIdleForcedLogout() {
	c.forceLogout(events.ReasonIdle, internalmetrics.MetricForcedLogoutIdle)
}

func (c *Controller) forceLogout(reason string, metric MetricID) {
	c.mu.Lock()
	if c.closed || c.state == StateLoggedOut {
		c.mu.Unlock()
		return
	}
	subj := c.subjectLocked()
	c.teardownLocked()
	c.mu.Unlock()

	// Clearing the persisted credential propagates the logout to peers.
	c.store.Clear(context.Background())
	c.metrics.Inc(metric)
	c.emit(events.Event{Type: events.TypeLoggedOut, Reason: reason, SubjectID: subj.ID, Role: subj.Role})
}

func (c *Controller) onIdleWarning(remaining time.Duration) {
	c.mu.Lock()
	if c.closed || c.state != StateAuthenticated {
		c.mu.Unlock()
		return
	}
	c.state = transition(c.state, inputWarning)
	subj := c.subjectLocked()
	c.mu.Unlock()

	c.store.Publish(context.Background(), store.KindWarning)
	c.metrics.Inc(internalmetrics.MetricIdleWarning)
	c.emit(events.Event{
		Type:        events.TypeIdleWarning,
		SubjectID:   subj.ID,
		Role:        subj.Role,
		RemainingMS: remaining.Milliseconds(),
	})
}

// onWarningExpired fires when a visible warning's countdown reaches zero
// without an explicit extension. The underlying session may well still be
// alive (ordinary activity re-arms timers without dismissing the warning);
// this only drops the Warned sub-state.
func (c *Controller) onWarningExpired() {
	c.mu.Lock()
	if c.closed || c.state != StateWarned {
		c.mu.Unlock()
		return
	}
	c.state = transition(c.state, inputWarningCleared)
	c.mu.Unlock()

	c.metrics.Inc(internalmetrics.MetricWarningExpired)
	c.emit(events.Event{Type: events.TypeWarningExpired})
}

/*
====================================
CROSS-INSTANCE HOOKS
====================================
*/

// peerTokenChanged replays another instance's token write locally: a clear
// logs this instance out, a new token is adopted like a silent refresh, and
// a token arriving while logged out authenticates (the peer logged in).
func (c *Controller) peerTokenChanged(token *string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if token == nil {
		if c.state == StateLoggedOut {
			c.mu.Unlock()
			return
		}
		subj := c.subjectLocked()
		c.teardownLocked()
		c.mu.Unlock()

		c.metrics.Inc(internalmetrics.MetricPeerTokenChange)
		c.emit(events.Event{
			Type:      events.TypeLoggedOut,
			Reason:    events.ReasonPeer,
			SubjectID: subj.ID,
			Role:      subj.Role,
			Peer:      true,
		})
		return
	}

	wasLoggedOut := c.state == StateLoggedOut
	if wasLoggedOut {
		c.authenticateLocked(*token)
	} else {
		c.adoptTokenLocked(*token)
	}
	subj := c.subjectLocked()
	c.mu.Unlock()

	c.metrics.Inc(internalmetrics.MetricPeerTokenChange)
	if wasLoggedOut {
		c.emit(events.Event{Type: events.TypeAuthenticated, SubjectID: subj.ID, Role: subj.Role, Peer: true})
	} else {
		c.emit(events.Event{Type: events.TypeTokenReplaced, SubjectID: subj.ID, Role: subj.Role, Peer: true})
	}
}

// peerConfigChanged replays a peer's idle-timeout change through the same
// arming logic a local change uses.
func (c *Controller) peerConfigChanged(d time.Duration) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.idle != nil {
		c.idle.Reconfigure(d)
		if d <= 0 {
			c.state = transition(c.state, inputWarningCleared)
		}
	}
	c.mu.Unlock()

	c.metrics.Inc(internalmetrics.MetricPeerConfigChange)
	c.emit(events.Event{Type: events.TypeConfigChanged, RemainingMS: d.Milliseconds(), Peer: true})
}

// peerExplicitEvent handles broadcast-only notices. An extend on any
// instance dismisses the warning on all of them; peer warnings carry no
// local action (each instance runs its own idle clock).
func (c *Controller) peerExplicitEvent(kind store.Kind) {
	if kind != store.KindExtend {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.idle != nil {
		c.idle.ClearWarning()
		c.idle.Touch()
	}
	cleared := c.state == StateWarned
	c.state = transition(c.state, inputWarningCleared)
	subj := c.subjectLocked()
	c.mu.Unlock()

	if cleared {
		c.emit(events.Event{Type: events.TypeSessionExtended, SubjectID: subj.ID, Role: subj.Role, Peer: true})
	}
}
