package idle

import (
	"sync"
	"time"
)

const (
	// DefaultWarningLead is how long before the forced logout the warning
	// fires, and therefore the warning countdown's budget.
	DefaultWarningLead = time.Minute
	// DefaultSlack delays the forced-logout timer slightly past the idle
	// window so a touch landing exactly on the deadline wins.
	DefaultSlack = 250 * time.Millisecond
	// DefaultTick is the countdown reporting interval.
	DefaultTick = time.Second
)

// Config controls the idle window geometry. Timeout <= 0 disables idle
// monitoring entirely. WarningLead, Slack, and Tick fall back to defaults
// when non-positive; tests shrink them to keep wall-clock time short.
type Config struct {
	Timeout     time.Duration
	WarningLead time.Duration
	Slack       time.Duration
	Tick        time.Duration
}

func (c Config) withDefaults() Config {
	if c.WarningLead <= 0 {
		c.WarningLead = DefaultWarningLead
	}
	if c.Slack <= 0 {
		c.Slack = DefaultSlack
	}
	if c.Tick <= 0 {
		c.Tick = DefaultTick
	}
	return c
}

// Callbacks receives idle lifecycle notifications. All callbacks are invoked
// from timer goroutines without any Monitor lock held; nil entries are
// skipped.
type Callbacks struct {
	// OnWarning fires when the warning timer elapses, with the countdown
	// budget remaining until forced logout.
	OnWarning func(remaining time.Duration)
	// OnTick fires once per tick while a warning countdown is running.
	OnTick func(remaining time.Duration)
	// OnWarningExpired fires when a warning countdown reaches zero without
	// an explicit extension. The underlying session may still be alive.
	OnWarningExpired func()
	// OnForcedLogout fires when the idle window elapses with no activity.
	OnForcedLogout func()
}

// Monitor tracks the last-activity timestamp and derives two timers from the
// configured idle window: an early warning and a terminal forced logout.
//
// Arming is idempotent: Touch and Reconfigure always cancel the previous
// timers before arming fresh ones, so at most one warning timer and one
// forced-logout timer are live at any moment.
//
// A warning, once shown, is deliberately NOT dismissed by ordinary activity:
// activity re-arms the underlying timers silently while the countdown stays
// authoritative and clears itself at zero. Only [Monitor.ClearWarning]
// (explicit extension), forced logout, or the countdown reaching zero clear
// the active warning.
type Monitor struct {
	mu  sync.Mutex
	cfg Config
	cb  Callbacks

	lastActivity time.Time
	gen          uint64
	warnTimer    *time.Timer
	forceTimer   *time.Timer

	warnActive   bool
	warnDeadline time.Time
	warnStop     chan struct{}

	disposed bool
}

// Start creates a Monitor and arms it. With cfg.Timeout <= 0 the monitor is
// in the disabled state: no timers are armed and Touch is a no-op until a
// Reconfigure enables it.
func Start(cfg Config, cb Callbacks) *Monitor {
	m := &Monitor{
		cfg:          cfg.withDefaults(),
		cb:           cb,
		lastActivity: time.Now(),
	}

	m.mu.Lock()
	m.rearmLocked()
	m.mu.Unlock()

	return m
}

// Touch records user activity and re-arms both timers relative to now. It
// does not clear an active warning (see type docs).
func (m *Monitor) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed || m.cfg.Timeout <= 0 {
		return
	}

	m.lastActivity = time.Now()
	m.rearmLocked()
}

// Reconfigure applies a new idle window and re-runs the arming logic. It is
// the single code path for config changes regardless of origin (local
// setting change or a peer instance's change replayed locally). A
// non-positive timeout disables monitoring and cancels any active warning
// silently.
func (m *Monitor) Reconfigure(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return
	}

	m.cfg.Timeout = timeout
	m.lastActivity = time.Now()
	if timeout <= 0 {
		m.disarmLocked()
		m.clearWarningLocked()
		return
	}
	m.rearmLocked()
}

// ClearWarning dismisses an active warning countdown. Used after a
// successful session extension.
func (m *Monitor) ClearWarning() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearWarningLocked()
}

// Warning reports whether a warning is active and, if so, the remaining
// countdown time.
func (m *Monitor) Warning() (bool, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.warnActive {
		return false, 0
	}
	remaining := time.Until(m.warnDeadline)
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining
}

// LastActivity returns the most recent activity timestamp.
func (m *Monitor) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// Enabled reports whether idle monitoring is currently active.
func (m *Monitor) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.disposed && m.cfg.Timeout > 0
}

// Dispose cancels all timers and the warning countdown. The monitor cannot
// be re-armed afterwards; callbacks already in flight may still complete.
func (m *Monitor) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.disposed = true
	m.disarmLocked()
	m.clearWarningLocked()
}

func (m *Monitor) rearmLocked() {
	m.disarmLocked()

	window := m.cfg.Timeout
	if window <= 0 {
		return
	}

	gen := m.gen
	if window > m.cfg.WarningLead {
		m.warnTimer = time.AfterFunc(window-m.cfg.WarningLead, func() {
			m.fireWarning(gen)
		})
	}
	m.forceTimer = time.AfterFunc(window+m.cfg.Slack, func() {
		m.fireForced(gen)
	})
}

// disarmLocked bumps the generation so any in-flight fire observes itself
// as stale, then stops both timers.
func (m *Monitor) disarmLocked() {
	m.gen++
	if m.warnTimer != nil {
		m.warnTimer.Stop()
		m.warnTimer = nil
	}
	if m.forceTimer != nil {
		m.forceTimer.Stop()
		m.forceTimer = nil
	}
}

func (m *Monitor) clearWarningLocked() {
	if m.warnStop != nil {
		close(m.warnStop)
		m.warnStop = nil
	}
	m.warnActive = false
}

func (m *Monitor) fireWarning(gen uint64) {
	m.mu.Lock()
	if m.disposed || gen != m.gen || m.warnActive {
		// Stale fire after a re-arm, or a warning countdown is already
		// running and stays authoritative.
		m.mu.Unlock()
		return
	}

	lead := m.cfg.WarningLead
	tick := m.cfg.Tick
	m.warnActive = true
	m.warnDeadline = time.Now().Add(lead)
	stop := make(chan struct{})
	m.warnStop = stop
	deadline := m.warnDeadline
	m.mu.Unlock()

	if m.cb.OnWarning != nil {
		m.cb.OnWarning(lead)
	}

	go m.countdown(stop, deadline, tick)
}

// countdown reports remaining time once per tick and clears the warning when
// it reaches zero. It is pinned to its own stop channel so a ClearWarning
// followed by a new warning never cross-cancels.
func (m *Monitor) countdown(stop chan struct{}, deadline time.Time, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining := time.Until(deadline)
			if remaining > 0 {
				if m.cb.OnTick != nil {
					m.cb.OnTick(remaining)
				}
				continue
			}

			m.mu.Lock()
			mine := m.warnStop == stop
			if mine {
				m.warnStop = nil
				m.warnActive = false
			}
			m.mu.Unlock()

			if mine && m.cb.OnWarningExpired != nil {
				m.cb.OnWarningExpired()
			}
			return
		}
	}
}

func (m *Monitor) fireForced(gen uint64) {
	m.mu.Lock()
	if m.disposed || gen != m.gen {
		m.mu.Unlock()
		return
	}

	// Final guard against timer-firing races: if activity arrived since this
	// timer was armed, the subsequent Touch already re-armed a fresh timer
	// and this fire must be a no-op.
	if time.Since(m.lastActivity) < m.cfg.Timeout {
		m.mu.Unlock()
		return
	}

	m.disarmLocked()
	m.clearWarningLocked()
	m.mu.Unlock()

	if m.cb.OnForcedLogout != nil {
		m.cb.OnForcedLogout()
	}
}
