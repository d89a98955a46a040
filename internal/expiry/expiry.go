package expiry

import (
	"sync"
	"time"
)

// DefaultGrace absorbs clock skew and timer slack between the token's exp
// instant and the forced logout.
const DefaultGrace = 500 * time.Millisecond

// Scheduler arms a single one-shot timer that fires when the current token
// has expired. The timer is purely a function of the token's own expiry: it
// is never reset by user activity and only changes when the token changes.
//
// At most one timer is live per Scheduler; Arm always cancels the previous
// timer before arming the next one.
type Scheduler struct {
	mu    sync.Mutex
	grace time.Duration
	timer *time.Timer
	gen   uint64
}

// NewScheduler creates a disarmed Scheduler. A non-positive grace falls back
// to [DefaultGrace].
func NewScheduler(grace time.Duration) *Scheduler {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Scheduler{grace: grace}
}

// Arm schedules onExpire for (expiresAt - now) + grace. A zero expiresAt
// disarms and schedules nothing. An expiry already in the past fires
// asynchronously on the next tick — a terminal, non-retried condition.
// onExpire is invoked at most once per Arm call; a later Arm or Dispose
// cancels any pending invocation.
func (s *Scheduler) Arm(expiresAt time.Time, onExpire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarmLocked()
	if expiresAt.IsZero() || onExpire == nil {
		return
	}

	delay := time.Until(expiresAt) + s.grace
	if delay < 0 {
		delay = 0
	}

	gen := s.gen
	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		stale := s.gen != gen
		if !stale {
			s.timer = nil
		}
		s.mu.Unlock()
		if stale {
			return
		}
		onExpire()
	})
}

// Dispose cancels any pending timer. Safe to call repeatedly and after fire.
func (s *Scheduler) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmLocked()
}

// Armed reports whether a timer is currently pending.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) disarmLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
