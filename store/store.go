package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable is returned by Restore when the durable backend cannot
// be reached. Write paths never return it: they degrade silently and keep
// the in-memory mirror authoritative.
var ErrStoreUnavailable = errors.New("session store unavailable")

const (
	tokenKey       = "token"
	idleTimeoutKey = "idle_timeout"
	eventsChannel  = "events"
)

// Kind classifies a cross-instance [Notice].
type Kind string

const (
	// KindToken signals that the persisted token was written or cleared.
	KindToken Kind = "token"
	// KindConfig signals that the persisted idle-timeout changed.
	KindConfig Kind = "config"
	// KindExtend signals that an instance successfully extended the session;
	// peers clear their visible warnings.
	KindExtend Kind = "extend"
	// KindWarning signals that an instance entered the warned state.
	KindWarning Kind = "warning"
)

// Notice is the wire model published on the store's event channel whenever
// an instance mutates shared state. Origin carries the writing instance's ID
// so subscribers can ignore their own writes.
type Notice struct {
	Origin    string  `json:"origin"`
	Kind      Kind    `json:"kind"`
	Token     *string `json:"token,omitempty"`
	TimeoutMS int64   `json:"timeout_ms,omitempty"`
}

// Store owns the current token value and the shared idle-timeout setting.
// It keeps an always-consistent in-memory mirror, persists both values in
// Redis so they survive restarts and are visible to sibling instances, and
// publishes a [Notice] on every write.
//
// A nil Redis client is valid: the store then operates memory-only
// (single-instance mode) and all durable operations are no-ops. Redis
// failures at runtime are swallowed the same way — shared state is an
// availability optimization, never a correctness dependency for the local
// session.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
	origin string

	mu          sync.Mutex
	token       *string
	idleTimeout time.Duration
	hasTimeout  bool
	subscribers []func(token *string)

	degraded  atomic.Bool
	onDegrade func()
}

// New creates a Store. prefix namespaces the Redis keys; origin is this
// instance's unique ID, stamped on every published notice. rdb may be nil
// for memory-only operation.
func New(rdb redis.UniversalClient, prefix, origin string) *Store {
	if prefix == "" {
		prefix = "gsess"
	}
	return &Store{
		rdb:    rdb,
		prefix: prefix,
		origin: origin,
	}
}

// OnDegrade registers a hook invoked the first time a durable write or read
// fails. Used for metrics; must not block.
func (s *Store) OnDegrade(fn func()) {
	s.onDegrade = fn
}

// Origin returns this instance's ID.
func (s *Store) Origin() string {
	return s.origin
}

// Degraded reports whether any durable operation has failed since startup.
func (s *Store) Degraded() bool {
	return s.degraded.Load()
}

func (s *Store) key(name string) string {
	return s.prefix + ":" + name
}

// EventsChannel returns the pub/sub channel name notices travel on.
func (s *Store) EventsChannel() string {
	return s.key(eventsChannel)
}

// Restore loads the persisted token and idle timeout into the mirror. It is
// called once at startup, before timers are armed. With no backend it is a
// no-op; an unreachable backend returns [ErrStoreUnavailable] wrapped, and
// the caller decides whether to proceed memory-only.
func (s *Store) Restore(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	tok, err := s.rdb.Get(ctx, s.key(tokenKey)).Result()
	switch {
	case err == nil:
		s.mu.Lock()
		s.token = &tok
		s.mu.Unlock()
	case errors.Is(err, redis.Nil):
	default:
		s.markDegraded()
		return errors.Join(ErrStoreUnavailable, err)
	}

	ms, err := s.rdb.Get(ctx, s.key(idleTimeoutKey)).Result()
	switch {
	case err == nil:
		if parsed, perr := strconv.ParseInt(ms, 10, 64); perr == nil {
			s.mu.Lock()
			s.idleTimeout = time.Duration(parsed) * time.Millisecond
			s.hasTimeout = true
			s.mu.Unlock()
		}
	case errors.Is(err, redis.Nil):
	default:
		s.markDegraded()
		return errors.Join(ErrStoreUnavailable, err)
	}

	return nil
}

// Token returns the current token, or nil when logged out.
func (s *Store) Token() *string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil {
		return nil
	}
	tok := *s.token
	return &tok
}

// SetToken writes a new token: mirror first, synchronous local subscriber
// notification, then best-effort durable write + notice publish. Writing a
// token atomically supersedes the previous one; last write wins across
// instances.
func (s *Store) SetToken(ctx context.Context, token string) {
	s.mu.Lock()
	s.token = &token
	subs := append(s.subscribers[:0:0], s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subs {
		tok := token
		fn(&tok)
	}

	s.persist(ctx, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, s.key(tokenKey), token, 0)
	}, Notice{Origin: s.origin, Kind: KindToken, Token: &token})
}

// Clear removes the persisted token. Peers observe a token-cleared notice
// and log themselves out.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.token = nil
	subs := append(s.subscribers[:0:0], s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(nil)
	}

	s.persist(ctx, func(pipe redis.Pipeliner) {
		pipe.Del(ctx, s.key(tokenKey))
	}, Notice{Origin: s.origin, Kind: KindToken})
}

// IdleTimeout returns the shared idle-timeout setting and whether one has
// been stored at all.
func (s *Store) IdleTimeout() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idleTimeout, s.hasTimeout
}

// SetIdleTimeout persists a new idle-timeout so every instance sharing the
// store observes the same value.
func (s *Store) SetIdleTimeout(ctx context.Context, d time.Duration) {
	s.mu.Lock()
	s.idleTimeout = d
	s.hasTimeout = true
	s.mu.Unlock()

	s.persist(ctx, func(pipe redis.Pipeliner) {
		pipe.Set(ctx, s.key(idleTimeoutKey), strconv.FormatInt(d.Milliseconds(), 10), 0)
	}, Notice{Origin: s.origin, Kind: KindConfig, TimeoutMS: d.Milliseconds()})
}

// Subscribe registers for synchronous notification of local writes
// (self-writes only; cross-instance changes arrive through [Store.Watch]).
func (s *Store) Subscribe(fn func(token *string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// Publish sends an explicit notice (extend, warning) to sibling instances
// without touching persisted state.
func (s *Store) Publish(ctx context.Context, kind Kind) {
	if s.rdb == nil {
		return
	}

	data, err := json.Marshal(Notice{Origin: s.origin, Kind: kind})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, s.EventsChannel(), data).Err(); err != nil {
		s.markDegraded()
	}
}

// persist applies the durable mutation and publishes the notice in one
// pipeline. Failures flip the degraded flag and are otherwise swallowed.
func (s *Store) persist(ctx context.Context, mutate func(redis.Pipeliner), n Notice) {
	if s.rdb == nil {
		return
	}

	data, err := json.Marshal(n)
	if err != nil {
		return
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		mutate(pipe)
		pipe.Publish(ctx, s.EventsChannel(), data)
		return nil
	})
	if err != nil {
		s.markDegraded()
	}
}

func (s *Store) markDegraded() {
	if s.degraded.CompareAndSwap(false, true) && s.onDegrade != nil {
		s.onDegrade()
	}
}
