package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// WatchHooks receives cross-instance notifications. Hooks run on the
// watcher's goroutine; nil entries are skipped.
type WatchHooks struct {
	// OnTokenChanged fires when another instance wrote (non-nil) or cleared
	// (nil) the persisted token.
	OnTokenChanged func(token *string)
	// OnConfigChanged fires when another instance changed the shared
	// idle-timeout.
	OnConfigChanged func(timeout time.Duration)
	// OnExplicitEvent fires for broadcast-only notices ([KindExtend],
	// [KindWarning]) from other instances.
	OnExplicitEvent func(kind Kind)
}

// Watcher replays other instances' store mutations locally. Self-originated
// notices are filtered by origin ID so a write never loops back into its own
// instance.
//
// When the store has no backend the watcher is inert: the session degrades
// to single-instance operation without error.
type Watcher struct {
	pubsub    *redis.PubSub
	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{}
}

// Watch subscribes to the store's event channel and dispatches notices to
// hooks until Close is called or ctx is cancelled. Notices are best-effort:
// delivery can be missed while an instance is suspended, which is why every
// hook re-runs idempotent re-arming logic rather than applying deltas.
func (s *Store) Watch(ctx context.Context, hooks WatchHooks) *Watcher {
	w := &Watcher{done: make(chan struct{})}
	if s.rdb == nil {
		close(w.done)
		return w
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.pubsub = s.rdb.Subscribe(ctx, s.EventsChannel())

	go func() {
		defer close(w.done)
		ch := w.pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.dispatch(msg.Payload, hooks)
			}
		}
	}()

	return w
}

func (s *Store) dispatch(payload string, hooks WatchHooks) {
	var n Notice
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return
	}
	if n.Origin == s.origin {
		return
	}

	switch n.Kind {
	case KindToken:
		// Adopt the peer's value into the mirror before notifying, so local
		// reads and the hook agree.
		s.mu.Lock()
		s.token = n.Token
		s.mu.Unlock()
		if hooks.OnTokenChanged != nil {
			hooks.OnTokenChanged(n.Token)
		}
	case KindConfig:
		d := time.Duration(n.TimeoutMS) * time.Millisecond
		s.mu.Lock()
		s.idleTimeout = d
		s.hasTimeout = true
		s.mu.Unlock()
		if hooks.OnConfigChanged != nil {
			hooks.OnConfigChanged(d)
		}
	case KindExtend, KindWarning:
		if hooks.OnExplicitEvent != nil {
			hooks.OnExplicitEvent(n.Kind)
		}
	}
}

// Close stops the watcher and waits for the dispatch goroutine to exit.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		if w.pubsub != nil {
			_ = w.pubsub.Close()
		}
		<-w.done
	})
}
