//go:build integration
// +build integration

package test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// instance bundles one controller with its event sink, standing in for one
// running copy of the application.
type instance struct {
	ctl  *goSession.Controller
	sink *goSession.ChannelSink
}

// clusterOpt customizes one instance's builder before Build.
type clusterOpt func(i int, b *goSession.Builder)

// withClient wires a credential client into the instance at idx.
func withClient(idx int, client goSession.CredentialClient) clusterOpt {
	return func(i int, b *goSession.Builder) {
		if i == idx {
			b.WithCredentialClient(client)
		}
	}
}

// newCluster starts n controllers sharing one miniredis, simulating n
// instances of the same application.
func newCluster(t *testing.T, n int, cfg goSession.Config, opts ...clusterOpt) []instance {
	t.Helper()

	mr := miniredis.RunT(t)

	out := make([]instance, n)
	for i := 0; i < n; i++ {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })

		sink := goSession.NewChannelSink(64)
		b := goSession.New().
			WithConfig(cfg).
			WithRedis(rdb).
			WithInstanceID(fmt.Sprintf("inst-%d", i)).
			WithEventSink(sink).
			WithMetricsEnabled(true)
		for _, opt := range opts {
			opt(i, b)
		}
		ctl, err := b.Build()
		if err != nil {
			t.Fatalf("Build instance %d: %v", i, err)
		}
		if err := ctl.Start(context.Background()); err != nil {
			t.Fatalf("Start instance %d: %v", i, err)
		}
		t.Cleanup(ctl.Close)

		out[i] = instance{ctl: ctl, sink: sink}
	}
	return out
}

func defaultClusterConfig() goSession.Config {
	return goSession.Config{
		Events:  goSession.EventsConfig{Enabled: true, BufferSize: 64, DropIfFull: true},
		Metrics: goSession.MetricsConfig{Enabled: true},
	}
}

func makeToken(t *testing.T, uid string, exp time.Time) string {
	t.Helper()

	encode := func(v any) string {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal segment: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(data)
	}

	payload := map[string]any{"uid": uid, "role": "operator"}
	if !exp.IsZero() {
		payload["exp"] = exp.Unix()
	}
	header := encode(map[string]any{"alg": "EdDSA", "typ": "JWT"})
	return header + "." + encode(payload) + ".c2ln"
}

func waitEvent(t *testing.T, in instance, typ goSession.EventType, timeout time.Duration) goSession.Event {
	t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case ev := <-in.sink.Events():
			if ev.Type == typ {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %q event within %v", typ, timeout)
		}
	}
}

func waitState(t *testing.T, in instance, want goSession.State, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if in.ctl.State() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("state = %v, want %v after %v", in.ctl.State(), want, timeout)
}
