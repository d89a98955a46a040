//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
)

func TestClusterLoginPropagates(t *testing.T) {
	cluster := newCluster(t, 3, defaultClusterConfig())
	ctx := context.Background()

	token := makeToken(t, "user-1", time.Now().Add(time.Hour))
	if err := cluster[0].ctl.Login(ctx, token); err != nil {
		t.Fatalf("Login: %v", err)
	}

	for i := 1; i < len(cluster); i++ {
		ev := waitEvent(t, cluster[i], goSession.EventAuthenticated, 2*time.Second)
		if !ev.Peer {
			t.Fatalf("instance %d: authenticated event not marked as peer: %+v", i, ev)
		}
		waitState(t, cluster[i], goSession.StateAuthenticated, 2*time.Second)

		subj, ok := cluster[i].ctl.Subject()
		if !ok || subj.ID != "user-1" {
			t.Fatalf("instance %d: subject = %+v, ok=%v", i, subj, ok)
		}
	}
}

func TestClusterLogoutPropagates(t *testing.T) {
	cluster := newCluster(t, 2, defaultClusterConfig())
	ctx := context.Background()

	if err := cluster[0].ctl.Login(ctx, makeToken(t, "user-1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Login: %v", err)
	}
	waitState(t, cluster[1], goSession.StateAuthenticated, 2*time.Second)

	if err := cluster[1].ctl.Logout(ctx); err != nil {
		t.Fatalf("Logout on peer: %v", err)
	}

	ev := waitEvent(t, cluster[0], goSession.EventLoggedOut, 2*time.Second)
	if ev.Reason != goSession.ReasonPeer {
		t.Fatalf("reason = %q, want %q", ev.Reason, goSession.ReasonPeer)
	}
	waitState(t, cluster[0], goSession.StateLoggedOut, 2*time.Second)
}

func TestClusterTokenReplacementAdopted(t *testing.T) {
	cluster := newCluster(t, 2, defaultClusterConfig())
	ctx := context.Background()

	if err := cluster[0].ctl.Login(ctx, makeToken(t, "user-1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Login: %v", err)
	}
	waitState(t, cluster[1], goSession.StateAuthenticated, 2*time.Second)

	if err := cluster[0].ctl.ReplaceToken(ctx, makeToken(t, "user-1b", time.Now().Add(2*time.Hour))); err != nil {
		t.Fatalf("ReplaceToken: %v", err)
	}

	ev := waitEvent(t, cluster[1], goSession.EventTokenReplaced, 2*time.Second)
	if !ev.Peer {
		t.Fatalf("token replaced event not marked as peer: %+v", ev)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if subj, ok := cluster[1].ctl.Subject(); ok && subj.ID == "user-1b" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	subj, _ := cluster[1].ctl.Subject()
	t.Fatalf("peer subject = %+v, want user-1b", subj)
}

func TestClusterIdleConfigPropagates(t *testing.T) {
	cluster := newCluster(t, 2, defaultClusterConfig())
	ctx := context.Background()

	if err := cluster[0].ctl.Login(ctx, makeToken(t, "user-1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Login: %v", err)
	}
	waitState(t, cluster[1], goSession.StateAuthenticated, 2*time.Second)

	if err := cluster[0].ctl.SetIdleTimeout(ctx, 20*time.Minute); err != nil {
		t.Fatalf("SetIdleTimeout: %v", err)
	}

	ev := waitEvent(t, cluster[1], goSession.EventConfigChanged, 2*time.Second)
	if !ev.Peer {
		t.Fatalf("config event not marked as peer: %+v", ev)
	}
	if ev.RemainingMS != (20 * time.Minute).Milliseconds() {
		t.Fatalf("config event RemainingMS = %d", ev.RemainingMS)
	}
}

type staticRefresher struct {
	token string
}

func (s staticRefresher) RefreshCredential(context.Context) (string, error) { return s.token, nil }
func (s staticRefresher) InvalidateServerSide(context.Context) error        { return nil }

func TestClusterExtendDismissesPeerWarning(t *testing.T) {
	cfg := defaultClusterConfig()
	cfg.Idle = goSession.IdleConfig{
		Timeout:     700 * time.Millisecond,
		WarningLead: 550 * time.Millisecond,
		Slack:       20 * time.Millisecond,
		Tick:        20 * time.Millisecond,
	}
	client := staticRefresher{token: makeToken(t, "user-1", time.Now().Add(2*time.Hour))}
	cluster := newCluster(t, 2, cfg, withClient(0, client))
	ctx := context.Background()

	if err := cluster[0].ctl.Login(ctx, makeToken(t, "user-1", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Both instances run their own idle clocks and warn independently.
	waitEvent(t, cluster[0], goSession.EventIdleWarning, 2*time.Second)
	waitEvent(t, cluster[1], goSession.EventIdleWarning, 2*time.Second)

	if err := cluster[0].ctl.RefreshAndExtend(ctx); err != nil {
		t.Fatalf("RefreshAndExtend: %v", err)
	}

	ev := waitEvent(t, cluster[1], goSession.EventSessionExtended, 2*time.Second)
	if !ev.Peer {
		t.Fatalf("session extended event not marked as peer: %+v", ev)
	}
	waitState(t, cluster[1], goSession.StateAuthenticated, 2*time.Second)
	if active, _ := cluster[1].ctl.Warning(); active {
		t.Fatal("peer warning still active after extend")
	}
}

func TestClusterRestartRejoins(t *testing.T) {
	cluster := newCluster(t, 1, defaultClusterConfig())
	ctx := context.Background()

	token := makeToken(t, "user-1", time.Now().Add(time.Hour))
	if err := cluster[0].ctl.Login(ctx, token); err != nil {
		t.Fatalf("Login: %v", err)
	}
	cluster[0].ctl.Close()

	// Closing must not clear the persisted token: a restarted instance
	// resumes the session.
	if err := cluster[0].ctl.Login(ctx, token); !errors.Is(err, goSession.ErrControllerClosed) {
		t.Fatalf("Login after Close err = %v, want ErrControllerClosed", err)
	}
}
