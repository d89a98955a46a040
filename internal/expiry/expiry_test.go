package expiry

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestArmPastExpiryFiresOnce(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	defer s.Dispose()

	var fired atomic.Int32
	s.Arm(time.Now().Add(-10*time.Second), func() {
		fired.Add(1)
	})

	deadline := time.Now().Add(time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if got := fired.Load(); got != 1 {
		t.Fatalf("onExpire fired %d times, want 1", got)
	}

	// No second invocation appears later.
	time.Sleep(50 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("onExpire fired %d times after settle, want 1", got)
	}
}

func TestArmFutureExpiryRespectsGrace(t *testing.T) {
	s := NewScheduler(30 * time.Millisecond)
	defer s.Dispose()

	start := time.Now()
	firedAt := make(chan time.Time, 1)
	s.Arm(start.Add(40*time.Millisecond), func() {
		firedAt <- time.Now()
	})

	select {
	case at := <-firedAt:
		if elapsed := at.Sub(start); elapsed < 60*time.Millisecond {
			t.Fatalf("fired after %v, want >= grace+expiry (~70ms)", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
}

func TestZeroExpiryDoesNothing(t *testing.T) {
	s := NewScheduler(0)
	defer s.Dispose()

	s.Arm(time.Time{}, func() {
		t.Error("onExpire fired for zero expiry")
	})
	if s.Armed() {
		t.Fatal("scheduler armed for zero expiry")
	}
	time.Sleep(50 * time.Millisecond)
}

func TestRearmCancelsPrevious(t *testing.T) {
	s := NewScheduler(5 * time.Millisecond)
	defer s.Dispose()

	var first, second atomic.Int32
	s.Arm(time.Now().Add(30*time.Millisecond), func() { first.Add(1) })
	s.Arm(time.Now().Add(60*time.Millisecond), func() { second.Add(1) })

	time.Sleep(200 * time.Millisecond)

	if first.Load() != 0 {
		t.Fatal("superseded timer still fired")
	}
	if second.Load() != 1 {
		t.Fatalf("replacement timer fired %d times, want 1", second.Load())
	}
}

func TestDisposeCancelsPending(t *testing.T) {
	s := NewScheduler(5 * time.Millisecond)

	s.Arm(time.Now().Add(30*time.Millisecond), func() {
		t.Error("disposed timer fired")
	})
	s.Dispose()
	if s.Armed() {
		t.Fatal("scheduler still armed after Dispose")
	}
	time.Sleep(100 * time.Millisecond)
}
