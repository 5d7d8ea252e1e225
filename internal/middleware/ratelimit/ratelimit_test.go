package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("request over the limit should be denied")
	}

	// A different client has its own budget.
	if !rl.Allow("5.6.7.8") {
		t.Error("fresh client should be allowed")
	}

	if rl.ActiveClients() != 2 {
		t.Errorf("active clients = %d, want 2", rl.ActiveClients())
	}
}

func TestLimiter_WindowReset(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	if !rl.Allow("a") {
		t.Fatal("first request should pass")
	}
	if rl.Allow("a") {
		t.Fatal("second request should be denied")
	}

	// Age the window past a minute.
	rl.mu.Lock()
	rl.clients["a"].lastRequest = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()

	if !rl.Allow("a") {
		t.Error("request after the window should be allowed again")
	}
}

func TestLimiter_ZeroConfigFallsBack(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()

	if rl.requestsPerMinute != DefaultConfig().RequestsPerMinute {
		t.Errorf("requestsPerMinute = %d, want default", rl.requestsPerMinute)
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
