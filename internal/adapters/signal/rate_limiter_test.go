package signal

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	rl := NewActionRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !rl.Allow("s1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if rl.Allow("s1") {
		t.Error("attempt over the limit should be blocked")
	}
}

func TestRateLimiterIsolatesSessions(t *testing.T) {
	rl := NewActionRateLimiter(1, time.Minute)
	if !rl.Allow("s1") {
		t.Fatal("first attempt should be allowed")
	}
	if !rl.Allow("s2") {
		t.Error("another session must not be affected")
	}
	if rl.Allow("s1") {
		t.Error("s1 should be blocked")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewActionRateLimiter(2, 20*time.Millisecond)
	rl.Allow("s1")
	rl.Allow("s1")
	if rl.Allow("s1") {
		t.Fatal("should be blocked inside the window")
	}

	time.Sleep(40 * time.Millisecond)
	if !rl.Allow("s1") {
		t.Error("window expiry should free up the budget")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewActionRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !rl.Allow("s1") {
			t.Fatal("limit<=0 disables rate limiting")
		}
	}
}

func TestRateLimiterForget(t *testing.T) {
	rl := NewActionRateLimiter(1, time.Minute)
	rl.Allow("s1")
	if rl.Allow("s1") {
		t.Fatal("should be blocked")
	}

	rl.Forget("s1")
	if !rl.Allow("s1") {
		t.Error("forgotten session starts with a clean budget")
	}
}
