package guard

import (
	"context"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T) *RateLimiter {
	t.Helper()
	rdb, _ := newGuardRedis(t)
	return NewRateLimiter(rdb, "abase:")
}

func TestRateLimitBoundaryInclusive(t *testing.T) {
	limiter := newTestLimiter(t)
	// Pin the clock so the whole test stays in one bucket.
	fixed := time.Unix(1_700_000_010, 0)
	limiter.now = func() time.Time { return fixed }

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		ok, err := limiter.Allow(ctx, "u1", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow failed: %v", err)
		}
		if !ok {
			t.Fatalf("request %d rejected, limit is 3", i)
		}
	}

	ok, err := limiter.Allow(ctx, "u1", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow failed: %v", err)
	}
	if ok {
		t.Fatal("4th request within the window must be rejected")
	}
}

func TestRateLimitNewWindowResets(t *testing.T) {
	limiter := newTestLimiter(t)
	fixed := time.Unix(1_700_000_010, 0)
	limiter.now = func() time.Time { return fixed }

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if _, err := limiter.Allow(ctx, "u1", 3, time.Minute); err != nil {
			t.Fatalf("allow failed: %v", err)
		}
	}

	// Advance past the bucket boundary; the counter key is a new one.
	fixed = fixed.Add(time.Minute)

	ok, err := limiter.Allow(ctx, "u1", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow failed: %v", err)
	}
	if !ok {
		t.Fatal("first request of a new window must be allowed")
	}
}

func TestRateLimitPerIdentifier(t *testing.T) {
	limiter := newTestLimiter(t)
	fixed := time.Unix(1_700_000_010, 0)
	limiter.now = func() time.Time { return fixed }

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if _, err := limiter.Allow(ctx, "u1", 3, time.Minute); err != nil {
			t.Fatalf("allow failed: %v", err)
		}
	}

	ok, err := limiter.Allow(ctx, "u2", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow failed: %v", err)
	}
	if !ok {
		t.Fatal("limits must not leak across identifiers")
	}
}
