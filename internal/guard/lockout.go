package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrGuardUnavailable indicates the guardrail backend is unreachable.
var ErrGuardUnavailable = errors.New("guard backend unavailable")

// LockoutConfig tunes the brute-force lockout counter.
type LockoutConfig struct {
	// Threshold is the failed-attempt count at which an identifier locks.
	Threshold int
	// Window is both the counting window and the lockout duration; the
	// counter key expires this long after the first failure.
	Window time.Duration
}

// Lockout tracks failed login attempts per identifier. Counts at or above
// the threshold lock the identifier until the counter's TTL expires or it
// is cleared explicitly.
type Lockout struct {
	redis  redis.UniversalClient
	prefix string
	config LockoutConfig
}

// NewLockout creates a lockout tracker on the given Redis client.
func NewLockout(client redis.UniversalClient, prefix string, cfg LockoutConfig) *Lockout {
	return &Lockout{redis: client, prefix: prefix, config: cfg}
}

func (l *Lockout) key(identifier string) string {
	return l.prefix + "failed_attempts:" + identifier
}

// RecordFailure atomically increments the failure counter and returns the
// new count. The first failure arms the window TTL.
func (l *Lockout) RecordFailure(ctx context.Context, identifier string) (int64, error) {
	count, err := l.redis.Incr(ctx, l.key(identifier)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}

	if count == 1 && l.config.Window > 0 {
		if err := l.redis.Expire(ctx, l.key(identifier), l.config.Window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
		}
	}

	return count, nil
}

// Clear deletes the failure counter, unlocking the identifier immediately.
// Called after successful authentication or an explicit admin unlock.
func (l *Lockout) Clear(ctx context.Context, identifier string) error {
	if err := l.redis.Del(ctx, l.key(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}
	return nil
}

// Attempts returns the current failure count; a missing counter is zero.
func (l *Lockout) Attempts(ctx context.Context, identifier string) (int64, error) {
	count, err := l.redis.Get(ctx, l.key(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}
	return count, nil
}

// IsLocked reports whether the identifier has reached the lockout threshold.
func (l *Lockout) IsLocked(ctx context.Context, identifier string) (bool, error) {
	count, err := l.Attempts(ctx, identifier)
	if err != nil {
		return false, err
	}
	return count >= int64(l.config.Threshold), nil
}

// Remaining returns the time left on the lockout, or zero when the
// identifier is not locked.
func (l *Lockout) Remaining(ctx context.Context, identifier string) (time.Duration, error) {
	locked, err := l.IsLocked(ctx, identifier)
	if err != nil {
		return 0, err
	}
	if !locked {
		return 0, nil
	}

	ttl, err := l.redis.TTL(ctx, l.key(identifier)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
