package guard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter caps request counts per identifier in fixed time buckets.
type RateLimiter struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRateLimiter creates a fixed-window limiter on the given Redis client.
func NewRateLimiter(client redis.UniversalClient, prefix string) *RateLimiter {
	return &RateLimiter{redis: client, prefix: prefix, now: time.Now}
}

func (r *RateLimiter) key(identifier string, bucket int64) string {
	return r.prefix + "rate_limit:" + identifier + ":" + strconv.FormatInt(bucket, 10)
}

// Allow counts one request for identifier in the current bucket and reports
// whether it is within limit. Exactly limit requests succeed per window; the
// call that would tip over the limit is itself rejected.
func (r *RateLimiter) Allow(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	secs := int64(window / time.Second)
	if secs <= 0 {
		secs = 1
	}
	bucket := r.now().Unix() / secs
	key := r.key(identifier, bucket)

	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
	}
	if count == 1 {
		if err := r.redis.Expire(ctx, key, window).Err(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrGuardUnavailable, err)
		}
	}

	return count <= int64(limit), nil
}
