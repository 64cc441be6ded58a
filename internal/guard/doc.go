// Package guard holds the security guardrails in front of authentication:
// failed-login lockout counters and fixed-window rate limiting.
//
// Both primitives ride on Redis INCR with a TTL set on the first hit, so
// concurrent callers are safe without in-process locking and a counter
// always expires with its window. Rate limiting is fixed-window by design:
// buckets are epoch/window, which permits a burst of up to twice the limit
// across a bucket boundary. That trade-off is documented behavior, not a
// defect.
package guard
