package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable indicates the backing store is unreachable or returned
// a malformed value.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store persists sessions, refresh bindings and blacklist markers under a
// shared key prefix. Misses return zero values; only backend failures
// surface as errors.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session store on the given Redis client. All keys are
// namespaced with prefix.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) sessionKey(userID string) string {
	return s.prefix + "session:" + userID
}

func (s *Store) refreshKey(token string) string {
	return s.prefix + "refresh:" + token
}

func (s *Store) blacklistKey(jti string) string {
	return s.prefix + "blacklist:" + jti
}

// PutSession overwrites the snapshot for userID with the given TTL.
func (s *Store) PutSession(ctx context.Context, userID string, snap *Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := s.redis.Set(ctx, s.sessionKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// GetSession returns the live snapshot for userID, or nil when none exists.
func (s *Store) GetSession(ctx context.Context, userID string) (*Snapshot, error) {
	raw, err := s.redis.Get(ctx, s.sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &snap, nil
}

// DeleteSession removes the snapshot for userID. Deleting an absent session
// is a no-op success.
func (s *Store) DeleteSession(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// BindRefresh records token as owned by userID for the token's lifetime.
// Rebinding the same key overwrites the previous owner.
func (s *Store) BindRefresh(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.refreshKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ResolveRefresh returns the user id owning token, or "" when the binding is
// absent or expired.
func (s *Store) ResolveRefresh(ctx context.Context, token string) (string, error) {
	userID, err := s.redis.Get(ctx, s.refreshKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return userID, nil
}

// UnbindRefresh deletes the ownership binding for token.
func (s *Store) UnbindRefresh(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, s.refreshKey(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Blacklist marks jti as revoked for the token's remaining lifetime. A
// non-positive TTL means the token is already expired and nothing needs to
// be written.
func (s *Store) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, s.blacklistKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// IsBlacklisted reports whether jti has been revoked.
func (s *Store) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}
