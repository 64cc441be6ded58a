package abase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ghitflux/abasev2/session"
	"github.com/ghitflux/abasev2/token"
)

// tokenStrategy issues and manages first-party bearer tokens. It is also
// the shared issuance backend for the local and OIDC flows.
type tokenStrategy struct {
	codec      *token.Codec
	store      *session.Store
	directory  UserDirectory
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Authenticate issues a token pair for the user named in
// Metadata["user_id"]. Used by trusted internal callers; interactive flows
// go through the local or OIDC strategies instead.
func (s *tokenStrategy) Authenticate(ctx context.Context, creds Credentials) (*AuthOutcome, error) {
	userID := creds.Metadata["user_id"]
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	user, err := s.directory.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrInactiveUser
	}

	bundle, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthOutcome{Bundle: bundle}, nil
}

// issue mints an access/refresh pair for user and writes the session state:
// the snapshot keyed by user id and the refresh binding keyed by the token
// itself, both living for the refresh TTL.
func (s *tokenStrategy) issue(ctx context.Context, user UserRecord) (*TokenBundle, error) {
	access, err := s.codec.Issue(user.ID, token.ScopeAccess, token.Profile{
		Email: user.Email,
		Roles: user.Roles,
	}, s.accessTTL)
	if err != nil {
		return nil, s.mapIssueError(err)
	}

	refresh, err := s.codec.Issue(user.ID, token.ScopeRefresh, token.Profile{}, s.refreshTTL)
	if err != nil {
		return nil, s.mapIssueError(err)
	}

	if err := s.store.PutSession(ctx, user.ID, snapshotOf(user), s.refreshTTL); err != nil {
		return nil, err
	}
	if err := s.store.BindRefresh(ctx, refresh, user.ID, s.refreshTTL); err != nil {
		return nil, err
	}

	return &TokenBundle{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.accessTTL.Seconds()),
		User:         user.Identity(),
	}, nil
}

// Validate accepts an access token only when its signature and claims check
// out, its jti is not blacklisted, and a live session exists for its
// subject. Every rejection collapses into ErrTokenInvalid.
func (s *tokenStrategy) Validate(ctx context.Context, accessToken string) (*Verification, error) {
	claims, err := s.decode(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Scope != token.ScopeAccess {
		return nil, ErrTokenInvalid
	}

	revoked, err := s.store.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenInvalid
	}

	snap, err := s.store.GetSession(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrTokenInvalid
	}

	return &Verification{Claims: claims, User: snap}, nil
}

// Refresh exchanges a bound refresh token for a fresh access token. The
// refresh token itself stays valid; rotation is the caller's policy.
func (s *tokenStrategy) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.store.ResolveRefresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", ErrTokenInvalid
	}

	claims, err := s.decode(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.Scope != token.ScopeRefresh || claims.Subject != userID {
		return "", ErrTokenInvalid
	}

	user, err := s.directory.GetUserByID(ctx, userID)
	if err != nil {
		// A vanished or deactivated user invalidates the token, full stop.
		return "", ErrTokenInvalid
	}
	if !user.Active {
		return "", ErrTokenInvalid
	}

	access, err := s.codec.Issue(user.ID, token.ScopeAccess, token.Profile{
		Email: user.Email,
		Roles: user.Roles,
	}, s.accessTTL)
	if err != nil {
		return "", s.mapIssueError(err)
	}

	// Re-arm the session in case it lapsed while the refresh token lived on.
	snap, err := s.store.GetSession(ctx, userID)
	if err != nil {
		return "", err
	}
	if snap == nil {
		if err := s.store.PutSession(ctx, userID, snapshotOf(user), s.refreshTTL); err != nil {
			return "", err
		}
	}

	return access, nil
}

// Revoke blacklists the token's jti for its remaining lifetime. Revoking an
// already-revoked token is a no-op success, as is revoking a decodable token
// whose remaining lifetime is already non-positive; a token expired past the
// leeway no longer decodes and fails with ErrTokenInvalid.
func (s *tokenStrategy) Revoke(ctx context.Context, tokenStr string) error {
	claims, err := s.decode(tokenStr)
	if err != nil {
		return err
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return ErrTokenInvalid
	}

	return s.store.Blacklist(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

func (s *tokenStrategy) decode(tokenStr string) (*token.Claims, error) {
	claims, err := s.codec.Decode(tokenStr)
	if err != nil {
		if errors.Is(err, token.ErrNoSecret) {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *tokenStrategy) mapIssueError(err error) error {
	if errors.Is(err, token.ErrNoSecret) {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return err
}

func snapshotOf(user UserRecord) *session.Snapshot {
	return &session.Snapshot{
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Active:    user.Active,
		Roles:     user.Roles,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
