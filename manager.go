package abase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ghitflux/abasev2/internal/audit"
	"github.com/ghitflux/abasev2/internal/guard"
	"github.com/ghitflux/abasev2/internal/metrics"
	"github.com/ghitflux/abasev2/password"
	"github.com/ghitflux/abasev2/session"
	"github.com/ghitflux/abasev2/token"
)

// Manager is the façade over the authentication strategies and the shared
// session state. Build one with [Builder.Build]; a Manager is immutable
// after construction and safe for concurrent use.
type Manager struct {
	config    Config
	codec     *token.Codec
	store     *session.Store
	directory UserDirectory
	limiter   *guard.RateLimiter
	lockout   *guard.Lockout
	oidc      *oidcStrategy
	tokens    *tokenStrategy
	local     *localStrategy
	audit     *audit.Dispatcher
	metrics   *metrics.Metrics
}

func (m *Manager) strategyFor(provider Provider) (Strategy, error) {
	switch provider {
	case ProviderOIDC:
		return m.oidc, nil
	case ProviderToken:
		return m.tokens, nil
	case ProviderLocal:
		return m.local, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}

// loginIdentifier derives the rate-limit key from the credentials. OIDC
// logins have no stable identifier before the exchange, so they are not
// throttled here.
func loginIdentifier(creds Credentials) string {
	if id := creds.Metadata["email"]; id != "" {
		return id
	}
	if id := creds.Metadata["username"]; id != "" {
		return id
	}
	return creds.Metadata["user_id"]
}

// Authenticate runs the strategy selected by creds.Provider. Successful
// OIDC logins are resolved against the directory, creating the user with
// the default role on first login, and always yield a first-party token
// bundle. Every failure is wrapped in [ErrAuthenticationFailed] with the
// cause still reachable through errors.Is and errors.As.
func (m *Manager) Authenticate(ctx context.Context, creds Credentials) (*TokenBundle, error) {
	if m == nil {
		return nil, ErrNotReady
	}

	identifier := loginIdentifier(creds)

	if !m.config.Security.DisableLoginThrottle && identifier != "" {
		ok, err := m.limiter.Allow(ctx, "login:"+identifier,
			m.config.Security.LoginRateLimit, m.config.Security.LoginRateWindow)
		if err != nil {
			return nil, err
		}
		if !ok {
			m.metrics.Inc(metrics.LoginRateLimited)
			m.emit(ctx, audit.Event{
				EventType:  audit.EventLoginRateLimited,
				Provider:   string(creds.Provider),
				Identifier: identifier,
			})
			return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, ErrRateLimited)
		}
	}

	strategy, err := m.strategyFor(creds.Provider)
	if err != nil {
		return nil, err
	}

	outcome, err := strategy.Authenticate(ctx, creds)
	if err != nil {
		if errors.Is(err, ErrLockedOut) {
			m.metrics.Inc(metrics.LoginLockedOut)
			m.emit(ctx, audit.Event{
				EventType:  audit.EventLoginLockedOut,
				Provider:   string(creds.Provider),
				Identifier: identifier,
				Error:      err.Error(),
			})
		} else {
			m.metrics.Inc(metrics.LoginFailure)
			m.emit(ctx, audit.Event{
				EventType:  audit.EventLoginFailure,
				Provider:   string(creds.Provider),
				Identifier: identifier,
				Error:      err.Error(),
			})
		}
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	bundle := outcome.Bundle
	if bundle == nil && outcome.Profile != nil {
		user, err := m.resolveOIDCUser(ctx, outcome.Profile)
		if err != nil {
			m.metrics.Inc(metrics.LoginFailure)
			m.emit(ctx, audit.Event{
				EventType: audit.EventLoginFailure,
				Provider:  string(creds.Provider),
				Error:     err.Error(),
			})
			return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}
		bundle, err = m.tokens.issue(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}
	}
	if bundle == nil {
		return nil, fmt.Errorf("%w: strategy produced no result", ErrAuthenticationFailed)
	}

	m.metrics.Inc(metrics.LoginSuccess)
	m.metrics.Inc(metrics.SessionCreated)
	m.emit(ctx, audit.Event{
		EventType:  audit.EventLoginSuccess,
		Provider:   string(creds.Provider),
		UserID:     bundle.User.ID,
		Identifier: identifier,
		Success:    true,
	})

	return bundle, nil
}

// resolveOIDCUser maps a provider profile onto a directory user, creating
// the account on first login. Provisioned accounts get the default role and
// an unusable random password hash, so local login can never match them by
// accident.
func (m *Manager) resolveOIDCUser(ctx context.Context, profile *OIDCProfile) (UserRecord, error) {
	if profile.Email == "" {
		return UserRecord{}, ErrIdentityMissing
	}

	user, err := m.directory.GetUserByEmail(ctx, profile.Email)
	if err == nil {
		if !user.Active {
			return UserRecord{}, ErrInactiveUser
		}
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return UserRecord{}, err
	}

	hash, err := password.RandomHash()
	if err != nil {
		return UserRecord{}, err
	}

	created, err := m.directory.CreateUser(ctx, CreateUserInput{
		Email:        profile.Email,
		FullName:     profile.Name,
		PasswordHash: hash,
		Roles:        []string{m.config.Account.DefaultRole},
	})
	if err != nil {
		return UserRecord{}, err
	}

	m.metrics.Inc(metrics.UserProvisioned)
	m.emit(ctx, audit.Event{
		EventType:  audit.EventUserProvisioned,
		Provider:   string(ProviderOIDC),
		UserID:     created.ID,
		Identifier: created.Email,
		Success:    true,
	})

	return created, nil
}

// Validate checks an access token through the given provider's strategy.
func (m *Manager) Validate(ctx context.Context, provider Provider, accessToken string) (*Verification, error) {
	if m == nil {
		return nil, ErrNotReady
	}

	strategy, err := m.strategyFor(provider)
	if err != nil {
		return nil, err
	}

	verification, err := strategy.Validate(ctx, accessToken)
	if err != nil {
		m.metrics.Inc(metrics.ValidateFailure)
		return nil, err
	}
	m.metrics.Inc(metrics.ValidateSuccess)
	return verification, nil
}

// Refresh exchanges a refresh token for a new access token.
func (m *Manager) Refresh(ctx context.Context, provider Provider, refreshToken string) (string, error) {
	if m == nil {
		return "", ErrNotReady
	}

	strategy, err := m.strategyFor(provider)
	if err != nil {
		return "", err
	}

	access, err := strategy.Refresh(ctx, refreshToken)
	if err != nil {
		m.metrics.Inc(metrics.RefreshFailure)
		return "", err
	}

	m.metrics.Inc(metrics.RefreshSuccess)
	m.emit(ctx, audit.Event{EventType: audit.EventTokenRefreshed, Provider: string(provider), Success: true})
	return access, nil
}

// Revoke invalidates a single token ahead of its expiry.
func (m *Manager) Revoke(ctx context.Context, provider Provider, tokenStr string) error {
	if m == nil {
		return ErrNotReady
	}

	strategy, err := m.strategyFor(provider)
	if err != nil {
		return err
	}

	if err := strategy.Revoke(ctx, tokenStr); err != nil {
		return err
	}

	m.metrics.Inc(metrics.TokenRevoked)
	m.emit(ctx, audit.Event{EventType: audit.EventTokenRevoked, Provider: string(provider), Success: true})
	return nil
}

// Logout revokes the access token, drops the refresh binding, and when
// global is set deletes the session so every outstanding access token for
// the user stops validating. Invalid or expired inputs do not fail the
// call; logout is best effort and idempotent.
func (m *Manager) Logout(ctx context.Context, accessToken, refreshToken string, global bool) error {
	if m == nil {
		return ErrNotReady
	}

	verification, _ := m.tokens.Validate(ctx, accessToken)

	if err := m.tokens.Revoke(ctx, accessToken); err != nil && !errors.Is(err, ErrTokenInvalid) {
		return err
	}

	if refreshToken != "" {
		if err := m.store.UnbindRefresh(ctx, refreshToken); err != nil {
			return err
		}
	}

	userID := ""
	if verification != nil && verification.Claims != nil {
		userID = verification.Claims.Subject
	}
	if global && userID != "" {
		if err := m.store.DeleteSession(ctx, userID); err != nil {
			return err
		}
		m.metrics.Inc(metrics.SessionInvalidated)
	}

	m.emit(ctx, audit.Event{EventType: audit.EventLogout, UserID: userID, Success: true})
	return nil
}

// CheckRateLimit counts one request for identifier against an arbitrary
// limit. Exposed for callers throttling endpoints beyond login.
func (m *Manager) CheckRateLimit(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	if m == nil {
		return false, ErrNotReady
	}
	return m.limiter.Allow(ctx, identifier, limit, window)
}

// UnlockAccount clears the failed-attempt counter for identifier, lifting
// a lockout immediately.
func (m *Manager) UnlockAccount(ctx context.Context, identifier string) error {
	if m == nil {
		return ErrNotReady
	}
	return m.lockout.Clear(ctx, identifier)
}

// MetricsSnapshot returns a point-in-time copy of the counters.
func (m *Manager) MetricsSnapshot() metrics.Snapshot {
	if m == nil {
		return metrics.Snapshot{}
	}
	return m.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded under
// backpressure.
func (m *Manager) AuditDropped() uint64 {
	if m == nil {
		return 0
	}
	return m.audit.Dropped()
}

// Close flushes and stops the audit pipeline. The manager must not be used
// afterwards.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.audit.Close()
}

func (m *Manager) emit(ctx context.Context, event audit.Event) {
	event.Timestamp = time.Now().UTC()
	m.audit.Emit(ctx, event)
}
