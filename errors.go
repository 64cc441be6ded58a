package abase

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConfiguration indicates the manager cannot operate as configured,
	// for example a missing JWT secret or OIDC issuer.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrUnknownProvider is returned for a Provider outside the supported set.
	ErrUnknownProvider = errors.New("unknown authentication provider")

	// ErrAuthorizationCodeRequired is returned when an OIDC login carries no
	// authorization code.
	ErrAuthorizationCodeRequired = errors.New("authorization code required")

	// ErrProviderUnavailable indicates the external identity provider could
	// not be reached or answered with garbage.
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	// ErrExchangeFailed indicates the provider rejected the code exchange.
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrIdentityMissing indicates the provider's token response carried no
	// usable identity.
	ErrIdentityMissing = errors.New("identity missing from provider response")

	// ErrUserIDRequired is returned when a token login names no user.
	ErrUserIDRequired = errors.New("user id required")

	// ErrUserNotFound indicates the directory has no matching user.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials indicates the password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInactiveUser indicates the account exists but is deactivated.
	ErrInactiveUser = errors.New("user is inactive")

	// ErrTokenInvalid is the uniform failure for any token that cannot be
	// accepted, whatever the underlying reason.
	ErrTokenInvalid = errors.New("invalid or expired token")

	// ErrRateLimited indicates the caller exceeded the login rate limit.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrLockedOut indicates the identifier is locked after repeated
	// failures. Wrapped by [LockoutError], which carries the retry delay.
	ErrLockedOut = errors.New("account locked")

	// ErrAuthenticationFailed wraps every strategy-level login failure so
	// callers can branch on the outcome without inspecting the cause.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNotReady is returned from a nil or unbuilt manager.
	ErrNotReady = errors.New("manager not initialized")
)

// LockoutError reports a rejected login on a locked identifier together
// with the remaining lockout duration.
type LockoutError struct {
	Identifier string
	RetryAfter time.Duration
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("account locked for %s, retry in %s", e.Identifier, e.RetryAfter.Round(time.Second))
}

// Unwrap lets errors.Is(err, ErrLockedOut) match.
func (e *LockoutError) Unwrap() error { return ErrLockedOut }
