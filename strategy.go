package abase

import "context"

// Strategy is the contract every authentication backend implements. The
// manager dispatches on [Credentials.Provider] and never calls a strategy
// it did not build.
type Strategy interface {
	// Authenticate verifies the credentials and produces either a token
	// bundle or a provider profile.
	Authenticate(ctx context.Context, creds Credentials) (*AuthOutcome, error)

	// Validate checks an access token and returns its claims and session.
	Validate(ctx context.Context, accessToken string) (*Verification, error)

	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)

	// Revoke invalidates a single token ahead of its natural expiry.
	Revoke(ctx context.Context, tokenStr string) error
}
