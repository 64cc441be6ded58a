package abase

import (
	"context"
	"errors"

	"github.com/ghitflux/abasev2/internal/guard"
	"github.com/ghitflux/abasev2/password"
)

// localStrategy verifies email/password logins against the user directory,
// with a brute-force lockout in front and token issuance delegated to the
// token strategy.
type localStrategy struct {
	delegate  *tokenStrategy
	directory UserDirectory
	lockout   *guard.Lockout
}

// Authenticate checks the lockout first, so a locked identifier is rejected
// before any directory lookup or password comparison. Any failure after
// that point records one more strike against the identifier.
func (s *localStrategy) Authenticate(ctx context.Context, creds Credentials) (*AuthOutcome, error) {
	identifier := creds.Metadata["email"]
	if identifier == "" {
		identifier = creds.Metadata["username"]
	}
	pass := creds.Metadata["password"]
	if identifier == "" || pass == "" {
		return nil, ErrInvalidCredentials
	}

	locked, err := s.lockout.IsLocked(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if locked {
		retry, err := s.lockout.Remaining(ctx, identifier)
		if err != nil {
			return nil, err
		}
		return nil, &LockoutError{Identifier: identifier, RetryAfter: retry}
	}

	user, err := s.directory.GetUserByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, s.fail(ctx, identifier, ErrUserNotFound)
		}
		return nil, err
	}

	if !user.Active {
		return nil, s.fail(ctx, identifier, ErrInactiveUser)
	}
	if !password.Verify(pass, user.PasswordHash) {
		return nil, s.fail(ctx, identifier, ErrInvalidCredentials)
	}

	if err := s.lockout.Clear(ctx, identifier); err != nil {
		return nil, err
	}

	bundle, err := s.delegate.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthOutcome{Bundle: bundle}, nil
}

// fail records the strike and passes the cause through unchanged. Guard
// backend failures take precedence, since they mean the counter state is
// unknown.
func (s *localStrategy) fail(ctx context.Context, identifier string, cause error) error {
	if _, err := s.lockout.RecordFailure(ctx, identifier); err != nil {
		return err
	}
	return cause
}

func (s *localStrategy) Validate(ctx context.Context, accessToken string) (*Verification, error) {
	return s.delegate.Validate(ctx, accessToken)
}

func (s *localStrategy) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return s.delegate.Refresh(ctx, refreshToken)
}

func (s *localStrategy) Revoke(ctx context.Context, tokenStr string) error {
	return s.delegate.Revoke(ctx, tokenStr)
}
