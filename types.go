package abase

import (
	"context"
	"time"

	"github.com/ghitflux/abasev2/session"
	"github.com/ghitflux/abasev2/token"
)

// Provider selects which authentication strategy handles a request.
type Provider string

const (
	// ProviderOIDC exchanges an authorization code at an external identity
	// provider and provisions the user locally on first login.
	ProviderOIDC Provider = "oidc"
	// ProviderToken issues and manages first-party bearer tokens.
	ProviderToken Provider = "token"
	// ProviderLocal verifies email/password against the user directory.
	ProviderLocal Provider = "local"
)

// Credentials is the polymorphic input to [Manager.Authenticate]. Which
// fields matter depends on Provider: OIDC reads Code, token reads
// Metadata["user_id"], local reads Metadata["email"] (or "username") and
// Metadata["password"].
type Credentials struct {
	Provider Provider
	Code     string
	Token    string
	Metadata map[string]string
}

// Identity is the public view of an authenticated user.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Active    bool      `json:"is_active"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRecord is a directory row, password hash included. It never crosses
// the API boundary; public responses carry [Identity] instead.
type UserRecord struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Active       bool
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity strips the credential material from a directory record.
func (u UserRecord) Identity() Identity {
	return Identity{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Active:    u.Active,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// CreateUserInput is the payload for directory-side user provisioning.
type CreateUserInput struct {
	Email        string
	FullName     string
	PasswordHash string
	Roles        []string
}

// UserDirectory is the persistence boundary for user accounts. Lookups for
// absent users must return an error satisfying errors.Is(err,
// [ErrUserNotFound]).
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
}

// TokenBundle is the result of a successful first-party login: an access
// token, its refresh companion, and the identity they were minted for.
type TokenBundle struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         Identity `json:"user"`
}

// OIDCProfile is the identity extracted from a provider's token response.
type OIDCProfile struct {
	Subject      string
	Email        string
	Name         string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// AuthOutcome is the union result of a strategy's Authenticate. Exactly one
// of Bundle or Profile is set: token and local logins produce a Bundle,
// OIDC produces a Profile that the manager then converts into a Bundle.
type AuthOutcome struct {
	Bundle  *TokenBundle
	Profile *OIDCProfile
}

// Verification is the result of validating an access token: the decoded
// claims plus the live session snapshot they were checked against. OIDC
// validation leaves both nil.
type Verification struct {
	Claims *token.Claims
	User   *session.Snapshot
}
