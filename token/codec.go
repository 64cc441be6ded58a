package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrNoSecret indicates the signing secret is not configured.
	ErrNoSecret = errors.New("signing secret not configured")
	// ErrTokenInvalid is the single failure outcome for any decode error.
	ErrTokenInvalid = errors.New("invalid token")
)

// Scope distinguishes access tokens from refresh tokens.
type Scope string

const (
	// ScopeAccess marks short-lived tokens that authorize individual requests.
	ScopeAccess Scope = "access"
	// ScopeRefresh marks long-lived tokens used solely to obtain new access tokens.
	ScopeRefresh Scope = "refresh"
)

// Profile carries the identity claims denormalized into access tokens.
type Profile struct {
	Email string
	Roles []string
}

// Claims is the full decoded claim set of an issued token.
type Claims struct {
	Scope Scope    `json:"scope"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Config holds the immutable signing parameters of a [Codec].
type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
	// Leeway tolerated when validating exp/iat. Zero disables it.
	Leeway time.Duration
}

// Codec issues and verifies signed claim sets with a process-wide secret.
// A Codec is stateless and safe for concurrent use.
type Codec struct {
	config Config
}

// NewCodec creates a codec from the given signing configuration.
func NewCodec(cfg Config) *Codec {
	return &Codec{config: cfg}
}

// Issue signs a claim set for subject with the given scope and TTL.
// Access-token profiles carry email and roles; refresh tokens pass an empty
// Profile. Every issued token receives a fresh jti.
func (c *Codec) Issue(subject string, scope Scope, profile Profile, ttl time.Duration) (string, error) {
	if len(c.config.Secret) == 0 {
		return "", ErrNoSecret
	}

	now := time.Now()
	claims := Claims{
		Scope: scope,
		Email: profile.Email,
		Roles: profile.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.config.Issuer,
			Audience:  jwt.ClaimStrings{c.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
}

// Decode verifies signature, issuer, audience and expiry, and returns the
// claim set. Any mismatch yields [ErrTokenInvalid] without further detail.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	if len(c.config.Secret) == 0 {
		return nil, ErrNoSecret
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}
	if c.config.Audience != "" {
		options = append(options, jwt.WithAudience(c.config.Audience))
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return c.config.Secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
