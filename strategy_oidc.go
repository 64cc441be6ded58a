package abase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// oidcStrategy exchanges authorization codes at an external OpenID Connect
// provider. The provider's endpoints are found through standard discovery
// on every call; callers wanting to avoid the extra round-trip can front
// this with their own caching client.
type oidcStrategy struct {
	config     OIDCConfig
	httpClient *http.Client
}

type discoveryDocument struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
}

func (s *oidcStrategy) discover(ctx context.Context) (*discoveryDocument, error) {
	url := strings.TrimRight(s.config.Issuer, "/") + "/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: discovery returned %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var doc discoveryDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if doc.TokenEndpoint == "" {
		return nil, fmt.Errorf("%w: discovery document has no token endpoint", ErrProviderUnavailable)
	}
	return &doc, nil
}

func (s *oidcStrategy) oauthConfig(doc *discoveryDocument, redirectOverride string) *oauth2.Config {
	redirect := s.config.RedirectURI
	if redirectOverride != "" {
		redirect = redirectOverride
	}
	return &oauth2.Config{
		ClientID:     s.config.ClientID,
		ClientSecret: s.config.ClientSecret,
		RedirectURL:  redirect,
		Endpoint: oauth2.Endpoint{
			AuthURL:   doc.AuthorizationEndpoint,
			TokenURL:  doc.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Authenticate exchanges the authorization code and extracts the identity
// from the id_token. The result is a Profile; the manager resolves it
// against the directory and mints first-party tokens.
func (s *oidcStrategy) Authenticate(ctx context.Context, creds Credentials) (*AuthOutcome, error) {
	if creds.Code == "" {
		return nil, ErrAuthorizationCodeRequired
	}
	if s.config.Issuer == "" || s.config.ClientID == "" {
		return nil, fmt.Errorf("%w: oidc issuer or client id not set", ErrConfiguration)
	}

	doc, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}
	conf := s.oauthConfig(doc, creds.Metadata["redirect_uri"])

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	var opts []oauth2.AuthCodeOption
	if verifier := creds.Metadata["code_verifier"]; verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	tok, err := conf.Exchange(ctx, creds.Code, opts...)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	profile, err := profileFromToken(tok)
	if err != nil {
		return nil, err
	}
	return &AuthOutcome{Profile: profile}, nil
}

// profileFromToken pulls the identity claims out of the id_token. The token
// arrived over TLS straight from the token endpoint, so its signature is
// not re-verified here.
func profileFromToken(tok *oauth2.Token) (*OIDCProfile, error) {
	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		return nil, ErrIdentityMissing
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawID, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityMissing, err)
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	if sub == "" && email == "" {
		return nil, ErrIdentityMissing
	}

	expiresIn := 3600
	if !tok.Expiry.IsZero() {
		if remaining := int(time.Until(tok.Expiry).Seconds()); remaining > 0 {
			expiresIn = remaining
		}
	}

	return &OIDCProfile{
		Subject:      sub,
		Email:        email,
		Name:         name,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// Validate only checks that a token is present. Provider-side tokens are
// opaque here; introspection against the provider is out of scope, and
// first-party tokens minted after an OIDC login validate through the token
// strategy instead.
func (s *oidcStrategy) Validate(_ context.Context, accessToken string) (*Verification, error) {
	if accessToken == "" {
		return nil, ErrTokenInvalid
	}
	return &Verification{}, nil
}

// Refresh exchanges a provider refresh token for a new provider access
// token at the provider's token endpoint.
func (s *oidcStrategy) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrTokenInvalid
	}

	doc, err := s.discover(ctx)
	if err != nil {
		return "", err
	}
	conf := s.oauthConfig(doc, "")

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
		}
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return tok.AccessToken, nil
}

// Revoke is a no-op; provider-side revocation endpoints are not wired.
func (s *oidcStrategy) Revoke(context.Context, string) error {
	return nil
}
