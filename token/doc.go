// Package token encodes and decodes the signed bearer tokens issued by the
// authentication core.
//
// Tokens are self-contained HS256 claim sets carrying subject, scope
// (access or refresh), issuer, audience, issuance/expiry timestamps and a
// fresh jti. Access tokens additionally embed the denormalized identity
// claims (email, roles) needed for stateless checks.
//
// # Architecture boundaries
//
// This package owns signing and claim validation only. Session state,
// blacklisting and scope enforcement live with the callers; the codec
// returns the decoded scope and never consults external state.
//
// Decode deliberately collapses every verification failure (bad signature,
// wrong issuer or audience, expiry) into the single [ErrTokenInvalid] so the
// codec cannot be used as a validation oracle.
package token
