// Package abase implements the authentication and session lifecycle core of
// the membership-registration back office.
//
// The entry point is the [Manager], assembled through the [Builder]:
//
//	mgr, err := abase.New().
//		WithConfig(cfg).
//		WithRedis(client).
//		WithDirectory(users).
//		Build()
//
// A Manager multiplexes three authentication strategies behind one surface:
// OIDC authorization-code login, local email/password login, and stateful
// bearer-token operations (validate, refresh, revoke). Sessions, refresh
// bindings, revocation markers and brute-force counters all live in Redis
// under a shared key prefix, so every instance sharing that Redis sees the
// same authentication state.
package abase
