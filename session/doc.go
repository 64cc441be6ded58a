// Package session is the Redis-backed store for login state that outlives a
// single request: session snapshots, refresh-token ownership bindings, and
// the revoked-jti blacklist.
//
// All operations are simple TTL-bearing SET/GET/DEL round-trips with
// overwrite semantics, so retries are idempotent and a partially completed
// write is harmless. The store is shared across processes; a deletion here
// is visible to every instance on its next read, which is what makes global
// logout and revocation immediate.
package session
