// Package audit dispatches authentication events (login, refresh,
// revocation, logout) to a caller-provided sink without blocking the
// authentication path.
//
// The engine only emits; durable storage of the trail is the sink owner's
// responsibility. Dispatch is asynchronous through a bounded channel and,
// when configured to drop on overflow, an overloaded sink costs counted
// drops rather than latency.
package audit
