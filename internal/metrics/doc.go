// Package metrics provides lock-free counters for the authentication core.
//
// Counters live in cache-line-padded slots and are incremented atomically;
// the write path performs no allocation and no I/O. Export to an external
// system is the caller's concern, fed from Snapshot values.
package metrics
