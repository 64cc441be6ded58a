package metrics

import "sync/atomic"

// ID identifies one counter.
type ID uint16

const (
	LoginSuccess ID = iota
	LoginFailure
	LoginRateLimited
	LoginLockedOut
	ValidateSuccess
	ValidateFailure
	RefreshSuccess
	RefreshFailure
	TokenRevoked
	SessionCreated
	SessionInvalidated
	UserProvisioned

	// IDCount is the number of defined counters.
	IDCount
)

// paddedCounter keeps each slot on its own cache line to avoid false
// sharing between hot counters.
type paddedCounter struct {
	value atomic.Uint64
	_     [56]byte
}

// Metrics holds the counter slots. A disabled instance is all no-ops.
type Metrics struct {
	enabled  bool
	counters [IDCount]paddedCounter
}

// New creates a Metrics instance; when enabled is false every operation is
// a no-op and Snapshot returns an empty map.
func New(enabled bool) *Metrics {
	return &Metrics{enabled: enabled}
}

// Inc atomically increments the counter.
func (m *Metrics) Inc(id ID) {
	if m == nil || !m.enabled || id >= IDCount {
		return
	}
	m.counters[id].value.Add(1)
}

// Get returns the current value of one counter.
func (m *Metrics) Get(id ID) uint64 {
	if m == nil || !m.enabled || id >= IDCount {
		return 0
	}
	return m.counters[id].value.Load()
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[ID]uint64
}

// Snapshot copies every counter value.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[ID]uint64, IDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := ID(0); id < IDCount; id++ {
		snap.Counters[id] = m.counters[id].value.Load()
	}
	return snap
}
