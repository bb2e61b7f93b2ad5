// Package teleport implements the teleport-chest network: named chest nodes
// whose trigger volumes relocate actors to a randomly chosen other chest
// after a delay, with per-chest reopen cooldowns and a shared destination
// lockout table preventing immediate back-teleport loops.
package teleport

import (
	"github.com/google/uuid"
)

// LockoutTable maps chest identity to remaining lockout seconds. A chest
// with a live entry refuses to initiate teleports regardless of its door
// state. The table is shared by every chest of a simulation and owned by
// whoever drives the ticks; it is only ever accessed from the simulation
// goroutine, so it does no locking.
type LockoutTable struct {
	remaining map[uuid.UUID]float64
}

// NewLockoutTable creates an empty lockout table.
func NewLockoutTable() *LockoutTable {
	return &LockoutTable{remaining: make(map[uuid.UUID]float64)}
}

// Set starts or overwrites the lockout for the chest identity passed.
// Durations of zero or below clear the entry.
func (t *LockoutTable) Set(id uuid.UUID, seconds float64) {
	if seconds <= 0 {
		delete(t.remaining, id)
		return
	}
	t.remaining[id] = seconds
}

// Locked reports whether the chest identity has a non-expired lockout.
func (t *LockoutTable) Locked(id uuid.UUID) bool {
	return t.remaining[id] > 0
}

// Remaining returns the remaining lockout seconds for the chest identity, or
// zero if it has none.
func (t *LockoutTable) Remaining(id uuid.UUID) float64 {
	return t.remaining[id]
}

// Forget drops the entry of a chest identity, used when a chest node is
// destroyed.
func (t *LockoutTable) Forget(id uuid.UUID) {
	delete(t.remaining, id)
}

// Len returns the number of live lockout entries.
func (t *LockoutTable) Len() int {
	return len(t.remaining)
}

// Tick decrements every entry by the elapsed seconds and removes entries
// that reach zero. Expired keys are collected first and deleted after, so
// the table is never mutated while being iterated.
func (t *LockoutTable) Tick(dt float64) {
	var expired []uuid.UUID
	for id, rem := range t.remaining {
		rem -= dt
		if rem <= 0 {
			expired = append(expired, id)
			continue
		}
		t.remaining[id] = rem
	}
	for _, id := range expired {
		delete(t.remaining, id)
	}
}
