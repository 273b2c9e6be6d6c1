// Package index keeps launch statistics in memory. They rank search results
// and are not persisted.
package index

import (
	"maps"
	"sync"
	"time"
)

// Usage counts launches per shortcut id.
type Usage struct {
	mu       sync.RWMutex
	counts   map[string]uint64
	lastUsed map[string]time.Time
}

// NewUsage creates an empty Usage index.
func NewUsage() *Usage {
	return &Usage{
		counts:   make(map[string]uint64),
		lastUsed: make(map[string]time.Time),
	}
}

// Increment records one launch of id at now.
func (u *Usage) Increment(id string, now time.Time) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.counts[id]++
	u.lastUsed[id] = now
}

// Count returns the launches recorded for id.
func (u *Usage) Count(id string) uint64 {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return u.counts[id]
}

// LastUsed returns when id was last launched.
func (u *Usage) LastUsed(id string) (time.Time, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	t, ok := u.lastUsed[id]
	return t, ok
}

// Snapshot returns a copy of all counts.
func (u *Usage) Snapshot() map[string]uint64 {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return maps.Clone(u.counts)
}

// Forget drops the statistics of ids that are no longer live.
func (u *Usage) Forget(keep func(id string) bool) int {
	u.mu.Lock()
	defer u.mu.Unlock()

	n := 0
	for id := range u.counts {
		if !keep(id) {
			delete(u.counts, id)
			delete(u.lastUsed, id)
			n++
		}
	}
	return n
}
