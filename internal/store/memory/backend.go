// Package memory provides an in-process Backend and ChangeFeed.
// It serves as the shared store when no redis is configured, and as the
// persistence double in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/store"
)

// Backend keeps records in maps guarded by a RWMutex.
type Backend struct {
	mu      sync.RWMutex
	records map[domain.Kind]map[string][]byte // kind -> id -> data
	writes  int
}

// NewBackend creates an empty backend.
func NewBackend() *Backend {
	return &Backend{
		records: make(map[domain.Kind]map[string][]byte),
	}
}

// List returns the records of one kind ordered by id.
func (b *Backend) List(_ context.Context, kind domain.Kind) ([]store.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	recs := make([]store.Record, 0, len(b.records[kind]))
	for id, data := range b.records[kind] {
		recs = append(recs, store.Record{ID: id, Data: append([]byte(nil), data...)})
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs, nil
}

// Put adds or replaces a record.
func (b *Backend) Put(_ context.Context, kind domain.Kind, id string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.records[kind] == nil {
		b.records[kind] = make(map[string][]byte)
	}
	b.records[kind][id] = append([]byte(nil), data...)
	b.writes++
	return nil
}

// Delete removes a record. Missing records are not an error.
func (b *Backend) Delete(_ context.Context, kind domain.Kind, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.records[kind], id)
	b.writes++
	return nil
}

// Has reports whether a record exists.
func (b *Backend) Has(kind domain.Kind, id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.records[kind][id]
	return ok
}

// Get returns a copy of a record's data.
func (b *Backend) Get(kind domain.Kind, id string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.records[kind][id]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Count returns the number of records of one kind.
func (b *Backend) Count(kind domain.Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.records[kind])
}

// Writes returns how many Put and Delete calls have been applied.
func (b *Backend) Writes() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.writes
}

// Feed is a ChangeFeed whose counter is advanced by hand.
type Feed struct {
	n atomic.Uint64

	// OnRead, when set, runs on every Counter call. Tests use it to
	// simulate remote changes arriving mid-load.
	OnRead func(f *Feed)
}

// Counter implements store.ChangeFeed.
func (f *Feed) Counter() uint64 {
	if f.OnRead != nil {
		f.OnRead(f)
	}
	return f.n.Load()
}

// Bump records one remote change.
func (f *Feed) Bump() {
	f.n.Add(1)
}
