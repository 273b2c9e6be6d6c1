package index

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUsageIncrement(t *testing.T) {
	u := NewUsage()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	u.Increment("a", now)
	u.Increment("a", now.Add(time.Minute))
	u.Increment("b", now)

	assert.Equal(t, uint64(2), u.Count("a"))
	assert.Equal(t, uint64(1), u.Count("b"))
	assert.Equal(t, uint64(0), u.Count("missing"))

	last, ok := u.LastUsed("a")
	assert.True(t, ok)
	assert.Equal(t, now.Add(time.Minute), last)
}

func TestUsageSnapshotIsACopy(t *testing.T) {
	u := NewUsage()
	u.Increment("a", time.Now())

	snap := u.Snapshot()
	snap["a"] = 99
	assert.Equal(t, uint64(1), u.Count("a"))
}

func TestUsageForget(t *testing.T) {
	u := NewUsage()
	now := time.Now()
	u.Increment("keep", now)
	u.Increment("drop", now)

	n := u.Forget(func(id string) bool { return id == "keep" })
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(0), u.Count("drop"))
	_, ok := u.LastUsed("drop")
	assert.False(t, ok)
	assert.Equal(t, uint64(1), u.Count("keep"))
}

func TestUsageConcurrent(t *testing.T) {
	u := NewUsage()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u.Increment("a", time.Now())
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(50), u.Count("a"))
}
