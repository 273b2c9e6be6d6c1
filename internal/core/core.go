// Package core serializes every operation on the hierarchy, the edit session
// and the launch planner behind one lock, so the HTTP handlers and the
// background workers can share them.
package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/edit"
	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/index"
	"github.com/MrSnakeDoc/launchbar/internal/launch"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

type Core struct {
	mu      sync.Mutex
	manager *hierarchy.Manager
	session *edit.Session
	planner *launch.Planner
	usage   *index.Usage
	logger  logger.Logger

	loadTimeout time.Duration
	ready       atomic.Bool
}

// New wraps m. A zero loadTimeout leaves Load bounded only by the caller's
// context.
func New(m *hierarchy.Manager, p *launch.Planner, log logger.Logger, loadTimeout time.Duration) *Core {
	return &Core{
		manager:     m,
		session:     edit.NewSession(m, log),
		planner:     p,
		usage:       index.NewUsage(),
		logger:      log,
		loadTimeout: loadTimeout,
	}
}

// Ready reports whether the first Load has succeeded.
func (c *Core) Ready() bool { return c.ready.Load() }

// Do runs fn with exclusive access to the Manager.
func (c *Core) Do(ctx context.Context, fn func(m *hierarchy.Manager) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return fn(c.manager)
}

// Edit runs fn with exclusive access to the edit session.
func (c *Core) Edit(ctx context.Context, fn func(s *edit.Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return fn(c.session)
}

func (c *Core) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.loadTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.loadTimeout)
}

// Load merges both stores into the hierarchy.
func (c *Core) Load(ctx context.Context) (uint64, error) {
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	var n uint64
	err := c.Do(ctx, func(m *hierarchy.Manager) error {
		var err error
		n, err = m.Load(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	c.ready.Store(true)
	return n, nil
}

// Sync reloads when the shared store has changed since the last load. The
// reload is deferred while an edit is open.
func (c *Core) Sync(ctx context.Context) (bool, error) {
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	var applied bool
	err := c.Do(ctx, func(m *hierarchy.Manager) error {
		if !m.Stale() {
			return nil
		}
		var err error
		if applied, err = m.ApplyRemoteChanges(ctx); applied {
			c.pruneUsage(m)
		}
		return err
	})
	return applied, err
}

// Reload merges the stores again regardless of the change counter. It is
// deferred, and reports false, while an edit is open.
func (c *Core) Reload(ctx context.Context) (bool, error) {
	ctx, cancel := c.bounded(ctx)
	defer cancel()

	var applied bool
	err := c.Do(ctx, func(m *hierarchy.Manager) error {
		var err error
		if applied, err = m.ApplyRemoteChanges(ctx); applied {
			c.pruneUsage(m)
		}
		return err
	})
	return applied, err
}

// Plan works out what launching the shortcut with the given id does.
func (c *Core) Plan(ctx context.Context, id string) (*launch.Plan, error) {
	var plan *launch.Plan
	err := c.Do(ctx, func(m *hierarchy.Manager) error {
		sc, ok := m.Shortcut(id)
		if !ok {
			return fmt.Errorf("shortcut %s: %w", id, domain.ErrNotFound)
		}
		var err error
		if plan, err = c.planner.Plan(ctx, sc); err != nil {
			return err
		}
		c.usage.Increment(sc.ID, m.Now())
		return nil
	})
	return plan, err
}

// Find ranks launchable shortcuts by name against query, favouring the
// ones launched most. limit <= 0 returns every match.
func (c *Core) Find(ctx context.Context, query string, limit int) ([]domain.Match, error) {
	var out []domain.Match
	err := c.Do(ctx, func(m *hierarchy.Manager) error {
		out = domain.RankShortcuts(query, m.Shortcuts(), c.usage.Snapshot())
		return nil
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

// pruneUsage drops launch counts of shortcuts a reload removed.
func (c *Core) pruneUsage(m *hierarchy.Manager) {
	n := c.usage.Forget(func(id string) bool {
		_, ok := m.Shortcut(id)
		return ok
	})
	if n > 0 {
		c.logger.Debug("usage pruned", logger.Int("count", n))
	}
}
