package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/edit"
	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/launch"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
	"github.com/MrSnakeDoc/launchbar/internal/store"
	"github.com/MrSnakeDoc/launchbar/internal/store/memory"
)

func newCore(t *testing.T, feed *memory.Feed) *Core {
	t.Helper()
	log := logger.NewNop()
	st := store.New(memory.NewBackend(), memory.NewBackend(), log)
	var m *hierarchy.Manager
	if feed != nil {
		m = hierarchy.New(st, feed, log)
	} else {
		m = hierarchy.New(st, nil, log)
	}
	c := New(m, launch.NewPlanner(m, log), log, 0)
	_, err := c.Load(context.Background())
	require.NoError(t, err)
	return c
}

func TestLoadMarksReady(t *testing.T) {
	log := logger.NewNop()
	m := hierarchy.New(store.New(memory.NewBackend(), memory.NewBackend(), log), nil, log)
	c := New(m, launch.NewPlanner(m, log), log, 0)

	assert.False(t, c.Ready())
	_, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, c.Ready())
}

func TestDoSerializes(t *testing.T) {
	ctx := context.Background()
	c := newCore(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.Do(ctx, func(m *hierarchy.Manager) error {
				return m.AddSection(ctx, &domain.Section{
					Name:     domain.NewID(),
					Sequence: m.NextSectionSequence(),
				})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_ = c.Do(ctx, func(m *hierarchy.Manager) error {
		secs := m.Sections()
		require.Len(t, secs, 21)
		for i, s := range secs {
			assert.Equal(t, i+1, s.Sequence)
		}
		return nil
	})
}

func TestDoHonoursCancelledContext(t *testing.T) {
	c := newCore(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := c.Do(ctx, func(*hierarchy.Manager) error {
		called = true
		return nil
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, called)
}

func TestSyncOnlyWhenStale(t *testing.T) {
	ctx := context.Background()
	feed := &memory.Feed{}
	c := newCore(t, feed)

	applied, err := c.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, applied)

	feed.Bump()
	applied, err = c.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, applied)

	feed.Bump()
	require.NoError(t, c.Edit(ctx, func(s *edit.Session) error {
		return s.BeginCreate(ctx, edit.ObjectSection, "")
	}))
	applied, err = c.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestPlan(t *testing.T) {
	ctx := context.Background()
	c := newCore(t, nil)

	var id string
	require.NoError(t, c.Do(ctx, func(m *hierarchy.Manager) error {
		sc := &domain.Shortcut{
			Name:      "Docs",
			Action:    domain.ActionURLLink,
			URL:       "https://example.com",
			SectionID: m.DefaultSection().ID,
			Sequence:  1,
		}
		if err := m.AddShortcut(ctx, sc); err != nil {
			return err
		}
		id = sc.ID
		return nil
	}))

	plan, err := c.Plan(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, launch.KindOpenURL, plan.Kind)
	assert.Equal(t, "https://example.com", plan.URL)

	_, err = c.Plan(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindFavoursLaunchedShortcuts(t *testing.T) {
	ctx := context.Background()
	c := newCore(t, nil)

	ids := map[string]string{}
	require.NoError(t, c.Do(ctx, func(m *hierarchy.Manager) error {
		for i, name := range []string{"GitHub", "GitLab", "Calendar"} {
			sc := &domain.Shortcut{
				Name:      name,
				Action:    domain.ActionURLLink,
				URL:       "https://example.com/" + name,
				SectionID: m.DefaultSection().ID,
				Sequence:  i + 1,
			}
			if err := m.AddShortcut(ctx, sc); err != nil {
				return err
			}
			ids[name] = sc.ID
		}
		return nil
	}))

	got, err := c.Find(ctx, "git", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "GitHub", got[0].Shortcut.Name)

	_, err = c.Plan(ctx, ids["GitLab"])
	require.NoError(t, err)

	got, err = c.Find(ctx, "git", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "GitLab", got[0].Shortcut.Name)
	assert.Greater(t, got[0].UsageScore, 0.0)
}
