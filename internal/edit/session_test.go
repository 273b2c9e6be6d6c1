package edit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/edit"
	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
	"github.com/MrSnakeDoc/launchbar/internal/store"
	"github.com/MrSnakeDoc/launchbar/internal/store/memory"
)

type fixture struct {
	m      *hierarchy.Manager
	s      *edit.Session
	local  *memory.Backend
	shared *memory.Backend
	feed   *memory.Feed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{local: memory.NewBackend(), shared: memory.NewBackend(), feed: &memory.Feed{}}
	st := store.New(f.local, f.shared, logger.NewNop())
	f.m = hierarchy.New(st, f.feed, logger.NewNop())
	_, err := f.m.Load(context.Background())
	require.NoError(t, err)
	f.s = edit.NewSession(f.m, logger.NewNop())
	return f
}

func (f *fixture) count() int {
	n := 0
	for _, k := range []domain.Kind{domain.KindSection, domain.KindShortcut, domain.KindReplacement} {
		n += f.local.Count(k) + f.shared.Count(k)
	}
	return n
}

func (f *fixture) createSection(t *testing.T, name string) *domain.Section {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.s.BeginCreate(ctx, edit.ObjectSection, ""))
	require.NoError(t, f.s.EditSection(func(d *domain.Section) { d.Name = name }))
	require.NoError(t, f.s.Commit(ctx))
	sec, ok := f.s.SelectedSection()
	require.True(t, ok)
	return sec
}

func (f *fixture) createShortcut(t *testing.T, sectionID, name, url string) *domain.Shortcut {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.s.BeginCreate(ctx, edit.ObjectShortcut, sectionID))
	require.NoError(t, f.s.EditShortcut(func(d *domain.Shortcut) {
		d.Name = name
		d.URL = url
	}))
	require.NoError(t, f.s.Commit(ctx))
	sc, ok := f.s.SelectedShortcut()
	require.True(t, ok)
	return sc
}

func TestCancelAfterCreatePersistsNothing(t *testing.T) {
	ctx := context.Background()
	for _, obj := range []edit.Object{edit.ObjectSection, edit.ObjectShortcut} {
		t.Run(obj.String(), func(t *testing.T) {
			f := newFixture(t)
			before := f.count()

			require.NoError(t, f.s.BeginCreate(ctx, obj, ""))
			assert.Equal(t, edit.ActionCreate, f.s.Action())
			_ = f.s.EditSection(func(d *domain.Section) { d.Name = "Draft" })
			_ = f.s.EditShortcut(func(d *domain.Shortcut) {
				d.Name = "Draft"
				d.URL = "https://x"
			})
			require.NoError(t, f.s.Cancel(ctx))

			assert.Equal(t, before, f.count())
			assert.Equal(t, edit.ActionNone, f.s.Action())
			assert.Equal(t, edit.ObjectNone, f.s.Object())
			assert.False(t, f.m.Suspended())
		})
	}
}

func TestCommitAfterAmendKeepsID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sec := f.createSection(t, "Work")
	sc := f.createShortcut(t, sec.ID, "Mail", "https://mail.example.com")
	before := f.count()

	require.NoError(t, f.s.Select(ctx, edit.ObjectShortcut, sc.ID))
	require.NoError(t, f.s.BeginAmend(ctx))
	require.NoError(t, f.s.EditShortcut(func(d *domain.Shortcut) { d.Name = "Webmail" }))
	require.True(t, f.s.CanSave())
	require.NoError(t, f.s.Commit(ctx))

	assert.Equal(t, before, f.count())
	got, ok := f.m.Shortcut(sc.ID)
	require.True(t, ok)
	assert.Equal(t, "Webmail", got.Name)
	assert.Equal(t, "https://mail.example.com", got.URL)
	obj, id := f.s.Selected()
	assert.Equal(t, edit.ObjectShortcut, obj)
	assert.Equal(t, sc.ID, id)
}

func TestCancelAmendRevertsDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sec := f.createSection(t, "Work")

	require.NoError(t, f.s.BeginAmend(ctx))
	require.NoError(t, f.s.EditSection(func(d *domain.Section) { d.Name = "Play" }))
	require.NoError(t, f.s.Cancel(ctx))

	got, ok := f.s.SelectedSection()
	require.True(t, ok)
	assert.Equal(t, sec.ID, got.ID)
	assert.Equal(t, "Work", got.Name)
}

func TestSelectWhileEditing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.createSection(t, "A")
	b := f.createSection(t, "B")

	require.NoError(t, f.s.Select(ctx, edit.ObjectSection, a.ID))
	require.NoError(t, f.s.BeginAmend(ctx))
	require.NoError(t, f.s.EditSection(func(d *domain.Section) { d.Name = "A2" }))

	// Same entity: the draft survives.
	require.NoError(t, f.s.Select(ctx, edit.ObjectSection, a.ID))
	assert.Equal(t, edit.ActionAmend, f.s.Action())
	draft, ok := f.s.DraftSection()
	require.True(t, ok)
	assert.Equal(t, "A2", draft.Name)

	// Another entity: the draft is dropped.
	require.NoError(t, f.s.Select(ctx, edit.ObjectSection, b.ID))
	assert.Equal(t, edit.ActionNone, f.s.Action())
	assert.Equal(t, "A", a.Name)

	err := f.s.Select(ctx, edit.ObjectShortcut, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBeginAmendNeedsSelection(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.s.BeginAmend(context.Background()), edit.ErrNothingSelected)
	assert.ErrorIs(t, f.s.Commit(context.Background()), edit.ErrNotEditing)
}

func TestCommitRejectsInvalidDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	before := f.count()

	require.NoError(t, f.s.BeginCreate(ctx, edit.ObjectShortcut, ""))
	assert.False(t, f.s.CanSave())
	errs := f.s.Errors()
	assert.Contains(t, errs, edit.FieldName)
	assert.Contains(t, errs, edit.FieldURL)

	err := f.s.Commit(ctx)
	var verrs domain.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, before, f.count())
	assert.Equal(t, edit.ActionCreate, f.s.Action(), "draft stays open")

	require.NoError(t, f.s.EditShortcut(func(d *domain.Shortcut) {
		d.Name = "Copy"
		d.CopyText = "hello"
	}))
	assert.True(t, f.s.CanSave())
	require.NoError(t, f.s.Commit(ctx))
	assert.Equal(t, before+1, f.count())
}

func TestCreateSectionWithParentNests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	parent := f.createSection(t, "Parent")

	require.NoError(t, f.s.BeginCreate(ctx, edit.ObjectSection, parent.ID))
	require.NoError(t, f.s.EditSection(func(d *domain.Section) { d.Name = "Child" }))
	require.NoError(t, f.s.Commit(ctx))

	child, ok := f.s.SelectedSection()
	require.True(t, ok)
	got, ok := f.m.NestedParentOf(child.ID)
	require.True(t, ok)
	assert.Equal(t, parent.ID, got.ID)
}

func TestCreateSectionKeepsSectionWhenNestFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	parent := f.createSection(t, "Parent")

	require.NoError(t, f.s.BeginCreate(ctx, edit.ObjectSection, parent.ID))
	require.NoError(t, f.s.EditSection(func(d *domain.Section) { d.Name = "Child" }))
	draft, ok := f.s.DraftSection()
	require.True(t, ok)

	// The parent disappears while the draft is open.
	require.NoError(t, f.m.RemoveSection(ctx, parent.ID))

	err := f.s.Commit(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

	assert.Equal(t, edit.ActionNone, f.s.Action())
	assert.False(t, f.m.Suspended())
	child, ok := f.s.SelectedSection()
	require.True(t, ok)
	assert.Equal(t, draft.ID, child.ID)
	assert.False(t, f.m.IsNested(child.ID))

	// A fresh draft can be opened without tripping over the failed one.
	require.NoError(t, f.s.BeginCreate(ctx, edit.ObjectSection, ""))
	require.NoError(t, f.s.Cancel(ctx))
}

func TestAmendSharedRunsCascade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sec := f.createSection(t, "Team")

	require.NoError(t, f.s.BeginAmend(ctx))
	require.NoError(t, f.s.EditSection(func(d *domain.Section) { d.Shared = true }))
	require.NoError(t, f.s.Commit(ctx))
	assert.True(t, f.shared.Has(domain.KindSection, sec.ID))

	sc := f.createShortcut(t, sec.ID, "Wiki", "https://wiki")
	require.NoError(t, f.m.SetShortcutShared(ctx, sc.ID, true))

	require.NoError(t, f.s.Select(ctx, edit.ObjectSection, sec.ID))
	require.NoError(t, f.s.BeginAmend(ctx))
	require.NoError(t, f.s.EditSection(func(d *domain.Section) { d.Shared = false }))
	require.NoError(t, f.s.Commit(ctx))

	assert.False(t, f.shared.Has(domain.KindSection, sec.ID))
	assert.False(t, f.shared.Has(domain.KindShortcut, sc.ID))
}

func TestEditingDefersRemoteReload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sec := f.createSection(t, "Work")
	reloads := f.m.ReloadCount()

	require.NoError(t, f.s.BeginAmend(ctx))
	f.feed.Bump()
	reloaded, err := f.m.ApplyRemoteChanges(ctx)
	require.NoError(t, err)
	assert.False(t, reloaded)

	require.NoError(t, f.s.EditSection(func(d *domain.Section) { d.Name = "Office" }))
	require.NoError(t, f.s.Commit(ctx))
	assert.Equal(t, reloads+1, f.m.ReloadCount())

	got, ok := f.s.SelectedSection()
	require.True(t, ok)
	assert.Equal(t, sec.ID, got.ID)
	assert.Equal(t, "Office", got.Name)
}

func TestPreviewExpandsTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.m.AddReplacement(ctx, &domain.Replacement{Token: "host", Name: "Host", Replacement: "intranet"}))

	require.NoError(t, f.s.BeginCreate(ctx, edit.ObjectShortcut, ""))
	require.NoError(t, f.s.EditShortcut(func(d *domain.Shortcut) {
		d.Name = "Home {host}"
		d.URL = "https://{host}/home"
	}))
	p, err := f.s.Preview()
	require.NoError(t, err)
	assert.Equal(t, "Home intranet", p.Name)
	assert.Equal(t, "https://intranet/home", p.URL)
	assert.Equal(t, []string{"host"}, p.Tokens)
}
