package hierarchy_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
)

func TestAddSectionInsertsAtPosition(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.load(t)
	def := f.m.DefaultSection()

	a := f.section(t, "A", false)
	b := &domain.Section{Name: "B", Sequence: 1}
	require.NoError(t, f.m.AddSection(ctx, b))

	assert.Equal(t, []string{b.ID, def.ID, a.ID}, ids(f.m.Sections()))
	assert.Equal(t, []int{1, 2, 3}, sequences(f.m.Sections()))

	// Already contiguous: nothing is written.
	writes := f.local.Writes()
	require.NoError(t, f.m.RenumberSections(ctx))
	assert.Equal(t, writes, f.local.Writes())
}

func TestRenumberLeavingGap(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		after func(f *fixture) string
		gap   int
	}{
		{"before first", func(*fixture) string { return "" }, 1},
		{"after middle", func(f *fixture) string { return f.m.Sections()[1].ID }, 3},
		{"after last", func(f *fixture) string { return f.m.Sections()[2].ID }, 4},
		{"unknown id", func(*fixture) string { return "nope" }, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.load(t)
			f.section(t, "A", false)
			f.section(t, "B", false)

			gap, err := f.m.RenumberSectionsLeavingGap(ctx, tt.after(f))
			require.NoError(t, err)
			assert.Equal(t, tt.gap, gap)
			for _, s := range f.m.Sections() {
				assert.NotEqual(t, gap, s.Sequence)
			}
		})
	}
}

func TestNamesAreUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.load(t)
	work := f.section(t, "Work", false)
	f.shortcut(t, work.ID, "Mail", false)

	err := f.m.AddSection(ctx, &domain.Section{Name: "  work "})
	assert.True(t, domain.IsViolation(err, domain.RuleUniqueName), "got %v", err)

	err = f.m.AddSection(ctx, &domain.Section{Name: " "})
	assert.True(t, domain.IsViolation(err, domain.RuleNamedSection), "got %v", err)

	err = f.m.AddShortcut(ctx, &domain.Shortcut{Name: "MAIL", SectionID: work.ID})
	assert.True(t, domain.IsViolation(err, domain.RuleUniqueName), "got %v", err)

	err = f.m.AddShortcut(ctx, &domain.Shortcut{Name: "Other", SectionID: "ghost"})
	assert.True(t, domain.IsViolation(err, domain.RuleOwningSection), "got %v", err)

	err = f.m.AddShortcut(ctx, &domain.Shortcut{Action: domain.ActionNestedSection, SectionID: work.ID, NestedSectionID: work.ID})
	assert.True(t, domain.IsViolation(err, domain.RuleNestedLinkCreation), "got %v", err)
}

func TestNestRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.load(t)
	a := f.section(t, "A", false)
	b := f.section(t, "B", false)
	c := f.section(t, "C", false)

	link, err := f.m.Nest(ctx, b.ID, a.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "B", link.Name)
	assert.Equal(t, a.ID, link.SectionID)
	_, err = f.m.Nest(ctx, c.ID, b.ID, 0)
	require.NoError(t, err)

	tests := []struct {
		name   string
		child  string
		parent string
		rule   string
	}{
		{"self", a.ID, a.ID, domain.RuleAcyclicNesting},
		{"into child", a.ID, b.ID, domain.RuleAcyclicNesting},
		{"into grandchild", a.ID, c.ID, domain.RuleAcyclicNesting},
		{"second parent", b.ID, f.m.DefaultSection().ID, domain.RuleSingleNestParent},
		{"default", f.m.DefaultSection().ID, a.ID, domain.RuleDefaultSection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.m.Nest(ctx, tt.child, tt.parent, 0)
			assert.True(t, domain.IsViolation(err, tt.rule), "got %v", err)
		})
	}

	assert.True(t, f.m.IsDescendant(c.ID, a.ID))
	assert.Equal(t, []string{f.m.DefaultSection().ID, a.ID}, ids(f.m.TopLevelSections()))

	require.NoError(t, f.m.Unnest(ctx, c.ID))
	assert.False(t, f.m.IsNested(c.ID))
	assert.Empty(t, f.m.ShortcutsOf(b.ID))
}

func TestRenamingNestedSectionRenamesLink(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.load(t)
	a := f.section(t, "A", false)
	b := f.section(t, "B", false)
	link, err := f.m.Nest(ctx, b.ID, a.ID, 0)
	require.NoError(t, err)

	draft := b.Clone()
	draft.Name = "Bee"
	require.NoError(t, f.m.UpdateSection(ctx, draft))
	assert.Equal(t, "Bee", link.Name)
}

func TestSharingCascade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.load(t)
	a := f.section(t, "A", true)
	b := f.section(t, "B", false)

	link, err := f.m.Nest(ctx, b.ID, a.ID, 0)
	require.NoError(t, err)
	assert.True(t, link.Shared)
	assert.True(t, b.Shared, "nested section follows its parent")
	assert.True(t, f.shared.Has(domain.KindSection, b.ID))

	s := f.shortcut(t, b.ID, "docs", true)
	assert.True(t, f.m.IsShortcutShared(s.ID))
	assert.True(t, f.shared.Has(domain.KindShortcut, s.ID))

	require.NoError(t, f.m.SetShared(ctx, a.ID, false))

	for _, id := range []string{a.ID, b.ID} {
		assert.False(t, f.shared.Has(domain.KindSection, id))
		assert.True(t, f.local.Has(domain.KindSection, id))
	}
	for _, id := range []string{s.ID, link.ID} {
		assert.False(t, f.shared.Has(domain.KindShortcut, id))
		assert.True(t, f.local.Has(domain.KindShortcut, id))
	}
	assert.False(t, b.Shared)
	assert.False(t, s.Shared)
	assert.False(t, f.m.IsShortcutShared(s.ID))
}

func TestEffectiveSharingFollowsParents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.load(t)
	a := f.section(t, "A", false)
	b := f.section(t, "B", false)
	_, err := f.m.Nest(ctx, b.ID, a.ID, 0)
	require.NoError(t, err)

	require.NoError(t, f.m.SetShared(ctx, b.ID, true))
	assert.False(t, f.m.IsSectionShared(b.ID))

	require.NoError(t, f.m.SetShared(ctx, a.ID, true))
	assert.True(t, f.m.IsSectionShared(b.ID))
}

func TestShareEligibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.load(t)
	open := f.section(t, "Open", true)
	closed := f.section(t, "Closed", false)

	private := &domain.Shortcut{Name: "pin", Action: domain.ActionClipboardText, CopyText: "1234", CopyPrivate: true, SectionID: open.ID, Shared: true}
	err := f.m.AddShortcut(ctx, private)
	assert.True(t, domain.IsViolation(err, domain.RuleShareEligibility), "got %v", err)

	file := &domain.Shortcut{Name: "file", URL: "file:///tmp/x", URLSecurityBookmark: []byte{1}, SectionID: open.ID, Shared: true}
	err = f.m.AddShortcut(ctx, file)
	assert.True(t, domain.IsViolation(err, domain.RuleShareEligibility), "got %v", err)

	inClosed := &domain.Shortcut{Name: "c", URL: "https://c", SectionID: closed.ID, Shared: true}
	err = f.m.AddShortcut(ctx, inClosed)
	assert.True(t, domain.IsViolation(err, domain.RuleShareEligibility), "got %v", err)

	plain := f.shortcut(t, closed.ID, "plain", false)
	err = f.m.SetShortcutShared(ctx, plain.ID, true)
	assert.True(t, domain.IsViolation(err, domain.RuleShareEligibility), "got %v", err)
	assert.False(t, plain.Shared)
}

func TestRemoveSection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.load(t)
	a := f.section(t, "A", false)
	b := f.section(t, "B", false)
	c := f.section(t, "C", false)
	s := f.shortcut(t, a.ID, "s", false)
	_, err := f.m.Nest(ctx, b.ID, a.ID, 1)
	require.NoError(t, err)

	err = f.m.RemoveSection(ctx, f.m.DefaultSection().ID)
	assert.True(t, domain.IsViolation(err, domain.RuleDefaultSection), "got %v", err)

	require.NoError(t, f.m.RemoveSection(ctx, a.ID))

	_, ok := f.m.Section(a.ID)
	assert.False(t, ok)
	assert.False(t, f.local.Has(domain.KindSection, a.ID))
	assert.False(t, f.local.Has(domain.KindShortcut, s.ID))
	assert.False(t, f.m.IsNested(b.ID))
	assert.Equal(t, []string{f.m.DefaultSection().ID, b.ID, c.ID}, ids(f.m.Sections()))
	assert.Equal(t, []int{1, 2, 3}, sequences(f.m.Sections()))
}

func TestMoveShortcutAcrossSections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.load(t)
	a := f.section(t, "A", true)
	b := f.section(t, "B", false)
	s1 := f.shortcut(t, a.ID, "one", true)
	s2 := f.shortcut(t, a.ID, "two", false)
	t1 := f.shortcut(t, b.ID, "three", false)

	require.NoError(t, f.m.MoveShortcut(ctx, s1.ID, b.ID, 0))

	assert.Equal(t, []string{s1.ID, t1.ID}, ids(f.m.ShortcutsOf(b.ID)))
	assert.Equal(t, []int{1, 2}, []int{s1.Sequence, t1.Sequence})
	assert.Equal(t, 1, s2.Sequence)
	assert.False(t, s1.Shared, "unshared section cannot hold a shared shortcut")
	assert.True(t, f.local.Has(domain.KindShortcut, s1.ID))
	assert.False(t, f.shared.Has(domain.KindShortcut, s1.ID))
}

func TestUpdateShortcutKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.load(t)
	a := f.section(t, "A", false)
	s1 := f.shortcut(t, a.ID, "one", false)
	s2 := f.shortcut(t, a.ID, "two", false)

	draft := s2.Clone()
	draft.Name = "second"
	draft.Sequence = 1
	require.NoError(t, f.m.UpdateShortcut(ctx, draft))

	got, ok := f.m.Shortcut(s2.ID)
	require.True(t, ok)
	assert.Equal(t, "second", got.Name)
	assert.Equal(t, []string{s2.ID, s1.ID}, ids(f.m.ShortcutsOf(a.ID)))

	link := &domain.Shortcut{ID: s1.ID, Action: domain.ActionNestedSection, SectionID: a.ID}
	err := f.m.UpdateShortcut(ctx, link)
	assert.True(t, domain.IsViolation(err, domain.RuleNestedLinkCreation), "got %v", err)
}

func TestReplacements(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.load(t)

	env := &domain.Replacement{Token: "env", Name: "Environment", AllowedValues: "dev, prod", Expiry: 1}
	require.NoError(t, f.m.AddReplacement(ctx, env))
	assert.True(t, f.local.Has(domain.KindReplacement, env.ID))

	tests := []struct {
		name string
		r    *domain.Replacement
		rule string
	}{
		{"bad token", &domain.Replacement{Token: "a b", Name: "x"}, domain.RuleTokenPattern},
		{"same token", &domain.Replacement{Token: "env", Name: "y"}, domain.RuleUniqueToken},
		{"same name", &domain.Replacement{Token: "env2", Name: "ENVIRONMENT"}, domain.RuleUniqueName},
		{"refers to itself", &domain.Replacement{Token: "host", Name: "Host", Replacement: "www.{host}"}, domain.RuleSelfReference},
		{"embedded self reference", &domain.Replacement{Token: "dc", Name: "DC", Replacement: "{x{dc}}"}, domain.RuleSelfReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.m.AddReplacement(ctx, tt.r)
			assert.True(t, domain.IsViolation(err, tt.rule), "got %v", err)
		})
	}

	err := f.m.AssignReplacement(ctx, "env", "qa")
	assert.True(t, domain.IsViolation(err, domain.RuleAllowedValue), "got %v", err)
	require.NoError(t, f.m.AssignReplacement(ctx, "env", "prod"))
	assert.Equal(t, clock, env.Entered)

	loop := &domain.Replacement{Token: "loop", Name: "Loop"}
	require.NoError(t, f.m.AddReplacement(ctx, loop))
	err = f.m.AssignReplacement(ctx, "loop", "{loop}")
	assert.True(t, domain.IsViolation(err, domain.RuleSelfReference), "got %v", err)
	assert.Empty(t, loop.Replacement)

	out, touched, err := f.m.Resolver().Resolve("https://{env}.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://prod.example.com", out)
	assert.Equal(t, []string{"env"}, touched.Tokens())

	assert.Empty(t, f.m.Expired())
	env.Entered = clock.Add(-2 * time.Hour)
	cleared, err := f.m.ClearExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"env"}, cleared)
	assert.Empty(t, env.Replacement)

	require.NoError(t, f.m.RemoveReplacement(ctx, "env"))
	assert.False(t, f.local.Has(domain.KindReplacement, env.ID))
}

func TestRenumberRepairsStoredSequences(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		sections      []*domain.Section
		shortcuts     []*domain.Shortcut
		wantSections  []string
		wantShortcuts []string
	}{
		{
			name: "duplicate and gapped sections",
			sections: []*domain.Section{
				{ID: "a", Name: "A", Sequence: 2},
				{ID: "b", Name: "B", Sequence: 7},
				{ID: "def", IsDefault: true, Sequence: 2},
			},
			wantSections: []string{"a", "def", "b"},
		},
		{
			name: "duplicate shortcuts",
			sections: []*domain.Section{
				{ID: "def", IsDefault: true, Sequence: 1},
				{ID: "a", Name: "A", Sequence: 2},
			},
			shortcuts: []*domain.Shortcut{
				{ID: "y", Name: "Y", SectionID: "a", Sequence: 3},
				{ID: "x", Name: "X", SectionID: "a", Sequence: 3},
			},
			wantSections:  []string{"def", "a"},
			wantShortcuts: []string{"x", "y"},
		},
		{
			name: "gapped shortcuts out of order",
			sections: []*domain.Section{
				{ID: "a", Name: "A", Sequence: 5},
				{ID: "def", IsDefault: true, Sequence: 9},
			},
			shortcuts: []*domain.Shortcut{
				{ID: "p", Name: "P", SectionID: "a", Sequence: 9},
				{ID: "q", Name: "Q", SectionID: "a", Sequence: 4},
				{ID: "r", Name: "R", SectionID: "a", Sequence: 4},
			},
			wantSections:  []string{"a", "def"},
			wantShortcuts: []string{"q", "r", "p"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			for _, s := range tt.sections {
				require.NoError(t, f.st.SaveSection(ctx, s))
			}
			for _, sc := range tt.shortcuts {
				sc.Action = domain.ActionURLLink
				sc.URL = "https://example.com/" + sc.ID
				require.NoError(t, f.st.SaveShortcut(ctx, sc))
			}
			f.load(t)
			assert.Equal(t, tt.wantSections, ids(f.m.Sections()))

			require.NoError(t, f.m.RenumberSections(ctx))
			require.NoError(t, f.m.RenumberShortcuts(ctx, "a"))

			want := make([]int, len(tt.wantSections))
			for i := range want {
				want[i] = i + 1
			}
			assert.Equal(t, want, sequences(f.m.Sections()))
			assert.Equal(t, tt.wantSections, ids(f.m.Sections()))

			inA := f.m.ShortcutsOf("a")
			assert.Equal(t, tt.wantShortcuts, nonEmpty(ids(inA)))
			for i, sc := range inA {
				assert.Equal(t, i+1, sc.Sequence, "shortcut %s", sc.ID)
			}

			// The repaired numbering is what the next load reads back.
			f.load(t)
			assert.Equal(t, want, sequences(f.m.Sections()))
			assert.Equal(t, tt.wantSections, ids(f.m.Sections()))
			for i, sc := range f.m.ShortcutsOf("a") {
				assert.Equal(t, i+1, sc.Sequence, "reloaded shortcut %s", sc.ID)
			}
		})
	}
}

func nonEmpty(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	return list
}
