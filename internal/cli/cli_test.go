package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
	"github.com/MrSnakeDoc/launchbar/internal/sources/homepage"
	"github.com/MrSnakeDoc/launchbar/internal/store"
	"github.com/MrSnakeDoc/launchbar/internal/store/memory"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "launchbar", cmd.Use)

	for _, name := range []string{"serve", "tree", "resolve", "find", "import", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

// run executes the CLI against a fresh local database in a temp dir.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("LAUNCHBAR_DB_PATH", filepath.Join(dir, "launchbar.db"))
	t.Setenv("LAUNCHBAR_REDIS_ADDR", "")
	t.Setenv("LAUNCHBAR_LOG_LEVEL", "error")
	t.Setenv("LAUNCHBAR_PRETTY_LOG", "false")
	return dir
}

func TestInvalidFormat(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "--format", "yaml", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "launchbar "))
}

func TestImportThenTree(t *testing.T) {
	dir := setupEnv(t)
	file := filepath.Join(dir, "bookmarks.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
- Developer:
    - Github:
        - href: https://github.com/
- Social:
    - Reddit:
        - href: https://reddit.com/
`), 0o644))

	out, err := run(t, "--format", "json", "import", file)
	require.NoError(t, err)
	var res homepage.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, homepage.Result{SectionsAdded: 2, ShortcutsAdded: 2}, res)

	out, err = run(t, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged: 2")

	out, err = run(t, "tree")
	require.NoError(t, err)
	assert.Equal(t, `(default) [local]
Developer [local]
  - Github (urlLink) https://github.com/
Social [local]
  - Reddit (urlLink) https://reddit.com/
`, out)

	out, err = run(t, "find", "red")
	require.NoError(t, err)
	assert.Equal(t, "  75.0  Reddit (urlLink) https://reddit.com/\n", out)

	out, err = run(t, "--format", "json", "tree")
	require.NoError(t, err)
	var tree []treeSection
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	require.Len(t, tree, 3)
	assert.True(t, tree[0].Default)
	assert.Equal(t, "Github", tree[1].Shortcuts[0].Name)
}

func TestResolveWithoutReplacements(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "resolve", "https://{env}.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://.example.com\n", out, "unknown tokens are removed")
}

func TestRenderTree(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()
	m := hierarchy.New(store.New(memory.NewBackend(), memory.NewBackend(), log), nil, log)
	_, err := m.Load(ctx)
	require.NoError(t, err)

	def := m.DefaultSection()
	require.NoError(t, m.AddShortcut(ctx, &domain.Shortcut{
		Name: "Notes", Action: domain.ActionClipboardText, CopyText: "secret",
		CopyPrivate: true, SectionID: def.ID, Sequence: 1,
	}))
	require.NoError(t, m.AddShortcut(ctx, &domain.Shortcut{
		Name: "Env", Action: domain.ActionSetReplacement, ReplacementToken: "env",
		SectionID: def.ID, Sequence: 2,
	}))

	team := &domain.Section{Name: "Team", Shared: true, Sequence: 2}
	require.NoError(t, m.AddSection(ctx, team))
	ops := &domain.Section{Name: "Ops", MenuTitle: "On call", Sequence: 3}
	require.NoError(t, m.AddSection(ctx, ops))
	_, err = m.Nest(ctx, ops.ID, team.ID, 0)
	require.NoError(t, err)
	require.NoError(t, m.AddShortcut(ctx, &domain.Shortcut{
		Name: "Pager", Action: domain.ActionURLLink, URL: "https://pager.example.com/",
		Shared: true, SectionID: ops.ID, Sequence: 1,
	}))
	require.NoError(t, m.AddShortcut(ctx, &domain.Shortcut{
		Name: "Runbook", Action: domain.ActionURLLink, URL: "https://wiki.example.com/runbook",
		SectionID: ops.ID, Sequence: 2,
	}))

	var buf bytes.Buffer
	require.NoError(t, renderTree(&buf, buildTree(m)))

	g := goldie.New(t)
	g.Assert(t, "tree", buf.Bytes())
}
