package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
)

type treeSection struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Default   bool            `json:"default,omitempty"`
	Shared    bool            `json:"shared"`
	Location  string          `json:"location"`
	Shortcuts []*treeShortcut `json:"shortcuts"`
}

type treeShortcut struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Action  string       `json:"action"`
	Target  string       `json:"target,omitempty"`
	Shared  bool         `json:"shared"`
	Section *treeSection `json:"section,omitempty"`
}

// NewTreeCommand creates the tree command.
func NewTreeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the merged section hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHierarchy(cmd, func(_ context.Context, m *hierarchy.Manager) error {
				tree := buildTree(m)
				return emit(rootOpts, cmd.OutOrStdout(), tree, func(w io.Writer) error {
					return renderTree(w, tree)
				})
			})
		},
	}
}

func buildTree(m *hierarchy.Manager) []*treeSection {
	top := m.TopLevelSections()
	out := make([]*treeSection, 0, len(top))
	for _, s := range top {
		out = append(out, buildSection(m, s))
	}
	return out
}

func buildSection(m *hierarchy.Manager, s *domain.Section) *treeSection {
	node := &treeSection{
		ID:        s.ID,
		Name:      s.Title(),
		Default:   s.IsDefault,
		Shared:    m.IsSectionShared(s.ID),
		Location:  s.StoredIn().String(),
		Shortcuts: []*treeShortcut{},
	}
	if node.Default && node.Name == "" {
		node.Name = "(default)"
	}

	for _, sc := range m.ShortcutsOf(s.ID) {
		leaf := &treeShortcut{
			ID:     sc.ID,
			Name:   sc.Name,
			Action: sc.Action.String(),
			Target: targetOf(sc),
			Shared: m.IsShortcutShared(sc.ID),
		}
		if sc.IsNestedLink() {
			if child, ok := m.Section(sc.NestedSectionID); ok {
				leaf.Section = buildSection(m, child)
			}
		}
		node.Shortcuts = append(node.Shortcuts, leaf)
	}
	return node
}

func targetOf(sc *domain.Shortcut) string {
	switch sc.Action {
	case domain.ActionURLLink:
		if sc.HasFileBookmark() {
			return sc.URL + " (bookmarked)"
		}
		return sc.URL
	case domain.ActionClipboardText:
		if sc.CopyPrivate {
			return "(private)"
		}
		return fmt.Sprintf("%q", sc.CopyText)
	case domain.ActionSetReplacement:
		return "{" + sc.ReplacementToken + "}"
	}
	return ""
}

func renderTree(w io.Writer, tree []*treeSection) error {
	var b strings.Builder
	for _, s := range tree {
		renderSection(&b, s, 0, "")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderSection(b *strings.Builder, s *treeSection, depth int, marker string) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s%s [%s%s]\n", indent, marker, s.Name, s.Location, sharedMark(s.Shared))
	for _, sc := range s.Shortcuts {
		if sc.Section != nil {
			renderSection(b, sc.Section, depth+1, "> ")
			continue
		}
		fmt.Fprintf(b, "%s  - %s (%s) %s", indent, sc.Name, sc.Action, sc.Target)
		if sc.Shared {
			b.WriteString(" [synced]")
		}
		b.WriteString("\n")
	}
}

func sharedMark(shared bool) string {
	if shared {
		return ", synced"
	}
	return ""
}
