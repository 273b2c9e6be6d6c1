package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
	"github.com/MrSnakeDoc/launchbar/internal/sources/homepage"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <bookmarks.yaml>",
		Short: "Import a Homepage bookmarks or services file",
		Long: `Import a Homepage bookmarks.yaml or services.yaml. Categories become
sections and entries become URL shortcuts. Matching is by name, so running
the same import twice changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHierarchy(cmd, func(ctx context.Context, m *hierarchy.Manager) error {
				res, err := homepage.NewImporter(args[0], logger.NewNop()).Import(ctx, m)
				if err != nil {
					return err
				}
				return emit(rootOpts, cmd.OutOrStdout(), res, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "sections added: %d, shortcuts added: %d, updated: %d, unchanged: %d, skipped: %d\n",
						res.SectionsAdded, res.ShortcutsAdded, res.ShortcutsUpdated, res.Unchanged, res.Skipped)
					return err
				})
			})
		},
	}
}
