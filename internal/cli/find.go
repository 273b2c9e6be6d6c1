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

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "find <query>...",
		Short: "Rank shortcuts by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withHierarchy(cmd, func(_ context.Context, m *hierarchy.Manager) error {
				matches := domain.RankShortcuts(query, m.Shortcuts(), nil)
				if limit > 0 && len(matches) > limit {
					matches = matches[:limit]
				}
				return emit(rootOpts, cmd.OutOrStdout(), matches, func(w io.Writer) error {
					for _, mt := range matches {
						if _, err := fmt.Fprintf(w, "%6.1f  %s (%s) %s\n",
							mt.TotalScore, mt.Shortcut.Name, mt.Shortcut.Action, targetOf(mt.Shortcut)); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of matches (0 for all)")
	return cmd
}
