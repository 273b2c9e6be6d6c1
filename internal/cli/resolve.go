package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
)

type resolveResult struct {
	Input   string   `json:"input"`
	Text    string   `json:"text"`
	Tokens  []string `json:"tokens"`
	Expired []string `json:"expired,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <text>...",
		Short: "Expand {token} markers using the stored replacements",
		Long: `Expand {token} markers using the stored replacements. Unknown tokens
are removed; replacements may themselves contain tokens.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")
			return withHierarchy(cmd, func(_ context.Context, m *hierarchy.Manager) error {
				out, touched, err := m.Resolver().Resolve(input)
				if err != nil {
					return err
				}
				res := resolveResult{Input: input, Text: out, Tokens: touched.Tokens()}
				now := time.Now()
				for _, r := range touched.Replacements() {
					if r.Expired(now) {
						res.Expired = append(res.Expired, r.Token)
					}
				}

				return emit(rootOpts, cmd.OutOrStdout(), res, func(w io.Writer) error {
					if _, err := fmt.Fprintln(w, res.Text); err != nil {
						return err
					}
					if len(res.Expired) > 0 {
						_, err := fmt.Fprintf(cmd.ErrOrStderr(), "expired: %s\n", strings.Join(res.Expired, ", "))
						return err
					}
					return nil
				})
			})
		},
	}
}
