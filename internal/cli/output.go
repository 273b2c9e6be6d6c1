package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/launchbar/internal/app"
	"github.com/MrSnakeDoc/launchbar/internal/config"
	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

// emit writes data as indented JSON, or calls text for the text format.
func emit(opts *RootOptions, w io.Writer, data any, text func(w io.Writer) error) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	return text(w)
}

// withHierarchy opens the configured stores, loads the hierarchy and runs
// fn against it. The change feed is not started: one-shot commands only
// need a consistent snapshot.
func withHierarchy(cmd *cobra.Command, fn func(ctx context.Context, m *hierarchy.Manager) error) error {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	m := stores.NewManager(cfg)
	loadCtx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout)
	defer cancel()
	if _, err := m.Load(loadCtx); err != nil {
		return fmt.Errorf("failed to load hierarchy: %w", err)
	}
	return fn(ctx, m)
}
