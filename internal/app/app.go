// Package app wires the stores, the hierarchy core, the background workers
// and the HTTP server into one process.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/launchbar/internal/config"
	"github.com/MrSnakeDoc/launchbar/internal/core"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/mw"
	"github.com/MrSnakeDoc/launchbar/internal/launch"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
	"github.com/MrSnakeDoc/launchbar/internal/scheduler"
	"github.com/MrSnakeDoc/launchbar/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	stores   *Stores
	core     *core.Core
	server   *httpserver.Server
	syncer   *scheduler.RemoteSync
	sweeper  *scheduler.ExpirySweeper
	importer *scheduler.ImportWatcher
}

// New opens the stores and assembles every component. Nothing runs until
// Run is called.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	stores, err := OpenStores(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	m := stores.NewManager(cfg)
	c := core.New(m, launch.NewPlanner(m, loggerClient), loggerClient, cfg.LoadTimeout)

	// Initialize bookmarks import (if a file is configured)
	var (
		importer      *scheduler.ImportWatcher
		importTrigger chan struct{}
	)
	if cfg.BookmarkFile != "" {
		loggerClient.Info("bookmark file configured, initializing import watcher",
			logger.String("file", cfg.BookmarkFile))
		importTrigger = make(chan struct{}, 1)
		importer = scheduler.NewImportWatcher(cfg.BookmarkFile, c, loggerClient, 0, importTrigger)
	} else {
		loggerClient.Info("bookmark file not configured, import disabled")
	}

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		Core:          c,
		Checks:        stores.Checks(),
		ImportTrigger: importTrigger,
		PlanLimit: mw.RateLimitConfig{
			Burst:             cfg.PlanBurst,
			RefillPerIPPerMin: cfg.PlanRefillPerMin,
			MaxEntries:        1024,
			TrustProxy:        cfg.TrustProxy,
		},
	}

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		stores:   stores,
		core:     c,
		server:   httpserver.New(cfg, loggerClient, d),
		syncer:   scheduler.NewRemoteSync(c, loggerClient, cfg.SyncInterval, nil),
		sweeper:  scheduler.NewExpirySweeper(c, loggerClient, cfg.ExpirySweepInterval),
		importer: importer,
	}, nil
}

// Run loads the hierarchy, starts the workers and serves until ctx is
// cancelled, then shuts everything down in reverse order.
func (a *App) Run(ctx context.Context) error {
	defer a.stores.Close()

	a.logger.Infof("🚀 Starting Launchbar %s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Infof("Launchbar %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	if err := a.stores.StartFeed(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to shared store changes: %w", err)
	}

	n, err := a.core.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load hierarchy: %w", err)
	}
	a.logger.Info("hierarchy loaded",
		logger.Uint64("reloads", n))

	a.sweeper.Start(ctx)
	defer a.sweeper.Stop()

	a.syncer.Start(ctx)
	defer a.syncer.Stop()
	a.logger.Info("remote sync started",
		logger.Duration("interval", a.cfg.SyncInterval))

	if a.importer != nil {
		if err := a.importer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start import watcher: %w", err)
		}
		defer a.importer.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ Launchbar stopped cleanly")
	return nil
}

// Core exposes the serialized core, for commands that run without the
// server.
func (a *App) Core() *core.Core { return a.core }

// Close releases the stores of an App that was never Run.
func (a *App) Close() { a.stores.Close() }
