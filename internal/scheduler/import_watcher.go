package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
	"github.com/MrSnakeDoc/launchbar/internal/sources/homepage"
)

// DefaultImportDebounce absorbs the burst of events an editor save produces.
const DefaultImportDebounce = 250 * time.Millisecond

// ImportWatcher re-imports a Homepage bookmarks file whenever it changes.
type ImportWatcher struct {
	importer      *homepage.Importer
	runner        Runner
	logger        logger.Logger
	debounce      time.Duration
	stopCh        chan struct{}
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewImportWatcher creates a new import watcher
func NewImportWatcher(
	file string,
	runner Runner,
	log logger.Logger,
	debounce time.Duration,
	manualTrigger chan struct{},
) *ImportWatcher {
	if debounce <= 0 {
		debounce = DefaultImportDebounce
	}

	return &ImportWatcher{
		importer:      homepage.NewImporter(file, log),
		runner:        runner,
		logger:        log,
		debounce:      debounce,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start imports the file once and then watches its directory. Watching the
// directory rather than the file survives editors that replace the file on
// save.
func (iw *ImportWatcher) Start(ctx context.Context) error {
	watcher, err := iw.watch(ctx)
	if err != nil {
		close(iw.done)
		return err
	}
	target := filepath.Clean(iw.importer.Path())

	go func() {
		defer close(iw.done)
		defer func() { _ = watcher.Close() }()

		var settle <-chan time.Time
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				settle = time.After(iw.debounce)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				iw.logger.Warn("file watcher error",
					logger.Error(err))
			case <-settle:
				settle = nil
				iw.reimport(ctx)
			case <-iw.manualTrigger:
				iw.logger.Info("manual import triggered")
				iw.reimport(ctx)
			case <-iw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (iw *ImportWatcher) watch(ctx context.Context) (*fsnotify.Watcher, error) {
	if _, err := iw.Import(ctx); err != nil {
		return nil, fmt.Errorf("initial import failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(filepath.Clean(iw.importer.Path()))
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return watcher, nil
}

// Stop stops the watcher and waits for it to exit
func (iw *ImportWatcher) Stop() {
	close(iw.stopCh)
	<-iw.done
}

// Import applies the file to the hierarchy.
func (iw *ImportWatcher) Import(ctx context.Context) (homepage.Result, error) {
	var res homepage.Result
	err := iw.runner.Do(ctx, func(m *hierarchy.Manager) error {
		var err error
		res, err = iw.importer.Import(ctx, m)
		return err
	})
	return res, err
}

func (iw *ImportWatcher) reimport(ctx context.Context) {
	if _, err := iw.Import(ctx); err != nil {
		iw.logger.Error("failed to import bookmarks",
			logger.String("file", iw.importer.Path()),
			logger.Error(err))
	}
}
