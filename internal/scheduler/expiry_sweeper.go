package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

// DefaultSweepInterval is used when no interval is configured.
const DefaultSweepInterval = time.Minute

// ExpirySweeper blanks replacement values once their expiry has passed.
type ExpirySweeper struct {
	runner   Runner
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}
}

// NewExpirySweeper creates a new expiry sweeper
func NewExpirySweeper(runner Runner, log logger.Logger, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &ExpirySweeper{
		runner:   runner,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start sweeps once, then periodically
func (es *ExpirySweeper) Start(ctx context.Context) {
	if _, err := es.Sweep(ctx); err != nil {
		es.logger.Warn("initial expiry sweep failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(es.interval)
	go func() {
		defer close(es.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := es.Sweep(ctx); err != nil {
					es.logger.Error("expiry sweep failed",
						logger.Error(err))
				}
			case <-es.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the sweeper and waits for it to exit
func (es *ExpirySweeper) Stop() {
	close(es.stopCh)
	<-es.done
}

// Sweep clears expired replacements and returns their tokens.
func (es *ExpirySweeper) Sweep(ctx context.Context) ([]string, error) {
	var cleared []string
	err := es.runner.Do(ctx, func(m *hierarchy.Manager) error {
		var err error
		cleared, err = m.ClearExpired(ctx)
		return err
	})

	if len(cleared) > 0 {
		es.logger.Info("expired replacements cleared",
			logger.Strings("tokens", cleared))
	} else if err == nil {
		es.logger.Debug("no replacements expired")
	}
	return cleared, err
}
