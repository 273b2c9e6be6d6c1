package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

// RemoteSync polls for remote changes and applies them.
type RemoteSync struct {
	syncer        Syncer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewRemoteSync creates a new remote syncer
func NewRemoteSync(
	syncer Syncer,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *RemoteSync {
	return &RemoteSync{
		syncer:        syncer,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins polling
func (rs *RemoteSync) Start(ctx context.Context) {
	ticker := time.NewTicker(rs.interval)
	go func() {
		defer close(rs.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rs.sync(ctx)
			case <-rs.manualTrigger:
				rs.logger.Info("manual sync triggered")
				rs.sync(ctx)
			case <-rs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the syncer and waits for it to exit
func (rs *RemoteSync) Stop() {
	close(rs.stopCh)
	<-rs.done
}

func (rs *RemoteSync) sync(ctx context.Context) {
	applied, err := rs.syncer.Sync(ctx)
	if err != nil {
		rs.logger.Error("failed to apply remote changes",
			logger.Error(err))
		return
	}
	if applied {
		rs.logger.Debug("remote changes applied")
	}
}
