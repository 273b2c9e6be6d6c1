package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/launchbar/internal/logger"
)

// ChangeFeed counts change notices published by other processes.
type ChangeFeed struct {
	client  *redis.Client
	channel string
	origin  string
	logger  logger.Logger
	counter atomic.Uint64
	pubsub  *redis.PubSub
	done    chan struct{}
}

// NewChangeFeed creates a feed; call Start to subscribe.
func NewChangeFeed(client *redis.Client, channel, origin string, log logger.Logger) *ChangeFeed {
	if channel == "" {
		channel = DefaultChangeChannel
	}
	return &ChangeFeed{
		client:  client,
		channel: channel,
		origin:  origin,
		logger:  log,
		done:    make(chan struct{}),
	}
}

// Counter implements store.ChangeFeed.
func (f *ChangeFeed) Counter() uint64 {
	return f.counter.Load()
}

// Start subscribes and returns once the subscription is confirmed.
func (f *ChangeFeed) Start(ctx context.Context) error {
	pubsub := f.client.Subscribe(ctx, f.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", f.channel, err)
	}
	f.pubsub = pubsub

	ch := pubsub.Channel()
	go func() {
		defer close(f.done)
		for msg := range ch {
			f.handle(msg.Payload)
		}
	}()

	f.logger.Info("subscribed to shared store changes",
		logger.String("channel", f.channel))
	return nil
}

// Stop closes the subscription and waits for the reader to exit. It does
// nothing when Start never succeeded.
func (f *ChangeFeed) Stop() {
	if f.pubsub == nil {
		return
	}
	if err := f.pubsub.Close(); err != nil {
		f.logger.Warn("failed to close change subscription", logger.Error(err))
	}
	<-f.done
}

func (f *ChangeFeed) handle(payload string) {
	var n Notice
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		f.logger.Debug("ignoring malformed change notice", logger.Error(err))
		return
	}
	if n.Origin == f.origin {
		return
	}
	v := f.counter.Add(1)
	f.logger.Debug("remote change observed",
		logger.String("kind", string(n.Kind)),
		logger.String("id", n.ID),
		logger.Uint64("counter", v))
}
