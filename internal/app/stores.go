package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/launchbar/internal/config"
	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchbar/internal/logger"
	"github.com/MrSnakeDoc/launchbar/internal/redis"
	"github.com/MrSnakeDoc/launchbar/internal/store"
	"github.com/MrSnakeDoc/launchbar/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/launchbar/internal/store/redis"
	"github.com/MrSnakeDoc/launchbar/internal/store/sqlite"
)

// Stores holds the two physical stores and the remote-change feed.
type Stores struct {
	Local  *sqlite.Backend
	Shared store.Backend
	Entity *store.EntityStore

	redisClient *goredis.Client
	feed        *redisstore.ChangeFeed
	logger      logger.Logger
}

// OpenStores opens the sqlite local store and the shared store: redis when
// configured, otherwise an in-process memory store that lives as long as
// the process.
func OpenStores(ctx context.Context, cfg *config.Config, log logger.Logger) (*Stores, error) {
	local, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	s := &Stores{Local: local, logger: log}

	if !cfg.SharedStoreEnabled() {
		log.Warn("no redis address configured, shared store is in memory only")
		s.Shared = memory.NewBackend()
		s.Entity = store.New(local, s.Shared, log)
		return s, nil
	}

	log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	client, err := redis.New(ctx, redis.OptionsFrom(cfg), log)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	s.redisClient = client

	// Each process gets its own origin so two instances on one device
	// still see each other's writes.
	origin := cfg.DeviceID + "/" + domain.NewID()
	s.Shared = redisstore.NewBackend(client, "shared", origin, redisstore.WithChannel(cfg.SyncChannel))
	s.feed = redisstore.NewChangeFeed(client, cfg.SyncChannel, origin, log)
	s.Entity = store.New(local, s.Shared, log)
	log.Info("Redis initialized successfully")
	return s, nil
}

// Feed returns the remote-change feed, or nil when the shared store is not
// shared with anyone.
func (s *Stores) Feed() store.ChangeFeed {
	if s.feed == nil {
		return nil
	}
	return s.feed
}

// StartFeed subscribes to remote change notices, if there are any.
func (s *Stores) StartFeed(ctx context.Context) error {
	if s.feed == nil {
		return nil
	}
	return s.feed.Start(ctx)
}

// Checks returns the readiness probes of the backing stores.
func (s *Stores) Checks() map[string]deps.Check {
	checks := map[string]deps.Check{
		"local": s.Local.Ping,
	}
	if s.redisClient != nil {
		checks["shared"] = func(ctx context.Context) error {
			return s.redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

// NewManager builds the hierarchy manager over the stores.
func (s *Stores) NewManager(cfg *config.Config) *hierarchy.Manager {
	return hierarchy.New(s.Entity, s.Feed(), s.logger,
		hierarchy.WithMaxLoadAttempts(cfg.LoadMaxAttempts),
		hierarchy.WithTokenDepth(cfg.TokenMaxDepth))
}

// Close releases everything OpenStores acquired.
func (s *Stores) Close() {
	if s.feed != nil {
		s.feed.Stop()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Warnf("failed to close redis: %v", err)
		} else {
			s.logger.Info("✅ Redis closed cleanly")
		}
	}
	if err := s.Local.Close(); err != nil {
		s.logger.Warnf("failed to close local store: %v", err)
	}
}
