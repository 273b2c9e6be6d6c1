package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/launchbar/internal/domain"
	"github.com/MrSnakeDoc/launchbar/internal/store"
)

// Backend stores entity records in redis: one string key per record plus
// a set of ids per kind. Writes go through MULTI/EXEC so the record, the
// index and the published change notice never disagree.
type Backend struct {
	client  *redis.Client
	scope   string
	channel string
	origin  string
}

// Option configures a Backend.
type Option func(*Backend)

// WithChannel overrides DefaultChangeChannel.
func WithChannel(channel string) Option {
	return func(b *Backend) {
		if channel != "" {
			b.channel = channel
		}
	}
}

// NewBackend creates a redis Backend. scope separates stores sharing one
// database ("shared", "local"); origin identifies this process in change
// notices so its own writes are not mistaken for remote ones.
func NewBackend(client *redis.Client, scope, origin string, opts ...Option) *Backend {
	b := &Backend{
		client:  client,
		scope:   scope,
		channel: DefaultChangeChannel,
		origin:  origin,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// List retrieves all records of one kind, ordered by id.
func (b *Backend) List(ctx context.Context, kind domain.Kind) ([]store.Record, error) {
	ids, err := b.client.SMembers(ctx, IndexKey(b.scope, kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s ids: %w", kind, err)
	}
	if len(ids) == 0 {
		return []store.Record{}, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = RecordKey(b.scope, kind, id)
	}
	values, err := b.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s records: %w", kind, err)
	}

	recs := make([]store.Record, 0, len(ids))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Indexed but missing: skip records that couldn't be retrieved
			continue
		}
		recs = append(recs, store.Record{ID: ids[i], Data: []byte(s)})
	}
	return recs, nil
}

// Put stores a record and adds it to the kind's index. The change notice
// is queued in the same transaction, so either all of it commits or none.
func (b *Backend) Put(ctx context.Context, kind domain.Kind, id string, data []byte) error {
	notice, err := b.notice("put", kind, id)
	if err != nil {
		return err
	}
	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, RecordKey(b.scope, kind, id), data, 0)
		pipe.SAdd(ctx, IndexKey(b.scope, kind), id)
		pipe.Publish(ctx, b.channel, notice)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	return nil
}

// Delete removes a record and its index entry.
func (b *Backend) Delete(ctx context.Context, kind domain.Kind, id string) error {
	notice, err := b.notice("delete", kind, id)
	if err != nil {
		return err
	}
	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, RecordKey(b.scope, kind, id))
		pipe.SRem(ctx, IndexKey(b.scope, kind), id)
		pipe.Publish(ctx, b.channel, notice)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return nil
}

// Notice is the payload published on the change channel.
type Notice struct {
	Origin string      `json:"origin"`
	Scope  string      `json:"scope"`
	Op     string      `json:"op"`
	Kind   domain.Kind `json:"kind"`
	ID     string      `json:"id"`
}

func (b *Backend) notice(op string, kind domain.Kind, id string) ([]byte, error) {
	payload, err := json.Marshal(Notice{Origin: b.origin, Scope: b.scope, Op: op, Kind: kind, ID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal change notice: %w", err)
	}
	return payload, nil
}
