// Package redis is the volatile ephemeral store. Counters, idempotency
// records and cached results expire natively through key TTLs, so the
// housekeeping sweep has nothing to do here.
package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "gw:"

type Store struct {
	client *goredis.Client
}

var _ store.Ephemeral = (*Store)(nil)

// NewStore connects to redisURL, accepting either redis://... or host:port,
// and verifies the connection.
func NewStore(ctx context.Context, redisURL string) (*Store, error) {
	var opts *goredis.Options
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsed, err := goredis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &goredis.Options{Addr: redisURL}
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Store{client: client}, nil
}

// NewStoreFromClient wraps an existing client. The store takes ownership and
// closes it on Close.
func NewStoreFromClient(client *goredis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Counters() store.Counters                     { return &countersRepo{client: s.client} }
func (s *Store) IdempotencyRecords() store.IdempotencyRecords { return &idempotencyRepo{client: s.client} }
func (s *Store) CacheEntries() store.CacheEntries             { return &cacheRepo{client: s.client} }
