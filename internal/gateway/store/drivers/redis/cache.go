package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	goredis "github.com/redis/go-redis/v9"
)

const (
	fieldPayload    = "payload"
	fieldSearchType = "search_type"
	fieldHits       = "hits"
	fieldCreated    = "created_at"
	fieldSoft       = "soft_expires_at"
	fieldHard       = "hard_expires_at"

	scanBatch = 200
)

// incrementHitsScript only bumps hits on an entry that still exists so a hit
// racing an eviction cannot resurrect a key without a TTL.
var incrementHitsScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return redis.call('HINCRBY', KEYS[1], 'hits', 1)
end
return 0
`)

type cacheRepo struct {
	client *goredis.Client
}

func cacheKey(searchType domain.SearchType, fingerprint string) string {
	return keyPrefix + "cache:" + string(searchType) + ":" + fingerprint
}

func (r *cacheRepo) GetCacheEntry(ctx context.Context, searchType domain.SearchType, fingerprint string) (domain.CacheEntry, error) {
	fields, err := r.client.HGetAll(ctx, cacheKey(searchType, fingerprint)).Result()
	if err != nil {
		return domain.CacheEntry{}, err
	}
	if len(fields) == 0 {
		return domain.CacheEntry{}, store.ErrNotFound
	}

	hits, _ := strconv.ParseInt(fields[fieldHits], 10, 64)
	return domain.CacheEntry{
		Fingerprint:   fingerprint,
		SearchType:    domain.SearchType(fields[fieldSearchType]),
		Payload:       []byte(fields[fieldPayload]),
		Hits:          hits,
		CreatedAt:     parseMillis(fields[fieldCreated]),
		SoftExpiresAt: parseMillis(fields[fieldSoft]),
		HardExpiresAt: parseMillis(fields[fieldHard]),
	}, nil
}

// UpsertCacheEntry replaces the hash atomically. The key lives until the
// entry's hard expiry, measured from the write.
func (r *cacheRepo) UpsertCacheEntry(ctx context.Context, e domain.CacheEntry) error {
	key := cacheKey(e.SearchType, e.Fingerprint)
	ttl := e.HardExpiresAt.Sub(e.CreatedAt)
	if ttl < time.Second {
		ttl = time.Second
	}

	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldPayload, e.Payload,
			fieldSearchType, string(e.SearchType),
			fieldHits, 0,
			fieldCreated, e.CreatedAt.UnixMilli(),
			fieldSoft, e.SoftExpiresAt.UnixMilli(),
			fieldHard, e.HardExpiresAt.UnixMilli(),
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

func (r *cacheRepo) IncrementCacheHits(ctx context.Context, searchType domain.SearchType, fingerprint string) error {
	return incrementHitsScript.Run(ctx, r.client, []string{cacheKey(searchType, fingerprint)}).Err()
}

func (r *cacheRepo) DeleteCacheEntriesBySearchType(ctx context.Context, searchType domain.SearchType) (int64, error) {
	var (
		cursor  uint64
		deleted int64
		match   = cacheKey(searchType, "*")
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

func (r *cacheRepo) DeleteExpiredCacheEntries(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func parseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
