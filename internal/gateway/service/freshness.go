package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/metrics"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

// CacheLookup is the outcome of FreshnessCache.Get.
type CacheLookup struct {
	State       domain.Freshness
	Fingerprint string
	// Result and Entry are set for fresh and stale lookups.
	Result domain.SearchResult
	Entry  *domain.CacheEntry
	// NeedsRefresh is true for stale lookups.
	NeedsRefresh bool
}

// FreshnessCache serves stored search results according to a soft/hard TTL
// policy. Between the two expiries a result is served stale and a refresh
// is scheduled in the background.
type FreshnessCache struct {
	Entries store.CacheEntries
	Policy  CachePolicy
	// FailOpen treats store read errors as a miss.
	FailOpen bool
	Now      func() time.Time
	Tasks    *TaskGroup
	Metrics  *metrics.Metrics

	// inflight holds the fingerprints with a refresh running.
	inflight sync.Map
}

func (c *FreshnessCache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *FreshnessCache) Get(ctx context.Context, searchType domain.SearchType, params json.RawMessage) (CacheLookup, error) {
	fp, err := Fingerprint(searchType, params)
	if err != nil {
		return CacheLookup{}, invalidRequest("params must be a single UTF-8 JSON value")
	}
	return c.get(ctx, searchType, fp)
}

func (c *FreshnessCache) get(ctx context.Context, searchType domain.SearchType, fp string) (CacheLookup, error) {
	log := slogx.FromContext(ctx)
	miss := CacheLookup{State: domain.FreshnessMiss, Fingerprint: fp}

	entry, err := c.Entries.GetCacheEntry(ctx, searchType, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.Metrics.ObserveCacheLookup(string(searchType), string(domain.FreshnessMiss))
			return miss, nil
		}
		if ctx.Err() != nil {
			return CacheLookup{}, withCause(ErrInternal, ctx.Err())
		}
		if c.FailOpen {
			log.Warn("result cache unavailable, treating as miss", "fingerprint", fp, "error", err)
			c.Metrics.ObserveFailOpen("cache")
			c.Metrics.ObserveCacheLookup(string(searchType), string(domain.FreshnessMiss))
			return miss, nil
		}
		return CacheLookup{}, withCause(ErrInternal, err)
	}

	state := entry.FreshnessAt(c.now())
	if state == domain.FreshnessMiss {
		c.Metrics.ObserveCacheLookup(string(searchType), string(state))
		return miss, nil
	}

	var result domain.SearchResult
	if err := json.Unmarshal(entry.Payload, &result); err != nil {
		log.Warn("cached payload unreadable, treating as miss", "fingerprint", fp, "error", err)
		c.Metrics.ObserveCacheLookup(string(searchType), string(domain.FreshnessMiss))
		return miss, nil
	}

	c.Metrics.ObserveCacheLookup(string(searchType), string(state))
	c.countHit(ctx, searchType, fp)

	return CacheLookup{
		State:        state,
		Fingerprint:  fp,
		Result:       result,
		Entry:        &entry,
		NeedsRefresh: state == domain.FreshnessStale,
	}, nil
}

func (c *FreshnessCache) countHit(ctx context.Context, searchType domain.SearchType, fp string) {
	hit := func(ctx context.Context) {
		if err := c.Entries.IncrementCacheHits(ctx, searchType, fp); err != nil {
			slogx.FromContext(ctx).Debug("cache hit count dropped", "fingerprint", fp, "error", err)
		}
	}
	if c.Tasks == nil {
		hit(ctx)
		return
	}
	c.Tasks.Go(ctx, "cache_hit", hit)
}

// Put stores result for the search, resetting hits and both expiries.
func (c *FreshnessCache) Put(ctx context.Context, searchType domain.SearchType, params json.RawMessage, result domain.SearchResult) error {
	fp, err := Fingerprint(searchType, params)
	if err != nil {
		return invalidRequest("params must be a single UTF-8 JSON value")
	}
	return c.put(ctx, searchType, fp, result)
}

func (c *FreshnessCache) put(ctx context.Context, searchType domain.SearchType, fp string, result domain.SearchResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode search result: %w", err)
	}

	now := c.now()
	ttl := c.Policy.For(searchType)
	return c.Entries.UpsertCacheEntry(ctx, domain.CacheEntry{
		Fingerprint:   fp,
		SearchType:    searchType,
		Payload:       payload,
		CreatedAt:     now,
		SoftExpiresAt: now.Add(ttl.Soft),
		HardExpiresAt: now.Add(ttl.Hard),
	})
}

// Invalidate drops every cached result of searchType.
func (c *FreshnessCache) Invalidate(ctx context.Context, searchType domain.SearchType) error {
	n, err := c.Entries.DeleteCacheEntriesBySearchType(ctx, searchType)
	if err != nil {
		return fmt.Errorf("invalidate %s cache: %w", searchType, err)
	}
	slogx.FromContext(ctx).Info("result cache invalidated", "search_type", searchType, "removed", n)
	return nil
}

// ScheduleRefresh runs refresh in the background unless a refresh for fp is
// already running. It reports whether a new refresh was started. A failed
// refresh is logged and leaves the stored entry as it was.
func (c *FreshnessCache) ScheduleRefresh(ctx context.Context, fp string, refresh func(ctx context.Context) error) bool {
	if _, running := c.inflight.LoadOrStore(fp, struct{}{}); running {
		c.Metrics.ObserveRefresh("coalesced")
		return false
	}

	run := func(ctx context.Context) {
		defer c.inflight.Delete(fp)
		log := slogx.FromContext(ctx).With("fingerprint", fp)

		start := time.Now()
		if err := refresh(ctx); err != nil {
			log.Warn("background refresh failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
			c.Metrics.ObserveRefresh("failed")
			return
		}
		log.Info("background refresh completed", "duration_ms", time.Since(start).Milliseconds())
		c.Metrics.ObserveRefresh("succeeded")
	}

	if c.Tasks == nil {
		go run(context.WithoutCancel(ctx))
		return true
	}
	c.Tasks.Go(ctx, "cache_refresh", run)
	return true
}
