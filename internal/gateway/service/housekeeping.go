package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
)

// HousekeepingService periodically removes expired rate counters,
// idempotency records and hard-expired cache entries. Stores with native
// expiry report zero removals.
type HousekeepingService struct {
	Store    store.Ephemeral
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 10 minutes.
func NewHousekeepingService(store store.Ephemeral, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep performs one cleanup pass and returns the number of rows removed.
// Each deletion is independent - failures in one won't stop the others.
func (s *HousekeepingService) Sweep(ctx context.Context) int64 {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	s.Logger.Debug("starting housekeeping sweep")

	sweeps := []struct {
		name string
		fn   func(context.Context, time.Time) (int64, error)
	}{
		{"rate_counters", s.Store.Counters().DeleteExpiredCounters},
		{"idempotency_records", s.Store.IdempotencyRecords().DeleteExpiredIdempotencyRecords},
		{"cache_entries", s.Store.CacheEntries().DeleteExpiredCacheEntries},
	}

	var total int64
	successful := 0
	for _, sw := range sweeps {
		n, err := sw.fn(ctx, now)
		if err != nil {
			s.Logger.Error("housekeeping sweep failed", "table", sw.name, "error", err)
			continue
		}
		s.Logger.Debug("housekeeping sweep", "table", sw.name, "deleted", n)
		total += n
		successful++
	}

	s.Logger.Info("housekeeping sweep completed", "successful_cleanups", successful, "deleted", total)
	return total
}
