package domain

import "time"

// Freshness is the state of a cache entry relative to its soft and hard
// expiries.
type Freshness string

const (
	FreshnessMiss  Freshness = "miss"
	FreshnessFresh Freshness = "fresh"
	FreshnessStale Freshness = "stale"
)

// CacheEntry is a stored search result keyed by the fingerprint of its
// normalized parameters. SoftExpiresAt <= HardExpiresAt always holds.
type CacheEntry struct {
	Fingerprint   string
	SearchType    SearchType
	Payload       []byte
	Hits          int64
	CreatedAt     time.Time
	SoftExpiresAt time.Time
	HardExpiresAt time.Time
}

// FreshnessAt classifies the entry at now. The boundaries are inclusive on
// the fresh side: now == soft is still fresh, now == hard is still stale.
func (e CacheEntry) FreshnessAt(now time.Time) Freshness {
	switch {
	case now.After(e.HardExpiresAt):
		return FreshnessMiss
	case now.After(e.SoftExpiresAt):
		return FreshnessStale
	default:
		return FreshnessFresh
	}
}
