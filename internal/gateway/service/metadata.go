package service

import (
	"sync"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
)

// Resolved-by values reported in response metadata.
const (
	ResolvedByUpstream    = "upstream"
	ResolvedByCache       = "cache"
	ResolvedByIdempotency = "idempotency"
)

type StageTiming struct {
	Stage      string  `json:"stage"`
	DurationMS float64 `json:"duration_ms"`
}

// Metadata is attached to every successful search response.
type Metadata struct {
	ResolvedBy   string           `json:"resolved_by"`
	CacheState   domain.Freshness `json:"cache_state,omitempty"`
	Providers    []string         `json:"providers"`
	Excluded     map[string]int   `json:"excluded,omitempty"`
	StageTimings []StageTiming    `json:"stage_timings"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// MetadataBuilder collects stage timings as the pipeline runs.
type MetadataBuilder struct {
	mu      sync.Mutex
	timings []StageTiming
}

func (b *MetadataBuilder) Stage(name string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timings = append(b.timings, StageTiming{
		Stage:      name,
		DurationMS: float64(d.Microseconds()) / 1000,
	})
}

// Build produces the metadata for a result resolved by resolvedBy.
func (b *MetadataBuilder) Build(resolvedBy string, state domain.Freshness, result domain.SearchResult, now time.Time) Metadata {
	b.mu.Lock()
	timings := append([]StageTiming(nil), b.timings...)
	b.mu.Unlock()

	providers := result.Providers
	if providers == nil {
		providers = []string{}
	}
	return Metadata{
		ResolvedBy:   resolvedBy,
		CacheState:   state,
		Providers:    providers,
		Excluded:     result.Excluded,
		StageTimings: timings,
		GeneratedAt:  now.UTC(),
	}
}
