package searchsdk

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Error Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse is the body of every non-2xx gateway response.
// Client code should use the APIError type from errors.go instead.
type ErrorResponse struct {
	// Error is the stable error code (e.g., "rate_limit_exceeded")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Search Types
// ============================================================================

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	// SearchType selects the product searched (flights, hotels, packages)
	SearchType string `json:"search_type" validate:"required,max=32"`

	// Params are forwarded to the providers. Two requests whose params are
	// equal as JSON objects share cache entries regardless of key order.
	Params json.RawMessage `json:"params,omitempty" swaggertype:"object"`

	// RequestID is the optional idempotency key. Retrying with the same id
	// within the replay window returns the original response byte for byte.
	RequestID string `json:"request_id,omitempty" validate:"omitempty,max=80"`
}

// SearchResponse is the envelope of a successful search.
type SearchResponse struct {
	SearchID   string          `json:"search_id"`
	SearchType string          `json:"search_type"`
	Results    json.RawMessage `json:"results" swaggertype:"object"`
	Metadata   Metadata        `json:"metadata"`
}

// Metadata describes how a search was resolved.
type Metadata struct {
	// ResolvedBy is "upstream", "cache" or "idempotency"
	ResolvedBy string `json:"resolved_by"`

	// CacheState is "fresh" or "stale" when served from the cache
	CacheState string `json:"cache_state,omitempty"`

	// Providers lists the providers consulted for the result
	Providers []string `json:"providers"`

	// Excluded counts results filtered out, keyed by reason
	Excluded map[string]int `json:"excluded,omitempty"`

	StageTimings []StageTiming `json:"stage_timings"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

type StageTiming struct {
	Stage      string  `json:"stage"`
	DurationMS float64 `json:"duration_ms"`
}

// RateLimit is the quota reported in the X-RateLimit-* headers. It describes
// the window closest to exhaustion, or the window that denied the request.
type RateLimit struct {
	Window    string
	Limit     int64
	Remaining int64
	Reset     time.Time
}

// SearchResult is what Search returns: the decoded envelope plus the
// transport-level details of the response.
type SearchResult struct {
	Response SearchResponse

	// Raw is the exact response body, which replays reproduce byte for byte
	Raw []byte

	// RateLimit is nil when the response carried no quota headers (replays)
	RateLimit *RateLimit

	// Cache is the X-Cache header: "fresh", "stale" or "miss"
	Cache string

	// Replayed is true when the gateway answered from an idempotency record
	Replayed bool

	CorrelationID string
}

// ============================================================================
// Credential Types (admin API)
// ============================================================================

// Limits are the per-window request ceilings of a credential. Zero disables
// a window.
type Limits struct {
	PerMinute int64 `json:"per_minute" validate:"gte=0"`
	PerHour   int64 `json:"per_hour" validate:"gte=0"`
	PerDay    int64 `json:"per_day" validate:"gte=0"`
}

// CreateCredentialRequest is the body of POST /v1/admin/credentials.
type CreateCredentialRequest struct {
	Name        string     `json:"name" validate:"required,max=128"`
	TenantID    string     `json:"tenant_id" validate:"required,max=128"`
	SubTenantID string     `json:"sub_tenant_id,omitempty" validate:"max=128"`
	Scopes      []string   `json:"scopes" validate:"required,min=1,dive,required"`
	Limits      Limits     `json:"limits"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// CreateCredentialResponse carries the raw API key. It is only ever returned
// at creation time.
type CreateCredentialResponse struct {
	Credential CredentialInfo `json:"credential"`
	APIKey     string         `json:"api_key"`
}

// CredentialInfo is the public view of a credential. The secret is never
// included.
type CredentialInfo struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	TenantID    string     `json:"tenant_id"`
	SubTenantID string     `json:"sub_tenant_id,omitempty"`
	Scopes      []string   `json:"scopes"`
	Limits      Limits     `json:"limits"`
	Status      string     `json:"status"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	UsageCount  int64      `json:"usage_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ListCredentialsResponse struct {
	Credentials []CredentialInfo `json:"credentials"`
}

// SetExpiryRequest is the body of PUT /v1/admin/credentials/{id}/expiry.
// A null expires_at clears the expiry.
type SetExpiryRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

// InvalidateCacheResponse is returned by DELETE /v1/admin/cache/{search_type}.
type InvalidateCacheResponse struct {
	SearchType string `json:"search_type"`
	Status     string `json:"status"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of the gateway's stores.
type HealthChecks struct {
	// Database indicates the durable store status
	Database string `json:"database"`

	// FastStore indicates the volatile store status, when one is configured
	FastStore string `json:"fast_store,omitempty"`
}
