package store

import (
	"context"
	"errors"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Ephemeral holds the short-lived pipeline state: rate-window counters,
// idempotency records and cached results. Both the durable drivers (sqlite,
// postgres) and the volatile redis driver implement it, so the gateway can
// place this state wherever the deployment wants it.
type Ephemeral interface {
	Counters() Counters
	IdempotencyRecords() IdempotencyRecords
	CacheEntries() CacheEntries

	// Ping verifies the backing connection is still alive.
	Ping(ctx context.Context) error

	Close() error
}

// Store is the root durable data access interface. Concrete drivers (sqlite,
// postgres) implement this. Credentials only ever live here.
type Store interface {
	Ephemeral

	Credentials() Credentials

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Credentials interface {
	// CreateCredential inserts a new credential (id is provided by the app via ULID).
	CreateCredential(ctx context.Context, c domain.Credential) error

	GetCredentialByID(ctx context.Context, id string) (domain.Credential, error)

	// GetCredentialBySecretHash is the authentication lookup.
	GetCredentialBySecretHash(ctx context.Context, hash string) (domain.Credential, error)

	// ListCredentials returns the credentials of a tenant, newest first. An
	// empty tenantID lists every tenant.
	ListCredentials(ctx context.Context, tenantID string) ([]domain.Credential, error)

	UpdateCredentialStatus(ctx context.Context, id string, status domain.CredentialStatus) error

	// UpdateCredentialExpiry sets or, with nil, clears the expiry.
	UpdateCredentialExpiry(ctx context.Context, id string, expiresAt *time.Time) error

	// TouchCredentialUsage sets last_used_at and increments usage_count.
	TouchCredentialUsage(ctx context.Context, id string, usedAt time.Time) error
}

type Counters interface {
	// IncrementCounter atomically creates the counter at 1 or increments it,
	// and returns the post-increment value. The counter must survive at
	// least until key.BucketStart+ttl.
	IncrementCounter(ctx context.Context, key domain.CounterKey, ttl time.Duration) (int64, error)

	// DeleteExpiredCounters is housekeeping; drivers with native expiry
	// return 0.
	DeleteExpiredCounters(ctx context.Context, now time.Time) (int64, error)
}

type IdempotencyRecords interface {
	// GetIdempotencyRecord returns ErrNotFound when no unexpired record exists.
	GetIdempotencyRecord(ctx context.Context, requestID string, now time.Time) (domain.IdempotencyRecord, error)

	// InsertIdempotencyRecord writes rec unless an unexpired record already
	// exists for the request id, in which case it returns ErrAlreadyExists
	// and leaves the existing record untouched.
	InsertIdempotencyRecord(ctx context.Context, rec domain.IdempotencyRecord) error

	DeleteExpiredIdempotencyRecords(ctx context.Context, now time.Time) (int64, error)
}

type CacheEntries interface {
	// GetCacheEntry returns ErrNotFound when nothing is stored. Entries past
	// their hard expiry may still be returned; callers classify freshness.
	GetCacheEntry(ctx context.Context, searchType domain.SearchType, fingerprint string) (domain.CacheEntry, error)

	// UpsertCacheEntry replaces the entry for the fingerprint and resets hits.
	UpsertCacheEntry(ctx context.Context, e domain.CacheEntry) error

	// IncrementCacheHits is best effort; a missing entry is not an error.
	IncrementCacheHits(ctx context.Context, searchType domain.SearchType, fingerprint string) error

	// DeleteCacheEntriesBySearchType drops every entry of a search type and
	// returns how many were removed.
	DeleteCacheEntriesBySearchType(ctx context.Context, searchType domain.SearchType) (int64, error)

	// DeleteExpiredCacheEntries removes entries past their hard expiry.
	DeleteExpiredCacheEntries(ctx context.Context, now time.Time) (int64, error)
}
