package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

var testPepper = []byte("test-pepper-0123456789abcdef")

// t0 sits at the start of a minute so tests can move within one bucket.
var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock { return &fakeClock{now: t0} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// fakeExecutor answers with a payload naming the call number, so tests can
// tell an upstream answer from a cached one.
type fakeExecutor struct {
	calls atomic.Int32
	// fn overrides the default behaviour when set.
	fn func(ctx context.Context, n int32) (domain.SearchResult, error)
}

func (e *fakeExecutor) Execute(ctx context.Context, searchType domain.SearchType, params json.RawMessage) (domain.SearchResult, error) {
	n := e.calls.Add(1)
	if e.fn != nil {
		return e.fn(ctx, n)
	}
	return resultFor(n), nil
}

func resultFor(n int32) domain.SearchResult {
	payload, _ := json.Marshal(map[string]any{"call": n})
	return domain.SearchResult{
		Payload:   payload,
		Providers: []string{"provider-a", "provider-b"},
		Excluded:  map[string]int{"over_budget": 2},
	}
}

type rejectedError struct{}

func (rejectedError) Error() string   { return "upstream rejected the itinerary" }
func (rejectedError) Retryable() bool { return false }

var errStoreDown = errors.New("store unavailable")

type downCounters struct{}

func (downCounters) IncrementCounter(context.Context, domain.CounterKey, time.Duration) (int64, error) {
	return 0, errStoreDown
}

func (downCounters) DeleteExpiredCounters(context.Context, time.Time) (int64, error) {
	return 0, errStoreDown
}

type downIdempotency struct{}

func (downIdempotency) GetIdempotencyRecord(context.Context, string, time.Time) (domain.IdempotencyRecord, error) {
	return domain.IdempotencyRecord{}, errStoreDown
}

func (downIdempotency) InsertIdempotencyRecord(context.Context, domain.IdempotencyRecord) error {
	return errStoreDown
}

func (downIdempotency) DeleteExpiredIdempotencyRecords(context.Context, time.Time) (int64, error) {
	return 0, errStoreDown
}

type downCache struct{}

func (downCache) GetCacheEntry(context.Context, domain.SearchType, string) (domain.CacheEntry, error) {
	return domain.CacheEntry{}, errStoreDown
}

func (downCache) UpsertCacheEntry(context.Context, domain.CacheEntry) error { return errStoreDown }

func (downCache) IncrementCacheHits(context.Context, domain.SearchType, string) error {
	return errStoreDown
}

func (downCache) DeleteCacheEntriesBySearchType(context.Context, domain.SearchType) (int64, error) {
	return 0, errStoreDown
}

func (downCache) DeleteExpiredCacheEntries(context.Context, time.Time) (int64, error) {
	return 0, errStoreDown
}

var (
	_ store.Counters           = downCounters{}
	_ store.IdempotencyRecords = downIdempotency{}
	_ store.CacheEntries       = downCache{}
)

type harness struct {
	store     *sqlite.Store
	clock     *fakeClock
	exec      *fakeExecutor
	tasks     *TaskGroup
	gateway   *Gateway
	creds     *CredentialService
	cache     *FreshnessCache
	policy    CachePolicy
	flights   json.RawMessage
	reordered json.RawMessage
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	s := newTestStore(t)
	clock := newClock()
	tasks := &TaskGroup{}
	t.Cleanup(tasks.Wait)

	exec := &fakeExecutor{}
	policy := DefaultCachePolicy()
	cache := &FreshnessCache{
		Entries:  s.CacheEntries(),
		Policy:   policy,
		FailOpen: true,
		Now:      clock.Now,
		Tasks:    tasks,
	}

	g := &Gateway{
		Auth:    &Authenticator{Credentials: s.Credentials(), Pepper: testPepper, Now: clock.Now},
		Limiter: &RateLimiter{
			Counters: s.Counters(),
			FailOpen: true,
			Now:      clock.Now,
		},
		Idempotency: &IdempotencyGuard{
			Records:  s.IdempotencyRecords(),
			FailOpen: true,
			Now:      clock.Now,
		},
		Cache:          cache,
		Executor:       exec,
		Tasks:          tasks,
		ExecuteTimeout: 2 * time.Second,
		Now:            clock.Now,
	}

	return &harness{
		store:     s,
		clock:     clock,
		exec:      exec,
		tasks:     tasks,
		gateway:   g,
		creds:     &CredentialService{Store: s, Pepper: testPepper, Now: clock.Now},
		cache:     cache,
		policy:    policy,
		flights:   json.RawMessage(`{"origin":"EZE","destination":"MAD","date":"2026-04-10","pax":{"adults":2,"children":0}}`),
		reordered: json.RawMessage(`{"pax":{"children":0,"adults":2},"date":"2026-04-10","destination":"MAD","origin":"EZE"}`),
	}
}

// issue creates an active credential and returns it with its raw key.
func (h *harness) issue(t *testing.T, scopes []string, limits domain.Limits) (domain.Credential, string) {
	t.Helper()

	cred, secret, err := h.creds.CreateCredential(context.Background(), NewCredential{
		Name:     "agency portal",
		TenantID: "tenant-a",
		Scopes:   scopes,
		Limits:   limits,
	})
	require.NoError(t, err)
	return cred, secret
}

func decodeEnvelope(t *testing.T, body []byte) Envelope {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func callOf(t *testing.T, env Envelope) int {
	t.Helper()

	var payload struct {
		Call int `json:"call"`
	}
	require.NoError(t, json.Unmarshal(env.Results, &payload))
	return payload.Call
}
