package gateway_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/app"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/jwtx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/searchsdk"
)

/*
 * Common constants and helpers for the gateway end-to-end tests. The gateway
 * runs in-process against a fake search backend; the redis-backed variant
 * starts a real redis in a container.
 */

const (
	adminSecret = "e2e-admin-secret-0123456789abcdefghij"
	adminIssuer = "search-gateway-e2e"
	tenantID    = "tenant-e2e"
	redisImage  = "redis:7-alpine"
)

// upstream is a fake search backend counting the searches it serves.
type upstream struct {
	server *httptest.Server
	calls  atomic.Int64
	// status, when non-zero, is returned instead of a result.
	status atomic.Int64
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()

	u := &upstream{}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := u.calls.Add(1)

		if status := u.status.Load(); status != 0 {
			w.WriteHeader(int(status))
			_, _ = io.WriteString(w, `{"error":"provider rejected the search"}`)
			return
		}

		searchType := strings.TrimPrefix(r.URL.Path, "/search/")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results":   map[string]any{"type": searchType, "call": n},
			"providers": []string{"amadeus", "hotelbeds"},
		})
	}))
	t.Cleanup(u.server.Close)

	return u
}

type gatewayEnv struct {
	baseURL  string
	admin    *searchsdk.SDKClient
	upstream *upstream
}

// setupGateway starts a gateway backed by a fresh sqlite database. When
// redisURL is non-empty counters, idempotency records and cached results
// live in redis instead.
func setupGateway(t *testing.T, redisURL string) *gatewayEnv {
	t.Helper()

	up := newUpstream(t)
	dir := t.TempDir()

	cfg := app.Config{
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "json",
		ShutdownGracePeriod:  5 * time.Second,
		HousekeepingInterval: time.Minute,
		DatabaseDriver:       app.DriverSQLite,
		DatabaseFile:         filepath.Join(dir, "gateway.db"),
		FastStore:            app.FastStoreNone,
		PepperFile:           filepath.Join(dir, "pepper"),
		AdminJWTSecret:       adminSecret,
		AdminJWTIssuer:       adminIssuer,
		UpstreamURL:          up.server.URL,
		UpstreamTimeout:      5 * time.Second,
		IdempotencyTTL:       5 * time.Minute,
		RateLimitFailOpen:    true,
		IdempotencyFailOpen:  true,
		CacheFailOpen:        true,
	}
	if redisURL != "" {
		cfg.FastStore = app.FastStoreRedis
		cfg.RedisURL = redisURL
	}

	application, err := app.New(cfg)
	require.NoError(t, err)
	application.Start()

	server := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		server.Close()
		if err := application.Shutdown(); err != nil {
			t.Logf("failed to shut down gateway: %v", err)
		}
	})

	return &gatewayEnv{
		baseURL:  server.URL,
		admin:    searchsdk.NewSDKClient(server.URL, "").WithAdminToken(adminToken(t, "admin:read", "admin:write")),
		upstream: up,
	}
}

// setupRedis starts a redis container and returns its URL. The test is
// skipped when no container runtime is available.
func setupRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis-backed test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        redisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForListeningPort("6379/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, mappedPort.Port())
}

func adminToken(t *testing.T, scopes ...string) string {
	t.Helper()

	signer, err := jwtx.NewSignerHS256([]byte(adminSecret))
	require.NoError(t, err)

	token, err := signer.Sign(jwtx.NewAdminClaims("ops@example.com", scopes, time.Hour, adminIssuer, time.Now()))
	require.NoError(t, err)
	return token
}

// issueKey creates a credential through the admin API and returns a search
// client authenticated with its API key.
func (e *gatewayEnv) issueKey(t *testing.T, scopes []string, limits searchsdk.Limits) (*searchsdk.SDKClient, searchsdk.CredentialInfo) {
	t.Helper()

	created, err := e.admin.CreateCredential(t.Context(), searchsdk.CreateCredentialRequest{
		Name:     "e2e " + t.Name(),
		TenantID: tenantID,
		Scopes:   scopes,
		Limits:   limits,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.APIKey)

	return searchsdk.NewSDKClient(e.baseURL, created.APIKey), created.Credential
}

// searchUntil repeats req until accept returns true or the deadline passes.
// Writes behind a response land asynchronously, so follow-up assertions poll.
func searchUntil(t *testing.T, client *searchsdk.SDKClient, req searchsdk.SearchRequest, accept func(*searchsdk.SearchResult) bool) *searchsdk.SearchResult {
	t.Helper()

	var last *searchsdk.SearchResult
	require.Eventually(t, func() bool {
		res, err := client.Search(context.Background(), req)
		if err != nil {
			return false
		}
		last = res
		return accept(res)
	}, 5*time.Second, 25*time.Millisecond)

	return last
}

func requireAPIError(t *testing.T, err error, status int, code string) *searchsdk.APIError {
	t.Helper()

	var apiErr *searchsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}
