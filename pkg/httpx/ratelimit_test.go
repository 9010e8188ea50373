package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/pkg/httpx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/searchsdk"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"

		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")

		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Real-IP", "203.0.113.2")

		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	extractor := httpx.CompositeKeyExtractor(":",
		httpx.SubjectKeyExtractor,
		httpx.IPKeyExtractor,
	)

	// No subject in context, so only the IP contributes.
	require.Equal(t, "192.168.1.1", extractor(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		config := httpx.RateLimitConfig{
			RequestsPerWindow: 3,
			Window:            time.Minute,
			Burst:             3,
		}
		limited := httpx.RateLimitMiddleware(config, httpx.IPKeyExtractor)(okHandler())

		for i := range 3 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			rec := httptest.NewRecorder()

			limited.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()

		limited.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "20", rec.Header().Get("Retry-After"), "one token every 20s")
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		require.Equal(t, httpx.GuardWindow, rec.Header().Get("X-RateLimit-Window"))
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body searchsdk.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "rate_limit_exceeded", body.Error)
		require.Contains(t, body.ErrorDescription, "3 requests per 1m0s")

		var raw map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		require.Len(t, raw, 2, "same shape as every other error body")
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		config := httpx.RateLimitConfig{
			RequestsPerWindow: 1,
			Window:            time.Minute,
			Burst:             1,
		}
		limited := httpx.RateLimitMiddleware(config, httpx.IPKeyExtractor)(okHandler())

		for _, addr := range []string{"192.168.1.1:1", "192.168.1.2:1"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		config := httpx.RateLimitConfig{
			RequestsPerWindow: 1,
			Window:            time.Minute,
			Burst:             1,
		}
		limited := httpx.RateLimitMiddleware(config, func(*http.Request) string { return "" })(okHandler())

		for range 3 {
			rec := httptest.NewRecorder()
			limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestParseRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_TEST_REQUESTS", "42")
	t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "10")
	t.Setenv("RATELIMIT_TEST_BURST", "not-a-number")

	cfg := httpx.ParseRateLimitFromEnv("TEST", httpx.RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		Burst:             7,
	})

	require.Equal(t, 42, cfg.RequestsPerWindow)
	require.Equal(t, 10*time.Second, cfg.Window)
	require.Equal(t, 7, cfg.Burst, "invalid values keep the default")
}

func TestRetryAfterSeconds(t *testing.T) {
	require.Equal(t, 1, httpx.RetryAfterSeconds(0))
	require.Equal(t, 1, httpx.RetryAfterSeconds(200*time.Millisecond))
	require.Equal(t, 2, httpx.RetryAfterSeconds(1100*time.Millisecond))
	require.Equal(t, 60, httpx.RetryAfterSeconds(time.Minute))
}
