package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics

	require.NotPanics(t, func() {
		m.ObserveSearch("flights", "ok")
		m.ObserveStage("authenticate", time.Millisecond)
		m.ObserveRateLimit("minute", true)
		m.ObserveReplay()
		m.ObserveCacheLookup("flights", "miss")
		m.ObserveFailOpen("ratelimit")
		m.ObserveUpstream("flights", "ok", time.Second)
		m.ObserveRefresh("ok")
	})

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	require.NotNil(t, m.HTTPMiddleware(h))
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveRateLimit("minute", true)
	m.ObserveRateLimit("minute", false)
	m.ObserveRateLimit("minute", false)
	m.ObserveReplay()
	m.ObserveCacheLookup("hotels", "stale")
	m.ObserveFailOpen("idempotency")

	require.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitDecisions.WithLabelValues("minute", "allowed")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.RateLimitDecisions.WithLabelValues("minute", "denied")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.IdempotencyReplays))
	require.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hotels", "stale")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FailOpenTotal.WithLabelValues("idempotency")))
}

func TestHTTPMiddlewareUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := m.HTTPMiddleware(mux)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/items/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	require.Equal(t, 3.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "GET /v1/items/{id}", "418")))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "gateway_http_requests_total"))
}
