// Package metrics exposes the gateway's Prometheus instruments. Every method
// is safe on a nil *Metrics so components can run without instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gateway"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Pipeline metrics
	SearchesTotal *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec

	// Stage outcomes
	RateLimitDecisions *prometheus.CounterVec
	IdempotencyReplays prometheus.Counter
	CacheLookups       *prometheus.CounterVec
	FailOpenTotal      *prometheus.CounterVec

	// Upstream metrics
	UpstreamDuration    *prometheus.HistogramVec
	BackgroundRefreshes *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "searches_total",
				Help:      "Total number of search requests by search type and outcome",
			},
			[]string{"search_type", "outcome"},
		),

		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each pipeline stage",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		RateLimitDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ratelimit_decisions_total",
				Help:      "Rate limit decisions by window",
			},
			[]string{"window", "decision"},
		),

		IdempotencyReplays: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "idempotency_replays_total",
				Help:      "Responses served from an idempotency record",
			},
		),

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Result cache lookups by search type and freshness",
			},
			[]string{"search_type", "state"},
		),

		FailOpenTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_fail_open_total",
				Help:      "Store errors tolerated because the stage fails open",
			},
			[]string{"stage"},
		),

		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_duration_seconds",
				Help:      "Duration of upstream search executions",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
			},
			[]string{"search_type", "outcome"},
		),

		BackgroundRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "background_refreshes_total",
				Help:      "Background refreshes of stale cache entries",
			},
			[]string{"outcome"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),

		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (m *Metrics) ObserveSearch(searchType, outcome string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(searchType, outcome).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) ObserveRateLimit(window string, allowed bool) {
	if m == nil {
		return
	}
	decision := "allowed"
	if !allowed {
		decision = "denied"
	}
	m.RateLimitDecisions.WithLabelValues(window, decision).Inc()
}

func (m *Metrics) ObserveReplay() {
	if m == nil {
		return
	}
	m.IdempotencyReplays.Inc()
}

func (m *Metrics) ObserveCacheLookup(searchType, state string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(searchType, state).Inc()
}

func (m *Metrics) ObserveFailOpen(stage string) {
	if m == nil {
		return
	}
	m.FailOpenTotal.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveUpstream(searchType, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(searchType, outcome).Observe(d.Seconds())
}

func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.BackgroundRefreshes.WithLabelValues(outcome).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// HTTPMiddleware records request counts and latency labelled by the matched
// ServeMux pattern, so path parameters do not explode cardinality.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
