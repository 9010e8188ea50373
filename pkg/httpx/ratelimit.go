package httpx

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/pkg/searchsdk"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
	"golang.org/x/time/rate"
)

// GuardWindow is the X-RateLimit-Window value on guard denials. It tells
// clients the per-address guard tripped, not their credential quota.
const GuardWindow = "guard"

// RateLimitConfig is a token bucket refilled at RequestsPerWindow per Window
// holding at most Burst tokens.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

func (c RateLimitConfig) limit() rate.Limit {
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

func (c RateLimitConfig) String() string {
	return fmt.Sprintf("%d requests per %s", c.RequestsPerWindow, c.Window)
}

func perMinute(n int) RateLimitConfig {
	return RateLimitConfig{RequestsPerWindow: n, Window: time.Minute, Burst: n}
}

// Guard profiles. Each can be overridden through RATELIMIT_<NAME>_REQUESTS,
// RATELIMIT_<NAME>_WINDOW_SEC and RATELIMIT_<NAME>_BURST.
var (
	// StrictLimit covers credential minting.
	StrictLimit = perMinute(5)
	// ModerateLimit covers the remaining admin operations.
	ModerateLimit = perMinute(20)
	// LenientLimit covers health probes.
	LenientLimit = perMinute(100)
	// PublicLimit guards the credential lookup on the search endpoint
	// against key guessing. Quotas are the gateway's job.
	PublicLimit = perMinute(1000)
)

func init() {
	for name, cfg := range map[string]*RateLimitConfig{
		"STRICT":   &StrictLimit,
		"MODERATE": &ModerateLimit,
		"LENIENT":  &LenientLimit,
		"PUBLIC":   &PublicLimit,
	} {
		*cfg = ParseRateLimitFromEnv(name, *cfg)
	}
}

// ParseRateLimitFromEnv returns def with any valid RATELIMIT_<prefix>_*
// overrides applied. Values that are not positive integers are ignored.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnv("RATELIMIT_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

func positiveEnv(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	return n, err == nil && n > 0
}

// KeyExtractor names the bucket a request is charged to. An empty key
// exempts the request.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the client address, preferring the first
// X-Forwarded-For hop, then X-Real-IP, then the connection address.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// SubjectKeyExtractor returns the authenticated admin subject, or "".
func SubjectKeyExtractor(r *http.Request) string {
	return SubjectFromContext(r.Context())
}

// CompositeKeyExtractor joins the non-empty keys of extractors with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// sweepEvery bounds how often idle buckets are dropped.
const sweepEvery = 5 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// buckets holds one token bucket per key. Buckets idle for a full window
// have refilled and are dropped on the next sweep.
type buckets struct {
	cfg RateLimitConfig

	mu        sync.Mutex
	byKey     map[string]*bucket
	lastSweep time.Time
}

func newBuckets(cfg RateLimitConfig) *buckets {
	return &buckets{cfg: cfg, byKey: make(map[string]*bucket), lastSweep: time.Now()}
}

// take spends a token for key. On denial it reports how long until the
// next token is available.
func (b *buckets) take(key string, now time.Time) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.lastSweep) >= sweepEvery {
		idle := max(b.cfg.Window, sweepEvery)
		for k, bk := range b.byKey {
			if now.Sub(bk.lastSeen) >= idle {
				delete(b.byKey, k)
			}
		}
		b.lastSweep = now
	}

	bk, ok := b.byKey[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(b.cfg.limit(), b.cfg.Burst)}
		b.byKey[key] = bk
	}
	bk.lastSeen = now

	if bk.limiter.AllowN(now, 1) {
		return true, 0
	}
	r := bk.limiter.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

// RateLimitMiddleware charges each request to the bucket keyExtractor names
// and answers 429 with the gateway error body once the bucket is empty.
func RateLimitMiddleware(cfg RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	b := newBuckets(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyExtractor(r)
			if key == "" {
				slogx.FromContext(r.Context()).Warn("rate limit guard has no key, letting request through", "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := b.take(key, time.Now())
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := RetryAfterSeconds(wait)
			slogx.FromContext(r.Context()).Warn("rate limit guard tripped",
				"key", key, "path", r.URL.Path, "limit", cfg.String(), "retry_after", retryAfter)

			h := w.Header()
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			h.Set("X-RateLimit-Remaining", "0")
			h.Set("X-RateLimit-Window", GuardWindow)
			WriteJSON(w, http.StatusTooManyRequests, searchsdk.ErrorResponse{
				Error:            "rate_limit_exceeded",
				ErrorDescription: "too many requests from this client, limit is " + cfg.String(),
			})
		})
	}
}

// RateLimitByIP guards by client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}

// RateLimitByUser guards by admin subject and client address together.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", SubjectKeyExtractor, IPKeyExtractor))
}
