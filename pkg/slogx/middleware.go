package slogx

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/pkg/idx"
)

// HeaderCorrelationID is read from the request and echoed on the response.
const HeaderCorrelationID = "X-Correlation-ID"

const maxCorrelationIDLength = 128

// HTTPMiddleware logs requests and attaches a contextual logger into request context.
// Each request gets a correlation id, either the one supplied by the client or
// a freshly generated one.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			correlationID := sanitizeCorrelationID(r.Header.Get(HeaderCorrelationID))
			if correlationID == "" {
				correlationID = idx.NewPrefixed(idx.PrefixCorrelation)
			}
			w.Header().Set(HeaderCorrelationID, correlationID)

			logger := base.With(
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			ctx := WithContext(r.Context(), logger)
			ctx = WithCorrelationID(ctx, correlationID)
			r = r.WithContext(ctx)

			next.ServeHTTP(rw, r)

			FromContext(ctx).Info("http_request",
				"status", rw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// sanitizeCorrelationID drops client values that would make log lines
// awkward to search (control characters, absurd lengths).
func sanitizeCorrelationID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxCorrelationIDLength {
		return ""
	}
	for _, c := range v {
		if c < 0x21 || c > 0x7e {
			return ""
		}
	}
	return v
}

type responseWriter struct {
	http.ResponseWriter

	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
