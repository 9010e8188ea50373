package slogx_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddlewareCorrelationID(t *testing.T) {
	t.Run("echoes client supplied id", func(t *testing.T) {
		var seen string
		h := slogx.HTTPMiddleware(slogx.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = slogx.CorrelationID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(slogx.HeaderCorrelationID, "trace-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, "trace-123", seen)
		require.Equal(t, "trace-123", rec.Header().Get(slogx.HeaderCorrelationID))
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		var seen string
		h := slogx.HTTPMiddleware(slogx.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = slogx.CorrelationID(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.True(t, strings.HasPrefix(seen, "corr_"))
		require.Equal(t, seen, rec.Header().Get(slogx.HeaderCorrelationID))
	})

	t.Run("replaces ids with control characters", func(t *testing.T) {
		var seen string
		h := slogx.HTTPMiddleware(slogx.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = slogx.CorrelationID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(slogx.HeaderCorrelationID, "bad\tvalue")
		h.ServeHTTP(httptest.NewRecorder(), req)

		require.NotEqual(t, "bad\tvalue", seen)
		require.True(t, strings.HasPrefix(seen, "corr_"))
	})
}

func TestHTTPMiddlewareLogsWithCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := slogx.HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/search", nil)
	req.Header.Set(slogx.HeaderCorrelationID, "corr-abc")
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "http_request", line["msg"])
	require.Equal(t, "corr-abc", line["correlation_id"])
	require.EqualValues(t, http.StatusTeapot, line["status"])
	require.Equal(t, "/v1/search", line["path"])
}
