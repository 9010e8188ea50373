package gateway_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lozadatravelagent/whole-sale-sub002/pkg/searchsdk"
)

var hotels = searchsdk.SearchRequest{
	SearchType: "hotels",
	Params:     json.RawMessage(`{"city":"MAD","check_in":"2026-12-01","nights":3}`),
}

// TestSearchFlow covers a miss, the cached answer for reordered params and
// a cache invalidation.
func TestSearchFlow(t *testing.T) {
	runBothStores(t, func(t *testing.T, env *gatewayEnv) {
		client, _ := env.issueKey(t, []string{"search:*"}, searchsdk.Limits{PerMinute: 100})

		first, err := client.Search(t.Context(), hotels)
		require.NoError(t, err)
		require.Equal(t, "miss", first.Cache)
		require.Equal(t, "upstream", first.Response.Metadata.ResolvedBy)
		require.True(t, strings.HasPrefix(first.Response.SearchID, "srch_"))
		require.Equal(t, []string{"amadeus", "hotelbeds"}, first.Response.Metadata.Providers)
		require.NotNil(t, first.RateLimit)
		require.EqualValues(t, 100, first.RateLimit.Limit)
		require.NotEmpty(t, first.CorrelationID)

		reordered := searchsdk.SearchRequest{
			SearchType: "HOTELS",
			Params:     json.RawMessage(`{"nights":3,"city":"MAD","check_in":"2026-12-01"}`),
		}
		cached := searchUntil(t, client, reordered, func(r *searchsdk.SearchResult) bool {
			return r.Cache == "fresh"
		})
		require.Equal(t, "cache", cached.Response.Metadata.ResolvedBy)
		require.Equal(t, "hotels", cached.Response.SearchType)
		require.JSONEq(t, string(first.Response.Results), string(cached.Response.Results))

		require.NoError(t, env.admin.InvalidateCache(t.Context(), "hotels"))

		calls := env.upstream.calls.Load()
		again, err := client.Search(t.Context(), hotels)
		require.NoError(t, err)
		require.Equal(t, "miss", again.Cache)
		require.Equal(t, calls+1, env.upstream.calls.Load())
	})
}

// TestSearchIdempotentReplay verifies a retried request id is answered with
// the original bytes without touching the upstream again.
func TestSearchIdempotentReplay(t *testing.T) {
	runBothStores(t, func(t *testing.T, env *gatewayEnv) {
		client, _ := env.issueKey(t, []string{"search:hotels"}, searchsdk.Limits{PerMinute: 100})

		req := hotels
		req.RequestID = "req_e2eretry01"

		first, err := client.Search(t.Context(), req)
		require.NoError(t, err)
		require.False(t, first.Replayed)

		replay := searchUntil(t, client, req, func(r *searchsdk.SearchResult) bool {
			return r.Replayed
		})
		require.Equal(t, first.Raw, replay.Raw)
		require.Nil(t, replay.RateLimit)
		require.Empty(t, replay.Cache)

		other, _ := env.issueKey(t, []string{"search:hotels"}, searchsdk.Limits{PerMinute: 100})
		foreign, err := other.Search(t.Context(), req)
		require.NoError(t, err)
		require.False(t, foreign.Replayed, "request ids are scoped to their credential")
		require.NotEqual(t, first.Response.SearchID, foreign.Response.SearchID)

		bad := hotels
		bad.RequestID = "not a request id"
		_, err = client.Search(t.Context(), bad)
		requireAPIError(t, err, http.StatusBadRequest, searchsdk.ErrorCodeMalformedRequestID)
	})
}

// TestSearchRateLimit exhausts a per-minute quota.
func TestSearchRateLimit(t *testing.T) {
	runBothStores(t, func(t *testing.T, env *gatewayEnv) {
		client, _ := env.issueKey(t, []string{"search:hotels"}, searchsdk.Limits{PerMinute: 2})

		for i := range 2 {
			res, err := client.Search(t.Context(), hotels)
			require.NoError(t, err)
			require.EqualValues(t, 1-i, res.RateLimit.Remaining)
		}

		_, err := client.Search(t.Context(), hotels)
		require.True(t, searchsdk.IsRateLimited(err))
		apiErr := requireAPIError(t, err, http.StatusTooManyRequests, searchsdk.ErrorCodeRateLimitExceeded)
		require.Positive(t, apiErr.RetryAfter)
		require.True(t, apiErr.Retryable())
		require.NotNil(t, apiErr.RateLimit)
		require.Equal(t, "minute", apiErr.RateLimit.Window)
		require.Zero(t, apiErr.RateLimit.Remaining)
	})
}

// TestSearchRejections covers the authentication and authorization errors.
func TestSearchRejections(t *testing.T) {
	env := setupGateway(t, "")
	client, cred := env.issueKey(t, []string{"search:flights"}, searchsdk.Limits{PerMinute: 100})

	_, err := searchsdk.NewSDKClient(env.baseURL, "").Search(t.Context(), hotels)
	requireAPIError(t, err, http.StatusUnauthorized, searchsdk.ErrorCodeMissingCredential)

	_, err = searchsdk.NewSDKClient(env.baseURL, "sk_not-a-real-key").Search(t.Context(), hotels)
	requireAPIError(t, err, http.StatusUnauthorized, searchsdk.ErrorCodeInvalidCredential)

	_, err = client.Search(t.Context(), hotels)
	requireAPIError(t, err, http.StatusForbidden, searchsdk.ErrorCodeInsufficientScope)

	require.NoError(t, env.admin.RevokeCredential(t.Context(), cred.ID))
	_, err = client.Search(t.Context(), searchsdk.SearchRequest{SearchType: "flights", Params: json.RawMessage(`{}`)})
	requireAPIError(t, err, http.StatusUnauthorized, searchsdk.ErrorCodeInactiveCredential)
}

// TestSearchUpstreamFailure verifies provider failures surface as gateway
// errors and are not cached.
func TestSearchUpstreamFailure(t *testing.T) {
	env := setupGateway(t, "")
	client, _ := env.issueKey(t, []string{"search:*"}, searchsdk.Limits{PerMinute: 100})

	env.upstream.status.Store(http.StatusServiceUnavailable)
	_, err := client.Search(t.Context(), hotels)
	apiErr := requireAPIError(t, err, http.StatusBadGateway, searchsdk.ErrorCodeUpstreamError)
	require.True(t, apiErr.Retryable())

	env.upstream.status.Store(0)
	res, err := client.Search(t.Context(), hotels)
	require.NoError(t, err)
	require.Equal(t, "miss", res.Cache)
}

func runBothStores(t *testing.T, fn func(t *testing.T, env *gatewayEnv)) {
	t.Run("sqlite", func(t *testing.T) {
		fn(t, setupGateway(t, ""))
	})
	t.Run("redis", func(t *testing.T) {
		fn(t, setupGateway(t, setupRedis(t)))
	})
}
