package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/service"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/httpx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/searchsdk"
)

const maxSearchBodyBytes = 1 << 20

// SearchHandler serves POST /v1/search.
type SearchHandler struct {
	Gateway *service.Gateway
}

// ServeHTTP handles POST /v1/search
//
//	@Summary		Run a search
//	@Description	Runs a flight, hotel or package search through the gateway.
//	@Description	A request_id makes the call idempotent: retries within the replay window return the original body byte for byte.
//	@Description	X-RateLimit-* headers describe the window closest to exhaustion (or the denying window on 429).
//	@Tags			Search
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Param			X-API-Key			header		string						false	"Tenant API key (alternatively Authorization: Bearer sk_...)"
//	@Param			X-Correlation-ID	header		string						false	"Correlation id echoed on the response and attached to every log line"
//	@Param			request				body		searchsdk.SearchRequest		true	"Search request"
//	@Success		200					{object}	searchsdk.SearchResponse	"search_id, search_type, results, metadata"
//	@Header			200					{string}	X-Cache						"fresh, stale or miss"
//	@Header			200					{string}	X-Idempotent-Replay			"true when replayed"
//	@Failure		400					{object}	searchsdk.ErrorResponse		"invalid_request, malformed_request_id, upstream_error (rejected by provider)"
//	@Failure		401					{object}	searchsdk.ErrorResponse		"missing, invalid, inactive or expired credential"
//	@Failure		403					{object}	searchsdk.ErrorResponse		"insufficient_scope"
//	@Failure		429					{object}	searchsdk.ErrorResponse		"rate_limit_exceeded"
//	@Failure		500					{object}	searchsdk.ErrorResponse		"internal_error"
//	@Failure		502					{object}	searchsdk.ErrorResponse		"upstream_error"
//	@Failure		504					{object}	searchsdk.ErrorResponse		"upstream_timeout"
//	@Router			/v1/search [post].
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxSearchBodyBytes)

	var req searchsdk.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, searchsdk.ErrorCodeInvalidRequest, "Invalid JSON in request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	resp, err := h.Gateway.Search(ctx, service.SearchRequest{
		APIKey:     apiKeyFromRequest(r),
		SearchType: domain.SearchType(strings.ToLower(req.SearchType)),
		Params:     req.Params,
		RequestID:  req.RequestID,
	})

	// Quota headers go out on denials too
	writeRateLimitHeaders(w, resp.RateLimit)

	if err != nil {
		writeGatewayError(w, service.AsGatewayError(err))
		return
	}

	if resp.CacheState != "" {
		w.Header().Set("X-Cache", string(resp.CacheState))
	}
	if resp.Replayed {
		w.Header().Set("X-Idempotent-Replay", "true")
	}
	httpx.WriteRawJSON(w, http.StatusOK, resp.Body)
}

// apiKeyFromRequest prefers X-API-Key and falls back to a bearer token.
func apiKeyFromRequest(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	key, _ := httpx.BearerToken(r)
	return key
}

func writeRateLimitHeaders(w http.ResponseWriter, u *service.WindowUsage) {
	if u == nil {
		return
	}
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.FormatInt(u.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(u.Remaining(), 10))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(u.ResetAt.Unix(), 10))
	h.Set("X-RateLimit-Window", string(u.Window))
}
