package http

import (
	"net/http"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/service"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/httpx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/searchsdk"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

type CacheHandler struct {
	Cache *service.FreshnessCache
}

// HandleInvalidate handles DELETE /v1/admin/cache/{search_type}
//
//	@Summary		Invalidate cached results
//	@Description	Drops every cached result of a search type, e.g. after a provider fixes bad fares.
//	@Tags			Cache
//	@Produce		json
//	@Security		BearerAuth
//	@Param			Authorization	header		string								true	"Bearer token with admin:write scope"
//	@Param			search_type		path		string								true	"flights, hotels or packages"
//	@Success		200				{object}	searchsdk.InvalidateCacheResponse	"search_type, status"
//	@Failure		400				{object}	searchsdk.ErrorResponse				"error, error_description"
//	@Failure		401				{object}	searchsdk.ErrorResponse				"error, error_description"
//	@Failure		403				{object}	searchsdk.ErrorResponse				"error, error_description"
//	@Failure		500				{object}	searchsdk.ErrorResponse				"error, error_description"
//	@Router			/v1/admin/cache/{search_type} [delete].
func (h *CacheHandler) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	searchType := domain.SearchType(r.PathValue("search_type"))
	if !searchType.Valid() {
		writeError(w, http.StatusBadRequest, searchsdk.ErrorCodeInvalidRequest, "Unknown search type")
		return
	}

	if err := h.Cache.Invalidate(ctx, searchType); err != nil {
		log.Error("failed to invalidate cache", "search_type", searchType, "error", err)
		writeError(w, http.StatusInternalServerError, searchsdk.ErrorCodeInternalError, "Failed to invalidate cache")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, searchsdk.InvalidateCacheResponse{
		SearchType: string(searchType),
		Status:     "invalidated",
	})
}
