package http

import (
	"net/http"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/pkg/httpx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/searchsdk"
)

// LivezHandler godoc
//
//	@Summary		Liveness Check Endpoint
//	@Description	Liveness probe endpoint returning service status, uptime and version
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	searchsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, searchsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
