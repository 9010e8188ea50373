package http

import (
	"net/http"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/httpx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/searchsdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for the durable and fast stores
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	searchsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	searchsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	fast store.Ephemeral,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &searchsdk.HealthChecks{
			Database: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		// Credentials always live in the durable store
		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if fast != nil {
			checks.FastStore = "ok"
			if err := fast.Ping(r.Context()); err != nil {
				checks.FastStore = "error: " + err.Error()
				overallStatus = "degraded"
				statusCode = http.StatusServiceUnavailable
			}
		}

		httpx.WriteJSON(w, statusCode, searchsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
