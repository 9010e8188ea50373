package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/metrics"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/service"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/httpx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/jwtx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"

	_ "github.com/lozadatravelagent/whole-sale-sub002/api/gateway" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	// FastStore is the optional volatile store; nil when pipeline state
	// lives in the durable store.
	FastStore store.Ephemeral

	// Metrics and Gatherer are optional; /metrics is only served when
	// Gatherer is set.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	Gateway           *service.Gateway
	CredentialService *service.CredentialService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSearch()
	r.registerCredentials()
	r.registerCache()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Wholesale Search Gateway API
//	@version		0.1.0
//	@description	Request gateway in front of the wholesale flight, hotel and package search providers.
//	@description
//	@description				Searches are authenticated with tenant API keys, rate limited per key over minute, hour and day windows,
//	@description				deduplicated by request id and answered from a soft/hard TTL result cache where possible.
//
//	@contact.name				Lozada Travel Agent Platform Team
//	@contact.url				https://github.com/lozadatravelagent/whole-sale-sub002
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
//	@description				Tenant API key issued by the admin API ("sk_...").
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin JWT (HS256). Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Metrics.HTTPMiddleware(r.Mux), r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSearch() {
	h := &SearchHandler{Gateway: r.Gateway}

	// POST /search - per-credential quotas are enforced by the gateway, the
	// IP limit only guards the credential lookup against key guessing
	r.Mux.Handle("POST /v1/search",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerCredentials() {
	h := &CredentialsHandler{CredentialService: r.CredentialService}

	read := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope("admin:read", "admin:write"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}
	write := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope("admin:write"),
			httpx.RateLimitByUser(limit),
		)
	}

	// Minting keys gets the strict limit, everything else moderate
	r.Mux.Handle("POST /v1/admin/credentials", write(h.HandleCreate, httpx.StrictLimit))
	r.Mux.Handle("GET /v1/admin/credentials", read(h.HandleList))
	r.Mux.Handle("GET /v1/admin/credentials/{id}", read(h.HandleGet))
	r.Mux.Handle("POST /v1/admin/credentials/{id}/revoke", write(h.HandleRevoke, httpx.ModerateLimit))
	r.Mux.Handle("PUT /v1/admin/credentials/{id}/expiry", write(h.HandleSetExpiry, httpx.ModerateLimit))
}

func (r *Router) registerCache() {
	h := &CacheHandler{Cache: r.Gateway.Cache}

	r.Mux.Handle("DELETE /v1/admin/cache/{search_type}",
		httpx.Chain(http.HandlerFunc(h.HandleInvalidate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope("admin:write"),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health probes - lenient rate limit
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.FastStore),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.Gatherer != nil {
		r.Mux.Handle("GET /metrics", metrics.Handler(r.Gatherer))
	}
}
