package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/metrics"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/idx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

const DefaultExecuteTimeout = 10 * time.Second

// SearchExecutor runs a search against the upstream providers.
type SearchExecutor interface {
	Execute(ctx context.Context, searchType domain.SearchType, params json.RawMessage) (domain.SearchResult, error)
}

// PipelineState names the steps a search request moves through.
type PipelineState string

const (
	StateStart              PipelineState = "start"
	StateAuthenticated      PipelineState = "authenticated"
	StateScopeChecked       PipelineState = "scope_checked"
	StateIdempotencyChecked PipelineState = "idempotency_checked"
	StateRateLimited        PipelineState = "rate_limited"
	StateCacheChecked       PipelineState = "cache_checked"
	StateExecuted           PipelineState = "executed"
	StateServed             PipelineState = "served"
	StateResponded          PipelineState = "responded"
	StateRejected           PipelineState = "rejected"
)

type SearchRequest struct {
	APIKey     string
	SearchType domain.SearchType
	Params     json.RawMessage
	// RequestID is the optional client idempotency key.
	RequestID string
}

// Envelope is the JSON body of a successful search.
type Envelope struct {
	SearchID   string            `json:"search_id"`
	SearchType domain.SearchType `json:"search_type"`
	Results    json.RawMessage   `json:"results"`
	Metadata   Metadata          `json:"metadata"`
}

// SearchResponse carries the encoded envelope plus what the transport needs
// for headers. Search also returns it alongside an error so a rejected
// request that reached the rate limiter still reports its quota.
type SearchResponse struct {
	Body       []byte
	SearchID   string
	ResolvedBy string
	CacheState domain.Freshness
	Replayed   bool
	// RateLimit is nil when the rate limiter did not run or no window is
	// configured.
	RateLimit *WindowUsage
}

// Gateway runs the search pipeline: authenticate, check scope, replay by
// request id, rate limit, serve from cache, and finally execute upstream.
type Gateway struct {
	Auth        *Authenticator
	Limiter     *RateLimiter
	Idempotency *IdempotencyGuard
	Cache       *FreshnessCache
	Executor    SearchExecutor
	Tasks       *TaskGroup
	Metrics     *metrics.Metrics

	ExecuteTimeout time.Duration
	Now            func() time.Time

	// executions coalesces upstream calls per fingerprint; retries
	// coalesces concurrent requests per credential and request id.
	executions singleflight.Group
	retries    singleflight.Group
}

func (g *Gateway) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Gateway) executeTimeout() time.Duration {
	if g.ExecuteTimeout > 0 {
		return g.ExecuteTimeout
	}
	return DefaultExecuteTimeout
}

func (g *Gateway) spawn(ctx context.Context, name string, fn func(ctx context.Context)) {
	if g.Tasks == nil {
		fn(context.WithoutCancel(ctx))
		return
	}
	g.Tasks.Go(ctx, name, fn)
}

// pipeline tracks one request through the states and collects its timings.
type pipeline struct {
	log          *slog.Logger
	metrics      *metrics.Metrics
	state        PipelineState
	meta         MetadataBuilder
	credentialID string
}

func (p *pipeline) transition(to PipelineState, attrs ...any) {
	p.log.Info("search pipeline",
		append([]any{"from", p.state, "to", to}, attrs...)...)
	p.state = to
}

func (p *pipeline) timed(stage string, start time.Time) {
	d := time.Since(start)
	p.meta.Stage(stage, d)
	p.metrics.ObserveStage(stage, d)
}

// Search runs req through the pipeline. A correlation id is generated when
// ctx does not carry one.
func (g *Gateway) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	if slogx.CorrelationID(ctx) == "" {
		ctx = slogx.WithCorrelationID(ctx, idx.NewPrefixed(idx.PrefixCorrelation))
	}
	p := &pipeline{
		log:     slogx.FromContext(ctx).With("search_type", req.SearchType),
		metrics: g.Metrics,
		state:   StateStart,
	}

	resp, err := g.run(ctx, p, req)
	if err != nil {
		ge := AsGatewayError(err)
		attrs := []any{"code", ge.Code, "status", ge.Status}
		if ge.Status >= 500 {
			attrs = append(attrs, "error", err)
		}
		p.transition(StateRejected, attrs...)
		g.Metrics.ObserveSearch(string(req.SearchType), ge.Code)
		return resp, ge
	}

	p.transition(StateResponded,
		"resolved_by", resp.ResolvedBy, "search_id", resp.SearchID, "replayed", resp.Replayed)
	g.Metrics.ObserveSearch(string(req.SearchType), resp.ResolvedBy)

	credentialID := p.credentialID
	g.spawn(ctx, "touch_usage", func(ctx context.Context) {
		if err := g.Auth.TouchUsage(ctx, credentialID); err != nil {
			slogx.FromContext(ctx).Warn("credential usage not recorded", "credential_id", credentialID, "error", err)
		}
	})
	return resp, nil
}

func (g *Gateway) run(ctx context.Context, p *pipeline, req SearchRequest) (SearchResponse, error) {
	start := time.Now()
	cred, err := g.Auth.Authenticate(ctx, req.APIKey)
	p.timed("authenticate", start)
	if err != nil {
		return SearchResponse{}, err
	}
	p.credentialID = cred.ID
	p.transition(StateAuthenticated, "credential_id", cred.ID, "tenant_id", cred.TenantID)

	if !req.SearchType.Valid() {
		return SearchResponse{}, invalidRequest(fmt.Sprintf("unknown search_type %q", req.SearchType))
	}
	scope := req.SearchType.Scope()
	if !g.Auth.CheckScope(cred, scope) {
		return SearchResponse{}, ErrInsufficientScope
	}
	p.transition(StateScopeChecked, "scope", scope)

	if req.RequestID == "" {
		p.transition(StateIdempotencyChecked, "idempotency", "skipped")
		return g.resolve(ctx, p, cred, req)
	}
	if err := ValidateRequestID(req.RequestID); err != nil {
		return SearchResponse{}, err
	}

	ran := false
	v, err, _ := g.retries.Do(cred.ID+":"+req.RequestID, func() (any, error) {
		ran = true
		return g.guarded(ctx, p, cred, req)
	})
	resp, _ := v.(SearchResponse)
	if ran {
		return resp, err
	}

	// Joined an identical request already in flight.
	p.transition(StateIdempotencyChecked, "request_id", req.RequestID, "coalesced", true)
	if err != nil {
		return SearchResponse{}, err
	}
	g.Metrics.ObserveReplay()
	resp.Replayed = true
	resp.ResolvedBy = ResolvedByIdempotency
	resp.RateLimit = nil
	return resp, nil
}

// guarded answers from the idempotency record when one exists for this
// credential, and otherwise resolves the request normally.
func (g *Gateway) guarded(ctx context.Context, p *pipeline, cred domain.Credential, req SearchRequest) (SearchResponse, error) {
	start := time.Now()
	rec, err := g.Idempotency.Lookup(ctx, req.RequestID)
	p.timed("idempotency", start)
	if err != nil {
		return SearchResponse{}, err
	}

	if rec != nil && rec.CredentialID == cred.ID {
		p.transition(StateIdempotencyChecked, "request_id", req.RequestID, "hit", true)
		g.Metrics.ObserveReplay()
		return SearchResponse{
			Body:       rec.Response,
			SearchID:   rec.SearchID,
			ResolvedBy: ResolvedByIdempotency,
			Replayed:   true,
		}, nil
	}
	if rec != nil {
		p.log.Warn("request id belongs to another credential", "request_id", req.RequestID)
	}

	p.transition(StateIdempotencyChecked, "request_id", req.RequestID, "hit", false)
	return g.resolve(ctx, p, cred, req)
}

// resolve covers rate limiting, the result cache and upstream execution.
func (g *Gateway) resolve(ctx context.Context, p *pipeline, cred domain.Credential, req SearchRequest) (SearchResponse, error) {
	var resp SearchResponse

	start := time.Now()
	decision, err := g.Limiter.CheckAndConsume(ctx, cred.ID, cred.Limits)
	p.timed("ratelimit", start)
	if err != nil {
		return resp, err
	}
	if u, ok := decision.Headline(); ok {
		resp.RateLimit = &u
	}
	if !decision.Allowed {
		return resp, rateLimitExceeded(*decision.Denied, g.now())
	}
	p.transition(StateRateLimited, "windows", len(decision.Windows))

	start = time.Now()
	lookup, err := g.Cache.Get(ctx, req.SearchType, req.Params)
	p.timed("cache", start)
	if err != nil {
		return resp, err
	}
	resp.CacheState = lookup.State
	p.transition(StateCacheChecked, "cache_state", lookup.State, "fingerprint", lookup.Fingerprint)

	if lookup.State != domain.FreshnessMiss {
		if lookup.NeedsRefresh {
			fp := lookup.Fingerprint
			g.Cache.ScheduleRefresh(ctx, fp, func(ctx context.Context) error {
				_, err := g.execute(ctx, req.SearchType, req.Params, fp)
				return err
			})
		}
		p.transition(StateServed, "cache_state", lookup.State)
		return g.respond(p, resp, req.SearchType, ResolvedByCache, lookup.Result)
	}

	start = time.Now()
	result, err := g.execute(ctx, req.SearchType, req.Params, lookup.Fingerprint)
	p.timed("execute", start)
	if err != nil {
		return resp, err
	}
	p.transition(StateExecuted, "providers", result.Providers)

	resp, err = g.respond(p, resp, req.SearchType, ResolvedByUpstream, result)
	if err != nil {
		return resp, err
	}

	if req.RequestID != "" {
		if err := g.Idempotency.Store(context.WithoutCancel(ctx), req.RequestID, resp.SearchID, resp.Body, cred.ID); err != nil {
			p.log.Warn("idempotency record not stored", "request_id", req.RequestID, "error", err)
		}
	}
	return resp, nil
}

// execute calls the upstream executor under the execution timeout and caches
// the result. Concurrent calls for the same fingerprint share one upstream
// call.
func (g *Gateway) execute(ctx context.Context, searchType domain.SearchType, params json.RawMessage, fp string) (domain.SearchResult, error) {
	v, err, _ := g.executions.Do(fp, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		execCtx, cancel := context.WithTimeout(ctx, g.executeTimeout())
		defer cancel()

		start := time.Now()
		result, err := g.Executor.Execute(execCtx, searchType, params)
		if err == nil && execCtx.Err() != nil {
			err = execCtx.Err()
		}
		if err != nil {
			failure := upstreamFailure(err)
			g.Metrics.ObserveUpstream(string(searchType), failure.Code, time.Since(start))
			return nil, failure
		}
		g.Metrics.ObserveUpstream(string(searchType), "ok", time.Since(start))

		if err := g.Cache.put(ctx, searchType, fp, result); err != nil {
			slogx.FromContext(ctx).Warn("search result not cached", "fingerprint", fp, "error", err)
		}
		return result, nil
	})
	if err != nil {
		return domain.SearchResult{}, err
	}
	return v.(domain.SearchResult), nil
}

func (g *Gateway) respond(p *pipeline, resp SearchResponse, searchType domain.SearchType, resolvedBy string, result domain.SearchResult) (SearchResponse, error) {
	resp.SearchID = idx.NewPrefixed(idx.PrefixSearch)
	resp.ResolvedBy = resolvedBy

	results := result.Payload
	if len(results) == 0 {
		results = nil
	}
	body, err := json.Marshal(Envelope{
		SearchID:   resp.SearchID,
		SearchType: searchType,
		Results:    results,
		Metadata:   p.meta.Build(resolvedBy, resp.CacheState, result, g.now()),
	})
	if err != nil {
		return resp, withCause(ErrInternal, fmt.Errorf("encode response: %w", err))
	}
	resp.Body = body
	return resp, nil
}
