package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/metrics"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

const DefaultIdempotencyTTL = 5 * time.Minute

// prefixedRequestID accepts tokens such as req_abcdef0123.
var prefixedRequestID = regexp.MustCompile(`^[a-z][a-z0-9]{1,15}_[A-Za-z0-9_-]{8,64}$`)

// ValidateRequestID accepts a canonical UUID or a prefixed token.
func ValidateRequestID(id string) error {
	if len(id) == 36 {
		if _, err := uuid.Parse(id); err == nil {
			return nil
		}
	}
	if prefixedRequestID.MatchString(id) {
		return nil
	}
	return ErrMalformedRequestID
}

// IdempotencyGuard remembers the response produced for a client request id
// so retries are answered without running the search again.
type IdempotencyGuard struct {
	Records store.IdempotencyRecords
	TTL     time.Duration
	// FailOpen treats store errors as a miss.
	FailOpen bool
	Now      func() time.Time
	Metrics  *metrics.Metrics
}

func (g *IdempotencyGuard) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *IdempotencyGuard) ttl() time.Duration {
	if g.TTL > 0 {
		return g.TTL
	}
	return DefaultIdempotencyTTL
}

// Lookup returns the unexpired record for requestID, or nil on a miss.
func (g *IdempotencyGuard) Lookup(ctx context.Context, requestID string) (*domain.IdempotencyRecord, error) {
	rec, err := g.Records.GetIdempotencyRecord(ctx, requestID, g.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, withCause(ErrInternal, ctx.Err())
		}
		if g.FailOpen {
			slogx.FromContext(ctx).Warn("idempotency store unavailable, treating as miss", "error", err)
			g.Metrics.ObserveFailOpen("idempotency")
			return nil, nil
		}
		return nil, withCause(ErrInternal, err)
	}
	return &rec, nil
}

// Store records response for requestID. A record that already exists is
// left untouched and is not an error.
func (g *IdempotencyGuard) Store(ctx context.Context, requestID, searchID string, response []byte, credentialID string) error {
	now := g.now()
	err := g.Records.InsertIdempotencyRecord(ctx, domain.IdempotencyRecord{
		RequestID:    requestID,
		SearchID:     searchID,
		CredentialID: credentialID,
		Response:     response,
		CreatedAt:    now,
		ExpiresAt:    now.Add(g.ttl()),
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		slogx.FromContext(ctx).Debug("idempotency record already present", "request_id", requestID)
		return nil
	}
	return err
}
