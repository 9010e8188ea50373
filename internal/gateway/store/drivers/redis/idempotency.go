package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	goredis "github.com/redis/go-redis/v9"
)

type idempotencyRepo struct {
	client *goredis.Client
}

type idempotencyValue struct {
	SearchID     string    `json:"search_id"`
	CredentialID string    `json:"credential_id"`
	Response     []byte    `json:"response"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func idempotencyKey(requestID string) string {
	return keyPrefix + "idem:" + requestID
}

func (r *idempotencyRepo) GetIdempotencyRecord(ctx context.Context, requestID string, now time.Time) (domain.IdempotencyRecord, error) {
	raw, err := r.client.Get(ctx, idempotencyKey(requestID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.IdempotencyRecord{}, store.ErrNotFound
		}
		return domain.IdempotencyRecord{}, err
	}

	var v idempotencyValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.IdempotencyRecord{}, err
	}
	rec := domain.IdempotencyRecord{
		RequestID:    requestID,
		SearchID:     v.SearchID,
		CredentialID: v.CredentialID,
		Response:     v.Response,
		CreatedAt:    v.CreatedAt,
		ExpiresAt:    v.ExpiresAt,
	}
	if rec.IsExpired(now) {
		return domain.IdempotencyRecord{}, store.ErrNotFound
	}
	return rec, nil
}

// InsertIdempotencyRecord relies on SET NX; the key TTL is the record TTL so
// an expired record has already vanished.
func (r *idempotencyRepo) InsertIdempotencyRecord(ctx context.Context, rec domain.IdempotencyRecord) error {
	raw, err := json.Marshal(idempotencyValue{
		SearchID:     rec.SearchID,
		CredentialID: rec.CredentialID,
		Response:     rec.Response,
		CreatedAt:    rec.CreatedAt,
		ExpiresAt:    rec.ExpiresAt,
	})
	if err != nil {
		return err
	}

	ttl := rec.ExpiresAt.Sub(rec.CreatedAt)
	if ttl <= 0 {
		return nil
	}

	ok, err := r.client.SetNX(ctx, idempotencyKey(rec.RequestID), raw, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *idempotencyRepo) DeleteExpiredIdempotencyRecords(context.Context, time.Time) (int64, error) {
	return 0, nil
}
