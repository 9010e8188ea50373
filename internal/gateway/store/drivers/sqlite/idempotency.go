package sqlite

import (
	"context"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
)

type idempotencyRepo struct {
	db dbtx
}

func (r *idempotencyRepo) GetIdempotencyRecord(ctx context.Context, requestID string, now time.Time) (domain.IdempotencyRecord, error) {
	var (
		rec                  domain.IdempotencyRecord
		createdAt, expiresAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT request_id, search_id, credential_id, response, created_at, expires_at
		FROM idempotency_records
		WHERE request_id = ? AND expires_at > ?`,
		requestID, toMillis(now),
	).Scan(&rec.RequestID, &rec.SearchID, &rec.CredentialID, &rec.Response, &createdAt, &expiresAt)
	if err != nil {
		return domain.IdempotencyRecord{}, mapNotFound(err)
	}
	rec.CreatedAt = fromMillis(createdAt)
	rec.ExpiresAt = fromMillis(expiresAt)
	return rec, nil
}

// InsertIdempotencyRecord only overwrites a row that has already expired, so
// the first unexpired writer wins.
func (r *idempotencyRepo) InsertIdempotencyRecord(ctx context.Context, rec domain.IdempotencyRecord) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO idempotency_records (request_id, search_id, credential_id, response, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (request_id) DO UPDATE SET
			search_id = excluded.search_id,
			credential_id = excluded.credential_id,
			response = excluded.response,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
		WHERE idempotency_records.expires_at <= excluded.created_at`,
		rec.RequestID, rec.SearchID, rec.CredentialID, rec.Response, toMillis(rec.CreatedAt), toMillis(rec.ExpiresAt),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrAlreadyExists
	}
	return nil
}

func (r *idempotencyRepo) DeleteExpiredIdempotencyRecords(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM idempotency_records WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
