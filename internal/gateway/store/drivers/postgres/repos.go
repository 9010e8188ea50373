package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
)

type credentialsRepo struct {
	db dbtx
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.Credential) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if c.Status == "" {
		c.Status = domain.CredentialActive
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (`+credentialColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		c.ID, c.Name, c.SecretHash, c.TenantID, mapStringNull(c.SubTenantID), strings.Join(c.Scopes, " "),
		c.Limits.PerMinute, c.Limits.PerHour, c.Limits.PerDay, string(c.Status), mapOptionalTime(c.ExpiresAt),
		mapOptionalTime(c.LastUsedAt), c.UsageCount, c.CreatedAt, c.UpdatedAt,
	)
	return mapUniqueViolation(err)
}

func (r *credentialsRepo) GetCredentialByID(ctx context.Context, id string) (domain.Credential, error) {
	c, err := scanCredential(r.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, id))
	return c, mapNotFound(err)
}

func (r *credentialsRepo) GetCredentialBySecretHash(ctx context.Context, hash string) (domain.Credential, error) {
	c, err := scanCredential(r.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE secret_hash = $1`, hash))
	return c, mapNotFound(err)
}

func (r *credentialsRepo) ListCredentials(ctx context.Context, tenantID string) ([]domain.Credential, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+credentialColumns+` FROM credentials
		WHERE ($1 = '' OR tenant_id = $1)
		ORDER BY created_at DESC, id DESC`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *credentialsRepo) UpdateCredentialStatus(ctx context.Context, id string, status domain.CredentialStatus) error {
	return rowsAffectedOrNotFound(r.db.ExecContext(ctx,
		`UPDATE credentials SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id,
	))
}

func (r *credentialsRepo) UpdateCredentialExpiry(ctx context.Context, id string, expiresAt *time.Time) error {
	return rowsAffectedOrNotFound(r.db.ExecContext(ctx,
		`UPDATE credentials SET expires_at = $1, updated_at = now() WHERE id = $2`,
		mapOptionalTime(expiresAt), id,
	))
}

func (r *credentialsRepo) TouchCredentialUsage(ctx context.Context, id string, usedAt time.Time) error {
	return rowsAffectedOrNotFound(r.db.ExecContext(ctx, `
		UPDATE credentials
		SET last_used_at = GREATEST(COALESCE(last_used_at, $1), $1), usage_count = usage_count + 1
		WHERE id = $2`,
		usedAt.UTC(), id,
	))
}

type countersRepo struct {
	db dbtx
}

func (r *countersRepo) IncrementCounter(ctx context.Context, key domain.CounterKey, ttl time.Duration) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO rate_counters (credential_id, window_name, bucket_start, count, expires_at)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (credential_id, window_name, bucket_start)
		DO UPDATE SET count = rate_counters.count + 1
		RETURNING count`,
		key.CredentialID, string(key.Window), key.BucketStart.Unix(), key.BucketStart.Add(ttl).UTC(),
	).Scan(&count)
	return count, err
}

func (r *countersRepo) DeleteExpiredCounters(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rate_counters WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type idempotencyRepo struct {
	db dbtx
}

func (r *idempotencyRepo) GetIdempotencyRecord(ctx context.Context, requestID string, now time.Time) (domain.IdempotencyRecord, error) {
	var rec domain.IdempotencyRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT request_id, search_id, credential_id, response, created_at, expires_at
		FROM idempotency_records
		WHERE request_id = $1 AND expires_at > $2`,
		requestID, now.UTC(),
	).Scan(&rec.RequestID, &rec.SearchID, &rec.CredentialID, &rec.Response, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		return domain.IdempotencyRecord{}, mapNotFound(err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.ExpiresAt = rec.ExpiresAt.UTC()
	return rec, nil
}

func (r *idempotencyRepo) InsertIdempotencyRecord(ctx context.Context, rec domain.IdempotencyRecord) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO idempotency_records (request_id, search_id, credential_id, response, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (request_id) DO UPDATE SET
			search_id = EXCLUDED.search_id,
			credential_id = EXCLUDED.credential_id,
			response = EXCLUDED.response,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
		WHERE idempotency_records.expires_at <= EXCLUDED.created_at`,
		rec.RequestID, rec.SearchID, rec.CredentialID, rec.Response, rec.CreatedAt.UTC(), rec.ExpiresAt.UTC(),
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM idempotency_records WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type cacheRepo struct {
	db dbtx
}

func (r *cacheRepo) GetCacheEntry(ctx context.Context, searchType domain.SearchType, fingerprint string) (domain.CacheEntry, error) {
	var (
		e  domain.CacheEntry
		st string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT fingerprint, search_type, payload, hits, created_at, soft_expires_at, hard_expires_at
		FROM cache_entries
		WHERE fingerprint = $1 AND search_type = $2`,
		fingerprint, string(searchType),
	).Scan(&e.Fingerprint, &st, &e.Payload, &e.Hits, &e.CreatedAt, &e.SoftExpiresAt, &e.HardExpiresAt)
	if err != nil {
		return domain.CacheEntry{}, mapNotFound(err)
	}
	e.SearchType = domain.SearchType(st)
	e.CreatedAt = e.CreatedAt.UTC()
	e.SoftExpiresAt = e.SoftExpiresAt.UTC()
	e.HardExpiresAt = e.HardExpiresAt.UTC()
	return e, nil
}

func (r *cacheRepo) UpsertCacheEntry(ctx context.Context, e domain.CacheEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache_entries (fingerprint, search_type, payload, hits, created_at, soft_expires_at, hard_expires_at)
		VALUES ($1, $2, $3, 0, $4, $5, $6)
		ON CONFLICT (fingerprint) DO UPDATE SET
			search_type = EXCLUDED.search_type,
			payload = EXCLUDED.payload,
			hits = 0,
			created_at = EXCLUDED.created_at,
			soft_expires_at = EXCLUDED.soft_expires_at,
			hard_expires_at = EXCLUDED.hard_expires_at`,
		e.Fingerprint, string(e.SearchType), e.Payload,
		e.CreatedAt.UTC(), e.SoftExpiresAt.UTC(), e.HardExpiresAt.UTC(),
	)
	return err
}

func (r *cacheRepo) IncrementCacheHits(ctx context.Context, searchType domain.SearchType, fingerprint string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE cache_entries SET hits = hits + 1 WHERE fingerprint = $1 AND search_type = $2`,
		fingerprint, string(searchType),
	)
	return err
}

func (r *cacheRepo) DeleteCacheEntriesBySearchType(ctx context.Context, searchType domain.SearchType) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE search_type = $1`, string(searchType))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *cacheRepo) DeleteExpiredCacheEntries(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE hard_expires_at < $1`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
