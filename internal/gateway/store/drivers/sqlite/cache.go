package sqlite

import (
	"context"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
)

type cacheRepo struct {
	db dbtx
}

func (r *cacheRepo) GetCacheEntry(ctx context.Context, searchType domain.SearchType, fingerprint string) (domain.CacheEntry, error) {
	var (
		e                   domain.CacheEntry
		st                  string
		created, soft, hard int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT fingerprint, search_type, payload, hits, created_at, soft_expires_at, hard_expires_at
		FROM cache_entries
		WHERE fingerprint = ? AND search_type = ?`,
		fingerprint, string(searchType),
	).Scan(&e.Fingerprint, &st, &e.Payload, &e.Hits, &created, &soft, &hard)
	if err != nil {
		return domain.CacheEntry{}, mapNotFound(err)
	}
	e.SearchType = domain.SearchType(st)
	e.CreatedAt = fromMillis(created)
	e.SoftExpiresAt = fromMillis(soft)
	e.HardExpiresAt = fromMillis(hard)
	return e, nil
}

func (r *cacheRepo) UpsertCacheEntry(ctx context.Context, e domain.CacheEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache_entries (fingerprint, search_type, payload, hits, created_at, soft_expires_at, hard_expires_at)
		VALUES (?, ?, ?, 0, ?, ?, ?)
		ON CONFLICT (fingerprint) DO UPDATE SET
			search_type = excluded.search_type,
			payload = excluded.payload,
			hits = 0,
			created_at = excluded.created_at,
			soft_expires_at = excluded.soft_expires_at,
			hard_expires_at = excluded.hard_expires_at`,
		e.Fingerprint, string(e.SearchType), e.Payload,
		toMillis(e.CreatedAt), toMillis(e.SoftExpiresAt), toMillis(e.HardExpiresAt),
	)
	return err
}

func (r *cacheRepo) IncrementCacheHits(ctx context.Context, searchType domain.SearchType, fingerprint string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE cache_entries SET hits = hits + 1 WHERE fingerprint = ? AND search_type = ?`,
		fingerprint, string(searchType),
	)
	return err
}

func (r *cacheRepo) DeleteCacheEntriesBySearchType(ctx context.Context, searchType domain.SearchType) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE search_type = ?`, string(searchType))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *cacheRepo) DeleteExpiredCacheEntries(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE hard_expires_at < ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
