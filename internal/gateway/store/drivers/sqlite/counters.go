package sqlite

import (
	"context"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
)

type countersRepo struct {
	db dbtx
}

// IncrementCounter is a single upsert so concurrent callers can never lose
// an increment.
func (r *countersRepo) IncrementCounter(ctx context.Context, key domain.CounterKey, ttl time.Duration) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO rate_counters (credential_id, window_name, bucket_start, count, expires_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (credential_id, window_name, bucket_start)
		DO UPDATE SET count = rate_counters.count + 1
		RETURNING count`,
		key.CredentialID, string(key.Window), key.BucketStart.Unix(), toMillis(key.BucketStart.Add(ttl)),
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *countersRepo) DeleteExpiredCounters(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rate_counters WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
