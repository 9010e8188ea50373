package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	goredis "github.com/redis/go-redis/v9"
)

type countersRepo struct {
	client *goredis.Client
}

// counterKey embeds the bucket start so a new bucket is a new key and never
// needs resetting.
func counterKey(k domain.CounterKey) string {
	return keyPrefix + "rl:" + k.CredentialID + ":" + string(k.Window) + ":" + strconv.FormatInt(k.BucketStart.Unix(), 10)
}

// IncrementCounter runs INCR and EXPIRE in one MULTI/EXEC.
func (r *countersRepo) IncrementCounter(ctx context.Context, key domain.CounterKey, ttl time.Duration) (int64, error) {
	var incr *goredis.IntCmd
	k := counterKey(key)
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (r *countersRepo) DeleteExpiredCounters(context.Context, time.Time) (int64, error) {
	return 0, nil
}
