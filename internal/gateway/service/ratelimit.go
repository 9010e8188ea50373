package service

import (
	"context"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/metrics"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

// DefaultCounterMargin keeps a counter alive a little past its bucket so a
// request straddling the boundary still sees it.
const DefaultCounterMargin = 60 * time.Second

// WindowUsage is the state of one window after a request was counted.
type WindowUsage struct {
	Window  domain.RateWindow
	Limit   int64
	Count   int64
	ResetAt time.Time
}

func (u WindowUsage) Remaining() int64 {
	if r := u.Limit - u.Count; r > 0 {
		return r
	}
	return 0
}

type RateDecision struct {
	Allowed bool
	// Windows holds every window that was evaluated, in order.
	Windows []WindowUsage
	// Denied is the violated window when Allowed is false.
	Denied *WindowUsage
}

// Headline picks the window reported in rate limit headers: the violated
// one, otherwise the one closest to its limit.
func (d RateDecision) Headline() (WindowUsage, bool) {
	if d.Denied != nil {
		return *d.Denied, true
	}
	if len(d.Windows) == 0 {
		return WindowUsage{}, false
	}
	best := d.Windows[0]
	for _, u := range d.Windows[1:] {
		if u.Remaining() < best.Remaining() {
			best = u
		}
	}
	return best, true
}

// RateLimiter enforces the per-credential minute, hour and day quotas using
// fixed, wall-clock aligned buckets.
type RateLimiter struct {
	Counters store.Counters
	// FailOpen lets requests through when the counter store errors.
	FailOpen bool
	Margin   time.Duration
	Now      func() time.Time
	Metrics  *metrics.Metrics
}

func (l *RateLimiter) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *RateLimiter) margin() time.Duration {
	if l.Margin > 0 {
		return l.Margin
	}
	return DefaultCounterMargin
}

// CheckAndConsume counts one request against each configured window,
// smallest first, and stops at the first window whose post-increment count
// exceeds its limit. Consumed units are never given back.
func (l *RateLimiter) CheckAndConsume(ctx context.Context, credentialID string, limits domain.Limits) (RateDecision, error) {
	now := l.now()
	decision := RateDecision{Allowed: true}

	for _, w := range domain.RateWindows {
		limit := limits.For(w)
		if limit <= 0 {
			continue
		}

		key := domain.CounterKey{
			CredentialID: credentialID,
			Window:       w,
			BucketStart:  w.BucketStart(now),
		}
		count, err := l.Counters.IncrementCounter(ctx, key, w.Width()+l.margin())
		if err != nil {
			if ctx.Err() != nil {
				return RateDecision{}, withCause(ErrInternal, ctx.Err())
			}
			if l.FailOpen {
				slogx.FromContext(ctx).Warn("rate limit counter unavailable, failing open",
					"window", w, "error", err)
				l.Metrics.ObserveFailOpen("ratelimit")
				continue
			}
			return RateDecision{}, withCause(ErrInternal, err)
		}

		usage := WindowUsage{Window: w, Limit: limit, Count: count, ResetAt: key.ResetAt()}
		decision.Windows = append(decision.Windows, usage)

		if count > limit {
			l.Metrics.ObserveRateLimit(string(w), false)
			decision.Allowed = false
			decision.Denied = &usage
			return decision, nil
		}
		l.Metrics.ObserveRateLimit(string(w), true)
	}

	return decision, nil
}
