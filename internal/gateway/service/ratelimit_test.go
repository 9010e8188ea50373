package service

import (
	"context"
	"testing"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterMinuteBoundary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	clock := newClock()
	clock.Advance(15 * time.Second)

	l := &RateLimiter{Counters: s.Counters(), FailOpen: true, Now: clock.Now}
	limits := domain.Limits{PerMinute: 5, PerHour: 100, PerDay: 1000}

	for i := 1; i <= 5; i++ {
		d, err := l.CheckAndConsume(ctx, "cred-a", limits)
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d", i)
		require.Len(t, d.Windows, 3)
		require.EqualValues(t, i, d.Windows[0].Count)
	}

	d, err := l.CheckAndConsume(ctx, "cred-a", limits)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.NotNil(t, d.Denied)
	require.Equal(t, domain.WindowMinute, d.Denied.Window)
	require.EqualValues(t, 5, d.Denied.Limit)
	require.EqualValues(t, 0, d.Denied.Remaining())
	require.Equal(t, t0.Add(time.Minute), d.Denied.ResetAt)
	require.Len(t, d.Windows, 1, "evaluation stops at the violated window")

	t.Run("other credentials are unaffected", func(t *testing.T) {
		d, err := l.CheckAndConsume(ctx, "cred-b", limits)
		require.NoError(t, err)
		require.True(t, d.Allowed)
	})

	t.Run("next bucket allows again", func(t *testing.T) {
		clock.Advance(time.Minute)
		d, err := l.CheckAndConsume(ctx, "cred-a", limits)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.EqualValues(t, 1, d.Windows[0].Count)
		// The denied request stopped at the minute window.
		require.EqualValues(t, 6, d.Windows[1].Count)
	})
}

func TestRateLimiterHourWindow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	clock := newClock()

	l := &RateLimiter{Counters: s.Counters(), Now: clock.Now}
	limits := domain.Limits{PerHour: 2}

	for i := 0; i < 2; i++ {
		d, err := l.CheckAndConsume(ctx, "cred-a", limits)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Len(t, d.Windows, 1, "disabled windows are skipped")
	}

	clock.Advance(5 * time.Minute)
	d, err := l.CheckAndConsume(ctx, "cred-a", limits)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, domain.WindowHour, d.Denied.Window)
	require.Equal(t, t0.Add(time.Hour), d.Denied.ResetAt)
}

func TestRateLimiterStoreOutage(t *testing.T) {
	ctx := context.Background()
	limits := domain.Limits{PerMinute: 1, PerHour: 1, PerDay: 1}

	t.Run("fail open allows", func(t *testing.T) {
		l := &RateLimiter{Counters: downCounters{}, FailOpen: true}
		for i := 0; i < 3; i++ {
			d, err := l.CheckAndConsume(ctx, "cred-a", limits)
			require.NoError(t, err)
			require.True(t, d.Allowed)
			require.Empty(t, d.Windows)
		}
	})

	t.Run("fail closed reports internal error", func(t *testing.T) {
		l := &RateLimiter{Counters: downCounters{}}
		_, err := l.CheckAndConsume(ctx, "cred-a", limits)
		require.ErrorIs(t, err, ErrInternal)
		require.ErrorIs(t, err, errStoreDown)
	})

	t.Run("cancelled callers are not let through", func(t *testing.T) {
		s := newTestStore(t)
		l := &RateLimiter{Counters: s.Counters(), FailOpen: true, Now: newClock().Now}

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		d, err := l.CheckAndConsume(cctx, "cred-a", limits)
		require.ErrorIs(t, err, context.Canceled)
		require.ErrorIs(t, err, ErrInternal)
		require.False(t, d.Allowed)
	})
}

func TestRateDecisionHeadline(t *testing.T) {
	t.Parallel()

	minute := WindowUsage{Window: domain.WindowMinute, Limit: 10, Count: 2}
	hour := WindowUsage{Window: domain.WindowHour, Limit: 100, Count: 99}
	day := WindowUsage{Window: domain.WindowDay, Limit: 1000, Count: 99}

	t.Run("closest to its limit", func(t *testing.T) {
		u, ok := RateDecision{Allowed: true, Windows: []WindowUsage{minute, hour, day}}.Headline()
		require.True(t, ok)
		require.Equal(t, domain.WindowHour, u.Window)
	})

	t.Run("ties go to the smaller window", func(t *testing.T) {
		u, ok := RateDecision{Allowed: true, Windows: []WindowUsage{
			{Window: domain.WindowMinute, Limit: 5, Count: 1},
			{Window: domain.WindowHour, Limit: 50, Count: 46},
		}}.Headline()
		require.True(t, ok)
		require.Equal(t, domain.WindowMinute, u.Window)
	})

	t.Run("denied window wins", func(t *testing.T) {
		denied := WindowUsage{Window: domain.WindowMinute, Limit: 1, Count: 2}
		u, ok := RateDecision{Windows: []WindowUsage{denied}, Denied: &denied}.Headline()
		require.True(t, ok)
		require.Equal(t, denied, u)
	})

	t.Run("nothing evaluated", func(t *testing.T) {
		_, ok := RateDecision{Allowed: true}.Headline()
		require.False(t, ok)
	})
}
