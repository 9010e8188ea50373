package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCredentialHasScope(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		granted  []string
		required string
		want     bool
	}{
		{"exact match", []string{"search:flights"}, "search:flights", true},
		{"wildcard covers child", []string{"search:*"}, "search:flights", true},
		{"wildcard covers other child", []string{"search:*"}, "search:hotels", true},
		{"other exact scope", []string{"search:hotels"}, "search:flights", false},
		{"no partial match", []string{"search:fli"}, "search:flights", false},
		{"wildcard from another namespace", []string{"admin:*"}, "search:flights", false},
		{"global wildcard", []string{"*"}, "search:packages", true},
		{"no scopes", nil, "search:flights", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Credential{Scopes: tc.granted}
			require.Equal(t, tc.want, c.HasScope(tc.required))
		})
	}
}

func TestCredentialLifecycle(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	require.False(t, Credential{}.IsExpired(now))
	require.True(t, Credential{ExpiresAt: &past}.IsExpired(now))
	require.True(t, Credential{ExpiresAt: &now}.IsExpired(now))
	require.False(t, Credential{ExpiresAt: &future}.IsExpired(now))

	require.True(t, Credential{Status: CredentialActive}.IsActive())
	require.False(t, Credential{Status: CredentialRevoked}.IsActive())
}

func TestBucketStart(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 34, 56, 789, time.UTC)

	require.Equal(t, time.Date(2025, 3, 1, 12, 34, 0, 0, time.UTC), WindowMinute.BucketStart(now))
	require.Equal(t, time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), WindowHour.BucketStart(now))
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), WindowDay.BucketStart(now))

	t.Run("independent of the caller's zone", func(t *testing.T) {
		loc := time.FixedZone("UTC-3", -3*60*60)
		require.Equal(t, WindowDay.BucketStart(now), WindowDay.BucketStart(now.In(loc)))
	})

	t.Run("reset is one width later", func(t *testing.T) {
		k := CounterKey{Window: WindowMinute, BucketStart: WindowMinute.BucketStart(now)}
		require.Equal(t, time.Date(2025, 3, 1, 12, 35, 0, 0, time.UTC), k.ResetAt())
	})
}

func TestLimitsFor(t *testing.T) {
	t.Parallel()

	l := Limits{PerMinute: 1, PerHour: 2, PerDay: 3}
	require.EqualValues(t, 1, l.For(WindowMinute))
	require.EqualValues(t, 2, l.For(WindowHour))
	require.EqualValues(t, 3, l.For(WindowDay))
	require.EqualValues(t, 0, l.For("fortnight"))
}

func TestCacheEntryFreshness(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	e := CacheEntry{
		CreatedAt:     created,
		SoftExpiresAt: created.Add(2 * time.Minute),
		HardExpiresAt: created.Add(30 * time.Minute),
	}

	require.Equal(t, FreshnessFresh, e.FreshnessAt(created))
	require.Equal(t, FreshnessFresh, e.FreshnessAt(e.SoftExpiresAt))
	require.Equal(t, FreshnessStale, e.FreshnessAt(e.SoftExpiresAt.Add(time.Nanosecond)))
	require.Equal(t, FreshnessStale, e.FreshnessAt(e.HardExpiresAt))
	require.Equal(t, FreshnessMiss, e.FreshnessAt(e.HardExpiresAt.Add(time.Nanosecond)))
}

func TestSearchType(t *testing.T) {
	t.Parallel()

	require.True(t, SearchFlights.Valid())
	require.False(t, SearchType("cruises").Valid())
	require.Equal(t, "search:hotels", SearchHotels.Scope())
}
