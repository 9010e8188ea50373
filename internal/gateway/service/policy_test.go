package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/stretchr/testify/require"
)

func TestDefaultCachePolicy(t *testing.T) {
	t.Parallel()

	p := DefaultCachePolicy()
	require.NoError(t, p.Validate())
	require.Equal(t, TTLPair{Soft: 2 * time.Minute, Hard: 30 * time.Minute}, p.For(domain.SearchFlights))
	require.Equal(t, TTLPair{Soft: 10 * time.Minute, Hard: 2 * time.Hour}, p.For(domain.SearchHotels))
	require.Equal(t, p.Default, p.For(domain.SearchType("cruises")))
}

func TestParseCachePolicy(t *testing.T) {
	t.Parallel()

	t.Run("overlays the defaults", func(t *testing.T) {
		p, err := ParseCachePolicy([]byte(`
default:
  soft: 1m
  hard: 20m
types:
  flights:
    soft: 30s
    hard: 10m
`))
		require.NoError(t, err)
		require.Equal(t, TTLPair{Soft: 30 * time.Second, Hard: 10 * time.Minute}, p.For(domain.SearchFlights))
		require.Equal(t, TTLPair{Soft: 10 * time.Minute, Hard: 2 * time.Hour}, p.For(domain.SearchHotels))
		require.Equal(t, TTLPair{Soft: time.Minute, Hard: 20 * time.Minute}, p.Default)
	})

	t.Run("soft must be shorter than hard", func(t *testing.T) {
		_, err := ParseCachePolicy([]byte("types:\n  hotels: {soft: 1h, hard: 1h}\n"))
		require.ErrorContains(t, err, "hotels")
	})

	t.Run("soft must be positive", func(t *testing.T) {
		_, err := ParseCachePolicy([]byte("types:\n  hotels: {hard: 1h}\n"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := ParseCachePolicy([]byte("types: [nope"))
		require.Error(t, err)
	})
}

func TestLoadCachePolicy(t *testing.T) {
	t.Parallel()

	p, err := LoadCachePolicy("")
	require.NoError(t, err)
	require.Equal(t, DefaultCachePolicy(), p)

	path := filepath.Join(t.TempDir(), "cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("types:\n  packages: {soft: 5m, hard: 1h}\n"), 0o600))

	p, err = LoadCachePolicy(path)
	require.NoError(t, err)
	require.Equal(t, TTLPair{Soft: 5 * time.Minute, Hard: time.Hour}, p.For(domain.SearchPackages))

	_, err = LoadCachePolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
