package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"128-bit token", TokenSize128},
		{"256-bit token", TokenSize256},
		{"custom size", 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestKeyedFingerprint(t *testing.T) {
	key := []byte("pepper-one")

	t.Run("deterministic for the same key", func(t *testing.T) {
		require.Equal(t, KeyedFingerprint(key, "sk_abc"), KeyedFingerprint(key, "sk_abc"))
		require.Len(t, KeyedFingerprint(key, "sk_abc"), 43)
	})

	t.Run("depends on the key", func(t *testing.T) {
		require.NotEqual(t,
			KeyedFingerprint(key, "sk_abc"),
			KeyedFingerprint([]byte("pepper-two"), "sk_abc"),
		)
	})

	t.Run("depends on the secret", func(t *testing.T) {
		require.NotEqual(t, KeyedFingerprint(key, "sk_abc"), KeyedFingerprint(key, "sk_abd"))
	})

	t.Run("accepts oversized keys", func(t *testing.T) {
		long := make([]byte, 200)
		require.NotPanics(t, func() { _ = KeyedFingerprint(long, "sk_abc") })
	})

	t.Run("constant time comparison", func(t *testing.T) {
		a := KeyedFingerprint(key, "sk_abc")
		require.True(t, EqualFingerprints(a, KeyedFingerprint(key, "sk_abc")))
		require.False(t, EqualFingerprints(a, KeyedFingerprint(key, "sk_xyz")))
	})
}

func TestLoadPepper(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "pepper")

	first, err := LoadPepper(path)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	second, err := LoadPepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second, "pepper must be stable across loads")

	_, err = LoadPepper("")
	require.Error(t, err)
}
