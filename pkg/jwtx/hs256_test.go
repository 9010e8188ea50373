package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestHS256RoundTrip(t *testing.T) {
	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	require.Equal(t, "HS256", signer.Alg())

	verifier, err := jwtx.NewCommonHS256(testSecret, "search-gateway")
	require.NoError(t, err)

	claims := jwtx.NewAdminClaims("ops", []string{"admin:read", "admin:write"}, time.Minute, "search-gateway", time.Now())
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "ops", got.Subject)
	require.Equal(t, []string{"admin:read", "admin:write"}, got.Scopes)
}

func TestHS256Rejections(t *testing.T) {
	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)

	t.Run("short secrets are refused", func(t *testing.T) {
		_, err := jwtx.NewSignerHS256([]byte("short"))
		require.ErrorIs(t, err, jwtx.ErrWeakSecret)

		_, err = jwtx.NewCommonHS256([]byte("short"), "")
		require.ErrorIs(t, err, jwtx.ErrWeakSecret)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewAdminClaims("ops", nil, time.Minute, "", time.Now()))
		require.NoError(t, err)

		other, err := jwtx.NewCommonHS256([]byte(strings.Repeat("x", 32)), "")
		require.NoError(t, err)

		_, err = other.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewAdminClaims("ops", nil, time.Minute, "elsewhere", time.Now()))
		require.NoError(t, err)

		v, err := jwtx.NewCommonHS256(testSecret, "search-gateway")
		require.NoError(t, err)

		_, err = v.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewAdminClaims("ops", nil, time.Minute, "", time.Now().Add(-time.Hour)))
		require.NoError(t, err)

		v, err := jwtx.NewCommonHS256(testSecret, "")
		require.NoError(t, err)

		_, err = v.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		v, err := jwtx.NewCommonHS256(testSecret, "")
		require.NoError(t, err)

		_, err = v.Verify("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}
