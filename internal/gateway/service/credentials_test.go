package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestCredentialService(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	svc := h.creds
	auth := h.gateway.Auth

	cred, secret, err := svc.CreateCredential(ctx, NewCredential{
		Name:        "agency portal",
		TenantID:    "tenant-a",
		SubTenantID: "branch-1",
		Scopes:      []string{"search:flights"},
		Limits:      domain.Limits{PerMinute: 10},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(secret, "sk_"))
	require.True(t, strings.HasPrefix(cred.ID, "cred_"))
	require.Equal(t, cryptox.KeyedFingerprint(testPepper, secret), cred.SecretHash)
	require.NotContains(t, cred.SecretHash, secret)

	got, err := auth.Authenticate(ctx, secret)
	require.NoError(t, err)
	require.Equal(t, cred.ID, got.ID)
	require.Equal(t, "branch-1", got.SubTenantID)

	t.Run("scopes are required", func(t *testing.T) {
		_, _, err := svc.CreateCredential(ctx, NewCredential{Name: "empty", TenantID: "tenant-a"})
		require.ErrorIs(t, err, ErrNoScopes)
	})

	t.Run("list by tenant", func(t *testing.T) {
		_, _, err := svc.CreateCredential(ctx, NewCredential{Name: "other", TenantID: "tenant-b", Scopes: []string{"search:*"}})
		require.NoError(t, err)

		list, err := svc.ListCredentials(ctx, "tenant-a")
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, cred.ID, list[0].ID)

		all, err := svc.ListCredentials(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 2)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := svc.GetCredential(ctx, "cred_missing")
		require.ErrorIs(t, err, ErrCredentialNotFound)
	})

	t.Run("expiry can be set and cleared", func(t *testing.T) {
		soon := h.clock.Now().Add(time.Hour)
		require.NoError(t, svc.SetExpiry(ctx, cred.ID, &soon))

		got, err := svc.GetCredential(ctx, cred.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ExpiresAt)
		require.True(t, got.ExpiresAt.Equal(soon))

		h.clock.Advance(time.Hour)
		_, err = auth.Authenticate(ctx, secret)
		require.ErrorIs(t, err, ErrExpiredCredential)

		require.NoError(t, svc.SetExpiry(ctx, cred.ID, nil))
		_, err = auth.Authenticate(ctx, secret)
		require.NoError(t, err)
	})

	t.Run("revoke", func(t *testing.T) {
		require.NoError(t, svc.RevokeCredential(ctx, cred.ID))
		require.NoError(t, svc.RevokeCredential(ctx, cred.ID))

		_, err := auth.Authenticate(ctx, secret)
		require.ErrorIs(t, err, ErrInactiveCredential)

		require.ErrorIs(t, svc.SetExpiry(ctx, cred.ID, nil), ErrCredentialRevoked)
		require.ErrorIs(t, svc.RevokeCredential(ctx, "cred_missing"), ErrCredentialNotFound)
	})
}

func TestAuthenticator(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	auth := h.gateway.Auth

	_, err := auth.Authenticate(ctx, "")
	require.ErrorIs(t, err, ErrMissingCredential)

	_, err = auth.Authenticate(ctx, "sk_unknown")
	require.ErrorIs(t, err, ErrInvalidCredential)

	t.Run("pepper is part of the fingerprint", func(t *testing.T) {
		_, secret := h.issue(t, []string{"search:flights"}, generous)
		other := &Authenticator{Credentials: h.store.Credentials(), Pepper: []byte("another-pepper"), Now: h.clock.Now}
		_, err := other.Authenticate(ctx, secret)
		require.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("wildcard scopes", func(t *testing.T) {
		cred := domain.Credential{Scopes: []string{"search:*"}}
		require.True(t, auth.CheckScope(cred, domain.SearchFlights.Scope()))
		require.True(t, auth.CheckScope(cred, domain.SearchHotels.Scope()))
		require.False(t, auth.CheckScope(cred, "admin:write"))

		exact := domain.Credential{Scopes: []string{"search:flights"}}
		require.True(t, auth.CheckScope(exact, "search:flights"))
		require.False(t, auth.CheckScope(exact, "search:flights:premium"))
		require.False(t, auth.CheckScope(exact, "search:hotels"))
	})

	t.Run("touch usage", func(t *testing.T) {
		cred, _ := h.issue(t, []string{"search:flights"}, generous)
		require.NoError(t, auth.TouchUsage(ctx, cred.ID))
		require.NoError(t, auth.TouchUsage(ctx, cred.ID))

		got, err := h.store.Credentials().GetCredentialByID(ctx, cred.ID)
		require.NoError(t, err)
		require.EqualValues(t, 2, got.UsageCount)
		require.True(t, got.LastUsedAt.Equal(t0))
	})
}
