package service

import (
	"context"
	"errors"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/cryptox"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/idx"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrCredentialRevoked  = errors.New("credential is revoked")
	ErrNoScopes           = errors.New("at least one scope is required")
)

type NewCredential struct {
	Name        string
	TenantID    string
	SubTenantID string
	Scopes      []string
	Limits      domain.Limits
	ExpiresAt   *time.Time
}

// CredentialService is the administrative side of API keys. Credentials are
// never deleted, only revoked or expired.
type CredentialService struct {
	Store  store.Store
	Pepper []byte
	Now    func() time.Time
}

func (s *CredentialService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateCredential issues a new API key. The returned secret is the only
// time the raw key is available.
func (s *CredentialService) CreateCredential(ctx context.Context, in NewCredential) (domain.Credential, string, error) {
	l := slogx.FromContext(ctx)

	if len(in.Scopes) == 0 {
		return domain.Credential{}, "", ErrNoScopes
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		l.Error("failed to generate api key", "error", err)
		return domain.Credential{}, "", err
	}
	secret := idx.PrefixSecret + "_" + token

	now := s.now().UTC()
	cred := domain.Credential{
		ID:          idx.NewPrefixed(idx.PrefixCredential),
		Name:        in.Name,
		SecretHash:  cryptox.KeyedFingerprint(s.Pepper, secret),
		TenantID:    in.TenantID,
		SubTenantID: in.SubTenantID,
		Scopes:      in.Scopes,
		Limits:      in.Limits,
		Status:      domain.CredentialActive,
		ExpiresAt:   in.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Credentials().CreateCredential(ctx, cred); err != nil {
		l.Error("failed to create credential", "error", err)
		return domain.Credential{}, "", err
	}

	l.Info("credential created", "credential_id", cred.ID, "tenant_id", cred.TenantID, "scopes", cred.Scopes)
	return cred, secret, nil
}

func (s *CredentialService) ListCredentials(ctx context.Context, tenantID string) ([]domain.Credential, error) {
	return s.Store.Credentials().ListCredentials(ctx, tenantID)
}

func (s *CredentialService) GetCredential(ctx context.Context, id string) (domain.Credential, error) {
	cred, err := s.Store.Credentials().GetCredentialByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Credential{}, ErrCredentialNotFound
	}
	return cred, err
}

// RevokeCredential permanently disables a credential. Revoking twice is
// not an error.
func (s *CredentialService) RevokeCredential(ctx context.Context, id string) error {
	err := s.Store.Credentials().UpdateCredentialStatus(ctx, id, domain.CredentialRevoked)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCredentialNotFound
	}
	if err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("credential revoked", "credential_id", id)
	return nil
}

// SetExpiry sets or, with nil, clears the expiry of an active credential.
func (s *CredentialService) SetExpiry(ctx context.Context, id string, expiresAt *time.Time) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		cred, err := tx.Credentials().GetCredentialByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrCredentialNotFound
		}
		if err != nil {
			return err
		}
		if !cred.IsActive() {
			return ErrCredentialRevoked
		}
		if err := tx.Credentials().UpdateCredentialExpiry(ctx, id, expiresAt); err != nil {
			return err
		}
		slogx.FromContext(ctx).Info("credential expiry updated", "credential_id", id, "expires_at", expiresAt)
		return nil
	})
}
