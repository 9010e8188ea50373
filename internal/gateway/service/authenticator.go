package service

import (
	"context"
	"errors"
	"time"

	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/domain"
	"github.com/lozadatravelagent/whole-sale-sub002/internal/gateway/store"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/cryptox"
	"github.com/lozadatravelagent/whole-sale-sub002/pkg/slogx"
)

// Authenticator resolves a raw API key to its credential. Raw keys are
// never stored; the lookup is by keyed fingerprint.
type Authenticator struct {
	Credentials store.Credentials
	Pepper      []byte
	Now         func() time.Time
}

func (a *Authenticator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Fingerprint is the stored form of a raw secret.
func (a *Authenticator) Fingerprint(raw string) string {
	return cryptox.KeyedFingerprint(a.Pepper, raw)
}

// Authenticate returns the active, unexpired credential for raw.
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (domain.Credential, error) {
	if raw == "" {
		return domain.Credential{}, ErrMissingCredential
	}

	hash := a.Fingerprint(raw)
	cred, err := a.Credentials.GetCredentialBySecretHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Credential{}, ErrInvalidCredential
		}
		slogx.FromContext(ctx).Error("credential lookup failed", "error", err)
		return domain.Credential{}, withCause(ErrInternal, err)
	}
	if !cryptox.EqualFingerprints(hash, cred.SecretHash) {
		return domain.Credential{}, ErrInvalidCredential
	}

	if !cred.IsActive() {
		return domain.Credential{}, ErrInactiveCredential
	}
	if cred.IsExpired(a.now()) {
		return domain.Credential{}, ErrExpiredCredential
	}
	return cred, nil
}

// CheckScope reports whether cred may use required, honouring "*" suffix
// grants.
func (a *Authenticator) CheckScope(cred domain.Credential, required string) bool {
	return cred.HasScope(required)
}

// TouchUsage records a successful use of the credential.
func (a *Authenticator) TouchUsage(ctx context.Context, credentialID string) error {
	return a.Credentials.TouchCredentialUsage(ctx, credentialID, a.now())
}
