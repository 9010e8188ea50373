package domain

import (
	"strings"
	"time"
)

type CredentialStatus string

const (
	CredentialActive  CredentialStatus = "active"
	CredentialRevoked CredentialStatus = "revoked"
)

// ScopeWildcard is the suffix that turns a granted scope into a prefix grant,
// e.g. "search:*" covers "search:flights".
const ScopeWildcard = "*"

// Limits holds the per-window ceilings of a credential. A value <= 0 means
// the window is not enforced.
type Limits struct {
	PerMinute int64
	PerHour   int64
	PerDay    int64
}

// For returns the ceiling configured for w.
func (l Limits) For(w RateWindow) int64 {
	switch w {
	case WindowMinute:
		return l.PerMinute
	case WindowHour:
		return l.PerHour
	case WindowDay:
		return l.PerDay
	default:
		return 0
	}
}

// Credential is an API key issued to a tenant. Only the keyed fingerprint of
// the secret is ever stored.
type Credential struct {
	ID          string
	Name        string
	SecretHash  string
	TenantID    string
	SubTenantID string
	Scopes      []string
	Limits      Limits
	Status      CredentialStatus
	ExpiresAt   *time.Time
	LastUsedAt  *time.Time
	UsageCount  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c Credential) IsActive() bool { return c.Status == CredentialActive }

// IsExpired reports whether the credential has an expiry at or before now.
func (c Credential) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// HasScope reports whether the credential was granted required, either
// exactly or through a wildcard entry such as "search:*".
func (c Credential) HasScope(required string) bool {
	for _, granted := range c.Scopes {
		if granted == required {
			return true
		}
		if prefix, ok := strings.CutSuffix(granted, ScopeWildcard); ok && strings.HasPrefix(required, prefix) {
			return true
		}
	}
	return false
}
