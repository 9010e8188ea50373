package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAdminTokenTTL is the lifetime used by the admin token tool when no
// TTL is given. Admin tokens are handed to operators, so keep them short.
const DefaultAdminTokenTTL = 1 * time.Hour

// Claims are admin-token claims used by the gateway's management API.
type Claims struct {
	jwt.RegisteredClaims

	// Permission Scopes "admin:read", "admin:write"
	Scopes []string `json:"scopes,omitempty"`
}

// NewAdminClaims builds minimally-correct claims for an operator token.
func NewAdminClaims(
	subject string,
	scopes []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Scopes: scopes,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// HasScope reports whether the claims carry scope exactly.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
