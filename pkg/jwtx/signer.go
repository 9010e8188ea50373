package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// MinHMACSecretLength is the shortest shared secret we accept for HS256.
const MinHMACSecretLength = 32

// HS256Signer signs admin tokens with a shared secret.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 creates an HS256 signer. The secret must be at least
// MinHMACSecretLength bytes.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinHMACSecretLength {
		return nil, ErrWeakSecret
	}
	return &HS256Signer{secret: secret}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}
