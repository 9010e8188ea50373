package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Verifier validates JWTs signed with a shared HMAC secret.
type HS256Verifier struct {
	secret []byte
	issuer string
}

// NewVerifierHS256 creates a verifier for tokens signed by HS256Signer.
func NewVerifierHS256(secret []byte, issuer string) (*HS256Verifier, error) {
	if len(secret) < MinHMACSecretLength {
		return nil, ErrWeakSecret
	}
	return &HS256Verifier{secret: secret, issuer: issuer}, nil
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *HS256Verifier) Verify(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSig
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrNotYetValid
		}
		return nil, fmt.Errorf("jwtx: parse or verify: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("jwtx: invalid token claims")
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return nil, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return nil, err
	}

	return claims, nil
}
