package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Token size constants (in bytes before encoding).
const (
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// GenerateToken creates a cryptographically secure random token of the specified byte length.
// The token is returned as a base64url-encoded string (URL-safe, no padding).
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// KeyedFingerprint returns a keyed BLAKE2b-256 fingerprint of secret. API
// keys are stored by this value so that a leaked database can't be used to
// test guesses without the key (pepper) as well.
//
// Keys longer than 64 bytes are first reduced with SHA-256.
func KeyedFingerprint(key []byte, secret string) string {
	if len(key) > blake2b.Size {
		sum := sha256.Sum256(key)
		key = sum[:]
	}

	h, err := blake2b.New256(key)
	if err != nil {
		// Only possible for keys > 64 bytes which we reduced above.
		panic(fmt.Sprintf("cryptox: blake2b: %v", err))
	}
	_, _ = h.Write([]byte(secret))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// EqualFingerprints compares two fingerprints in constant time.
func EqualFingerprints(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
