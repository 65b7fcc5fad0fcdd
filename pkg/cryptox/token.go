package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// RefreshTokenSize is the number of random bytes in a refresh token
// (256 bits, 43 chars base64url).
const RefreshTokenSize = 32

// GenerateToken creates a cryptographically secure random token of the
// given byte length, base64url-encoded without padding.
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

// FingerprintToken returns the SHA-256 of a token, base64url-encoded.
// Only fingerprints are persisted so a leaked database does not leak
// usable refresh tokens.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// NewRefreshToken returns a fresh opaque refresh token and its fingerprint.
func NewRefreshToken() (plain, fingerprint string, err error) {
	plain, err = GenerateToken(RefreshTokenSize)
	if err != nil {
		return "", "", err
	}
	return plain, FingerprintToken(plain), nil
}
