package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	for _, size := range []int{16, RefreshTokenSize, 64} {
		token, err := GenerateToken(size)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		token2, err := GenerateToken(size)
		require.NoError(t, err)
		require.NotEqual(t, token, token2, "tokens should be unique")
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestFingerprintToken(t *testing.T) {
	fp1a := FingerprintToken("test-token-1")
	fp1b := FingerprintToken("test-token-1")
	fp2 := FingerprintToken("test-token-2")

	require.Equal(t, fp1a, fp1b, "fingerprint should be deterministic")
	require.NotEqual(t, fp1a, fp2)
	require.Len(t, fp1a, 43, "SHA-256 base64url should be 43 chars")
}

func TestNewRefreshToken(t *testing.T) {
	seen := make(map[string]bool, 100)

	for range 100 {
		plain, fp, err := NewRefreshToken()
		require.NoError(t, err)
		require.Len(t, plain, 43)
		require.Equal(t, FingerprintToken(plain), fp)
		require.NotEqual(t, plain, fp)
		require.NotContains(t, seen, plain, "duplicate token generated")
		seen[plain] = true
	}
}
