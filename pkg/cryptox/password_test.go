package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// cheapParams keep the suite fast; verification reads params from the hash.
var cheapParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}

func newTestHasher(pepper string) *PasswordHasher {
	return NewPasswordHasher(pepper).WithParams(cheapParams)
}

func TestHashPassword(t *testing.T) {
	h := newTestHasher("pepper")

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"), "hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6)
			require.Equal(t, "m=1024,t=1,p=1", parts[3])
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "key should not be empty")

			require.NoError(t, h.Verify(tt.password, hash))
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	h := newTestHasher("pepper")

	hash1, err := h.Hash("samepassword")
	require.NoError(t, err)
	hash2, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.NoError(t, h.Verify("samepassword", hash1))
	require.NoError(t, h.Verify("samepassword", hash2))
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	h := newTestHasher("pepper")
	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"",
		strings.Repeat("x", 10000),
	} {
		require.ErrorIs(t, h.Verify(wrong, hash), ErrPasswordMismatch)
	}
}

func TestVerifyPassword_PepperMatters(t *testing.T) {
	hash, err := newTestHasher("pepper-a").Hash("secret")
	require.NoError(t, err)

	require.NoError(t, newTestHasher("pepper-a").Verify("secret", hash))
	require.ErrorIs(t, newTestHasher("pepper-b").Verify("secret", hash), ErrPasswordMismatch)
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	h := newTestHasher("pepper")

	tests := []struct {
		name        string
		invalidHash string
	}{
		{"empty hash", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing version", "$argon2id$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, h.Verify("password", tt.invalidHash), ErrInvalidHash)
		})
	}
}

func TestDefaultParams(t *testing.T) {
	hash, err := NewPasswordHasher("pepper").Hash("pw")
	require.NoError(t, err)
	require.Contains(t, hash, "$m=19456,t=2,p=1$")
}
