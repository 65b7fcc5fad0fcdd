package jwtx

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AlgHS256 is the only signing algorithm the service issues.
const AlgHS256 = "HS256"

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Issuer() string
	Audience() []string
	Sign(Claims) (string, error)
}

// HS256Signer signs access tokens with a shared symmetric key.
type HS256Signer struct {
	key      []byte
	issuer   string
	audience []string
}

// NewHS256Signer validates the signing configuration and returns a signer.
// A blank key, issuer or audience is a configuration error: callers are
// expected to fail startup rather than serve requests without one.
func NewHS256Signer(key []byte, issuer, audience string) (*HS256Signer, error) {
	if err := validateConfig(key, issuer, audience); err != nil {
		return nil, err
	}

	return &HS256Signer{
		key:      key,
		issuer:   issuer,
		audience: []string{audience},
	}, nil
}

func (s *HS256Signer) Alg() string        { return AlgHS256 }
func (s *HS256Signer) Issuer() string     { return s.issuer }
func (s *HS256Signer) Audience() []string { return s.audience }

// Sign serialises and signs the claims.
func (s *HS256Signer) Sign(c Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

func validateConfig(key []byte, issuer, audience string) error {
	switch {
	case strings.TrimSpace(string(key)) == "":
		return fmt.Errorf("%w: signing key is not configured", ErrConfiguration)
	case strings.TrimSpace(issuer) == "":
		return fmt.Errorf("%w: issuer is not configured", ErrConfiguration)
	case strings.TrimSpace(audience) == "":
		return fmt.Errorf("%w: audience is not configured", ErrConfiguration)
	}
	return nil
}
