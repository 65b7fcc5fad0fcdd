package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes. Access tokens are short-lived bearer credentials,
// refresh tokens are the long-lived opaque secret used to renew them.
const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims are the access-token claims shared by the API and the SDK.
type Claims struct {
	jwt.RegisteredClaims

	// Email is the login identity of the subject.
	Email string `json:"email,omitempty"`

	// Role is the subject's role ("User" or "Admin").
	Role string `json:"role,omitempty"`
}

// NewAccessClaims builds minimally-correct claims.
func NewAccessClaims(
	subject, email, role string,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email: email,
		Role:  role,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
