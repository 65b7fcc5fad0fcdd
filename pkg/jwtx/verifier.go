package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrConfiguration = errors.New("jwtx: invalid configuration")

	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HS256Verifier checks signature, issuer, audience and the exp/nbf window.
// Verification is stateless: there is no revocation list.
type HS256Verifier struct {
	key      []byte
	issuer   string
	audience string

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// Now overrides the verification clock. Nil means time.Now.
	Now func() time.Time
}

// NewHS256Verifier returns a verifier for tokens produced by an HS256Signer
// with the same configuration.
func NewHS256Verifier(key []byte, issuer, audience string) (*HS256Verifier, error) {
	if err := validateConfig(key, issuer, audience); err != nil {
		return nil, err
	}

	return &HS256Verifier{
		key:      key,
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Verify parses the token and validates it. Errors are mapped onto the
// package sentinels so callers can match on them with errors.Is.
func (v *HS256Verifier) Verify(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{AlgHS256}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.Leeway),
		jwt.WithTimeFunc(v.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != AlgHS256 {
			return nil, ErrAlgMismatch
		}
		return v.key, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidClaim)
	}

	return claims, nil
}

func (v *HS256Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudience
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}

// DecodeUnverified reads the claims of a token without checking the
// signature. Only for clients displaying their own token contents; never
// use it to make authorization decisions.
func DecodeUnverified(token string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, ErrMalformed
	}
	return claims, nil
}
