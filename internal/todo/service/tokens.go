package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/todo/internal/todo/domain"
	"github.com/aussiebroadwan/todo/pkg/cryptox"
	"github.com/aussiebroadwan/todo/pkg/idx"
	"github.com/aussiebroadwan/todo/pkg/jwtx"
)

// TokenIssuer mints the two halves of a session: a signed access token
// and an opaque refresh token record.
type TokenIssuer struct {
	Signer     jwtx.Signer
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewTokenIssuer fills zero TTLs with the package defaults (1h / 7d).
func NewTokenIssuer(signer jwtx.Signer, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTokenTTL
	}
	return &TokenIssuer{Signer: signer, AccessTTL: accessTTL, RefreshTTL: refreshTTL}
}

// IssueAccessToken signs an access token for a, valid from now for AccessTTL.
func (i *TokenIssuer) IssueAccessToken(a domain.Account, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(
		a.ID,
		a.Email,
		a.Role,
		i.AccessTTL,
		i.Signer.Issuer(),
		i.Signer.Audience(),
		now,
	)

	token, err := i.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// IssueRefreshToken returns the opaque token for the client and the record
// to persist. The record only carries the fingerprint.
func (i *TokenIssuer) IssueRefreshToken(accountID string, now time.Time) (string, domain.RefreshToken, error) {
	plain, fingerprint, err := cryptox.NewRefreshToken()
	if err != nil {
		return "", domain.RefreshToken{}, fmt.Errorf("generate refresh token: %w", err)
	}

	return plain, domain.RefreshToken{
		ID:        idx.NewAt(now).String(),
		AccountID: accountID,
		TokenHash: fingerprint,
		ExpiresAt: now.Add(i.RefreshTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
