package domain

import "time"

// RefreshToken is the stored record of an opaque refresh token. Only the
// fingerprint is persisted. Rows are never deleted; Revoked only ever goes
// from false to true.
type RefreshToken struct {
	ID        string
	AccountID string
	TokenHash string // base64url SHA-256 of the opaque token
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Usable reports whether the token may still be exchanged at now.
func (t RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// AuthResult is what register, login and refresh hand back to the caller.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Email        string
	Role         string
}
