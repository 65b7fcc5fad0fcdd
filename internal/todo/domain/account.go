package domain

import "time"

// Role names carried in access tokens.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// Account is a registered login identity.
type Account struct {
	ID           string
	Email        string
	PasswordHash string // argon2id PHC string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
