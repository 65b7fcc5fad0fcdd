package todosdk

import "time"

// ============================================================================
// Auth Types
// ============================================================================

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid credentials"`
}

// Credentials is the body of the register and login endpoints.
type Credentials struct {
	Email    string `json:"email" example:"ada@example.com"`
	Password string `json:"password" example:"correct horse battery staple"`
}

// RefreshRequest is the body of the refresh-token and logout endpoints.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" example:"3q2-7wEXAMPLEr1Xn0RZ4kD9dOaVtYw8vJ2sQpLmNc"`
}

// AuthResponse is returned by register, login and refresh-token.
type AuthResponse struct {
	// AccessToken is the HS256 JWT sent as a bearer credential.
	AccessToken string `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`

	// RefreshToken is the opaque single-use token for POST /auth/refresh-token.
	RefreshToken string `json:"refreshToken" example:"3q2-7wEXAMPLEr1Xn0RZ4kD9dOaVtYw8vJ2sQpLmNc"`

	Email string `json:"email" example:"ada@example.com"`
	Role  string `json:"role" example:"User"`
}

// User is the projection of the signed-in account.
type User struct {
	ID    string `json:"id" example:"01JA2Q0Z6W9X4V7S3K1M5N8P2R"`
	Email string `json:"email" example:"ada@example.com"`
	Role  string `json:"role" example:"User"`
}

// ============================================================================
// Task Types
// ============================================================================

// Task is a to-do item.
type Task struct {
	ID         string    `json:"id" example:"01JA2Q0Z6W9X4V7S3K1M5N8P2R"`
	Title      string    `json:"title" example:"Buy milk"`
	IsComplete bool      `json:"isComplete"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title string `json:"title" example:"Buy milk"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database" example:"ok"`
}
