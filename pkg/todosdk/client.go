package todosdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Auth endpoint paths. Requests to these never trigger refresh-and-retry.
const (
	PathRegister     = "/auth/register"
	PathLogin        = "/auth/login"
	PathRefreshToken = "/auth/refresh-token"
	PathLogout       = "/auth/logout"
)

// Client talks to the to-do API. It performs unauthenticated calls and
// creates Sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client with a 10 second request timeout. The timeout
// also bounds a shared refresh that every waiting request depends on.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account and returns a signed-in session.
func (c *Client) Register(ctx context.Context, email, password string) (*Session, error) {
	var res AuthResponse
	if err := c.call(ctx, http.MethodPost, PathRegister, Credentials{Email: email, Password: password}, &res, ""); err != nil {
		return nil, err
	}
	s := newSession(c)
	s.apply(res)
	return s, nil
}

// Login signs in with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var res AuthResponse
	if err := c.call(ctx, http.MethodPost, PathLogin, Credentials{Email: email, Password: password}, &res, ""); err != nil {
		return nil, err
	}
	s := newSession(c)
	s.apply(res)
	return s, nil
}

// RestoreSession rebuilds a session from previously persisted tokens. The
// user projection is read from the access token payload without verifying
// it; the server stays the authority.
func (c *Client) RestoreSession(accessToken, refreshToken string) *Session {
	s := newSession(c)
	s.mu.Lock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
	s.user = userFromToken(accessToken, "", "")
	s.mu.Unlock()
	return s
}

// RefreshToken exchanges a refresh token for a new pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var res AuthResponse
	if err := c.call(ctx, http.MethodPost, PathRefreshToken, RefreshRequest{RefreshToken: refreshToken}, &res, ""); err != nil {
		return nil, err
	}
	return &res, nil
}

// RevokeToken revokes a refresh token on the server.
func (c *Client) RevokeToken(ctx context.Context, refreshToken string) error {
	return c.call(ctx, http.MethodPost, PathLogout, RefreshRequest{RefreshToken: refreshToken}, nil, "")
}

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.call(ctx, http.MethodGet, "/livez", nil, &health, ""); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks if the service is ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.call(ctx, http.MethodGet, "/readyz", nil, &health, ""); err != nil {
		return nil, err
	}
	return &health, nil
}

func isAuthPath(path string) bool {
	switch path {
	case PathRegister, PathLogin, PathRefreshToken, PathLogout:
		return true
	}
	return false
}
