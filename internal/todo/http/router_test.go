package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	todohttp "github.com/aussiebroadwan/todo/internal/todo/http"
	"github.com/aussiebroadwan/todo/internal/todo/service"
	"github.com/aussiebroadwan/todo/internal/todo/store/drivers/sqlite"
	"github.com/aussiebroadwan/todo/pkg/cryptox"
	"github.com/aussiebroadwan/todo/pkg/httpx"
	"github.com/aussiebroadwan/todo/pkg/jwtx"
	"github.com/aussiebroadwan/todo/pkg/todosdk"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("router-test-signing-key-0123456789")

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type server struct {
	*httptest.Server
	store        *sqlite.Store
	clock        *clock
	refreshCalls atomic.Int32
}

func newServer(t *testing.T) *server {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "todo.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewHS256Signer(testKey, "todo-api", "todo-web")
	require.NoError(t, err)
	verifier, err := jwtx.NewHS256Verifier(testKey, "todo-api", "todo-web")
	require.NoError(t, err)

	c := &clock{t: time.Now().UTC().Truncate(time.Second)}
	verifier.Now = c.Now

	hasher := cryptox.NewPasswordHasher("pepper").WithParams(cryptox.Params{
		Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16,
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := todohttp.NewRouter(verifier, "test", st, logger, []string{"http://localhost:5173"})
	router.AuthService = &service.AuthService{
		Store:       st,
		Credentials: hasher,
		Tokens:      service.NewTokenIssuer(signer, 0, 0),
		Now:         c.Now,
	}
	router.TaskService = &service.TaskService{Store: st, Now: c.Now}
	router.AuthLimit = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
	router.ApplyRoutes()

	s := &server{store: st, clock: c}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == todosdk.PathRefreshToken {
			s.refreshCalls.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *server) do(t *testing.T, method, path string, body any, bearer string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v))
	return v
}

func requireError(t *testing.T, resp *http.Response, body []byte, code int, msg string) {
	t.Helper()
	require.Equal(t, code, resp.StatusCode, string(body))
	require.Equal(t, msg, decode[todosdk.ErrorResponse](t, body).Error)
}

func TestAuthEndpoints(t *testing.T) {
	s := newServer(t)
	creds := todosdk.Credentials{Email: "ada@example.com", Password: "hunter22"}

	resp, body := s.do(t, http.MethodPost, "/auth/register", creds, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	registered := decode[todosdk.AuthResponse](t, body)
	require.NotEmpty(t, registered.AccessToken)
	require.NotEmpty(t, registered.RefreshToken)
	require.Equal(t, "User", registered.Role)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	resp, body = s.do(t, http.MethodPost, "/auth/register", creds, "")
	requireError(t, resp, body, http.StatusBadRequest, "Email already exists")

	resp, body = s.do(t, http.MethodPost, "/auth/login", todosdk.Credentials{Email: creds.Email, Password: "nope"}, "")
	requireError(t, resp, body, http.StatusUnauthorized, "Invalid credentials")

	resp, body = s.do(t, http.MethodPost, "/auth/login", todosdk.Credentials{Email: "who@example.com", Password: "nope"}, "")
	requireError(t, resp, body, http.StatusUnauthorized, "Invalid credentials")

	resp, body = s.do(t, http.MethodPost, "/auth/refresh-token", todosdk.RefreshRequest{RefreshToken: registered.RefreshToken}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	rotated := decode[todosdk.AuthResponse](t, body)
	require.NotEqual(t, registered.RefreshToken, rotated.RefreshToken)

	resp, body = s.do(t, http.MethodPost, "/auth/refresh-token", todosdk.RefreshRequest{RefreshToken: registered.RefreshToken}, "")
	requireError(t, resp, body, http.StatusUnauthorized, "Invalid or expired refresh token")

	resp, body = s.do(t, http.MethodPost, "/auth/refresh-token", todosdk.RefreshRequest{RefreshToken: "never-issued"}, "")
	requireError(t, resp, body, http.StatusNotFound, "Refresh token not found")

	resp, body = s.do(t, http.MethodPost, "/auth/refresh-token", todosdk.RefreshRequest{}, "")
	requireError(t, resp, body, http.StatusBadRequest, "Refresh token is required")

	for range 2 {
		resp, _ = s.do(t, http.MethodPost, "/auth/logout", todosdk.RefreshRequest{RefreshToken: rotated.RefreshToken}, "")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	resp, body = s.do(t, http.MethodPost, "/auth/logout", todosdk.RefreshRequest{RefreshToken: "never-issued"}, "")
	requireError(t, resp, body, http.StatusNotFound, "Refresh token not found")

	// Logout leaves the access token usable until it expires.
	resp, body = s.do(t, http.MethodGet, "/auth/me", nil, rotated.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	me := decode[todosdk.User](t, body)
	require.Equal(t, creds.Email, me.Email)
	require.NotEmpty(t, me.ID)
}

func TestMalformedBodies(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/auth/register", "/auth/login", "/auth/refresh-token", "/auth/logout"} {
		req, err := http.NewRequest(http.MethodPost, s.URL+path, bytes.NewReader([]byte("{not json")))
		require.NoError(t, err)
		resp, err := s.Client().Do(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		requireError(t, resp, body, http.StatusBadRequest, "Invalid request body")
	}
}

func TestBearerRequired(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		bearer string
		msg    string
	}{
		{"missing", "", "Missing bearer token"},
		{"garbage", "not-a-jwt", "Invalid or expired access token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.do(t, http.MethodGet, "/tasks", nil, tt.bearer)
			requireError(t, resp, body, http.StatusUnauthorized, tt.msg)
			require.Contains(t, resp.Header.Get("WWW-Authenticate"), `Bearer error="invalid_token"`)
		})
	}
}

func TestAccessTokenLifetime(t *testing.T) {
	s := newServer(t)

	resp, body := s.do(t, http.MethodPost, "/auth/register", todosdk.Credentials{Email: "a@b.c", Password: "pw"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	access := decode[todosdk.AuthResponse](t, body).AccessToken

	s.clock.Advance(59 * time.Minute)
	resp, _ = s.do(t, http.MethodGet, "/auth/me", nil, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	s.clock.Advance(2 * time.Minute)
	resp, _ = s.do(t, http.MethodGet, "/auth/me", nil, access)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTaskEndpoints(t *testing.T) {
	s := newServer(t)

	resp, body := s.do(t, http.MethodPost, "/auth/register", todosdk.Credentials{Email: "a@b.c", Password: "pw"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	access := decode[todosdk.AuthResponse](t, body).AccessToken

	resp, body = s.do(t, http.MethodPost, "/tasks", todosdk.CreateTaskRequest{Title: "Buy milk"}, access)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[todosdk.Task](t, body)
	require.Equal(t, "Buy milk", created.Title)
	require.False(t, created.IsComplete)
	require.Equal(t, "/tasks/"+created.ID, resp.Header.Get("Location"))

	resp, body = s.do(t, http.MethodPost, "/tasks", todosdk.CreateTaskRequest{Title: "BUY MILK"}, access)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = s.do(t, http.MethodPost, "/tasks", todosdk.CreateTaskRequest{Title: "ab"}, access)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = s.do(t, http.MethodGet, "/tasks", nil, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decode[[]todosdk.Task](t, body), 1)

	resp, body = s.do(t, http.MethodPut, "/tasks/"+created.ID+"/toggle", nil, access)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.True(t, decode[todosdk.Task](t, body).IsComplete)

	resp, body = s.do(t, http.MethodGet, "/tasks/"+created.ID, nil, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, decode[todosdk.Task](t, body).IsComplete)

	resp, _ = s.do(t, http.MethodDelete, "/tasks/"+created.ID, nil, access)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/tasks/"+created.ID, nil, access)
	requireError(t, resp, body, http.StatusNotFound, "Task not found")

	resp, body = s.do(t, http.MethodGet, "/tasks", nil, access)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "[]\n", string(body))
}

func TestHealthEndpoints(t *testing.T) {
	s := newServer(t)

	resp, body := s.do(t, http.MethodGet, "/livez", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "test", decode[todosdk.HealthResponse](t, body).Version)

	resp, body = s.do(t, http.MethodGet, "/readyz", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", decode[todosdk.HealthResponse](t, body).Checks.Database)

	require.NoError(t, s.store.Close())
	resp, body = s.do(t, http.MethodGet, "/readyz", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, "degraded", decode[todosdk.HealthResponse](t, body).Status)
}

func TestCORSPreflight(t *testing.T) {
	s := newServer(t)

	req, err := http.NewRequest(http.MethodOptions, s.URL+"/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

// TestSDKRefreshAgainstServer drives the real server with the SDK: after the
// access token expires, concurrent requests share one rotation.
func TestSDKRefreshAgainstServer(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	session, err := todosdk.NewClient(s.URL).Register(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", session.User().Email)

	_, err = session.CreateTask(ctx, "Write tests")
	require.NoError(t, err)

	oldRefresh := session.RefreshToken()
	s.clock.Advance(2 * time.Hour)

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := session.ListTasks(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), s.refreshCalls.Load())
	require.NotEqual(t, oldRefresh, session.RefreshToken())

	require.NoError(t, session.Logout(ctx))
	require.False(t, session.IsAuthenticated())

	// The revoked token cannot be rotated again.
	_, err = todosdk.NewClient(s.URL).RefreshToken(ctx, oldRefresh)
	var apiErr *todosdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
