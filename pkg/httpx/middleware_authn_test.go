package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/todo/pkg/httpx"
	"github.com/aussiebroadwan/todo/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestAuthnMiddleware(t *testing.T) {
	key := []byte("test-signing-key-test-signing-key")
	signer, err := jwtx.NewHS256Signer(key, "todo-api", "todo-web")
	require.NoError(t, err)
	verifier, err := jwtx.NewHS256Verifier(key, "todo-api", "todo-web")
	require.NoError(t, err)

	var got httpx.Principal
	h := httpx.AuthnMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = httpx.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	sign := func(ttl time.Duration, issued time.Time) string {
		tok, err := signer.Sign(jwtx.NewAccessClaims("acc-1", "a@b.com", "User", ttl, "todo-api", []string{"todo-web"}, issued))
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"valid token", "Bearer " + sign(time.Hour, time.Now()), http.StatusOK},
		{"lowercase scheme", "bearer " + sign(time.Hour, time.Now()), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer   ", http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"expired token", "Bearer " + sign(time.Hour, time.Now().Add(-2*time.Hour)), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = httpx.Principal{}
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				require.Equal(t, httpx.Principal{AccountID: "acc-1", Email: "a@b.com", Role: "User"}, got)
				return
			}

			require.Contains(t, rec.Header().Get("WWW-Authenticate"), `Bearer error="invalid_token"`)
			var body httpx.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotEmpty(t, body.Error)
		})
	}
}
