package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/todo/pkg/jwtx"
	"github.com/aussiebroadwan/todo/pkg/slogx"
)

// AuthnMiddleware requires a valid bearer access token. Verification is
// stateless: signature, issuer, audience and the exp/nbf window only.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := bearerToken(r)
			if !ok {
				writeBearerError(w, "Missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(ctx).Info("access token rejected", "err", err)
				writeBearerError(w, "Invalid or expired access token")
				return
			}

			ctx = WithPrincipal(ctx, Principal{
				AccountID: claims.Subject,
				Email:     claims.Email,
				Role:      claims.Role,
			})
			ctx = slogx.WithAccount(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// writeBearerError answers 401 with an RFC 6750 challenge and the standard
// error envelope.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, desc)
}
