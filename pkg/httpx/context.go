package httpx

import "context"

// Principal is the authenticated caller as asserted by a verified access token.
type Principal struct {
	AccountID string
	Email     string
	Role      string
}

type ctxKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext returns the caller attached by AuthnMiddleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok && p.AccountID != ""
}

// AccountIDFromContext returns the authenticated account id or "".
func AccountIDFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.AccountID
}
