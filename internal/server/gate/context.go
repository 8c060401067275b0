package gate

import (
	"context"

	"github.com/dmitrijs2005/gophgate/internal/server/auth"
)

type ctxKey struct{}

// WithClaims attaches the authenticated identity to ctx.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// ClaimsFromContext returns the identity set by WithClaims.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*auth.Claims)
	return c, ok && c != nil
}
