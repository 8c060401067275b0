package httpapi

import (
	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/gate"
	"github.com/dmitrijs2005/gophgate/internal/server/metrics"
	"github.com/gin-gonic/gin"
)

const claimsKey = "gate_claims"

// RequireAuth runs the authentication gate on the Authorization header and
// stores the claims on both the gin context and the request context.
func RequireAuth(a *gate.Authenticator, rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		claims, err := a.Authenticate(ctx, c.GetHeader(common.AuthorizationHeaderName))
		if err != nil {
			r := gate.RejectionFor(err)
			rec.Decision(ctx, "http", "authenticate", r.Code)
			abortWith(c, r)
			return
		}
		rec.Decision(ctx, "http", "authenticate", "allowed")

		c.Request = c.Request.WithContext(gate.WithClaims(ctx, claims))
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole runs the authorization gate. It must follow RequireAuth;
// without it every request is rejected as unauthenticated.
func RequireRole(rec *metrics.Recorder, roles ...auth.Role) gin.HandlerFunc {
	allowed := append([]auth.Role(nil), roles...)
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := gate.Authorize(ctx, allowed...); err != nil {
			r := gate.RejectionFor(err)
			rec.Decision(ctx, "http", "authorize", r.Code)
			abortWith(c, r)
			return
		}
		rec.Decision(ctx, "http", "authorize", "allowed")
		c.Next()
	}
}

// GetClaims returns the identity stored by RequireAuth.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func abortWith(c *gin.Context, r gate.Rejection) {
	c.AbortWithStatusJSON(r.HTTPStatus, errorBody{Error: r.Code, Message: r.Message})
}
