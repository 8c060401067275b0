// Package gate decides, per request, who the caller is (authentication) and
// whether their role may perform the operation (authorization). It is
// transport-neutral; the HTTP and gRPC layers adapt it.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
)

// Verifier validates a bearer token; *auth.TokenManager implements it.
type Verifier interface {
	Configured() bool
	Verify(token string) (*auth.Claims, error)
}

// Authenticator turns an Authorization header value into claims.
type Authenticator struct {
	verifier Verifier
	logger   logging.Logger
}

func NewAuthenticator(v Verifier, logger logging.Logger) *Authenticator {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Authenticator{verifier: v, logger: logger.With("module", "gate")}
}

// BearerToken extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// Authenticate returns the verified claims for header or one of
// common.ErrorMissingCredential, common.ErrorExpiredCredential,
// common.ErrorInvalidCredential and common.ErrorConfiguration.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*auth.Claims, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, common.ErrorMissingCredential
	}
	if a.verifier == nil || !a.verifier.Configured() {
		a.logger.Error(ctx, "token verifier has no signing secret")
		return nil, fmt.Errorf("%w: token verifier has no signing secret", common.ErrorConfiguration)
	}

	claims, err := a.verifier.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			return nil, common.ErrorExpiredCredential
		case errors.Is(err, common.ErrorConfiguration):
			return nil, err
		}
		a.logger.Debug(ctx, "token rejected", "reason", err.Error())
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidCredential, err)
	}
	return claims, nil
}

// Authorize checks the role of the authenticated caller in ctx. No identity
// yields common.ErrorMissingCredential; an empty allowed set denies everyone.
func Authorize(ctx context.Context, allowed ...auth.Role) error {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return common.ErrorMissingCredential
	}
	if !claims.HasRole(allowed...) {
		return common.ErrorInsufficientRole
	}
	return nil
}
