package gate

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

var secret = []byte("gate-test-secret-0123456789abcdef")

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newGate(t *testing.T) (*Authenticator, *auth.TokenManager, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	tm := auth.NewTokenManager(secret, auth.WithClock(c.now))
	return NewAuthenticator(tm, logging.Nop{}), tm, c
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"  Bearer   abc  ", "abc", true},
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"abc.def.ghi", "", false},
		{"Bearer a b", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			tok, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, tok)
		})
	}
}

func TestAuthenticate_Outcomes(t *testing.T) {
	g, tm, c := newGate(t)
	ctx := context.Background()

	valid, err := tm.Issue("u1", "a@b.com", auth.RoleUser)
	require.NoError(t, err)

	foreign, err := auth.NewTokenManager([]byte("some-other-secret-0123456789abcdef"), auth.WithClock(c.now)).
		Issue("u1", "a@b.com", auth.RoleAdmin)
	require.NoError(t, err)

	claims, err := g.Authenticate(ctx, "Bearer "+valid)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID())

	_, err = g.Authenticate(ctx, "")
	assert.ErrorIs(t, err, common.ErrorMissingCredential)

	_, err = g.Authenticate(ctx, valid)
	assert.ErrorIs(t, err, common.ErrorMissingCredential)

	_, err = g.Authenticate(ctx, "Bearer not-a-jwt")
	assert.ErrorIs(t, err, common.ErrorInvalidCredential)

	_, err = g.Authenticate(ctx, "Bearer "+foreign)
	assert.ErrorIs(t, err, common.ErrorInvalidCredential)

	c.t = c.t.Add(time.Hour + time.Second)
	_, err = g.Authenticate(ctx, "Bearer "+valid)
	assert.ErrorIs(t, err, common.ErrorExpiredCredential)
}

func TestAuthenticate_Unconfigured(t *testing.T) {
	g := NewAuthenticator(auth.NewTokenManager(nil), nil)

	_, err := g.Authenticate(context.Background(), "Bearer a.b.c")
	assert.ErrorIs(t, err, common.ErrorConfiguration)
	assert.False(t, errors.Is(err, common.ErrorInvalidCredential))

	_, err = g.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorMissingCredential)
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()

	assert.ErrorIs(t, Authorize(ctx, auth.RoleUser), common.ErrorMissingCredential)

	user := WithClaims(ctx, &auth.Claims{Email: "a@b.com", Role: auth.RoleUser})
	admin := WithClaims(ctx, &auth.Claims{Email: "c@d.com", Role: auth.RoleAdmin})

	assert.NoError(t, Authorize(user, auth.RoleUser, auth.RoleAdmin))
	assert.NoError(t, Authorize(admin, auth.RoleAdmin))
	assert.ErrorIs(t, Authorize(user, auth.RoleAdmin), common.ErrorInsufficientRole)
	assert.ErrorIs(t, Authorize(admin), common.ErrorInsufficientRole, "empty allowed set denies")

	nilClaims := WithClaims(ctx, nil)
	assert.ErrorIs(t, Authorize(nilClaims, auth.RoleUser), common.ErrorMissingCredential)
}

func TestRejectionFor(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		code    codes.Code
		message string
	}{
		{common.ErrorMissingCredential, http.StatusUnauthorized, codes.Unauthenticated, "missing or malformed authentication token"},
		{common.ErrorExpiredCredential, http.StatusUnauthorized, codes.Unauthenticated, "token expired"},
		{errors.Join(common.ErrorInvalidCredential, errors.New("sig")), http.StatusUnauthorized, codes.Unauthenticated, "invalid token"},
		{common.ErrorInsufficientRole, http.StatusForbidden, codes.PermissionDenied, "insufficient role"},
		{common.ErrorConfiguration, http.StatusInternalServerError, codes.Internal, "internal server error"},
		{errors.New("surprise"), http.StatusInternalServerError, codes.Internal, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			r := RejectionFor(tt.err)
			assert.Equal(t, tt.status, r.HTTPStatus)
			assert.Equal(t, tt.code, r.GRPCCode)
			assert.Equal(t, tt.message, r.Message)
		})
	}
}

func TestPolicy(t *testing.T) {
	p := NewPolicy().
		Public("/svc/SignIn").
		Allow("/svc/List", auth.RoleAdmin)

	public, _, known := p.Lookup("/svc/SignIn")
	assert.True(t, known)
	assert.True(t, public)

	public, roles, known := p.Lookup("/svc/List")
	assert.True(t, known)
	assert.False(t, public)
	assert.Equal(t, []auth.Role{auth.RoleAdmin}, roles)

	_, _, known = p.Lookup("/svc/Unknown")
	assert.False(t, known)
}
