package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/gate"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

var secret = []byte("grpc-test-secret-0123456789abcdef")

type fakeUsers struct {
	signUpErr error
	signInErr error
	getErr    error
	listErr   error
	changeErr error
	panicGet  bool

	gotActor  *auth.Claims
	gotUpdate models.UserUpdate
}

func (f *fakeUsers) SignUp(_ context.Context, email, _, _ string) (*models.Profile, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &models.Profile{ID: "u1", Email: email, Role: auth.RoleUser}, nil
}

func (f *fakeUsers) SignIn(context.Context, string, string) (string, error) {
	if f.signInErr != nil {
		return "", f.signInErr
	}
	return "tok", nil
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*models.Profile, error) {
	if f.panicGet {
		panic("nil map write")
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.Profile{ID: id, Email: "a@b.com", Role: auth.RoleUser}, nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, actor *auth.Claims, id string, in models.UserUpdate) (*models.Profile, error) {
	f.gotActor, f.gotUpdate = actor, in
	if f.changeErr != nil {
		return nil, f.changeErr
	}
	p := &models.Profile{ID: id, Email: "a@b.com", Role: auth.RoleUser}
	if in.Email != nil {
		p.Email = *in.Email
	}
	return p, nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, actor *auth.Claims, _ string) error {
	f.gotActor = actor
	return f.changeErr
}

func (f *fakeUsers) ListUsers(context.Context, int, int) ([]models.Profile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []models.Profile{{ID: "u1"}, {ID: "u2"}}, nil
}

type harness struct {
	client AuthServiceClient
	conn   *grpc.ClientConn
	users  *fakeUsers
	tokens *auth.TokenManager
}

func startServer(t *testing.T) *harness {
	t.Helper()

	h := &harness{users: &fakeUsers{}, tokens: auth.NewTokenManager(secret)}
	s := NewGRPCServer("bufnet", logging.Nop{}, h.users, gate.NewAuthenticator(h.tokens, logging.Nop{}), nil)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})

	h.conn = conn
	h.client = NewAuthServiceClient(conn)
	return h
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func assertStatus(t *testing.T, err error, code codes.Code, msg string) {
	t.Helper()
	st, ok := status.FromError(err)
	require.True(t, ok, "not a status error: %v", err)
	assert.Equal(t, code, st.Code())
	assert.Equal(t, msg, st.Message())
}

func TestPublicMethods(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	p, err := h.client.SignUp(ctx, &SignUpRequest{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", p.Email)

	resp, err := h.client.SignIn(ctx, &SignInRequest{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)

	h.users.signUpErr = common.ErrorDuplicateCredential
	_, err = h.client.SignUp(ctx, &SignUpRequest{Email: "a@b.com", Password: "pw"})
	assertStatus(t, err, codes.AlreadyExists, "email already registered")

	h.users.signUpErr = common.ErrorCredentialCreationFailed
	_, err = h.client.SignUp(ctx, &SignUpRequest{Email: "a@b.com", Password: "pw"})
	assertStatus(t, err, codes.InvalidArgument, "could not create user")

	h.users.signInErr = common.ErrorInvalidCredential
	_, err = h.client.SignIn(ctx, &SignInRequest{Email: "a@b.com", Password: "x"})
	assertStatus(t, err, codes.Unauthenticated, "invalid email or password")

	h.users.signInErr = errors.New("db down")
	_, err = h.client.SignIn(ctx, &SignInRequest{Email: "a@b.com", Password: "x"})
	assertStatus(t, err, codes.Internal, "internal server error")
}

func TestProtectedMethods_Gate(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	userTok, err := h.tokens.Issue("u1", "a@b.com", auth.RoleUser)
	require.NoError(t, err)
	adminTok, err := h.tokens.Issue("u2", "c@d.com", auth.RoleAdmin)
	require.NoError(t, err)

	_, err = h.client.WhoAmI(ctx, &WhoAmIRequest{})
	assertStatus(t, err, codes.Unauthenticated, "missing or malformed authentication token")

	_, err = h.client.WhoAmI(withToken(ctx, "garbage"), &WhoAmIRequest{})
	assertStatus(t, err, codes.Unauthenticated, "invalid token")

	me, err := h.client.WhoAmI(withToken(ctx, userTok), &WhoAmIRequest{})
	require.NoError(t, err)
	assert.Equal(t, "u1", me.UserID)
	assert.Equal(t, auth.RoleUser, me.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), me.ExpiresAt, 5*time.Second)

	_, err = h.client.ListUsers(withToken(ctx, userTok), &ListUsersRequest{})
	assertStatus(t, err, codes.PermissionDenied, "insufficient role")

	list, err := h.client.ListUsers(withToken(ctx, adminTok), &ListUsersRequest{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, list.Users, 2)

	got, err := h.client.GetUser(withToken(ctx, userTok), &GetUserRequest{ID: "u9"})
	require.NoError(t, err)
	assert.Equal(t, "u9", got.ID)

	h.users.getErr = common.ErrorNotFound
	_, err = h.client.GetUser(withToken(ctx, userTok), &GetUserRequest{ID: "zz"})
	assertStatus(t, err, codes.NotFound, "user not found")
}

func TestProtectedMethods_ExpiredToken(t *testing.T) {
	h := startServer(t)

	past := time.Now().Add(-2 * time.Hour)
	old := auth.NewTokenManager(secret, auth.WithClock(func() time.Time { return past }))
	tok, err := old.Issue("u1", "a@b.com", auth.RoleAdmin)
	require.NoError(t, err)

	_, err = h.client.WhoAmI(withToken(context.Background(), tok), &WhoAmIRequest{})
	assertStatus(t, err, codes.Unauthenticated, "token expired")
}

func TestUnknownMethodIsDenied(t *testing.T) {
	h := startServer(t)

	adminTok, err := h.tokens.Issue("u2", "c@d.com", auth.RoleAdmin)
	require.NoError(t, err)

	s := &GRPCServer{authenticator: gate.NewAuthenticator(h.tokens, nil), policy: DefaultPolicy(), logger: logging.Nop{}}
	info := &grpc.UnaryServerInfo{FullMethod: "/" + ServiceName + "/DropAllUsers"}
	called := false
	handler := func(context.Context, any) (any, error) { called = true; return nil, nil }

	_, err = s.gateInterceptor(context.Background(), nil, info, handler)
	assertStatus(t, err, codes.Unauthenticated, "missing or malformed authentication token")

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+adminTok))
	_, err = s.gateInterceptor(ctx, nil, info, handler)
	assertStatus(t, err, codes.PermissionDenied, "insufficient role")
	assert.False(t, called)
}

func TestHealthCheckIsPublic(t *testing.T) {
	h := startServer(t)

	resp, err := grpc_health_v1.NewHealthClient(h.conn).Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, &fakeUsers{}, gate.NewAuthenticator(auth.NewTokenManager(secret), nil), nil)
	assert.Error(t, s.Run(context.Background()))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := NewGRPCServer("127.0.0.1:0", logging.Nop{}, &fakeUsers{}, gate.NewAuthenticator(auth.NewTokenManager(secret), nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestUpdateAndDeleteUser(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	userTok, err := h.tokens.Issue("u1", "a@b.com", auth.RoleUser)
	require.NoError(t, err)
	email := "new@b.com"

	_, err = h.client.UpdateUser(ctx, &UpdateUserRequest{ID: "u1", Email: &email})
	assertStatus(t, err, codes.Unauthenticated, "missing or malformed authentication token")

	p, err := h.client.UpdateUser(withToken(ctx, userTok), &UpdateUserRequest{ID: "u1", Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "new@b.com", p.Email)
	require.NotNil(t, h.users.gotActor)
	assert.Equal(t, "u1", h.users.gotActor.UserID())
	require.NotNil(t, h.users.gotUpdate.Email)
	assert.Nil(t, h.users.gotUpdate.Role)

	resp, err := h.client.DeleteUser(withToken(ctx, userTok), &DeleteUserRequest{ID: "u1"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "u1", resp.ID)

	tests := []struct {
		err  error
		code codes.Code
		msg  string
	}{
		{fmt.Errorf("%w: nothing to update", common.ErrorValidation), codes.InvalidArgument, "validation error: nothing to update"},
		{common.ErrorInsufficientRole, codes.PermissionDenied, "insufficient role"},
		{common.ErrorNotFound, codes.NotFound, "user not found"},
		{common.ErrorDuplicateCredential, codes.AlreadyExists, "email already registered"},
		{errors.New("db down"), codes.Internal, "internal server error"},
	}
	for _, tt := range tests {
		h.users.changeErr = tt.err
		_, err = h.client.UpdateUser(withToken(ctx, userTok), &UpdateUserRequest{ID: "u2"})
		assertStatus(t, err, tt.code, tt.msg)
		_, err = h.client.DeleteUser(withToken(ctx, userTok), &DeleteUserRequest{ID: "u2"})
		assertStatus(t, err, tt.code, tt.msg)
	}
}

func TestHandlerPanicBecomesInternal(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	tok, err := h.tokens.Issue("u1", "a@b.com", auth.RoleUser)
	require.NoError(t, err)

	h.users.panicGet = true
	_, err = h.client.GetUser(withToken(ctx, tok), &GetUserRequest{ID: "u1"})
	assertStatus(t, err, codes.Internal, "internal server error")

	// the server keeps serving
	h.users.panicGet = false
	got, err := h.client.GetUser(withToken(ctx, tok), &GetUserRequest{ID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
}
