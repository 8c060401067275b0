package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophgate/internal/common"
	gs "github.com/dmitrijs2005/gophgate/internal/server/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      gs.AuthServiceClient
	health      grpc_health_v1.HealthClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationMetadataKey, common.BearerScheme+" "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.Token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewAuthClient dials endpointURL lazily; token may be empty.
func NewAuthClient(endpointURL, token string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: token}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(extra ...grpc.DialOption) error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = gs.NewAuthServiceClient(conn)
	s.health = grpc_health_v1.NewHealthClient(conn)
	return nil
}

// Token returns the bearer token currently attached to calls.
func (s *GRPCClient) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	s.accessToken = token
	s.mu.Unlock()
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// Ping reports whether the AuthService is serving.
func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: gs.ServiceName})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) SignUp(ctx context.Context, email, password, role string) (*gs.ProfileResponse, error) {
	resp, err := s.client.SignUp(ctx, &gs.SignUpRequest{Email: email, Password: password, Role: role})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

// SignIn stores the returned token for subsequent calls and returns it.
func (s *GRPCClient) SignIn(ctx context.Context, email, password string) (string, error) {
	resp, err := s.client.SignIn(ctx, &gs.SignInRequest{Email: email, Password: password})
	if err != nil {
		return "", s.mapError(err)
	}
	s.SetToken(resp.AccessToken)
	return resp.AccessToken, nil
}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*gs.WhoAmIResponse, error) {
	resp, err := s.client.WhoAmI(ctx, &gs.WhoAmIRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) GetUser(ctx context.Context, id string) (*gs.ProfileResponse, error) {
	resp, err := s.client.GetUser(ctx, &gs.GetUserRequest{ID: id})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) ListUsers(ctx context.Context, page, limit int) ([]gs.ProfileResponse, error) {
	resp, err := s.client.ListUsers(ctx, &gs.ListUsersRequest{Page: page, Limit: limit})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Users, nil
}

func (s *GRPCClient) UpdateUser(ctx context.Context, req *gs.UpdateUserRequest) (*gs.ProfileResponse, error) {
	resp, err := s.client.UpdateUser(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) DeleteUser(ctx context.Context, id string) error {
	_, err := s.client.DeleteUser(ctx, &gs.DeleteUserRequest{ID: id})
	return s.mapError(err)
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	var sentinel error
	switch st.Code() {
	case codes.Unauthenticated:
		sentinel = ErrUnauthorized
	case codes.PermissionDenied:
		sentinel = ErrForbidden
	case codes.AlreadyExists:
		sentinel = ErrConflict
	case codes.NotFound:
		sentinel = ErrNotFound
	case codes.InvalidArgument:
		sentinel = ErrRejected
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
	return fmt.Errorf("%w: %s", sentinel, st.Message())
}
