package grpc

import (
	"context"
	"runtime/debug"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/gate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// DefaultPolicy is the access table for AuthService and the health service.
func DefaultPolicy() *gate.Policy {
	return gate.NewPolicy().
		Public(MethodSignUp, MethodSignIn, grpc_health_v1.Health_Check_FullMethodName).
		Allow(MethodWhoAmI, auth.RoleUser, auth.RoleAdmin).
		Allow(MethodGetUser, auth.RoleUser, auth.RoleAdmin).
		Allow(MethodListUsers, auth.RoleAdmin).
		Allow(MethodUpdateUser, auth.RoleUser, auth.RoleAdmin).
		Allow(MethodDeleteUser, auth.RoleUser, auth.RoleAdmin)
}

// recoverInterceptor turns a handler panic into codes.Internal so one bad
// request cannot take the process down.
func (s *GRPCServer) recoverInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error(ctx, "panic in handler", "method", info.FullMethod, "panic", p, "stack", string(debug.Stack()))
			resp, err = nil, status.Error(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

// gateInterceptor authenticates and authorizes every unary call according
// to the policy. Methods missing from the policy are authenticated and then
// denied.
func (s *GRPCServer) gateInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	public, roles, _ := s.policy.Lookup(info.FullMethod)
	if public {
		return handler(ctx, req)
	}

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationMetadataKey); len(values) > 0 {
			header = values[0]
		}
	}

	claims, err := s.authenticator.Authenticate(ctx, header)
	if err != nil {
		r := gate.RejectionFor(err)
		s.metrics.Decision(ctx, "grpc", "authenticate", r.Code)
		return nil, status.Error(r.GRPCCode, r.Message)
	}
	s.metrics.Decision(ctx, "grpc", "authenticate", "allowed")

	ctx = gate.WithClaims(ctx, claims)
	if err := gate.Authorize(ctx, roles...); err != nil {
		r := gate.RejectionFor(err)
		s.metrics.Decision(ctx, "grpc", "authorize", r.Code)
		s.logger.Debug(ctx, "call denied", "method", info.FullMethod, "role", claims.Role)
		return nil, status.Error(r.GRPCCode, r.Message)
	}
	s.metrics.Decision(ctx, "grpc", "authorize", "allowed")

	return handler(ctx, req)
}
