// Package grpc serves AuthService over gRPC, with the authentication and
// authorization gates applied as a unary interceptor.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/gate"
	"github.com/dmitrijs2005/gophgate/internal/server/metrics"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// UserService is the account API the handlers call.
type UserService interface {
	SignUp(ctx context.Context, email, password, role string) (*models.Profile, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	GetUser(ctx context.Context, id string) (*models.Profile, error)
	ListUsers(ctx context.Context, page, limit int) ([]models.Profile, error)
	UpdateUser(ctx context.Context, actor *auth.Claims, id string, in models.UserUpdate) (*models.Profile, error)
	DeleteUser(ctx context.Context, actor *auth.Claims, id string) error
}

type GRPCServer struct {
	address       string
	users         UserService
	authenticator *gate.Authenticator
	policy        *gate.Policy
	metrics       *metrics.Recorder
	logger        logging.Logger
}

// NewGRPCServer uses DefaultPolicy; rec may be nil.
func NewGRPCServer(a string, l logging.Logger, us UserService, authn *gate.Authenticator, rec *metrics.Recorder) *GRPCServer {
	return &GRPCServer{
		address:       a,
		logger:        l.With("module", "grpc_server"),
		users:         us,
		authenticator: authn,
		policy:        DefaultPolicy(),
		metrics:       rec,
	}
}

// newServer builds the grpc.Server with every service registered.
func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoverInterceptor, s.gateInterceptor))

	RegisterAuthServiceServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, hs)

	return srv, hs
}

// Run serves until ctx is done, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv, hs := s.newServer()

	runCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		<-runCtx.Done()
		s.logger.Info(ctx, "Stopping gPRC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	err := srv.Serve(listen)
	cancel()
	<-stopped

	return err
}
