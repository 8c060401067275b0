// Package httpapi exposes the account operations over HTTP/JSON with gin and
// guards the protected routes with the authentication and authorization
// gates.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/gate"
	"github.com/dmitrijs2005/gophgate/internal/server/metrics"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// Deps are the collaborators of the HTTP transport. Metrics and
// MetricsHandler are optional.
type Deps struct {
	Users          UserService
	Authenticator  *gate.Authenticator
	Logger         logging.Logger
	Metrics        *metrics.Recorder
	MetricsHandler http.Handler
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = logging.Nop{}
	}
	h := &handlers{users: d.Users, logger: logger.With("module", "http")}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if d.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	a := r.Group("/auth")
	a.POST("/signup", h.signUp)
	a.POST("/signin", h.signIn)

	u := r.Group("/users", RequireAuth(d.Authenticator, d.Metrics))
	u.GET("/me", RequireRole(d.Metrics, auth.RoleUser, auth.RoleAdmin), h.me)
	u.GET("/:id", RequireRole(d.Metrics, auth.RoleUser, auth.RoleAdmin), h.getUser)
	u.PATCH("/:id", RequireRole(d.Metrics, auth.RoleUser, auth.RoleAdmin), h.updateUser)
	u.DELETE("/:id", RequireRole(d.Metrics, auth.RoleUser, auth.RoleAdmin), h.deleteUser)
	u.GET("", RequireRole(d.Metrics, auth.RoleAdmin), h.listUsers)

	return r
}

// Server runs the router on an address until its context is cancelled.
type Server struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewServer(address string, handler http.Handler, l logging.Logger) *Server {
	return &Server{address: address, handler: handler, logger: l.With("module", "http_server")}
}

// Run blocks until ctx is done, then shuts down gracefully. It also returns
// when the listener fails; the shutdown goroutine has exited either way.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		<-runCtx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	err := srv.ListenAndServe()
	cancel()
	<-stopped

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func rejectionForMissing() gate.Rejection {
	return gate.RejectionFor(common.ErrorMissingCredential)
}
