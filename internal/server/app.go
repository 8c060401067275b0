// Package server assembles the gophgate server: it resolves the signing
// secret, opens the credential store, builds the hasher, token manager and
// gates, and runs the HTTP and gRPC transports until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/filex"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/auth"
	"github.com/dmitrijs2005/gophgate/internal/server/config"
	"github.com/dmitrijs2005/gophgate/internal/server/gate"
	"github.com/dmitrijs2005/gophgate/internal/server/httpapi"
	"github.com/dmitrijs2005/gophgate/internal/server/metrics"
	"github.com/dmitrijs2005/gophgate/internal/server/passwords"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophgate/internal/server/secrets"
	"github.com/dmitrijs2005/gophgate/internal/server/services"

	gs "github.com/dmitrijs2005/gophgate/internal/server/grpc"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	userService   *services.UserService
	authenticator *gate.Authenticator
	provider      *metrics.Provider
	recorder      *metrics.Recorder
	db            *sql.DB
}

// NewApp validates c and builds every collaborator. Log output goes to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewJSONLogger(w, c.LogLevel).With("app", "gophgate")

	secret, err := resolveSecret(ctx, c)
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokenManager([]byte(secret), auth.WithLifetime(c.TokenLifetime))

	alg, err := passwords.ParseAlgorithm(c.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	mh, err := passwords.New(alg)
	if err != nil {
		return nil, err
	}
	hasher := passwords.NewPool(mh, c.HashConcurrency)

	app := &App{config: c, logger: logger}

	if c.MetricsEnabled {
		app.provider, err = metrics.NewPrometheusProvider()
		if err != nil {
			return nil, fmt.Errorf("metrics init error: %w", err)
		}
		app.recorder, err = metrics.NewRecorder(app.provider.Meter())
		if err != nil {
			return nil, fmt.Errorf("metrics init error: %w", err)
		}
	}

	repo, db, err := openStore(ctx, c)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	decoys, err := passwords.DecoyDigests(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.userService, err = services.NewUserService(ctx, repo, hasher, tokens, logger, app.recorder, services.WithDecoys(decoys))
	if err != nil {
		app.Close()
		return nil, err
	}
	app.authenticator = gate.NewAuthenticator(tokens, logger)

	return app, nil
}

// resolveSecret expands a secretref value. The s3 provider is only
// registered when a region or endpoint is configured.
func resolveSecret(ctx context.Context, c *config.Config) (string, error) {
	r := secrets.NewResolver(secrets.NewEnvProvider(), secrets.NewFileProvider())

	if _, _, ok := secrets.ParseRef(c.SecretKey); ok && (c.S3Region != "" || c.S3BaseEndpoint != "") {
		p, err := secrets.NewS3Provider(ctx, secrets.S3Config{
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrorConfiguration, err)
		}
		r.Register(p)
	}

	secret, err := r.Resolve(ctx, c.SecretKey)
	if err != nil {
		return "", fmt.Errorf("%w: signing secret: %v", common.ErrorConfiguration, err)
	}
	return secret, nil
}

// openStore returns the credential repository for c.Store. The returned
// *sql.DB is nil for the memory store.
func openStore(ctx context.Context, c *config.Config) (users.Repository, *sql.DB, error) {
	if c.Store == repomanager.StoreMemory {
		return users.NewMemoryRepository(), nil, nil
	}

	rm, err := repomanager.New(c.Store)
	if err != nil {
		return nil, nil, err
	}

	if c.Store == repomanager.StoreSQLite {
		if path := filex.SQLitePath(c.DatabaseDSN); path != "" {
			if _, err := filex.EnsureParentDir(path); err != nil {
				return nil, nil, err
			}
		}
	}

	db, err := dbx.Open(ctx, rm.DriverName(), c.DatabaseDSN)
	if err != nil {
		return nil, nil, err
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	return rm.Users(db), db, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.authenticator, app.recorder)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	deps := httpapi.Deps{
		Users:         app.userService,
		Authenticator: app.authenticator,
		Logger:        app.logger,
		Metrics:       app.recorder,
	}
	if app.provider != nil {
		deps.MetricsHandler = app.provider.Handler()
	}

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, httpapi.NewRouter(deps), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives or a
// transport fails, then releases the store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.Store)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	if app.config.EndpointAddrHTTP != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHTTPServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()
	app.Close()
	app.logger.Info(context.Background(), "App stopped")
}

// Close releases the database handle and flushes the metrics provider.
func (app *App) Close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close failed", "error", err)
		}
		app.db = nil
	}
	if app.provider != nil {
		if err := app.provider.Shutdown(context.Background()); err != nil {
			app.logger.Error(context.Background(), "metrics shutdown failed", "error", err)
		}
		app.provider = nil
	}
}
