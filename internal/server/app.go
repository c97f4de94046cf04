// Package server initializes and runs the auth server.
// It picks the storage backend, runs migrations, builds the mail sink and OTP
// rate limiter, and serves the HTTP API next to the gRPC health endpoint
// until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/cryptox"
	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/auth"
	"github.com/dmitrijs2005/storeauth/internal/server/config"
	"github.com/dmitrijs2005/storeauth/internal/server/httpapi"
	"github.com/dmitrijs2005/storeauth/internal/server/mailer"
	"github.com/dmitrijs2005/storeauth/internal/server/ratelimit"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/memory"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storeauth/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/storeauth/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	redis    *redis.Client
	sessions *auth.Sessions
	limiter  ratelimit.Limiter
	accounts *services.AccountService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(os.Stdout, c.LogLevel)

	app := &App{config: c, logger: logger}

	rm, err := app.initStorage(ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := cryptox.NewHasher(c.HashAlgorithm)
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	sink, err := mailer.New(ctx, c, logger)
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("mailer init error: %w", err)
	}
	if sink == nil {
		logger.Warn(ctx, "mail sink not configured, new accounts are verified without an OTP")
	}

	if err := app.initLimiter(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}

	app.sessions = auth.NewSessions(c.SecretKey, c.SessionValidityDuration, c.DevMode)
	app.accounts = services.NewAccountService(app.db, rm, c, hasher, app.sessions, sink, logger)

	return app, nil
}

// initStorage opens PostgreSQL and applies migrations, or falls back to the
// in-memory store when no DSN is configured.
func (app *App) initStorage(ctx context.Context) (repomanager.RepositoryManager, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "DATABASE_DSN is empty, using in-memory store")
		return memory.NewManager(memory.NewStore()), nil
	}

	db, err := repomanager.Open(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	return rm, nil
}

func (app *App) initLimiter(ctx context.Context) error {
	c := app.config
	if c.RedisAddr == "" {
		app.limiter = ratelimit.NewMemoryLimiter(c.RateLimitMax, c.RateLimitWindow)
		return nil
	}

	client, err := ratelimit.NewRedisClient(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
	if err != nil {
		return fmt.Errorf("redis init error: %w", err)
	}
	app.redis = client
	app.limiter = ratelimit.NewRedisLimiter(client, c.RateLimitMax, c.RateLimitWindow)
	return nil
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

func (app *App) ping(ctx context.Context) error {
	if app.db == nil {
		return nil
	}
	return app.db.PingContext(ctx)
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger, app.ping, app.config.HealthCheckInterval)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           httpapi.NewRouter(app.accounts, app.sessions, app.limiter, app.config, app.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			app.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close", "error", err)
		}
		app.redis = nil
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close", "error", err)
		}
		app.db = nil
	}
}
