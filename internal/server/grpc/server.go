// Package grpc serves the standard grpc.health.v1 service for orchestrator
// health checks. Serving status follows a periodic dependency check.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the named service reported next to the overall ("") status.
const ServiceName = "storeauth.Auth"

// Checker checks a dependency; a nil error means healthy.
type Checker func(ctx context.Context) error

// HealthServer exposes grpc.health.v1 and keeps the serving status in line
// with the periodic dependency check.
type HealthServer struct {
	address  string
	logger   logging.Logger
	checker  Checker
	interval time.Duration
	health   *health.Server
}

// NewHealthServer builds a server listening on address. checker may be nil, in
// which case the server always reports SERVING.
func NewHealthServer(address string, l logging.Logger, checker Checker, interval time.Duration) *HealthServer {
	return &HealthServer{
		address:  address,
		logger:   l.With("module", "grpc_health"),
		checker:  checker,
		interval: interval,
		health:   health.NewServer(),
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve runs on an existing listener until ctx is cancelled.
func (s *HealthServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.check(ctx)

	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

func (s *HealthServer) watch(ctx context.Context) {
	if s.checker == nil || s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

// check runs the checker once and publishes the result.
func (s *HealthServer) check(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.checker != nil {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := s.checker(pctx)
		cancel()
		if err != nil {
			s.logger.Warn(ctx, "health check failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
