// Package grpc runs the standard grpc.health.v1 service so orchestrators can
// probe the API process on a dedicated port.
package grpc

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-check service name reported alongside "".
const ServiceName = "clinicdesk"

// Probe reports whether a dependency is reachable.
type Probe func(ctx context.Context) error

type HealthServer struct {
	address  string
	logger   logging.Logger
	health   *health.Server
	probe    Probe
	interval time.Duration

	mu      sync.Mutex
	ready   bool
	healthy bool
}

// NewHealthServer starts out NOT_SERVING. When probe is set it runs every
// interval while the server is up.
func NewHealthServer(address string, l logging.Logger, probe Probe, interval time.Duration) *HealthServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{
		address:  address,
		logger:   l.With("module", "grpc_health"),
		health:   hs,
		probe:    probe,
		interval: interval,
		healthy:  true,
	}
}

// SetServing marks the process ready or not. SERVING is reported only
// while the process is ready and the last probe succeeded.
func (s *HealthServer) SetServing(serving bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = serving
	s.publish()
}

func (s *HealthServer) setHealthy(healthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = healthy
	s.publish()
}

// publish must be called with mu held.
func (s *HealthServer) publish() {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if s.ready && s.healthy {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Run listens on the configured address until ctx is cancelled.
func (s *HealthServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is cancelled.
func (s *HealthServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	if s.probe != nil {
		go s.watch(ctx)
	}

	s.logger.Info(ctx, "Starting gRPC health server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	wasHealthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, s.interval)
			err := s.probe(probeCtx)
			cancel()

			if ctx.Err() != nil {
				return
			}
			if err != nil && wasHealthy {
				s.logger.Warn(ctx, "dependency probe failed", "error", err)
			} else if err == nil && !wasHealthy {
				s.logger.Info(ctx, "dependency probe recovered")
			}
			wasHealthy = err == nil
			s.setHealthy(wasHealthy)
		}
	}
}
