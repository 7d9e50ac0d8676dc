// Package server provides HTTP and gRPC health server lifecycle management.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/solatis/roundsapi/internal/logging"
	"github.com/solatis/roundsapi/internal/metrics"
)

// ServiceName is the gRPC health service name of the API.
const ServiceName = "roundsapi.v2.SRM"

// Pinger reports store reachability. Implemented by *rounds.Service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer serves grpc.health.v1 and keeps its status in step with the
// store.
type HealthServer struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
	addr     string
}

// NewHealthServer creates a gRPC server exposing only the health service.
// Status starts NOT_SERVING until the first probe succeeds.
func NewHealthServer(host string, port int) *HealthServer {
	server := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)

	h := &HealthServer{
		server: server,
		health: healthServer,
		addr:   fmt.Sprintf("%s:%d", host, port),
	}
	h.setServing(false)
	return h
}

// setServing flips the overall and the API service status together.
func (h *HealthServer) setServing(ok bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if ok {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Start binds listener and serves gRPC requests.
// Serve blocks until Shutdown is called.
func (h *HealthServer) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", h.addr, err)
	}

	h.listener = listener
	return h.server.Serve(listener)
}

// Shutdown gracefully stops server, forcing a stop when ctx ends first.
func (h *HealthServer) Shutdown(ctx context.Context) error {
	h.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		h.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		h.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	}
}

// Probe pings the store every interval until ctx ends, updating the health
// status (when h is non-nil) and the store-up gauge.
func Probe(ctx context.Context, p Pinger, interval time.Duration, h *HealthServer, m *metrics.Metrics) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		err := p.Ping(pingCtx)
		if err != nil {
			logging.Warn().Err(err).Msg("store probe failed")
		}
		if h != nil {
			h.setServing(err == nil)
		}
		m.SetStoreUp(err == nil)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
