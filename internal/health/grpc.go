package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/akkm9120/sctp02-crud-mongo/internal/metrics"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Checker keeps the gRPC health service in step with the store ping.
type Checker struct {
	server  *grpchealth.Server
	pinger  Pinger
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewChecker(pinger Pinger, logger *slog.Logger, metrics *metrics.Metrics) *Checker {
	return &Checker{
		server:  grpchealth.NewServer(),
		pinger:  pinger,
		logger:  logger,
		metrics: metrics,
	}
}

// Register exposes grpc.health.v1.Health on s.
func (c *Checker) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, c.server)
}

// Server returns the underlying health server.
func (c *Checker) Server() *grpchealth.Server {
	return c.server
}

// Check pings once and updates the overall serving status.
func (c *Checker) Check(ctx context.Context) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := ping(ctx, c.pinger, c.metrics); err != nil {
		c.logger.WarnContext(ctx, "store ping failed", "error", err)
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	c.server.SetServingStatus("", status)
}

// Run checks every interval until ctx is done, then marks the service as
// not serving.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	c.Check(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}
