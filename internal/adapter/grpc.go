package adapter

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// GRPCHealthProber implements [Prober] with the standard gRPC health service.
type GRPCHealthProber struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

// NewGRPCHealthProber creates a lazily connecting client for addr.
func NewGRPCHealthProber(addr string) (*GRPCHealthProber, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("create grpc client: %w", err)
	}

	return &GRPCHealthProber{conn: conn, health: healthpb.NewHealthClient(conn)}, nil
}

// Probe returns nil when the server reports SERVING.
func (p *GRPCHealthProber) Probe(ctx context.Context) error {
	resp, err := p.health.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return fmt.Errorf("health check: %w: %w", ErrNetwork, err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("health check: %w: status %s", ErrServiceUnavailable, resp.GetStatus())
	}
	return nil
}

// Close releases the connection.
func (p *GRPCHealthProber) Close() error {
	return p.conn.Close()
}
