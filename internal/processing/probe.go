package processing

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// EngineProbe checks the health of a remote processing engine over gRPC. It
// backs the /ready readiness check when an engine endpoint is configured.
type EngineProbe struct {
	conn   *grpc.ClientConn
	client healthpb.HealthClient
}

// NewEngineProbe creates a probe for the engine at addr. The connection is
// established lazily on first use.
func NewEngineProbe(addr string) (*EngineProbe, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             3 * time.Second,
			PermitWithoutStream: true,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine client for %s: %w", addr, err)
	}

	return &EngineProbe{
		conn:   conn,
		client: healthpb.NewHealthClient(conn),
	}, nil
}

// Check reports whether the engine is serving.
func (p *EngineProbe) Check(ctx context.Context) (bool, error) {
	resp, err := p.client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return false, fmt.Errorf("engine health check failed: %w", err)
	}
	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

// Close closes the gRPC connection.
func (p *EngineProbe) Close() error {
	return p.conn.Close()
}
