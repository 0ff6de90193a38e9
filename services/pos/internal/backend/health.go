package backend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aquamarinepk/aqm"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultHealthTimeout = 2 * time.Second

// HealthStatus is the backend state shown on the admin shell.
type HealthStatus string

const (
	HealthUnknown     HealthStatus = "unknown"
	HealthServing     HealthStatus = "serving"
	HealthNotServing  HealthStatus = "not_serving"
	HealthUnreachable HealthStatus = "unreachable"
)

// Label is the status as shown to staff.
func (s HealthStatus) Label() string {
	switch s {
	case HealthServing:
		return "Serving"
	case HealthNotServing:
		return "Not serving"
	case HealthUnreachable:
		return "Unreachable"
	default:
		return "Unknown"
	}
}

// HealthProbe asks the backend's standard gRPC health service whether it is
// serving.
type HealthProbe struct {
	addr    string
	timeout time.Duration
	logger  aqm.Logger

	mu   sync.Mutex
	conn *grpc.ClientConn
}

func NewHealthProbe(addr string, logger aqm.Logger) *HealthProbe {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &HealthProbe{addr: addr, timeout: defaultHealthTimeout, logger: logger}
}

// Start creates the client connection. grpc connects lazily, so an
// unreachable backend does not block startup.
func (p *HealthProbe) Start(ctx context.Context) error {
	if p.addr == "" {
		p.logger.Info("backend health probe disabled, no grpc address configured")
		return nil
	}

	conn, err := grpc.NewClient(p.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("cannot create health client for %s: %w", p.addr, err)
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	p.logger.Info("backend health probe ready", "addr", p.addr)
	return nil
}

func (p *HealthProbe) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// Check returns the current backend status. It never fails; transport errors
// report HealthUnreachable.
func (p *HealthProbe) Check(ctx context.Context) HealthStatus {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()

	if conn == nil {
		return HealthUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		p.logger.Debug("backend health check failed", "addr", p.addr, "error", err)
		return HealthUnreachable
	}

	if resp.GetStatus() == healthpb.HealthCheckResponse_SERVING {
		return HealthServing
	}
	return HealthNotServing
}
