package backend

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func startHealthServer(t *testing.T, status healthpb.HealthCheckResponse_ServingStatus) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("cannot listen: %v", err)
	}

	srv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", status)
	healthpb.RegisterHealthServer(srv, hs)

	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	return lis.Addr().String()
}

func TestHealthProbeCheck(t *testing.T) {
	tests := []struct {
		name   string
		status healthpb.HealthCheckResponse_ServingStatus
		want   HealthStatus
	}{
		{name: "serving", status: healthpb.HealthCheckResponse_SERVING, want: HealthServing},
		{name: "notServing", status: healthpb.HealthCheckResponse_NOT_SERVING, want: HealthNotServing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := startHealthServer(t, tt.status)

			p := NewHealthProbe(addr, nil)
			if err := p.Start(context.Background()); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			defer p.Stop(context.Background())

			if got := p.Check(context.Background()); got != tt.want {
				t.Errorf("Check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHealthProbeWithoutAddress(t *testing.T) {
	p := NewHealthProbe("", nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := p.Check(context.Background()); got != HealthUnknown {
		t.Errorf("Check() = %v, want %v", got, HealthUnknown)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestHealthProbeUnreachable(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("cannot listen: %v", err)
	}
	addr := lis.Addr().String()
	lis.Close()

	p := NewHealthProbe(addr, nil)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer p.Stop(context.Background())

	if got := p.Check(context.Background()); got != HealthUnreachable {
		t.Errorf("Check() = %v, want %v", got, HealthUnreachable)
	}
}

func TestHealthStatusLabel(t *testing.T) {
	tests := []struct {
		status HealthStatus
		want   string
	}{
		{HealthServing, "Serving"},
		{HealthNotServing, "Not serving"},
		{HealthUnreachable, "Unreachable"},
		{HealthUnknown, "Unknown"},
		{HealthStatus("draining"), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.Label(); got != tt.want {
			t.Errorf("%q.Label() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
