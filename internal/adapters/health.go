package adapters

import (
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported through the gRPC health service.
const ServiceName = "go_arena.GameService"

// AdapterHealth runs a gRPC server that only exposes grpc.health.v1.
type AdapterHealth struct {
	server *grpc.Server
	health *health.Server
	log    *zap.SugaredLogger
}

func NewAdapterHealth(log *zap.SugaredLogger) *AdapterHealth {
	server := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &AdapterHealth{
		server: server,
		health: hs,
		log:    log,
	}
}

// Serve blocks until the listener fails or Close is called.
func (a *AdapterHealth) Serve(port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	a.log.Infof("gRPC health service is running on port %s", port)
	return a.server.Serve(lis)
}

func (a *AdapterHealth) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	a.health.SetServingStatus(ServiceName, status)
	a.health.SetServingStatus("", status)
}

func (a *AdapterHealth) Close() {
	a.health.Shutdown()
	a.server.GracefulStop()
}
