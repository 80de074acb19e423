package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"users-api/pkg/logger"
)

// HealthServiceName is the service reported by the gRPC health endpoint
const HealthServiceName = "users.v1.UserService"

// SetupGRPC creates the gRPC server carrying the standard health service
func SetupGRPC(l *zap.Logger) (*grpc.Server, *health.Server) {
	// Create gRPC server with request ID interceptor
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
		),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	l.Debug("gRPC health service registered", zap.String("service", HealthServiceName))

	return grpcServer, healthServer
}
