package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	ginhandler "users-api/internal/adapter/gin/handler"
	"users-api/internal/adapter/gin/middleware"
	ginrouter "users-api/internal/adapter/gin/router"
	"users-api/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server
	GRPC   *grpc.Server   // nil unless GRPC_ENABLED
	Health *health.Server // nil unless GRPC_ENABLED
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, handler *ginhandler.UserHandler, rateLimiter *middleware.RateLimiter) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
	}

	s.Gin = SetupGinServer(handler, rateLimiter, s.httpAddress(), ginrouter.Options{
		ServiceName: cfg.Logger.ServiceName,
		EnableReset: cfg.App.EnableReset,
	}, l)

	if cfg.App.GRPCEnabled {
		s.GRPC, s.Health = SetupGRPC(l)
	}

	return s
}

// httpAddress returns the Gin server address
func (s *Server) httpAddress() string {
	return ":" + s.Config.App.HTTPPort
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}

// Start listens on the configured ports and serves until ctx is canceled or a listener fails
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}

	httpLis, err := lc.Listen(ctx, "tcp", s.httpAddress())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpAddress(), err)
	}

	var grpcLis net.Listener
	if s.GRPC != nil {
		grpcLis, err = lc.Listen(ctx, "tcp", s.grpcAddress())
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("failed to listen on %s: %w", s.grpcAddress(), err)
		}
	}

	return s.Serve(ctx, httpLis, grpcLis)
}

// Serve runs the servers on the given listeners. When ctx is canceled, or
// either server fails, both are shut down within the configured timeout.
// grpcLis is ignored when gRPC is disabled.
func (s *Server) Serve(ctx context.Context, httpLis, grpcLis net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Logger.Info("Gin REST API running", zap.String("address", httpLis.Addr().String()))
		if err := s.Gin.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gin server: %w", err)
		}
		return nil
	})

	if s.GRPC != nil && grpcLis != nil {
		g.Go(func() error {
			s.Logger.Info("gRPC server running", zap.String("address", grpcLis.Addr().String()))
			if err := s.GRPC.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("gRPC server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.Config.App.ShutdownTimeout())
		defer cancel()

		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown marks the service NOT_SERVING and stops both servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("starting graceful shutdown",
		zap.Int("timeout_seconds", s.Config.App.ShutdownTimeoutSeconds),
	)

	var errs []error

	// Health clients see NOT_SERVING before connections drain
	if s.Health != nil {
		s.Health.Shutdown()
	}

	// Shutdown Gin server
	if s.Gin != nil {
		s.Logger.Info("shutting down Gin server...")
		if err := s.Gin.Shutdown(ctx); err != nil {
			s.Logger.Error("failed to shutdown Gin server", zap.Error(err))
			errs = append(errs, fmt.Errorf("gin shutdown: %w", err))
		}
	}

	// Shutdown gRPC server, forcing it once the deadline passes
	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		stopped := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-ctx.Done():
			s.GRPC.Stop()
			errs = append(errs, fmt.Errorf("gRPC shutdown: %w", ctx.Err()))
		}
	}

	return errors.Join(errs...)
}
