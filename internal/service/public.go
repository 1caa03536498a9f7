package service

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"permission-sync/internal/config"
	"permission-sync/internal/hub"
	"permission-sync/internal/utils/grpczap"
)

// HubHealthService is the health service name that follows the broadcast
// hub connection.
const HubHealthService = "permission-sync.hub"

// HubState reports the broadcast hub connection state.
type HubState interface {
	State() hub.State
	OnStateChange(fn func(hub.State))
}

func RunServices(ctx context.Context, logger *zap.SugaredLogger, wg *sync.WaitGroup, cfg *config.Config, hubState HubState) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		logger.Fatalw("failed to listen", "error", err)
	}

	opts := []logging.Option{
		logging.WithLogOnEvents(logging.StartCall, logging.FinishCall),
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(
		logging.UnaryServerInterceptor(grpczap.InterceptorLogger(logger.Desugar()), opts...),
	))

	if cfg.Development {
		reflection.Register(s)
	}

	healthSrv := newHealthServer(hubState)
	healthpb.RegisterHealthServer(s, healthSrv)
	logger.Infow("listening for gRPC requests", "port", cfg.GRPCPort)

	go func() {
		if err := s.Serve(lis); err != nil {
			logger.Fatalw("failed to serve", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		healthSrv.Shutdown()
		s.GracefulStop()
	}()
}

// newHealthServer reports the process as serving and tracks the hub
// connection under HubHealthService. Without a hub connection the hub
// service is always serving.
func newHealthServer(hubState HubState) *health.Server {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	if hubState == nil {
		srv.SetServingStatus(HubHealthService, healthpb.HealthCheckResponse_SERVING)
		return srv
	}

	hubState.OnStateChange(func(state hub.State) {
		srv.SetServingStatus(HubHealthService, hubServingStatus(state))
	})
	srv.SetServingStatus(HubHealthService, hubServingStatus(hubState.State()))
	return srv
}

func hubServingStatus(state hub.State) healthpb.HealthCheckResponse_ServingStatus {
	if state == hub.StateConnected {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}
