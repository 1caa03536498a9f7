package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
	"permission-sync/internal/config"
	"permission-sync/internal/hub"
	"permission-sync/internal/kafka/notifier"
	"permission-sync/internal/repository"
	"permission-sync/internal/service"
)

func Run(cfg *config.Config, logger *zap.SugaredLogger) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	wg := &sync.WaitGroup{}

	if cfg.Mode == config.ModeHub {
		runHub(ctx, logger, wg, cfg)
		wg.Wait()
		logger.Info("shutting down")
		return
	}

	delayedCtx, repoCancel := context.WithCancel(context.Background())
	delayedWg := &sync.WaitGroup{}

	repo, err := newRepository(delayedCtx, logger, delayedWg, cfg)
	if err != nil {
		logger.Fatalw("failed to create repository", "error", err)
	}

	notif := notifier.NewNoopNotifier()
	if cfg.Kafka.Enabled {
		notif = notifier.NewKafkaNotifier(delayedCtx, delayedWg, logger, cfg.Kafka)
	}

	node := NewNode(logger, cfg, repo, notif)
	if err := node.Start(ctx, wg); err != nil {
		logger.Fatalw("failed to start node", "error", err)
	}

	service.RunServices(ctx, logger, wg, cfg, node.Hub)
	logger.Infow("node started", "mode", cfg.Mode, "serverName", cfg.ServerName)

	wg.Wait()
	logger.Info("shutting down")

	if err := node.Shutdown(delayedCtx); err != nil {
		logger.Errorw("failed to flush sessions", "error", err)
	}

	logger.Info("shutting down delayed services")
	repoCancel()
	delayedWg.Wait()
}

func newRepository(ctx context.Context, logger *zap.SugaredLogger, wg *sync.WaitGroup, cfg *config.Config) (repository.Repository, error) {
	if cfg.Store == "mongo" {
		return repository.NewMongoRepository(ctx, logger, wg, cfg.MongoDB)
	}
	return repository.NewAPIRepository(logger, cfg.API), nil
}

func runHub(ctx context.Context, logger *zap.SugaredLogger, wg *sync.WaitGroup, cfg *config.Config) {
	r := hub.NewRelay(logger, cfg.API.Key)

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := r.ListenAndServe(ctx, uint16(cfg.Hub.Port)); err != nil {
			logger.Fatalw("failed to serve hub relay", "error", err)
		}
	}()

	service.RunServices(ctx, logger, wg, cfg, nil)
}
