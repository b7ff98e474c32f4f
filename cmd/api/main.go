package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/payroll-registry/internal/api/http"
	"github.com/spec-kit/payroll-registry/internal/api/http/handlers"
	"github.com/spec-kit/payroll-registry/internal/auth"
	"github.com/spec-kit/payroll-registry/internal/config"
	"github.com/spec-kit/payroll-registry/internal/events"
	"github.com/spec-kit/payroll-registry/internal/observability"
	"github.com/spec-kit/payroll-registry/internal/persistence"
	"github.com/spec-kit/payroll-registry/internal/repository"
	"github.com/spec-kit/payroll-registry/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	store, err := openStore(cfg, pg, redis, logger)
	if err != nil {
		logger.Fatal("failed to open registry store", zap.Error(err))
	}
	defer store.Close() //nolint:errcheck

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification, service.NotificationSinks{
		Metrics:     metrics,
		StreamRedis: redis.Client,
		StreamName:  cfg.Redis.EventStream,
	})
	notifications.RegisterHandlers()

	registry := service.NewRegistryService(service.RegistryDependencies{
		Store:      store,
		Authorizer: auth.ContextAuthorizer{},
		Clock:      service.NewSystemClock(),
		Dispatcher: dispatcher,
		Logger:     logger.Named("registry"),
	})

	var challenges repository.ChallengeRepository
	if redis.Enabled() {
		challenges = repository.NewRedisChallengeRepository(redis.Client, cfg.Redis.KeyPrefix)
	} else {
		challenges = repository.NewMemoryChallengeRepository()
	}
	authService := service.NewAuthService(*cfg, service.AuthDependencies{ChallengeRepo: challenges})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	dependencies := map[string]handlers.Pinger{"store": store}
	if pg.Enabled() {
		dependencies["postgres"] = pg
	}
	if redis.Enabled() {
		dependencies["redis"] = redis
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Auth:           handlers.NewAuthHandler(authService),
		Registry:       handlers.NewRegistryHandler(registry),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Backend))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// openStore selects the key-value backend named by STORE_BACKEND.
func openStore(cfg *config.Config, pg *persistence.Postgres, redis *persistence.Redis, logger *zap.Logger) (repository.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory store; registry state is lost on restart")
		return repository.NewMemoryStore(), nil
	case config.BackendLevelDB:
		db, err := persistence.OpenLevelDB(cfg.Store.DataDir, logger)
		if err != nil {
			return nil, err
		}
		return repository.NewLevelDBStore(db), nil
	case config.BackendBadger:
		db, err := persistence.OpenBadger(cfg.Store.DataDir, logger)
		if err != nil {
			return nil, err
		}
		return repository.NewBadgerStore(db), nil
	case config.BackendRedis:
		if !redis.Enabled() {
			return nil, fmt.Errorf("redis backend selected but redis is not configured")
		}
		return repository.NewRedisStore(redis.Client, cfg.Redis.KeyPrefix), nil
	case config.BackendPostgres:
		if !pg.Enabled() {
			return nil, fmt.Errorf("postgres backend selected but postgres is not configured")
		}
		return repository.NewPostgresStore(pg.PoolHandle()), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
