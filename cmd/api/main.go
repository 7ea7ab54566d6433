package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/swiftlogistics/driver-service/internal/api/http"
	"github.com/swiftlogistics/driver-service/internal/api/http/handlers"
	"github.com/swiftlogistics/driver-service/internal/auth"
	"github.com/swiftlogistics/driver-service/internal/config"
	"github.com/swiftlogistics/driver-service/internal/events"
	"github.com/swiftlogistics/driver-service/internal/observability"
	"github.com/swiftlogistics/driver-service/internal/persistence"
	"github.com/swiftlogistics/driver-service/internal/repository"
	"github.com/swiftlogistics/driver-service/internal/service"
	"github.com/swiftlogistics/driver-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	dependencies := map[string]handlers.Pinger{}

	var driverRepo repository.DriverRepository
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		driverRepo = repository.NewDriverRepository(pool, cfg.Postgres.TxIsolation)
		dependencies["postgres"] = pg
	} else {
		logger.Warn("using in-memory driver store; data is lost on restart")
		driverRepo = repository.NewMemoryDriverRepository()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var driverCache repository.DriverCache
	if redis.Enabled() {
		driverCache = repository.NewRedisDriverCache(redis.Client, cfg.Redis.CacheTTL())
		dependencies["redis"] = redis
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger, metrics))

	registrationService := service.NewRegistrationService(cfg.Registration, service.RegistrationDependencies{
		Repo:       driverRepo,
		Hasher:     auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Cache:      driverCache,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	var tokens *auth.TokenManager
	if cfg.Auth.JWTSecret != "" {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	} else {
		logger.Warn("AUTH_JWT_SECRET not set; driver lookup routes are unauthenticated")
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.CORSAllowOrigins)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Drivers:        handlers.NewDriversHandler(registrationService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
