package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/member-auth/internal/api/http"
	"github.com/spec-kit/member-auth/internal/api/http/handlers"
	"github.com/spec-kit/member-auth/internal/auth"
	"github.com/spec-kit/member-auth/internal/config"
	"github.com/spec-kit/member-auth/internal/events"
	"github.com/spec-kit/member-auth/internal/observability"
	"github.com/spec-kit/member-auth/internal/persistence"
	"github.com/spec-kit/member-auth/internal/repository"
	"github.com/spec-kit/member-auth/internal/service"
	"github.com/spec-kit/member-auth/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var members repository.MemberRepository
	if pg.Enabled() {
		members = repository.NewMemberRepository(pg.PoolHandle())
	} else {
		members = repository.NewMemoryMemberRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		Members:    members,
		Attempts:   repository.NewLoginAttemptRepository(redis.Client),
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	metrics := observability.NewMetrics()
	authFilter, err := auth.NewRequestAuthFilter(auth.FilterConfig{
		Tokens:        authService.TokenManager(),
		Refresh:       authService.RefreshStore(),
		Members:       members,
		AccessHeader:  cfg.Auth.AccessHeader,
		RefreshHeader: cfg.Auth.RefreshHeader,
		LoginPath:     cfg.Auth.LoginPath,
		Logger:        logger.Named("auth_filter"),
		Metrics:       metrics,
	})
	if err != nil {
		logger.Fatal("failed to build auth filter", zap.Error(err))
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth: handlers.NewAuthHandler(authService, handlers.AuthHandlerConfig{
			AccessHeader:  cfg.Auth.AccessHeader,
			RefreshHeader: cfg.Auth.RefreshHeader,
			LoginNameKey:  cfg.Auth.LoginNameKey,
			PasswordKey:   cfg.Auth.PasswordKey,
		}),
		Members:    handlers.NewMembersHandler(authService),
		AuthFilter: authFilter,
		LoginPath:  cfg.Auth.LoginPath,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
