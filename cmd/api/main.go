package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/helpdesk-central/ticket-hub/internal/api/http"
	"github.com/helpdesk-central/ticket-hub/internal/api/http/handlers"
	"github.com/helpdesk-central/ticket-hub/internal/auth"
	"github.com/helpdesk-central/ticket-hub/internal/config"
	"github.com/helpdesk-central/ticket-hub/internal/events"
	"github.com/helpdesk-central/ticket-hub/internal/observability"
	"github.com/helpdesk-central/ticket-hub/internal/persistence"
	"github.com/helpdesk-central/ticket-hub/internal/repository"
	"github.com/helpdesk-central/ticket-hub/internal/service"
	"github.com/helpdesk-central/ticket-hub/internal/worker"
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

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	platformRepo := repository.NewPlatformRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(dispatcher, logger, cfg.Notification)

	intakeService := service.NewIntakeService(service.IntakeDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		AgentRepo:   agentRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
	})
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AgentRepo: agentRepo,
	})
	platformService := service.NewPlatformService(platformRepo, redis.Client)

	apiKeyMiddleware := auth.NewAPIKeyMiddleware(platformRepo, redis.Client, cfg.Intake.PlatformCacheTTL(), logger)
	staffMiddleware := auth.NewStaffMiddleware(authService.TokenManager(), agentRepo)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:           handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Intake:           handlers.NewIntakeHandler(intakeService),
		Tickets:          handlers.NewTicketsHandler(ticketService),
		Auth:             handlers.NewAuthHandler(authService),
		Agents:           handlers.NewAgentsHandler(authService),
		Platforms:        handlers.NewPlatformsHandler(platformService),
		APIKeyMiddleware: apiKeyMiddleware,
		StaffMiddleware:  staffMiddleware,
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
