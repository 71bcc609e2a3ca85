package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/aetherboard/aetherboard/internal/api/http"
	"github.com/aetherboard/aetherboard/internal/api/http/handlers"
	"github.com/aetherboard/aetherboard/internal/assistant"
	"github.com/aetherboard/aetherboard/internal/auth"
	"github.com/aetherboard/aetherboard/internal/chat"
	"github.com/aetherboard/aetherboard/internal/events"
	"github.com/aetherboard/aetherboard/internal/observability"
	"github.com/aetherboard/aetherboard/internal/persistence"
	"github.com/aetherboard/aetherboard/internal/realtime"
	"github.com/aetherboard/aetherboard/internal/repository"
	"github.com/aetherboard/aetherboard/internal/service"
	"github.com/aetherboard/aetherboard/internal/worker"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and realtime server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	cfg, logger := rt.cfg, rt.logger

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, rt.pg.PoolHandle(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	metrics := observability.NewMetrics()
	readiness := map[string]handlers.Pinger{"postgres": rt.pg}

	var (
		broker      realtime.Broker
		revocations auth.RevocationStore
	)
	switch cfg.Realtime.Broker {
	case "redis":
		rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer rdb.Close()
		readiness["redis"] = rdb
		broker = realtime.NewRedisBroker(rdb.Client, cfg.Realtime.BufferSize, logger, metrics)
		revocations = auth.NewRedisRevocationStore(rdb.Client)
	default:
		broker = realtime.NewMemoryBroker(cfg.Realtime.BufferSize, logger, metrics)
		revocations = auth.NewMemoryRevocationStore()
	}
	defer broker.Close() //nolint:errcheck

	pool := rt.pg.PoolHandle()
	profileRepo := repository.NewProfileRepository(pool)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		ProfileRepo: profileRepo,
		Revocations: revocations,
		Logger:      logger,
	})
	boardService := service.NewBoardService(service.BoardDependencies{
		BoardRepo: repository.NewBoardRepository(pool),
		TaskRepo:  repository.NewTaskRepository(pool),
		Broker:    broker,
		Logger:    logger,
	})
	timesheetService := service.NewTimesheetService(service.TimesheetDependencies{
		TimesheetRepo: repository.NewTimesheetRepository(pool),
		Dispatcher:    dispatcher,
		Config:        cfg.Timesheet,
		Logger:        logger,
	})
	payrollService := service.NewPayrollService(service.PayrollDependencies{
		PayrollRepo: repository.NewPayrollRepository(pool),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  repository.NewTicketRepository(pool),
		CommentRepo: repository.NewTicketCommentRepository(pool),
		ProfileRepo: profileRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	messageService := service.NewMessageService(service.MessageDependencies{
		MessageRepo: repository.NewMessageRepository(pool),
		Broker:      broker,
		Rooms:       cfg.Chat.Rooms,
		Logger:      logger,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: repository.NewNotificationRepository(pool),
		Dispatcher:       dispatcher,
		Broker:           broker,
		Logger:           logger,
	})
	worker.StartNotificationWorker(notificationService)

	catalog, err := assistant.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("load assistant intents: %w", err)
	}
	bot := assistant.New(cfg.Assistant, assistant.Dependencies{
		Catalog:    catalog,
		Timesheets: timesheetService,
		Logger:     logger,
	})

	// Sessions outlive the request that upgraded them; they end with the server.
	sessionCtx, endSessions := context.WithCancel(context.WithoutCancel(ctx))
	defer endSessions()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness, metrics),
		Auth:       handlers.NewAuthHandler(authService, logger),
		Boards:     handlers.NewBoardHandler(boardService),
		Timesheets: handlers.NewTimesheetHandler(timesheetService),
		Payroll:    handlers.NewPayrollHandler(payrollService),
		Tickets:    handlers.NewTicketsHandler(ticketService),
		Messages:   handlers.NewMessageHandler(messageService),
		Workspace: handlers.NewWorkspaceHandler(
			notificationService,
			service.NewDocumentService(repository.NewDocumentRepository(pool)),
		),
		Analytics: handlers.NewAnalyticsHandler(
			service.NewAnalyticsService(repository.NewFinanceRepository(pool), nil),
			service.NewCandidateService(repository.NewCandidateRepository(pool)),
			service.NewFeedbackService(repository.NewFeedbackRepository(pool)),
		),
		Assistant: handlers.NewAssistantHandler(bot),
		Realtime: handlers.NewRealtimeHandler(sessionCtx, chat.SessionDependencies{
			Messages: messageService,
			Boards:   boardService,
			Broker:   broker,
			Presence: chat.NewPresenceRegistry(),
			Logger:   logger,
		}, logger),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), profileRepo, revocations),
		ServiceRoleKey: cfg.Auth.ServiceRoleKey,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			return fmt.Errorf("fiber listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return worker.RunBacklogSweeper(gctx, boardService, cfg.Board.SweepInterval(), logger)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		endSessions()
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
