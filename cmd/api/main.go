package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/feedbackhub/feedback-tracker/internal/api/http"
	"github.com/feedbackhub/feedback-tracker/internal/api/http/handlers"
	"github.com/feedbackhub/feedback-tracker/internal/auth"
	"github.com/feedbackhub/feedback-tracker/internal/config"
	"github.com/feedbackhub/feedback-tracker/internal/events"
	"github.com/feedbackhub/feedback-tracker/internal/export"
	"github.com/feedbackhub/feedback-tracker/internal/observability"
	"github.com/feedbackhub/feedback-tracker/internal/persistence"
	"github.com/feedbackhub/feedback-tracker/internal/repository"
	"github.com/feedbackhub/feedback-tracker/internal/service"
	"github.com/feedbackhub/feedback-tracker/internal/worker"
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
	userRepo := repository.NewUserRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)
	exportLogRepo := repository.NewExportLogRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	fileStore := persistence.NewFileStore(cfg.Storage.AttachmentsDir, logger)

	authService := service.NewAuthService(*cfg, userRepo, resetRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CategoryRepo:   categoryRepo,
		UserRepo:       userRepo,
		CommentRepo:    commentRepo,
		AttachmentRepo: attachmentRepo,
		HistoryRepo:    historyRepo,
		Dispatcher:     dispatcher,
		Files:          fileStore,
	})
	categoryService := service.NewCategoryService(categoryRepo, ticketRepo)
	analyticsService := service.NewAnalyticsService(analyticsRepo, redis.Client, cfg.Analytics.CacheTTL(), logger)
	exportService := service.NewExportService(ticketRepo, exportLogRepo, export.NewCSVRenderer(), logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService),
		Categories:     handlers.NewCategoriesHandler(categoryService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		Exports:        handlers.NewExportsHandler(exportService),
		AuthMiddleware: authMiddleware,
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
