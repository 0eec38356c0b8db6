package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/campus-kit/complaint-service/internal/api/http"
	"github.com/campus-kit/complaint-service/internal/api/http/handlers"
	"github.com/campus-kit/complaint-service/internal/auth"
	"github.com/campus-kit/complaint-service/internal/config"
	"github.com/campus-kit/complaint-service/internal/events"
	"github.com/campus-kit/complaint-service/internal/observability"
	"github.com/campus-kit/complaint-service/internal/persistence"
	"github.com/campus-kit/complaint-service/internal/repository"
	"github.com/campus-kit/complaint-service/internal/service"
	"github.com/campus-kit/complaint-service/internal/worker"
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
	studentRepo := repository.NewStudentRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	complaintRepo := repository.NewComplaintRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	auditRepo := repository.NewAuditLogRepository(pool)
	ratingRepo := repository.NewRatingRepository(pool)
	presetRepo := repository.NewFilterPresetRepository(redis.Client)
	txRunner := repository.NewTxRunner(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		StudentRepo:       studentRepo,
		StaffRepo:         staffRepo,
		PasswordResetRepo: resetRepo,
	})
	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		CommentRepo:   commentRepo,
		AuditRepo:     auditRepo,
		TxRunner:      txRunner,
		Dispatcher:    dispatcher,
	})
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		ComplaintRepo: complaintRepo,
		AuditRepo:     auditRepo,
		TxRunner:      txRunner,
		Dispatcher:    dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		ComplaintRepo: complaintRepo,
		StaffRepo:     staffRepo,
		AuditRepo:     auditRepo,
		TxRunner:      txRunner,
		Dispatcher:    dispatcher,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		ComplaintRepo: complaintRepo,
		CommentRepo:   commentRepo,
		AuditRepo:     auditRepo,
		TxRunner:      txRunner,
		Dispatcher:    dispatcher,
	})
	ratingService := service.NewRatingService(service.RatingDependencies{
		ComplaintRepo: complaintRepo,
		RatingRepo:    ratingRepo,
		AuditRepo:     auditRepo,
		TxRunner:      txRunner,
		Dispatcher:    dispatcher,
	})
	staffService := service.NewStaffService(*cfg, staffRepo)
	exportService := service.NewExportService(complaintRepo)
	presetService := service.NewPresetService(presetRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), studentRepo, staffRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Students:        handlers.NewStudentsHandler(authService),
		Staff:           handlers.NewStaffHandler(authService, staffService),
		Complaints:      handlers.NewComplaintsHandler(complaintService, lifecycleService, commentService, ratingService),
		StaffComplaints: handlers.NewStaffComplaintsHandler(complaintService, lifecycleService, assignmentService, commentService, exportService),
		Presets:         handlers.NewPresetsHandler(presetService),
		AuthMiddleware:  authMiddleware,
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
