package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/project-service/internal/api/http"
	"github.com/spec-kit/project-service/internal/api/http/handlers"
	"github.com/spec-kit/project-service/internal/auth"
	"github.com/spec-kit/project-service/internal/cache"
	"github.com/spec-kit/project-service/internal/config"
	"github.com/spec-kit/project-service/internal/events"
	"github.com/spec-kit/project-service/internal/observability"
	"github.com/spec-kit/project-service/internal/persistence"
	"github.com/spec-kit/project-service/internal/repository"
	"github.com/spec-kit/project-service/internal/service"
	"github.com/spec-kit/project-service/internal/worker"
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
	profileRepo := repository.NewProfileRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)

	profileCache := cache.NewProfileCache(redis.Client, cfg.Redis.ProfileTTL(), logger)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:     userRepo,
		ProfileRepo:  profileRepo,
		ProfileCache: profileCache,
	})
	projectService := service.NewProjectService(service.ProjectDependencies{
		ProjectRepo: projectRepo,
		MemberRepo:  memberRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:    taskRepo,
		CommentRepo: commentRepo,
		MemberRepo:  memberRepo,
		Dispatcher:  dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		MessageRepo:    messageRepo,
		DepartmentRepo: departmentRepo,
		Dispatcher:     dispatcher,
	})
	analyticsService := service.NewAnalyticsService()

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), profileRepo, profileCache, logger)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Projects:       handlers.NewProjectsHandler(projectService),
		Tasks:          handlers.NewTasksHandler(taskService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Analytics:      handlers.NewAnalyticsHandler(ticketService, analyticsService, cfg.Retry.MaxAttempts, cfg.Retry.Backoff()),
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
