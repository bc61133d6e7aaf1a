package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/halcyon-edu/campus/internal/app"
	"github.com/halcyon-edu/campus/internal/assignments"
	"github.com/halcyon-edu/campus/internal/audit"
	"github.com/halcyon-edu/campus/internal/legacy"
	"github.com/halcyon-edu/campus/internal/permissions"
	"github.com/halcyon-edu/campus/internal/platform/cache"
	"github.com/halcyon-edu/campus/internal/platform/db"
	"github.com/halcyon-edu/campus/internal/rbac"
	"github.com/halcyon-edu/campus/internal/roles"
	"github.com/halcyon-edu/campus/internal/students"
	"github.com/halcyon-edu/campus/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, catalog cache degraded", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	auditor := audit.NewPGRecorder(pool, logger)
	auditService := audit.NewService(audit.NewRepository(pool))

	catalogCache := permissions.NewCache(redisClient, cfg.CatalogCacheTTL)
	catalogService := permissions.NewService(permissions.NewRepository(pool), catalogCache, auditor)

	assignmentRepo := assignments.NewRepository(pool)
	assignmentService := assignments.NewService(assignmentRepo, auditor)

	engine := rbac.NewEngine(assignmentRepo, rbac.Config{
		SuperuserRole: cfg.SuperuserRole,
		CheckTimeout:  cfg.AuthzCheckTimeout,
	}, logger)
	rbacMW := rbac.Middleware{Authorizer: engine}

	mirrorPublisher := legacy.NewAsynqPublisher(asynqClient, jobs.QueueDefault)
	roleService := roles.NewService(roles.NewRepository(pool), catalogService,
		cfg.EssentialPermissions, mirrorPublisher, auditor, logger)

	studentRepo := students.NewRepository(pool)

	router := app.NewRouter(app.RouterParams{
		Config:             cfg,
		PermissionsHandler: permissions.NewHandler(logger, catalogService, rbacMW),
		RolesHandler:       roles.NewHandler(logger, roleService, rbacMW),
		AssignmentsHandler: assignments.NewHandler(logger, assignmentService, rbacMW),
		AuditHandler:       audit.NewHandler(logger, auditService, rbacMW),
		StudentsHandler:    students.NewHandler(logger, studentRepo, engine),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
