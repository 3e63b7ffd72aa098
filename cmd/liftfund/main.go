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

	"github.com/lift-alumni/liftfund/internal/app"
	"github.com/lift-alumni/liftfund/internal/audit"
	"github.com/lift-alumni/liftfund/internal/auth"
	"github.com/lift-alumni/liftfund/internal/ledger"
	"github.com/lift-alumni/liftfund/internal/observability"
	"github.com/lift-alumni/liftfund/internal/platform/cache"
	"github.com/lift-alumni/liftfund/internal/platform/db"
	"github.com/lift-alumni/liftfund/internal/rbac"
	"github.com/lift-alumni/liftfund/internal/settings"
	"github.com/lift-alumni/liftfund/internal/shared"
	"github.com/lift-alumni/liftfund/internal/users"
	"github.com/lift-alumni/liftfund/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(cfg.MigrationsURL, cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "liftfund_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	rbacMiddleware := rbac.Middleware{Logger: logger}
	metrics := observability.NewMetrics()

	recorder := audit.NewRecorder(pool)
	auditService := audit.NewService(pool)
	auditHandler := audit.NewHandler(logger, auditService)

	settingsRepo := settings.NewPgRepository(pool)
	settingsService := settings.NewService(settingsRepo, recorder, logger)
	settingsHandler := settings.NewHandler(logger, settingsService, rbacMiddleware)

	ledgerRepo := ledger.NewPgRepository(pool, recorder)
	ledgerService := ledger.NewService(ledgerRepo, settingsService, logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService, auditService, rbacMiddleware)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, logger)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	authService := auth.NewService(usersRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, rbacMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		SessionManager:  sessionManager,
		Pool:            pool,
		RBACMiddleware:  rbacMiddleware,
		Metrics:         metrics,
		AuthHandler:     authHandler,
		LedgerHandler:   ledgerHandler,
		SettingsHandler: settingsHandler,
		AuditHandler:    auditHandler,
		UsersHandler:    usersHandler,
		JobsHandler:     jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
