package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nmorales-dev/localchat-backend/api/routes"
	"github.com/nmorales-dev/localchat-backend/internal/accounts"
	"github.com/nmorales-dev/localchat-backend/internal/admin"
	"github.com/nmorales-dev/localchat-backend/internal/audit"
	"github.com/nmorales-dev/localchat-backend/internal/auth"
	"github.com/nmorales-dev/localchat-backend/internal/catalog"
	"github.com/nmorales-dev/localchat-backend/internal/chat"
	"github.com/nmorales-dev/localchat-backend/internal/tenant"
	"github.com/nmorales-dev/localchat-backend/pkg/auth/session"
	"github.com/nmorales-dev/localchat-backend/pkg/config"
	"github.com/nmorales-dev/localchat-backend/pkg/db"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
	"github.com/nmorales-dev/localchat-backend/pkg/metrics"
	"github.com/nmorales-dev/localchat-backend/pkg/migrate"
	"github.com/nmorales-dev/localchat-backend/pkg/ollama"
	"github.com/nmorales-dev/localchat-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		logg.Error(ctx, "failed to create data directory", err)
		os.Exit(1)
	}

	identityClient := mustOpen(ctx, cfg, logg, cfg.Storage.IdentityPath(), migrate.TargetIdentity)
	defer identityClient.Close()
	securityClient := mustOpen(ctx, cfg, logg, cfg.Storage.SecurityPath(), migrate.TargetSecurity)
	defer securityClient.Close()
	adminClient := mustOpen(ctx, cfg, logg, cfg.Storage.AdminPath(), migrate.TargetAdmin)
	defer adminClient.Close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(cfg.Catalog.Path, cfg.Catalog.RestrictedKeywords)
	if err != nil {
		logg.Error(ctx, "failed to load model catalog", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "models", cat.Len()), "model catalog loaded")

	runtime := ollama.New(cfg.Ollama)
	provisioner := tenant.NewProvisioner(cfg.Storage, logg)
	accountsRepo := accounts.NewRepository(identityClient.DB())
	recorder := audit.NewRecorder(securityClient.DB(), adminClient.DB(), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		Accounts:     accountsRepo,
		Sessions:     sessions,
		Recorder:     recorder,
		JWTConfig:    cfg.JWT,
		Password:     cfg.Password,
		DefaultModel: cfg.Ollama.DefaultModel,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(accountsRepo, recorder)
	if err != nil {
		logg.Error(ctx, "failed to create admin service", err)
		os.Exit(1)
	}

	chatRepo := chat.NewRepository()
	chatService := chat.NewService(chatRepo, runtime,
		metrics.NewInferenceMetrics(prometheus.DefaultRegisterer), logg)

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		IdentityDB:  identityClient,
		SecurityDB:  securityClient,
		AdminDB:     adminClient,
		Redis:       redisClient,
		Runtime:     runtime,
		Sessions:    sessions,
		Catalog:     cat,
		AuthService: authService,
		Accounts:    accountsRepo,
		ChatRepo:    chatRepo,
		ChatService: chatService,
		AdminPanel:  adminService,
		Resolver:    accountsRepo,
		Provisioner: provisioner,
		Recorder:    recorder,
		HTTPMetrics: metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
	})

	addr := cfg.App.Addr()
	serveCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(serveCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-stopCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(serveCtx, "server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(serveCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(serveCtx, "api server stopped")
}

func mustOpen(ctx context.Context, cfg *config.Config, logg *logger.Logger, path string, target migrate.Target) *db.Client {
	client, err := db.Open(ctx, path, cfg.Storage, logg)
	if err != nil {
		logg.Error(logg.WithField(ctx, "db_path", path), "failed to open database", err)
		os.Exit(1)
	}
	sqlDB, err := client.SQLDB()
	if err != nil {
		logg.Error(ctx, "failed to get sql handle", err)
		os.Exit(1)
	}
	if err := migrate.Up(ctx, sqlDB, target); err != nil {
		logg.Error(logg.WithField(ctx, "db_path", path), "failed to run migrations", err)
		os.Exit(1)
	}
	return client
}
