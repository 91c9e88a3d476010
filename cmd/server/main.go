package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tale-server/internal/config"
	"tale-server/internal/database"
	"tale-server/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.DatabaseURL == "" {
		zapLogger.Warn("DATABASE_URL not set; store operations will degrade")
	} else {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			zapLogger.Fatal("Failed to apply database migrations", zap.Error(err))
		}
		zapLogger.Info("Database migrations applied")
	}

	provider := database.NewProvider(cfg.DatabaseURL, zapLogger)
	defer provider.Close()

	// Warm the shared handle so a misconfigured store surfaces at startup
	// instead of on the first request. Failure is not fatal: repositories
	// degrade per operation.
	if _, err := provider.Acquire(context.Background()); err != nil {
		zapLogger.Warn("Store not reachable at startup", zap.Error(err))
	}

	// The request-routing layer is mounted on top of this bundle by the
	// embedding deployment; nothing below the repositories lives here.
	repos := database.NewRepositories(provider, cfg.OwnerOpenID, zapLogger)
	_ = repos

	zapLogger.Info("tale-server store layer ready", zap.String("env", cfg.Env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down")
}
