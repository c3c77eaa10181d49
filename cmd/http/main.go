package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"cryptowallet/config"
	httpserver "cryptowallet/internal/adapters/http/server"
	loggeradapter "cryptowallet/internal/adapters/logger"
	"cryptowallet/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	// Local .env is optional
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(getEnv("CONFIG_PATH", "portfolio.toml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on environment
	logger, err := loggeradapter.NewLogger(cfg.IsDevelopment(), cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting application",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", "1.0.0"),
	)

	application, err := app.New(context.Background(), cfg, logger, nil)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Failed to close application", zap.Error(err))
		}
	}()

	if err := application.StartScheduler(); err != nil {
		logger.Fatal("Failed to start price sync scheduler", zap.Error(err))
	}

	server := httpserver.NewServer(application.ServerConfig(), application.HandlerAdapter(), logger)

	logger.Info("Server configured",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("price_provider", cfg.Price.Provider),
		zap.String("sync_schedule", cfg.Price.SyncSchedule),
	)

	if err := server.StartWithGracefulShutdown(); err != nil {
		logger.Error("Server failed", zap.Error(err))
		return
	}

	logger.Info("Application stopped gracefully")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
