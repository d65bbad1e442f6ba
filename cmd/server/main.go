package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ritik2105/market-dashboard/internal/app"
	"github.com/ritik2105/market-dashboard/internal/config"
	"github.com/ritik2105/market-dashboard/internal/dataset"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.LoadFromEnv()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		var loadErr *dataset.LoadError
		if errors.As(err, &loadErr) {
			logger.Fatal("Failed to load dataset",
				zap.String("path", loadErr.Path),
				zap.Int("line", loadErr.Line),
				zap.String("column", loadErr.Column),
				zap.Error(loadErr.Err))
		}
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		logger.Fatal("Application exited with error", zap.Error(err))
	}
}
