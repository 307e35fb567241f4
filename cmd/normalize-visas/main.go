package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"casework-backend/internal/config"
	"casework-backend/internal/dataquality"
	"casework-backend/internal/db"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	normalizer := dataquality.NewVisaNormalizer(dataquality.NewPostgresStore(pool), logger)
	summary, err := normalizer.Run(ctx)
	if err != nil {
		logger.Fatal("job aborted", zap.Error(err))
	}

	logger.Info("job complete",
		zap.Int("scanned", summary.Scanned),
		zap.Int("normalized", summary.Normalized),
		zap.Int("unrecognized", summary.Unrecognized),
		zap.Int("errors", summary.Errors))
}
