package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"casework-backend/internal/config"
	"casework-backend/internal/db"
	"casework-backend/internal/dedupe"

	"go.uber.org/zap"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Enumerate duplicate pairs without merging")
	flag.Parse()

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

	engine := dedupe.NewEngine(dedupe.NewPostgresStore(pool), dedupe.NameStrategy{}, logger)

	if *dryRun {
		pairs, err := engine.PlanPairs(ctx)
		if err != nil {
			logger.Fatal("planning failed", zap.Error(err))
		}
		for _, pair := range pairs {
			logger.Info("would merge",
				zap.Int("survivor_id", pair.SurvivorID),
				zap.Int("loser_id", pair.LoserID),
				zap.String("match_key", pair.MatchKey))
		}
		logger.Info("dry run complete", zap.Int("pairs", len(pairs)))
		return
	}

	summary, err := engine.Run(ctx)
	if err != nil {
		if errors.Is(err, dedupe.ErrAlreadyRunning) {
			logger.Fatal("another reconciliation batch is already running")
		}
		logger.Fatal("batch aborted", zap.Error(err))
	}

	logger.Info("batch complete",
		zap.Int("pairs", summary.Pairs),
		zap.Int("merged", summary.Merged),
		zap.Int("failed", summary.Failed),
		zap.Int("visits_moved", summary.VisitsMoved),
		zap.Int("visits_discarded", summary.VisitsDiscarded))
}
