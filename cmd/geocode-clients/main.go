package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"casework-backend/internal/config"
	"casework-backend/internal/db"
	"casework-backend/internal/geocode"
	"casework-backend/internal/repositories"

	"go.uber.org/zap"
)

func main() {
	recoverPass := flag.Bool("recover", false, "Re-try records that previously failed every variant")
	flag.Parse()

	cfg := config.Load()

	pool := db.Connect(cfg)
	defer pool.Close()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	client, err := geocode.NewNominatimClient(
		cfg.Geocoder.BaseURL,
		cfg.Geocoder.UserAgent,
		cfg.Geocoder.CountryCode,
		cfg.Geocoder.Timeout,
	)
	if err != nil {
		logger.Fatal("geocoder init failed", zap.Error(err))
	}

	store := geocode.NewPostgresStore(repositories.NewClientRepository(pool))
	resolver := geocode.NewResolver(store, client, logger)
	resolver.CountrySuffix = cfg.Geocoder.CountrySuffix
	resolver.ClientDelay = cfg.Geocoder.ClientDelay
	resolver.VariantDelay = cfg.Geocoder.VariantDelay

	// Ctrl-C stops cleanly between clients
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var summary *geocode.Summary
	if *recoverPass {
		summary, err = resolver.RunRecoveryPass(ctx)
	} else {
		summary, err = resolver.RunBasicPass(ctx)
	}
	if err != nil {
		logger.Fatal("pass aborted",
			zap.Error(err),
			zap.Int("processed", summary.Processed))
	}

	logger.Info("pass complete",
		zap.Bool("recovery", *recoverPass),
		zap.Int("processed", summary.Processed),
		zap.Int("resolved", summary.Resolved),
		zap.Int("failed", summary.Failed),
		zap.Int("errors", summary.Errors))
}
