package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"casework-backend/internal/auth"
	"casework-backend/internal/backup"
	"casework-backend/internal/cache"
	"casework-backend/internal/config"
	"casework-backend/internal/database"
	"casework-backend/internal/db"
	"casework-backend/internal/handlers"
	"casework-backend/internal/health"
	h "casework-backend/internal/http"
	"casework-backend/internal/middleware"
	"casework-backend/internal/monitoring"
	"casework-backend/internal/repositories"
	"casework-backend/internal/services"

	"go.uber.org/zap"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (stats and job summaries uncached)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Run database migrations
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Structured logger for the batch jobs
	jobLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build job logger: %v", err)
	}
	defer jobLogger.Sync()

	// Initialize health checker
	healthChecker := health.NewHealthChecker(pool)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	clientRepo := repositories.NewClientRepository(pool)
	visitRepo := repositories.NewVisitRepository(pool)
	workerRepo := repositories.NewWorkerRepository(pool)
	contractRepo := repositories.NewContractRepository(pool)
	mergeLogRepo := repositories.NewMergeLogRepository(pool)

	// Initialize monitoring
	hub := monitoring.NewHub()
	collector := monitoring.NewCollector(pool)

	// Initialize services
	workerService := services.NewWorkerService(workerRepo, jwtManager)
	clientService := services.NewClientService(clientRepo)
	visitService := services.NewVisitService(visitRepo, clientRepo)
	contractService := services.NewContractService(contractRepo, clientRepo)
	statsService := services.NewStatsService(clientRepo)
	reportService := services.NewReportService(clientRepo, visitRepo, contractRepo)
	jobsService := services.NewJobsService(pool, cfg, hub, jobLogger)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, workerRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(workerService)
	clientHandler := handlers.NewClientHandler(clientService)
	visitHandler := handlers.NewVisitHandler(visitService)
	workerHandler := handlers.NewWorkerHandler(workerService)
	contractHandler := handlers.NewContractHandler(contractService)
	mergeHistoryHandler := handlers.NewMergeHistoryHandler(mergeLogRepo)
	statsHandler := handlers.NewStatsHandler(statsService)
	reportHandler := handlers.NewReportHandler(reportService)
	dataQualityHandler := handlers.NewDataQualityHandler(jobsService)
	monitoringHandler := handlers.NewMonitoringHandler(collector, hub)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	// Start the nightly backup scheduler
	backupScheduler := backup.NewScheduler(cfg)
	backupScheduler.Start()
	defer backupScheduler.Stop()

	router := h.NewRouter(
		authHandler,
		clientHandler,
		visitHandler,
		workerHandler,
		contractHandler,
		mergeHistoryHandler,
		statsHandler,
		reportHandler,
		dataQualityHandler,
		monitoringHandler,
		healthHandler,
		authMiddleware,
	)

	// Wrap with panic recovery and metrics middleware
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
