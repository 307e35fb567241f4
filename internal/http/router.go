package http

import (
	"net/http"

	"casework-backend/internal/handlers"
	"casework-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	clientHandler *handlers.ClientHandler,
	visitHandler *handlers.VisitHandler,
	workerHandler *handlers.WorkerHandler,
	contractHandler *handlers.ContractHandler,
	mergeHistoryHandler *handlers.MergeHistoryHandler,
	statsHandler *handlers.StatsHandler,
	reportHandler *handlers.ReportHandler,
	dataQualityHandler *handlers.DataQualityHandler,
	monitoringHandler *handlers.MonitoringHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected API routes - TOTP enrollment
	totpAPI := r.PathPrefix("/api/totp").Subrouter()
	totpAPI.Use(authMiddleware.Authenticate)
	totpAPI.HandleFunc("/setup", authHandler.SetupTOTP).Methods("POST")
	totpAPI.HandleFunc("/verify", authHandler.VerifyTOTP).Methods("POST")

	// Protected API routes - Clients
	clientsAPI := r.PathPrefix("/api/clients").Subrouter()
	clientsAPI.Use(authMiddleware.Authenticate)
	clientsAPI.HandleFunc("", clientHandler.ListClients).Methods("GET")
	clientsAPI.HandleFunc("", clientHandler.CreateClient).Methods("POST")
	clientsAPI.HandleFunc("/{id}", clientHandler.GetClient).Methods("GET")
	clientsAPI.HandleFunc("/{id}", clientHandler.UpdateClient).Methods("PUT")
	clientsAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(clientHandler.DeleteClient)).ServeHTTP).Methods("DELETE")
	clientsAPI.HandleFunc("/{id}/visits", visitHandler.ListByClient).Methods("GET")
	clientsAPI.HandleFunc("/{id}/contracts", contractHandler.ListByClient).Methods("GET")
	clientsAPI.HandleFunc("/{id}/report", reportHandler.ClientReport).Methods("GET")

	// Protected API routes - Visits
	visitsAPI := r.PathPrefix("/api/visits").Subrouter()
	visitsAPI.Use(authMiddleware.Authenticate)
	visitsAPI.HandleFunc("", visitHandler.ListVisits).Methods("GET")
	visitsAPI.HandleFunc("", visitHandler.CreateVisit).Methods("POST")
	visitsAPI.HandleFunc("/{id}", visitHandler.GetVisit).Methods("GET")
	visitsAPI.HandleFunc("/{id}", visitHandler.UpdateVisit).Methods("PUT")
	visitsAPI.HandleFunc("/{id}", visitHandler.DeleteVisit).Methods("DELETE")

	// Protected API routes - Workers (admin only for mutations)
	workersAPI := r.PathPrefix("/api/workers").Subrouter()
	workersAPI.Use(authMiddleware.Authenticate)
	workersAPI.HandleFunc("", workerHandler.ListWorkers).Methods("GET")
	workersAPI.HandleFunc("/{id}", workerHandler.GetWorker).Methods("GET")
	workersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(workerHandler.UpdateWorker)).ServeHTTP).Methods("PUT")
	workersAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(workerHandler.DeleteWorker)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Contracts
	contractsAPI := r.PathPrefix("/api/contracts").Subrouter()
	contractsAPI.Use(authMiddleware.Authenticate)
	contractsAPI.HandleFunc("", contractHandler.CreateContract).Methods("POST")
	contractsAPI.HandleFunc("/{id}", contractHandler.GetContract).Methods("GET")
	contractsAPI.HandleFunc("/{id}", authMiddleware.RequireRole("admin")(http.HandlerFunc(contractHandler.DeleteContract)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Merge history (admin only)
	mergeAPI := r.PathPrefix("/api/merge-history").Subrouter()
	mergeAPI.Use(authMiddleware.Authenticate)
	mergeAPI.HandleFunc("", authMiddleware.RequireRole("admin")(http.HandlerFunc(mergeHistoryHandler.ListMerges)).ServeHTTP).Methods("GET")
	mergeAPI.HandleFunc("/{id}/reviewed", authMiddleware.RequireRole("admin")(http.HandlerFunc(mergeHistoryHandler.MarkReviewed)).ServeHTTP).Methods("PUT")

	// Protected API routes - Registry stats
	statsAPI := r.PathPrefix("/api/stats").Subrouter()
	statsAPI.Use(authMiddleware.Authenticate)
	statsAPI.HandleFunc("", statsHandler.RegistryStats).Methods("GET")

	// Protected API routes - Data-quality jobs (admin only)
	dqAPI := r.PathPrefix("/api/dataquality").Subrouter()
	dqAPI.Use(authMiddleware.Authenticate)
	dqAPI.HandleFunc("/geocode", authMiddleware.RequireRole("admin")(http.HandlerFunc(dataQualityHandler.StartGeocode)).ServeHTTP).Methods("POST")
	dqAPI.HandleFunc("/merge", authMiddleware.RequireRole("admin")(http.HandlerFunc(dataQualityHandler.StartMerge)).ServeHTTP).Methods("POST")
	dqAPI.HandleFunc("/normalize-visas", authMiddleware.RequireRole("admin")(http.HandlerFunc(dataQualityHandler.StartVisaNormalization)).ServeHTTP).Methods("POST")
	dqAPI.HandleFunc("/summary/{job}", dataQualityHandler.LastSummary).Methods("GET")

	// Protected API routes - Monitoring
	monitoringAPI := r.PathPrefix("/api/monitoring").Subrouter()
	monitoringAPI.Use(authMiddleware.Authenticate)
	monitoringAPI.HandleFunc("/stats", monitoringHandler.SystemStats).Methods("GET")

	// WebSocket upgrades cannot carry an Authorization header from the
	// browser, so the progress feed sits outside the auth subrouter.
	r.HandleFunc("/api/monitoring/ws", monitoringHandler.WebSocket)

	// Health endpoints (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
