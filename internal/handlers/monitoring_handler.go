package handlers

import (
	"encoding/json"
	"net/http"

	"casework-backend/internal/monitoring"
)

type MonitoringHandler struct {
	Collector *monitoring.Collector
	Hub       *monitoring.Hub
}

func NewMonitoringHandler(collector *monitoring.Collector, hub *monitoring.Hub) *MonitoringHandler {
	return &MonitoringHandler{Collector: collector, Hub: hub}
}

// SystemStats returns host and DB pool statistics
func (h *MonitoringHandler) SystemStats(w http.ResponseWriter, r *http.Request) {
	stats := h.Collector.Collect(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// WebSocket streams batch-job progress events
func (h *MonitoringHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	h.Hub.HandleWebSocket(w, r)
}
