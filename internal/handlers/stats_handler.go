package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"casework-backend/internal/services"
)

type StatsHandler struct {
	Service *services.StatsService
}

func NewStatsHandler(s *services.StatsService) *StatsHandler {
	return &StatsHandler{Service: s}
}

// RegistryStats returns aggregate counts over the client registry
func (h *StatsHandler) RegistryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.RegistryStats(context.Background())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
