package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"casework-backend/internal/middleware"
	"casework-backend/internal/models"
	"casework-backend/internal/services"

	"github.com/gorilla/mux"
)

type VisitHandler struct {
	Service *services.VisitService
}

func NewVisitHandler(s *services.VisitService) *VisitHandler {
	return &VisitHandler{Service: s}
}

func (h *VisitHandler) CreateVisit(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	workerID, _ := middleware.GetWorkerIDFromContext(r.Context())

	visit, err := h.Service.CreateVisit(context.Background(), &req, workerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(visit)
}

func (h *VisitHandler) GetVisit(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	visit, err := h.Service.GetVisit(context.Background(), id)
	if err != nil {
		http.Error(w, "Visit not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(visit)
}

func (h *VisitHandler) ListVisits(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	visits, err := h.Service.ListVisits(context.Background(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(visits)
}

func (h *VisitHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	visits, err := h.Service.ListByClient(context.Background(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(visits)
}

func (h *VisitHandler) UpdateVisit(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	var req models.UpdateVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	visit, err := h.Service.UpdateVisit(context.Background(), id, &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(visit)
}

func (h *VisitHandler) DeleteVisit(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	if err := h.Service.DeleteVisit(context.Background(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
