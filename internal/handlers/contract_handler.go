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

type ContractHandler struct {
	Service *services.ContractService
}

func NewContractHandler(s *services.ContractService) *ContractHandler {
	return &ContractHandler{Service: s}
}

func (h *ContractHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req models.CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	workerID, _ := middleware.GetWorkerIDFromContext(r.Context())

	contract, err := h.Service.CreateContract(context.Background(), &req, workerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(contract)
}

func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	contract, err := h.Service.GetContract(context.Background(), id)
	if err != nil {
		http.Error(w, "Contract not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contract)
}

func (h *ContractHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	contracts, err := h.Service.ListByClient(context.Background(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(contracts)
}

func (h *ContractHandler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	if err := h.Service.DeleteContract(context.Background(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
