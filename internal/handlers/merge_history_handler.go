package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"casework-backend/internal/repositories"

	"github.com/gorilla/mux"
)

// MergeHistoryHandler exposes the review feed of merges performed by the
// duplicate reconciliation engine. Each entry carries the full snapshot of
// the deleted record so a false-positive merge can be repaired by hand.
type MergeHistoryHandler struct {
	Repo *repositories.MergeLogRepository
}

func NewMergeHistoryHandler(repo *repositories.MergeLogRepository) *MergeHistoryHandler {
	return &MergeHistoryHandler{Repo: repo}
}

// ListMerges returns all recorded merges, newest first
func (h *MergeHistoryHandler) ListMerges(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Repo.List(context.Background())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}

// MarkReviewed flags one merge record as checked by a human
func (h *MergeHistoryHandler) MarkReviewed(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	if err := h.Repo.MarkReviewed(context.Background(), id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"reviewed": true})
}
