package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"casework-backend/internal/services"

	"github.com/gorilla/mux"
)

// DataQualityHandler starts the batch jobs from the API and serves their
// last summaries. Jobs run in the background; the start endpoints return
// 202 immediately.
type DataQualityHandler struct {
	Jobs *services.JobsService
}

func NewDataQualityHandler(jobs *services.JobsService) *DataQualityHandler {
	return &DataQualityHandler{Jobs: jobs}
}

// StartGeocode launches the address resolution pass.
// ?pass=recovery re-tries previously failed records instead.
func (h *DataQualityHandler) StartGeocode(w http.ResponseWriter, r *http.Request) {
	recoverPass := r.URL.Query().Get("pass") == "recovery"
	h.respondStart(w, services.JobGeocode, h.Jobs.StartGeocode(recoverPass))
}

// StartMerge launches the duplicate reconciliation batch
func (h *DataQualityHandler) StartMerge(w http.ResponseWriter, r *http.Request) {
	h.respondStart(w, services.JobMerge, h.Jobs.StartMerge())
}

// StartVisaNormalization launches the visa-type repair job
func (h *DataQualityHandler) StartVisaNormalization(w http.ResponseWriter, r *http.Request) {
	h.respondStart(w, services.JobVisa, h.Jobs.StartVisaNormalization())
}

// LastSummary returns the cached summary of a job's most recent run
func (h *DataQualityHandler) LastSummary(w http.ResponseWriter, r *http.Request) {
	job := mux.Vars(r)["job"]
	if job != services.JobGeocode && job != services.JobMerge && job != services.JobVisa {
		http.Error(w, "Unknown job", http.StatusNotFound)
		return
	}

	data, ok := h.Jobs.LastSummary(r.Context(), job)
	if !ok {
		http.Error(w, "No summary recorded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (h *DataQualityHandler) respondStart(w http.ResponseWriter, job string, err error) {
	if err != nil {
		if errors.Is(err, services.ErrJobRunning) {
			http.Error(w, "Job is already running", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"job": job, "status": "started"})
}
