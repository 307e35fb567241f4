package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"casework-backend/internal/services"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

// ClientReport streams the client's case report as a PDF download
func (h *ReportHandler) ClientReport(w http.ResponseWriter, r *http.Request) {
	idStr := mux.Vars(r)["id"]
	id, _ := strconv.Atoi(idStr)

	data, err := h.Service.GetClientReportData(context.Background(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	pdf, err := h.Service.GenerateClientReportPDF(data)
	if err != nil {
		http.Error(w, "Failed to generate report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="client_%d_report.pdf"`, id))
	w.Write(pdf)
}
