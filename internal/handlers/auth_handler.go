package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"casework-backend/internal/middleware"
	"casework-backend/internal/models"
	"casework-backend/internal/services"
)

type AuthHandler struct {
	Service *services.WorkerService
}

func NewAuthHandler(s *services.WorkerService) *AuthHandler {
	return &AuthHandler{Service: s}
}

// Signup handles worker registration
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	worker, err := h.Service.Signup(context.Background(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(worker)
}

// Login handles worker authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.Service.Login(context.Background(), &req)
	if err != nil {
		if errors.Is(err, services.ErrTOTPRequired) {
			// Signal the client to re-submit with a TOTP code
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":         "totp code required",
				"totp_required": true,
			})
			return
		}
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// SetupTOTP generates a TOTP secret for the logged-in worker
func (h *AuthHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetWorkerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	secret, url, err := h.Service.SetupTOTP(context.Background(), workerID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"secret": secret,
		"url":    url,
	})
}

// VerifyTOTP confirms the setup code and enables the second factor
func (h *AuthHandler) VerifyTOTP(w http.ResponseWriter, r *http.Request) {
	workerID, ok := middleware.GetWorkerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Authorization required", http.StatusUnauthorized)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.VerifyTOTP(context.Background(), workerID, req.Code); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"enabled": true})
}
