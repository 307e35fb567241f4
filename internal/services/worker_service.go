package services

import (
	"context"
	"errors"

	"casework-backend/internal/auth"
	"casework-backend/internal/models"
	"casework-backend/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTOTPRequired       = errors.New("totp code required")
	ErrInvalidTOTPCode    = errors.New("invalid totp code")
)

type WorkerService struct {
	Repo       *repositories.WorkerRepository
	JWTManager *auth.JWTManager
}

func NewWorkerService(repo *repositories.WorkerRepository, jwtManager *auth.JWTManager) *WorkerService {
	return &WorkerService{Repo: repo, JWTManager: jwtManager}
}

func (s *WorkerService) Signup(ctx context.Context, req *models.CreateWorkerRequest) (*models.Worker, error) {
	// Validate input
	if req.Name == "" || req.Email == "" {
		return nil, errors.New("name and email are required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	role := req.Role
	if role == "" {
		role = "worker"
	}
	if role != "worker" && role != "admin" {
		return nil, errors.New("role must be worker or admin")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	worker := &models.Worker{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}

	if err := s.Repo.Create(ctx, worker); err != nil {
		return nil, err
	}
	return worker, nil
}

// Login verifies credentials and, when the account has TOTP enabled, the
// second factor. The caller distinguishes ErrTOTPRequired (retry with a
// code) from ErrInvalidCredentials.
func (s *WorkerService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	worker, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !worker.IsActive {
		return nil, errors.New("account deactivated")
	}
	if !auth.VerifyPassword(worker.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	if worker.TOTPEnabled {
		if req.TOTPCode == "" {
			return nil, ErrTOTPRequired
		}
		if worker.TOTPSecret == nil || !auth.ValidateTOTP(req.TOTPCode, *worker.TOTPSecret) {
			return nil, ErrInvalidTOTPCode
		}
	}

	token, err := s.JWTManager.GenerateToken(worker)
	if err != nil {
		return nil, err
	}

	return &models.LoginResponse{Token: token, Worker: worker}, nil
}

// SetupTOTP generates a fresh secret for the worker and returns the
// otpauth provisioning URL. TOTP stays disabled until VerifyTOTP succeeds.
func (s *WorkerService) SetupTOTP(ctx context.Context, workerID int) (secret, url string, err error) {
	worker, err := s.Repo.Get(ctx, workerID)
	if err != nil {
		return "", "", err
	}

	secret, url, err = auth.GenerateTOTPSecret(worker.Email)
	if err != nil {
		return "", "", err
	}
	if err := s.Repo.SetTOTPSecret(ctx, workerID, secret); err != nil {
		return "", "", err
	}
	return secret, url, nil
}

// VerifyTOTP confirms the worker can produce codes and enables the second
// factor.
func (s *WorkerService) VerifyTOTP(ctx context.Context, workerID int, code string) error {
	worker, err := s.Repo.Get(ctx, workerID)
	if err != nil {
		return err
	}
	if worker.TOTPSecret == nil {
		return errors.New("totp setup not initiated")
	}
	if !auth.ValidateTOTP(code, *worker.TOTPSecret) {
		return ErrInvalidTOTPCode
	}
	return s.Repo.EnableTOTP(ctx, workerID)
}

func (s *WorkerService) GetWorker(ctx context.Context, id int) (*models.Worker, error) {
	return s.Repo.Get(ctx, id)
}

func (s *WorkerService) ListWorkers(ctx context.Context) ([]*models.Worker, error) {
	return s.Repo.List(ctx)
}

func (s *WorkerService) UpdateWorker(ctx context.Context, id int, req *models.UpdateWorkerRequest) (*models.Worker, error) {
	worker, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		worker.Name = req.Name
	}
	if req.Email != "" {
		worker.Email = req.Email
	}
	if req.Role != "" {
		if req.Role != "worker" && req.Role != "admin" {
			return nil, errors.New("role must be worker or admin")
		}
		worker.Role = req.Role
	}
	if req.IsActive != nil {
		worker.IsActive = *req.IsActive
	}

	if err := s.Repo.Update(ctx, worker); err != nil {
		return nil, err
	}
	return worker, nil
}

func (s *WorkerService) DeleteWorker(ctx context.Context, id int) error {
	return s.Repo.Delete(ctx, id)
}
