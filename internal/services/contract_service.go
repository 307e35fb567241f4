package services

import (
	"context"
	"errors"

	"casework-backend/internal/models"
	"casework-backend/internal/repositories"
	"casework-backend/internal/timeutil"
)

type ContractService struct {
	Repo       *repositories.ContractRepository
	ClientRepo *repositories.ClientRepository
}

func NewContractService(repo *repositories.ContractRepository, clientRepo *repositories.ClientRepository) *ContractService {
	return &ContractService{Repo: repo, ClientRepo: clientRepo}
}

func (s *ContractService) CreateContract(ctx context.Context, req *models.CreateContractRequest, workerID int) (*models.Contract, error) {
	// Validate input
	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	if _, err := s.ClientRepo.Get(ctx, req.ClientID); err != nil {
		return nil, errors.New("client not found")
	}

	signedDate, err := timeutil.ParseLocal(timeutil.DateLayout, req.SignedDate)
	if err != nil {
		return nil, errors.New("signed_date must be YYYY-MM-DD")
	}

	contract := &models.Contract{
		ClientID:   req.ClientID,
		WorkerID:   &workerID,
		Title:      req.Title,
		SignedDate: signedDate,
		Notes:      req.Notes,
	}

	if req.ValidUntil != "" {
		t, err := timeutil.ParseLocal(timeutil.DateLayout, req.ValidUntil)
		if err != nil {
			return nil, errors.New("valid_until must be YYYY-MM-DD")
		}
		contract.ValidUntil = &t
	}

	if err := s.Repo.Create(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

func (s *ContractService) GetContract(ctx context.Context, id int) (*models.Contract, error) {
	return s.Repo.Get(ctx, id)
}

func (s *ContractService) ListByClient(ctx context.Context, clientID int) ([]*models.Contract, error) {
	return s.Repo.ListByClient(ctx, clientID)
}

func (s *ContractService) DeleteContract(ctx context.Context, id int) error {
	return s.Repo.Delete(ctx, id)
}
