package services

import (
	"context"
	"errors"

	"casework-backend/internal/cache"
	"casework-backend/internal/models"
	"casework-backend/internal/repositories"
	"casework-backend/internal/timeutil"
)

type ClientService struct {
	Repo *repositories.ClientRepository
}

func NewClientService(repo *repositories.ClientRepository) *ClientService {
	return &ClientService{Repo: repo}
}

func (s *ClientService) CreateClient(ctx context.Context, req *models.CreateClientRequest) (*models.Client, error) {
	// Validate input
	if req.FirstName == "" && req.LastName == "" {
		return nil, errors.New("first name or last name is required")
	}

	client := &models.Client{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CehupoID:  req.CehupoID,
		Email:     req.Email,
		Phone:     req.Phone,
		Street:    req.Street,
		City:      req.City,
		Zip:       req.Zip,
		VisaType:  req.VisaType,
	}

	if req.ArrivalDate != nil && *req.ArrivalDate != "" {
		t, err := timeutil.ParseLocal(timeutil.DateLayout, *req.ArrivalDate)
		if err != nil {
			return nil, errors.New("arrival_date must be YYYY-MM-DD")
		}
		client.ArrivalDate = &t
	}
	if req.RegistrationDate != nil && *req.RegistrationDate != "" {
		t, err := timeutil.ParseLocal(timeutil.DateLayout, *req.RegistrationDate)
		if err != nil {
			return nil, errors.New("registration_date must be YYYY-MM-DD")
		}
		client.RegistrationDate = &t
	}

	if err := s.Repo.Create(ctx, client); err != nil {
		return nil, err
	}
	cache.InvalidateRegistryStats(ctx)

	return client, nil
}

func (s *ClientService) GetClient(ctx context.Context, id int) (*models.Client, error) {
	return s.Repo.Get(ctx, id)
}

func (s *ClientService) ListClients(ctx context.Context) ([]*models.Client, error) {
	return s.Repo.List(ctx)
}

func (s *ClientService) SearchClients(ctx context.Context, query string) ([]*models.Client, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}
	return s.Repo.Search(ctx, query)
}

// UpdateClient persists the change; when the address differs from the
// stored one the repository resets coordinates so the next geocoding pass
// picks the record up again.
func (s *ClientService) UpdateClient(ctx context.Context, id int, req *models.UpdateClientRequest) (*models.Client, error) {
	if req.FirstName == "" && req.LastName == "" {
		return nil, errors.New("first name or last name is required")
	}

	client := &models.Client{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CehupoID:  req.CehupoID,
		Email:     req.Email,
		Phone:     req.Phone,
		Street:    req.Street,
		City:      req.City,
		Zip:       req.Zip,
		VisaType:  req.VisaType,
	}

	if err := s.Repo.Update(ctx, client); err != nil {
		return nil, err
	}
	cache.InvalidateRegistryStats(ctx)

	return s.Repo.Get(ctx, id)
}

func (s *ClientService) DeleteClient(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateRegistryStats(ctx)
	return nil
}
