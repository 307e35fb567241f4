package services

import (
	"context"
	"errors"

	"casework-backend/internal/cache"
	"casework-backend/internal/models"
	"casework-backend/internal/repositories"
	"casework-backend/internal/timeutil"
)

type VisitService struct {
	Repo       *repositories.VisitRepository
	ClientRepo *repositories.ClientRepository
}

func NewVisitService(repo *repositories.VisitRepository, clientRepo *repositories.ClientRepository) *VisitService {
	return &VisitService{Repo: repo, ClientRepo: clientRepo}
}

func (s *VisitService) CreateVisit(ctx context.Context, req *models.CreateVisitRequest, workerID int) (*models.Visit, error) {
	// Validate input
	if req.Subject == "" {
		return nil, errors.New("subject is required")
	}
	if _, err := s.ClientRepo.Get(ctx, req.ClientID); err != nil {
		return nil, errors.New("client not found")
	}

	visitDate, err := timeutil.ParseLocal(timeutil.DateLayout, req.VisitDate)
	if err != nil {
		return nil, errors.New("visit_date must be YYYY-MM-DD")
	}

	visit := &models.Visit{
		ClientID:        req.ClientID,
		VisitDate:       visitDate,
		Subject:         req.Subject,
		VisitType:       req.VisitType,
		Location:        req.Location,
		Topic:           req.Topic,
		DurationMinutes: req.DurationMinutes,
		Description:     req.Description,
		WorkerID:        &workerID,
	}

	if err := s.Repo.Create(ctx, visit); err != nil {
		return nil, err
	}
	cache.InvalidateRegistryStats(ctx)

	return visit, nil
}

func (s *VisitService) GetVisit(ctx context.Context, id int) (*models.Visit, error) {
	return s.Repo.Get(ctx, id)
}

func (s *VisitService) ListVisits(ctx context.Context, limit int) ([]*models.Visit, error) {
	return s.Repo.List(ctx, limit)
}

func (s *VisitService) ListByClient(ctx context.Context, clientID int) ([]*models.Visit, error) {
	return s.Repo.ListByClient(ctx, clientID)
}

func (s *VisitService) UpdateVisit(ctx context.Context, id int, req *models.UpdateVisitRequest) (*models.Visit, error) {
	if req.Subject == "" {
		return nil, errors.New("subject is required")
	}

	visitDate, err := timeutil.ParseLocal(timeutil.DateLayout, req.VisitDate)
	if err != nil {
		return nil, errors.New("visit_date must be YYYY-MM-DD")
	}

	visit := &models.Visit{
		ID:              id,
		VisitDate:       visitDate,
		Subject:         req.Subject,
		VisitType:       req.VisitType,
		Location:        req.Location,
		Topic:           req.Topic,
		DurationMinutes: req.DurationMinutes,
		Description:     req.Description,
	}

	if err := s.Repo.Update(ctx, visit); err != nil {
		return nil, err
	}

	return s.Repo.Get(ctx, id)
}

func (s *VisitService) DeleteVisit(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateRegistryStats(ctx)
	return nil
}
