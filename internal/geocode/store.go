package geocode

import (
	"context"
	"errors"

	"casework-backend/internal/models"
	"casework-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// PostgresStore adapts the client repository to the resolver's ClientStore,
// translating pgx's no-rows error into ErrNoCandidate.
type PostgresStore struct {
	Repo *repositories.ClientRepository
}

func NewPostgresStore(repo *repositories.ClientRepository) *PostgresStore {
	return &PostgresStore{Repo: repo}
}

func (s *PostgresStore) NextUnresolved(ctx context.Context, skip []int) (*models.Client, error) {
	client, err := s.Repo.NextUnresolved(ctx, skip)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoCandidate
	}
	return client, err
}

func (s *PostgresStore) SentinelIDs(ctx context.Context) ([]int, error) {
	return s.Repo.SentinelIDs(ctx)
}

func (s *PostgresStore) Get(ctx context.Context, id int) (*models.Client, error) {
	return s.Repo.Get(ctx, id)
}

func (s *PostgresStore) UpdateCoordinates(ctx context.Context, id int, lat, lon float64) error {
	return s.Repo.UpdateCoordinates(ctx, id, lat, lon)
}
