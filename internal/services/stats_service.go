package services

import (
	"context"
	"encoding/json"

	"casework-backend/internal/cache"
	"casework-backend/internal/repositories"
)

// StatsService serves registry-wide aggregate counts. The query walks the
// whole clients table, so results are cached in Redis for five minutes and
// invalidated on writes.
type StatsService struct {
	ClientRepo *repositories.ClientRepository
}

func NewStatsService(clientRepo *repositories.ClientRepository) *StatsService {
	return &StatsService{ClientRepo: clientRepo}
}

func (s *StatsService) RegistryStats(ctx context.Context) (*repositories.RegistryStats, error) {
	if data, ok := cache.GetCachedRegistryStats(ctx); ok {
		var stats repositories.RegistryStats
		if err := json.Unmarshal(data, &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.ClientRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(stats); err == nil {
		cache.CacheRegistryStats(ctx, data)
	}
	return stats, nil
}
