package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"casework-backend/internal/cache"
	"casework-backend/internal/config"
	"casework-backend/internal/dataquality"
	"casework-backend/internal/dedupe"
	"casework-backend/internal/geocode"
	"casework-backend/internal/monitoring"
	"casework-backend/internal/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Job names, used as cache keys and websocket event tags.
const (
	JobGeocode = "geocode"
	JobMerge   = "merge"
	JobVisa    = "visa"
)

var ErrJobRunning = errors.New("job is already running")

// JobsService starts the data-quality batch jobs from the API and keeps
// their last summaries readable. Each job runs in a background goroutine;
// at most one instance of a given job runs at a time.
type JobsService struct {
	pool   *pgxpool.Pool
	cfg    *config.Config
	hub    *monitoring.Hub
	logger *zap.Logger

	mu      sync.Mutex
	running map[string]bool
}

func NewJobsService(pool *pgxpool.Pool, cfg *config.Config, hub *monitoring.Hub, logger *zap.Logger) *JobsService {
	return &JobsService{
		pool:    pool,
		cfg:     cfg,
		hub:     hub,
		logger:  logger,
		running: make(map[string]bool),
	}
}

// StartGeocode launches the address resolution pass in the background.
func (s *JobsService) StartGeocode(recoverPass bool) error {
	return s.start(JobGeocode, func(ctx context.Context) (interface{}, error) {
		client, err := geocode.NewNominatimClient(
			s.cfg.Geocoder.BaseURL,
			s.cfg.Geocoder.UserAgent,
			s.cfg.Geocoder.CountryCode,
			s.cfg.Geocoder.Timeout,
		)
		if err != nil {
			return nil, err
		}

		store := geocode.NewPostgresStore(repositories.NewClientRepository(s.pool))
		resolver := geocode.NewResolver(store, client, s.logger.Named(JobGeocode))
		resolver.CountrySuffix = s.cfg.Geocoder.CountrySuffix
		resolver.ClientDelay = s.cfg.Geocoder.ClientDelay
		resolver.VariantDelay = s.cfg.Geocoder.VariantDelay

		if recoverPass {
			return resolver.RunRecoveryPass(ctx)
		}
		return resolver.RunBasicPass(ctx)
	})
}

// StartMerge launches the duplicate reconciliation batch in the background.
func (s *JobsService) StartMerge() error {
	return s.start(JobMerge, func(ctx context.Context) (interface{}, error) {
		engine := dedupe.NewEngine(
			dedupe.NewPostgresStore(s.pool),
			dedupe.NameStrategy{},
			s.logger.Named(JobMerge),
		)
		summary, err := engine.Run(ctx)
		if err == nil {
			cache.InvalidateRegistryStats(ctx)
		}
		return summary, err
	})
}

// StartVisaNormalization launches the visa-type repair job in the
// background.
func (s *JobsService) StartVisaNormalization() error {
	return s.start(JobVisa, func(ctx context.Context) (interface{}, error) {
		normalizer := dataquality.NewVisaNormalizer(
			dataquality.NewPostgresStore(s.pool),
			s.logger.Named(JobVisa),
		)
		return normalizer.Run(ctx)
	})
}

// LastSummary returns the cached summary of the job's most recent run.
func (s *JobsService) LastSummary(ctx context.Context, job string) (json.RawMessage, bool) {
	data, ok := cache.GetCachedJobSummary(ctx, job)
	return data, ok
}

func (s *JobsService) start(job string, run func(ctx context.Context) (interface{}, error)) error {
	s.mu.Lock()
	if s.running[job] {
		s.mu.Unlock()
		return ErrJobRunning
	}
	s.running[job] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.running[job] = false
			s.mu.Unlock()
		}()

		ctx := context.Background()
		s.hub.Publish(monitoring.JobEvent{Job: job, Phase: "started"})

		summary, err := run(ctx)
		if err != nil {
			log.Printf("[DataQuality] %s job failed: %v", job, err)
			s.hub.Publish(monitoring.JobEvent{Job: job, Phase: "failed", Message: err.Error()})
			return
		}

		if data, err := json.Marshal(summary); err == nil {
			cache.CacheJobSummary(ctx, job, data)
		}
		s.hub.Publish(monitoring.JobEvent{Job: job, Phase: "finished"})
	}()

	return nil
}
