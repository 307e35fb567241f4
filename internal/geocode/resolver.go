package geocode

import (
	"context"
	"errors"
	"time"

	"casework-backend/internal/metrics"
	"casework-backend/internal/models"

	"go.uber.org/zap"
)

// ErrNoCandidate is returned by a ClientStore when no client matches the
// selection predicate.
var ErrNoCandidate = errors.New("geocode: no candidate client")

// ClientStore is the slice of the client registry the resolver needs.
// *repositories.ClientRepository is adapted to it by PostgresStore.
type ClientStore interface {
	// NextUnresolved returns the newest client with NULL coordinates,
	// excluding the given ids, or ErrNoCandidate.
	NextUnresolved(ctx context.Context, skip []int) (*models.Client, error)
	// SentinelIDs lists every client currently at the (0,0) sentinel.
	SentinelIDs(ctx context.Context) ([]int, error)
	Get(ctx context.Context, id int) (*models.Client, error)
	UpdateCoordinates(ctx context.Context, id int, lat, lon float64) error
}

// Outcome of resolving one client.
type Outcome int

const (
	// OutcomeResolved: a variant produced coordinates, persisted.
	OutcomeResolved Outcome = iota
	// OutcomeSentinel: every variant failed (or the address was empty);
	// the (0,0) sentinel was persisted so the basic pass will not revisit.
	OutcomeSentinel
	// OutcomeError: the database write failed; nothing was persisted and
	// the client is skipped for the rest of the run.
	OutcomeError
)

// Summary aggregates one batch run.
type Summary struct {
	Processed int `json:"processed"`
	Resolved  int `json:"resolved"`
	Failed    int `json:"failed"`
	Errors    int `json:"errors"`
}

// Resolver drives address resolution over the client registry, one client
// at a time, throttled to stay inside the external geocoder's usage policy.
type Resolver struct {
	store    ClientStore
	geocoder Geocoder
	logger   *zap.Logger

	// CountrySuffix is appended to every query at request time; it is
	// never part of a stored variant.
	CountrySuffix string
	// ClientDelay is the mandatory pause between two clients,
	// VariantDelay between two variants of the same client.
	ClientDelay  time.Duration
	VariantDelay time.Duration
}

func NewResolver(store ClientStore, geocoder Geocoder, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:         store,
		geocoder:      geocoder,
		logger:        logger,
		CountrySuffix: "Česká republika",
		ClientDelay:   time.Second,
		VariantDelay:  500 * time.Millisecond,
	}
}

// ResolveOne attempts to geocode a single client. It always performs
// exactly one row update unless the write itself fails: either the first
// successful variant's coordinates or the (0,0) sentinel.
func (r *Resolver) ResolveOne(ctx context.Context, client *models.Client) (Outcome, error) {
	variants := BuildVariants(client.Street, client.City)
	if len(variants) == 0 {
		// Empty address: mark permanently failed so the record is not
		// selected again.
		r.logger.Info("client has no address, writing sentinel",
			zap.Int("client_id", client.ID))
		if err := r.store.UpdateCoordinates(ctx, client.ID, 0, 0); err != nil {
			return OutcomeError, err
		}
		return OutcomeSentinel, nil
	}

	for i, variant := range variants {
		if i > 0 {
			if err := sleep(ctx, r.VariantDelay); err != nil {
				return OutcomeError, err
			}
		}

		query := variant + ", " + r.CountrySuffix
		results, err := r.geocoder.Search(ctx, query)
		if err != nil {
			// Transient failure: fall through to the next variant.
			metrics.GeocodeLookupsTotal.WithLabelValues("error").Inc()
			r.logger.Warn("geocoder error",
				zap.Int("client_id", client.ID),
				zap.String("variant", variant),
				zap.Error(err))
			continue
		}
		if len(results) == 0 {
			metrics.GeocodeLookupsTotal.WithLabelValues("not_found").Inc()
			r.logger.Info("no match",
				zap.Int("client_id", client.ID),
				zap.String("variant", variant))
			continue
		}

		hit := results[0]
		if err := r.store.UpdateCoordinates(ctx, client.ID, hit.Latitude, hit.Longitude); err != nil {
			return OutcomeError, err
		}
		metrics.GeocodeLookupsTotal.WithLabelValues("found").Inc()
		r.logger.Info("found",
			zap.Int("client_id", client.ID),
			zap.String("variant", variant),
			zap.Float64("lat", hit.Latitude),
			zap.Float64("lon", hit.Longitude))
		return OutcomeResolved, nil
	}

	// All variants exhausted: a valid terminal outcome, not an error.
	if err := r.store.UpdateCoordinates(ctx, client.ID, 0, 0); err != nil {
		return OutcomeError, err
	}
	metrics.GeocodeLookupsTotal.WithLabelValues("sentinel").Inc()
	r.logger.Info("not found, sentinel written", zap.Int("client_id", client.ID))
	return OutcomeSentinel, nil
}

// RunBasicPass processes every client with NULL coordinates. Candidates
// are selected one at a time by a live query so changes applied while the
// pass runs (manual fixes, new clients) are respected. A client whose
// write failed goes into a skip set so it cannot be re-selected this run.
func (r *Resolver) RunBasicPass(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	var skip []int

	for {
		client, err := r.store.NextUnresolved(ctx, skip)
		if errors.Is(err, ErrNoCandidate) {
			break
		}
		if err != nil {
			return summary, err
		}

		r.tally(summary, r.resolveLogged(ctx, client, &skip))

		if err := sleep(ctx, r.ClientDelay); err != nil {
			return summary, err
		}
	}

	r.logSummary("basic pass done", summary)
	return summary, nil
}

// RunRecoveryPass retries clients already at the (0,0) sentinel. The id
// set is snapshotted up front so each record is visited at most once per
// pass; every row is re-fetched before processing so records fixed in the
// meantime are left alone.
func (r *Resolver) RunRecoveryPass(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	ids, err := r.store.SentinelIDs(ctx)
	if err != nil {
		return summary, err
	}
	r.logger.Info("recovery pass starting", zap.Int("candidates", len(ids)))

	var skip []int
	for i, id := range ids {
		if i > 0 {
			if err := sleep(ctx, r.ClientDelay); err != nil {
				return summary, err
			}
		}

		client, err := r.store.Get(ctx, id)
		if err != nil {
			r.logger.Warn("error", zap.Int("client_id", id), zap.Error(err))
			summary.Errors++
			continue
		}
		if client.Latitude == nil || client.Longitude == nil ||
			*client.Latitude != 0 || *client.Longitude != 0 {
			// Fixed since the snapshot; only sentinel records belong to
			// the recovery pass.
			continue
		}

		r.tally(summary, r.resolveLogged(ctx, client, &skip))
	}

	r.logSummary("recovery pass done", summary)
	return summary, nil
}

func (r *Resolver) resolveLogged(ctx context.Context, client *models.Client, skip *[]int) Outcome {
	outcome, err := r.ResolveOne(ctx, client)
	if outcome == OutcomeError {
		// A write failure aborts this client only; the batch moves on.
		r.logger.Error("error",
			zap.Int("client_id", client.ID),
			zap.Error(err))
		*skip = append(*skip, client.ID)
	}
	return outcome
}

func (r *Resolver) tally(summary *Summary, outcome Outcome) {
	summary.Processed++
	switch outcome {
	case OutcomeResolved:
		summary.Resolved++
	case OutcomeSentinel:
		summary.Failed++
	case OutcomeError:
		summary.Errors++
	}
}

func (r *Resolver) logSummary(msg string, s *Summary) {
	r.logger.Info(msg,
		zap.Int("processed", s.Processed),
		zap.Int("resolved", s.Resolved),
		zap.Int("still_failed", s.Failed),
		zap.Int("errors", s.Errors))
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
