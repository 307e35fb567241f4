package dedupe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"casework-backend/internal/metrics"
	"casework-backend/internal/models"
	"casework-backend/internal/timeutil"

	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned when another reconciliation batch holds
// the advisory lock. Two concurrent batches over overlapping pairs would
// race, so only one instance may run at a time.
var ErrAlreadyRunning = errors.New("dedupe: another reconciliation batch is running")

// DuplicatePair is one planned merge.
type DuplicatePair struct {
	SurvivorID int    `json:"survivor_id"`
	LoserID    int    `json:"loser_id"`
	MatchKey   string `json:"match_key"`
}

// Tx is the per-pair transactional surface. Every method call between
// WithTx's start and return either all commits or all rolls back.
type Tx interface {
	GetClient(ctx context.Context, id int) (*models.Client, error)
	ApplyBackfill(ctx context.Context, survivorID int, bf Backfill) error
	VisitsByClient(ctx context.Context, clientID int) ([]*models.Visit, error)
	ReparentVisits(ctx context.Context, visitIDs []int, newClientID int) error
	DeleteVisits(ctx context.Context, visitIDs []int) error
	DeleteClient(ctx context.Context, id int) error
	InsertMergeLog(ctx context.Context, log *models.MergeLog) error
}

// Store is the registry access the engine needs.
type Store interface {
	// TryLock attempts to take the single-instance advisory lock.
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
	// Snapshot returns all clients from one consistent read.
	Snapshot(ctx context.Context) ([]*models.Client, error)
	// WithTx runs fn inside a transaction, rolling back on error.
	WithTx(ctx context.Context, fn func(Tx) error) error
}

// Backfill carries the loser values copied onto the survivor's null
// identity fields. Populated fields on the survivor are never overwritten.
type Backfill struct {
	CehupoID         *int
	Email            *string
	ArrivalDate      *time.Time
	RegistrationDate *time.Time
	// Fields names what was copied, for the merge record.
	Fields []string
}

// Empty reports whether there is nothing to copy.
func (b Backfill) Empty() bool { return len(b.Fields) == 0 }

// ComputeBackfill determines which loser values fill null survivor fields.
func ComputeBackfill(survivor, loser *models.Client) Backfill {
	var bf Backfill
	if survivor.CehupoID == nil && loser.CehupoID != nil {
		bf.CehupoID = loser.CehupoID
		bf.Fields = append(bf.Fields, "cehupo_id")
	}
	if survivor.Email == nil && loser.Email != nil {
		bf.Email = loser.Email
		bf.Fields = append(bf.Fields, "email")
	}
	if survivor.ArrivalDate == nil && loser.ArrivalDate != nil {
		bf.ArrivalDate = loser.ArrivalDate
		bf.Fields = append(bf.Fields, "arrival_date")
	}
	if survivor.RegistrationDate == nil && loser.RegistrationDate != nil {
		bf.RegistrationDate = loser.RegistrationDate
		bf.Fields = append(bf.Fields, "registration_date")
	}
	return bf
}

type visitKey struct {
	date    string
	subject string
}

// PartitionVisits splits the loser's visits into ones to re-parent and
// ones to discard. A loser visit whose (date, subject) pair already exists
// on the survivor is a true duplicate and is discarded.
func PartitionVisits(survivorVisits, loserVisits []*models.Visit) (move, discard []int) {
	owned := make(map[visitKey]bool, len(survivorVisits))
	for _, v := range survivorVisits {
		owned[visitKey{v.VisitDate.Format("2006-01-02"), v.Subject}] = true
	}
	for _, v := range loserVisits {
		key := visitKey{v.VisitDate.Format("2006-01-02"), v.Subject}
		if owned[key] {
			discard = append(discard, v.ID)
			continue
		}
		move = append(move, v.ID)
		// The moved visit now belongs to the survivor; a second loser
		// copy of the same (date, subject) is a duplicate too.
		owned[key] = true
	}
	return move, discard
}

// Summary aggregates one reconciliation run.
type Summary struct {
	Pairs           int `json:"pairs"`
	Merged          int `json:"merged"`
	Failed          int `json:"failed"`
	VisitsMoved     int `json:"visits_moved"`
	VisitsDiscarded int `json:"visits_discarded"`
}

// Engine collapses duplicate client records. Running it twice in a row is
// a no-op the second time: the pairs it merges no longer exist.
type Engine struct {
	store    Store
	strategy MatchStrategy
	policy   MergePolicy
	logger   *zap.Logger
}

func NewEngine(store Store, strategy MatchStrategy, logger *zap.Logger) *Engine {
	return &Engine{
		store:    store,
		strategy: strategy,
		policy:   PolicyOldestWins,
		logger:   logger,
	}
}

// PlanPairs derives all merge pairs from one snapshot of the registry.
// Because the survivor of each group is fixed up front, a loser can never
// reappear as either role later in the same run.
func (e *Engine) PlanPairs(ctx context.Context) ([]DuplicatePair, error) {
	clients, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]*models.Client)
	for _, c := range clients {
		key := e.strategy.Key(c)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], c)
	}

	keys := make([]string, 0, len(groups))
	for key, group := range groups {
		if len(group) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var pairs []DuplicatePair
	for _, key := range keys {
		survivor, losers := ChooseSurvivor(e.policy, groups[key])
		for _, loser := range losers {
			pairs = append(pairs, DuplicatePair{
				SurvivorID: survivor.ID,
				LoserID:    loser.ID,
				MatchKey:   key,
			})
		}
	}
	return pairs, nil
}

// Run plans and applies all merges. One pair's failure rolls back that
// pair only; the batch continues.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	ok, err := e.store.TryLock(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	defer e.store.Unlock(ctx)

	pairs, err := e.PlanPairs(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Pairs: len(pairs)}
	for _, pair := range pairs {
		moved, discarded, err := e.mergePair(ctx, pair)
		if err != nil {
			summary.Failed++
			metrics.ClientMergesTotal.WithLabelValues("failed").Inc()
			e.logger.Error("merge-failed",
				zap.Int("survivor_id", pair.SurvivorID),
				zap.Int("loser_id", pair.LoserID),
				zap.Error(err))
			continue
		}
		summary.Merged++
		summary.VisitsMoved += moved
		summary.VisitsDiscarded += discarded
		metrics.ClientMergesTotal.WithLabelValues("merged").Inc()
		e.logger.Info("merged",
			zap.Int("survivor_id", pair.SurvivorID),
			zap.Int("loser_id", pair.LoserID),
			zap.Int("visits_moved", moved),
			zap.Int("visits_discarded", discarded))
	}

	e.logger.Info("reconciliation done",
		zap.Int("pairs", summary.Pairs),
		zap.Int("merged", summary.Merged),
		zap.Int("failed", summary.Failed),
		zap.Int("visits_moved", summary.VisitsMoved),
		zap.Int("visits_discarded", summary.VisitsDiscarded))
	return summary, nil
}

// mergePair applies one merge inside a single transaction.
func (e *Engine) mergePair(ctx context.Context, pair DuplicatePair) (moved, discarded int, err error) {
	err = e.store.WithTx(ctx, func(tx Tx) error {
		// Re-fetch both rows inside the transaction; the snapshot may be
		// stale by the time this pair is reached.
		survivor, err := tx.GetClient(ctx, pair.SurvivorID)
		if err != nil {
			return fmt.Errorf("load survivor %d: %w", pair.SurvivorID, err)
		}
		loser, err := tx.GetClient(ctx, pair.LoserID)
		if err != nil {
			return fmt.Errorf("load loser %d: %w", pair.LoserID, err)
		}
		if !e.strategy.IsDuplicate(survivor, loser) {
			return fmt.Errorf("pair (%d, %d) no longer matches", survivor.ID, loser.ID)
		}

		if bf := ComputeBackfill(survivor, loser); !bf.Empty() {
			if err := tx.ApplyBackfill(ctx, survivor.ID, bf); err != nil {
				return fmt.Errorf("backfill: %w", err)
			}
		}

		survivorVisits, err := tx.VisitsByClient(ctx, survivor.ID)
		if err != nil {
			return err
		}
		loserVisits, err := tx.VisitsByClient(ctx, loser.ID)
		if err != nil {
			return err
		}

		move, discard := PartitionVisits(survivorVisits, loserVisits)
		if len(move) > 0 {
			if err := tx.ReparentVisits(ctx, move, survivor.ID); err != nil {
				return fmt.Errorf("re-parent visits: %w", err)
			}
		}
		if len(discard) > 0 {
			if err := tx.DeleteVisits(ctx, discard); err != nil {
				return fmt.Errorf("delete duplicate visits: %w", err)
			}
		}

		if err := tx.DeleteClient(ctx, loser.ID); err != nil {
			return fmt.Errorf("delete loser: %w", err)
		}

		snapshot, err := json.Marshal(loser)
		if err != nil {
			return fmt.Errorf("snapshot loser: %w", err)
		}
		bf := ComputeBackfill(survivor, loser)
		if err := tx.InsertMergeLog(ctx, &models.MergeLog{
			SurvivorID:       survivor.ID,
			LoserID:          loser.ID,
			LoserSnapshot:    snapshot,
			VisitsMoved:      len(move),
			VisitsDiscarded:  len(discard),
			FieldsBackfilled: bf.Fields,
			MatchKey:         pair.MatchKey,
			MergedAt:         timeutil.Now(),
		}); err != nil {
			return fmt.Errorf("record merge: %w", err)
		}

		moved, discarded = len(move), len(discard)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return moved, discarded, nil
}
