package repositories

import (
	"context"

	"casework-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MergeLogRepository struct {
	DB *pgxpool.Pool
}

func NewMergeLogRepository(db *pgxpool.Pool) *MergeLogRepository {
	return &MergeLogRepository{DB: db}
}

func (r *MergeLogRepository) List(ctx context.Context) ([]*models.MergeLog, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, survivor_id, loser_id, loser_snapshot, visits_moved, visits_discarded,
             fields_backfilled, match_key, reviewed, merged_at
         FROM merge_logs ORDER BY merged_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.MergeLog
	for rows.Next() {
		var m models.MergeLog
		err := rows.Scan(&m.ID, &m.SurvivorID, &m.LoserID, &m.LoserSnapshot,
			&m.VisitsMoved, &m.VisitsDiscarded, &m.FieldsBackfilled, &m.MatchKey,
			&m.Reviewed, &m.MergedAt)
		if err != nil {
			return nil, err
		}
		logs = append(logs, &m)
	}
	return logs, rows.Err()
}

func (r *MergeLogRepository) MarkReviewed(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `UPDATE merge_logs SET reviewed=TRUE WHERE id=$1`, id)
	return err
}
