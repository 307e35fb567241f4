package repositories

import (
	"context"

	"casework-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

const visitColumns = `id, client_id, visit_date, subject, COALESCE(visit_type, '') as visit_type,
         COALESCE(location, '') as location, COALESCE(topic, '') as topic,
         COALESCE(duration_minutes, 0) as duration_minutes,
         COALESCE(description, '') as description, worker_id, created_at`

type VisitRepository struct {
	DB *pgxpool.Pool
}

func NewVisitRepository(db *pgxpool.Pool) *VisitRepository {
	return &VisitRepository{DB: db}
}

func scanVisit(row interface{ Scan(dest ...any) error }) (*models.Visit, error) {
	var v models.Visit
	err := row.Scan(&v.ID, &v.ClientID, &v.VisitDate, &v.Subject, &v.VisitType,
		&v.Location, &v.Topic, &v.DurationMinutes, &v.Description, &v.WorkerID, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VisitRepository) Create(ctx context.Context, v *models.Visit) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO visits(client_id, visit_date, subject, visit_type, location, topic,
             duration_minutes, description, worker_id)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING id, created_at`,
		v.ClientID, v.VisitDate, v.Subject, v.VisitType, v.Location, v.Topic,
		v.DurationMinutes, v.Description, v.WorkerID,
	).Scan(&v.ID, &v.CreatedAt)
}

func (r *VisitRepository) Get(ctx context.Context, id int) (*models.Visit, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+visitColumns+` FROM visits WHERE id=$1`, id)
	return scanVisit(row)
}

func (r *VisitRepository) ListByClient(ctx context.Context, clientID int) ([]*models.Visit, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+visitColumns+` FROM visits WHERE client_id=$1 ORDER BY visit_date DESC, id DESC`,
		clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []*models.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func (r *VisitRepository) List(ctx context.Context, limit int) ([]*models.Visit, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Query(ctx,
		`SELECT `+visitColumns+` FROM visits ORDER BY visit_date DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []*models.Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func (r *VisitRepository) Update(ctx context.Context, v *models.Visit) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE visits SET visit_date=$1, subject=$2, visit_type=$3, location=$4, topic=$5,
             duration_minutes=$6, description=$7
         WHERE id=$8`,
		v.VisitDate, v.Subject, v.VisitType, v.Location, v.Topic,
		v.DurationMinutes, v.Description, v.ID)
	return err
}

func (r *VisitRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM visits WHERE id=$1`, id)
	return err
}
