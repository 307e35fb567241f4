package repositories

import (
	"context"

	"casework-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

const workerColumns = `id, name, email, password_hash, role, is_active,
         totp_secret, totp_enabled, created_at, updated_at`

type WorkerRepository struct {
	DB *pgxpool.Pool
}

func NewWorkerRepository(db *pgxpool.Pool) *WorkerRepository {
	return &WorkerRepository{DB: db}
}

func scanWorker(row interface{ Scan(dest ...any) error }) (*models.Worker, error) {
	var w models.Worker
	err := row.Scan(&w.ID, &w.Name, &w.Email, &w.PasswordHash, &w.Role, &w.IsActive,
		&w.TOTPSecret, &w.TOTPEnabled, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkerRepository) Create(ctx context.Context, w *models.Worker) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO workers(name, email, password_hash, role, is_active)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		w.Name, w.Email, w.PasswordHash, w.Role, w.IsActive,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
}

func (r *WorkerRepository) Get(ctx context.Context, id int) (*models.Worker, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+workerColumns+` FROM workers WHERE id=$1`, id)
	return scanWorker(row)
}

func (r *WorkerRepository) GetByEmail(ctx context.Context, email string) (*models.Worker, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+workerColumns+` FROM workers WHERE email=$1`, email)
	return scanWorker(row)
}

func (r *WorkerRepository) List(ctx context.Context) ([]*models.Worker, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+workerColumns+` FROM workers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []*models.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (r *WorkerRepository) Update(ctx context.Context, w *models.Worker) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE workers SET name=$1, email=$2, role=$3, is_active=$4, updated_at=CURRENT_TIMESTAMP
         WHERE id=$5`,
		w.Name, w.Email, w.Role, w.IsActive, w.ID)
	return err
}

func (r *WorkerRepository) SetTOTPSecret(ctx context.Context, id int, secret string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE workers SET totp_secret=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		secret, id)
	return err
}

func (r *WorkerRepository) EnableTOTP(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE workers SET totp_enabled=TRUE, updated_at=CURRENT_TIMESTAMP WHERE id=$1`, id)
	return err
}

func (r *WorkerRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM workers WHERE id=$1`, id)
	return err
}
