package repositories

import (
	"context"

	"casework-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContractRepository struct {
	DB *pgxpool.Pool
}

func NewContractRepository(db *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{DB: db}
}

func (r *ContractRepository) Create(ctx context.Context, c *models.Contract) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO contracts(client_id, worker_id, title, signed_date, valid_until, notes)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at`,
		c.ClientID, c.WorkerID, c.Title, c.SignedDate, c.ValidUntil, c.Notes,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *ContractRepository) Get(ctx context.Context, id int) (*models.Contract, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, client_id, worker_id, title, signed_date, valid_until, COALESCE(notes, '') as notes, created_at
         FROM contracts WHERE id=$1`, id)

	var c models.Contract
	err := row.Scan(&c.ID, &c.ClientID, &c.WorkerID, &c.Title, &c.SignedDate,
		&c.ValidUntil, &c.Notes, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContractRepository) ListByClient(ctx context.Context, clientID int) ([]*models.Contract, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, client_id, worker_id, title, signed_date, valid_until, COALESCE(notes, '') as notes, created_at
         FROM contracts WHERE client_id=$1 ORDER BY signed_date DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		var c models.Contract
		err := rows.Scan(&c.ID, &c.ClientID, &c.WorkerID, &c.Title, &c.SignedDate,
			&c.ValidUntil, &c.Notes, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, &c)
	}
	return contracts, rows.Err()
}

func (r *ContractRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM contracts WHERE id=$1`, id)
	return err
}
