package dataquality

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements VisaStore over a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) VisaTypes(ctx context.Context) ([]ClientVisa, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, visa_type FROM clients WHERE visa_type IS NOT NULL AND visa_type <> '' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClientVisa
	for rows.Next() {
		var row ClientVisa
		if err := rows.Scan(&row.ClientID, &row.VisaType); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateVisaType(ctx context.Context, clientID int, visaType string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE clients SET visa_type=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		visaType, clientID)
	return err
}
