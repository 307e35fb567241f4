package dedupe

import (
	"context"
	"fmt"

	"casework-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Advisory lock key for the reconciliation batch. Session-scoped: held on
// a dedicated connection until Unlock.
const mergeLockKey = 974_001

// PostgresStore implements Store over a pgx pool.
type PostgresStore struct {
	pool     *pgxpool.Pool
	lockConn *pgxpool.Conn
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) TryLock(ctx context.Context) (bool, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return false, err
	}

	var got bool
	if err := conn.QueryRow(ctx,
		`SELECT pg_try_advisory_lock($1)`, mergeLockKey).Scan(&got); err != nil {
		conn.Release()
		return false, err
	}
	if !got {
		conn.Release()
		return false, nil
	}
	s.lockConn = conn
	return true, nil
}

func (s *PostgresStore) Unlock(ctx context.Context) error {
	if s.lockConn == nil {
		return nil
	}
	_, err := s.lockConn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, mergeLockKey)
	s.lockConn.Release()
	s.lockConn = nil
	return err
}

func (s *PostgresStore) Snapshot(ctx context.Context) ([]*models.Client, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, first_name, last_name, cehupo_id, email, arrival_date, registration_date, created_at
         FROM clients ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.CehupoID, &c.Email,
			&c.ArrivalDate, &c.RegistrationDate, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, &c)
	}
	return clients, rows.Err()
}

func (s *PostgresStore) WithTx(ctx context.Context, fn func(Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&pgxTx{tx: tx})
	})
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) GetClient(ctx context.Context, id int) (*models.Client, error) {
	var c models.Client
	err := t.tx.QueryRow(ctx,
		`SELECT id, first_name, last_name, cehupo_id, email, arrival_date, registration_date, created_at
         FROM clients WHERE id=$1`, id).
		Scan(&c.ID, &c.FirstName, &c.LastName, &c.CehupoID, &c.Email,
			&c.ArrivalDate, &c.RegistrationDate, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *pgxTx) ApplyBackfill(ctx context.Context, survivorID int, bf Backfill) error {
	// COALESCE keeps every already-populated survivor field.
	_, err := t.tx.Exec(ctx,
		`UPDATE clients SET
             cehupo_id = COALESCE(cehupo_id, $1),
             email = COALESCE(email, $2),
             arrival_date = COALESCE(arrival_date, $3),
             registration_date = COALESCE(registration_date, $4),
             updated_at = CURRENT_TIMESTAMP
         WHERE id = $5`,
		bf.CehupoID, bf.Email, bf.ArrivalDate, bf.RegistrationDate, survivorID)
	return err
}

func (t *pgxTx) VisitsByClient(ctx context.Context, clientID int) ([]*models.Visit, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, client_id, visit_date, subject FROM visits WHERE client_id=$1 ORDER BY id`,
		clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []*models.Visit
	for rows.Next() {
		var v models.Visit
		if err := rows.Scan(&v.ID, &v.ClientID, &v.VisitDate, &v.Subject); err != nil {
			return nil, err
		}
		visits = append(visits, &v)
	}
	return visits, rows.Err()
}

func (t *pgxTx) ReparentVisits(ctx context.Context, visitIDs []int, newClientID int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE visits SET client_id=$1 WHERE id = ANY($2)`, newClientID, visitIDs)
	return err
}

func (t *pgxTx) DeleteVisits(ctx context.Context, visitIDs []int) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM visits WHERE id = ANY($1)`, visitIDs)
	return err
}

func (t *pgxTx) DeleteClient(ctx context.Context, id int) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM clients WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("client %d not deleted", id)
	}
	return err
}

func (t *pgxTx) InsertMergeLog(ctx context.Context, log *models.MergeLog) error {
	fields := log.FieldsBackfilled
	if fields == nil {
		fields = []string{}
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO merge_logs(survivor_id, loser_id, loser_snapshot, visits_moved,
             visits_discarded, fields_backfilled, match_key, merged_at)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.SurvivorID, log.LoserID, log.LoserSnapshot, log.VisitsMoved,
		log.VisitsDiscarded, fields, log.MatchKey, log.MergedAt)
	return err
}
