package repositories

import (
	"context"

	"casework-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = `id, first_name, last_name, cehupo_id, email, COALESCE(phone, '') as phone,
         COALESCE(street, '') as street, COALESCE(city, '') as city, COALESCE(zip, '') as zip,
         visa_type, arrival_date, registration_date, latitude, longitude, created_at, updated_at`

type ClientRepository struct {
	DB *pgxpool.Pool
}

func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{DB: db}
}

func scanClient(row interface{ Scan(dest ...any) error }) (*models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.CehupoID, &c.Email, &c.Phone,
		&c.Street, &c.City, &c.Zip, &c.VisaType, &c.ArrivalDate, &c.RegistrationDate,
		&c.Latitude, &c.Longitude, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO clients(first_name, last_name, cehupo_id, email, phone, street, city, zip,
             visa_type, arrival_date, registration_date)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
         RETURNING id, created_at, updated_at`,
		c.FirstName, c.LastName, c.CehupoID, c.Email, c.Phone, c.Street, c.City, c.Zip,
		c.VisaType, c.ArrivalDate, c.RegistrationDate,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ClientRepository) Get(ctx context.Context, id int) (*models.Client, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id=$1`, id)
	return scanClient(row)
}

func (r *ClientRepository) List(ctx context.Context) ([]*models.Client, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Search finds clients by name fragment or exact cehupo id
func (r *ClientRepository) Search(ctx context.Context, query string) ([]*models.Client, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+clientColumns+` FROM clients
         WHERE first_name ILIKE '%' || $1 || '%'
            OR last_name ILIKE '%' || $1 || '%'
            OR cehupo_id::text = $1
         ORDER BY last_name, first_name
         LIMIT 100`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Update rewrites the editable fields. A changed address resets the
// coordinates to NULL so the next geocoding pass picks the record up again.
func (r *ClientRepository) Update(ctx context.Context, c *models.Client) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE clients SET first_name=$1, last_name=$2, cehupo_id=$3, email=$4, phone=$5,
             visa_type=$6,
             latitude = CASE WHEN street IS DISTINCT FROM $7 OR city IS DISTINCT FROM $8 THEN NULL ELSE latitude END,
             longitude = CASE WHEN street IS DISTINCT FROM $7 OR city IS DISTINCT FROM $8 THEN NULL ELSE longitude END,
             street=$7, city=$8, zip=$9,
             updated_at=CURRENT_TIMESTAMP
         WHERE id=$10`,
		c.FirstName, c.LastName, c.CehupoID, c.Email, c.Phone, c.VisaType,
		c.Street, c.City, c.Zip, c.ID)
	return err
}

func (r *ClientRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM clients WHERE id=$1`, id)
	return err
}

// NextUnresolved returns the newest client with NULL coordinates, skipping
// the given ids. It is re-queried for every candidate so manual fixes made
// while a pass is running are respected.
func (r *ClientRepository) NextUnresolved(ctx context.Context, skip []int) (*models.Client, error) {
	if skip == nil {
		skip = []int{}
	}
	row := r.DB.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients
         WHERE latitude IS NULL AND id <> ALL($1)
         ORDER BY id DESC
         LIMIT 1`, skip)
	return scanClient(row)
}

// SentinelIDs returns the ids of all clients at the failed-resolution
// sentinel (0,0), oldest first.
func (r *ClientRepository) SentinelIDs(ctx context.Context) ([]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id FROM clients WHERE latitude = 0 AND longitude = 0 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateCoordinates persists a geocoding outcome (real position or sentinel)
func (r *ClientRepository) UpdateCoordinates(ctx context.Context, id int, lat, lon float64) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE clients SET latitude=$1, longitude=$2, updated_at=CURRENT_TIMESTAMP WHERE id=$3`,
		lat, lon, id)
	return err
}

// RegistryStats is a set of aggregate counts over the client registry
type RegistryStats struct {
	Clients    int `json:"clients"`
	Unresolved int `json:"unresolved"`
	Sentinel   int `json:"sentinel"`
	Resolved   int `json:"resolved"`
	Visits     int `json:"visits"`
}

func (r *ClientRepository) Stats(ctx context.Context) (*RegistryStats, error) {
	var s RegistryStats
	err := r.DB.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM clients),
			(SELECT COUNT(*) FROM clients WHERE latitude IS NULL),
			(SELECT COUNT(*) FROM clients WHERE latitude = 0 AND longitude = 0),
			(SELECT COUNT(*) FROM clients WHERE latitude IS NOT NULL AND NOT (latitude = 0 AND longitude = 0)),
			(SELECT COUNT(*) FROM visits)`,
	).Scan(&s.Clients, &s.Unresolved, &s.Sentinel, &s.Resolved, &s.Visits)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
