package db

import (
	"context"
	"fmt"
	"log"

	"casework-backend/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(cfg *config.Config) *pgxpool.Pool {
	pool, err := pgxpool.New(context.Background(), ConnString(cfg))
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	return pool
}

// ConnString builds the postgres connection string from config
func ConnString(cfg *config.Config) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
	)
}
