package db

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(dbURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)

	if err != nil {
		return nil, err
	}

	cfg.MaxConns = 5

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)

	if err != nil {
		return nil, err
	}

	err = pool.Ping(ctx)

	if err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

// ApplySchema executes the DDL file at path against the pool. The schema is
// written to be idempotent (CREATE TABLE IF NOT EXISTS).
func ApplySchema(ctx context.Context, pool *pgxpool.Pool, path string) error {
	data, err := os.ReadFile(path)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, string(data))

	return err
}
