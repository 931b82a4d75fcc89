package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sugarrush/sweetshop/internal/config"
	"github.com/sugarrush/sweetshop/internal/domain/user"
	"github.com/sugarrush/sweetshop/internal/security"
)

func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, $3)
		`,
		cfg.AdminEmail, hash, user.RoleAdmin,
	)

	return err
}

// SeedSweets inserts a small starter catalog when the table is empty.
// Used by cmd/seed for local development.
func SeedSweets(ctx context.Context, pool *pgxpool.Pool) error {
	var count int

	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM sweets`).Scan(&count)

	if err != nil {
		return err
	}

	if count > 0 {
		return nil
	}

	starter := []struct {
		name     string
		category string
		price    float64
		quantity int
	}{
		{"Chocolate Fudge", "Fudge", 3.50, 50},
		{"Gummy Bears", "Gummies", 1.50, 100},
		{"Lollipop", "Hard Candy", 0.50, 200},
	}

	for _, s := range starter {
		_, err = pool.Exec(ctx,
			`INSERT INTO sweets (name, category, price, quantity) VALUES ($1, $2, $3, $4)`,
			s.name, s.category, s.price, s.quantity,
		)

		if err != nil {
			return err
		}
	}

	return nil
}
